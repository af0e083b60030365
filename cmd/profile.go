package cmd

import (
	"fmt"
	"io/ioutil"
	"os"

	"gopkg.in/yaml.v2"
)

// BuildProfile is the current build configuration of the compiler, loaded
// from an optional YAML profile file next to the module.
type BuildProfile struct {
	// TargetArch selects the registered architecture configuration.
	TargetArch string `yaml:"arch"`

	// Optimize enables the optimizing SSA passes.
	Optimize bool `yaml:"optimize"`

	// LoopStats enables loop-nest statistics output.
	LoopStats bool `yaml:"loopstats"`

	// OutputPath is where build artifacts land.
	OutputPath string `yaml:"output"`
}

// DefaultProfile returns the profile used when no profile file is given.
func DefaultProfile() *BuildProfile {
	return &BuildProfile{TargetArch: "generic"}
}

// LoadProfile reads a build profile from a YAML file.  Missing fields keep
// their defaults.
func LoadProfile(path string) (*BuildProfile, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no build profile at `%s`", path)
		}
		return nil, err
	}

	profile := DefaultProfile()
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("error parsing build profile `%s`: %w", path, err)
	}

	if profile.TargetArch == "" {
		profile.TargetArch = "generic"
	}

	return profile, nil
}
