package depm

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"

	"cobalt/common"
	"cobalt/report"
)

// tomlModule represents a Cobalt module as it is encoded in TOML.
type tomlModule struct {
	Name          string `toml:"name"`
	ShouldCache   bool   `toml:"caching"`
	CobaltVersion string `toml:"cobalt-version"`
}

// CoModule is a loaded Cobalt module: the unit rooted at a module file.
type CoModule struct {
	// Name is the module's declared name.
	Name string

	// AbsPath is the absolute path to the module root directory.
	AbsPath string

	// ShouldCache indicates whether compilation caching is requested.
	ShouldCache bool
}

// LoadModule loads and validates a module.  abspath is the absolute path to
// the module directory.  It returns the deserialized module and a success
// boolean; failures are reported through rep.
func LoadModule(abspath string, rep *report.Reporter) (*CoModule, bool) {
	f, err := os.Open(filepath.Join(abspath, common.CobaltModuleFileName))
	if err != nil {
		rep.ErrorAt(report.KindConfig, report.NoPos, "unable to open module file at `%s`: %s", abspath, err.Error())
		return nil, false
	}
	defer f.Close()

	buff, err := ioutil.ReadAll(f)
	if err != nil {
		rep.ErrorAt(report.KindConfig, report.NoPos, "error reading module file at `%s`: %s", abspath, err.Error())
		return nil, false
	}

	tomlMod := &tomlModule{}
	if err := toml.Unmarshal(buff, tomlMod); err != nil {
		rep.ErrorAt(report.KindConfig, report.NoPos, "error parsing module file at `%s`: %s", abspath, err.Error())
		return nil, false
	}

	coMod := &CoModule{
		AbsPath:     abspath,
		Name:        tomlMod.Name,
		ShouldCache: tomlMod.ShouldCache,
	}

	if !validateModule(coMod, tomlMod, rep) {
		return nil, false
	}

	return coMod, true
}

// validateModule checks that the top-level module contents are valid.
func validateModule(coMod *CoModule, tomlMod *tomlModule, rep *report.Reporter) bool {
	if tomlMod.Name == "" {
		rep.ErrorAt(report.KindConfig, report.NoPos,
			"missing module name in `%s`", coMod.AbsPath)
		return false
	}

	if !IsValidIdentifier(tomlMod.Name) {
		rep.ErrorAt(report.KindConfig, report.NoPos,
			"module name `%s` must be a valid identifier", tomlMod.Name)
		return false
	}

	if tomlMod.CobaltVersion != "" && tomlMod.CobaltVersion != common.CobaltVersion {
		rep.WarnAt(report.KindConfig, "", report.NoPos,
			fmt.Sprintf("version of module `%s` (v%s) does not match current cobalt version (v%s)",
				tomlMod.Name, tomlMod.CobaltVersion, common.CobaltVersion))
	}

	return true
}

// IsValidIdentifier reports whether a string is usable as a Cobalt
// identifier.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}
