package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alecthomas/repr"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"

	"cobalt/cmd"
	"cobalt/common"
	"cobalt/report"
)

// tomlModuleInit is the skeleton written by `cobalt init`.
type tomlModuleInit struct {
	Name          string `toml:"name"`
	Caching       bool   `toml:"caching"`
	CobaltVersion string `toml:"cobalt-version"`
}

func main() {
	app := &cli.App{
		Name:  "cobalt",
		Usage: "cobalt compiler",
		ExitErrHandler: func(ctx *cli.Context, err error) {
			if err != nil {
				log.Fatalf("error with cobalt: %s", err)
			}
		},
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "initialize a module in the current directory",
				Action: func(ctx *cli.Context) error {
					name := ctx.Args().First()
					if name == "" {
						return fmt.Errorf("no module name provided")
					}

					out, err := toml.Marshal(tomlModuleInit{
						Name:          name,
						CobaltVersion: common.CobaltVersion,
					})
					if err != nil {
						return tracerr.Wrap(err)
					}

					if err := os.WriteFile(common.CobaltModuleFileName, out, 0o644); err != nil {
						return tracerr.Wrap(err)
					}

					return nil
				},
			},
			{
				Name:  "ast",
				Usage: "parse a module and dump its AST",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: "."},
				},
				Action: func(ctx *cli.Context) error {
					c, err := cmd.NewCompiler(ctx.String("dir"), cmd.DefaultProfile(), report.LogLevelError)
					if err != nil {
						return tracerr.Wrap(err)
					}

					c.Analyze()
					if c.Package() == nil {
						return fmt.Errorf("no package parsed")
					}

					for _, file := range c.Package().Files {
						repr.Println(file)
					}

					return nil
				},
			},
			{
				Name:  "build",
				Usage: "build a module",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Value: "."},
					&cli.StringFlag{Name: "profile"},
					&cli.BoolFlag{Name: "quiet"},
				},
				Action: func(ctx *cli.Context) error {
					profile := cmd.DefaultProfile()

					if path := ctx.String("profile"); path != "" {
						loaded, err := cmd.LoadProfile(path)
						if err != nil {
							tracerr.PrintSourceColor(tracerr.Wrap(err))
							os.Exit(1)
						}
						profile = loaded
					}

					logLevel := report.LogLevelVerbose
					if ctx.Bool("quiet") {
						logLevel = report.LogLevelError
					}

					c, err := cmd.NewCompiler(ctx.String("dir"), profile, logLevel)
					if err != nil {
						return tracerr.Wrap(err)
					}

					if !c.Analyze() {
						fmt.Printf("build failed: %d errors\n", c.Reporter().ErrorCount())
						os.Exit(1)
					}

					fmt.Printf("%s ok (%s)\n", filepath.Base(ctx.String("dir")), c.Arch().Arch)
					return nil
				},
			},
		},
	}

	app.Run(os.Args)
}
