package main

import (
	"github.com/urfave/cli/v2"

	"github.com/hnimtadd/termtext/config"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "print the effective configuration as TOML",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "default",
				Usage: "output the default configuration",
			},
		},
		Action: func(c *cli.Context) error {
			// At this point, app.Before has already loaded the configuration
			// file, so the effective values are in the metadata.
			cfg := configFrom(c)
			if c.Bool("default") {
				cfg = config.Default()
			}
			return cfg.Encode(c.App.Writer)
		},
	}
}
