package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hnimtadd/termtext/config"
	"github.com/hnimtadd/termtext/logger"
)

const (
	configFlag    = "config"
	logLevelFlag  = "log-level"
	logFormatFlag = "log-format"

	configKey = "config"
	loggerKey = "logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		code := 1
		var exit cli.ExitCoder
		if errors.As(err, &exit) {
			code = exit.ExitCode()
		}
		os.Exit(code)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "termtext"
	app.Usage = "search and measure text the way a terminal lays it out"
	app.Metadata = map[string]interface{}{}
	// Exit codes are handled by main.
	app.ExitErrHandler = func(*cli.Context, error) {}
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:      configFlag,
			Aliases:   []string{"c"},
			Usage:     "path to a TOML configuration file",
			EnvVars:   []string{"TERMTEXT_CONFIG"},
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  logLevelFlag,
			Usage: "log level: debug, info, warn or error",
		},
		&cli.StringFlag{
			Name:  logFormatFlag,
			Usage: "log format: text or json",
		},
	}
	app.Before = loadConfig
	app.Commands = []*cli.Command{
		findCommand(),
		widthCommand(),
		followCommand(),
		configCommand(),
	}
	return app
}

// loadConfig reads the configuration before any command runs and stores it
// in the app metadata together with the logger built from it.
func loadConfig(c *cli.Context) error {
	cfg := config.Default()
	if path := c.String(configFlag); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if c.IsSet(logLevelFlag) {
		cfg.Log.Level = c.String(logLevelFlag)
	}
	if c.IsSet(logFormatFlag) {
		cfg.Log.Format = c.String(logFormatFlag)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := cfg.Logger(c.App.ErrWriter)
	if err != nil {
		return err
	}
	c.App.Metadata[configKey] = cfg
	c.App.Metadata[loggerKey] = log
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	return c.App.Metadata[configKey].(*config.Config) // nolint: errcheck
}

func loggerFrom(c *cli.Context) logger.Logger {
	return c.App.Metadata[loggerKey].(logger.Logger) // nolint: errcheck
}
