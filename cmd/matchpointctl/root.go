// Matchpoint - Sports Matchmaking Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/matchpoint

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tomtom215/matchpoint/internal/app"
	"github.com/tomtom215/matchpoint/internal/config"
	"github.com/tomtom215/matchpoint/internal/logging"
)

// cli is the state shared by the subcommands of one invocation.
type cli struct {
	out        io.Writer
	configPath string
	output     string
	verbose    bool

	cfg        *config.Config
	components *app.Components
	logger     zerolog.Logger
}

// run executes the command line in args. The pipeline opened for the
// subcommand is closed even when it fails.
func run(out io.Writer, args []string) error {
	c := &cli{out: out, logger: zerolog.Nop()}
	root := c.rootCmd()
	root.SetOut(out)
	root.SetArgs(args)
	err := root.Execute()
	return errors.Join(err, c.close())
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "matchpointctl",
		Short:         "Operate the Matchpoint recommendation pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return c.open()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: CONFIG_PATH or config.yaml)")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", formatJSON, "output format: json or yaml")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "log pipeline activity to stderr")

	root.AddCommand(
		c.enqueueCmd(),
		c.processCmd(),
		c.statusCmd(),
		c.encodeCmd(),
		c.rankCmd(),
	)
	return root
}

func (c *cli) open() error {
	if err := validFormat(c.output); err != nil {
		return err
	}

	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	c.cfg = cfg

	if c.verbose {
		logging.Init(logging.Config{Level: cfg.Logging.Level, Format: "console", Timestamp: true})
		c.logger = logging.Logger()
	}

	components, err := app.Build(cfg, c.logger)
	if err != nil {
		return fmt.Errorf("failed to open pipeline: %w", err)
	}
	c.components = components
	return nil
}

func (c *cli) close() error {
	if c.components == nil {
		return nil
	}
	err := c.components.Close()
	c.components = nil
	return err
}
