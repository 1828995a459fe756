package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath    string
	format        string
	output        string
	color         bool
	skipUnchanged bool
	noCache       bool
	workers       int
	logLevel      string
	logJSON       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "decldiff",
		Short: "Diff top-level declarations between two revisions",
		Long: `decldiff reports which named top-level declarations (let bindings, type
definitions and externals) were added, modified or deleted between two
revisions of a codebase, grouped per module.

Examples:
  decldiff revs main HEAD                 # compare two git revisions
  decldiff revs main feature --merge-base # compare a branch to its fork point
  decldiff files old/src new/src          # compare two directory trees
  decldiff files -f text --color A.res B.res`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return setupLogging(cmd, opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/decldiff/config.toml)")
	pf.StringVarP(&opts.format, "format", "f", "", "output format: json, yaml, text, summary")
	pf.StringVarP(&opts.output, "output", "o", "", "write the report to this file instead of stdout")
	pf.BoolVar(&opts.color, "color", false, "color and highlight the text format")
	pf.BoolVar(&opts.skipUnchanged, "skip-unchanged", false, "omit modules without declaration changes")
	pf.BoolVar(&opts.noCache, "no-cache", false, "do not read or write the snapshot cache")
	pf.IntVar(&opts.workers, "workers", 0, "parallel file workers (default from config)")
	pf.StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	pf.BoolVar(&opts.logJSON, "log-json", false, "log JSON lines instead of console output")

	root.AddCommand(newRevsCmd(opts), newFilesCmd(opts), newHistoryCmd(opts))
	return root
}

func setupLogging(cmd *cobra.Command, opts *rootOptions) error {
	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if opts.logJSON {
		log.Logger = zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), TimeFormat: time.Kitchen})
	}
	return nil
}
