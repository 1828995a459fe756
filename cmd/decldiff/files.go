package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xonecas/decldiff/internal/revision"
)

func newFilesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "files <old> <new>",
		Short: "Diff declarations between two files or directory trees",
		Long: `Compare two files or two directory trees. A path missing on one side
counts as an empty revision, so every declaration on the other side is
reported as added or deleted.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			src, err := revision.NewDirs(args[0], args[1], cfg.Extensions)
			if err != nil {
				return err
			}
			wd, _ := os.Getwd()
			return runDiff{
				cfg:  cfg,
				opts: opts,
				src:  src,
				dir:  wd,
				kind: "dirs",
				from: absOrSelf(args[0]),
				to:   absOrSelf(args[1]),
			}.run(cmd.Context(), cmd)
		},
	}
}
