package main

import (
	"github.com/spf13/cobra"

	"github.com/xonecas/decldiff/internal/revision"
)

func newRevsCmd(opts *rootOptions) *cobra.Command {
	var repo string
	var mergeBase bool

	cmd := &cobra.Command{
		Use:   "revs <from> <to>",
		Short: "Diff declarations between two git revisions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			from, to := args[0], args[1]
			if mergeBase {
				if from, err = revision.MergeBase(ctx, repo, from, to); err != nil {
					return err
				}
			}
			src, err := revision.Open(ctx, repo, from, to, cfg.Extensions)
			if err != nil {
				return err
			}
			return runDiff{
				cfg:  cfg,
				opts: opts,
				src:  src,
				dir:  src.Dir,
				kind: "git",
				from: src.From,
				to:   src.To,
			}.run(ctx, cmd)
		},
	}
	cmd.Flags().StringVar(&repo, "repo", ".", "repository directory")
	cmd.Flags().BoolVar(&mergeBase, "merge-base", false, "compare <to> against its merge base with <from>")
	return cmd
}
