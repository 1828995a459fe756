package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xonecas/decldiff/internal/store"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous diff runs recorded in the cache database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if !cfg.Cache.Enabled {
				return errors.New("history needs the cache; it is disabled")
			}
			path, err := cachePath(cfg)
			if err != nil {
				return err
			}
			cache, err := store.Open(path, cfg.Cache.TTL())
			if err != nil {
				return err
			}
			defer cache.Close()

			runs, err := cache.Runs(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs recorded")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %s  %-4s  %s..%s  %d modules  +%d ~%d -%d\n",
					r.Created.Format("2006-01-02 15:04"), r.ID[:8], r.Source,
					shortRev(r.From), shortRev(r.To), r.Modules, r.Added, r.Modified, r.Deleted)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show (0 for all)")
	return cmd
}

// shortRev abbreviates commit ids; other labels are kept whole.
func shortRev(rev string) string {
	if len(rev) == 40 {
		return rev[:12]
	}
	return rev
}
