package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/xonecas/decldiff/internal/config"
	"github.com/xonecas/decldiff/internal/engine"
	"github.com/xonecas/decldiff/internal/extract"
	"github.com/xonecas/decldiff/internal/highlight"
	"github.com/xonecas/decldiff/internal/report"
	"github.com/xonecas/decldiff/internal/revision"
	"github.com/xonecas/decldiff/internal/store"
	"github.com/xonecas/decldiff/internal/treesitter"
	"github.com/xonecas/decldiff/internal/validate"
)

// loadConfig reads the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("skip-unchanged") {
		cfg.SkipUnchanged = opts.skipUnchanged
	}
	if opts.noCache {
		cfg.Cache.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openCache opens the snapshot cache, or returns nil when it is disabled or
// cannot be opened.
func openCache(cfg *config.Config) *store.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	path, err := cachePath(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("snapshot cache disabled")
		return nil
	}
	cache, err := store.Open(path, cfg.Cache.TTL())
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("snapshot cache disabled")
		return nil
	}
	return cache
}

// cachePath returns the cache database path, creating the data directory
// when the default location is used.
func cachePath(cfg *config.Config) (string, error) {
	if cfg.Cache.Path == "" {
		if _, err := config.EnsureDataDir(); err != nil {
			return "", err
		}
	}
	return cfg.Cache.PathOrDefault()
}

func newRegistry(cfg *config.Config) *extract.Registry {
	reg := extract.NewRegistry()
	if cfg.Extractor == config.ExtractorAuto {
		treesitter.RegisterDefaults(reg)
	}
	return reg
}

// runDiff is the shared tail of the revs and files commands.
type runDiff struct {
	cfg  *config.Config
	opts *rootOptions
	src  revision.Source
	dir  string // working directory for the validator
	kind string
	from string
	to   string
}

func (r runDiff) run(ctx context.Context, cmd *cobra.Command) error {
	format, err := report.ParseFormat(r.cfg.Output.Format)
	if err != nil {
		return err
	}
	v, err := validate.New(r.cfg.Validation.Command, r.dir, r.cfg.Validation.Timeout())
	if err != nil {
		return err
	}
	cache := openCache(r.cfg)
	defer cache.Close()

	res, err := engine.New(r.src, engine.Options{
		Registry:      newRegistry(r.cfg),
		Validator:     v,
		Cache:         cache,
		Workers:       r.cfg.Workers,
		SkipUnchanged: r.cfg.SkipUnchanged,
	}).Run(ctx)
	if err != nil {
		return err
	}

	ropts := report.Options{Color: r.opts.color, Theme: r.cfg.Output.Theme}
	if len(r.cfg.Extensions) > 0 {
		ropts.Language = highlight.DetectLanguage("x" + r.cfg.Extensions[0])
	}
	if r.opts.output != "" {
		err = report.WriteFile(r.opts.output, format, res.Records, ropts)
	} else {
		err = report.Write(cmd.OutOrStdout(), format, res.Records, ropts)
	}
	if err != nil {
		return err
	}

	var total store.Run
	for i := range res.Records {
		c := res.Records[i].Totals()
		total.Added += c.Added
		total.Modified += c.Modified
		total.Deleted += c.Deleted
	}
	total.Source, total.From, total.To, total.Modules = r.kind, r.from, r.to, len(res.Records)
	if _, err := cache.RecordRun(total); err != nil {
		log.Warn().Err(err).Msg("run not recorded")
	}

	log.Info().Int("files", res.Files).Int("modules", len(res.Records)).
		Int("diagnostics", len(res.Diagnostics)).Msg("diff complete")
	affected := make(map[string]struct{})
	for _, d := range res.Diagnostics {
		affected[d.Path] = struct{}{}
	}
	if len(affected) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "diagnostics for %d file(s)\n", len(affected))
	}
	return nil
}

func absOrSelf(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
