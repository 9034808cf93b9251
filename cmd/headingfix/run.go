// Copyright 2026 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//		 https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"zombiezen.com/go/headingfix"
	"zombiezen.com/go/headingfix/internal/config"
	"zombiezen.com/go/headingfix/internal/migrate"
	"zombiezen.com/go/headingfix/internal/store"
	"zombiezen.com/go/headingfix/internal/store/jsonstore"
	"zombiezen.com/go/headingfix/internal/store/sqlitestore"
)

type runOptions struct {
	configPath string
	verbose    bool

	contentType           string
	field                 string
	locales               []string
	workers               int
	writesPerSecond       float64
	dryRun                bool
	publish               string
	keepWrapperAttributes bool
	storeKind             string
	storePath             string
}

func newRunCommand() *cobra.Command {
	opts := new(runOptions)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Migrate the heading field of every entry",
		Long: "Migrate rewrites the heading field of every entry of a content type\n" +
			"into a single h1 element and saves the entries that changed.\n" +
			"Flags override values from the configuration file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "TOML configuration `file`")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log every value")
	f.StringVar(&opts.contentType, "content-type", "", "content type `ID` to migrate")
	f.StringVar(&opts.field, "field", "", "heading field `ID`")
	f.StringSliceVar(&opts.locales, "locale", nil, "locale to migrate (may be repeated; default all)")
	f.IntVar(&opts.workers, "workers", 0, "number of values canonicalized concurrently")
	f.Float64Var(&opts.writesPerSecond, "writes-per-second", 0, "maximum entry updates per second (0 is unlimited)")
	f.BoolVarP(&opts.dryRun, "dry-run", "n", false, "report changes without saving them")
	f.StringVar(&opts.publish, "publish", "", "publish `policy`: preserve, never, or always")
	f.BoolVar(&opts.keepWrapperAttributes, "keep-wrapper-attributes", false, "keep attributes of paragraphs promoted to headings")
	f.StringVar(&opts.storeKind, "store", "", "store `kind`: json or sqlite")
	f.StringVar(&opts.storePath, "path", "", "export file or database `path`")
	return cmd
}

// config loads the configuration file (if any) and applies flags
// that were set explicitly.
func (opts *runOptions) config(flags *pflag.FlagSet) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	}
	if flags.Changed("content-type") {
		cfg.ContentType = opts.contentType
	}
	if flags.Changed("field") {
		cfg.Field = opts.field
	}
	if flags.Changed("locale") {
		cfg.Locales = opts.locales
	}
	if flags.Changed("workers") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("writes-per-second") {
		cfg.WritesPerSecond = opts.writesPerSecond
	}
	if flags.Changed("dry-run") {
		cfg.DryRun = opts.dryRun
	}
	if flags.Changed("publish") {
		cfg.Publish = opts.publish
	}
	if flags.Changed("keep-wrapper-attributes") {
		cfg.KeepWrapperAttributes = opts.keepWrapperAttributes
	}
	if flags.Changed("store") {
		cfg.Store.Kind = opts.storeKind
	}
	if flags.Changed("path") {
		cfg.Store.Path = opts.storePath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	return cfg, nil
}

func (opts *runOptions) run(cmd *cobra.Command) (err error) {
	ctx := cmd.Context()
	cfg, err := opts.config(cmd.Flags())
	if err != nil {
		return err
	}
	policy, err := store.ParsePublishPolicy(cfg.Publish)
	if err != nil {
		return err
	}
	log, err := newLogger(opts.verbose)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeStore(); err == nil {
			err = closeErr
		}
	}()
	available, err := st.Locales(ctx)
	if err != nil {
		return err
	}
	locales, err := config.MatchLocales(cfg.Locales, available)
	if err != nil {
		return err
	}

	r := &migrate.Runner{
		Store:       st,
		ContentType: cfg.ContentType,
		Field:       cfg.Field,
		Locales:     locales,
		Workers:     cfg.Workers,
		DryRun:      cfg.DryRun,
		Publish:     policy,
		Canonicalizer: &headingfix.Canonicalizer{
			Decoder:               headingfix.EntityDecoder{MaxPasses: cfg.MaxDecodePasses},
			MaxUnwrapDepth:        cfg.MaxUnwrapDepth,
			KeepWrapperAttributes: cfg.KeepWrapperAttributes,
		},
		Logger: log,
	}
	if cfg.WritesPerSecond > 0 {
		r.Limiter = rate.NewLimiter(rate.Limit(cfg.WritesPerSecond), 1)
	}
	report, err := r.Run(ctx)
	if report != nil {
		printReport(cmd.OutOrStdout(), report, cfg.DryRun)
	}
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		log.Warn("Some entries were not updated", zap.Int("failed", report.Failed))
		return fmt.Errorf("%d of %d changed entries failed to update", report.Failed, report.Failed+report.Updated)
	}
	return nil
}

// openStore opens the configured content store.
// The returned function must be called when the run is done:
// it saves pending changes to export files and closes databases.
func openStore(ctx context.Context, sc config.StoreConfig) (store.Store, func() error, error) {
	switch sc.Kind {
	case config.StoreJSON:
		s, err := jsonstore.Open(sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Flush, nil
	case config.StoreSQLite:
		s, err := sqlitestore.Open(ctx, sc.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store kind %q", sc.Kind)
	}
}

func printReport(w io.Writer, report *migrate.Report, dryRun bool) {
	fmt.Fprintf(w, "Run %s: %d entries, %d values\n", report.RunID, report.Entries, report.Values)
	if dryRun {
		fmt.Fprintf(w, "  changed:   %d (dry run, nothing saved)\n", report.Changed)
	} else {
		fmt.Fprintf(w, "  changed:   %d (%d entries updated)\n", report.Changed, report.Updated)
	}
	fmt.Fprintf(w, "  unchanged: %d\n", report.Unchanged)
	fmt.Fprintf(w, "  opaque:    %d\n", report.Opaque)
	fmt.Fprintf(w, "  invalid:   %d\n", report.Invalid)
	if report.Failed > 0 {
		fmt.Fprintf(w, "  failed:    %d\n", report.Failed)
		for _, err := range report.Errors {
			fmt.Fprintf(w, "    %v\n", err)
		}
	}
	if len(report.Samples) > 0 {
		fmt.Fprintln(w, "Samples:")
		for _, o := range report.Samples {
			fmt.Fprintf(w, "  %s [%s]: %q -> %q\n", o.EntryID, o.Locale, o.Before, o.Result.Value)
		}
	}
}
