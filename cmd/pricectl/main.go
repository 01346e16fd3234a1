// Command pricectl drives the price workbench against a running price store:
// one-shot revisions, exports and history, or an interactive shell.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"pricedesk/internal/commit"
	"pricedesk/internal/config"
	"pricedesk/internal/desk"
	"pricedesk/internal/dto"
	"pricedesk/internal/export"
	"pricedesk/internal/pricing"
	"pricedesk/internal/storeclient"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type options struct {
	apiURL   string
	token    string
	operator string
	verbose  bool
	category string
	search   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "pricectl",
		Short:         "Stage, review and commit bulk price revisions",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.WarnLevel
			if opts.verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&opts.apiURL, "api-url", "", "price store base URL (default PRICE_API_URL)")
	pf.StringVar(&opts.token, "token", "", "bearer token (default PRICE_API_TOKEN)")
	pf.StringVar(&opts.operator, "as", "", "actor recorded on commits (default OPERATOR_NAME)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&opts.category, "category", pricing.CategoryAll, "category to load")
	pf.StringVar(&opts.search, "search", "", "part number / description filter")

	root.AddCommand(
		newReviseCmd(opts),
		newExportCmd(opts),
		newHistoryCmd(opts),
		newShellCmd(opts),
	)
	return root
}

// workbench builds a workbench from the environment config overridden by flags.
func (o *options) workbench() (*desk.Workbench, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if o.apiURL != "" {
		cfg.PriceAPIURL = o.apiURL
	}
	if o.token != "" {
		cfg.PriceAPIToken = o.token
	}
	if o.operator != "" {
		cfg.OperatorName = o.operator
	}

	client := storeclient.New(storeclient.Config{
		BaseURL:    cfg.PriceAPIURL,
		Token:      cfg.PriceAPIToken,
		Timeout:    cfg.PriceAPITimeout,
		RatePerSec: cfg.CommitRatePerSec,
	})
	coord := commit.NewCoordinator(client, cfg.CommitConcurrency)
	return desk.New(client, coord, cfg.OperatorName), nil
}

func (o *options) filter() dto.PriceItemFilter {
	return dto.PriceItemFilter{Search: o.search, Category: o.category}
}

// ── revise ────────────────────────────────────────────────────────────────────

func newReviseCmd(opts *options) *cobra.Command {
	var (
		field, kind, value, reason, baseline string
		doCommit                             bool
	)
	cmd := &cobra.Command{
		Use:   "revise",
		Short: "Apply a bulk revision to every loaded part and optionally commit it",
		Example: `  pricectl revise --category Filters --field all --type percentage --value 7.5 --reason "Supplier list 2024"
  pricectl revise --search OF- --field priceB --type fixed --value -2 --reason "Promo" --commit`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := opts.workbench()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := w.Load(ctx, opts.filter()); err != nil {
				return err
			}
			w.SelectAllVisible("", pricing.CategoryAll)

			err = w.ApplyBulkRevision(pricing.BulkRevisionRequest{
				Field:     pricing.Field(field),
				Kind:      pricing.TransformKind(kind),
				Magnitude: value,
				Reason:    reason,
				Baseline:  pricing.Baseline(baseline),
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSummary(out, w.Summary())

			if !doCommit {
				fmt.Fprintln(out, "dry run: pass --commit to write the changes")
				return nil
			}
			res, err := w.Commit(ctx, reason)
			if res != nil {
				printResult(out, res)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&field, "field", string(pricing.FieldAll), "cost | priceA | priceB | all")
	f.StringVar(&kind, "type", string(pricing.TransformPercentage), "percentage | fixed")
	f.StringVar(&value, "value", "", "percentage or amount, may be negative")
	f.StringVar(&reason, "reason", "", "audit reason (required)")
	f.StringVar(&baseline, "baseline", string(pricing.BaselineCommitted), "committed | staged")
	f.BoolVar(&doCommit, "commit", false, "commit after staging")
	_ = cmd.MarkFlagRequired("value")
	_ = cmd.MarkFlagRequired("reason")
	return cmd
}

// ── export ────────────────────────────────────────────────────────────────────

func newExportCmd(opts *options) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the loaded price list as CSV or XLSX",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			w, err := opts.workbench()
			if err != nil {
				return err
			}
			if err := w.Load(cmd.Context(), opts.filter()); err != nil {
				return err
			}
			if out == "" || out == "-" {
				return export.Write(cmd.OutOrStdout(), f, w.Items())
			}
			return writeExportFile(out, f, w.Items())
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "csv | xlsx")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func writeExportFile(path string, format export.Format, items []*pricing.PriceItem) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(fh, format, items); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

// ── history ───────────────────────────────────────────────────────────────────

func newHistoryCmd(opts *options) *cobra.Command {
	var page, limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the price revision history, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := opts.workbench()
			if err != nil {
				return err
			}
			resp, err := w.History(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "rows per page")
	return cmd
}

// ── shell ─────────────────────────────────────────────────────────────────────

func newShellCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive workbench: load, select, stage, review, commit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := opts.workbench()
			if err != nil {
				return err
			}
			sh := newShell(w, cmd.OutOrStdout())
			if err := w.Load(cmd.Context(), opts.filter()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), "initial load failed:", err)
			}
			return sh.Run(cmd.Context(), cmd.InOrStdin())
		},
	}
}

func joinArgs(args []string) string { return strings.TrimSpace(strings.Join(args, " ")) }
