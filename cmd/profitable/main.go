package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/smallbiznis/profitable/internal/billing"
	"github.com/smallbiznis/profitable/internal/clock"
	"github.com/smallbiznis/profitable/internal/config"
	"github.com/smallbiznis/profitable/internal/observability"
	"github.com/smallbiznis/profitable/internal/redis"
	"github.com/smallbiznis/profitable/internal/report"
	"github.com/smallbiznis/profitable/internal/revenue"
	"github.com/smallbiznis/profitable/internal/server"
	"github.com/smallbiznis/profitable/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "profitable",
		Short:   "Recurring revenue metrics for Stripe, Braintree and Paddle billing data",
		Version: readVersionFromEnv(),
	}
	root.AddCommand(newServeCmd(), newReportCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the metrics API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			runServe()
			return nil
		},
	}
}

func newReportCmd() *cobra.Command {
	var (
		period  string
		asJSON  bool
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute every metric once and print it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd.Context(), cmd.OutOrStdout(), period, asJSON, timeout)
		},
	}
	cmd.Flags().StringVar(&period, "period", "", "lookback window, e.g. 30d or 12h (default from metrics.yml)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "maximum time to compute the report")
	return cmd
}

func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		redis.Module,
		billing.Module,
		revenue.Module,
		report.Module,
	)
}

func runServe() {
	app := fx.New(
		coreModules(),
		report.Publisher,
		server.Module,
	)
	app.Run()
}

func runReport(ctx context.Context, out io.Writer, periodFlag string, asJSON bool, timeout time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var builder *report.Builder
	app := fx.New(
		coreModules(),
		fx.NopLogger,
		fx.Populate(&builder),
	)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	defer func() { _ = app.Stop(context.Background()) }()

	period, err := report.ParsePeriod(periodFlag, builder.DefaultPeriod())
	if err != nil {
		return err
	}
	r, err := builder.Build(ctx, period)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	return printReport(out, r)
}

func printReport(out io.Writer, r report.Report) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "period\t%s\n", r.Period)
	for _, e := range r.Metrics {
		fmt.Fprintf(w, "%s\t%s\n", e.Name, e.Display)
	}
	fmt.Fprintf(w, "next milestone\t%s\n", r.MilestoneDisplay)
	return w.Flush()
}

func readVersionFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("APP_VERSION")); v != "" {
		return v
	}
	return "dev"
}
