// Command annexctl administers the annex listing catalogue from the shell:
// reference data, user and listing moderation, analytics and snapshots.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"annexcore/internal/config"
	"annexcore/internal/core"
	"annexcore/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// app carries the state shared by every subcommand of one invocation.
type app struct {
	stdout     io.Writer
	stderr     io.Writer
	configFile string
	envFile    string
	metrics    bool
	registry   *prometheus.Registry
	svc        *core.Service
}

func cli(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	err := root.ExecuteContext(ctx)
	if closeErr := a.close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "annexctl: %v\n", err)
		return 1
	}
	return 0
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "annexctl",
		Short:         "Administer annex listings, users and reference data",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return a.dumpMetrics()
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default annexcore.yaml in . or $HOME/.annexcore)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flags.BoolVar(&a.metrics, "metrics", false, "print collected operation metrics after the command")

	root.AddCommand(
		a.seedCommand(),
		a.provinceCommand(),
		a.districtCommand(),
		a.universityCommand(),
		a.userCommand(),
		a.annexCommand(),
		a.analyticsCommand(),
		a.snapshotCommand(),
	)
	return root
}

func (a *app) open(ctx context.Context) error {
	if err := config.LoadDotEnv(a.envFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	a.registry = prometheus.NewRegistry()
	recorder, err := core.NewPrometheusMetricsRecorder(cfg.Metrics.Namespace, a.registry)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	svc, err := core.OpenService(ctx, cfg, core.WithMetricsRecorder(recorder))
	if err != nil {
		return err
	}
	a.svc = svc
	return nil
}

func (a *app) close() error {
	if a.svc == nil {
		return nil
	}
	err := a.svc.Close()
	a.svc = nil
	return err
}

func (a *app) dumpMetrics() error {
	if !a.metrics || a.registry == nil {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.stderr, mf); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
}

// report prints non-blocking violations so warnings are not silently lost.
func (a *app) report(res domain.Result) {
	for _, v := range res.Violations {
		_, _ = fmt.Fprintf(a.stderr, "warning: %s: %s\n", v.Rule, v.Message)
	}
}

// explain expands a blocked transaction into its violations.
func (a *app) explain(err error) error {
	var rerr domain.RuleViolationError
	if errors.As(err, &rerr) {
		a.report(rerr.Result)
	}
	return err
}

var errNotConfirmed = errors.New("refusing to continue without --yes")

func confirmFlag(cmd *cobra.Command) *bool {
	return cmd.Flags().Bool("yes", false, "confirm the operation")
}
