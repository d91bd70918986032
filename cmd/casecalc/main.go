// Command casecalc runs the case calculations against JSON case files from
// the command line: lien totals, liability checks, settlement distribution
// tables and statute deadline alerts.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/DukeRupert/casedesk/internal"
	"github.com/DukeRupert/casedesk/internal/service"
)

var version = "0.1.0"

// app carries the streams and state shared by every subcommand.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	jsonOut bool
	verbose bool

	cfg    *internal.Config
	logger *slog.Logger
}

func main() {
	a := &app{
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		now:    time.Now,
	}

	if err := newRootCmd(a).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "casecalc",
		Short: "Personal-injury case financial and deadline calculator",
		Long: `casecalc runs the casedesk calculation engine over JSON case files.

Firm defaults come from the same environment as the server:
  DEFAULT_ATTORNEY_FEE_PERCENTAGE   fee used when a case has none (33.33)
  ALERT_CRITICAL_DAYS               critical alert window (30)
  ALERT_WARNING_DAYS                warning alert window (90)
  ALERT_CAUTION_DAYS                caution alert window (180)
  STATUTE_OF_LIMITATIONS_YEARS      derive missing deadlines from the incident date (0 = off)`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := internal.NewConfig()
			if err != nil {
				return fmt.Errorf("config initialization failed: %w", err)
			}
			a.cfg = cfg

			level := "warn"
			if a.verbose {
				level = "debug"
			}
			a.logger = internal.NewLogger(a.errOut, "development", level)
			return nil
		},
	}

	rootCmd.SetIn(a.in)
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	rootCmd.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Print machine-readable JSON instead of a table")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log calculation details to stderr")

	rootCmd.AddCommand(liensCmd(a))
	rootCmd.AddCommand(liabilityCmd(a))
	rootCmd.AddCommand(settleCmd(a))
	rootCmd.AddCommand(deadlineCmd(a))
	rootCmd.AddCommand(summaryCmd(a))

	return rootCmd
}

// calculator builds the engine from the loaded configuration.
func (a *app) calculator() service.CaseCalculator {
	return service.NewCaseCalculator(service.CalculatorConfig{
		DefaultFeePercentage: decimal.NewNullDecimal(a.cfg.DefaultAttorneyFeePercentage),
		Thresholds:           a.cfg.AlertThresholds,
		StatuteYears:         a.cfg.StatuteYears,
	}, a.logger)
}
