package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/DukeRupert/casedesk/internal/domain"
	"github.com/DukeRupert/casedesk/internal/handler"
	"github.com/DukeRupert/casedesk/internal/record"
	"github.com/DukeRupert/casedesk/internal/service"
)

func liensCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liens",
		Short: "Total the outstanding medical liens of a case",
		Long: `Total the outstanding balance of a case's medical bills.

Each bill's balance is amount billed minus insurance paid, insurance
adjustments, med-pay, patient payments and reductions, never below zero.

Example:
  casecalc liens -f bills.json
  cat case.json | casecalc liens -f - --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			rec, err := a.readRecord(path)
			if err != nil {
				return err
			}

			report := a.calculator().Liens(cmd.Context(), record.Bills(rec.Records("bills", "medicalBills")))
			if a.jsonOut {
				return writeJSON(a.out, handler.NewLienView(report))
			}
			return renderLiens(a.out, report)
		},
	}
	cmd.Flags().StringP("file", "f", "", "Case or bills JSON file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func liabilityCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "liability",
		Short: "Check that defendant liability shares sum to 100%",
		Long: `Check that the liability shares of a case's defendants sum to 100%
within 0.01 percentage points. Defendants without a share split 100% evenly.

The check is advisory: a share set that is off still exits 0.

Example:
  casecalc liability -f case.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			rec, err := a.readRecord(path)
			if err != nil {
				return err
			}

			check := a.calculator().Liability(cmd.Context(), record.Shares(rec.Records("defendants")))
			if a.jsonOut {
				return writeJSON(a.out, handler.NewLiabilityView(check))
			}
			return renderLiability(a.out, check)
		},
	}
	cmd.Flags().StringP("file", "f", "", "Case JSON file (- for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func settleCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Distribute a settlement across defendants",
		Long: `Distribute a case's settlement across its defendants in proportion to
liability, with each defendant's share carrying the attorney fee and a
proportional slice of case expenses and medical liens.

Example:
  casecalc settle -f case.json
  casecalc settle -f case.json --fee 40`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			rec, err := a.readRecord(path)
			if err != nil {
				return err
			}

			input := record.Case(rec).SettlementInput()
			if cmd.Flags().Changed("fee") {
				raw, _ := cmd.Flags().GetString("fee")
				fee, err := decimal.NewFromString(raw)
				if err != nil || !domain.WithinMoneyRange(fee) {
					return fmt.Errorf("--fee must be a number, got %q", raw)
				}
				input.AttorneyFeePercentage = decimal.NewNullDecimal(fee)
			}

			report := a.calculator().Settle(cmd.Context(), input)
			if a.jsonOut {
				return writeJSON(a.out, handler.NewSettlementView(report))
			}
			return renderSettlement(a.out, report)
		},
	}
	cmd.Flags().StringP("file", "f", "", "Case JSON file (- for stdin)")
	cmd.Flags().String("fee", "", "Attorney fee percentage, overriding the case file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func deadlineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deadline",
		Short: "Classify a statute of limitations deadline",
		Long: `Count the days left until the statute of limitations deadline and
classify them into an alert tier (expired, critical, warning, caution, none).

Dates come from flags, or from a case file with -f. Flags win over the file.

Example:
  casecalc deadline --deadline 2027-03-01
  casecalc deadline --deadline 2027-03-01 --signup 2026-01-15 --today 2026-10-18
  casecalc deadline -f case.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := service.DeadlineParams{}

			if path, _ := cmd.Flags().GetString("file"); path != "" {
				rec, err := a.readRecord(path)
				if err != nil {
					return err
				}
				c := record.Case(rec)
				params.StatuteDeadline = c.StatuteDeadline
				params.SignUpDate = c.SignUpDate
				params.DateOfIncident = c.DateOfIncident
			}
			if cmd.Flags().Changed("deadline") {
				params.StatuteDeadline, _ = cmd.Flags().GetString("deadline")
			}
			if cmd.Flags().Changed("signup") {
				params.SignUpDate, _ = cmd.Flags().GetString("signup")
			}
			if cmd.Flags().Changed("incident") {
				params.DateOfIncident, _ = cmd.Flags().GetString("incident")
			}

			today, err := a.today(cmd)
			if err != nil {
				return err
			}
			params.Today = today

			report := a.calculator().Deadline(cmd.Context(), params)
			if a.jsonOut {
				return writeJSON(a.out, handler.NewDeadlineView(report))
			}
			return renderDeadline(a.out, report)
		},
	}
	cmd.Flags().StringP("file", "f", "", "Case JSON file (- for stdin)")
	cmd.Flags().String("deadline", "", "Statute of limitations deadline (YYYY-MM-DD)")
	cmd.Flags().String("signup", "", "Client sign-up date (YYYY-MM-DD)")
	cmd.Flags().String("incident", "", "Date of incident (YYYY-MM-DD)")
	cmd.Flags().String("today", "", "Evaluate as of this date instead of the system clock")
	return cmd
}

func summaryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Run every calculation for a case",
		Long: `Run the lien, liability, settlement and deadline calculations for one
case file. The settlement section is skipped until the case records a
settlement amount.

Example:
  casecalc summary -f case.json --today 2026-10-18`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")
			rec, err := a.readRecord(path)
			if err != nil {
				return err
			}

			today, err := a.today(cmd)
			if err != nil {
				return err
			}

			summary := a.calculator().Summarize(cmd.Context(), record.Case(rec), today)
			if a.jsonOut {
				return writeJSON(a.out, handler.NewCaseSummaryView(summary))
			}
			return renderSummary(a.out, summary)
		},
	}
	cmd.Flags().StringP("file", "f", "", "Case JSON file (- for stdin)")
	cmd.Flags().String("today", "", "Evaluate as of this date instead of the system clock")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// =============================================================================
// Helpers
// =============================================================================

// readRecord decodes the JSON object at path, or stdin for "-".
func (a *app) readRecord(path string) (record.Record, error) {
	var r io.Reader
	if path == "-" {
		r = a.in
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open case file: %w", err)
		}
		defer f.Close()
		r = f
	}

	rec, err := record.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", path, domain.ErrorMessage(err))
	}
	return rec, nil
}

// today reads --today, falling back to the clock.
func (a *app) today(cmd *cobra.Command) (time.Time, error) {
	now := a.now()
	raw, _ := cmd.Flags().GetString("today")
	if raw == "" {
		return now, nil
	}
	t, ok := domain.ParseDate(raw, now.Location())
	if !ok {
		return time.Time{}, fmt.Errorf("--today must be a date like 2006-01-02, got %q", raw)
	}
	return t, nil
}
