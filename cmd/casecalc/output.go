package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"

	"github.com/DukeRupert/casedesk/internal/domain"
	"github.com/DukeRupert/casedesk/internal/service"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func renderLiens(w io.Writer, r service.LienReport) error {
	s := r.Summary
	tw := newTable(w)
	fmt.Fprintf(tw, "Bills\t%d\t\n", s.Count)
	fmt.Fprintf(tw, "Amount billed\t%s\t\n", domain.FormatMoney(s.AmountBilled))
	fmt.Fprintf(tw, "Insurance paid\t%s\t\n", domain.FormatMoney(s.InsurancePaid.Neg()))
	fmt.Fprintf(tw, "Insurance adjusted\t%s\t\n", domain.FormatMoney(s.InsuranceAdjusted.Neg()))
	fmt.Fprintf(tw, "Med-pay paid\t%s\t\n", domain.FormatMoney(s.MedpayPaid.Neg()))
	fmt.Fprintf(tw, "Patient paid\t%s\t\n", domain.FormatMoney(s.PatientPaid.Neg()))
	fmt.Fprintf(tw, "Reductions\t%s\t\n", domain.FormatMoney(s.Reductions.Neg()))
	fmt.Fprintf(tw, "Outstanding liens\t%s\t\n", domain.FormatMoney(r.Total))
	return tw.Flush()
}

func renderLiability(w io.Writer, c domain.LiabilityCheck) error {
	_, err := fmt.Fprintf(w, "Liability total: %s (%s)\n", domain.FormatPercent(c.Total), c.Status())
	return err
}

func renderSettlement(w io.Writer, r service.SettlementReport) error {
	d := r.Distribution

	fmt.Fprintf(w, "Attorney fee: %s\n\n", domain.FormatPercent(d.FeePercentage))

	tw := newTable(w)
	fmt.Fprintln(tw, "Defendant\tLiability\tGross\tFee\tExpenses\tLiens\tNet to client\t")
	for _, a := range d.Allocations {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			a.DefendantID,
			domain.FormatPercent(a.LiabilityPercentage),
			domain.FormatMoney(a.GrossAmount),
			domain.FormatMoney(a.AttorneyFee),
			domain.FormatMoney(a.CaseExpenses),
			domain.FormatMoney(a.MedicalLiens),
			domain.FormatMoney(a.NetAmount),
		)
	}
	fmt.Fprintf(tw, "Total\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
		domain.FormatPercent(r.Check.Total),
		domain.FormatMoney(d.Totals.GrossAmount),
		domain.FormatMoney(d.Totals.AttorneyFee),
		domain.FormatMoney(d.Totals.CaseExpenses),
		domain.FormatMoney(d.Totals.MedicalLiens),
		domain.FormatMoney(d.Totals.ClientNet),
	)
	if err := tw.Flush(); err != nil {
		return err
	}

	return renderWarnings(w, r.Warnings)
}

func renderWarnings(w io.Writer, warnings []string) error {
	if len(warnings) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	for _, msg := range warnings {
		if _, err := fmt.Fprintf(w, "warning: %s\n", msg); err != nil {
			return err
		}
	}
	return nil
}

func renderDeadline(w io.Writer, r service.DeadlineReport) error {
	if r.Deadline == nil || r.Status.DaysRemaining == nil {
		_, err := fmt.Fprintf(w, "No statute deadline recorded\nDays open: %d\n", r.DaysOpen)
		return err
	}

	source := ""
	if r.Derived {
		source = " (derived from date of incident)"
	}
	fmt.Fprintf(w, "Statute deadline: %s%s\n", r.Deadline.Format(time.DateOnly), source)
	fmt.Fprintf(w, "Days remaining: %d\n", *r.Status.DaysRemaining)
	fmt.Fprintf(w, "Alert: %s\n", r.Status.Tier)
	_, err := fmt.Fprintf(w, "Days open: %d\n", r.DaysOpen)
	return err
}

func renderSummary(w io.Writer, s service.CaseSummary) error {
	if s.CaseID != "" {
		fmt.Fprintf(w, "Case %s\n\n", s.CaseID)
	}

	fmt.Fprintf(w, "Outstanding liens: %s\n", domain.FormatMoney(s.Liens.Total))
	if err := renderLiability(w, s.Liability); err != nil {
		return err
	}
	fmt.Fprintln(w)

	if err := renderDeadline(w, s.Deadline); err != nil {
		return err
	}

	if s.Settlement == nil {
		_, err := fmt.Fprintln(w, "\nNo settlement recorded")
		return err
	}
	fmt.Fprintln(w)
	return renderSettlement(w, *s.Settlement)
}
