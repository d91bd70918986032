package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/DukeRupert/casedesk/internal/domain"
	"github.com/DukeRupert/casedesk/internal/metrics"
	"github.com/DukeRupert/casedesk/internal/record"
)

// CaseCalculator defines the financial and deadline calculations run for a
// case. Every method is a pure function of its arguments plus the
// calculator's fixed configuration; "today" is always passed in.
type CaseCalculator interface {
	// Liens aggregates the outstanding balance of a case's medical bills.
	Liens(ctx context.Context, bills []domain.MedicalBill) LienReport

	// Liability checks that defendant liability shares sum to 100%.
	Liability(ctx context.Context, shares []domain.LiabilityShare) domain.LiabilityCheck

	// Settle distributes a settlement across defendants and flags anomalies.
	Settle(ctx context.Context, input domain.SettlementInput) SettlementReport

	// Deadline classifies a statute deadline and counts days since sign-up.
	Deadline(ctx context.Context, params DeadlineParams) DeadlineReport

	// Summarize runs every calculation for one case.
	Summarize(ctx context.Context, c record.CaseFile, today time.Time) CaseSummary
}

// CalculatorConfig carries the firm's business constants. Absent or zero
// values fall back to the engine defaults.
type CalculatorConfig struct {
	DefaultFeePercentage decimal.NullDecimal
	Thresholds           domain.AlertThresholds
	StatuteYears         int
}

// LienReport is the medical lien total with its column breakdown.
type LienReport struct {
	Total   decimal.Decimal
	Summary domain.BillSummary
}

// SettlementReport pairs a distribution with the advisory checks a caller
// shows next to it.
type SettlementReport struct {
	Check         domain.LiabilityCheck
	Distribution  domain.SettlementDistribution
	Unallocated   decimal.Decimal // Settlement not covered by any share
	NegativeNetTo []int64         // Defendants whose net to client is negative
	Warnings      []string
}

// DeadlineParams are the raw dates of a case.
type DeadlineParams struct {
	StatuteDeadline string
	SignUpDate      string
	DateOfIncident  string
	Today           time.Time
}

// DeadlineReport is the classified statute deadline of a case.
type DeadlineReport struct {
	Deadline *time.Time // Nil when no deadline could be read
	Derived  bool       // Deadline computed from the date of incident
	Status   domain.DeadlineStatus
	DaysOpen int
}

// CaseSummary is everything the case dashboard shows.
type CaseSummary struct {
	CaseID     string
	Liens      LienReport
	Liability  domain.LiabilityCheck
	Settlement *SettlementReport // Nil until a settlement amount is recorded
	Deadline   DeadlineReport
}

// caseCalculator implements CaseCalculator.
type caseCalculator struct {
	defaultFee   decimal.Decimal
	thresholds   domain.AlertThresholds
	statuteYears int
	logger       *slog.Logger
}

// NewCaseCalculator creates a new CaseCalculator.
func NewCaseCalculator(cfg CalculatorConfig, logger *slog.Logger) CaseCalculator {
	c := &caseCalculator{
		defaultFee:   domain.DefaultAttorneyFeePercentage,
		thresholds:   cfg.Thresholds,
		statuteYears: cfg.StatuteYears,
		logger:       logger,
	}
	if cfg.DefaultFeePercentage.Valid {
		c.defaultFee = cfg.DefaultFeePercentage.Decimal
	}
	if c.thresholds == (domain.AlertThresholds{}) {
		c.thresholds = domain.DefaultAlertThresholds
	}
	return c
}

// Liens aggregates the outstanding balance of a case's medical bills.
func (s *caseCalculator) Liens(ctx context.Context, bills []domain.MedicalBill) LienReport {
	metrics.CalculationPerformed("liens")

	summary := domain.SummarizeBills(bills)
	return LienReport{
		Total:   domain.AggregateLiens(bills),
		Summary: summary,
	}
}

// Liability checks that defendant liability shares sum to 100%.
func (s *caseCalculator) Liability(ctx context.Context, shares []domain.LiabilityShare) domain.LiabilityCheck {
	const op = "CaseCalculator.Liability"
	metrics.CalculationPerformed("liability")

	check := domain.ValidateLiability(shares)
	if !check.IsValid {
		metrics.LiabilityAnomaly(string(check.Status()))
		s.logger.WarnContext(ctx, "liability shares do not sum to 100",
			"op", op,
			"defendants", len(shares),
			"total", check.Total.StringFixed(2),
			"delta", check.Delta.StringFixed(2),
		)
	}
	return check
}

// Settle distributes a settlement across defendants and flags anomalies.
//
// A share set that does not sum to 100% is still distributed as given; the
// report carries the advisory check and a warning for the caller to show.
func (s *caseCalculator) Settle(ctx context.Context, input domain.SettlementInput) SettlementReport {
	const op = "CaseCalculator.Settle"
	metrics.CalculationPerformed("settlement")

	check := s.Liability(ctx, input.Shares)
	dist := domain.DistributeWithDefaultFee(input, s.defaultFee)

	report := SettlementReport{
		Check:        check,
		Distribution: dist,
		Unallocated:  dist.Unallocated(input.TotalSettlement),
	}

	if !check.IsValid && len(input.Shares) > 0 {
		report.Warnings = append(report.Warnings, liabilityWarning(check, report.Unallocated))
	}

	for _, a := range dist.NegativeNet() {
		report.NegativeNetTo = append(report.NegativeNetTo, a.DefendantID)
		report.Warnings = append(report.Warnings, fmt.Sprintf(
			"Net to client from defendant %d is negative (%s): fees, expenses and liens exceed the gross share",
			a.DefendantID, domain.FormatMoney(a.NetAmount),
		))
	}
	if n := len(report.NegativeNetTo); n > 0 {
		metrics.NegativeNet(n)
		s.logger.WarnContext(ctx, "negative net to client",
			"op", op,
			"defendants", report.NegativeNetTo,
			"client_net", dist.Totals.ClientNet.StringFixed(2),
		)
	}

	s.logger.DebugContext(ctx, "settlement distributed",
		"op", op,
		"defendants", len(dist.Allocations),
		"fee_percentage", dist.FeePercentage.String(),
		"client_net", dist.Totals.ClientNet.StringFixed(2),
	)

	return report
}

// Deadline classifies a statute deadline and counts days since sign-up.
//
// When no statute deadline is recorded and a limitations period is
// configured, the deadline is derived from the date of incident.
func (s *caseCalculator) Deadline(ctx context.Context, params DeadlineParams) DeadlineReport {
	metrics.CalculationPerformed("deadline")

	loc := params.Today.Location()
	report := DeadlineReport{
		DaysOpen: domain.DaysOpenString(params.SignUpDate, params.Today),
	}

	if d, ok := domain.ParseDate(params.StatuteDeadline, loc); ok {
		report.Deadline = &d
	} else if s.statuteYears > 0 {
		if incident, ok := domain.ParseDate(params.DateOfIncident, loc); ok {
			d := domain.StatuteDeadlineFrom(incident, s.statuteYears)
			report.Deadline = &d
			report.Derived = true
		}
	}

	report.Status = s.thresholds.Classify(report.Deadline, params.Today)
	metrics.DeadlineClassified(report.Status.Tier.String())

	return report
}

// Summarize runs every calculation for one case.
func (s *caseCalculator) Summarize(ctx context.Context, c record.CaseFile, today time.Time) CaseSummary {
	const op = "CaseCalculator.Summarize"
	metrics.CalculationPerformed("summary")

	summary := CaseSummary{
		CaseID: c.ID,
		Liens:  s.Liens(ctx, c.Bills),
		Deadline: s.Deadline(ctx, DeadlineParams{
			StatuteDeadline: c.StatuteDeadline,
			SignUpDate:      c.SignUpDate,
			DateOfIncident:  c.DateOfIncident,
			Today:           today,
		}),
	}

	// An explicit lien amount on the case replaces the bill aggregate.
	if c.MedicalLiens.Valid {
		summary.Liens.Total = c.MedicalLiens.Decimal
	}

	if c.HasSettlement {
		report := s.Settle(ctx, c.SettlementInput())
		summary.Settlement = &report
		summary.Liability = report.Check
	} else {
		summary.Liability = s.Liability(ctx, c.Defendants)
	}

	if summary.Deadline.Status.HasAlert() {
		s.logger.InfoContext(ctx, "statute deadline alert",
			"op", op,
			"case_id", c.ID,
			"tier", summary.Deadline.Status.Tier,
			"days_remaining", *summary.Deadline.Status.DaysRemaining,
		)
	}

	return summary
}

func liabilityWarning(check domain.LiabilityCheck, unallocated decimal.Decimal) string {
	if check.Delta.IsPositive() {
		return fmt.Sprintf(
			"Liability is over-allocated by %s: distributions exceed the settlement by %s",
			domain.FormatPercent(check.Delta), domain.FormatMoney(unallocated.Neg()),
		)
	}
	return fmt.Sprintf(
		"Liability is under-allocated by %s: %s of the settlement is not distributed",
		domain.FormatPercent(check.Delta.Neg()), domain.FormatMoney(unallocated),
	)
}
