package service

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/casedesk/internal/domain"
	"github.com/DukeRupert/casedesk/internal/record"
)

var today = time.Date(2026, time.October, 18, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pct(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func newTestCalculator(t *testing.T, cfg CalculatorConfig) (CaseCalculator, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return NewCaseCalculator(cfg, logger), &buf
}

func TestCaseCalculator_Liens(t *testing.T) {
	calc, _ := newTestCalculator(t, CalculatorConfig{})

	got := calc.Liens(context.Background(), []domain.MedicalBill{
		{AmountBilled: dec("500"), InsurancePaid: dec("600")},
		{AmountBilled: dec("2500"), InsurancePaid: dec("1000"), ReductionAmount: dec("250")},
	})

	assert.True(t, got.Total.Equal(dec("1250")), "total %s", got.Total)
	assert.Equal(t, 2, got.Summary.Count)
	assert.True(t, got.Summary.BalanceDue.Equal(got.Total))
}

func TestCaseCalculator_SettleBalanced(t *testing.T) {
	calc, logs := newTestCalculator(t, CalculatorConfig{})

	report := calc.Settle(context.Background(), domain.SettlementInput{
		TotalSettlement:       dec("100000"),
		AttorneyFeePercentage: pct("33.33"),
		MedicalLiens:          dec("20000"),
		Shares: []domain.LiabilityShare{
			{DefendantID: 1, Percentage: pct("60")},
			{DefendantID: 2, Percentage: pct("40")},
		},
	})

	assert.True(t, report.Check.IsValid)
	assert.Empty(t, report.Warnings)
	assert.Empty(t, report.NegativeNetTo)
	assert.True(t, report.Unallocated.IsZero())
	assert.True(t, report.Distribution.Totals.ClientNet.Equal(dec("46670")))
	assert.NotContains(t, logs.String(), "level=WARN")
}

func TestCaseCalculator_SettleUnderAllocated(t *testing.T) {
	calc, logs := newTestCalculator(t, CalculatorConfig{})

	report := calc.Settle(context.Background(), domain.SettlementInput{
		TotalSettlement:       dec("50000"),
		AttorneyFeePercentage: pct("33.33"),
		Shares: []domain.LiabilityShare{
			{DefendantID: 1, Percentage: pct("70")},
			{DefendantID: 2, Percentage: pct("20")},
		},
	})

	assert.False(t, report.Check.IsValid)
	assert.True(t, report.Check.Delta.Equal(dec("-10")))
	require.Len(t, report.Distribution.Allocations, 2)
	assert.True(t, report.Distribution.Totals.GrossAmount.Equal(dec("45000")))
	assert.True(t, report.Unallocated.Equal(dec("5000")))
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "Liability is under-allocated by 10.00%: $5,000.00 of the settlement is not distributed", report.Warnings[0])
	assert.Contains(t, logs.String(), "liability shares do not sum to 100")
}

func TestCaseCalculator_SettleOverAllocated(t *testing.T) {
	calc, _ := newTestCalculator(t, CalculatorConfig{})

	report := calc.Settle(context.Background(), domain.SettlementInput{
		TotalSettlement: dec("10000"),
		Shares: []domain.LiabilityShare{
			{DefendantID: 1, Percentage: pct("80")},
			{DefendantID: 2, Percentage: pct("40")},
		},
	})

	require.Len(t, report.Warnings, 1)
	assert.Equal(t, "Liability is over-allocated by 20.00%: distributions exceed the settlement by $2,000.00", report.Warnings[0])
	assert.True(t, report.Unallocated.Equal(dec("-2000")))
}

func TestCaseCalculator_SettleNegativeNet(t *testing.T) {
	calc, logs := newTestCalculator(t, CalculatorConfig{})

	report := calc.Settle(context.Background(), domain.SettlementInput{
		TotalSettlement:       dec("10000"),
		AttorneyFeePercentage: pct("40"),
		MedicalLiens:          dec("9000"),
		Shares:                []domain.LiabilityShare{{DefendantID: 4, Percentage: pct("100")}},
	})

	assert.Equal(t, []int64{4}, report.NegativeNetTo)
	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "defendant 4 is negative (-$3,000.00)")
	assert.Contains(t, logs.String(), "negative net to client")
}

func TestCaseCalculator_SettleUsesConfiguredFee(t *testing.T) {
	calc, _ := newTestCalculator(t, CalculatorConfig{DefaultFeePercentage: pct("40")})

	report := calc.Settle(context.Background(), domain.SettlementInput{
		TotalSettlement: dec("1000"),
		Shares:          []domain.LiabilityShare{{DefendantID: 1, Percentage: pct("100")}},
	})
	assert.True(t, report.Distribution.FeePercentage.Equal(dec("40")))
	assert.True(t, report.Distribution.Totals.AttorneyFee.Equal(dec("400")))

	zeroFee, _ := newTestCalculator(t, CalculatorConfig{DefaultFeePercentage: pct("0")})
	report = zeroFee.Settle(context.Background(), domain.SettlementInput{
		TotalSettlement: dec("1000"),
		Shares:          []domain.LiabilityShare{{DefendantID: 1, Percentage: pct("100")}},
	})
	assert.True(t, report.Distribution.Totals.AttorneyFee.IsZero())
}

func TestCaseCalculator_Deadline(t *testing.T) {
	calc, _ := newTestCalculator(t, CalculatorConfig{})

	got := calc.Deadline(context.Background(), DeadlineParams{
		StatuteDeadline: "2026-11-02",
		SignUpDate:      "2026-10-01",
		Today:           today,
	})
	require.NotNil(t, got.Deadline)
	require.NotNil(t, got.Status.DaysRemaining)
	assert.Equal(t, 15, *got.Status.DaysRemaining)
	assert.Equal(t, domain.AlertTierCritical, got.Status.Tier)
	assert.Equal(t, 17, got.DaysOpen)
	assert.False(t, got.Derived)

	missing := calc.Deadline(context.Background(), DeadlineParams{
		DateOfIncident: "2025-01-01",
		Today:          today,
	})
	assert.Nil(t, missing.Deadline)
	assert.Nil(t, missing.Status.DaysRemaining)
	assert.Equal(t, domain.AlertTierNone, missing.Status.Tier)
	assert.Equal(t, 0, missing.DaysOpen)
}

func TestCaseCalculator_DeadlineDerivedFromIncident(t *testing.T) {
	calc, _ := newTestCalculator(t, CalculatorConfig{StatuteYears: 2})

	got := calc.Deadline(context.Background(), DeadlineParams{
		DateOfIncident: "2024-12-01",
		Today:          today,
	})

	require.NotNil(t, got.Deadline)
	assert.True(t, got.Derived)
	assert.Equal(t, "2026-12-01", got.Deadline.Format("2006-01-02"))
	require.NotNil(t, got.Status.DaysRemaining)
	assert.Equal(t, 44, *got.Status.DaysRemaining)
	assert.Equal(t, domain.AlertTierWarning, got.Status.Tier)
}

func TestCaseCalculator_DeadlineCustomThresholds(t *testing.T) {
	calc, _ := newTestCalculator(t, CalculatorConfig{
		Thresholds: domain.AlertThresholds{Critical: 7, Warning: 14, Caution: 21},
	})

	got := calc.Deadline(context.Background(), DeadlineParams{
		StatuteDeadline: "2026-11-02",
		Today:           today,
	})
	assert.Equal(t, domain.AlertTierCaution, got.Status.Tier)
}

func TestCaseCalculator_Summarize(t *testing.T) {
	calc, logs := newTestCalculator(t, CalculatorConfig{})

	c := record.CaseFile{
		ID:                    "PI-77",
		TotalSettlement:       dec("90000"),
		HasSettlement:         true,
		AttorneyFeePercentage: pct("33.33"),
		StatuteDeadline:       "2026-12-02",
		SignUpDate:            "2026-01-01",
		Defendants:            []domain.LiabilityShare{{DefendantID: 1, Percentage: pct("100")}},
		Bills: []domain.MedicalBill{
			{AmountBilled: dec("12000"), InsurancePaid: dec("2000")},
		},
	}

	got := calc.Summarize(context.Background(), c, today)

	assert.Equal(t, "PI-77", got.CaseID)
	assert.True(t, got.Liens.Total.Equal(dec("10000")))
	assert.True(t, got.Liability.IsValid)
	require.NotNil(t, got.Settlement)
	require.Len(t, got.Settlement.Distribution.Allocations, 1)
	a := got.Settlement.Distribution.Allocations[0]
	assert.True(t, a.AttorneyFee.Equal(dec("29997")))
	assert.True(t, a.NetAmount.Equal(dec("50003")))
	assert.Equal(t, domain.AlertTierWarning, got.Deadline.Status.Tier)
	assert.Equal(t, 290, got.Deadline.DaysOpen)
	assert.Contains(t, logs.String(), "statute deadline alert")
}

func TestCaseCalculator_SummarizeWithoutSettlement(t *testing.T) {
	calc, _ := newTestCalculator(t, CalculatorConfig{})

	got := calc.Summarize(context.Background(), record.CaseFile{
		ID:           "PI-78",
		MedicalLiens: pct("4200"),
		Defendants: []domain.LiabilityShare{
			{DefendantID: 1, Percentage: pct("50")},
		},
	}, today)

	assert.Nil(t, got.Settlement)
	assert.True(t, got.Liens.Total.Equal(dec("4200")))
	assert.False(t, got.Liability.IsValid)
	assert.Equal(t, domain.AlertTierNone, got.Deadline.Status.Tier)
}
