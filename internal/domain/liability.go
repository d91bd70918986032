package domain

import "github.com/shopspring/decimal"

// LiabilityTolerance is how far a share set may drift from 100% and still
// count as balanced.
var LiabilityTolerance = decimal.RequireFromString("0.01")

// LiabilityShare is the percentage of fault assigned to one defendant.
// An invalid Percentage means the defendant record carried no value.
type LiabilityShare struct {
	DefendantID int64
	Percentage  decimal.NullDecimal
}

// EffectivePercentage returns the share's percentage, or an even split of
// 100 across count defendants when the percentage is absent.
func (s LiabilityShare) EffectivePercentage(count int) decimal.Decimal {
	if s.Percentage.Valid {
		return s.Percentage.Decimal
	}
	if count <= 0 {
		return decimal.Zero
	}
	return hundred.Div(decimal.NewFromInt(int64(count)))
}

// LiabilityStatus describes which way a share set is off.
type LiabilityStatus string

const (
	LiabilityBalanced       LiabilityStatus = "balanced"
	LiabilityOverAllocated  LiabilityStatus = "over_allocated"
	LiabilityUnderAllocated LiabilityStatus = "under_allocated"
)

// LiabilityCheck is the advisory result of ValidateLiability.
type LiabilityCheck struct {
	Total   decimal.Decimal // Sum of effective percentages
	IsValid bool            // Total within LiabilityTolerance of 100
	Delta   decimal.Decimal // Total - 100; positive means over-allocated
}

// Status classifies the check for display.
func (c LiabilityCheck) Status() LiabilityStatus {
	switch {
	case c.IsValid:
		return LiabilityBalanced
	case c.Delta.IsPositive():
		return LiabilityOverAllocated
	default:
		return LiabilityUnderAllocated
	}
}

// ValidateLiability sums the liability percentages of a case's defendants
// and reports whether they add up to 100. The shares are not modified and
// nothing is rejected; callers decide whether to block on IsValid.
func ValidateLiability(shares []LiabilityShare) LiabilityCheck {
	total := decimal.Zero
	for _, s := range shares {
		total = total.Add(s.EffectivePercentage(len(shares)))
	}
	delta := total.Sub(hundred)
	return LiabilityCheck{
		Total:   total,
		IsValid: delta.Abs().LessThanOrEqual(LiabilityTolerance),
		Delta:   delta,
	}
}
