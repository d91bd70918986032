package domain

import "github.com/shopspring/decimal"

// MedicalBill is one provider bill line attached to a case.
// Zero values stand in for amounts the provider never reported.
type MedicalBill struct {
	AmountBilled      decimal.Decimal
	InsurancePaid     decimal.Decimal
	InsuranceAdjusted decimal.Decimal
	MedpayPaid        decimal.Decimal
	PatientPaid       decimal.Decimal
	ReductionAmount   decimal.Decimal
}

// Credits returns everything applied against the billed amount.
func (b MedicalBill) Credits() decimal.Decimal {
	return decimal.Sum(decimal.Zero,
		b.InsurancePaid,
		b.InsuranceAdjusted,
		b.MedpayPaid,
		b.PatientPaid,
		b.ReductionAmount,
	)
}

// BalanceDue returns the outstanding amount on the bill, never below zero.
func (b MedicalBill) BalanceDue() decimal.Decimal {
	balance := b.AmountBilled.Sub(b.Credits())
	if balance.IsNegative() {
		return decimal.Zero
	}
	return balance
}

// AggregateLiens sums the outstanding balance of every bill into the
// case's medical lien amount. An empty slice yields zero.
func AggregateLiens(bills []MedicalBill) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bills {
		total = total.Add(b.BalanceDue())
	}
	return total
}

// BillSummary breaks the lien total down by column for the medical
// bills panel.
type BillSummary struct {
	Count             int
	AmountBilled      decimal.Decimal
	InsurancePaid     decimal.Decimal
	InsuranceAdjusted decimal.Decimal
	MedpayPaid        decimal.Decimal
	PatientPaid       decimal.Decimal
	Reductions        decimal.Decimal
	BalanceDue        decimal.Decimal
}

// SummarizeBills totals each column across bills. BalanceDue equals
// AggregateLiens(bills).
func SummarizeBills(bills []MedicalBill) BillSummary {
	s := BillSummary{Count: len(bills)}
	for _, b := range bills {
		s.AmountBilled = s.AmountBilled.Add(b.AmountBilled)
		s.InsurancePaid = s.InsurancePaid.Add(b.InsurancePaid)
		s.InsuranceAdjusted = s.InsuranceAdjusted.Add(b.InsuranceAdjusted)
		s.MedpayPaid = s.MedpayPaid.Add(b.MedpayPaid)
		s.PatientPaid = s.PatientPaid.Add(b.PatientPaid)
		s.Reductions = s.Reductions.Add(b.ReductionAmount)
		s.BalanceDue = s.BalanceDue.Add(b.BalanceDue())
	}
	return s
}
