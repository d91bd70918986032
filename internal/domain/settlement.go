package domain

import "github.com/shopspring/decimal"

// DefaultAttorneyFeePercentage is the contingency fee applied when neither
// the case nor the host configuration supplies one.
var DefaultAttorneyFeePercentage = decimal.RequireFromString("33.33")

// SettlementInput carries everything needed to split a settlement across
// a case's defendants.
type SettlementInput struct {
	TotalSettlement       decimal.Decimal
	AttorneyFeePercentage decimal.NullDecimal // Absent falls back to the default fee
	CaseExpenses          decimal.Decimal
	MedicalLiens          decimal.Decimal
	Shares                []LiabilityShare
}

// SettlementAllocation is one defendant's slice of the settlement.
type SettlementAllocation struct {
	DefendantID         int64
	LiabilityPercentage decimal.Decimal
	GrossAmount         decimal.Decimal
	AttorneyFee         decimal.Decimal
	CaseExpenses        decimal.Decimal
	MedicalLiens        decimal.Decimal
	NetAmount           decimal.Decimal // May be negative
}

// SettlementTotals are the case-level sums of every allocation.
type SettlementTotals struct {
	GrossAmount  decimal.Decimal
	AttorneyFee  decimal.Decimal
	CaseExpenses decimal.Decimal
	MedicalLiens decimal.Decimal
	ClientNet    decimal.Decimal
}

// SettlementDistribution is the result of Distribute.
type SettlementDistribution struct {
	FeePercentage decimal.Decimal
	Allocations   []SettlementAllocation
	Totals        SettlementTotals
}

// Unallocated returns the part of total that no defendant's share covers.
// It is zero for a balanced share set and negative when shares exceed 100%.
func (d SettlementDistribution) Unallocated(total decimal.Decimal) decimal.Decimal {
	return total.Sub(d.Totals.GrossAmount)
}

// NegativeNet returns the allocations whose net to client is below zero.
func (d SettlementDistribution) NegativeNet() []SettlementAllocation {
	var out []SettlementAllocation
	for _, a := range d.Allocations {
		if a.NetAmount.IsNegative() {
			out = append(out, a)
		}
	}
	return out
}

// Distribute splits a settlement across defendants using
// DefaultAttorneyFeePercentage when the input carries no fee.
func Distribute(input SettlementInput) SettlementDistribution {
	return DistributeWithDefaultFee(input, DefaultAttorneyFeePercentage)
}

// DistributeWithDefaultFee splits a settlement across defendants in
// proportion to their liability percentage.
//
// Every defendant's gross share carries the same fee rate and a
// proportional slice of case expenses and liens. Shares are used as given:
// a set summing to 90% distributes 90% of the settlement. Allocations keep
// the order of input.Shares and nothing is rounded.
func DistributeWithDefaultFee(input SettlementInput, defaultFee decimal.Decimal) SettlementDistribution {
	fee := defaultFee
	if input.AttorneyFeePercentage.Valid {
		fee = input.AttorneyFeePercentage.Decimal
	}

	dist := SettlementDistribution{
		FeePercentage: fee,
		Allocations:   make([]SettlementAllocation, 0, len(input.Shares)),
		Totals: SettlementTotals{
			GrossAmount:  decimal.Zero,
			AttorneyFee:  decimal.Zero,
			CaseExpenses: decimal.Zero,
			MedicalLiens: decimal.Zero,
			ClientNet:    decimal.Zero,
		},
	}

	for _, share := range input.Shares {
		pct := share.EffectivePercentage(len(input.Shares))

		gross := input.TotalSettlement.Mul(pct).Div(hundred)
		attorneyFee := gross.Mul(fee).Div(hundred)
		expenses := input.CaseExpenses.Mul(pct).Div(hundred)
		liens := input.MedicalLiens.Mul(pct).Div(hundred)
		net := gross.Sub(attorneyFee).Sub(expenses).Sub(liens)

		dist.Allocations = append(dist.Allocations, SettlementAllocation{
			DefendantID:         share.DefendantID,
			LiabilityPercentage: pct,
			GrossAmount:         gross,
			AttorneyFee:         attorneyFee,
			CaseExpenses:        expenses,
			MedicalLiens:        liens,
			NetAmount:           net,
		})

		dist.Totals.GrossAmount = dist.Totals.GrossAmount.Add(gross)
		dist.Totals.AttorneyFee = dist.Totals.AttorneyFee.Add(attorneyFee)
		dist.Totals.CaseExpenses = dist.Totals.CaseExpenses.Add(expenses)
		dist.Totals.MedicalLiens = dist.Totals.MedicalLiens.Add(liens)
		dist.Totals.ClientNet = dist.Totals.ClientNet.Add(net)
	}

	return dist
}
