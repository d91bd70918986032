package record

import (
	"github.com/shopspring/decimal"

	"github.com/DukeRupert/casedesk/internal/domain"
)

// CaseFile is a case row with its defendants and medical bills, normalized
// for the calculation engine. Dates stay as raw text; the engine parses
// them against the caller's "today".
type CaseFile struct {
	ID                    string
	ClientName            string
	TotalSettlement       decimal.Decimal
	HasSettlement         bool
	AttorneyFeePercentage decimal.NullDecimal
	CaseExpenses          decimal.Decimal
	MedicalLiens          decimal.NullDecimal // Explicit override of the bill aggregate
	StatuteDeadline       string
	SignUpDate            string
	DateOfIncident        string
	Defendants            []domain.LiabilityShare
	Bills                 []domain.MedicalBill
}

// Bill normalizes one medical bill row.
func Bill(r Record) domain.MedicalBill {
	return domain.MedicalBill{
		AmountBilled:      r.Amount("amountBilled", "billedAmount"),
		InsurancePaid:     r.Amount("insurancePaid"),
		InsuranceAdjusted: r.Amount("insuranceAdjusted", "insuranceAdjustment"),
		MedpayPaid:        r.Amount("medpayPaid", "medPayPaid"),
		PatientPaid:       r.Amount("patientPaid"),
		ReductionAmount:   r.Amount("reductionAmount", "reduction"),
	}
}

// Bills normalizes a list of bill rows.
func Bills(rows []Record) []domain.MedicalBill {
	out := make([]domain.MedicalBill, 0, len(rows))
	for _, r := range rows {
		out = append(out, Bill(r))
	}
	return out
}

// Share normalizes one defendant row into its liability share.
func Share(r Record) domain.LiabilityShare {
	return domain.LiabilityShare{
		DefendantID: r.Int("defendantId", "id"),
		Percentage:  r.Percentage("liabilityPercentage", "percentage"),
	}
}

// Shares normalizes a list of defendant rows, keeping their order.
func Shares(rows []Record) []domain.LiabilityShare {
	out := make([]domain.LiabilityShare, 0, len(rows))
	for _, r := range rows {
		out = append(out, Share(r))
	}
	return out
}

// Case normalizes a case row together with its nested defendants and bills.
func Case(r Record) CaseFile {
	_, hasSettlement := r.Lookup("totalSettlement", "settlementAmount")
	var liens decimal.NullDecimal
	if v, ok := r.Lookup("medicalLiens"); ok {
		liens = decimal.NewNullDecimal(domain.ParseAmount(v))
	}

	return CaseFile{
		ID:                    r.String("id", "caseId", "caseNumber"),
		ClientName:            r.String("clientName"),
		TotalSettlement:       r.Amount("totalSettlement", "settlementAmount"),
		HasSettlement:         hasSettlement,
		AttorneyFeePercentage: r.Percentage("attorneyFeePercentage", "feePercentage"),
		CaseExpenses:          r.Amount("caseExpenses"),
		MedicalLiens:          liens,
		StatuteDeadline:       r.String("statuteDeadline", "statuteOfLimitations"),
		SignUpDate:            r.String("signUpDate", "signupDate"),
		DateOfIncident:        r.String("dateOfIncident", "incidentDate"),
		Defendants:            Shares(r.Records("defendants")),
		Bills:                 Bills(r.Records("medicalBills", "bills")),
	}
}

// Liens returns the explicit medical lien amount when the case carries
// one, otherwise the aggregate of its bills.
func (c CaseFile) Liens() decimal.Decimal {
	if c.MedicalLiens.Valid {
		return c.MedicalLiens.Decimal
	}
	return domain.AggregateLiens(c.Bills)
}

// SettlementInput builds the engine input for the case.
func (c CaseFile) SettlementInput() domain.SettlementInput {
	return domain.SettlementInput{
		TotalSettlement:       c.TotalSettlement,
		AttorneyFeePercentage: c.AttorneyFeePercentage,
		CaseExpenses:          c.CaseExpenses,
		MedicalLiens:          c.Liens(),
		Shares:                c.Defendants,
	}
}
