package handler

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/DukeRupert/casedesk/internal/domain"
	"github.com/DukeRupert/casedesk/internal/service"
)

// writeJSON encodes v as the response body. v is marshaled before the
// header goes out, so an encoding failure leaves the response untouched.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
	return nil
}

// =============================================================================
// Response Views
// =============================================================================
//
// Amounts go out twice: the exact decimal for anything that computes
// further, and a cent-rounded display string.

// MoneyView is an amount as exact decimal text plus its display form.
type MoneyView struct {
	Amount    string `json:"amount"`
	Formatted string `json:"formatted"`
}

// NewMoneyView renders an amount for the wire.
func NewMoneyView(d decimal.Decimal) MoneyView {
	return MoneyView{
		Amount:    d.String(),
		Formatted: domain.FormatMoney(d),
	}
}

// BillSummaryView mirrors domain.BillSummary.
type BillSummaryView struct {
	Count             int       `json:"count"`
	AmountBilled      MoneyView `json:"amountBilled"`
	InsurancePaid     MoneyView `json:"insurancePaid"`
	InsuranceAdjusted MoneyView `json:"insuranceAdjusted"`
	MedpayPaid        MoneyView `json:"medpayPaid"`
	PatientPaid       MoneyView `json:"patientPaid"`
	Reductions        MoneyView `json:"reductions"`
	BalanceDue        MoneyView `json:"balanceDue"`
}

// LienView is the response of the liens endpoint.
type LienView struct {
	Total   MoneyView       `json:"total"`
	Summary BillSummaryView `json:"summary"`
}

func NewLienView(r service.LienReport) LienView {
	s := r.Summary
	return LienView{
		Total: NewMoneyView(r.Total),
		Summary: BillSummaryView{
			Count:             s.Count,
			AmountBilled:      NewMoneyView(s.AmountBilled),
			InsurancePaid:     NewMoneyView(s.InsurancePaid),
			InsuranceAdjusted: NewMoneyView(s.InsuranceAdjusted),
			MedpayPaid:        NewMoneyView(s.MedpayPaid),
			PatientPaid:       NewMoneyView(s.PatientPaid),
			Reductions:        NewMoneyView(s.Reductions),
			BalanceDue:        NewMoneyView(s.BalanceDue),
		},
	}
}

// LiabilityView is the response of the liability endpoint.
type LiabilityView struct {
	Total   string `json:"total"`
	IsValid bool   `json:"isValid"`
	Delta   string `json:"delta"`
	Status  string `json:"status"`
}

func NewLiabilityView(c domain.LiabilityCheck) LiabilityView {
	return LiabilityView{
		Total:   c.Total.String(),
		IsValid: c.IsValid,
		Delta:   c.Delta.String(),
		Status:  string(c.Status()),
	}
}

// AllocationView is one defendant's row of the distribution table.
type AllocationView struct {
	DefendantID         int64     `json:"defendantId"`
	LiabilityPercentage string    `json:"liabilityPercentage"`
	GrossAmount         MoneyView `json:"grossAmount"`
	AttorneyFee         MoneyView `json:"attorneyFee"`
	CaseExpenses        MoneyView `json:"caseExpenses"`
	MedicalLiens        MoneyView `json:"medicalLiens"`
	NetAmount           MoneyView `json:"netAmount"`
}

// TotalsView is the footer row of the distribution table.
type TotalsView struct {
	GrossAmount  MoneyView `json:"grossAmount"`
	AttorneyFee  MoneyView `json:"attorneyFee"`
	CaseExpenses MoneyView `json:"caseExpenses"`
	MedicalLiens MoneyView `json:"medicalLiens"`
	ClientNet    MoneyView `json:"clientNet"`
}

// SettlementView is the response of the settlement endpoint.
type SettlementView struct {
	FeePercentage string           `json:"attorneyFeePercentage"`
	Liability     LiabilityView    `json:"liability"`
	Allocations   []AllocationView `json:"allocations"`
	Totals        TotalsView       `json:"totals"`
	Unallocated   MoneyView        `json:"unallocated"`
	NegativeNetTo []int64          `json:"negativeNetDefendants"`
	Warnings      []string         `json:"warnings"`
}

// NewSettlementView flattens a settlement report. Empty lists are kept as
// [] so clients never see null.
func NewSettlementView(r service.SettlementReport) SettlementView {
	d := r.Distribution
	v := SettlementView{
		FeePercentage: d.FeePercentage.String(),
		Liability:     NewLiabilityView(r.Check),
		Allocations:   make([]AllocationView, 0, len(d.Allocations)),
		Totals: TotalsView{
			GrossAmount:  NewMoneyView(d.Totals.GrossAmount),
			AttorneyFee:  NewMoneyView(d.Totals.AttorneyFee),
			CaseExpenses: NewMoneyView(d.Totals.CaseExpenses),
			MedicalLiens: NewMoneyView(d.Totals.MedicalLiens),
			ClientNet:    NewMoneyView(d.Totals.ClientNet),
		},
		Unallocated:   NewMoneyView(r.Unallocated),
		NegativeNetTo: r.NegativeNetTo,
		Warnings:      r.Warnings,
	}
	if v.NegativeNetTo == nil {
		v.NegativeNetTo = []int64{}
	}
	if v.Warnings == nil {
		v.Warnings = []string{}
	}
	for _, a := range d.Allocations {
		v.Allocations = append(v.Allocations, AllocationView{
			DefendantID:         a.DefendantID,
			LiabilityPercentage: a.LiabilityPercentage.String(),
			GrossAmount:         NewMoneyView(a.GrossAmount),
			AttorneyFee:         NewMoneyView(a.AttorneyFee),
			CaseExpenses:        NewMoneyView(a.CaseExpenses),
			MedicalLiens:        NewMoneyView(a.MedicalLiens),
			NetAmount:           NewMoneyView(a.NetAmount),
		})
	}
	return v
}

// DeadlineView is the response of the deadline endpoint.
type DeadlineView struct {
	StatuteDeadline *string `json:"statuteDeadline"`
	Derived         bool    `json:"derived"`
	DaysRemaining   *int    `json:"daysRemaining"`
	Tier            string  `json:"tier"`
	DaysOpen        int     `json:"daysOpen"`
}

func NewDeadlineView(r service.DeadlineReport) DeadlineView {
	v := DeadlineView{
		Derived:       r.Derived,
		DaysRemaining: r.Status.DaysRemaining,
		Tier:          r.Status.Tier.String(),
		DaysOpen:      r.DaysOpen,
	}
	if r.Deadline != nil {
		s := r.Deadline.Format(time.DateOnly)
		v.StatuteDeadline = &s
	}
	return v
}

// CaseSummaryView is the response of the case summary endpoint.
type CaseSummaryView struct {
	CaseID     string          `json:"caseId"`
	Liens      LienView        `json:"liens"`
	Liability  LiabilityView   `json:"liability"`
	Settlement *SettlementView `json:"settlement"`
	Deadline   DeadlineView    `json:"deadline"`
}

// NewCaseSummaryView renders every section of a case summary.
func NewCaseSummaryView(s service.CaseSummary) CaseSummaryView {
	v := CaseSummaryView{
		CaseID:    s.CaseID,
		Liens:     NewLienView(s.Liens),
		Liability: NewLiabilityView(s.Liability),
		Deadline:  NewDeadlineView(s.Deadline),
	}
	if s.Settlement != nil {
		sv := NewSettlementView(*s.Settlement)
		v.Settlement = &sv
	}
	return v
}
