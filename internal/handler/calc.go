// Package handler contains HTTP handlers for the casedesk calculation API.
//
// This file implements the calculation endpoints. Each one decodes a
// loosely-typed JSON record, runs it through the case calculator and answers
// with exact decimal amounts alongside their display form.
package handler

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/DukeRupert/casedesk/internal/domain"
	"github.com/DukeRupert/casedesk/internal/record"
	"github.com/DukeRupert/casedesk/internal/service"
)

// MaxBodyBytes caps the size of a calculation request body.
const MaxBodyBytes = 1 << 20

// =============================================================================
// Handler Configuration
// =============================================================================

// CalcHandler handles the calculation API.
type CalcHandler struct {
	calc   service.CaseCalculator
	now    func() time.Time
	logger *slog.Logger
}

// NewCalcHandler creates a new CalcHandler. now supplies "today" when a
// request does not carry one; nil means the server clock.
func NewCalcHandler(
	calc service.CaseCalculator,
	now func() time.Time,
	logger *slog.Logger,
) *CalcHandler {
	if now == nil {
		now = time.Now
	}
	return &CalcHandler{
		calc:   calc,
		now:    now,
		logger: logger,
	}
}

// respond writes v as a 200 response, falling back to a generic 500 if it
// cannot be encoded.
func (h *CalcHandler) respond(w http.ResponseWriter, r *http.Request, v any) {
	if err := writeJSON(w, http.StatusOK, v); err != nil {
		InternalErrorResponse(w, r, h.logger, err)
	}
}

// RegisterRoutes registers the calculation routes on the provided mux.
func (h *CalcHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/liens", h.Liens)
	mux.HandleFunc("POST /api/liability", h.Liability)
	mux.HandleFunc("POST /api/settlement", h.Settlement)
	mux.HandleFunc("POST /api/deadline", h.Deadline)
	mux.HandleFunc("POST /api/cases/summary", h.Summary)
}

// =============================================================================
// POST /api/liens - Aggregate Medical Liens
// =============================================================================

// Liens totals the outstanding balance of the bills in the request.
func (h *CalcHandler) Liens(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decode(w, r)
	if !ok {
		return
	}

	report := h.calc.Liens(r.Context(), record.Bills(rec.Records("bills", "medicalBills")))
	h.respond(w, r, NewLienView(report))
}

// =============================================================================
// POST /api/liability - Validate Liability Shares
// =============================================================================

// Liability checks the defendants' shares sum to 100%.
func (h *CalcHandler) Liability(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decode(w, r)
	if !ok {
		return
	}

	check := h.calc.Liability(r.Context(), record.Shares(rec.Records("defendants")))
	h.respond(w, r, NewLiabilityView(check))
}

// =============================================================================
// POST /api/settlement - Distribute Settlement
// =============================================================================

// Settlement distributes the case's settlement across its defendants.
// Lien and share anomalies are reported as warnings, never as errors.
func (h *CalcHandler) Settlement(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decode(w, r)
	if !ok {
		return
	}

	c := record.Case(rec)
	report := h.calc.Settle(r.Context(), c.SettlementInput())
	h.respond(w, r, NewSettlementView(report))
}

// =============================================================================
// POST /api/deadline - Classify Statute Deadline
// =============================================================================

// Deadline classifies the statute deadline and counts days since sign-up.
func (h *CalcHandler) Deadline(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decode(w, r)
	if !ok {
		return
	}

	today, err := h.today(rec, "Handler.Deadline")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	report := h.calc.Deadline(r.Context(), service.DeadlineParams{
		StatuteDeadline: rec.String("statuteDeadline", "statuteOfLimitations"),
		SignUpDate:      rec.String("signUpDate", "signupDate"),
		DateOfIncident:  rec.String("dateOfIncident", "incidentDate"),
		Today:           today,
	})
	h.respond(w, r, NewDeadlineView(report))
}

// =============================================================================
// POST /api/cases/summary - Full Case Summary
// =============================================================================

// Summary runs every calculation for the case in the request.
func (h *CalcHandler) Summary(w http.ResponseWriter, r *http.Request) {
	rec, ok := h.decode(w, r)
	if !ok {
		return
	}

	today, err := h.today(rec, "Handler.Summary")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	summary := h.calc.Summarize(r.Context(), record.Case(rec), today)
	h.respond(w, r, NewCaseSummaryView(summary))
}

// =============================================================================
// Helper Methods
// =============================================================================

// decode reads the request body as a single JSON object. On failure it has
// already written the error response.
func (h *CalcHandler) decode(w http.ResponseWriter, r *http.Request) (record.Record, bool) {
	const op = "Handler.decode"

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			err = domain.Errorf(domain.ETOOLARGE, op, "Request body exceeds %d bytes", tooLarge.Limit)
		} else {
			err = domain.Wrap(err, domain.EINVALID, op, "Could not read request body")
		}
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}

	rec, err := record.Decode(bytes.NewReader(body))
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return nil, false
	}
	return rec, true
}

// today returns the request's "today" field, or the handler clock when the
// field is absent. A present but unreadable date is a client error.
func (h *CalcHandler) today(rec record.Record, op string) (time.Time, error) {
	now := h.now()
	raw := rec.String("today", "asOf")
	if raw == "" {
		return now, nil
	}
	t, ok := domain.ParseDate(raw, now.Location())
	if !ok {
		return time.Time{}, domain.Errorf(domain.EINVALID, op, "today must be a date like 2006-01-02, got %q", raw)
	}
	return t, nil
}
