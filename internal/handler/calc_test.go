package handler

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DukeRupert/casedesk/internal/service"
)

var fixedNow = time.Date(2026, time.October, 18, 14, 30, 0, 0, time.UTC)

func newTestServer(t *testing.T) *http.ServeMux {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	calc := service.NewCaseCalculator(service.CalculatorConfig{}, logger)
	h := NewCalcHandler(calc, func() time.Time { return fixedNow }, logger)

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return mux
}

func post(t *testing.T, mux http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

// =============================================================================
// Liens
// =============================================================================

func TestCalcHandler_Liens(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/liens", `{
		"bills": [
			{"amountBilled": 2500, "insurancePaid": "1,000.00", "reductionAmount": 250},
			{"amount_billed": "$500", "insurance_paid": 600},
			{"amountBilled": "abc"}
		]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	got := decodeBody[LienView](t, rec)
	assert.Equal(t, "1250", got.Total.Amount)
	assert.Equal(t, "$1,250.00", got.Total.Formatted)
	assert.Equal(t, 3, got.Summary.Count)
	assert.Equal(t, "$3,000.00", got.Summary.AmountBilled.Formatted)
}

func TestCalcHandler_LiensEmpty(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/liens", `{}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[LienView](t, rec)
	assert.Equal(t, "0", got.Total.Amount)
	assert.Equal(t, "$0.00", got.Total.Formatted)
}

// =============================================================================
// Liability
// =============================================================================

func TestCalcHandler_Liability(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		isValid bool
		status  string
		total   string
	}{
		{
			name:    "balanced",
			body:    `{"defendants":[{"id":1,"liabilityPercentage":60},{"id":2,"liabilityPercentage":"40"}]}`,
			isValid: true,
			status:  "balanced",
			total:   "100",
		},
		{
			name:    "under allocated",
			body:    `{"defendants":[{"id":1,"liabilityPercentage":70},{"id":2,"liabilityPercentage":20}]}`,
			isValid: false,
			status:  "under_allocated",
			total:   "90",
		},
		{
			name:    "absent shares split evenly",
			body:    `{"defendants":[{"id":1},{"id":2},{"id":3},{"id":4}]}`,
			isValid: true,
			status:  "balanced",
			total:   "100",
		},
		{
			name:    "no defendants",
			body:    `{"defendants":[]}`,
			isValid: false,
			status:  "under_allocated",
			total:   "0",
		},
	}

	mux := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, mux, "/api/liability", tt.body)
			require.Equal(t, http.StatusOK, rec.Code)

			got := decodeBody[LiabilityView](t, rec)
			assert.Equal(t, tt.isValid, got.IsValid)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.total, got.Total)
		})
	}
}

// =============================================================================
// Settlement
// =============================================================================

func TestCalcHandler_Settlement(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/settlement", `{
		"totalSettlement": 100000,
		"attorneyFeePercentage": 33.33,
		"medicalLiens": 20000,
		"defendants": [
			{"id": 1, "liabilityPercentage": 60},
			{"id": 2, "liabilityPercentage": 40}
		]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[SettlementView](t, rec)

	assert.Equal(t, "33.33", got.FeePercentage)
	assert.True(t, got.Liability.IsValid)
	assert.Empty(t, got.Warnings)
	assert.Empty(t, got.NegativeNetTo)

	require.Len(t, got.Allocations, 2)
	first := got.Allocations[0]
	assert.Equal(t, int64(1), first.DefendantID)
	assert.Equal(t, "$60,000.00", first.GrossAmount.Formatted)
	assert.Equal(t, "$19,998.00", first.AttorneyFee.Formatted)
	assert.Equal(t, "$12,000.00", first.MedicalLiens.Formatted)
	assert.Equal(t, "$28,002.00", first.NetAmount.Formatted)
	assert.Equal(t, int64(2), got.Allocations[1].DefendantID)

	assert.Equal(t, "$100,000.00", got.Totals.GrossAmount.Formatted)
	assert.Equal(t, "$33,330.00", got.Totals.AttorneyFee.Formatted)
	assert.Equal(t, "$46,670.00", got.Totals.ClientNet.Formatted)
	assert.Equal(t, "$0.00", got.Unallocated.Formatted)
}

func TestCalcHandler_SettlementAnomaliesAreWarnings(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/settlement", `{
		"totalSettlement": 10000,
		"attorneyFeePercentage": 40,
		"medicalLiens": 9000,
		"defendants": [{"id": 7, "liabilityPercentage": 50}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[SettlementView](t, rec)

	assert.False(t, got.Liability.IsValid)
	assert.Equal(t, "under_allocated", got.Liability.Status)
	assert.Equal(t, []int64{7}, got.NegativeNetTo)
	assert.Len(t, got.Warnings, 2)
	assert.Equal(t, "$5,000.00", got.Unallocated.Formatted)
	require.Len(t, got.Allocations, 1)
	assert.Equal(t, "-$1,500.00", got.Allocations[0].NetAmount.Formatted)
}

func TestCalcHandler_SettlementDefaultFee(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/settlement", `{
		"totalSettlement": "1000",
		"attorneyFeePercentage": null,
		"defendants": [{"id": 1, "liabilityPercentage": 100}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[SettlementView](t, rec)
	assert.Equal(t, "33.33", got.FeePercentage)
	assert.Equal(t, "$333.30", got.Totals.AttorneyFee.Formatted)
}

// =============================================================================
// Deadline
// =============================================================================

func TestCalcHandler_Deadline(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/deadline", `{"statuteDeadline":"2026-11-02","signUpDate":"2026-10-01"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[DeadlineView](t, rec)
	require.NotNil(t, got.StatuteDeadline)
	assert.Equal(t, "2026-11-02", *got.StatuteDeadline)
	require.NotNil(t, got.DaysRemaining)
	assert.Equal(t, 15, *got.DaysRemaining)
	assert.Equal(t, "critical", got.Tier)
	assert.Equal(t, 17, got.DaysOpen)
}

func TestCalcHandler_DeadlineExplicitToday(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/deadline", `{"statuteDeadline":"2026-11-02","today":"2026-12-01"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[DeadlineView](t, rec)
	require.NotNil(t, got.DaysRemaining)
	assert.Equal(t, -29, *got.DaysRemaining)
	assert.Equal(t, "expired", got.Tier)
}

func TestCalcHandler_DeadlineMissing(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/deadline", `{"statuteDeadline":"not a date"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[DeadlineView](t, rec)
	assert.Nil(t, got.StatuteDeadline)
	assert.Nil(t, got.DaysRemaining)
	assert.Equal(t, "none", got.Tier)
	assert.Equal(t, 0, got.DaysOpen)
}

func TestCalcHandler_DeadlineBadToday(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/deadline", `{"statuteDeadline":"2026-11-02","today":"tomorrow"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	got := decodeBody[JSONError](t, rec)
	assert.Equal(t, "invalid", got.Error.Code)
	assert.Contains(t, got.Error.Message, "tomorrow")
}

// =============================================================================
// Summary
// =============================================================================

func TestCalcHandler_Summary(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/cases/summary", `{
		"id": "PI-2041",
		"totalSettlement": 90000,
		"attorneyFeePercentage": 33.33,
		"statuteDeadline": "2027-03-01",
		"signUpDate": "2026-01-01",
		"defendants": [{"id": 3, "liabilityPercentage": 100}],
		"medicalBills": [{"amountBilled": 12000, "insurancePaid": 2000}]
	}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[CaseSummaryView](t, rec)

	assert.Equal(t, "PI-2041", got.CaseID)
	assert.Equal(t, "$10,000.00", got.Liens.Total.Formatted)
	assert.True(t, got.Liability.IsValid)
	require.NotNil(t, got.Settlement)
	require.Len(t, got.Settlement.Allocations, 1)
	assert.Equal(t, "$50,003.00", got.Settlement.Allocations[0].NetAmount.Formatted)
	assert.Equal(t, "caution", got.Deadline.Tier)
	assert.Equal(t, 290, got.Deadline.DaysOpen)
}

func TestCalcHandler_SummaryWithoutSettlement(t *testing.T) {
	mux := newTestServer(t)

	rec := post(t, mux, "/api/cases/summary", `{"id": "PI-9", "defendants": [{"id": 1}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"settlement":null`)
}

// =============================================================================
// Request Errors
// =============================================================================

func TestCalcHandler_RejectsMalformedBody(t *testing.T) {
	mux := newTestServer(t)

	for _, body := range []string{`{"bills": [`, `[1,2,3]`, `null`, ``} {
		rec := post(t, mux, "/api/liens", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)

		got := decodeBody[JSONError](t, rec)
		assert.Equal(t, "invalid", got.Error.Code)
	}
}

func TestCalcHandler_RejectsOversizedBody(t *testing.T) {
	mux := newTestServer(t)

	body := `{"padding":"` + strings.Repeat("x", MaxBodyBytes) + `"}`
	rec := post(t, mux, "/api/liens", body)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	got := decodeBody[JSONError](t, rec)
	assert.Equal(t, "too_large", got.Error.Code)
}

func TestCalcHandler_MethodNotAllowed(t *testing.T) {
	mux := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/liens", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
