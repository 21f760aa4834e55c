package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentbook/internal/infra/config"
	ginserver "rentbook/internal/infra/http/gin"
	"rentbook/internal/infra/obs"
	"rentbook/internal/infra/storage/memory"
)

type harness struct {
	t      *testing.T
	router *gin.Engine
	st     storage
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		ServiceFeeBps:    1000,
		BlackoutHorizon:  2 * 365 * 24 * time.Hour,
		IdempotencyTTL:   time.Hour,
		ListingCacheSize: 10,
		ListingCacheTTL:  time.Minute,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	seq := 0
	st := newMemoryStorage()
	app := buildApplication(cfg, logger, st, buildOptions{
		clock: func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
		newID: func() string { seq++; return fmt.Sprintf("bk-%d", seq) },
	})
	t.Cleanup(app.listings.Stop)
	router := ginserver.NewRouter(obs.Middleware{}, obs.HealthHandlers{Ready: st.ready}, app.handlers)
	return &harness{t: t, router: router, st: st}
}

func (h *harness) do(method, path, user string, body any, headers ...string) (int, map[string]any) {
	h.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(ginserver.HeaderUserID, user)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	out := map[string]any{}
	if w.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	}
	return w.Code, out
}

func amount(t *testing.T, body map[string]any, field string) float64 {
	t.Helper()
	m, ok := body[field].(map[string]any)
	require.True(t, ok, "missing %s in %v", field, body)
	return m["amount"].(float64)
}

func (h *harness) createListing() {
	h.t.Helper()
	code, body := h.do(http.MethodPost, "/api/v1/listings", "host-1", map[string]any{
		"id":                  "lst-1",
		"status":              "active",
		"title":               "Trail bike",
		"currency":            "usd",
		"quantity":            1,
		"daily_rate":          10000,
		"deposit":             map[string]any{"type": "fixed", "value": 50000},
		"delivery":            map[string]any{"pickup_available": true},
		"cancellation_policy": "moderate",
	})
	require.Equal(h.t, http.StatusCreated, code, body)
	require.Equal(h.t, "ACTIVE", body["state"])
}

func TestQuoteAndBookingLifecycle(t *testing.T) {
	h := newHarness(t)
	h.createListing()

	quote := map[string]any{"start": "2026-03-10", "end": "2026-03-13", "delivery": "pickup"}
	code, body := h.do(http.MethodPost, "/api/v1/listings/lst-1/quote", "", quote)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 30000, amount(t, body, "subtotal"))
	assert.EqualValues(t, 3000, amount(t, body, "service_fee"))
	assert.EqualValues(t, 50000, amount(t, body, "deposit"))
	assert.EqualValues(t, 83000, amount(t, body, "total"))

	code, _ = h.do(http.MethodPost, "/api/v1/bookings", "", map[string]any{"listing_id": "lst-1"})
	assert.Equal(t, http.StatusUnauthorized, code)

	submit := map[string]any{
		"listing_id": "lst-1", "start": "2026-03-10", "end": "2026-03-13",
		"delivery": "pickup", "expected_total": 83000,
	}
	code, body = h.do(http.MethodPost, "/api/v1/bookings", "renter-1", submit, ginserver.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "bk-1", body["id"])
	assert.Equal(t, "PENDING", body["state"])

	code, body = h.do(http.MethodPost, "/api/v1/bookings", "renter-1", submit, ginserver.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "bk-1", body["id"], "retry replays the first result")

	code, body = h.do(http.MethodPost, "/api/v1/bookings", "renter-2", submit)
	require.Equal(t, http.StatusUnprocessableEntity, code, body)
	assert.Equal(t, "quantity_exceeds_available", body["code"])
	assert.EqualValues(t, 0, body["available"])

	code, body = h.do(http.MethodGet, "/api/v1/me/bookings", "renter-1", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["items"], 1)

	code, _ = h.do(http.MethodGet, "/api/v1/bookings/bk-1", "stranger", nil)
	assert.Equal(t, http.StatusForbidden, code)

	code, body = h.do(http.MethodPost, "/api/v1/bookings/bk-1/confirm", "host-1", nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "CONFIRMED", body["state"])

	code, body = h.do(http.MethodGet, "/api/v1/bookings/bk-1/refund-preview?at=2026-03-07", "renter-1", nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 50, body["refund_percent"])
	assert.Equal(t, "partial_refund_window", body["reason"])

	code, body = h.do(http.MethodPost, "/api/v1/bookings/bk-1/cancel", "renter-1", map[string]any{"reason": "plans changed"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "CANCELLED", body["state"])
	assert.Equal(t, true, body["deposit_released"])

	code, body = h.do(http.MethodPost, "/api/v1/bookings/bk-1/confirm", "host-1", nil)
	assert.Equal(t, http.StatusConflict, code, body)

	box, ok := h.st.outbox.(*memory.Outbox)
	require.True(t, ok)
	assert.Positive(t, box.Pending(), "state changes queue outbox events")
}

func TestQuoteRejections(t *testing.T) {
	h := newHarness(t)
	h.createListing()

	code, body := h.do(http.MethodPost, "/api/v1/listings/lst-1/quote", "", map[string]any{"start": "2026-03-10", "end": "2026-03-13"})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "delivery_choice_required", body["code"])

	code, body = h.do(http.MethodPost, "/api/v1/listings/lst-1/quote", "", map[string]any{"start": "2026-03-13", "end": "2026-03-10", "delivery": "pickup"})
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "invalid_date_range", body["code"])

	code, _ = h.do(http.MethodPost, "/api/v1/listings/lst-1/quote", "", map[string]any{"start": "next week"})
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = h.do(http.MethodPost, "/api/v1/listings/missing/quote", "", map[string]any{"start": "2026-03-10", "end": "2026-03-13"})
	assert.Equal(t, http.StatusNotFound, code, body)
}

func TestQuoteQuantityDefaultsToOneUnit(t *testing.T) {
	h := newHarness(t)
	h.createListing()
	base := map[string]any{"start": "2026-03-10", "end": "2026-03-13", "delivery": "pickup"}

	code, body := h.do(http.MethodPost, "/api/v1/listings/lst-1/quote", "", base)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 30000, amount(t, body, "subtotal"))

	for _, qty := range []int{0, -2} {
		withQty := map[string]any{"start": "2026-03-10", "end": "2026-03-13", "delivery": "pickup", "quantity": qty}
		code, body = h.do(http.MethodPost, "/api/v1/listings/lst-1/quote", "", withQty)
		require.Equal(t, http.StatusUnprocessableEntity, code, body)
		assert.Equal(t, "invalid_quantity", body["code"])
	}
}

func TestIdempotencyKeyIsPerRenter(t *testing.T) {
	h := newHarness(t)
	h.createListing()

	first := map[string]any{"listing_id": "lst-1", "start": "2026-03-10", "end": "2026-03-13", "delivery": "pickup"}
	code, body := h.do(http.MethodPost, "/api/v1/bookings", "renter-a", first, ginserver.HeaderIdempotencyKey, "k1")
	require.Equal(t, http.StatusCreated, code, body)
	firstID := body["id"]

	second := map[string]any{"listing_id": "lst-1", "start": "2026-03-20", "end": "2026-03-22", "delivery": "pickup"}
	code, body = h.do(http.MethodPost, "/api/v1/bookings", "renter-b", second, ginserver.HeaderIdempotencyKey, "k1")
	require.Equal(t, http.StatusCreated, code, body)
	assert.NotEqual(t, firstID, body["id"])
	assert.Equal(t, "renter-b", body["renter_id"])

	code, body = h.do(http.MethodGet, "/api/v1/me/bookings", "renter-b", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["items"], 1)
}

func TestListingRejectsInvalidAvailability(t *testing.T) {
	h := newHarness(t)
	cases := map[string]map[string]any{
		"negative notice": {"advance_notice_days": -1},
		"unknown weekday": {"weekdays": []string{"funday"}},
	}
	for name, availability := range cases {
		t.Run(name, func(t *testing.T) {
			code, body := h.do(http.MethodPost, "/api/v1/listings", "host-1", map[string]any{
				"title": "Tent", "currency": "USD", "quantity": 1, "daily_rate": 2000,
				"availability": availability,
			})
			assert.Equal(t, http.StatusBadRequest, code, body)
		})
	}
}

func TestListingReadsAndCalendar(t *testing.T) {
	h := newHarness(t)
	h.createListing()

	code, body := h.do(http.MethodGet, "/api/v1/listings/lst-1", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Trail bike", body["title"])
	assert.Equal(t, "USD", body["currency"])

	code, body = h.do(http.MethodPut, "/api/v1/listings/lst-1", "someone-else", map[string]any{"title": "Mine now", "currency": "USD", "quantity": 1, "daily_rate": 1})
	assert.Equal(t, http.StatusForbidden, code, body)

	code, body = h.do(http.MethodGet, "/api/v1/listings/lst-1/calendar?from=2026-03-01&to=2026-03-08", "", nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Len(t, body["days"], 7)

	code, _ = h.do(http.MethodGet, "/api/v1/listings/lst-1/calendar?from=2026-03-08&to=2026-03-01", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRenterKYCGatesListingsThatRequireIt(t *testing.T) {
	h := newHarness(t)
	code, body := h.do(http.MethodPost, "/api/v1/listings", "host-1", map[string]any{
		"id": "lst-kyc", "status": "ACTIVE", "title": "Camera", "currency": "USD",
		"quantity": 1, "daily_rate": 5000, "requires_kyc": true,
	})
	require.Equal(t, http.StatusCreated, code, body)

	quote := map[string]any{"start": "2026-03-10", "end": "2026-03-12"}
	code, body = h.do(http.MethodPost, "/api/v1/listings/lst-kyc/quote", "renter-9", quote)
	require.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "eligibility_blocked", body["code"])

	code, body = h.do(http.MethodPut, "/api/v1/renters/renter-9/kyc", "", map[string]any{"status": "verified"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, "VERIFIED", body["kyc_status"])

	code, body = h.do(http.MethodPost, "/api/v1/listings/lst-kyc/quote", "renter-9", quote)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 11000, amount(t, body, "total"))

	code, _ = h.do(http.MethodPut, "/api/v1/renters/renter-9/kyc", "", map[string]any{"status": "maybe"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestHealthEndpoints(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(http.MethodGet, "/livez", "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, body := h.do(http.MethodGet, "/readyz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ready", body["status"])
}
