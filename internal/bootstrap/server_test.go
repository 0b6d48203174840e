package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Domenick1991/charterbook/api"
	"github.com/Domenick1991/charterbook/config"
	"github.com/Domenick1991/charterbook/internal/service/pricing"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewRouter_Routes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := pricing.NewEngine(pricing.DefaultCatalog(), "AED")
	h := Handlers{
		Assets:   api.NewAssetHandler(nil, nil, time.UTC),
		Quotes:   api.NewQuoteHandler(engine, time.UTC),
		Drafts:   api.NewDraftHandler(nil),
		Bookings: api.NewBookingHandler(nil, nil, nil),
		Health:   api.NewHealthHandler(map[string]api.HealthCheck{"postgres": func(context.Context) error { return nil }}),
	}
	r := NewRouter(config.HTTPConfig{RateLimitPerMinute: 60, RateLimitBurst: 10}, h, zap.NewNop())

	routes := map[string]bool{}
	for _, ri := range r.Routes() {
		routes[ri.Method+" "+ri.Path] = true
	}
	for _, expected := range []string{
		"GET /health",
		"GET /api/v1/assets",
		"GET /api/v1/assets/:id/slots",
		"POST /api/v1/quotes",
		"POST /api/v1/drafts",
		"PUT /api/v1/drafts/:id/datetime",
		"POST /api/v1/drafts/:id/back",
		"POST /api/v1/bookings",
		"GET /api/v1/bookings/:id/payment-status",
		"POST /api/v1/bookings/:id/payments",
		"GET /api/v1/bookings/:id/refund-quote",
		"POST /api/v1/bookings/:id/cancel",
	} {
		assert.True(t, routes[expected], expected)
	}
	assert.False(t, routes["GET /docs/*any"])

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest("OPTIONS", "/api/v1/quotes", nil)
	req.Header.Set("Origin", "https://charter.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_StaffRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	testCases := []struct {
		name     string
		token    string
		sent     string
		expected int
	}{
		{"Not configured", "", "", http.StatusNotFound},
		{"Missing token", "s3cret", "", http.StatusUnauthorized},
		{"Wrong token", "s3cret", "nope", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := Handlers{
				Assets:      api.NewAssetHandler(nil, nil, time.UTC),
				Quotes:      api.NewQuoteHandler(pricing.NewEngine(pricing.DefaultCatalog(), "AED"), time.UTC),
				Drafts:      api.NewDraftHandler(nil),
				StaffDrafts: api.NewStaffDraftHandler(nil),
				Bookings:    api.NewBookingHandler(nil, nil, nil),
			}
			r := NewRouter(config.HTTPConfig{RateLimitPerMinute: 60, RateLimitBurst: 10, StaffToken: tc.token}, h, zap.NewNop())

			req := httptest.NewRequest("POST", "/api/v1/staff/drafts", nil)
			if tc.sent != "" {
				req.Header.Set("X-Staff-Token", tc.sent)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.expected, w.Code)
		})
	}
}
