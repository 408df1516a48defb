package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fxhedge/hedgegate/internal/config"
	"github.com/fxhedge/hedgegate/internal/gateway"
	"github.com/fxhedge/hedgegate/internal/model"
	"github.com/fxhedge/hedgegate/internal/schema"
	"github.com/fxhedge/hedgegate/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type errorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

func serve(t *testing.T, r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body errorBody
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(w.Body.Bytes(), &body)
	}
	return w, body
}

func failingRoute(err error) *gin.Engine {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/x", func(c *gin.Context) { _ = c.Error(err) })
	return r
}

func TestErrorHandlerMapsGatewayErrors(t *testing.T) {
	verr := &schema.Error{Issues: []schema.Issue{{Code: schema.CodeInvalidType, Path: []string{"price"}, Message: "expected number"}}}

	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"upstream 4xx", &gateway.GatewayError{Endpoint: model.EndpointRiskPlan, Status: 422, Body: []byte("bad exposures")}, 502, "UPSTREAM_ERROR"},
		{"upstream 5xx", &gateway.GatewayError{Endpoint: model.EndpointRiskPlan, Status: 503}, 502, "UPSTREAM_ERROR"},
		{"invalid response", &gateway.ResponseError{Endpoint: model.EndpointBindingQuote, Err: verr}, 502, "UPSTREAM_INVALID_RESPONSE"},
		{"invalid request", verr, 400, "INVALID_REQUEST"},
		{"network", &gateway.NetworkError{Endpoint: model.EndpointExecution, Attempt: 3, Err: errors.New("dial tcp")}, 503, "GATEWAY_UNAVAILABLE"},
		{"unknown", errors.New("boom"), 500, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, body := serve(t, failingRoute(tc.err), httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, body.Code)
		})
	}
}

func TestErrorHandlerCarriesUpstreamStatus(t *testing.T) {
	err := &gateway.GatewayError{Endpoint: model.EndpointRiskPlan, Status: 422, Body: []byte("bad exposures")}
	_, body := serve(t, failingRoute(err), httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, float64(422), body.Details["upstream_status"])
	assert.Equal(t, "bad exposures", body.Details["upstream_body"])
	assert.Equal(t, "riskPlan", body.Details["endpoint"])
}

func newTenantManager() *service.TenantManager {
	return service.NewTenantManager(&config.Config{
		Tenants: []config.TenantConfig{{ID: "desk", APIKey: "gk-desk", RateQPS: 0.001, RateBurst: 1}},
	}, nil)
}

func TestAuthAndRateLimit(t *testing.T) {
	tm := newTenantManager()
	r := gin.New()
	r.Use(ErrorHandler(), AuthMiddleware(&config.Config{Auth: config.AuthConfig{RequireAPIKey: true}}, tm), RateLimitMiddleware(tm))
	r.GET("/v1/ping", func(c *gin.Context) { c.String(http.StatusOK, TenantFromContext(c).ID) })

	w, body := serve(t, r, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "AUTH_FAILED", body.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set(HeaderGatewayKey, "nope")
	w, _ = serve(t, r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set(HeaderGatewayKey, "gk-desk")
	w, _ = serve(t, r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "desk", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/v1/ping", nil)
	req.Header.Set(HeaderGatewayKey, "gk-desk")
	w, body = serve(t, r, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", body.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestAuthDefaultTenantWhenKeyOptional(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{APIKey: "sk-default"}}
	tm := service.NewTenantManager(cfg, nil)
	r := gin.New()
	r.Use(ErrorHandler(), AuthMiddleware(cfg, tm))
	r.GET("/v1/ping", func(c *gin.Context) { c.String(http.StatusOK, TenantFromContext(c).ID) })

	w, _ := serve(t, r, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "default-tenant", w.Body.String())
}

func TestAdminMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), AdminMiddleware(&config.Config{Auth: config.AuthConfig{AdminKey: "adm"}}))
	r.GET("/admin/v1/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w, _ := serve(t, r, httptest.NewRequest(http.MethodGet, "/admin/v1/x", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/x", nil)
	req.Header.Set(HeaderAdminKey, "adm")
	w, _ = serve(t, r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	unconfigured := gin.New()
	unconfigured.Use(ErrorHandler(), AdminMiddleware(&config.Config{}))
	unconfigured.GET("/admin/v1/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w, body := serve(t, unconfigured, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "admin_disabled", body.Details["reason"])
}

func TestIdempotencyReplaysResponse(t *testing.T) {
	tm := newTenantManager()
	store := NewInMemIdempotencyStore()
	calls := 0
	r := gin.New()
	r.Use(ErrorHandler(), AuthMiddleware(&config.Config{}, tm), IdempotencyMiddleware(store))
	r.POST("/v1/execution/orders", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"call": calls})
	})

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/execution/orders", strings.NewReader(`{}`))
		req.Header.Set(HeaderGatewayKey, "gk-desk")
		req.Header.Set(HeaderIdempotencyKey, "order-42")
		w, _ := serve(t, r, req)
		return w
	}

	first := send()
	second := send()
	assert.Equal(t, 1, calls)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
}

func TestIdempotencyInProgressAndServerErrors(t *testing.T) {
	tm := newTenantManager()
	store := NewInMemIdempotencyStore()
	_, locked := store.GetOrLock(t.Context(), "desk:busy")
	require.False(t, locked)

	calls := 0
	r := gin.New()
	r.Use(ErrorHandler(), AuthMiddleware(&config.Config{}, tm), IdempotencyMiddleware(store))
	r.POST("/x", func(c *gin.Context) {
		calls++
		c.Status(http.StatusBadGateway)
	})
	send := func(key string) (*httptest.ResponseRecorder, errorBody) {
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.Header.Set(HeaderGatewayKey, "gk-desk")
		req.Header.Set(HeaderIdempotencyKey, key)
		return serve(t, r, req)
	}

	w, body := send("busy")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CONFLICT", body.Code)

	send("retryable")
	send("retryable")
	assert.Equal(t, 2, calls, "5xx responses are not cached")
}

func TestReadOnlyBlocksWrites(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler(), ReadOnlyMiddleware(true))
	r.POST("/v1/execution/orders", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/v1/execution/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	w, body := serve(t, r, httptest.NewRequest(http.MethodPost, "/v1/execution/orders", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "READ_ONLY", body.Code)

	w, _ = serve(t, r, httptest.NewRequest(http.MethodGet, "/v1/execution/orders", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserContextReachesGatewayContext(t *testing.T) {
	r := gin.New()
	r.Use(UserContextMiddleware())
	r.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, gateway.UserIDFromContext(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderUserID, "trader-9")
	w, _ := serve(t, r, req)
	assert.Equal(t, "trader-9", w.Body.String())
}
