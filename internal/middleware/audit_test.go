package middleware

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactAuditBodyTenants(t *testing.T) {
	body := []byte(`{"id":"desk","api_key":"gk-secret","risk":{"max_order_notional":1000},"contacts":[{"admin_key":"x"}]}`)
	out := redactAuditBody("/admin/v1/tenants", body)

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &data))
	assert.Equal(t, "***", data["api_key"])
	assert.Equal(t, "desk", data["id"])
	contacts := data["contacts"].([]any)
	assert.Equal(t, "***", contacts[0].(map[string]any)["admin_key"])
}

func TestRedactAuditBodyExecution(t *testing.T) {
	out := redactAuditBody("/v1/execution/orders", []byte(`{"quantity":1,"settlement_account":"DE89"}`))
	assert.NotContains(t, out, "DE89")
	assert.Contains(t, out, `"quantity":1`)
}

func TestRedactAuditBodyNonSensitivePath(t *testing.T) {
	body := []byte(`{"api_key":"visible-on-purpose"}`)
	assert.Equal(t, string(body), redactAuditBody("/v1/risk/plan", body))
}

func TestRedactAuditBodyInvalidJSON(t *testing.T) {
	assert.Equal(t, "[redacted]", redactAuditBody("/admin/v1/tenants", []byte("not-json")))
	assert.Empty(t, redactAuditBody("/admin/v1/tenants", nil))
}

func TestRedactHeaders(t *testing.T) {
	h := http.Header{}
	h.Set(HeaderGatewayKey, "gk-1")
	h.Set(HeaderAdminKey, "adm")
	h.Set(HeaderUserID, "u-7")

	var data map[string]string
	require.NoError(t, json.Unmarshal([]byte(redactHeaders(h)), &data))
	assert.Equal(t, "***", data["X-Gateway-Key"])
	assert.Equal(t, "***", data["X-Admin-Key"])
	assert.Equal(t, "u-7", data["X-User-Id"])
}
