package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expensedesk/claims-engine/internal/acquire"
	"github.com/expensedesk/claims-engine/internal/claims"
	"github.com/expensedesk/claims-engine/internal/extract"
	"github.com/expensedesk/claims-engine/internal/repository"
)

const testSecret = "test-secret"

func newTestServer() *Server {
	store := repository.NewMemoryStore()
	engine := claims.NewEngine(store, acquire.PlainText{}, extract.DefaultConfig(), nil)
	issuer := NewTokenIssuer(testSecret, time.Hour)
	return New(engine, issuer, testSecret, nil)
}

func postJSON(t *testing.T, router http.Handler, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func issueToken(t *testing.T, router http.Handler) string {
	t.Helper()
	rec := postJSON(t, router, "/v1/tokens", "", map[string]string{
		"claimant_code": "E-001",
		"access_key":    testSecret,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out["token"])
	return out["token"]
}

func evaluateBody(content []byte) map[string]any {
	return map[string]any{
		"claimant_code": "E-001",
		"claim_type":    "Travel",
		"vouchers": []map[string]any{{
			"sub_type":    "Individual_Expense",
			"bill_amount": "1200",
			"attachments": []map[string]any{{
				"filename": "invoice.txt",
				"content":  base64.StdEncoding.EncodeToString(content),
			}},
		}},
	}
}

func invoicePayload() []byte {
	date := time.Now().UTC().AddDate(0, -1, 0).Format("02/01/2006")
	return []byte(fmt.Sprintf(
		"Sharma Electricals Pvt Ltd\nInvoice No: INV-2025/0042\nInvoice Date: %s\nGrand Total 1200.00\n", date))
}

func TestTokenIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	token, expiry, err := issuer.Issue("E-001")
	require.NoError(t, err)
	assert.True(t, expiry.After(time.Now()))

	subject, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "E-001", subject)
}

func TestTokenVerifyRejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Minute)
	issuer.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, _, err := issuer.Issue("E-001")
	require.NoError(t, err)

	issuer.Now = time.Now
	_, err = issuer.Verify(token)
	assert.Error(t, err)
}

func TestTokenVerifyRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenIssuer("other-secret", time.Hour).Issue("E-001")
	require.NoError(t, err)

	_, err = NewTokenIssuer(testSecret, time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestTokenEndpointRejectsBadAccessKey(t *testing.T) {
	router := newTestServer().Router()
	rec := postJSON(t, router, "/v1/tokens", "", map[string]string{
		"claimant_code": "E-001",
		"access_key":    "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEvaluateRequiresToken(t *testing.T) {
	router := newTestServer().Router()
	rec := postJSON(t, router, "/v1/claims/evaluate", "", evaluateBody(invoicePayload()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, router, "/v1/claims/evaluate", "not-a-token", evaluateBody(invoicePayload()))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestEvaluateEndToEnd(t *testing.T) {
	router := newTestServer().Router()
	token := issueToken(t, router)

	rec := postJSON(t, router, "/v1/claims/evaluate", token, evaluateBody(invoicePayload()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "NEW_CLAIM", out["status"])
	assert.Equal(t, float64(1), out["records_saved"])
	assert.Equal(t, "1NV-2025/0042", out["invoice_number"])
}

func TestEvaluateDuplicateOnResubmission(t *testing.T) {
	router := newTestServer().Router()
	token := issueToken(t, router)
	body := evaluateBody(invoicePayload())

	rec := postJSON(t, router, "/v1/claims/evaluate", token, body)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/v1/claims/evaluate", token, body)
	require.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, "DUPLICATE_CLAIM", out["status"])
}

func TestEvaluateRejectsSchemaViolations(t *testing.T) {
	router := newTestServer().Router()
	token := issueToken(t, router)

	// vouchers missing entirely
	rec := postJSON(t, router, "/v1/claims/evaluate", token, map[string]any{
		"claimant_code": "E-001",
		"claim_type":    "Travel",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// attachment without content
	rec = postJSON(t, router, "/v1/claims/evaluate", token, map[string]any{
		"claimant_code": "E-001",
		"claim_type":    "Travel",
		"vouchers": []map[string]any{{
			"sub_type":    "Individual_Expense",
			"bill_amount": 100,
			"attachments": []map[string]any{{"filename": "x.txt"}},
		}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateRejectsUnknownSubType(t *testing.T) {
	router := newTestServer().Router()
	token := issueToken(t, router)

	body := evaluateBody(invoicePayload())
	body["vouchers"].([]map[string]any)[0]["sub_type"] = "mystery"
	rec := postJSON(t, router, "/v1/claims/evaluate", token, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluateRejectsBadBase64(t *testing.T) {
	router := newTestServer().Router()
	token := issueToken(t, router)

	body := evaluateBody(invoicePayload())
	body["vouchers"].([]map[string]any)[0]["attachments"].([]map[string]any)[0]["content"] = "!!!"
	rec := postJSON(t, router, "/v1/claims/evaluate", token, body)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHealthz(t *testing.T) {
	router := newTestServer().Router()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
