package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flooring-cost/decision/estimation"
	"flooring-cost/decision/review"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(nil, nil, zerolog.Nop())
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(body))
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func livingRoomRequest() map[string]any {
	return map[string]any{
		"rooms": []string{"Living Room"},
		"dimensions": map[string]any{
			"Living Room": map[string]float64{"length": 10, "width": 20, "sqft": 200},
		},
		"config":         map[string]float64{"material_price": 8, "install_rate": 4, "tax_rate": 0.08},
		"material_type":  "White Oak",
		"material_grade": "Select",
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
}

func TestEstimateWithExplicitConfig(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/estimate", livingRoomRequest())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body EstimateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	require.Len(t, body.Items, 2)
	assert.Equal(t, estimation.ItemTypeMaterial, body.Items[0].Type)
	assert.Equal(t, 1600.0, body.Items[0].Total)
	assert.Equal(t, 800.0, body.Items[1].Total)
	assert.Equal(t, 2400.0, body.Subtotal)
	assert.Equal(t, 192.0, body.Tax)
	assert.Equal(t, 2592.0, body.Total)
	assert.Equal(t, 200.0, body.Summary.TotalArea)
	require.NotNil(t, body.Review)
	assert.Equal(t, review.DecisionPass, body.Review.Decision)
}

func TestEstimateWithTier(t *testing.T) {
	ts := newTestServer(t)

	req := livingRoomRequest()
	delete(req, "config")
	req["tier"] = "standard"
	req["species"] = "red oak"

	resp := postJSON(t, ts.URL+"/api/v1/estimate", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body EstimateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, estimation.PricingConfig{MaterialPrice: 6.5, InstallRate: 3.5, TaxRate: 0.08}, body.Config)
	assert.Equal(t, 2000.0, body.Subtotal)
	assert.Equal(t, 2160.0, body.Total)
}

func TestEstimateQuoteLimitDenies(t *testing.T) {
	ts := newTestServer(t)

	req := livingRoomRequest()
	req["quote_limit"] = 1000

	resp := postJSON(t, ts.URL+"/api/v1/estimate", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body EstimateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, review.DecisionDeny, body.Review.Decision)
	require.Len(t, body.Review.Violations, 1)
}

func TestEstimateRejectsInvalidDimensions(t *testing.T) {
	ts := newTestServer(t)

	req := livingRoomRequest()
	req["dimensions"] = map[string]any{
		"Living Room": map[string]float64{"length": 250, "width": 10, "sqft": 2500},
	}

	resp := postJSON(t, ts.URL+"/api/v1/estimate", req)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Room dimensions for Living Room seem unusually large (max 200ft). Please verify.", body.Error)
	assert.Equal(t, "INVALID_DIMENSIONS", body.Code)
	assert.Equal(t, "Living Room", body.Room)
}

func TestEstimateSkipsValidationWhenAsked(t *testing.T) {
	ts := newTestServer(t)

	req := livingRoomRequest()
	req["rooms"] = []string{"Living Room", "Closet"}
	req["validate"] = false

	resp := postJSON(t, ts.URL+"/api/v1/estimate", req)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body EstimateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Items, 4)
	assert.Equal(t, review.DecisionWarn, body.Review.Decision)
}

func TestEstimateUnknownTier(t *testing.T) {
	ts := newTestServer(t)

	req := livingRoomRequest()
	delete(req, "config")
	req["tier"] = "platinum"

	resp := postJSON(t, ts.URL+"/api/v1/estimate", req)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "UNKNOWN_TIER", body.Code)
}

func TestEstimateMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/estimate", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEstimateWrongMethod(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/estimate")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/v1/validate", map[string]any{
		"rooms":      []string{"Hall"},
		"dimensions": map[string]any{},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body estimation.ValidationResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.False(t, body.IsValid)
	assert.Equal(t, "Please add dimensions for Hall", body.Error)

	resp = postJSON(t, ts.URL+"/api/v1/validate", map[string]any{"rooms": []string{}})
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.IsValid)
}

func TestTiers(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/tiers")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body struct {
		TaxRate float64                   `json:"tax_rate"`
		Tiers   map[string]map[string]any `json:"tiers"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 0.08, body.TaxRate)
	assert.Contains(t, body.Tiers, "premium")
}

func TestEstimateNonFiniteTotalIsRejected(t *testing.T) {
	ts := newTestServer(t)

	req := livingRoomRequest()
	req["validate"] = false
	req["dimensions"] = map[string]any{
		"Living Room": map[string]float64{"length": 1, "width": 1, "sqft": 1e308},
	}
	req["config"] = map[string]float64{"material_price": 10, "install_rate": 0, "tax_rate": 0.08}

	resp := postJSON(t, ts.URL+"/api/v1/estimate", req)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "INVALID_REQUEST", body.Code)
	assert.Contains(t, body.Error, "not a finite amount")
}

func TestJSONResponseEncodeFailureIsServerError(t *testing.T) {
	srv := NewServer(nil, nil, zerolog.Nop())
	rec := httptest.NewRecorder()

	srv.jsonResponse(rec, http.StatusOK, map[string]float64{"total": math.Inf(1)})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "failed to encode response", body.Error)
}
