package ups_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/tournevent/upsbridge/pkg/shipper/ups"
)

const tokenBody = `{"token_type":"Bearer","issued_at":"1000000","client_id":"id","access_token":"abc","expires_in":"3600","status":"approved"}`

// fakeUPS serves the token endpoint and records the last API request.
type fakeUPS struct {
	server     *httptest.Server
	tokenCalls atomic.Int32
	failToken  atomic.Bool
	lastReq    *http.Request
	lastBody   []byte
	handler    http.HandlerFunc
}

func newFakeUPS(t *testing.T, handler http.HandlerFunc) *fakeUPS {
	t.Helper()
	f := &fakeUPS{handler: handler}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /security/v1/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		if f.failToken.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"response":{"errors":[{"code":"10401","message":"ClientId is Invalid"}]}}`)
			return
		}
		_, _ = io.WriteString(w, tokenBody)
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		f.lastReq = r
		f.lastBody, _ = io.ReadAll(r.Body)
		f.handler(w, r)
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func newHTTPClient(f *fakeUPS, now *time.Time) *ups.HTTPAPIClient {
	return ups.NewHTTPAPIClient(ups.HTTPAPIClientConfig{
		BaseURL:      f.server.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		Timeout:      5 * time.Second,
		Now:          func() time.Time { return *now },
	})
}

func writeJSON(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestHTTPAPIClient_Authenticate(t *testing.T) {
	var got *http.Request
	var form string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		body, _ := io.ReadAll(r.Body)
		form = string(body)
		_, _ = io.WriteString(w, tokenBody)
	}))
	defer server.Close()

	client := ups.NewHTTPAPIClient(ups.HTTPAPIClientConfig{
		BaseURL:      server.URL,
		ClientID:     "id",
		ClientSecret: "secret",
	})

	tok, err := client.Authenticate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "Bearer", tok.Type)
	assert.Equal(t, int64(4_600_000), tok.ExpiresAt)
	assert.Same(t, tok, client.Token())

	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/security/v1/oauth/token", got.URL.Path)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("id:secret")), got.Header.Get("Authorization"))
	assert.Equal(t, "id", got.Header.Get("x-merchant-id"))
	assert.Equal(t, "application/x-www-form-urlencoded; charset=UTF-8", got.Header.Get("Content-Type"))
	assert.Equal(t, "grant_type=client_credentials", form)
}

func TestHTTPAPIClient_Authenticate_NumericFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"token_type":"Bearer","issued_at":1000000,"access_token":"abc","expires_in":3600}`)
	}))
	defer server.Close()

	client := ups.NewHTTPAPIClient(ups.HTTPAPIClientConfig{BaseURL: server.URL})

	tok, err := client.Authenticate(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(4_600_000), tok.ExpiresAt)
}

func TestHTTPAPIClient_Authenticate_Rejected(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, writeJSON(`{}`))
	client := newHTTPClient(f, &now)

	_, err := client.Authenticate(context.Background())
	require.NoError(t, err)

	f.failToken.Store(true)
	_, err = client.Authenticate(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, shipper.ErrAuthenticationFailed)
	var apiErr *ups.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "10401", apiErr.Code)

	require.NotNil(t, client.Token())
	assert.Equal(t, "abc", client.Token().AccessToken)
}

func TestHTTPAPIClient_LazyRefresh(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, writeJSON(`{"RateResponse":{"RatedShipment":[]}}`))
	client := newHTTPClient(f, &now)

	_, err := client.Rate(context.Background(), &ups.RateEnvelope{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.tokenCalls.Load())
	assert.Equal(t, "Bearer abc", f.lastReq.Header.Get("Authorization"))
	assert.Equal(t, "application/json", f.lastReq.Header.Get("Content-Type"))
	assert.Equal(t, "/api/rating/v1/Shop", f.lastReq.URL.Path)

	_, err = client.Rate(context.Background(), &ups.RateEnvelope{})
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.tokenCalls.Load())

	// Inside the expiry margin.
	now = time.UnixMilli(4_600_000 - 400)
	_, err = client.Rate(context.Background(), &ups.RateEnvelope{})
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestHTTPAPIClient_AuthFailureSkipsRequest(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, writeJSON(`{}`))
	f.failToken.Store(true)
	client := newHTTPClient(f, &now)

	_, err := client.Rate(context.Background(), &ups.RateEnvelope{})

	assert.ErrorIs(t, err, shipper.ErrAuthenticationFailed)
	assert.Nil(t, f.lastReq)
}

func TestHTTPAPIClient_Rate_Body(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, writeJSON(`{
		"RateResponse": {
			"RatedShipment": {
				"Service": {"Code": "03"},
				"NegotiatedRateCharges": {"TotalCharge": {"CurrencyCode": "USD", "MonetaryValue": "9.99"}}
			}
		}
	}`))
	client := newHTTPClient(f, &now)

	resp, err := client.Rate(context.Background(), &ups.RateEnvelope{
		RateRequest: ups.RateRequest{Shipment: ups.RateShipment{Service: ups.CodeDescription{Code: "03"}}},
	})

	require.NoError(t, err)
	require.Len(t, resp.RateResponse.RatedShipment, 1)
	assert.Equal(t, ups.Number("9.99"), resp.RateResponse.RatedShipment[0].NegotiatedRateCharges.TotalCharge.MonetaryValue)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(f.lastBody, &sent))
	assert.Contains(t, sent, "RateRequest")
}

func TestHTTPAPIClient_Ship_Query(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, writeJSON(`{"ShipmentResponse":{"Response":{"ResponseStatus":{"Code":"1","Description":"Success"}},"ShipmentResults":{"ShipmentIdentificationNumber":"1ZX"}}}`))
	client := newHTTPClient(f, &now)

	resp, err := client.Ship(context.Background(), &ups.ShipEnvelope{})

	require.NoError(t, err)
	assert.Equal(t, "1ZX", resp.ShipmentResponse.ShipmentResults.ShipmentIdentificationNumber)
	assert.Equal(t, "/api/shipments/v1801/ship", f.lastReq.URL.Path)
	assert.Equal(t, "city", f.lastReq.URL.Query().Get("additionaladdressvalidation"))
}

func TestHTTPAPIClient_ValidateAddress_Raw(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	body := `{"XAVResponse":{"Response":{"ResponseStatus":{"Code":"1"}},"ValidAddressIndicator":""}}`
	f := newFakeUPS(t, writeJSON(body))
	client := newHTTPClient(f, &now)

	resp, err := client.ValidateAddress(context.Background(), &ups.XAVEnvelope{})

	require.NoError(t, err)
	assert.Equal(t, body, string(resp))
	assert.Equal(t, "/api/addressvalidation/v1/1", f.lastReq.URL.Path)

	var sent map[string]map[string]map[string]any
	require.NoError(t, json.Unmarshal(f.lastBody, &sent))
	assert.Contains(t, sent["XAVRequest"]["AddressKeyFormat"], "PostcodeExtendedLow")
}

func TestHTTPAPIClient_TransitTimes_Headers(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, writeJSON(`{"emsResponse":{"services":[{"serviceLevel":"GND","deliveryDate":"2024-03-08","businessTransitDays":3}]}}`))
	client := newHTTPClient(f, &now)

	resp, err := client.TransitTimes(context.Background(), &ups.TransitTimesRequest{ShipDate: "2024-3-5", AVVFlag: true}, "cart-1")

	require.NoError(t, err)
	require.Len(t, resp.EmsResponse.Services, 1)
	assert.Equal(t, ups.Number("3"), resp.EmsResponse.Services[0].BusinessTransitDays)
	assert.Equal(t, "/api/shipments/v1/transittimes", f.lastReq.URL.Path)
	assert.Equal(t, "cart-1", f.lastReq.Header.Get("transId"))
	assert.Equal(t, "uc-ecommerce", f.lastReq.Header.Get("transactionSrc"))

	var sent map[string]any
	require.NoError(t, json.Unmarshal(f.lastBody, &sent))
	assert.Equal(t, "2024-3-5", sent["shipDate"])
	assert.Equal(t, true, sent["avvFlag"])
	assert.NotContains(t, sent, "skuWeight")
}

func TestHTTPAPIClient_Track(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	body := `{"trackResponse":{"shipment":[{"package":[{"trackingNumber":"1Z 999"}]}]}}`
	f := newFakeUPS(t, writeJSON(body))
	client := newHTTPClient(f, &now)

	resp, err := client.Track(context.Background(), "1Z 999", "txn-9")

	require.NoError(t, err)
	assert.Equal(t, body, string(resp))
	assert.Equal(t, http.MethodGet, f.lastReq.Method)
	assert.Equal(t, "/api/track/v1/details/1Z 999", f.lastReq.URL.Path)
	assert.Equal(t, "/api/track/v1/details/1Z%20999", f.lastReq.URL.EscapedPath())
	assert.Equal(t, "txn-9", f.lastReq.Header.Get("transId"))
	assert.Equal(t, "uc-ecommerce", f.lastReq.Header.Get("transactionSrc"))
	assert.Empty(t, f.lastBody)
}

func TestHTTPAPIClient_ErrorBody(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"response":{"errors":[{"code":"111210","message":"The requested service is unavailable between the selected locations."}]}}`)
	})
	client := newHTTPClient(f, &now)

	_, err := client.Rate(context.Background(), &ups.RateEnvelope{})

	var apiErr *ups.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "111210", apiErr.Code)
	assert.Contains(t, apiErr.Message, "unavailable")
	assert.Contains(t, apiErr.Error(), "HTTP 400")
}

func TestHTTPAPIClient_ErrorBodyNotJSON(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down\n")
	})
	client := newHTTPClient(f, &now)

	_, err := client.Track(context.Background(), "1Z", "txn")

	var apiErr *ups.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "HTTP_502", apiErr.Code)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestHTTPAPIClient_MalformedRaw(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, writeJSON(`not json`))
	client := newHTTPClient(f, &now)

	_, err := client.Track(context.Background(), "1Z", "txn")

	assert.ErrorIs(t, err, shipper.ErrCarrierRejected)
}

func TestHTTPAPIClient_MalformedTyped(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, writeJSON(`{"RateResponse":`))
	client := newHTTPClient(f, &now)

	_, err := client.Rate(context.Background(), &ups.RateEnvelope{})

	assert.ErrorIs(t, err, shipper.ErrCarrierRejected)
}

func TestHTTPAPIClient_Unreachable(t *testing.T) {
	now := time.UnixMilli(1_000_000)
	f := newFakeUPS(t, writeJSON(`{}`))
	client := newHTTPClient(f, &now)

	_, err := client.Authenticate(context.Background())
	require.NoError(t, err)

	f.server.Close()
	_, err = client.Rate(context.Background(), &ups.RateEnvelope{})

	assert.ErrorIs(t, err, shipper.ErrTransport)
}

func TestBaseURL(t *testing.T) {
	assert.Equal(t, "https://wwwcie.ups.com", ups.BaseURL(true))
	assert.Equal(t, "https://onlinetools.ups.com", ups.BaseURL(false))
}
