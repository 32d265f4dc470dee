package ups

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tournevent/upsbridge/pkg/shipper"
)

const (
	productionBaseURL = "https://onlinetools.ups.com"
	sandboxBaseURL    = "https://wwwcie.ups.com"

	tokenPath        = "/security/v1/oauth/token"
	transitTimesPath = "/api/shipments/v1/transittimes"
	ratePath         = "/api/rating/v1/Shop"
	shipPath         = "/api/shipments/v1801/ship"
	addressPath      = "/api/addressvalidation/v1/1"
	trackPathPrefix  = "/api/track/v1/details/"

	// transactionSource tags transit and tracking calls for UPS analytics.
	transactionSource = "uc-ecommerce"
)

// BaseURL returns the UPS host for the given environment.
func BaseURL(sandbox bool) string {
	if sandbox {
		return sandboxBaseURL
	}
	return productionBaseURL
}

// HTTPAPIClient is the production implementation of APIClient using HTTP/JSON.
type HTTPAPIClient struct {
	baseURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	session      *session
}

// HTTPAPIClientConfig holds configuration for the HTTP client.
type HTTPAPIClientConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	HTTPClient   *http.Client     // optional; Timeout is ignored when set
	Now          func() time.Time // optional clock for token expiry checks
}

// NewHTTPAPIClient creates a new HTTP-based API client for production use.
func NewHTTPAPIClient(cfg HTTPAPIClientConfig) *HTTPAPIClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &HTTPAPIClient{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		httpClient:   httpClient,
	}
	c.session = newSession(c.fetchToken, cfg.Now)
	return c
}

// Token returns the currently stored token, or nil before the first
// authentication.
func (c *HTTPAPIClient) Token() *Token {
	return c.session.current()
}

// Authenticate always fetches a new token and stores it.
func (c *HTTPAPIClient) Authenticate(ctx context.Context) (*Token, error) {
	return c.session.refresh(ctx)
}

func (c *HTTPAPIClient) fetchToken(ctx context.Context) (*Token, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", shipper.ErrAuthenticationFailed, err)
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+credentials)
	req.Header.Set("x-merchant-id", c.clientID)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=UTF-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shipper.ErrAuthenticationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %w", shipper.ErrAuthenticationFailed, c.parseError(resp))
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %w", shipper.ErrAuthenticationFailed, err)
	}

	tok, err := body.token()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shipper.ErrAuthenticationFailed, err)
	}
	return tok, nil
}

// Rate posts a rate-shop request.
func (c *HTTPAPIClient) Rate(ctx context.Context, req *RateEnvelope) (*RateResponseEnvelope, error) {
	var result RateResponseEnvelope
	if err := c.do(ctx, http.MethodPost, ratePath, nil, nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Ship posts a shipment request with city-level address validation.
func (c *HTTPAPIClient) Ship(ctx context.Context, req *ShipEnvelope) (*ShipResponseEnvelope, error) {
	query := url.Values{"additionaladdressvalidation": {"city"}}

	var result ShipResponseEnvelope
	if err := c.do(ctx, http.MethodPost, shipPath, query, nil, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateAddress posts an address validation request.
func (c *HTTPAPIClient) ValidateAddress(ctx context.Context, req *XAVEnvelope) (json.RawMessage, error) {
	var result json.RawMessage
	if err := c.do(ctx, http.MethodPost, addressPath, nil, nil, req, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// TransitTimes posts a transit time request.
func (c *HTTPAPIClient) TransitTimes(ctx context.Context, req *TransitTimesRequest, transactionID string) (*TransitTimesResponse, error) {
	headers := map[string]string{
		"transId":        transactionID,
		"transactionSrc": transactionSource,
	}

	var result TransitTimesResponse
	if err := c.do(ctx, http.MethodPost, transitTimesPath, nil, headers, req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Track fetches tracking details for a tracking number.
func (c *HTTPAPIClient) Track(ctx context.Context, trackingNumber, transactionID string) (json.RawMessage, error) {
	headers := map[string]string{
		"transId":        transactionID,
		"transactionSrc": transactionSource,
	}

	var result json.RawMessage
	path := trackPathPrefix + url.PathEscape(trackingNumber)
	if err := c.do(ctx, http.MethodGet, path, nil, headers, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ============================================================================
// HTTP Helpers
// ============================================================================

// do ensures a valid token, sends body as JSON and decodes a 2xx response
// into out. A *json.RawMessage out receives the body verbatim.
func (c *HTTPAPIClient) do(ctx context.Context, method, path string, query url.Values, headers map[string]string, body, out any) error {
	tok, err := c.session.refreshIfExpired(ctx)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", shipper.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.parseError(resp)
	}

	if raw, ok := out.(*json.RawMessage); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading response: %w", shipper.ErrTransport, err)
		}
		if !json.Valid(data) {
			return fmt.Errorf("%w: malformed JSON from %s", shipper.ErrCarrierRejected, path)
		}
		*raw = data
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode %s response: %w", shipper.ErrCarrierRejected, path, err)
	}
	return nil
}

// parseError extracts error information from an HTTP response.
func (c *HTTPAPIClient) parseError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && len(errResp.Response.Errors) > 0 {
		first := errResp.Response.Errors[0]
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       first.Code,
			Message:    first.Message,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       fmt.Sprintf("HTTP_%d", resp.StatusCode),
		Message:    strings.TrimSpace(string(body)),
	}
}

// Ensure HTTPAPIClient implements APIClient interface
var _ APIClient = (*HTTPAPIClient)(nil)
