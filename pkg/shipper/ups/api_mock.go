package ups

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MockAPIClient is a mock implementation of APIClient for testing.
type MockAPIClient struct {
	SimulateErrors  bool
	SimulateLatency time.Duration

	OnAuthenticate    func(ctx context.Context) (*Token, error)
	OnRate            func(ctx context.Context, req *RateEnvelope) (*RateResponseEnvelope, error)
	OnShip            func(ctx context.Context, req *ShipEnvelope) (*ShipResponseEnvelope, error)
	OnValidateAddress func(ctx context.Context, req *XAVEnvelope) (json.RawMessage, error)
	OnTransitTimes    func(ctx context.Context, req *TransitTimesRequest, transactionID string) (*TransitTimesResponse, error)
	OnTrack           func(ctx context.Context, trackingNumber, transactionID string) (json.RawMessage, error)
}

// NewMockAPIClient creates a new mock API client with default behavior.
func NewMockAPIClient() *MockAPIClient {
	return &MockAPIClient{}
}

func (m *MockAPIClient) simulate(ctx context.Context) error {
	if m.SimulateLatency > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.SimulateLatency):
		}
	}
	if m.SimulateErrors {
		return &APIError{StatusCode: 500, Code: "MOCK_ERROR", Message: "Simulated API error"}
	}
	return nil
}

// Authenticate returns a token valid for four hours.
func (m *MockAPIClient) Authenticate(ctx context.Context) (*Token, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnAuthenticate != nil {
		return m.OnAuthenticate(ctx)
	}
	return &Token{
		Type:        "Bearer",
		AccessToken: "mock-" + uuid.New().String(),
		ExpiresAt:   time.Now().Add(4 * time.Hour).UnixMilli(),
	}, nil
}

// Rate returns the requested service plus a ground alternative.
func (m *MockAPIClient) Rate(ctx context.Context, req *RateEnvelope) (*RateResponseEnvelope, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnRate != nil {
		return m.OnRate(ctx, req)
	}

	requested := req.RateRequest.Shipment.Service.Code
	rated := List[RatedShipment]{
		{
			Service:               CodeDescription{Code: requested},
			TotalCharges:          &Charge{CurrencyCode: "USD", MonetaryValue: "14.20"},
			NegotiatedRateCharges: &NegotiatedRateCharges{TotalCharge: &Charge{CurrencyCode: "USD", MonetaryValue: "12.65"}},
		},
	}
	if requested != "03" {
		rated = append(rated, RatedShipment{
			Service:               CodeDescription{Code: "03"},
			NegotiatedRateCharges: &NegotiatedRateCharges{TotalCharge: &Charge{CurrencyCode: "USD", MonetaryValue: "9.99"}},
		})
	}

	return &RateResponseEnvelope{
		RateResponse: RateResponse{
			Response:      &ResponseInfo{ResponseStatus: CodeDescription{Code: "1", Description: "Success"}},
			RatedShipment: rated,
		},
	}, nil
}

// Ship returns one tracking number and ZPL label per package.
func (m *MockAPIClient) Ship(ctx context.Context, req *ShipEnvelope) (*ShipResponseEnvelope, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnShip != nil {
		return m.OnShip(ctx, req)
	}

	shipmentID := "1Z" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:16])
	results := make(List[PackageResult], len(req.ShipmentRequest.Shipment.Package))
	for i := range results {
		results[i] = PackageResult{
			TrackingNumber: fmt.Sprintf("%s%02d", shipmentID, i+1),
			ShippingLabel: &ShippingLabel{
				ImageFormat:  CodeDescription{Code: "ZPL", Description: "ZPL"},
				GraphicImage: base64.StdEncoding.EncodeToString([]byte("^XA^FDMOCK LABEL^FS^XZ")),
			},
		}
	}

	return &ShipResponseEnvelope{
		ShipmentResponse: ShipmentResponse{
			Response: ResponseInfo{ResponseStatus: CodeDescription{Code: "1", Description: "Success"}},
			ShipmentResults: ShipmentResults{
				ShipmentIdentificationNumber: shipmentID,
				PackageResults:               results,
				NegotiatedRateCharges: &NegotiatedRateCharges{
					TotalCharge: &Charge{CurrencyCode: "USD", MonetaryValue: "12.65"},
				},
			},
		},
	}, nil
}

// ValidateAddress reports the address as valid with itself as the candidate.
func (m *MockAPIClient) ValidateAddress(ctx context.Context, req *XAVEnvelope) (json.RawMessage, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnValidateAddress != nil {
		return m.OnValidateAddress(ctx, req)
	}
	return json.Marshal(map[string]any{
		"XAVResponse": map[string]any{
			"ValidAddressIndicator": "",
			"Candidate":             req.XAVRequest,
		},
	})
}

// TransitTimes returns ground and next-day services.
func (m *MockAPIClient) TransitTimes(ctx context.Context, req *TransitTimesRequest, transactionID string) (*TransitTimesResponse, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnTransitTimes != nil {
		return m.OnTransitTimes(ctx, req, transactionID)
	}
	now := time.Now()
	return &TransitTimesResponse{
		EmsResponse: EmsResponse{
			Services: []TransitService{
				{ServiceLevel: "GND", ServiceLevelDescription: "UPS Ground", DeliveryDate: now.AddDate(0, 0, 5).Format("2006-01-02"), BusinessTransitDays: "5"},
				{ServiceLevel: "1DA", ServiceLevelDescription: "UPS Next Day Air", DeliveryDate: now.AddDate(0, 0, 1).Format("2006-01-02"), BusinessTransitDays: "1"},
			},
		},
	}, nil
}

// Track returns a minimal in-transit tracking document.
func (m *MockAPIClient) Track(ctx context.Context, trackingNumber, transactionID string) (json.RawMessage, error) {
	if err := m.simulate(ctx); err != nil {
		return nil, err
	}
	if m.OnTrack != nil {
		return m.OnTrack(ctx, trackingNumber, transactionID)
	}
	return json.Marshal(map[string]any{
		"trackResponse": map[string]any{
			"shipment": []map[string]any{{
				"package": []map[string]any{{
					"trackingNumber": trackingNumber,
					"currentStatus":  map[string]string{"code": "IT", "description": "In Transit"},
				}},
			}},
		},
	})
}

var _ APIClient = (*MockAPIClient)(nil)
