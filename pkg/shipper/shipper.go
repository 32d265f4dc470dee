// Package shipper provides an abstraction layer for shipping carriers.
package shipper

import (
	"context"
	"encoding/json"
	"time"
)

// Session describes the bearer credential a carrier currently holds.
type Session struct {
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Shipper defines the interface that all shipping carriers must implement.
type Shipper interface {
	// Name returns the carrier identifier (e.g., "ups").
	Name() string

	// Authenticate exchanges credentials for a fresh session.
	Authenticate(ctx context.Context) (*Session, error)

	// RetrieveRate returns the negotiated price for the requested service.
	RetrieveRate(ctx context.Context, req *RateRequest) (*RateQuote, error)

	// CreateShipment books an outbound shipment and returns its labels.
	CreateShipment(ctx context.Context, req *ShipmentRequest) (*ShipmentResult, error)

	// CreateReturn books a return shipment back to the merchant.
	CreateReturn(ctx context.Context, req *ShipmentRequest) (*ShipmentResult, error)

	// ValidateAddress returns the carrier's validation response verbatim.
	ValidateAddress(ctx context.Context, req *AddressValidationRequest) (json.RawMessage, error)

	// TrackPackage returns the carrier's tracking response verbatim.
	TrackPackage(ctx context.Context, trackingNumber, transactionID string) (json.RawMessage, error)

	// EstimateDeliveryDate lists service levels with estimated delivery dates.
	EstimateDeliveryDate(ctx context.Context, req *DeliveryEstimateRequest) ([]DeliveryEstimate, error)
}
