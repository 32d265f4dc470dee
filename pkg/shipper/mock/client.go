// Package mock provides a mock shipper implementation for testing.
package mock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/upsbridge/pkg/shipper"
)

// Client is a mock shipper for testing.
type Client struct {
	name string

	// AmountCents is the price returned by RetrieveRate.
	AmountCents int64

	// Err, when set, is returned by every operation.
	Err error
}

// New creates a new mock shipper.
func New(name string) *Client {
	return &Client{name: name, AmountCents: 1582}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return c.name
}

// Authenticate returns a session valid for one hour.
func (c *Client) Authenticate(ctx context.Context) (*shipper.Session, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return &shipper.Session{TokenType: "Bearer", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// RetrieveRate returns a fixed quote for the requested service.
func (c *Client) RetrieveRate(ctx context.Context, req *shipper.RateRequest) (*shipper.RateQuote, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return &shipper.RateQuote{
		Carrier:     c.name,
		ServiceCode: req.ServiceCode,
		AmountCents: c.AmountCents,
		Currency:    "USD",
	}, nil
}

// CreateShipment returns one tracking number and label per parcel.
func (c *Client) CreateShipment(ctx context.Context, req *shipper.ShipmentRequest) (*shipper.ShipmentResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.shipmentResult(len(req.Parcels)), nil
}

// CreateReturn behaves like CreateShipment.
func (c *Client) CreateReturn(ctx context.Context, req *shipper.ShipmentRequest) (*shipper.ShipmentResult, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.shipmentResult(len(req.Parcels)), nil
}

// ValidateAddress echoes the address back as a valid candidate.
func (c *Client) ValidateAddress(ctx context.Context, req *shipper.AddressValidationRequest) (json.RawMessage, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return json.Marshal(map[string]any{
		"valid":     true,
		"candidate": req,
	})
}

// TrackPackage returns a single in-transit activity.
func (c *Client) TrackPackage(ctx context.Context, trackingNumber, transactionID string) (json.RawMessage, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return json.Marshal(map[string]any{
		"trackingNumber": trackingNumber,
		"transactionId":  transactionID,
		"status":         "IN_TRANSIT",
	})
}

// EstimateDeliveryDate returns ground and next-day estimates.
func (c *Client) EstimateDeliveryDate(ctx context.Context, req *shipper.DeliveryEstimateRequest) ([]shipper.DeliveryEstimate, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	now := time.Now()
	return []shipper.DeliveryEstimate{
		{ServiceLevel: "GND", DeliveryDate: now.AddDate(0, 0, 5).Format("2006-01-02"), BusinessTransitDays: 5},
		{ServiceLevel: "1DA", DeliveryDate: now.AddDate(0, 0, 1).Format("2006-01-02"), BusinessTransitDays: 1},
	}, nil
}

func (c *Client) shipmentResult(parcels int) *shipper.ShipmentResult {
	if parcels == 0 {
		parcels = 1
	}
	result := &shipper.ShipmentResult{
		Carrier:     c.name,
		ShipmentID:  c.name + "-ship-" + uuid.New().String()[:8],
		ChargeCents: c.AmountCents,
		Currency:    "USD",
		Status:      shipper.ResponseStatus{Code: "1", Description: "Success"},
	}
	for i := 0; i < parcels; i++ {
		tracking := fmt.Sprintf("1ZMOCK%010d", time.Now().UnixNano()%10000000000+int64(i))
		result.TrackingNumbers = append(result.TrackingNumbers, tracking)
		result.Labels = append(result.Labels, shipper.Label{
			TrackingNumber: tracking,
			Format:         shipper.LabelZPL,
			Data:           base64.StdEncoding.EncodeToString([]byte("^XA^FDMOCK^FS^XZ")),
		})
	}
	return result
}

var _ shipper.Shipper = (*Client)(nil)
