package shipper

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// LabelFormat represents the image encoding of a shipping label.
type LabelFormat string

const (
	LabelZPL LabelFormat = "ZPL"
	LabelGIF LabelFormat = "GIF"
	LabelPNG LabelFormat = "PNG"
	LabelPDF LabelFormat = "PDF"
)

// FlexString is a string that also accepts JSON numbers and null.
// Postal codes routinely arrive as numbers from upstream callers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("flex string: %w", err)
	}
	*s = FlexString(num.String())
	return nil
}

// ShipperAddress is the fixed origin identity of the merchant.
type ShipperAddress struct {
	Name          string   `json:"name"`
	AddressLines  []string `json:"addressLines"`
	City          string   `json:"city"`
	StateProvince string   `json:"stateProvince"`
	PostalCode    string   `json:"postalCode"`
	CountryCode   string   `json:"countryCode"` // ISO 3166-1 alpha-2
}

// IsZero reports whether no origin was supplied.
func (a *ShipperAddress) IsZero() bool {
	return a == nil || (a.Name == "" && len(a.AddressLines) == 0 && a.PostalCode == "")
}

// Address is a destination address.
type Address struct {
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city"`
	Province    string `json:"province"`
	PostalCode  string `json:"postalCode"`
	CountryCode string `json:"countryCode"`
}

// Parcel is one physical package. Weight is in grams, dimensions in millimeters.
type Parcel struct {
	Weight float64 `json:"weight"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Length float64 `json:"length"`
	SKU    string  `json:"sku,omitempty"`
}

// Shipment holds the recipient and parcels common to rating and shipping.
type Shipment struct {
	FirstName   string   `json:"firstName"`
	LastName    string   `json:"lastName"`
	ServiceCode string   `json:"serviceCode"`
	Destination Address  `json:"destination"`
	Parcels     []Parcel `json:"parcels"`
}

// RecipientName returns the recipient's full name.
func (s *Shipment) RecipientName() string {
	return s.FirstName + " " + s.LastName
}

// ============================================================================
// Request/Response Types
// ============================================================================

// RateRequest is the request for a rate quote on a single service.
// Origin, AccountNumber and CustomerName override the carrier defaults when set.
type RateRequest struct {
	Shipment
	CartID        string          `json:"cartId"`
	Origin        *ShipperAddress `json:"origin,omitempty"`
	AccountNumber string          `json:"accountNumber,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
}

// RateQuote is a negotiated price in minor currency units.
type RateQuote struct {
	Carrier     string `json:"carrier"`
	ServiceCode string `json:"serviceCode"`
	AmountCents int64  `json:"amountCents"`
	Currency    string `json:"currency,omitempty"`
}

// ShipmentRequest is the request for creating a shipment or a return.
type ShipmentRequest struct {
	Shipment
	OrderID            string          `json:"orderId"`
	DisplayID          int             `json:"displayId"`
	PhoneNumber        string          `json:"phoneNumber"`
	Origin             *ShipperAddress `json:"origin,omitempty"`
	AccountNumber      string          `json:"accountNumber,omitempty"`
	PackageDescription string          `json:"packageDescription,omitempty"`
}

// Label is a shipping label image.
type Label struct {
	TrackingNumber string      `json:"trackingNumber"`
	Format         LabelFormat `json:"format"`
	Data           string      `json:"data"` // Base64 encoded
}

// ResponseStatus is the carrier's acknowledgement of a request.
type ResponseStatus struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ShipmentResult is the carrier's confirmation of a created shipment.
type ShipmentResult struct {
	Carrier         string         `json:"carrier"`
	ShipmentID      string         `json:"shipmentId"`
	TrackingNumbers []string       `json:"trackingNumbers"`
	Labels          []Label        `json:"labels"`
	ChargeCents     int64          `json:"chargeCents"`
	Currency        string         `json:"currency,omitempty"`
	Status          ResponseStatus `json:"status"`
}

// AddressValidationRequest is an address submitted for validation.
type AddressValidationRequest struct {
	AddressLines []string   `json:"addressLines"`
	City         string     `json:"city"`
	Province     string     `json:"province"`
	Zip          FlexString `json:"zip"`
	ZipExtended  FlexString `json:"zipExtended,omitempty"`
	CountryCode  string     `json:"countryCode"`
}

// DeliveryEstimateRequest asks for transit times between two addresses.
// Weight is in grams and optional.
type DeliveryEstimateRequest struct {
	Origin      *ShipperAddress `json:"origin,omitempty"`
	Destination Address         `json:"destination"`
	CartID      string          `json:"cartId"`
	Weight      *float64        `json:"weight,omitempty"`
}

// DeliveryEstimate is one service level with its estimated delivery date.
// Service carries the carrier's entry unmodified.
type DeliveryEstimate struct {
	ServiceLevel            string          `json:"serviceLevel"`
	ServiceLevelDescription string          `json:"serviceLevelDescription,omitempty"`
	DeliveryDate            string          `json:"deliveryDate"`
	DeliveryTime            string          `json:"deliveryTime,omitempty"`
	BusinessTransitDays     int             `json:"businessTransitDays,omitempty"`
	Service                 json.RawMessage `json:"service,omitempty"`
}
