package ups

import (
	"context"
	"encoding/json"
	"fmt"
)

// APIClient defines the interface for UPS API operations.
// Implementations own the session token and refresh it before each call.
type APIClient interface {
	// Authenticate exchanges client credentials for a new bearer token.
	Authenticate(ctx context.Context) (*Token, error)

	// Rate posts a rate-shop request.
	Rate(ctx context.Context, req *RateEnvelope) (*RateResponseEnvelope, error)

	// Ship posts a shipment (or return) request.
	Ship(ctx context.Context, req *ShipEnvelope) (*ShipResponseEnvelope, error)

	// ValidateAddress posts an address validation request.
	ValidateAddress(ctx context.Context, req *XAVEnvelope) (json.RawMessage, error)

	// TransitTimes posts a transit time request.
	TransitTimes(ctx context.Context, req *TransitTimesRequest, transactionID string) (*TransitTimesResponse, error)

	// Track fetches tracking details for a single tracking number.
	Track(ctx context.Context, trackingNumber, transactionID string) (json.RawMessage, error)
}

// ============================================================================
// Shared shapes (match UPS REST JSON field names)
// ============================================================================

// CodeDescription is the ubiquitous {Code, Description} pair.
type CodeDescription struct {
	Code        string `json:"Code"`
	Description string `json:"Description,omitempty"`
}

// Address is a UPS postal address.
type Address struct {
	AddressLine       []string `json:"AddressLine"`
	City              string   `json:"City"`
	StateProvinceCode string   `json:"StateProvinceCode"`
	PostalCode        string   `json:"PostalCode"`
	CountryCode       string   `json:"CountryCode"`
}

// Phone is a contact phone number.
type Phone struct {
	Number string `json:"Number"`
}

// Party is a shipper, ship-to or ship-from block.
type Party struct {
	Name          string  `json:"Name"`
	ShipperNumber string  `json:"ShipperNumber,omitempty"`
	Phone         *Phone  `json:"Phone,omitempty"`
	Address       Address `json:"Address"`
	Residential   string  `json:"Residential,omitempty"`
}

// TransactionReference lets UPS echo caller context back.
type TransactionReference struct {
	CustomerContext       string `json:"CustomerContext"`
	TransactionIdentifier string `json:"TransactionIdentifier"`
}

// Request is the common request header.
type Request struct {
	RequestOption        string                `json:"RequestOption,omitempty"`
	TransactionReference *TransactionReference `json:"TransactionReference,omitempty"`
}

// BillShipper bills the shipper's account.
type BillShipper struct {
	AccountNumber string `json:"AccountNumber"`
}

// ShipmentCharge describes who pays which charge.
type ShipmentCharge struct {
	Type        string      `json:"Type"`
	BillShipper BillShipper `json:"BillShipper"`
}

// Payment wraps the shipment charge for both rating and shipping.
type Payment struct {
	ShipmentCharge ShipmentCharge `json:"ShipmentCharge"`
}

// Dimensions are package dimensions as integer strings.
type Dimensions struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Length            string          `json:"Length"`
	Width             string          `json:"Width"`
	Height            string          `json:"Height"`
}

// PackageWeight is the weight as a two-decimal string.
type PackageWeight struct {
	UnitOfMeasurement CodeDescription `json:"UnitOfMeasurement"`
	Weight            string          `json:"Weight"`
}

// DeliveryConfirmation requests a delivery confirmation type.
type DeliveryConfirmation struct {
	DCISType string `json:"DCISType"`
}

// PackageServiceOptions are per-package accessorials.
type PackageServiceOptions struct {
	DeliveryConfirmation DeliveryConfirmation `json:"DeliveryConfirmation"`
}

// ReferenceNumber is printed on the label.
type ReferenceNumber struct {
	Value string `json:"Value"`
}

// Package is one package. Rating uses PackagingType, shipping uses Packaging.
type Package struct {
	PackagingType         *CodeDescription       `json:"PackagingType,omitempty"`
	Packaging             *CodeDescription       `json:"Packaging,omitempty"`
	Dimensions            Dimensions             `json:"Dimensions"`
	PackageWeight         PackageWeight          `json:"PackageWeight"`
	PackageServiceOptions *PackageServiceOptions `json:"PackageServiceOptions,omitempty"`
	ReferenceNumber       *ReferenceNumber       `json:"ReferenceNumber,omitempty"`
}

// ShipmentRatingOptions toggles negotiated rates.
type ShipmentRatingOptions struct {
	NegotiatedRatesIndicator string `json:"NegotiatedRatesIndicator"`
}

// Charge is a monetary amount. UPS sends MonetaryValue as a string.
type Charge struct {
	CurrencyCode  string `json:"CurrencyCode"`
	MonetaryValue Number `json:"MonetaryValue"`
}

// NegotiatedRateCharges holds the account-specific price.
type NegotiatedRateCharges struct {
	TotalCharge *Charge `json:"TotalCharge,omitempty"`
}

// ResponseInfo carries the response status.
type ResponseInfo struct {
	ResponseStatus CodeDescription `json:"ResponseStatus"`
}

// ============================================================================
// Rating: POST /api/rating/v1/Shop
// ============================================================================

// RateEnvelope is the rate-shop request body.
type RateEnvelope struct {
	RateRequest RateRequest `json:"RateRequest"`
}

// RateRequest is the rate-shop request.
type RateRequest struct {
	Request  Request      `json:"Request"`
	Shipment RateShipment `json:"Shipment"`
}

// RateShipment describes the shipment to rate.
type RateShipment struct {
	Shipper               Party                 `json:"Shipper"`
	ShipTo                Party                 `json:"ShipTo"`
	ShipFrom              Party                 `json:"ShipFrom"`
	PaymentDetails        Payment               `json:"PaymentDetails"`
	Service               CodeDescription       `json:"Service"`
	Package               []Package             `json:"Package"`
	ShipmentRatingOptions ShipmentRatingOptions `json:"ShipmentRatingOptions"`
}

// RateResponseEnvelope is the rate-shop response body.
type RateResponseEnvelope struct {
	RateResponse RateResponse `json:"RateResponse"`
}

// RateResponse lists the rated alternatives.
type RateResponse struct {
	Response      *ResponseInfo       `json:"Response,omitempty"`
	RatedShipment List[RatedShipment] `json:"RatedShipment"`
}

// RatedShipment is one service alternative.
type RatedShipment struct {
	Service               CodeDescription        `json:"Service"`
	TotalCharges          *Charge                `json:"TotalCharges,omitempty"`
	NegotiatedRateCharges *NegotiatedRateCharges `json:"NegotiatedRateCharges,omitempty"`
}

// ============================================================================
// Shipping: POST /api/shipments/v1801/ship
// ============================================================================

// ShipEnvelope is the shipment request body.
type ShipEnvelope struct {
	ShipmentRequest ShipmentRequest `json:"ShipmentRequest"`
}

// ShipmentRequest is a shipment or return request.
type ShipmentRequest struct {
	Request            Request            `json:"Request"`
	Shipment           Shipment           `json:"Shipment"`
	LabelSpecification LabelSpecification `json:"LabelSpecification"`
}

// Shipment describes the shipment to book.
type Shipment struct {
	Description           string                `json:"Description,omitempty"`
	Shipper               Party                 `json:"Shipper"`
	ShipTo                Party                 `json:"ShipTo"`
	ShipFrom              Party                 `json:"ShipFrom"`
	PaymentInformation    Payment               `json:"PaymentInformation"`
	ReturnService         *CodeDescription      `json:"ReturnService,omitempty"`
	Service               CodeDescription       `json:"Service"`
	Package               []Package             `json:"Package"`
	ShipmentRatingOptions ShipmentRatingOptions `json:"ShipmentRatingOptions"`
}

// LabelStockSize is the physical label size in inches.
type LabelStockSize struct {
	Height string `json:"Height"`
	Width  string `json:"Width"`
}

// LabelSpecification selects the label encoding.
type LabelSpecification struct {
	LabelImageFormat CodeDescription `json:"LabelImageFormat"`
	LabelStockSize   LabelStockSize  `json:"LabelStockSize"`
	HTTPUserAgent    string          `json:"HTTPUserAgent"`
}

// ShipResponseEnvelope is the shipment response body.
type ShipResponseEnvelope struct {
	ShipmentResponse ShipmentResponse `json:"ShipmentResponse"`
}

// ShipmentResponse is the carrier confirmation.
type ShipmentResponse struct {
	Response        ResponseInfo    `json:"Response"`
	ShipmentResults ShipmentResults `json:"ShipmentResults"`
}

// ShipmentResults carries tracking numbers, labels and charges.
type ShipmentResults struct {
	ShipmentIdentificationNumber string                 `json:"ShipmentIdentificationNumber"`
	PackageResults               List[PackageResult]    `json:"PackageResults"`
	NegotiatedRateCharges        *NegotiatedRateCharges `json:"NegotiatedRateCharges,omitempty"`
	ShipmentCharges              *ShipmentCharges       `json:"ShipmentCharges,omitempty"`
}

// ShipmentCharges is the published (non-negotiated) price.
type ShipmentCharges struct {
	TotalCharges *Charge `json:"TotalCharges,omitempty"`
}

// PackageResult is one package's tracking number and label.
type PackageResult struct {
	TrackingNumber string         `json:"TrackingNumber"`
	ShippingLabel  *ShippingLabel `json:"ShippingLabel,omitempty"`
}

// ShippingLabel is a base64 label image.
type ShippingLabel struct {
	ImageFormat  CodeDescription `json:"ImageFormat"`
	GraphicImage string          `json:"GraphicImage"`
}

// ============================================================================
// Address validation: POST /api/addressvalidation/v1/1
// ============================================================================

// XAVEnvelope is the address validation request body.
type XAVEnvelope struct {
	XAVRequest XAVRequest `json:"XAVRequest"`
}

// XAVRequest wraps the address key format.
type XAVRequest struct {
	AddressKeyFormat AddressKeyFormat `json:"AddressKeyFormat"`
}

// AddressKeyFormat is UPS's address representation for validation.
type AddressKeyFormat struct {
	AddressLine         []string `json:"AddressLine"`
	PoliticalDivision2  string   `json:"PoliticalDivision2"`
	PoliticalDivision1  string   `json:"PoliticalDivision1"`
	PostcodePrimaryLow  string   `json:"PostcodePrimaryLow"`
	PostcodeExtendedLow string   `json:"PostcodeExtendedLow"`
	CountryCode         string   `json:"CountryCode"`
}

// ============================================================================
// Transit times: POST /api/shipments/v1/transittimes
// ============================================================================

// TransitTimesRequest asks for delivery dates between two points.
type TransitTimesRequest struct {
	OriginCountryCode        string     `json:"originCountryCode"`
	OriginStateProvince      string     `json:"originStateProvince"`
	OriginCityName           string     `json:"originCityName"`
	OriginPostalCode         string     `json:"originPostalCode"`
	DestinationCountryCode   string     `json:"destinationCountryCode"`
	DestinationStateProvince string     `json:"destinationStateProvince"`
	DestinationCityName      string     `json:"destinationCityName"`
	DestinationPostalCode    string     `json:"destinationPostalCode"`
	SKUWeight                *SKUWeight `json:"skuWeight,omitempty"`
	ShipDate                 string     `json:"shipDate"`
	ResidentialIndicator     string     `json:"residentialIndicator"`
	AVVFlag                  bool       `json:"avvFlag"`
}

// SKUWeight is the optional shipment weight.
type SKUWeight struct {
	Weight              float64 `json:"weight"`
	WeightUnitOfMeasure string  `json:"weightUnitOfMeasure"`
}

// TransitTimesResponse is the transit time response body.
type TransitTimesResponse struct {
	EmsResponse EmsResponse `json:"emsResponse"`
}

// EmsResponse lists the services with delivery dates.
type EmsResponse struct {
	Services []TransitService `json:"services"`
}

// TransitService is one service level estimate. Raw holds the entry exactly
// as UPS sent it, including fields not mapped here.
type TransitService struct {
	ServiceLevel            string          `json:"serviceLevel"`
	ServiceLevelDescription string          `json:"serviceLevelDescription,omitempty"`
	DeliveryDate            string          `json:"deliveryDate"`
	DeliveryTime            string          `json:"deliveryTime,omitempty"`
	BusinessTransitDays     Number          `json:"businessTransitDays,omitempty"`
	Raw                     json.RawMessage `json:"-"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *TransitService) UnmarshalJSON(data []byte) error {
	type plain TransitService
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*s = TransitService(p)
	s.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// raw returns the entry as received, or its encoding when it was built
// locally.
func (s *TransitService) raw() (json.RawMessage, error) {
	if len(s.Raw) > 0 {
		return s.Raw, nil
	}
	return json.Marshal(s)
}

// ============================================================================
// Errors
// ============================================================================

// errorResponse is the UPS error body.
type errorResponse struct {
	Response struct {
		Errors []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"response"`
}

// APIError represents an error from the UPS API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Code, e.Message)
}
