// Package ups provides integration with the UPS REST shipping API.
package ups

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tournevent/upsbridge/pkg/shipper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const carrierName = "ups"

// Fixed UPS codes used by every request.
const (
	packagingCustomerSupplied = "02"
	chargeTypeTransportation  = "01"
	dcisSignatureRequired     = "2"
	negotiatedRatesOn         = "1"
	requestOptionCity         = "city"
	labelUserAgent            = "Mozilla/4.5"
	weightUnitPounds          = "LBS"
	returnServicePrintReturn  = "9"
	returnDescription         = "Electric chargers"
	warehousePhone            = "631-721-8990"
)

// warehouseAddress is where every return is shipped to.
func warehouseAddress() Address {
	return Address{
		AddressLine:       []string{"1911 SW 31ST AVENUE", "BAY 2"},
		City:              "HALLANDALE BEACH",
		StateProvinceCode: "FL",
		PostalCode:        "33009",
		CountryCode:       "US",
	}
}

// Config holds UPS configuration. Shipper, AccountNumber, CustomerName and
// PackageDescription are defaults that individual requests may override.
type Config struct {
	ClientID     string
	ClientSecret string
	Sandbox      bool
	BaseURL      string // overrides the Sandbox host selection when set
	Timeout      time.Duration

	Shipper            shipper.ShipperAddress
	AccountNumber      string
	CustomerName       string
	PackageDescription string

	// LegacyTransitWeight sends round(g/25.4) as the transit time weight
	// instead of pounds.
	LegacyTransitWeight bool

	UseMock bool

	// Now overrides the clock used for ship dates and token expiry.
	Now func() time.Time
}

// Client is the UPS shipper client. It translates shipper requests into
// UPS payloads and delegates transport and token handling to an APIClient.
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// New creates a new UPS client. The base URL is chosen here once.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = BaseURL(cfg.Sandbox)
		}
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:      baseURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Timeout:      cfg.Timeout,
			Now:          cfg.Now,
		})
	}

	return NewWithAPIClient(cfg, apiClient, logger, tracer)
}

// NewWithAPIClient creates a new UPS client with a custom API client.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(carrierName)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
		now:       now,
	}
}

// Name returns the carrier name.
func (c *Client) Name() string {
	return carrierName
}

// Authenticate fetches a new bearer token regardless of the current one.
func (c *Client) Authenticate(ctx context.Context) (*shipper.Session, error) {
	ctx, span := c.startSpan(ctx, "Authenticate")
	defer span.End()

	c.logger.Ctx(ctx).Info("Authenticating with UPS", zap.Bool("sandbox", c.config.Sandbox))

	tok, err := c.apiClient.Authenticate(ctx)
	if err != nil {
		return nil, c.fail(ctx, span, "Authenticate", err)
	}

	return &shipper.Session{
		TokenType: tok.Type,
		ExpiresAt: tok.Expiry(),
	}, nil
}

// RetrieveRate returns the negotiated price of the requested service in cents.
func (c *Client) RetrieveRate(ctx context.Context, req *shipper.RateRequest) (*shipper.RateQuote, error) {
	ctx, span := c.startSpan(ctx, "RetrieveRate",
		attribute.String("ups.service_code", req.ServiceCode),
		attribute.Int("ups.parcel_count", len(req.Parcels)),
	)
	defer span.End()

	c.logger.Ctx(ctx).Info("Retrieving UPS rate",
		zap.String("cart_id", req.CartID),
		zap.String("service_code", req.ServiceCode),
		zap.String("destination_postal", req.Destination.PostalCode),
		zap.Int("parcel_count", len(req.Parcels)),
	)

	if len(req.Parcels) == 0 {
		return nil, c.fail(ctx, span, "RetrieveRate", invalidRequest("shipment has no parcels"))
	}

	origin := c.origin(req.Origin)
	account := firstNonEmpty(req.AccountNumber, c.config.AccountNumber)

	apiReq := &RateEnvelope{
		RateRequest: RateRequest{
			Request: Request{
				TransactionReference: &TransactionReference{
					CustomerContext:       firstNonEmpty(req.CustomerName, c.config.CustomerName),
					TransactionIdentifier: req.CartID,
				},
			},
			Shipment: RateShipment{
				Shipper: Party{
					Name:          origin.Name,
					ShipperNumber: account,
					Address:       shipperAddressToAPI(origin),
				},
				ShipTo: Party{
					Name:    req.RecipientName(),
					Address: destinationToAPI(req.Destination),
				},
				ShipFrom: Party{
					Name:    origin.Name,
					Address: shipperAddressToAPI(origin),
				},
				PaymentDetails:        billShipperPayment(account),
				Service:               CodeDescription{Code: req.ServiceCode},
				Package:               ratePackages(req.Parcels),
				ShipmentRatingOptions: ShipmentRatingOptions{NegotiatedRatesIndicator: negotiatedRatesOn},
			},
		},
	}

	apiResp, err := c.apiClient.Rate(ctx, apiReq)
	if err != nil {
		return nil, c.fail(ctx, span, "RetrieveRate", err)
	}

	quote, err := selectRate(apiResp, req.ServiceCode)
	if err != nil {
		return nil, c.fail(ctx, span, "RetrieveRate", err)
	}

	span.SetAttributes(attribute.Int64("ups.amount_cents", quote.AmountCents))
	return quote, nil
}

// CreateShipment books an outbound shipment to the recipient.
func (c *Client) CreateShipment(ctx context.Context, req *shipper.ShipmentRequest) (*shipper.ShipmentResult, error) {
	ctx, span := c.startSpan(ctx, "CreateShipment",
		attribute.String("ups.service_code", req.ServiceCode),
		attribute.String("ups.order_id", req.OrderID),
	)
	defer span.End()

	c.logger.Ctx(ctx).Info("Creating UPS shipment",
		zap.String("order_id", req.OrderID),
		zap.Int("display_id", req.DisplayID),
		zap.String("service_code", req.ServiceCode),
		zap.Int("parcel_count", len(req.Parcels)),
	)

	if len(req.Parcels) == 0 {
		return nil, c.fail(ctx, span, "CreateShipment", invalidRequest("shipment has no parcels"))
	}

	origin := c.origin(req.Origin)
	account := firstNonEmpty(req.AccountNumber, c.config.AccountNumber)

	apiReq := &ShipEnvelope{
		ShipmentRequest: ShipmentRequest{
			Request: Request{RequestOption: requestOptionCity},
			Shipment: Shipment{
				Description: firstNonEmpty(req.PackageDescription, c.config.PackageDescription),
				Shipper: Party{
					Name:          origin.Name,
					ShipperNumber: account,
					Address:       shipperAddressToAPI(origin),
				},
				ShipTo: Party{
					Name:        req.RecipientName(),
					Phone:       &Phone{Number: req.PhoneNumber},
					Address:     destinationToAPI(req.Destination),
					Residential: "true",
				},
				ShipFrom: Party{
					Name:    origin.Name,
					Address: shipperAddressToAPI(origin),
				},
				PaymentInformation:    billShipperPayment(account),
				Service:               CodeDescription{Code: req.ServiceCode},
				Package:               shipmentPackages(req.Parcels, req.DisplayID),
				ShipmentRatingOptions: ShipmentRatingOptions{NegotiatedRatesIndicator: negotiatedRatesOn},
			},
			LabelSpecification: zplLabelSpecification(),
		},
	}

	apiResp, err := c.apiClient.Ship(ctx, apiReq)
	if err != nil {
		return nil, c.fail(ctx, span, "CreateShipment", err)
	}

	result, err := shipmentResponseToShipper(apiResp)
	if err != nil {
		return nil, c.fail(ctx, span, "CreateShipment", err)
	}
	return result, nil
}

// CreateReturn books a return from the recipient's address to the fixed
// warehouse. The caller's destination becomes the ship-from party.
func (c *Client) CreateReturn(ctx context.Context, req *shipper.ShipmentRequest) (*shipper.ShipmentResult, error) {
	ctx, span := c.startSpan(ctx, "CreateReturn",
		attribute.String("ups.service_code", req.ServiceCode),
		attribute.String("ups.order_id", req.OrderID),
	)
	defer span.End()

	c.logger.Ctx(ctx).Info("Creating UPS return",
		zap.String("order_id", req.OrderID),
		zap.String("service_code", req.ServiceCode),
		zap.String("from_postal", req.Destination.PostalCode),
	)

	if len(req.Parcels) == 0 {
		return nil, c.fail(ctx, span, "CreateReturn", invalidRequest("shipment has no parcels"))
	}

	origin := c.origin(req.Origin)
	account := firstNonEmpty(req.AccountNumber, c.config.AccountNumber)

	apiReq := &ShipEnvelope{
		ShipmentRequest: ShipmentRequest{
			Request: Request{RequestOption: requestOptionCity},
			Shipment: Shipment{
				Description: returnDescription,
				Shipper: Party{
					Name:          origin.Name,
					ShipperNumber: account,
					Address:       warehouseAddress(),
				},
				ShipTo: Party{
					Name:        origin.Name,
					Phone:       &Phone{Number: warehousePhone},
					Address:     warehouseAddress(),
					Residential: "false",
				},
				ShipFrom: Party{
					Name:    req.RecipientName(),
					Address: destinationToAPI(req.Destination),
				},
				PaymentInformation: billShipperPayment(account),
				ReturnService: &CodeDescription{
					Code:        returnServicePrintReturn,
					Description: returnDescription,
				},
				Service:               CodeDescription{Code: req.ServiceCode},
				Package:               returnPackages(req.Parcels),
				ShipmentRatingOptions: ShipmentRatingOptions{NegotiatedRatesIndicator: negotiatedRatesOn},
			},
			LabelSpecification: zplLabelSpecification(),
		},
	}

	apiResp, err := c.apiClient.Ship(ctx, apiReq)
	if err != nil {
		return nil, c.fail(ctx, span, "CreateReturn", err)
	}

	result, err := shipmentResponseToShipper(apiResp)
	if err != nil {
		return nil, c.fail(ctx, span, "CreateReturn", err)
	}
	return result, nil
}

// ValidateAddress returns the UPS address validation response unchanged.
func (c *Client) ValidateAddress(ctx context.Context, req *shipper.AddressValidationRequest) (json.RawMessage, error) {
	ctx, span := c.startSpan(ctx, "ValidateAddress")
	defer span.End()

	c.logger.Ctx(ctx).Info("Validating address with UPS",
		zap.String("city", req.City),
		zap.String("country_code", req.CountryCode),
	)

	lines := req.AddressLines
	if lines == nil {
		lines = []string{}
	}

	apiReq := &XAVEnvelope{
		XAVRequest: XAVRequest{
			AddressKeyFormat: AddressKeyFormat{
				AddressLine:         lines,
				PoliticalDivision2:  req.City,
				PoliticalDivision1:  req.Province,
				PostcodePrimaryLow:  string(req.Zip),
				PostcodeExtendedLow: string(req.ZipExtended),
				CountryCode:         req.CountryCode,
			},
		},
	}

	resp, err := c.apiClient.ValidateAddress(ctx, apiReq)
	if err != nil {
		return nil, c.fail(ctx, span, "ValidateAddress", err)
	}
	return resp, nil
}

// TrackPackage returns the UPS tracking response unchanged. An empty
// transactionID is replaced with a generated one.
func (c *Client) TrackPackage(ctx context.Context, trackingNumber, transactionID string) (json.RawMessage, error) {
	ctx, span := c.startSpan(ctx, "TrackPackage", attribute.String("ups.tracking_number", trackingNumber))
	defer span.End()

	if transactionID == "" {
		transactionID = uuid.New().String()
	}

	c.logger.Ctx(ctx).Info("Tracking UPS package",
		zap.String("tracking_number", trackingNumber),
		zap.String("transaction_id", transactionID),
	)

	if trackingNumber == "" {
		return nil, c.fail(ctx, span, "TrackPackage", invalidRequest("tracking number is required"))
	}

	resp, err := c.apiClient.Track(ctx, trackingNumber, transactionID)
	if err != nil {
		return nil, c.fail(ctx, span, "TrackPackage", err)
	}
	return resp, nil
}

// EstimateDeliveryDate lists UPS service levels with their delivery dates
// for a shipment leaving today.
func (c *Client) EstimateDeliveryDate(ctx context.Context, req *shipper.DeliveryEstimateRequest) ([]shipper.DeliveryEstimate, error) {
	ctx, span := c.startSpan(ctx, "EstimateDeliveryDate")
	defer span.End()

	transactionID := req.CartID
	if transactionID == "" {
		transactionID = uuid.New().String()
	}

	c.logger.Ctx(ctx).Info("Estimating UPS delivery date",
		zap.String("cart_id", transactionID),
		zap.String("destination_postal", req.Destination.PostalCode),
		zap.Bool("has_weight", req.Weight != nil),
	)

	origin := c.origin(req.Origin)

	apiReq := &TransitTimesRequest{
		OriginCountryCode:        origin.CountryCode,
		OriginStateProvince:      origin.StateProvince,
		OriginCityName:           origin.City,
		OriginPostalCode:         origin.PostalCode,
		DestinationCountryCode:   req.Destination.CountryCode,
		DestinationStateProvince: req.Destination.Province,
		DestinationCityName:      req.Destination.City,
		DestinationPostalCode:    req.Destination.PostalCode,
		ShipDate:                 shipDate(c.now()),
		ResidentialIndicator:     "",
		AVVFlag:                  true,
	}
	if req.Weight != nil && *req.Weight > 0 {
		apiReq.SKUWeight = &SKUWeight{
			Weight:              transitWeight(*req.Weight, c.config.LegacyTransitWeight),
			WeightUnitOfMeasure: weightUnitPounds,
		}
	}

	apiResp, err := c.apiClient.TransitTimes(ctx, apiReq, transactionID)
	if err != nil {
		return nil, c.fail(ctx, span, "EstimateDeliveryDate", err)
	}

	estimates := make([]shipper.DeliveryEstimate, len(apiResp.EmsResponse.Services))
	for i := range apiResp.EmsResponse.Services {
		s := &apiResp.EmsResponse.Services[i]
		days, err := s.BusinessTransitDays.Int64()
		if err != nil {
			c.logger.Ctx(ctx).Warn("Unparsable UPS business transit days",
				zap.String("service_level", s.ServiceLevel),
				zap.String("value", string(s.BusinessTransitDays)),
			)
		}
		raw, err := s.raw()
		if err != nil {
			return nil, c.fail(ctx, span, "EstimateDeliveryDate", err)
		}
		estimates[i] = shipper.DeliveryEstimate{
			ServiceLevel:            s.ServiceLevel,
			ServiceLevelDescription: s.ServiceLevelDescription,
			DeliveryDate:            s.DeliveryDate,
			DeliveryTime:            s.DeliveryTime,
			BusinessTransitDays:     int(days),
			Service:                 raw,
		}
	}
	return estimates, nil
}

// ============================================================================
// Conversion helpers
// ============================================================================

func (c *Client) origin(override *shipper.ShipperAddress) shipper.ShipperAddress {
	if !override.IsZero() {
		return *override
	}
	return c.config.Shipper
}

func shipperAddressToAPI(addr shipper.ShipperAddress) Address {
	return Address{
		AddressLine:       append([]string(nil), addr.AddressLines...),
		City:              addr.City,
		StateProvinceCode: addr.StateProvince,
		PostalCode:        addr.PostalCode,
		CountryCode:       addr.CountryCode,
	}
}

// destinationToAPI always sends two address lines; a missing second line is "".
func destinationToAPI(addr shipper.Address) Address {
	return Address{
		AddressLine:       []string{addr.Line1, addr.Line2},
		City:              addr.City,
		StateProvinceCode: addr.Province,
		PostalCode:        addr.PostalCode,
		CountryCode:       addr.CountryCode,
	}
}

func billShipperPayment(account string) Payment {
	return Payment{
		ShipmentCharge: ShipmentCharge{
			Type:        chargeTypeTransportation,
			BillShipper: BillShipper{AccountNumber: account},
		},
	}
}

func parcelDimensions(p shipper.Parcel) Dimensions {
	return Dimensions{
		UnitOfMeasurement: CodeDescription{Code: "IN", Description: "Inches"},
		Length:            millimetersToInches(p.Length),
		Width:             millimetersToInches(p.Width),
		Height:            millimetersToInches(p.Height),
	}
}

func parcelWeight(p shipper.Parcel) PackageWeight {
	return PackageWeight{
		UnitOfMeasurement: CodeDescription{Code: weightUnitPounds, Description: "Pounds"},
		Weight:            gramsToPounds(p.Weight),
	}
}

func deliveryConfirmation() *PackageServiceOptions {
	return &PackageServiceOptions{
		DeliveryConfirmation: DeliveryConfirmation{DCISType: dcisSignatureRequired},
	}
}

func ratePackages(parcels []shipper.Parcel) []Package {
	packages := make([]Package, len(parcels))
	for i, p := range parcels {
		packages[i] = Package{
			PackagingType:         &CodeDescription{Code: packagingCustomerSupplied},
			Dimensions:            parcelDimensions(p),
			PackageWeight:         parcelWeight(p),
			PackageServiceOptions: deliveryConfirmation(),
		}
	}
	return packages
}

func shipmentPackages(parcels []shipper.Parcel, displayID int) []Package {
	reference := "#" + strconv.Itoa(displayID)
	packages := make([]Package, len(parcels))
	for i, p := range parcels {
		packages[i] = Package{
			Packaging:             &CodeDescription{Code: packagingCustomerSupplied},
			Dimensions:            parcelDimensions(p),
			PackageWeight:         parcelWeight(p),
			PackageServiceOptions: deliveryConfirmation(),
			ReferenceNumber:       &ReferenceNumber{Value: reference},
		}
	}
	return packages
}

// returnPackages builds return packages. Returns go through the Ship API,
// whose package schema names the field Packaging; PackagingType exists only
// in the Rating API.
func returnPackages(parcels []shipper.Parcel) []Package {
	packages := make([]Package, len(parcels))
	for i, p := range parcels {
		packages[i] = Package{
			Packaging:     &CodeDescription{Code: packagingCustomerSupplied},
			Dimensions:    parcelDimensions(p),
			PackageWeight: parcelWeight(p),
		}
	}
	return packages
}

// zplLabelSpecification requests 4x6 thermal ZPL labels. UPS requires the
// HTTPUserAgent field for ZPL even though nothing renders it.
func zplLabelSpecification() LabelSpecification {
	return LabelSpecification{
		LabelImageFormat: CodeDescription{Code: "ZPL", Description: "ZPL"},
		LabelStockSize:   LabelStockSize{Height: "6", Width: "4"},
		HTTPUserAgent:    labelUserAgent,
	}
}

func selectRate(resp *RateResponseEnvelope, serviceCode string) (*shipper.RateQuote, error) {
	for _, rated := range resp.RateResponse.RatedShipment {
		if rated.Service.Code != serviceCode {
			continue
		}

		quote := &shipper.RateQuote{Carrier: carrierName, ServiceCode: serviceCode}
		if rated.NegotiatedRateCharges == nil || rated.NegotiatedRateCharges.TotalCharge == nil {
			return quote, nil
		}

		charge := rated.NegotiatedRateCharges.TotalCharge
		amount, err := charge.MonetaryValue.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: monetary value %q: %w", shipper.ErrCarrierRejected, charge.MonetaryValue, err)
		}
		quote.AmountCents = toCents(amount)
		quote.Currency = charge.CurrencyCode
		return quote, nil
	}

	return nil, shipper.NewShipperError(carrierName, shipper.CodeNoMatchingRate,
		fmt.Sprintf("no rated shipment for service code %q", serviceCode)).WithStatusCode(422)
}

func shipmentResponseToShipper(resp *ShipResponseEnvelope) (*shipper.ShipmentResult, error) {
	results := resp.ShipmentResponse.ShipmentResults
	status := resp.ShipmentResponse.Response.ResponseStatus

	out := &shipper.ShipmentResult{
		Carrier:         carrierName,
		ShipmentID:      results.ShipmentIdentificationNumber,
		TrackingNumbers: make([]string, 0, len(results.PackageResults)),
		Labels:          make([]shipper.Label, 0, len(results.PackageResults)),
		Status:          shipper.ResponseStatus{Code: status.Code, Description: status.Description},
	}

	for _, pkg := range results.PackageResults {
		out.TrackingNumbers = append(out.TrackingNumbers, pkg.TrackingNumber)
		if pkg.ShippingLabel != nil {
			out.Labels = append(out.Labels, shipper.Label{
				TrackingNumber: pkg.TrackingNumber,
				Format:         shipper.LabelFormat(pkg.ShippingLabel.ImageFormat.Code),
				Data:           pkg.ShippingLabel.GraphicImage,
			})
		}
	}

	// Negotiated price first, published price otherwise.
	var charge *Charge
	if results.NegotiatedRateCharges != nil && results.NegotiatedRateCharges.TotalCharge != nil {
		charge = results.NegotiatedRateCharges.TotalCharge
	} else if results.ShipmentCharges != nil {
		charge = results.ShipmentCharges.TotalCharges
	}
	if charge != nil {
		amount, err := charge.MonetaryValue.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: monetary value %q: %w", shipper.ErrCarrierRejected, charge.MonetaryValue, err)
		}
		out.ChargeCents = toCents(amount)
		out.Currency = charge.CurrencyCode
	}

	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// ============================================================================
// Errors and tracing
// ============================================================================

func (c *Client) startSpan(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("carrier", carrierName))
	return c.tracer.Start(ctx, "ups."+op, trace.WithAttributes(attrs...))
}

// fail classifies err, records it on the span, logs it and returns it.
func (c *Client) fail(ctx context.Context, span trace.Span, op string, err error) error {
	shipperErr := classify(err)

	span.RecordError(shipperErr)
	span.SetStatus(codes.Error, shipperErr.Code)

	c.logger.Ctx(ctx).Error("UPS API error",
		zap.String("operation", op),
		zap.String("code", shipperErr.Code),
		zap.Int("status_code", shipperErr.StatusCode),
		zap.Error(err),
	)
	return shipperErr
}

func invalidRequest(message string) error {
	return shipper.NewShipperError(carrierName, shipper.CodeInvalidRequest, message).WithStatusCode(400)
}

func classify(err error) *shipper.ShipperError {
	var shipperErr *shipper.ShipperError
	if errors.As(err, &shipperErr) {
		return shipperErr
	}

	var apiErr *APIError
	hasAPIErr := errors.As(err, &apiErr)

	switch {
	case errors.Is(err, shipper.ErrAuthenticationFailed):
		e := shipper.NewShipperError(carrierName, shipper.CodeAuth, "authentication failed").WithCause(err)
		if hasAPIErr {
			e.WithStatusCode(apiErr.StatusCode)
		}
		return e
	case hasAPIErr:
		return shipper.NewShipperError(carrierName, shipper.CodeAPI, "request rejected").
			WithCause(err).
			WithStatusCode(apiErr.StatusCode).
			WithRetryable(apiErr.StatusCode >= 500)
	case errors.Is(err, context.Canceled):
		return shipper.NewShipperError(carrierName, shipper.CodeTransport, "request cancelled").WithCause(err)
	case errors.Is(err, shipper.ErrTransport), errors.Is(err, context.DeadlineExceeded):
		return shipper.NewShipperError(carrierName, shipper.CodeTransport, "carrier unreachable").
			WithCause(err).
			WithRetryable(true)
	default:
		return shipper.NewShipperError(carrierName, shipper.CodeAPI, "unexpected carrier response").WithCause(err)
	}
}

var _ shipper.Shipper = (*Client)(nil)
