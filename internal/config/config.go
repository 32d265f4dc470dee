package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tournevent/upsbridge/pkg/shipper"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port     int    `envconfig:"PORT" default:"80"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// UPS
	UPSEnabled      bool          `envconfig:"UPS_ENABLED" default:"true"`
	UPSUseMock      bool          `envconfig:"UPS_USE_MOCK" default:"false"`
	UPSClientID     string        `envconfig:"UPS_CLIENT_ID"`
	UPSClientSecret string        `envconfig:"UPS_CLIENT_SECRET"`
	UPSSandbox      bool          `envconfig:"UPS_SANDBOX" default:"false"`
	UPSBaseURL      string        `envconfig:"UPS_BASE_URL"`
	UPSTimeout      time.Duration `envconfig:"UPS_TIMEOUT" default:"30s"`

	UPSAccountNumber      string `envconfig:"UPS_ACCOUNT_NUMBER"`
	UPSCustomerName       string `envconfig:"UPS_CUSTOMER_NAME"`
	UPSPackageDescription string `envconfig:"UPS_PACKAGE_DESCRIPTION" default:"Electric chargers"`

	UPSShipperName         string   `envconfig:"UPS_SHIPPER_NAME"`
	UPSShipperAddressLines []string `envconfig:"UPS_SHIPPER_ADDRESS_LINES"`
	UPSShipperCity         string   `envconfig:"UPS_SHIPPER_CITY"`
	UPSShipperState        string   `envconfig:"UPS_SHIPPER_STATE"`
	UPSShipperZip          string   `envconfig:"UPS_SHIPPER_ZIP"`
	UPSShipperCountry      string   `envconfig:"UPS_SHIPPER_COUNTRY" default:"US"`

	UPSLegacyTransitWeight bool `envconfig:"UPS_LEGACY_TRANSIT_WEIGHT" default:"false"`

	// Extra in-memory carriers registered next to UPS, e.g. for local demos.
	MockCarriers []string `envconfig:"MOCK_CARRIERS"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"false"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://localhost:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"upsbridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables. Any files given are
// loaded as dotenv files first; variables already set in the environment win.
// Missing files are ignored.
func Load(files ...string) (*Config, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", file, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// ShipperAddress returns the configured merchant origin.
func (c *Config) ShipperAddress() shipper.ShipperAddress {
	return shipper.ShipperAddress{
		Name:          c.UPSShipperName,
		AddressLines:  c.UPSShipperAddressLines,
		City:          c.UPSShipperCity,
		StateProvince: c.UPSShipperState,
		PostalCode:    c.UPSShipperZip,
		CountryCode:   c.UPSShipperCountry,
	}
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("ups.enabled", c.UPSEnabled),
		attribute.Bool("ups.sandbox", c.UPSSandbox),
		attribute.Bool("ups.mock", c.UPSUseMock),
		attribute.StringSlice("mock.carriers", c.MockCarriers),
	}
}
