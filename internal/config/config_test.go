package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/upsbridge/internal/config"
)

// unsetenv clears key for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "LOG_LEVEL", "UPS_SANDBOX", "UPS_TIMEOUT", "UPS_SHIPPER_COUNTRY", "MOCK_CARRIERS", "UPS_LEGACY_TRANSIT_WEIGHT"} {
		unsetenv(t, key)
	}

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.UPSSandbox)
	assert.Equal(t, 30*time.Second, cfg.UPSTimeout)
	assert.Equal(t, "US", cfg.UPSShipperCountry)
	assert.False(t, cfg.UPSLegacyTransitWeight)
	assert.Empty(t, cfg.MockCarriers)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("UPS_CLIENT_ID", "client")
	t.Setenv("UPS_SANDBOX", "true")
	t.Setenv("UPS_TIMEOUT", "5s")
	t.Setenv("UPS_SHIPPER_NAME", "Acme Chargers")
	t.Setenv("UPS_SHIPPER_ADDRESS_LINES", "500 Brickell Ave,Suite 9")
	t.Setenv("UPS_SHIPPER_CITY", "Miami")
	t.Setenv("UPS_SHIPPER_STATE", "FL")
	t.Setenv("UPS_SHIPPER_ZIP", "33131")
	t.Setenv("MOCK_CARRIERS", "alpha,beta")

	cfg, err := config.Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "client", cfg.UPSClientID)
	assert.True(t, cfg.UPSSandbox)
	assert.Equal(t, 5*time.Second, cfg.UPSTimeout)
	assert.Equal(t, []string{"alpha", "beta"}, cfg.MockCarriers)

	origin := cfg.ShipperAddress()
	assert.Equal(t, "Acme Chargers", origin.Name)
	assert.Equal(t, []string{"500 Brickell Ave", "Suite 9"}, origin.AddressLines)
	assert.Equal(t, "FL", origin.StateProvince)
	assert.Equal(t, "33131", origin.PostalCode)
}

func TestLoad_DotEnv(t *testing.T) {
	unsetenv(t, "UPS_CUSTOMER_NAME")
	t.Setenv("UPS_ACCOUNT_NUMBER", "FROM_ENV")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("UPS_CUSTOMER_NAME=Acme\nUPS_ACCOUNT_NUMBER=FROM_FILE\n"), 0o600))

	cfg, err := config.Load(path)

	require.NoError(t, err)
	assert.Equal(t, "Acme", cfg.UPSCustomerName)
	assert.Equal(t, "FROM_ENV", cfg.UPSAccountNumber, "environment wins over dotenv")
}

func TestLoad_MissingDotEnv(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.NoError(t, err)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("UPS_TIMEOUT", "soon")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestConfig_Attributes(t *testing.T) {
	cfg := &config.Config{ServiceName: "upsbridge", Version: "1.2.3", UPSEnabled: true}

	attrs := cfg.Attributes()

	values := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		values[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, "upsbridge", values["service.name"])
	assert.Equal(t, "1.2.3", values["service.version"])
	assert.Equal(t, true, values["ups.enabled"])
}
