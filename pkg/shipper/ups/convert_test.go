package ups

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMillimetersToInches(t *testing.T) {
	tests := []struct {
		mm   float64
		want string
	}{
		{254, "10"},
		{100, "4"},
		{12.7, "1"},
		{12.6, "0"},
		{0, "0"},
		{609.6, "24"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, millimetersToInches(tt.mm), "mm=%v", tt.mm)
	}
}

func TestGramsToPounds(t *testing.T) {
	tests := []struct {
		g    float64
		want string
	}{
		{5000, "11.02"},
		{453.6, "1.00"},
		{1000, "2.20"},
		{0, "0.00"},
		{100, "0.22"},
		{283.5, "0.63"},
		{56.7, "0.13"},
		{737.1, "1.63"},
		{2551.5, "5.63"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, gramsToPounds(tt.g), "g=%v", tt.g)
	}
}

func TestTransitWeight(t *testing.T) {
	assert.InDelta(t, 11.02, transitWeight(5000, false), 1e-9)
	assert.InDelta(t, 1.0, transitWeight(453.6, false), 1e-9)
	assert.InDelta(t, 0.63, transitWeight(283.5, false), 1e-9)
	assert.Equal(t, 197.0, transitWeight(5000, true))
	assert.Equal(t, 1.0, transitWeight(25.4, true))
}

func TestToCents(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{12.345, 1235},
		{0.125, 13},
		{12.65, 1265},
		{9.99, 999},
		{0, 0},
		{100, 10000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, toCents(tt.amount), "amount=%v", tt.amount)
	}
}

func TestShipDate(t *testing.T) {
	assert.Equal(t, "2024-3-5", shipDate(time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)))
	assert.Equal(t, "2024-12-25", shipDate(time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC)))
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input string
		want  Number
	}{
		{`"12.65"`, "12.65"},
		{`12.65`, "12.65"},
		{`" 3 "`, "3"},
		{`1700000000000`, "1700000000000"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var n Number
		require.NoError(t, json.Unmarshal([]byte(tt.input), &n), tt.input)
		assert.Equal(t, tt.want, n, tt.input)
	}

	var n Number
	assert.Error(t, json.Unmarshal([]byte(`true`), &n))
}

func TestNumber_Parse(t *testing.T) {
	f, err := Number("12.345").Float64()
	require.NoError(t, err)
	assert.Equal(t, 12.345, f)

	f, err = Number("").Float64()
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)

	i, err := Number("14399").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(14399), i)

	i, err = Number("3.9").Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(3), i)

	_, err = Number("abc").Float64()
	assert.Error(t, err)
}

func TestList_UnmarshalJSON(t *testing.T) {
	var single RateResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"RatedShipment": {"Service": {"Code": "03"}, "NegotiatedRateCharges": {"TotalCharge": {"CurrencyCode": "USD", "MonetaryValue": "9.99"}}}
	}`), &single))
	require.Len(t, single.RatedShipment, 1)
	assert.Equal(t, "03", single.RatedShipment[0].Service.Code)
	assert.Equal(t, Number("9.99"), single.RatedShipment[0].NegotiatedRateCharges.TotalCharge.MonetaryValue)

	var many RateResponse
	require.NoError(t, json.Unmarshal([]byte(`{
		"RatedShipment": [{"Service": {"Code": "03"}}, {"Service": {"Code": "02"}}]
	}`), &many))
	require.Len(t, many.RatedShipment, 2)
	assert.Equal(t, "02", many.RatedShipment[1].Service.Code)

	var none RateResponse
	require.NoError(t, json.Unmarshal([]byte(`{"RatedShipment": null}`), &none))
	assert.Empty(t, none.RatedShipment)
}

func TestPackageResults_SingleObject(t *testing.T) {
	var results ShipmentResults
	require.NoError(t, json.Unmarshal([]byte(`{
		"ShipmentIdentificationNumber": "1ZABC",
		"PackageResults": {
			"TrackingNumber": "1ZABC01",
			"ShippingLabel": {"ImageFormat": {"Code": "ZPL"}, "GraphicImage": "XlhB"}
		}
	}`), &results))

	require.Len(t, results.PackageResults, 1)
	assert.Equal(t, "1ZABC01", results.PackageResults[0].TrackingNumber)
	assert.Equal(t, "ZPL", results.PackageResults[0].ShippingLabel.ImageFormat.Code)
}

func TestPackageOmitsUnsetFields(t *testing.T) {
	data, err := json.Marshal(Package{Packaging: &CodeDescription{Code: "02"}})
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "Packaging")
	assert.NotContains(t, raw, "PackagingType")
	assert.NotContains(t, raw, "PackageServiceOptions")
	assert.NotContains(t, raw, "ReferenceNumber")
}
