package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateTable(t *testing.T) {
	src := map[CurrencyCode]float64{"USD": 1, "EUR": 0.9}
	table, err := NewRateTable("USD", src)
	require.NoError(t, err)

	// Mutating the input must not leak into the table.
	src["EUR"] = 2
	r, err := table.Rate("EUR")
	require.NoError(t, err)
	assert.Equal(t, 0.9, r)
	assert.Equal(t, []CurrencyCode{"EUR", "USD"}, table.Codes())

	_, err = table.Rate("JPY")
	assert.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestNewRateTable_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		base  CurrencyCode
		rates map[CurrencyCode]float64
	}{
		{"empty", "USD", nil},
		{"base missing", "USD", map[CurrencyCode]float64{"EUR": 1}},
		{"base not one", "USD", map[CurrencyCode]float64{"USD": 1.1}},
		{"zero rate", "USD", map[CurrencyCode]float64{"USD": 1, "EUR": 0}},
		{"negative rate", "USD", map[CurrencyCode]float64{"USD": 1, "EUR": -0.5}},
		{"nan rate", "USD", map[CurrencyCode]float64{"USD": 1, "EUR": math.NaN()}},
		{"infinite rate", "USD", map[CurrencyCode]float64{"USD": 1, "EUR": math.Inf(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRateTable(tt.base, tt.rates)
			assert.ErrorIs(t, err, ErrInvalidRateTable)
		})
	}
}

func TestCurrencyInfo_Format(t *testing.T) {
	assert.Equal(t, "$90.00", LookupCurrency("USD").Format(90))
	assert.Equal(t, "€1234.57", LookupCurrency("EUR").Format(1234.5678))
	assert.Equal(t, "₹0.00089123", LookupCurrency("INR").Format(0.00089123))
	assert.Equal(t, "¥1500", LookupCurrency("JPY").Format(1499.6))
	assert.Equal(t, "CHF1.50", LookupCurrency("CHF").Format(1.5))

	assert.Equal(t, NotAvailable, LookupCurrency("INR").Format(math.Inf(1)))
	assert.Equal(t, NotAvailable, LookupCurrency("USD").Format(math.Inf(-1)))
	assert.Equal(t, NotAvailable, LookupCurrency("EUR").Format(math.NaN()))
}

func TestParseCurrency(t *testing.T) {
	assert.Equal(t, CurrencyCode("EUR"), ParseCurrency(" eur "))
}

func TestTimeRange_Window(t *testing.T) {
	tr, err := ParseTimeRange("medium")
	require.NoError(t, err)
	assert.Equal(t, 60, tr.Window().Capacity)

	_, err = ParseTimeRange("decade")
	assert.Error(t, err)
	assert.Equal(t, RangeShort.Window(), TimeRange("bogus").Window())
}

func TestFetchError(t *testing.T) {
	err := &FetchError{Kind: ErrNetworkFailure, Status: 503, Err: assert.AnError}
	assert.ErrorIs(t, err, ErrNetworkFailure)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrNetworkTimeout)
	assert.Contains(t, err.Error(), "status 503")
	assert.Equal(t, "failure", FetchOutcome(err))
	assert.Equal(t, "ok", FetchOutcome(nil))
}
