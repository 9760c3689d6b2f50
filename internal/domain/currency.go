package domain

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencyCode is an upper-case ISO 4217 code.
type CurrencyCode string

// ParseCurrency normalizes user input such as "eur" into a CurrencyCode.
func ParseCurrency(s string) CurrencyCode {
	return CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
}

// RateTable maps currency codes to multipliers relative to the base currency.
// It is immutable once built.
type RateTable struct {
	base  CurrencyCode
	rates map[CurrencyCode]float64
}

// NewRateTable copies rates and validates them: every rate must be positive
// and the base currency must be present with a rate of exactly 1.
func NewRateTable(base CurrencyCode, rates map[CurrencyCode]float64) (*RateTable, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("%w: no rates", ErrInvalidRateTable)
	}
	r, ok := rates[base]
	if !ok {
		return nil, fmt.Errorf("%w: base currency %s missing", ErrInvalidRateTable, base)
	}
	if r != 1.0 {
		return nil, fmt.Errorf("%w: base currency %s has rate %v", ErrInvalidRateTable, base, r)
	}

	copied := make(map[CurrencyCode]float64, len(rates))
	for code, rate := range rates {
		if !(rate > 0) || math.IsInf(rate, 1) {
			return nil, fmt.Errorf("%w: rate for %s must be positive and finite, got %v", ErrInvalidRateTable, code, rate)
		}
		copied[code] = rate
	}
	return &RateTable{base: base, rates: copied}, nil
}

func (t *RateTable) Base() CurrencyCode { return t.base }

// Rate returns the multiplier for code.
func (t *RateTable) Rate(code CurrencyCode) (float64, error) {
	r, ok := t.rates[code]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCurrency, code)
	}
	return r, nil
}

func (t *RateTable) Has(code CurrencyCode) bool {
	_, ok := t.rates[code]
	return ok
}

// Codes returns the currencies in the table, sorted.
func (t *RateTable) Codes() []CurrencyCode {
	codes := make([]CurrencyCode, 0, len(t.rates))
	for c := range t.rates {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// CurrencyInfo is display metadata for a currency.
type CurrencyInfo struct {
	Code     CurrencyCode `json:"code"`
	Symbol   string       `json:"symbol"`
	Name     string       `json:"name"`
	Decimals int32        `json:"decimals"`
}

var currencies = map[CurrencyCode]CurrencyInfo{
	"USD": {Code: "USD", Symbol: "$", Name: "US Dollar", Decimals: 2},
	"EUR": {Code: "EUR", Symbol: "€", Name: "Euro", Decimals: 2},
	"GBP": {Code: "GBP", Symbol: "£", Name: "British Pound", Decimals: 2},
	"INR": {Code: "INR", Symbol: "₹", Name: "Indian Rupee", Decimals: 2},
	"AED": {Code: "AED", Symbol: "د.إ", Name: "UAE Dirham", Decimals: 2},
	"JPY": {Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Decimals: 0},
}

// LookupCurrency returns metadata for code. Codes without registered metadata
// get the code itself as symbol and two decimals.
func LookupCurrency(code CurrencyCode) CurrencyInfo {
	if info, ok := currencies[code]; ok {
		return info
	}
	return CurrencyInfo{Code: code, Symbol: string(code), Name: string(code), Decimals: 2}
}

// Format renders amount with the currency symbol, rounded to the currency's
// decimals. Prices below one unit keep up to 8 decimals so small-cap assets
// do not collapse to zero. Non-finite amounts render as NotAvailable.
func (c CurrencyInfo) Format(amount float64) string {
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return NotAvailable
	}
	d := decimal.NewFromFloat(amount)
	places := c.Decimals
	if d.Abs().LessThan(decimal.NewFromInt(1)) && !d.IsZero() {
		places = 8
	}
	return c.Symbol + d.StringFixed(places)
}

// NormalizedPrice is a price projected into a display currency. Available is
// false when the currency is not in the rate table or the conversion
// overflows; renderers show Formatted
// ("N/A") instead of a zero amount.
type NormalizedPrice struct {
	AssetID   AssetID      `json:"asset_id"`
	Currency  CurrencyCode `json:"currency"`
	Amount    float64      `json:"amount"`
	Available bool         `json:"available"`
	Formatted string       `json:"formatted"`
}

// NotAvailable is the rendering of an unavailable price.
const NotAvailable = "N/A"

// Unavailable builds the sentinel for id in currency.
func Unavailable(id AssetID, currency CurrencyCode) NormalizedPrice {
	return NormalizedPrice{AssetID: id, Currency: currency, Formatted: NotAvailable}
}
