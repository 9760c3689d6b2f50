package usecase

import (
	"math"

	"github.com/vitos/crypto_dashboard/internal/domain"
)

// Normalizer projects base currency prices into display currencies. It holds
// no state besides the immutable rate table, so identical inputs always give
// identical outputs.
type Normalizer struct {
	rates *domain.RateTable
}

func NewNormalizer(rates *domain.RateTable) *Normalizer {
	return &Normalizer{rates: rates}
}

func (n *Normalizer) Rates() *domain.RateTable { return n.rates }

// Normalize converts entry into currency. Currencies missing from the rate
// table and amounts that overflow float64 yield the unavailable sentinel,
// never a zero amount.
func (n *Normalizer) Normalize(entry domain.PriceEntry, currency domain.CurrencyCode) domain.NormalizedPrice {
	rate, err := n.rates.Rate(currency)
	if err != nil {
		return domain.Unavailable(entry.AssetID, currency)
	}

	amount := entry.BasePrice * rate
	if currency == n.rates.Base() {
		amount = entry.BasePrice
	}
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return domain.Unavailable(entry.AssetID, currency)
	}
	return domain.NormalizedPrice{
		AssetID:   entry.AssetID,
		Currency:  currency,
		Amount:    amount,
		Available: true,
		Formatted: domain.LookupCurrency(currency).Format(amount),
	}
}

// NormalizeAll converts entry into every currency of the table, ordered by
// currency code.
func (n *Normalizer) NormalizeAll(entry domain.PriceEntry) []domain.NormalizedPrice {
	codes := n.rates.Codes()
	out := make([]domain.NormalizedPrice, len(codes))
	for i, code := range codes {
		out[i] = n.Normalize(entry, code)
	}
	return out
}
