package domain

import "context"

// PriceSource fetches a batch of base currency prices.
//
// Implementations return a *FetchError for every failure (timeout, transport
// error, non-2xx status, undecodable body) so callers can substitute the
// fallback dataset. A successful result holds an entry for every requested id.
type PriceSource interface {
	Name() string
	FetchPrices(ctx context.Context, ids []AssetID) (map[AssetID]PriceEntry, error)
}
