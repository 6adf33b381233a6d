// Package market resolves coins to their USD valuation from the exchange market listing.
package market

import (
	"errors"
	"fmt"

	"AutoLend/internal/calculator"
	"AutoLend/internal/model"
)

// FiatPriceIncrement is the increment given to synthesized fiat assets.
const FiatPriceIncrement = 0.0001

// ErrNotFound is returned when a coin has no market quoted in a fiat asset.
var ErrNotFound = errors.New("market not found")

// Valuator prices coins in USD using markets quoted in one of the fiat assets.
type Valuator struct {
	fiat map[string]struct{}
}

// NewValuator creates a Valuator treating fiatAssets as unit-priced.
func NewValuator(fiatAssets []string) *Valuator {
	fiat := make(map[string]struct{}, len(fiatAssets))
	for _, c := range fiatAssets {
		fiat[c] = struct{}{}
	}
	return &Valuator{fiat: fiat}
}

// IsFiat reports whether coin is valued at 1 USD.
func (v *Valuator) IsFiat(coin string) bool {
	_, ok := v.fiat[coin]
	return ok
}

// Resolve returns the USD price and precision of coin.
func (v *Valuator) Resolve(markets []model.Market, coin string) (model.MarketAsset, error) {
	if v.IsFiat(coin) {
		return model.MarketAsset{
			Coin:           coin,
			Price:          1,
			PriceIncrement: FiatPriceIncrement,
			PricePrecision: calculator.CountDecimals(FiatPriceIncrement),
		}, nil
	}
	for _, m := range markets {
		if m.BaseCurrency != coin || !v.IsFiat(m.QuoteCurrency) {
			continue
		}
		return model.MarketAsset{
			Coin:           coin,
			Price:          m.Price,
			PriceIncrement: m.PriceIncrement,
			PricePrecision: calculator.CountDecimals(m.PriceIncrement),
		}, nil
	}
	return model.MarketAsset{}, fmt.Errorf("%w: no fiat-quoted market for %s", ErrNotFound, coin)
}

// Price is a shortcut for Resolve(...).Price.
func (v *Valuator) Price(markets []model.Market, coin string) (float64, error) {
	asset, err := v.Resolve(markets, coin)
	if err != nil {
		return 0, err
	}
	return asset.Price, nil
}
