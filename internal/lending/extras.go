package lending

import (
	"math"

	"AutoLend/internal/calculator"
	"AutoLend/internal/config"
	"AutoLend/internal/model"
)

// BalanceExtras is a Balance with the economics derived for this cycle.
// APY fields are percentages.
type BalanceExtras struct {
	model.Balance

	Rate        float64 // target hourly rate
	MarketRate  float64
	Discount    float64
	InvestRatio float64
	Price       float64

	Available    float64 // lendable not yet offered
	AvailableUSD float64
	LendableUSD  float64

	HPY       float64
	APY       float64
	OfferAPY  float64
	MarketAPY float64
	DeltaAPY  float64
}

// ComputeExtras derives the target rate and valuation of b. A fixed rate in
// settings wins over the discounted market estimate.
func ComputeExtras(b model.Balance, rates []model.Rate, asset model.MarketAsset, settings config.AssetSettings) BalanceExtras {
	var marketRate float64
	if r, ok := model.FindRate(rates, b.Coin); ok {
		marketRate = r.Estimate
	}

	rate := calculator.ApplyRateDiscount(marketRate, settings.Discount)
	if settings.Rate != nil {
		rate = calculator.HPYFromAPYPercent(*settings.Rate)
	}

	available := math.Max(b.Lendable-b.Offered, 0)
	x := BalanceExtras{
		Balance:      b,
		Rate:         rate,
		MarketRate:   marketRate,
		Discount:     settings.Discount,
		InvestRatio:  settings.InvestRatio,
		Price:        asset.Price,
		Available:    available,
		AvailableUSD: available * asset.Price,
		LendableUSD:  b.Lendable * asset.Price,
		HPY:          rate,
		APY:          calculator.APYPercent(rate),
		OfferAPY:     calculator.APYPercent(b.MinRate),
		MarketAPY:    calculator.APYPercent(marketRate),
	}
	x.DeltaAPY = x.APY - x.OfferAPY
	return x
}

// NeedsRenewal reports whether the active offer drifted from the target APY
// by more than tolerance percentage points, compared at two decimals.
func (x BalanceExtras) NeedsRenewal(tolerance float64) bool {
	if x.Offered <= 0 {
		return false
	}
	return math.Abs(calculator.RoundTo(x.APY, 2)-calculator.RoundTo(x.OfferAPY, 2)) > tolerance
}

// OfferSize is the amount to offer, rounded up to precision decimals.
func (x BalanceExtras) OfferSize(precision int32) float64 {
	return calculator.PercentOfUp(x.Lendable, x.InvestRatio, precision)
}
