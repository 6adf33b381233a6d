package lending

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"AutoLend/internal/config"
	"AutoLend/internal/model"
)

func TestComputeExtras(t *testing.T) {
	b := model.Balance{Coin: "BTC", Lendable: 2, Offered: 0.5, MinRate: 0.00001}
	rates := []model.Rate{{Coin: "BTC", Estimate: 0.00002}}
	asset := model.MarketAsset{Coin: "BTC", Price: 100}

	x := ComputeExtras(b, rates, asset, config.AssetSettings{Discount: 50, InvestRatio: 100})
	assert.Equal(t, 0.00002, x.MarketRate)
	assert.InDelta(t, 0.00001, x.Rate, 1e-18)
	assert.Equal(t, 1.5, x.Available)
	assert.Equal(t, 150.0, x.AvailableUSD)
	assert.Equal(t, 200.0, x.LendableUSD)
	assert.InDelta(t, x.OfferAPY, x.APY, 1e-12)
	assert.InDelta(t, 2*x.APY, x.MarketAPY, 1e-12)
	assert.InDelta(t, 0, x.DeltaAPY, 1e-12)
}

func TestComputeExtras_NoRateAndOverOffered(t *testing.T) {
	b := model.Balance{Coin: "ETH", Lendable: 1, Offered: 3}
	x := ComputeExtras(b, nil, model.MarketAsset{Price: 10}, config.AssetSettings{InvestRatio: 100})
	assert.Zero(t, x.Rate)
	assert.Zero(t, x.Available, "available never goes negative")
}

func TestNeedsRenewal(t *testing.T) {
	tests := []struct {
		name     string
		offered  float64
		apy      float64
		offerAPY float64
		want     bool
	}{
		{"within tolerance", 1, 5.05, 5.00, false},
		{"beyond tolerance", 1, 5.20, 5.00, true},
		{"below offer beyond tolerance", 1, 4.80, 5.00, true},
		{"rounding hides noise", 1, 5.1049, 5.00, false},
		{"no active offer", 0, 9, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := BalanceExtras{Balance: model.Balance{Offered: tt.offered}, APY: tt.apy, OfferAPY: tt.offerAPY}
			assert.Equal(t, tt.want, x.NeedsRenewal(0.1))
		})
	}
}

func TestOfferSize(t *testing.T) {
	x := BalanceExtras{Balance: model.Balance{Lendable: 3}, InvestRatio: 33}
	assert.Equal(t, 0.99, x.OfferSize(8))
	assert.Equal(t, 1.0, x.OfferSize(0))
}

func TestBestTarget(t *testing.T) {
	rates := []model.Rate{{Coin: "USDT", Estimate: 0.00002}, {Coin: "USD", Estimate: 0.00002}, {Coin: "BTC", Estimate: 0.00003}}
	assert.Equal(t, "USDT", BestTarget("USDT", []string{"USD"}, rates), "ties keep the current coin")
	assert.Equal(t, "BTC", BestTarget("USDT", []string{"USD", "BTC"}, rates))
	assert.Equal(t, "USDT", BestTarget("USDT", []string{"SOL"}, rates), "targets without a rate are ignored")
	assert.Equal(t, "USD", BestTarget("EUR", []string{"USD"}, rates))
}

func TestPendingUnlockSet(t *testing.T) {
	p := NewPendingUnlockSet()
	assert.True(t, p.Add("USDT"))
	assert.False(t, p.Add("USDT"))
	assert.True(t, p.Add("BTC"))
	assert.Equal(t, []string{"BTC", "USDT"}, p.List())
	assert.True(t, p.Has("BTC"))
	assert.True(t, p.Remove("BTC"))
	assert.False(t, p.Remove("BTC"))
	assert.False(t, p.Has("BTC"))
}
