package model

// Market is one listed trading pair.
type Market struct {
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	BaseCurrency   string  `json:"baseCurrency"`
	QuoteCurrency  string  `json:"quoteCurrency"`
	Price          float64 `json:"price"`
	PriceIncrement float64 `json:"priceIncrement"`
	SizeIncrement  float64 `json:"sizeIncrement"`
}

// MarketAsset is the USD valuation of a coin.
type MarketAsset struct {
	Coin           string
	Price          float64
	PriceIncrement float64
	PricePrecision int32
}

// WalletBalance is one coin of the spot wallet.
type WalletBalance struct {
	Coin     string  `json:"coin"`
	Free     float64 `json:"free"`
	Total    float64 `json:"total"`
	USDValue float64 `json:"usdValue"`
}
