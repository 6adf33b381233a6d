package model

// QuoteRequest asks the exchange to price a conversion of Size FromCoin into ToCoin.
type QuoteRequest struct {
	FromCoin string  `json:"fromCoin"`
	ToCoin   string  `json:"toCoin"`
	Size     float64 `json:"size"`
}

// Quote is the exchange's view of a conversion quote.
type Quote struct {
	ID        int64   `json:"id"`
	BaseCoin  string  `json:"baseCoin"`
	QuoteCoin string  `json:"quoteCoin"`
	Side      string  `json:"side"`
	Price     float64 `json:"price"`
	Cost      float64 `json:"cost"`
	Proceeds  float64 `json:"proceeds"`
	Expired   bool    `json:"expired"`
	Filled    bool    `json:"filled"`
}
