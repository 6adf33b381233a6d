package model

import "time"

// Balance is the lending view of one coin, as reported by the exchange each cycle.
type Balance struct {
	Coin     string  `json:"coin"`
	Lendable float64 `json:"lendable"`
	Locked   float64 `json:"locked"`
	Offered  float64 `json:"offered"`
	MinRate  float64 `json:"minRate"` // hourly rate of the active offer
}

// Rate is the exchange's estimated hourly lending rate for a coin.
type Rate struct {
	Coin     string  `json:"coin"`
	Estimate float64 `json:"estimate"`
	Previous float64 `json:"previous"`
}

// Offer is a lending offer submission. Size 0 cancels the active offer.
type Offer struct {
	Coin string  `json:"coin"`
	Size float64 `json:"size"`
	Rate float64 `json:"rate"`
}

// IsCancel reports whether the offer withdraws the active offer.
func (o Offer) IsCancel() bool { return o.Size == 0 }

// HistoryRecord is a settled lending payment.
type HistoryRecord struct {
	Coin     string    `json:"coin"`
	Rate     float64   `json:"rate"`
	Size     float64   `json:"size"`
	Proceeds float64   `json:"proceeds"`
	Time     time.Time `json:"time"`
}

// FindBalance returns the balance for coin, if present.
func FindBalance(balances []Balance, coin string) (Balance, bool) {
	for _, b := range balances {
		if b.Coin == coin {
			return b, true
		}
	}
	return Balance{}, false
}

// FindRate returns the rate estimate for coin, if present.
func FindRate(rates []Rate, coin string) (Rate, bool) {
	for _, r := range rates {
		if r.Coin == coin {
			return r, true
		}
	}
	return Rate{}, false
}
