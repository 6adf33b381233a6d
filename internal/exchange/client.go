// Package exchange is the boundary to the lending exchange.
package exchange

import (
	"context"

	"AutoLend/internal/model"
)

// Client defines the exchange operations the lending bot consumes.
type Client interface {
	GetMarkets(ctx context.Context) ([]model.Market, error)
	GetWalletBalances(ctx context.Context) ([]model.WalletBalance, error)
	GetLendingRates(ctx context.Context) ([]model.Rate, error)
	GetLendingBalances(ctx context.Context) ([]model.Balance, error)
	GetLendingHistory(ctx context.Context) ([]model.HistoryRecord, error)

	// SubmitLendingOffer posts an offer; a zero size cancels the active one.
	SubmitLendingOffer(ctx context.Context, offer model.Offer) error

	RequestQuote(ctx context.Context, req model.QuoteRequest) (int64, error)
	GetQuote(ctx context.Context, id int64) (model.Quote, error)
	AcceptQuote(ctx context.Context, id int64) error

	Name() string
}

var (
	_ Client = (*FTXClient)(nil)
	_ Client = (*MockClient)(nil)
)
