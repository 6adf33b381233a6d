package exchange

import (
	"context"
	"sync"

	"AutoLend/internal/model"
)

// MockClient is an in-memory exchange for development and testing.
// Submitted offers are applied to Balances so follow-up reads see them.
type MockClient struct {
	mu sync.Mutex

	Markets  []model.Market
	Wallet   []model.WalletBalance
	Rates    []model.Rate
	Balances []model.Balance
	History  []model.HistoryRecord

	// Per-operation failures.
	MarketsErr  error
	BalancesErr error
	HistoryErr  error
	SubmitErr   error
	QuoteErr    error
	AcceptErr   error

	Offers        []model.Offer
	QuoteRequests []model.QuoteRequest
	QuoteLookups  []int64
	Accepted      []int64
	BalanceReads  int

	nextQuoteID int64
}

func (m *MockClient) Name() string { return "mock" }

func (m *MockClient) GetMarkets(context.Context) ([]model.Market, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.MarketsErr != nil {
		return nil, m.MarketsErr
	}
	return append([]model.Market(nil), m.Markets...), nil
}

func (m *MockClient) GetWalletBalances(context.Context) ([]model.WalletBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.WalletBalance(nil), m.Wallet...), nil
}

func (m *MockClient) GetLendingRates(context.Context) ([]model.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Rate(nil), m.Rates...), nil
}

func (m *MockClient) GetLendingBalances(context.Context) ([]model.Balance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BalanceReads++
	if m.BalancesErr != nil {
		return nil, m.BalancesErr
	}
	return append([]model.Balance(nil), m.Balances...), nil
}

func (m *MockClient) GetLendingHistory(context.Context) ([]model.HistoryRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HistoryErr != nil {
		return nil, m.HistoryErr
	}
	return append([]model.HistoryRecord(nil), m.History...), nil
}

func (m *MockClient) SubmitLendingOffer(_ context.Context, offer model.Offer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Offers = append(m.Offers, offer)
	if m.SubmitErr != nil {
		return m.SubmitErr
	}
	for i := range m.Balances {
		if m.Balances[i].Coin == offer.Coin {
			m.Balances[i].Offered = offer.Size
			m.Balances[i].MinRate = offer.Rate
		}
	}
	return nil
}

func (m *MockClient) RequestQuote(_ context.Context, req model.QuoteRequest) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuoteRequests = append(m.QuoteRequests, req)
	if m.QuoteErr != nil {
		return 0, m.QuoteErr
	}
	m.nextQuoteID++
	return m.nextQuoteID, nil
}

func (m *MockClient) GetQuote(_ context.Context, id int64) (model.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuoteLookups = append(m.QuoteLookups, id)
	if id <= 0 || id > int64(len(m.QuoteRequests)) {
		return model.Quote{}, &APIError{Status: 404, Message: "quote not found", Path: "/otc/quotes"}
	}
	req := m.QuoteRequests[id-1]
	return model.Quote{ID: id, BaseCoin: req.FromCoin, QuoteCoin: req.ToCoin, Side: "sell", Proceeds: req.Size}, nil
}

func (m *MockClient) AcceptQuote(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Accepted = append(m.Accepted, id)
	return m.AcceptErr
}

// SubmittedOffers returns offers with a positive size.
func (m *MockClient) SubmittedOffers() []model.Offer {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Offer
	for _, o := range m.Offers {
		if !o.IsCancel() {
			out = append(out, o)
		}
	}
	return out
}

// Cancellations returns the coins whose offer was cancelled, in order.
func (m *MockClient) Cancellations() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, o := range m.Offers {
		if o.IsCancel() {
			out = append(out, o.Coin)
		}
	}
	return out
}
