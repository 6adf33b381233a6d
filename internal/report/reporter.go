// Package report summarizes lending positions and accumulated proceeds.
package report

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"AutoLend/internal/calculator"
	"AutoLend/internal/exchange"
	"AutoLend/internal/market"
	"AutoLend/internal/metrics"
	"AutoLend/internal/model"
)

// Row is the report line of one coin.
type Row struct {
	Coin        string
	Lendable    float64
	Locked      float64
	Offered     float64
	OfferAPY    float64 // percent
	LockedRatio float64 // percent of lendable
	LentRatio   float64 // percent of locked
	ValueUSD    float64
}

// Summary is the outcome of one report run.
type Summary struct {
	GeneratedAt   time.Time
	Rows          []Row
	TotalValueUSD float64
	WalletUSD     float64

	TotalProfitUSD   float64
	ProfitPerDayUSD  float64
	ProfitPerYearUSD float64
	AverageAPY       float64 // percent, yearly profit over locked value

	// HistoryInsufficient is set when fewer than two distinct settlement
	// times exist; rate fields are left at zero.
	HistoryInsufficient bool
	HistoryFrom         time.Time
	HistoryTo           time.Time
}

// Reporter builds Summaries from the exchange state.
type Reporter struct {
	client   exchange.Client
	valuator *market.Valuator
	now      func() time.Time
	logger   *zap.Logger
}

// NewReporter creates a Reporter.
func NewReporter(client exchange.Client, valuator *market.Valuator, logger *zap.Logger) *Reporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reporter{client: client, valuator: valuator, now: time.Now, logger: logger.Named("report")}
}

// Build refetches balances and history and computes the summary.
// A coin without a fiat-quoted market fails the whole report.
func (r *Reporter) Build(ctx context.Context) (*Summary, error) {
	markets, err := r.client.GetMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}
	balances, err := r.client.GetLendingBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("get lending balances: %w", err)
	}
	history, err := r.client.GetLendingHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("get lending history: %w", err)
	}

	s := &Summary{GeneratedAt: r.now()}
	if err := r.positions(s, markets, balances); err != nil {
		return nil, err
	}
	if err := r.profit(s, markets, history); err != nil {
		return nil, err
	}

	wallet, err := r.client.GetWalletBalances(ctx)
	if err != nil {
		r.logger.Warn("wallet balances unavailable", zap.Error(err))
	}
	for _, w := range wallet {
		s.WalletUSD += w.USDValue
	}
	s.WalletUSD = calculator.RoundTo(s.WalletUSD, 2)

	metrics.PortfolioValueUSD.Set(s.TotalValueUSD)
	metrics.TotalProfitUSD.Set(s.TotalProfitUSD)

	r.logger.Info("lending report",
		zap.Int("coins", len(s.Rows)),
		zap.Float64("value_usd", s.TotalValueUSD),
		zap.Float64("profit_usd", s.TotalProfitUSD),
		zap.Float64("profit_per_day_usd", s.ProfitPerDayUSD),
		zap.Float64("avg_apy", s.AverageAPY),
		zap.Bool("history_insufficient", s.HistoryInsufficient),
	)
	return s, nil
}

func (r *Reporter) positions(s *Summary, markets []model.Market, balances []model.Balance) error {
	var total float64
	for _, b := range balances {
		if b.Lendable == 0 && b.Locked == 0 && b.Offered == 0 {
			continue
		}
		asset, err := r.valuator.Resolve(markets, b.Coin)
		if err != nil {
			return err
		}
		value := b.Locked * asset.Price
		total += value

		precision := asset.PricePrecision
		if precision < 2 {
			precision = 2
		}
		s.Rows = append(s.Rows, Row{
			Coin:        b.Coin,
			Lendable:    calculator.RoundTo(b.Lendable, precision),
			Locked:      calculator.RoundTo(b.Locked, precision),
			Offered:     calculator.RoundTo(b.Offered, precision),
			OfferAPY:    calculator.RoundTo(calculator.APYPercent(b.MinRate), 2),
			LockedRatio: calculator.RoundTo(calculator.Ratio(b.Locked, b.Lendable), 2),
			LentRatio:   calculator.RoundTo(calculator.Ratio(b.Locked-b.Offered, b.Locked), 2),
			ValueUSD:    calculator.RoundTo(value, 2),
		})
	}
	sort.Slice(s.Rows, func(i, j int) bool { return s.Rows[i].ValueUSD > s.Rows[j].ValueUSD })
	s.TotalValueUSD = calculator.RoundTo(total, 2)
	return nil
}

func (r *Reporter) profit(s *Summary, markets []model.Market, history []model.HistoryRecord) error {
	var profit float64
	for i, h := range history {
		price, err := r.valuator.Price(markets, h.Coin)
		if err != nil {
			return err
		}
		profit += h.Proceeds * price

		if i == 0 || h.Time.Before(s.HistoryFrom) {
			s.HistoryFrom = h.Time
		}
		if i == 0 || h.Time.After(s.HistoryTo) {
			s.HistoryTo = h.Time
		}
	}
	s.TotalProfitUSD = calculator.RoundTo(profit, 2)

	spanMs := s.HistoryTo.Sub(s.HistoryFrom).Milliseconds()
	if spanMs <= 0 {
		s.HistoryInsufficient = true
		return nil
	}
	perDay := profit * calculator.MsPerDay / float64(spanMs)
	s.ProfitPerDayUSD = calculator.RoundTo(perDay, 2)
	s.ProfitPerYearUSD = calculator.RoundTo(perDay*calculator.DaysPerYear, 2)
	if total := s.TotalValueUSD; total > 0 {
		s.AverageAPY = calculator.RoundTo(perDay*calculator.DaysPerYear*100/total, 2)
	}
	return nil
}
