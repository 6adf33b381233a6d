package lending

import (
	"context"

	"go.uber.org/zap"

	"AutoLend/internal/config"
	"AutoLend/internal/exchange"
	"AutoLend/internal/market"
	"AutoLend/internal/metrics"
	"AutoLend/internal/model"
)

// Rebalancer converts coins into configured targets that lend at a better rate.
// A coin whose capital is locked in a loan is parked in the pending set until it unlocks.
type Rebalancer struct {
	client   exchange.Client
	offers   *OfferManager
	pending  *PendingUnlockSet
	valuator *market.Valuator
	cfg      *config.Config
	logger   *zap.Logger
}

// NewRebalancer creates a Rebalancer.
func NewRebalancer(client exchange.Client, offers *OfferManager, pending *PendingUnlockSet,
	valuator *market.Valuator, cfg *config.Config, logger *zap.Logger) *Rebalancer {
	return &Rebalancer{
		client:   client,
		offers:   offers,
		pending:  pending,
		valuator: valuator,
		cfg:      cfg,
		logger:   logger,
	}
}

// BestTarget returns the coin among coin and targets with the strictly highest
// estimate. Ties and targets without a rate keep coin.
func BestTarget(coin string, targets []string, rates []model.Rate) string {
	best := coin
	var bestRate float64
	if r, ok := model.FindRate(rates, coin); ok {
		bestRate = r.Estimate
	}
	for _, t := range targets {
		r, ok := model.FindRate(rates, t)
		if !ok {
			continue
		}
		if r.Estimate > bestRate {
			best, bestRate = t, r.Estimate
		}
	}
	return best
}

// Run processes every lendable balance with conversion targets and reports
// whether any conversion went through, in which case balances are stale.
func (r *Rebalancer) Run(ctx context.Context, balances []model.Balance, rates []model.Rate, markets []model.Market) (bool, error) {
	converted := false
	for _, b := range balances {
		targets := r.cfg.Asset(b.Coin).Convert
		if b.Lendable <= 0 || len(targets) == 0 {
			continue
		}

		best := BestTarget(b.Coin, targets, rates)
		if best == b.Coin {
			if r.pending.Remove(b.Coin) {
				r.logger.Info("pending conversion dropped, coin is already the best target", zap.String("coin", b.Coin))
			}
			continue
		}

		if res := r.offers.Cancel(ctx, b.Coin); res.PauseErr != nil {
			return converted, res.PauseErr
		}

		if b.Locked > 0 {
			if r.pending.Add(b.Coin) {
				r.logger.Warn("conversion deferred until capital unlocks",
					zap.String("from", b.Coin),
					zap.String("to", best),
					zap.Float64("locked", b.Locked),
				)
			}
			continue
		}

		price, err := r.valuator.Price(markets, b.Coin)
		if err != nil {
			return converted, err
		}
		if r.convert(ctx, b, best, price) {
			converted = true
			r.pending.Remove(b.Coin)
		}
	}
	return converted, nil
}

// convert runs the quote, status and accept steps. Failures are logged and the
// coin is retried on a later cycle.
func (r *Rebalancer) convert(ctx context.Context, b model.Balance, to string, price float64) bool {
	log := r.logger.With(zap.String("from", b.Coin), zap.String("to", to), zap.Float64("size", b.Lendable))
	fail := func(step string, err error) bool {
		metrics.ConversionsTotal.WithLabelValues(b.Coin, to, "error").Inc()
		log.Error("conversion failed", zap.String("step", step), zap.Error(err))
		return false
	}

	id, err := r.client.RequestQuote(ctx, model.QuoteRequest{FromCoin: b.Coin, ToCoin: to, Size: b.Lendable})
	if err != nil {
		return fail("quote", err)
	}
	quote, err := r.client.GetQuote(ctx, id)
	if err != nil {
		return fail("status", err)
	}
	log.Debug("conversion quote", zap.Int64("quote_id", id), zap.Float64("price", quote.Price), zap.Float64("proceeds", quote.Proceeds))
	if err := r.client.AcceptQuote(ctx, id); err != nil {
		return fail("accept", err)
	}

	metrics.ConversionsTotal.WithLabelValues(b.Coin, to, "ok").Inc()
	log.Info("coin converted", zap.Int64("quote_id", id), zap.Float64("value_usd", b.Lendable*price))
	return true
}
