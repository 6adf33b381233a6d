// Package lending decides, submits and renews lending offers.
package lending

import (
	"context"
	"time"

	"go.uber.org/zap"

	"AutoLend/internal/calculator"
	"AutoLend/internal/exchange"
	"AutoLend/internal/metrics"
	"AutoLend/internal/model"
)

// Sleeper pauses for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// OfferResult is the outcome of one offer call. A failed call never aborts
// the cycle; callers inspect Err and move on.
type OfferResult struct {
	Offer model.Offer
	Err   error

	// PauseErr is set when the context ended during the pause after a cancel.
	PauseErr error
}

// OK reports whether the exchange accepted the offer.
func (r OfferResult) OK() bool { return r.Err == nil }

// OfferManager submits and cancels lending offers.
type OfferManager struct {
	client           exchange.Client
	pauseAfterCancel time.Duration
	sleep            Sleeper
	logger           *zap.Logger
}

// NewOfferManager creates an OfferManager.
func NewOfferManager(client exchange.Client, pauseAfterCancel time.Duration, logger *zap.Logger) *OfferManager {
	return &OfferManager{
		client:           client,
		pauseAfterCancel: pauseAfterCancel,
		sleep:            Sleep,
		logger:           logger,
	}
}

// Submit posts offer. Failures are logged with the payload and returned in the result.
func (m *OfferManager) Submit(ctx context.Context, offer model.Offer) OfferResult {
	action := "add"
	if offer.IsCancel() {
		action = "cancel"
	}

	err := m.client.SubmitLendingOffer(ctx, offer)
	metrics.OffersTotal.WithLabelValues(offer.Coin, action, metrics.Result(err)).Inc()
	if err != nil {
		m.logger.Error("lending offer failed",
			zap.String("action", action),
			zap.String("coin", offer.Coin),
			zap.Float64("size", offer.Size),
			zap.Float64("rate", offer.Rate),
			zap.Error(err),
		)
		return OfferResult{Offer: offer, Err: err}
	}

	if offer.IsCancel() {
		m.logger.Info("cancel lending", zap.String("coin", offer.Coin))
	} else {
		m.logger.Info("add lending",
			zap.String("coin", offer.Coin),
			zap.Float64("size", offer.Size),
			zap.Float64("apy", calculator.RoundTo(calculator.APYPercent(offer.Rate), 2)),
		)
	}
	return OfferResult{Offer: offer}
}

// Cancel withdraws the active offer of coin and waits for the exchange to apply it.
func (m *OfferManager) Cancel(ctx context.Context, coin string) OfferResult {
	res := m.Submit(ctx, model.Offer{Coin: coin})
	res.PauseErr = m.sleep(ctx, m.pauseAfterCancel)
	return res
}
