package lending

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"AutoLend/internal/calculator"
	"AutoLend/internal/config"
	"AutoLend/internal/exchange"
	"AutoLend/internal/market"
	"AutoLend/internal/model"
	"AutoLend/internal/report"
)

// Engine runs one lending cycle: rebalance, then decide per coin, then report.
type Engine struct {
	client     exchange.Client
	cfg        *config.Config
	valuator   *market.Valuator
	offers     *OfferManager
	rebalancer *Rebalancer
	pending    *PendingUnlockSet
	reporter   *report.Reporter
	sleep      Sleeper
	logger     *zap.Logger
}

// NewEngine wires an Engine around client. The pending set lives as long as the Engine.
func NewEngine(client exchange.Client, cfg *config.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("lending")
	valuator := market.NewValuator(cfg.General.FiatAssets)
	offers := NewOfferManager(client, cfg.Tuning.PauseAfterCancel, logger)
	pending := NewPendingUnlockSet()
	return &Engine{
		client:     client,
		cfg:        cfg,
		valuator:   valuator,
		offers:     offers,
		rebalancer: NewRebalancer(client, offers, pending, valuator, cfg, logger.Named("rebalance")),
		pending:    pending,
		reporter:   report.NewReporter(client, valuator, logger),
		sleep:      Sleep,
		logger:     logger,
	}
}

// SetSleeper replaces every pause taken by the engine and its offer manager.
func (e *Engine) SetSleeper(s Sleeper) {
	e.sleep = s
	e.offers.sleep = s
}

// Pending exposes the coins waiting for capital to unlock.
func (e *Engine) Pending() *PendingUnlockSet { return e.pending }

// RunCycle executes one full decision cycle and returns the resulting report.
// Offer failures are logged and skipped; missing market data aborts the cycle.
func (e *Engine) RunCycle(ctx context.Context) (*report.Summary, error) {
	log := e.logger.With(zap.String("cycle", uuid.NewString()))

	rates, err := e.client.GetLendingRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("get lending rates: %w", err)
	}
	balances, err := e.client.GetLendingBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("get lending balances: %w", err)
	}
	markets, err := e.client.GetMarkets(ctx)
	if err != nil {
		return nil, fmt.Errorf("get markets: %w", err)
	}

	if e.cfg.General.AllowCoinConversion {
		converted, err := e.rebalancer.Run(ctx, balances, rates, markets)
		if err != nil {
			return nil, fmt.Errorf("rebalance: %w", err)
		}
		if converted {
			if balances, err = e.client.GetLendingBalances(ctx); err != nil {
				return nil, fmt.Errorf("refresh lending balances: %w", err)
			}
		}
	}

	log.Info("checking lending assets", zap.Int("coins", len(balances)))
	submitted := 0
	for _, b := range balances {
		ok, err := e.decide(ctx, log, b, rates, markets)
		if err != nil {
			return nil, err
		}
		if ok {
			submitted++
		}
	}

	if submitted > 0 {
		if err := e.sleep(ctx, e.cfg.Tuning.PauseAfterSubmit); err != nil {
			return nil, err
		}
	}
	return e.reporter.Build(ctx)
}

// decide handles one coin and reports whether a new offer was accepted.
func (e *Engine) decide(ctx context.Context, log *zap.Logger, b model.Balance, rates []model.Rate, markets []model.Market) (bool, error) {
	if e.pending.Has(b.Coin) {
		log.Debug("skip pending unlock", zap.String("coin", b.Coin))
		return false, nil
	}
	settings := e.cfg.Asset(b.Coin)
	if settings.Ignore {
		return false, nil
	}

	asset, err := e.valuator.Resolve(markets, b.Coin)
	if err != nil {
		return false, err
	}
	x := ComputeExtras(b, rates, asset, settings)

	if x.Lendable > 0 && x.APY < e.cfg.General.APYMin {
		log.Warn("APY too low",
			zap.String("coin", x.Coin),
			zap.Float64("apy", calculator.RoundTo(x.APY, 2)),
			zap.Float64("apy_min", e.cfg.General.APYMin),
		)
		return false, nil
	}

	if x.NeedsRenewal(e.cfg.Tuning.RenewOfferTolerance) {
		log.Info("renew lending offer",
			zap.String("coin", x.Coin),
			zap.Float64("offer_apy", calculator.RoundTo(x.OfferAPY, 2)),
			zap.Float64("apy", calculator.RoundTo(x.APY, 2)),
		)
		res := e.offers.Cancel(ctx, x.Coin)
		if res.PauseErr != nil {
			return false, res.PauseErr
		}
		if !res.OK() {
			log.Warn("renew continues with the previous offer", zap.String("coin", x.Coin))
		}
		if err := e.sleep(ctx, e.cfg.Tuning.PauseAfterRenew); err != nil {
			return false, err
		}
		fresh, err := e.client.GetLendingBalances(ctx)
		if err != nil {
			return false, fmt.Errorf("refresh %s balance: %w", x.Coin, err)
		}
		if fb, ok := model.FindBalance(fresh, x.Coin); ok {
			x = ComputeExtras(fb, rates, asset, settings)
		}
	}

	if x.LendableUSD < e.cfg.Tuning.MinAvailableLimitUSD || x.Rate <= 0 || x.Lendable <= x.Offered {
		log.Debug("size too low",
			zap.String("coin", x.Coin),
			zap.Float64("lendable", x.Lendable),
			zap.Float64("offered", x.Offered),
			zap.Float64("lendable_usd", x.LendableUSD),
			zap.Float64("rate", x.Rate),
		)
		return false, nil
	}

	res := e.offers.Submit(ctx, model.Offer{
		Coin: x.Coin,
		Size: x.OfferSize(e.cfg.Tuning.LendPricePrecision),
		Rate: x.Rate,
	})
	return res.OK(), nil
}
