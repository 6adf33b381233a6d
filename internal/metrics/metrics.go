// Package metrics exposes Prometheus instrumentation for the lending cycle.
package metrics

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	CyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "autolend_cycles_total", Help: "Scheduler ticks by outcome"},
		[]string{"result"},
	)
	OffersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "autolend_offers_total", Help: "Lending offer submissions"},
		[]string{"coin", "action", "result"},
	)
	ConversionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "autolend_conversions_total", Help: "Coin conversions attempted by the rebalancer"},
		[]string{"from", "to", "result"},
	)
	PendingUnlock = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "autolend_pending_unlock", Help: "Coins waiting for locked capital before conversion"},
	)
	PortfolioValueUSD = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "autolend_portfolio_value_usd", Help: "USD value of locked lending capital"},
	)
	TotalProfitUSD = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "autolend_total_profit_usd", Help: "USD value of all lending proceeds"},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, OffersTotal, ConversionsTotal, PendingUnlock, PortfolioValueUSD, TotalProfitUSD)
}

// Result returns the label value for an error outcome.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Serve binds addr and serves /metrics in the background. Bind failures are
// returned; later serve failures are logged.
func Serve(addr string, logger *zap.Logger) (*http.Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ln.Addr().String(), Handler: mux}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	return srv, nil
}
