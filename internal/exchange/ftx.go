package exchange

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"AutoLend/internal/model"
)

// FTXOptions configures FTXClient.
type FTXOptions struct {
	BaseURL    string
	APIKey     string
	APISecret  string
	Subaccount string
	ProxyURL   string
	Timeout    time.Duration

	RequestsPerSecond float64
	Burst             int

	// Reads are retried; writes never are.
	RetryAttempts uint
	RetryDelay    time.Duration
}

// FTXClient implements Client against the FTX REST API.
type FTXClient struct {
	baseURL    *url.URL
	key        string
	secret     string
	subaccount string

	http    *http.Client
	limiter *rate.Limiter
	opts    FTXOptions
	now     func() time.Time
	logger  *zap.Logger
}

// NewFTXClient creates a signed REST client.
func NewFTXClient(opts FTXOptions, logger *zap.Logger) (*FTXClient, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = 5
	}
	if opts.Burst <= 0 {
		opts.Burst = 5
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = 3
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &http.Transport{}
	if opts.ProxyURL != "" {
		if u, err := url.Parse(opts.ProxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &FTXClient{
		baseURL:    base,
		key:        opts.APIKey,
		secret:     opts.APISecret,
		subaccount: opts.Subaccount,
		http:       &http.Client{Timeout: opts.Timeout, Transport: transport},
		limiter:    rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		opts:       opts,
		now:        time.Now,
		logger:     logger.Named("ftx"),
	}, nil
}

func (c *FTXClient) Name() string { return "ftx" }

type envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
	Error   string          `json:"error"`
}

// sign returns the hex HMAC-SHA256 of ts + method + path + body.
func sign(secret, ts, method, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + method + path))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *FTXClient) do(ctx context.Context, method, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	req, err := http.NewRequestWithContext(ctx, method, u.String(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("FTX-KEY", c.key)
	req.Header.Set("FTX-TS", ts)
	req.Header.Set("FTX-SIGN", sign(c.secret, ts, method, u.Path, body))
	if c.subaccount != "" {
		req.Header.Set("FTX-SUBACCOUNT", url.PathEscape(c.subaccount))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 300 {
			return &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw)), Path: path}
		}
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if resp.StatusCode >= 300 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Path: path}
	}
	if out == nil || len(env.Result) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode %s result: %w", path, err)
	}
	return nil
}

// get performs an idempotent read, retrying transient failures with backoff.
func (c *FTXClient) get(ctx context.Context, path string, out any) error {
	return retry.Do(
		func() error { return c.do(ctx, http.MethodGet, path, nil, out) },
		retry.Context(ctx),
		retry.RetryIf(isRetryable),
		retry.Attempts(c.opts.RetryAttempts),
		retry.LastErrorOnly(true),
		retry.DelayType(retry.BackOffDelay),
		retry.Delay(c.opts.RetryDelay),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("read failed, retrying", zap.String("path", path), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *FTXClient) GetMarkets(ctx context.Context) ([]model.Market, error) {
	var out []model.Market
	if err := c.get(ctx, "/markets", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FTXClient) GetWalletBalances(ctx context.Context) ([]model.WalletBalance, error) {
	var out []model.WalletBalance
	if err := c.get(ctx, "/wallet/balances", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FTXClient) GetLendingRates(ctx context.Context) ([]model.Rate, error) {
	var out []model.Rate
	if err := c.get(ctx, "/spot_margin/lending_rates", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FTXClient) GetLendingBalances(ctx context.Context) ([]model.Balance, error) {
	var out []model.Balance
	if err := c.get(ctx, "/spot_margin/lending_info", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FTXClient) GetLendingHistory(ctx context.Context) ([]model.HistoryRecord, error) {
	var out []model.HistoryRecord
	if err := c.get(ctx, "/spot_margin/lending_history", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *FTXClient) SubmitLendingOffer(ctx context.Context, offer model.Offer) error {
	return c.do(ctx, http.MethodPost, "/spot_margin/offers", offer, nil)
}

func (c *FTXClient) RequestQuote(ctx context.Context, req model.QuoteRequest) (int64, error) {
	var out struct {
		QuoteID int64 `json:"quoteId"`
	}
	if err := c.do(ctx, http.MethodPost, "/otc/quotes", req, &out); err != nil {
		return 0, err
	}
	return out.QuoteID, nil
}

func (c *FTXClient) GetQuote(ctx context.Context, id int64) (model.Quote, error) {
	var out model.Quote
	err := c.get(ctx, "/otc/quotes/"+strconv.FormatInt(id, 10), &out)
	return out, err
}

func (c *FTXClient) AcceptQuote(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPost, "/otc/quotes/"+strconv.FormatInt(id, 10)+"/accept", nil, nil)
}
