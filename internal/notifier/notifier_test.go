package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AutoLend/internal/report"
)

func newTestNotifier(srv *httptest.Server) *TelegramNotifier {
	n := NewTelegramNotifier("TOKEN", "42", "", nil)
	n.APIBase = srv.URL
	n.retryDelay = time.Millisecond
	return n
}

func TestSend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["chat_id"])
		assert.Equal(t, "hello", payload["text"])
		assert.Equal(t, "HTML", payload["parse_mode"])
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv).Send(context.Background(), "hello"))
}

func TestSendWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer srv.Close()

	require.NoError(t, newTestNotifier(srv).SendWithRetry(context.Background(), "hi", 3))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := newTestNotifier(srv).SendWithRetry(context.Background(), "hi", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestStartPolling_RepliesToCommands(t *testing.T) {
	replies := make(chan string, 1)
	var served int32
	mux := http.NewServeMux()
	mux.HandleFunc("/botTOKEN/getUpdates", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&served, 1) == 1 {
			_, _ = w.Write([]byte(`{"ok":true,"result":[{"update_id":7,"message":{"text":" /status "}}]}`))
			return
		}
		assert.Equal(t, "8", r.URL.Query().Get("offset"))
		_, _ = w.Write([]byte(`{"ok":true,"result":[]}`))
	})
	mux.HandleFunc("/botTOKEN/sendMessage", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		select {
		case replies <- payload["text"]:
		default:
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		newTestNotifier(srv).StartPolling(ctx, func(cmd string) string { return "got " + cmd })
		close(done)
	}()

	select {
	case reply := <-replies:
		assert.Equal(t, "got /status", reply)
	case <-time.After(5 * time.Second):
		t.Fatal("no reply received")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}
}

func TestFormatReport(t *testing.T) {
	s := &report.Summary{
		GeneratedAt:      time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC),
		Rows:             []report.Row{{Coin: "USDT", Lendable: 1000, Locked: 500, Offered: 100, OfferAPY: 8.77, LockedRatio: 50, LentRatio: 80, ValueUSD: 500}},
		TotalValueUSD:    500,
		WalletUSD:        1200,
		TotalProfitUSD:   6,
		ProfitPerDayUSD:  3,
		ProfitPerYearUSD: 1095.73,
		AverageAPY:       219.15,
		HistoryFrom:      time.Date(2021, 4, 29, 0, 0, 0, 0, time.UTC),
	}
	msg := FormatReport(s)
	assert.Contains(t, msg, "<b>USDT</b> 1000 lendable | 500 locked | 100 offered")
	assert.Contains(t, msg, "APY 8.77% | locked 50.00% | lent 80.00% | $500.00")
	assert.Contains(t, msg, "Wallet value: $1200.00")
	assert.Contains(t, msg, "$3.00/day | $1095.73/year | avg APY 219.15%")

	s.HistoryInsufficient = true
	assert.Contains(t, FormatReport(s), "Not enough history")
	assert.Contains(t, FormatReport(nil), "No report yet")
}

func TestFormatPendingAndStatus(t *testing.T) {
	assert.Contains(t, FormatPending(nil), "No conversion")
	assert.Contains(t, FormatPending([]string{"BTC", "USDT"}), "BTC\nUSDT")

	since := time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)
	status := FormatStatus(true, since, time.Time{}, errors.New("boom"))
	assert.Contains(t, status, "Cycle running since 12:00:00")
	assert.Contains(t, status, "No cycle completed yet")
	assert.Contains(t, status, "Last error: boom")
	assert.Contains(t, FormatStatus(false, time.Time{}, since, nil), "Idle")

	raw := FormatStatus(false, time.Time{}, since, errors.New("status 502: <html><body>Bad Gateway</body></html>"))
	assert.Contains(t, raw, "Last error: status 502: &lt;html&gt;&lt;body&gt;Bad Gateway&lt;/body&gt;&lt;/html&gt;")
	assert.NotContains(t, raw, "<html>")
}
