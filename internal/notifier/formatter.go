package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"AutoLend/internal/report"
)

// FormatReport formats a lending summary into a Telegram message.
func FormatReport(s *report.Summary) string {
	if s == nil {
		return "No report yet, the first cycle has not completed."
	}
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>AutoLend report</b> | %s\n\n", s.GeneratedAt.Format("2006-01-02 15:04")))

	if len(s.Rows) == 0 {
		b.WriteString("No lending positions.\n")
	}
	for _, r := range s.Rows {
		b.WriteString(fmt.Sprintf("<b>%s</b> %g lendable | %g locked | %g offered\n", r.Coin, r.Lendable, r.Locked, r.Offered))
		b.WriteString(fmt.Sprintf("  APY %.2f%% | locked %.2f%% | lent %.2f%% | $%.2f\n", r.OfferAPY, r.LockedRatio, r.LentRatio, r.ValueUSD))
	}

	b.WriteString("  ─────────────────\n")
	b.WriteString(fmt.Sprintf("💰 Lent value: $%.2f\n", s.TotalValueUSD))
	if s.WalletUSD > 0 {
		b.WriteString(fmt.Sprintf("👛 Wallet value: $%.2f\n", s.WalletUSD))
	}
	b.WriteString(fmt.Sprintf("📈 Total profit: $%.2f\n", s.TotalProfitUSD))
	if s.HistoryInsufficient {
		b.WriteString("   Not enough history for a profit rate yet.\n")
	} else {
		b.WriteString(fmt.Sprintf("   $%.2f/day | $%.2f/year | avg APY %.2f%%\n", s.ProfitPerDayUSD, s.ProfitPerYearUSD, s.AverageAPY))
		b.WriteString(fmt.Sprintf("   since %s\n", s.HistoryFrom.Format("2006-01-02")))
	}
	return b.String()
}

// FormatPending lists coins waiting for capital to unlock before conversion.
func FormatPending(coins []string) string {
	if len(coins) == 0 {
		return "⏳ No conversion is waiting for unlock."
	}
	return fmt.Sprintf("⏳ <b>Waiting for unlock</b>\n\n%s", strings.Join(coins, "\n"))
}

// FormatStatus describes the scheduler run state.
func FormatStatus(running bool, since, lastRun time.Time, lastErr error) string {
	var b strings.Builder
	b.WriteString("⚙️ <b>AutoLend status</b>\n\n")
	if running {
		b.WriteString(fmt.Sprintf("Cycle running since %s\n", since.Format("15:04:05")))
	} else {
		b.WriteString("Idle\n")
	}
	if lastRun.IsZero() {
		b.WriteString("No cycle completed yet\n")
	} else {
		b.WriteString(fmt.Sprintf("Last cycle: %s\n", lastRun.Format("2006-01-02 15:04:05")))
	}
	if lastErr != nil {
		b.WriteString(fmt.Sprintf("Last error: %s\n", html.EscapeString(lastErr.Error())))
	}
	return b.String()
}

// HelpText lists the supported chat commands.
const HelpText = "Commands:\n• /report last lending report\n• /pending coins waiting for unlock\n• /status scheduler state"
