package lending

import (
	"sort"
	"sync"

	"AutoLend/internal/metrics"
)

// PendingUnlockSet holds coins whose conversion waits for locked capital to clear.
// Cycles are single-flight; the lock only guards reads from chat commands.
type PendingUnlockSet struct {
	mu    sync.Mutex
	coins map[string]struct{}
}

// NewPendingUnlockSet creates an empty set.
func NewPendingUnlockSet() *PendingUnlockSet {
	return &PendingUnlockSet{coins: make(map[string]struct{})}
}

// Add inserts coin and reports whether it was absent.
func (p *PendingUnlockSet) Add(coin string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.coins[coin]; ok {
		return false
	}
	p.coins[coin] = struct{}{}
	metrics.PendingUnlock.Set(float64(len(p.coins)))
	return true
}

// Remove deletes coin and reports whether it was present.
func (p *PendingUnlockSet) Remove(coin string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.coins[coin]; !ok {
		return false
	}
	delete(p.coins, coin)
	metrics.PendingUnlock.Set(float64(len(p.coins)))
	return true
}

func (p *PendingUnlockSet) Has(coin string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.coins[coin]
	return ok
}

// List returns the coins in sorted order.
func (p *PendingUnlockSet) List() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.coins))
	for c := range p.coins {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
