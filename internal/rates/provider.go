package rates

import (
	"log"
	"sync"
	"time"
)

// Provider owns the process-wide current rate table. Readers always see a
// complete table: Reload swaps the whole pointer under the write lock, so a
// concurrent lookup observes either the old or the new day, never a mix.
type Provider struct {
	dir string
	now func() time.Time

	mu    sync.RWMutex
	table *Table
}

// NewProvider loads today's table from dir, falling back to the hardcoded
// default when no file exists for today.
func NewProvider(dir string) *Provider {
	p := &Provider{dir: dir, now: time.Now}
	p.table = p.loadForToday()
	return p
}

// Current returns the active table.
func (p *Provider) Current() *Table {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table
}

// Lookup prices amount against the active table.
func (p *Provider) Lookup(amount float64, country string) (LookupResult, error) {
	return p.Current().Lookup(amount, country)
}

// Reload re-derives the table when the calendar date has advanced. A missing
// file for the new day keeps the previous table (degraded mode); there is no
// intra-day mutation.
func (p *Provider) Reload() {
	today := p.now().Format("2006-01-02")

	p.mu.RLock()
	current := p.table.Date
	p.mu.RUnlock()
	if current == today {
		return
	}

	t, err := Load(p.dir, today)
	if err != nil {
		log.Printf("[rates] keeping table for %s: %v", current, err)
		return
	}

	p.mu.Lock()
	p.table = t
	p.mu.Unlock()
	log.Printf("[rates] loaded table for %s", today)
}

func (p *Provider) loadForToday() *Table {
	today := p.now().Format("2006-01-02")
	t, err := Load(p.dir, today)
	if err != nil {
		log.Printf("[rates] using default table: %v", err)
		return DefaultTable()
	}
	log.Printf("[rates] loaded table for %s", today)
	return t
}
