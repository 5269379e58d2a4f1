package paramsprovider

import (
	"context"
	"sync"
	"time"

	"github.com/lightningnetwork/lnd/clock"
)

// DefaultTTL is how long a fetched parameter set is trusted before the
// Provider re-fetches from the API.
const DefaultTTL = 10 * time.Minute

// Provider layers an in-memory TTL cache and a sqlite-backed persistent
// cache in front of Client, so repeated lookups over a short window don't
// hit the network, and a network outage still has the last-seen version to
// fall back on. It is a caller convenience: every btcstaking operation
// still takes explicit parameter fields and is unaware this type exists.
type Provider struct {
	client *Client
	store  *Store
	clock  clock.Clock
	ttl    time.Duration

	mu        sync.Mutex
	memo      *VersionedParams
	memoUntil time.Time
}

// NewProvider constructs a Provider. store may be nil to disable the
// persistent fallback layer (in-memory TTL caching only).
func NewProvider(client *Client, store *Store) *Provider {
	return &Provider{
		client: client,
		store:  store,
		clock:  clock.NewDefaultClock(),
		ttl:    DefaultTTL,
	}
}

// FetchLatest returns the highest-versioned staking parameters, consulting
// the in-memory cache, then the API, then (on API failure) the persistent
// store's last-known version, in that order.
func (p *Provider) FetchLatest(ctx context.Context) (*VersionedParams, error) {
	p.mu.Lock()
	if p.memo != nil && p.clock.Now().Before(p.memoUntil) {
		defer p.mu.Unlock()
		return p.memo, nil
	}
	p.mu.Unlock()

	params, fetchErr := p.client.FetchLatest(ctx)
	if fetchErr == nil {
		p.memoize(params)
		if p.store != nil {
			_ = p.store.Put(params, p.clock.Now())
		}
		return params, nil
	}

	if p.store != nil {
		if cached, ok, err := p.store.Latest(); err == nil && ok {
			p.memoize(cached)
			return cached, nil
		}
	}

	return nil, fetchErr
}

func (p *Provider) memoize(params *VersionedParams) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.memo = params
	p.memoUntil = p.clock.Now().Add(p.ttl)
}
