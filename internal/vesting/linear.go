package vesting

import (
	"context"
	"fmt"
	"math/bits"
	"sort"
	"sync"
)

// LinearStream is a stream vesting linearly from StartTS to EndTS.
// Before StartTS the full amount is locked; after EndTS nothing is.
type LinearStream struct {
	Address  string
	QuoteATA string
	Vault    string
	Total    uint64 // total allocation of the stream
	StartTS  int64
	EndTS    int64
}

// LockedAt returns the still-locked amount of the stream at ts.
func (s LinearStream) LockedAt(ts int64) uint64 {
	if ts <= s.StartTS {
		return s.Total
	}
	if ts >= s.EndTS || s.EndTS <= s.StartTS {
		return 0
	}
	remaining := uint64(s.EndTS - ts)
	duration := uint64(s.EndTS - s.StartTS)
	// Widened multiply before the floor division; remaining < duration keeps
	// the quotient within 64 bits.
	hi, lo := bits.Mul64(s.Total, remaining)
	locked, _ := bits.Div64(hi, lo, duration)
	return locked
}

// LinearProvider implements Provider over a registry of linear streams.
// Stands in for the Streamflow integration in tests and single-process
// deployments.
type LinearProvider struct {
	mu      sync.RWMutex
	streams map[string]LinearStream // by stream address
}

// NewLinearProvider creates an empty provider.
func NewLinearProvider() *LinearProvider {
	return &LinearProvider{streams: make(map[string]LinearStream)}
}

// Compile-time interface check.
var _ Provider = (*LinearProvider)(nil)

// AddStream registers a stream.
func (p *LinearProvider) AddStream(s LinearStream) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.streams[s.Address] = s
}

// LockedAmount returns the still-locked balance of a stream at ts.
func (p *LinearProvider) LockedAmount(_ context.Context, stream string, ts int64) (uint64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	s, ok := p.streams[stream]
	if !ok {
		return 0, fmt.Errorf("vesting: unknown stream %s", stream)
	}
	return s.LockedAt(ts), nil
}

// ListStreams returns a vault's streams ordered by address.
func (p *LinearProvider) ListStreams(_ context.Context, vault string) ([]Stream, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var result []Stream
	for _, s := range p.streams {
		if s.Vault == vault {
			result = append(result, Stream{Address: s.Address, QuoteATA: s.QuoteATA})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Address < result[j].Address })
	return result, nil
}
