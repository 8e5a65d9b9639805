package allowlist

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"wallet-verify-backend/internal/common/logger"
	"wallet-verify-backend/internal/platform/thegraph"
)

// Fetcher supplies the external allowlist records. Implemented by
// thegraph.Client; tests substitute a fake.
type Fetcher interface {
	FetchIndexers(ctx context.Context) ([]thegraph.IndexerRecord, error)
}

// Store is the process-wide set of allowlisted wallet addresses,
// rebuilt wholesale on each refresh. Readers always see a complete
// snapshot, never a partially-populated one.
type Store struct {
	fetcher Fetcher

	mu        sync.RWMutex
	addresses map[string]struct{}
}

func NewStore(fetcher Fetcher) *Store {
	return &Store{
		fetcher:   fetcher,
		addresses: make(map[string]struct{}),
	}
}

// Refresh fetches the current allowlist and swaps it in, returning the
// new set size. A fetch failure leaves the previous set untouched.
func (s *Store) Refresh(ctx context.Context) (int, error) {
	records, err := s.fetcher.FetchIndexers(ctx)
	if err != nil {
		return 0, fmt.Errorf("refresh allowlist: %w", err)
	}

	// Build the replacement set outside the lock, then swap.
	next := make(map[string]struct{}, len(records))
	for _, record := range records {
		next[strings.ToLower(record.Address)] = struct{}{}
		for _, operator := range record.Operators {
			next[strings.ToLower(operator)] = struct{}{}
		}
	}

	s.mu.Lock()
	s.addresses = next
	s.mu.Unlock()

	return len(next), nil
}

// Contains reports membership of the address, compared lowercase.
func (s *Store) Contains(address string) bool {
	key := strings.ToLower(address)

	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.addresses[key]
	return ok
}

// Size returns the number of addresses in the current set.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.addresses)
}

// RunRefresher re-fetches the allowlist on the given interval until ctx
// is cancelled. Failures keep the prior set and are retried on the next
// tick.
func (s *Store) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug().Msg("Allowlist refresher stopped")
			return
		case <-ticker.C:
			count, err := s.Refresh(ctx)
			if err != nil {
				logger.Error().Err(err).Msg("Allowlist refresh failed")
				continue
			}
			logger.Info().Int("addresses", count).Msg("Allowlist refreshed")
		}
	}
}
