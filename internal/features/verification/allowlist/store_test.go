package allowlist

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-verify-backend/internal/platform/thegraph"
)

type fakeFetcher struct {
	mu      sync.Mutex
	records []thegraph.IndexerRecord
	err     error
	calls   int
}

func (f *fakeFetcher) FetchIndexers(ctx context.Context) ([]thegraph.IndexerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func TestRefreshPopulatesPrimaryAndOperators(t *testing.T) {
	fetcher := &fakeFetcher{
		records: []thegraph.IndexerRecord{
			{Address: "0xAAAA000000000000000000000000000000000001", Operators: []string{
				"0xBBBB000000000000000000000000000000000002",
				"0xCCCC000000000000000000000000000000000003",
			}},
			{Address: "0xDDDD000000000000000000000000000000000004"},
		},
	}
	store := NewStore(fetcher)

	count, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	assert.True(t, store.Contains("0xaaaa000000000000000000000000000000000001"))
	assert.True(t, store.Contains("0xbbbb000000000000000000000000000000000002"))
	assert.True(t, store.Contains("0xcccc000000000000000000000000000000000003"))
	assert.True(t, store.Contains("0xdddd000000000000000000000000000000000004"))
	assert.False(t, store.Contains("0xeeee000000000000000000000000000000000005"))
}

func TestContainsIsCaseInsensitive(t *testing.T) {
	fetcher := &fakeFetcher{
		records: []thegraph.IndexerRecord{
			{Address: "0xAbCd000000000000000000000000000000000001"},
		},
	}
	store := NewStore(fetcher)

	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	assert.True(t, store.Contains("0xabcd000000000000000000000000000000000001"))
	assert.True(t, store.Contains("0xABCD000000000000000000000000000000000001"))
	assert.True(t, store.Contains("0xAbCd000000000000000000000000000000000001"))
}

func TestRefreshFailureKeepsPriorSet(t *testing.T) {
	fetcher := &fakeFetcher{
		records: []thegraph.IndexerRecord{
			{Address: "0x1111000000000000000000000000000000000001"},
		},
	}
	store := NewStore(fetcher)

	_, err := store.Refresh(context.Background())
	require.NoError(t, err)
	require.True(t, store.Contains("0x1111000000000000000000000000000000000001"))

	fetcher.mu.Lock()
	fetcher.err = errors.New("transport down")
	fetcher.mu.Unlock()

	_, err = store.Refresh(context.Background())
	assert.Error(t, err)
	assert.True(t, store.Contains("0x1111000000000000000000000000000000000001"),
		"failed refresh must not clear the set")
	assert.Equal(t, 1, store.Size())
}

func TestEmptyStoreRejectsEverything(t *testing.T) {
	store := NewStore(&fakeFetcher{err: errors.New("unreachable")})

	_, err := store.Refresh(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 0, store.Size())
	assert.False(t, store.Contains("0x1111000000000000000000000000000000000001"))
}

func TestRefreshReplacesWholesale(t *testing.T) {
	fetcher := &fakeFetcher{
		records: []thegraph.IndexerRecord{
			{Address: "0x1111000000000000000000000000000000000001"},
		},
	}
	store := NewStore(fetcher)

	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	fetcher.mu.Lock()
	fetcher.records = []thegraph.IndexerRecord{
		{Address: "0x2222000000000000000000000000000000000002"},
	}
	fetcher.mu.Unlock()

	_, err = store.Refresh(context.Background())
	require.NoError(t, err)

	assert.False(t, store.Contains("0x1111000000000000000000000000000000000001"),
		"entries absent from the new fetch must be dropped")
	assert.True(t, store.Contains("0x2222000000000000000000000000000000000002"))
}

func TestConcurrentReadsDuringRefresh(t *testing.T) {
	fetcher := &fakeFetcher{
		records: []thegraph.IndexerRecord{
			{Address: "0x1111000000000000000000000000000000000001"},
			{Address: "0x2222000000000000000000000000000000000002"},
		},
	}
	store := NewStore(fetcher)
	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup

	// Readers must always observe a complete snapshot: both addresses
	// are in every fetched set, so Contains can never report false.
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				if !store.Contains("0x1111000000000000000000000000000000000001") ||
					!store.Contains("0x2222000000000000000000000000000000000002") {
					t.Error("observed a torn allowlist set")
					return
				}
			}
		}()
	}

	for i := 0; i < 100; i++ {
		_, err := store.Refresh(context.Background())
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()
}
