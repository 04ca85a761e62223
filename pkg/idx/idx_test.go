package idx_test

import (
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"

	"github.com/tgedr/connectors/pkg/idx"
)

func TestNewIsValidULID(t *testing.T) {
	before := time.Now().UTC().Truncate(time.Millisecond)
	id := idx.New()

	u, err := ulid.ParseStrict(id.String())
	require.NoError(t, err)
	require.WithinDuration(t, before, ulid.Time(u.Time()), time.Second)
}

func TestIDsAreOrdered(t *testing.T) {
	prev := idx.New()
	for range 100 {
		next := idx.New()
		require.Less(t, prev.String(), next.String())
		prev = next
	}
}

func TestNewIsSafeForConcurrentUse(t *testing.T) {
	const n = 50
	ids := make(chan idx.RequestID, n)

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- idx.New()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[idx.RequestID]bool{}
	for id := range ids {
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
	require.Len(t, seen, n)
}
