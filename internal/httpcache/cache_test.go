package httpcache

import (
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func openTestCache(t *testing.T, ttl time.Duration) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), ttl)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDoFetchesOncePerKey(t *testing.T) {
	c := openTestCache(t, time.Hour)

	var calls int32
	fetch := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte(`{"id":"CHEBI:17234"}`), nil
	}

	for i := 0; i < 3; i++ {
		body, err := c.Do("kestrel", "canonicalize:CHEBI:17234", fetch)
		if err != nil {
			t.Fatalf("Do failed: %v", err)
		}
		if string(body) != `{"id":"CHEBI:17234"}` {
			t.Errorf("unexpected body: %s", body)
		}
	}

	if calls != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", calls)
	}
}

func TestDoDistinctKeysFetchSeparately(t *testing.T) {
	c := openTestCache(t, time.Hour)

	var calls int32
	fetch := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		return []byte("x"), nil
	}

	c.Do("kestrel", "a", fetch)
	c.Do("kestrel", "b", fetch)
	c.Do("workbench", "a", fetch) // same key, different source

	if calls != 3 {
		t.Errorf("expected 3 fetches for 3 distinct (source, key) pairs, got %d", calls)
	}
}

func TestDoDoesNotCacheErrors(t *testing.T) {
	c := openTestCache(t, time.Hour)

	fail := errors.New("remote down")
	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, fail
		}
		return []byte("ok"), nil
	}

	if _, err := c.Do("kestrel", "k", fetch); !errors.Is(err, fail) {
		t.Fatalf("expected fetch error, got %v", err)
	}

	body, err := c.Do("kestrel", "k", fetch)
	if err != nil {
		t.Fatalf("retry after error failed: %v", err)
	}
	if string(body) != "ok" {
		t.Errorf("unexpected body after retry: %s", body)
	}
}

func TestExpiredEntryRefetches(t *testing.T) {
	c := openTestCache(t, time.Hour)

	now := time.Now()
	c.now = func() time.Time { return now }

	calls := 0
	fetch := func() ([]byte, error) {
		calls++
		return []byte("v"), nil
	}

	c.Do("kestrel", "k", fetch)

	// Advance past the TTL; the entry should be treated as a miss.
	c.now = func() time.Time { return now.Add(2 * time.Hour) }
	c.Do("kestrel", "k", fetch)

	if calls != 2 {
		t.Errorf("expected refetch after expiry, got %d calls", calls)
	}
}

func TestConcurrentMissesCoalesce(t *testing.T) {
	c := openTestCache(t, time.Hour)

	var calls int32
	started := make(chan struct{})
	fetch := func() ([]byte, error) {
		atomic.AddInt32(&calls, 1)
		<-started
		return []byte("v"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Do("kestrel", "same-key", fetch); err != nil {
				t.Errorf("Do failed: %v", err)
			}
		}()
	}

	// Give goroutines a moment to pile onto the in-flight call, then let
	// the single fetch complete.
	time.Sleep(50 * time.Millisecond)
	close(started)
	wg.Wait()

	if calls != 1 {
		t.Errorf("expected concurrent misses to share one fetch, got %d", calls)
	}
}
