// Package httpcache provides a read-through cache for remote lookup results,
// keyed by (source slug, query key). Entries are persisted in SQLite so
// repeated runs against the same inputs issue at most one remote call per
// distinct key within the TTL.
//
// Remote fetches must be idempotent and side-effect free; under concurrent
// access, duplicate misses on the same key are coalesced in-flight, and even
// a lost race only costs redundant work, never corruption.
package httpcache

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Schema is the cache table definition, applied on open.
const Schema = `
CREATE TABLE IF NOT EXISTS lookup_cache (
	source     TEXT NOT NULL,
	query_key  TEXT NOT NULL,
	response   BLOB NOT NULL,
	fetched_at INTEGER NOT NULL,
	PRIMARY KEY (source, query_key)
);
`

// FetchFunc performs the remote call on a cache miss and returns the raw
// response body to store.
type FetchFunc func() ([]byte, error)

// Cache is a read-through lookup cache backed by SQLite.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	inflight map[string]*inflightCall
}

type inflightCall struct {
	done chan struct{}
	body []byte
	err  error
}

// Open opens (creating if necessary) a cache database at the given path with
// the given entry TTL. A TTL of zero means entries never expire.
func Open(path string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("httpcache: failed to open %s: %w", path, err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("httpcache: failed to apply schema: %w", err)
	}
	return &Cache{
		db:       db,
		ttl:      ttl,
		now:      time.Now,
		inflight: make(map[string]*inflightCall),
	}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// Do returns the cached response for (source, key), fetching and storing it
// on a miss or after expiry. Concurrent callers for the same key share one
// fetch. Fetch errors are not cached.
func (c *Cache) Do(source, key string, fetch FetchFunc) ([]byte, error) {
	if body, ok, err := c.get(source, key); err != nil {
		return nil, err
	} else if ok {
		return body, nil
	}

	flightKey := source + "\x00" + key

	c.mu.Lock()
	if call, ok := c.inflight[flightKey]; ok {
		c.mu.Unlock()
		<-call.done
		return call.body, call.err
	}
	call := &inflightCall{done: make(chan struct{})}
	c.inflight[flightKey] = call
	c.mu.Unlock()

	// Re-check the store: another process may have filled the entry between
	// our miss and claiming the flight.
	if body, ok, err := c.get(source, key); err == nil && ok {
		call.body = body
	} else {
		call.body, call.err = fetch()
		if call.err == nil {
			call.err = c.put(source, key, call.body)
		}
	}

	c.mu.Lock()
	delete(c.inflight, flightKey)
	c.mu.Unlock()
	close(call.done)

	return call.body, call.err
}

// get looks up a live entry. The second return value reports a hit.
func (c *Cache) get(source, key string) ([]byte, bool, error) {
	var body []byte
	var fetchedAt int64
	err := c.db.QueryRow(
		"SELECT response, fetched_at FROM lookup_cache WHERE source = ? AND query_key = ?",
		source, key,
	).Scan(&body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("httpcache: lookup failed: %w", err)
	}
	if c.ttl > 0 && c.now().Unix()-fetchedAt > int64(c.ttl.Seconds()) {
		return nil, false, nil
	}
	return body, true, nil
}

// put stores a response using upsert semantics.
func (c *Cache) put(source, key string, body []byte) error {
	_, err := c.db.Exec(`
		INSERT INTO lookup_cache (source, query_key, response, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source, query_key) DO UPDATE SET
			response = excluded.response,
			fetched_at = excluded.fetched_at
	`, source, key, body, c.now().Unix())
	if err != nil {
		return fmt.Errorf("httpcache: store failed: %w", err)
	}
	return nil
}

// Purge removes expired entries. Useful for long-lived processes; one-shot
// CLI runs can skip it.
func (c *Cache) Purge() error {
	if c.ttl == 0 {
		return nil
	}
	cutoff := c.now().Add(-c.ttl).Unix()
	_, err := c.db.Exec("DELETE FROM lookup_cache WHERE fetched_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("httpcache: purge failed: %w", err)
	}
	return nil
}
