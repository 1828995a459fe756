// Package store provides a SQLite-backed cache of extracted snapshots and a
// history of diff runs.
package store

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/xonecas/decldiff/internal/decl"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key      TEXT PRIMARY KEY,
	module   TEXT NOT NULL,
	snapshot TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS runs (
	id        TEXT PRIMARY KEY,
	source    TEXT NOT NULL,
	from_rev  TEXT NOT NULL,
	to_rev    TEXT NOT NULL,
	modules   INTEGER NOT NULL,
	added     INTEGER NOT NULL,
	modified  INTEGER NOT NULL,
	deleted   INTEGER NOT NULL,
	created   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created);
CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created);
`

// Cache is a SQLite-backed snapshot cache. A nil *Cache is valid and caches
// nothing.
type Cache struct {
	mu  sync.Mutex
	db  *sql.DB
	ttl time.Duration
}

// Open creates or opens a cache database at the given path.
// ttl controls how long snapshots remain fresh; run history never expires.
func Open(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	c := &Cache{db: db, ttl: ttl}
	c.purgeStale()
	return c, nil
}

// Close closes the database.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// SnapshotKey identifies the snapshot the named extractor builds for module
// from text.
func SnapshotKey(extractor, module, text string) string {
	h := sha256.New()
	h.Write([]byte(extractor))
	h.Write([]byte{0})
	h.Write([]byte(module))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// GetSnapshot returns the cached snapshot for key, or false on a miss or a
// stale entry. Safe to call on a nil receiver.
func (c *Cache) GetSnapshot(key string) (*decl.Snapshot, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-c.ttl).Unix()
	var raw string
	err := c.db.QueryRow(
		"SELECT snapshot FROM snapshots WHERE key = ? AND created > ?",
		key, cutoff,
	).Scan(&raw)
	if err != nil {
		return nil, false
	}
	var snap decl.Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding unreadable cached snapshot")
		return nil, false
	}
	return &snap, true
}

// PutSnapshot stores snap under key. No-op on nil receiver.
func (c *Cache) PutSnapshot(key string, snap *decl.Snapshot) {
	if c == nil || snap == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		log.Warn().Err(err).Str("module", snap.Module).Msg("failed to encode snapshot")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO snapshots (key, module, snapshot, created) VALUES (?, ?, ?, ?)",
		key, snap.Module, string(raw), time.Now().Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("module", snap.Module).Msg("failed to cache snapshot")
	}
}

// purgeStale removes snapshots older than the TTL.
func (c *Cache) purgeStale() {
	cutoff := time.Now().Add(-c.ttl).Unix()
	res, err := c.db.Exec("DELETE FROM snapshots WHERE created <= ?", cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("failed to purge stale snapshots")
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Info().Int64("deleted", n).Msg("purged stale snapshots")
	}
}
