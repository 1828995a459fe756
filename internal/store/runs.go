package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Run summarizes one completed diff.
type Run struct {
	ID       string
	Source   string // "git" or "dirs"
	From, To string
	Modules  int
	Added    int
	Modified int
	Deleted  int
	Created  time.Time
}

// RecordRun stores r, assigning an ID and creation time when missing, and
// returns the stored ID. No-op on nil receiver.
func (c *Cache) RecordRun(r Run) (string, error) {
	if c == nil {
		return "", nil
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Created.IsZero() {
		r.Created = time.Now()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.db.Exec(
		`INSERT INTO runs (id, source, from_rev, to_rev, modules, added, modified, deleted, created)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.From, r.To, r.Modules, r.Added, r.Modified, r.Deleted, r.Created.Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("id", r.ID).Msg("failed to record run")
		return "", fmt.Errorf("record run: %w", err)
	}
	return r.ID, nil
}

// Runs returns up to limit runs, newest first. limit <= 0 returns all.
func (c *Cache) Runs(limit int) ([]Run, error) {
	if c == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	rows, err := c.db.Query(
		`SELECT id, source, from_rev, to_rev, modules, added, modified, deleted, created
		 FROM runs ORDER BY created DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &r.Source, &r.From, &r.To, &r.Modules, &r.Added, &r.Modified, &r.Deleted, &created); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Created = time.Unix(created, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
