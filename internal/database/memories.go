package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Memory is one stored document.
type Memory struct {
	ID         string
	Content    string
	Tags       []string
	Importance float64
	CreatedAt  string
}

// HasTag reports whether m carries tag.
func (m Memory) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Stats contains aggregate store statistics.
type Stats struct {
	TotalMemories int
	LatestAt      string
	ByTag         map[string]int
}

// Store saves a document with its tags and importance. It satisfies the
// memory sink used by the report pipeline.
func (db *DB) Store(ctx context.Context, document string, tags []string, importance float64) error {
	_, err := db.InsertMemory(ctx, document, tags, importance)
	return err
}

// InsertMemory saves a document and returns its generated ID.
func (db *DB) InsertMemory(ctx context.Context, content string, tags []string, importance float64) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}

	id := uuid.NewString()
	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO memories (id, content, tags, importance) VALUES (?, ?, ?, ?)`,
		id, content, string(tagsJSON), importance,
	)
	if err != nil {
		return "", fmt.Errorf("inserting memory: %w", err)
	}
	return id, nil
}

// GetMemory returns the memory with the given ID, or nil if none exists.
func (db *DB) GetMemory(id string) (*Memory, error) {
	row := db.conn.QueryRow(
		`SELECT id, content, tags, importance, created_at FROM memories WHERE id = ?`, id,
	)
	m, err := scanMemory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

// GetMemories returns memories newest first. A non-empty tag restricts the
// result to memories carrying that tag; limit <= 0 means no limit.
func (db *DB) GetMemories(tag string, limit int) ([]Memory, error) {
	query := `SELECT id, content, tags, importance, created_at FROM memories`
	var args []any
	if tag != "" {
		query += ` WHERE EXISTS (SELECT 1 FROM json_each(memories.tags) WHERE json_each.value = ?)`
		args = append(args, tag)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, *m)
	}
	return memories, rows.Err()
}

// GetStats returns aggregate store statistics.
func (db *DB) GetStats() (*Stats, error) {
	s := &Stats{ByTag: make(map[string]int)}

	var latest sql.NullString
	if err := db.conn.QueryRow(
		"SELECT COUNT(*), MAX(created_at) FROM memories",
	).Scan(&s.TotalMemories, &latest); err != nil {
		return nil, err
	}
	s.LatestAt = latest.String

	rows, err := db.conn.Query(
		"SELECT json_each.value, COUNT(*) FROM memories, json_each(memories.tags) GROUP BY json_each.value",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var tag string
		var n int
		if err := rows.Scan(&tag, &n); err != nil {
			return nil, err
		}
		s.ByTag[tag] = n
	}
	return s, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMemory(row scanner) (*Memory, error) {
	var m Memory
	var tags string
	var createdAt sql.NullString
	if err := row.Scan(&m.ID, &m.Content, &tags, &m.Importance, &createdAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &m.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of %s: %w", m.ID, err)
	}
	m.CreatedAt = createdAt.String
	return &m, nil
}
