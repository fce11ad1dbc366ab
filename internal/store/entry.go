package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/odataq/internal/doc"
)

// Entry is one cached translation.
type Entry struct {
	ID         string `json:"id"`
	Mode       string `json:"mode"`
	Input      string `json:"input"`
	Output     string `json:"output"`      // JSON produced by the translation
	OutputHash string `json:"output_hash"` // doc.Hash(DomainResult, Output)
	Seq        int64  `json:"seq"`
}

// Put records a translation.
// Uses INSERT OR IGNORE for idempotency - a request that is already cached
// is left untouched and inserted is false.
//
// ID, OutputHash and Seq are computed; values set by the caller are ignored.
func (s *Store) Put(ctx context.Context, e Entry) (entry Entry, inserted bool, err error) {
	if e.Mode != ModeQuery && e.Mode != ModeFilter {
		return Entry{}, false, fmt.Errorf("put translation: unknown mode %q", e.Mode)
	}
	e.ID, err = doc.TranslationID(e.Mode, e.Input)
	if err != nil {
		return Entry{}, false, fmt.Errorf("put translation: %w", err)
	}
	e.OutputHash = doc.Hash(doc.DomainResult, []byte(e.Output))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, false, fmt.Errorf("put translation: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM translations`).Scan(&e.Seq); err != nil {
		return Entry{}, false, fmt.Errorf("put translation: next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO translations
		(id, mode, input, output, output_hash, seq)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, e.Mode, e.Input, e.Output, e.OutputHash, e.Seq)
	if err != nil {
		return Entry{}, false, fmt.Errorf("put translation: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return Entry{}, false, fmt.Errorf("put translation: rows affected: %w", err)
	}

	if rows == 0 {
		existing, err := scanEntry(tx.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, e.ID))
		if err != nil {
			return Entry{}, false, fmt.Errorf("put translation: read existing: %w", err)
		}
		return existing, false, tx.Commit()
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, false, fmt.Errorf("put translation: commit: %w", err)
	}
	return e, true, nil
}

// Get returns the cached translation for a request, if any.
func (s *Store) Get(ctx context.Context, mode, input string) (Entry, bool, error) {
	id, err := doc.TranslationID(mode, input)
	if err != nil {
		return Entry{}, false, fmt.Errorf("get translation: %w", err)
	}

	e, err := scanEntry(s.db.QueryRowContext(ctx, selectEntry+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get translation: %w", err)
	}
	return e, true, nil
}

// List returns up to limit entries, newest first. A limit <= 0 returns all.
//
// Returns an empty slice (not nil) if the store is empty.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := selectEntry + ` ORDER BY seq DESC, id COLLATE BINARY ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list translations: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list translations: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translations: %w", err)
	}
	return entries, nil
}

const selectEntry = `SELECT id, mode, input, output, output_hash, seq FROM translations`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	if err := row.Scan(&e.ID, &e.Mode, &e.Input, &e.Output, &e.OutputHash, &e.Seq); err != nil {
		return Entry{}, err
	}
	return e, nil
}
