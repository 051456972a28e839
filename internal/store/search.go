package store

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// InputKind tells how the dish name was entered.
type InputKind string

const (
	// InputTyped is a dish typed into the search box.
	InputTyped InputKind = "typed"
	// InputSpoken is a dish captured through speech recognition.
	InputSpoken InputKind = "spoken"
)

// Search is one recorded dish lookup.
type Search struct {
	ID        string
	Dish      string
	Input     InputKind
	Status    string
	Source    string
	CreatedAt time.Time
}

// SearchRepository records and lists lookups.
type SearchRepository struct {
	db *sql.DB
}

// Searches returns the search repository for this store.
func (s *Store) Searches() *SearchRepository {
	return &SearchRepository{db: s.db}
}

// Create inserts a search. CreatedAt is set when zero.
func (r *SearchRepository) Create(ctx context.Context, sr *Search) error {
	if sr.CreatedAt.IsZero() {
		sr.CreatedAt = time.Now().UTC()
	}
	if sr.Input == "" {
		sr.Input = InputTyped
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO searches (id, dish, input, status, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sr.ID, sr.Dish, string(sr.Input), sr.Status, sr.Source, sr.CreatedAt,
	)
	return err
}

// List returns up to limit searches, newest first.
func (r *SearchRepository) List(ctx context.Context, limit int) ([]*Search, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, dish, input, status, source, created_at
		 FROM searches ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var searches []*Search
	for rows.Next() {
		sr, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, sr)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return searches, nil
}

// Latest returns the most recent search.
func (r *SearchRepository) Latest(ctx context.Context) (*Search, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, dish, input, status, source, created_at
		 FROM searches ORDER BY created_at DESC, rowid DESC LIMIT 1`,
	)
	sr, err := scanSearch(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sr, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSearch(s scanner) (*Search, error) {
	sr := &Search{}
	var input string
	if err := s.Scan(&sr.ID, &sr.Dish, &input, &sr.Status, &sr.Source, &sr.CreatedAt); err != nil {
		return nil, err
	}
	sr.Input = InputKind(input)
	return sr, nil
}
