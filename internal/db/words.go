package db

import (
	"context"
	"fmt"
	"strings"

	"impostor/internal/wordbank"
)

// LoadWords reads the whole word bank. It is called once at startup so no
// room action ever waits on the database.
func (d *DB) LoadWords(ctx context.Context) ([]wordbank.Entry, error) {
	rows, err := d.conn.QueryContext(ctx, `
		SELECT category, word FROM words ORDER BY category, word
	`)
	if err != nil {
		return nil, fmt.Errorf("loading words: %w", err)
	}
	defer rows.Close()

	var out []wordbank.Entry
	for rows.Next() {
		var e wordbank.Entry
		if err := rows.Scan(&e.Category, &e.Word); err != nil {
			return nil, fmt.Errorf("scanning word: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading words: %w", err)
	}
	return out, nil
}

// AddWord stores one entry. Adding an existing pair is a no-op and reports
// false.
func (d *DB) AddWord(ctx context.Context, category, word string) (bool, error) {
	category, word = strings.TrimSpace(category), strings.TrimSpace(word)
	if category == "" || word == "" {
		return false, fmt.Errorf("adding word: category and word must not be empty")
	}
	res, err := d.conn.ExecContext(ctx, `
		INSERT INTO words (category, word)
		VALUES ($1, $2)
		ON CONFLICT (lower(category), lower(word)) DO NOTHING
	`, category, word)
	if err != nil {
		return false, fmt.Errorf("adding word: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("adding word: %w", err)
	}
	return n > 0, nil
}

func (d *DB) RemoveWord(ctx context.Context, category, word string) (bool, error) {
	res, err := d.conn.ExecContext(ctx, `
		DELETE FROM words WHERE lower(category) = lower($1) AND lower(word) = lower($2)
	`, strings.TrimSpace(category), strings.TrimSpace(word))
	if err != nil {
		return false, fmt.Errorf("removing word: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("removing word: %w", err)
	}
	return n > 0, nil
}
