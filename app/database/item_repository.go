package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var _ ItemRepository = (*SQLiteItemRepository)(nil)

type SQLiteItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *SQLiteItemRepository {
	return &SQLiteItemRepository{db: db}
}

func (r *SQLiteItemRepository) UpsertItem(ctx context.Context, item FeedItem) error {
	if item.ItemHash == "" {
		return fmt.Errorf("item hash is required")
	}

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO items (
			item_hash, title, description, link, image_url, source_url,
			feed_type, pub_date, feed_url, base_url, run_id, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (item_hash) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			link = excluded.link,
			image_url = excluded.image_url,
			source_url = excluded.source_url,
			feed_type = excluded.feed_type,
			pub_date = excluded.pub_date,
			feed_url = excluded.feed_url,
			base_url = excluded.base_url,
			run_id = excluded.run_id,
			updated_at = excluded.updated_at
	`, item.ItemHash, item.Title, item.Description, item.Link, nullString(item.ImageURL), item.SourceURL,
		item.FeedType, item.PubDate.UTC(), item.FeedURL, item.BaseURL, item.RunID, now, now)

	if err != nil {
		return fmt.Errorf("failed to upsert item %s: %w", item.ItemHash, err)
	}

	return nil
}

const itemColumns = `item_hash, title, description, link, COALESCE(image_url, ''), source_url,
	feed_type, pub_date, feed_url, base_url, run_id, created_at, updated_at`

// GetItems returns the newest items, optionally limited to one category.
func (r *SQLiteItemRepository) GetItems(ctx context.Context, feedType string, limit int) ([]Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	var args []any

	if feedType != "" {
		query += ` WHERE feed_type = ?`
		args = append(args, feedType)
	}

	query += ` ORDER BY pub_date DESC, item_hash LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, nil
}

func (r *SQLiteItemRepository) GetItem(ctx context.Context, itemHash string) (*Item, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE item_hash = ?`, itemHash)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *SQLiteItemRepository) GetItemCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

func (r *SQLiteItemRepository) GetCategoryStats(ctx context.Context) ([]CategoryCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT feed_type, COUNT(*)
		FROM items
		GROUP BY feed_type
		ORDER BY feed_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get category stats: %w", err)
	}
	defer rows.Close()

	var stats []CategoryCount
	for rows.Next() {
		var stat CategoryCount
		if err := rows.Scan(&stat.FeedType, &stat.Count); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		stats = append(stats, stat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*Item, error) {
	var item Item
	err := row.Scan(
		&item.ItemHash, &item.Title, &item.Description, &item.Link, &item.ImageURL, &item.SourceURL,
		&item.FeedType, &item.PubDate, &item.FeedURL, &item.BaseURL, &item.RunID,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan item row: %w", err)
	}
	return &item, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
