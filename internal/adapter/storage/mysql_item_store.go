package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ldelacroix/stockroom/internal/core/domain"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = `id, name, description, metadata, image_url, created_at, created_by, updated_at, updated_by, deleted_at, deleted_by`

func (s *ItemStore) Create(ctx context.Context, item domain.Item) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO items (id, name, description, metadata, image_url, created_at, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Name, item.Description, string(item.Metadata), item.ImageURL,
		item.CreatedAt, item.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	var (
		item     domain.Item
		metadata sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	).Scan(
		&item.ID, &item.Name, &item.Description, &metadata, &item.ImageURL,
		&item.CreatedAt, &item.CreatedBy,
		&item.UpdatedAt, &item.UpdatedBy, &item.DeletedAt, &item.DeletedBy,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query item: %w", err)
	}
	if metadata.Valid {
		item.Metadata = []byte(metadata.String)
	}
	return &item, nil
}

// List returns active items only; soft-deleted rows are resolvable
// through GetByID for historical orders.
func (s *ItemStore) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE deleted_at IS NULL ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var (
			item     domain.Item
			metadata sql.NullString
		)
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Description, &metadata, &item.ImageURL,
			&item.CreatedAt, &item.CreatedBy,
			&item.UpdatedAt, &item.UpdatedBy, &item.DeletedAt, &item.DeletedBy,
		); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		if metadata.Valid {
			item.Metadata = []byte(metadata.String)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *ItemStore) Update(ctx context.Context, item domain.Item) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items
		SET name = ?, description = ?, metadata = ?, image_url = ?, updated_at = ?, updated_by = ?
		WHERE id = ? AND deleted_at IS NULL`,
		item.Name, item.Description, string(item.Metadata), item.ImageURL,
		item.UpdatedAt, item.UpdatedBy, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrNotFound)
	}
	return nil
}

func (s *ItemStore) SoftDelete(ctx context.Context, id, deletedBy string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET deleted_at = NOW(), deleted_by = ? WHERE id = ? AND deleted_at IS NULL`,
		deletedBy, id,
	)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *ItemStore) CountActive(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items WHERE deleted_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}
