package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ldelacroix/stockroom/internal/core/domain"
)

type InventoryStore struct {
	db *sql.DB
}

func NewInventoryStore(db *sql.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

func (s *InventoryStore) Create(ctx context.Context, inv domain.Inventory) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventories (id, name, location, created_at) VALUES (?, ?, ?, ?)`,
		inv.ID, inv.Name, inv.Location, inv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inventory: %w", err)
	}
	return nil
}

func (s *InventoryStore) GetByID(ctx context.Context, id string) (*domain.Inventory, error) {
	var inv domain.Inventory
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, location, created_at FROM inventories WHERE id = ?`, id,
	).Scan(&inv.ID, &inv.Name, &inv.Location, &inv.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	return &inv, nil
}

func (s *InventoryStore) List(ctx context.Context) ([]domain.Inventory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, location, created_at FROM inventories ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query inventories: %w", err)
	}
	defer rows.Close()

	var inventories []domain.Inventory
	for rows.Next() {
		var inv domain.Inventory
		if err := rows.Scan(&inv.ID, &inv.Name, &inv.Location, &inv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		inventories = append(inventories, inv)
	}
	return inventories, rows.Err()
}

// Delete removes the inventory and its stock entries together.
func (s *InventoryStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory_items WHERE inventory_id = ?`, id); err != nil {
		return fmt.Errorf("delete stock entries: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM inventories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete inventory: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("inventory %s: %w", id, domain.ErrNotFound)
	}

	return tx.Commit()
}

func (s *InventoryStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventories`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count inventories: %w", err)
	}
	return count, nil
}
