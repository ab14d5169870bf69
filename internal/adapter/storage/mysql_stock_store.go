package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ldelacroix/stockroom/internal/core/domain"
)

// StockStore keeps the per-(inventory, item) counters. Every mutation is
// a guarded single-row statement so the non-negativity invariant holds
// under concurrent writers without application-level locking.
type StockStore struct {
	db *sql.DB
}

func NewStockStore(db *sql.DB) *StockStore {
	return &StockStore{db: db}
}

func (s *StockStore) Get(ctx context.Context, inventoryID, itemID string) (*domain.StockEntry, error) {
	var entry domain.StockEntry
	err := s.db.QueryRowContext(ctx, `
		SELECT inventory_id, item_id, stock, threshold
		FROM inventory_items WHERE inventory_id = ? AND item_id = ?`,
		inventoryID, itemID,
	).Scan(&entry.InventoryID, &entry.ItemID, &entry.Stock, &entry.Threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stock entry: %w", err)
	}
	return &entry, nil
}

// ListByInventory joins active items with their stock entries; deleted
// items are excluded from the listing.
func (s *StockStore) ListByInventory(ctx context.Context, inventoryID string) ([]domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT i.id, i.name, i.description, i.image_url, ii.stock, ii.threshold
		FROM inventory_items ii
		JOIN items i ON i.id = ii.item_id
		WHERE ii.inventory_id = ? AND i.deleted_at IS NULL
		ORDER BY i.name`, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("query inventory items: %w", err)
	}
	defer rows.Close()

	var items []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ItemID, &it.Name, &it.Description, &it.ImageURL, &it.Stock, &it.Threshold); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		it.Alert = it.Stock < it.Threshold
		items = append(items, it)
	}
	return items, rows.Err()
}

func (s *StockStore) Add(ctx context.Context, inventoryID, itemID string, delta, threshold int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (inventory_id, item_id, stock, threshold)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE stock = stock + VALUES(stock)`,
		inventoryID, itemID, delta, threshold,
	)
	if err != nil {
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

func (s *StockStore) SetStock(ctx context.Context, inventoryID, itemID string, stock int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items SET stock = ? WHERE inventory_id = ? AND item_id = ?`,
		stock, inventoryID, itemID,
	)
	if err != nil {
		return fmt.Errorf("set stock: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		// MySQL reports zero affected rows for a no-op update too, so
		// distinguish a missing entry from stock already at the target.
		entry, err := s.Get(ctx, inventoryID, itemID)
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("stock entry %s/%s: %w", inventoryID, itemID, domain.ErrNotFound)
		}
	}
	return nil
}

func (s *StockStore) SetThreshold(ctx context.Context, inventoryID, itemID string, threshold int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items SET threshold = ? WHERE inventory_id = ? AND item_id = ?`,
		threshold, inventoryID, itemID,
	)
	if err != nil {
		return fmt.Errorf("set threshold: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		entry, err := s.Get(ctx, inventoryID, itemID)
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("stock entry %s/%s: %w", inventoryID, itemID, domain.ErrNotFound)
		}
	}
	return nil
}

// Decrease is the decrement-if-sufficient update: the WHERE clause is
// what prevents the lost-update anomaly between concurrent callers.
func (s *StockStore) Decrease(ctx context.Context, inventoryID, itemID string, delta int) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET stock = stock - ?
		WHERE inventory_id = ? AND item_id = ? AND stock >= ?`,
		delta, inventoryID, itemID, delta,
	)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		entry, err := s.Get(ctx, inventoryID, itemID)
		if err != nil {
			return err
		}
		if entry == nil {
			return fmt.Errorf("stock entry %s/%s: %w", inventoryID, itemID, domain.ErrNotFound)
		}
		return fmt.Errorf("stock entry %s/%s has %d, need %d: %w",
			inventoryID, itemID, entry.Stock, delta, domain.ErrStockInsufficient)
	}
	return nil
}

func (s *StockStore) Remove(ctx context.Context, inventoryID, itemID string) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM inventory_items WHERE inventory_id = ? AND item_id = ?`,
		inventoryID, itemID,
	)
	if err != nil {
		return fmt.Errorf("delete stock entry: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("stock entry %s/%s: %w", inventoryID, itemID, domain.ErrNotFound)
	}
	return nil
}

func (s *StockStore) CountLowStock(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM inventory_items WHERE stock < threshold`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return count, nil
}
