package service

import (
	"context"
	"fmt"

	"github.com/ldelacroix/stockroom/internal/core/domain"
	"github.com/ldelacroix/stockroom/internal/port"
)

// New stock entries start alerting below this level until adjusted.
const defaultThreshold = 10

// StockService is the Stock Ledger: the operations that read and mutate
// per-(item, inventory) stock counters. The Allocation Engine bypasses
// this service and decrements inside its own transaction, but both paths
// go through the same conditional-update guarantee in storage.
type StockService struct {
	stock       port.StockRepository
	items       port.ItemRepository
	inventories port.InventoryRepository
}

func NewStockService(stock port.StockRepository, items port.ItemRepository, inventories port.InventoryRepository) *StockService {
	return &StockService{stock: stock, items: items, inventories: inventories}
}

func (s *StockService) ListInventoryItems(ctx context.Context, inventoryID string) ([]domain.InventoryItem, error) {
	inv, err := s.inventories.GetByID(ctx, inventoryID)
	if err != nil {
		return nil, fmt.Errorf("lookup inventory: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory %s: %w", inventoryID, domain.ErrNotFound)
	}
	return s.stock.ListByInventory(ctx, inventoryID)
}

// AddStock merges delta into the (inventory, item) entry, creating it
// with the default threshold when absent.
func (s *StockService) AddStock(ctx context.Context, inventoryID, itemID string, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("%w: stock delta must be positive", ErrInvalidInput)
	}

	inv, err := s.inventories.GetByID(ctx, inventoryID)
	if err != nil {
		return fmt.Errorf("lookup inventory: %w", err)
	}
	if inv == nil {
		return fmt.Errorf("inventory %s: %w", inventoryID, domain.ErrNotFound)
	}

	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return fmt.Errorf("lookup item: %w", err)
	}
	if item == nil || item.Deleted() {
		return fmt.Errorf("item %s: %w", itemID, domain.ErrNotFound)
	}

	return s.stock.Add(ctx, inventoryID, itemID, delta, defaultThreshold)
}

// SetStock overwrites the counter with an absolute value, the manual
// adjustment path.
func (s *StockService) SetStock(ctx context.Context, inventoryID, itemID string, stock int) error {
	if stock < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidInput)
	}
	if err := s.requireEntry(ctx, inventoryID, itemID); err != nil {
		return err
	}
	return s.stock.SetStock(ctx, inventoryID, itemID, stock)
}

// SetThreshold moves the low-stock alert level for an existing entry.
func (s *StockService) SetThreshold(ctx context.Context, inventoryID, itemID string, threshold int) error {
	if threshold < 0 {
		return fmt.Errorf("%w: threshold cannot be negative", ErrInvalidInput)
	}
	if err := s.requireEntry(ctx, inventoryID, itemID); err != nil {
		return err
	}
	return s.stock.SetThreshold(ctx, inventoryID, itemID, threshold)
}

// DecreaseStock rejects any delta that would drive the counter negative.
func (s *StockService) DecreaseStock(ctx context.Context, inventoryID, itemID string, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("%w: stock delta must be positive", ErrInvalidInput)
	}
	if err := s.requireEntry(ctx, inventoryID, itemID); err != nil {
		return err
	}
	return s.stock.Decrease(ctx, inventoryID, itemID, delta)
}

func (s *StockService) RemoveEntry(ctx context.Context, inventoryID, itemID string) error {
	if err := s.requireEntry(ctx, inventoryID, itemID); err != nil {
		return err
	}
	return s.stock.Remove(ctx, inventoryID, itemID)
}

func (s *StockService) requireEntry(ctx context.Context, inventoryID, itemID string) error {
	entry, err := s.stock.Get(ctx, inventoryID, itemID)
	if err != nil {
		return fmt.Errorf("lookup stock entry: %w", err)
	}
	if entry == nil {
		return fmt.Errorf("stock entry %s/%s: %w", inventoryID, itemID, domain.ErrNotFound)
	}
	return nil
}
