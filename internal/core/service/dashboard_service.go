package service

import (
	"context"
	"fmt"

	"github.com/ldelacroix/stockroom/internal/core/domain"
	"github.com/ldelacroix/stockroom/internal/port"
)

type DashboardSummary struct {
	Items           int `json:"items"`
	Inventories     int `json:"inventories"`
	PendingOrders   int `json:"pending_orders"`
	LowStockEntries int `json:"low_stock_entries"`
}

type DashboardService struct {
	items       port.ItemRepository
	inventories port.InventoryRepository
	orders      port.OrderRepository
	stock       port.StockRepository
}

func NewDashboardService(items port.ItemRepository, inventories port.InventoryRepository, orders port.OrderRepository, stock port.StockRepository) *DashboardService {
	return &DashboardService{items: items, inventories: inventories, orders: orders, stock: stock}
}

func (s *DashboardService) Summary(ctx context.Context) (*DashboardSummary, error) {
	items, err := s.items.CountActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	inventories, err := s.inventories.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count inventories: %w", err)
	}
	pending, err := s.orders.CountByState(ctx, domain.OrderStatePending)
	if err != nil {
		return nil, fmt.Errorf("count pending orders: %w", err)
	}
	lowStock, err := s.stock.CountLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}

	return &DashboardSummary{
		Items:           items,
		Inventories:     inventories,
		PendingOrders:   pending,
		LowStockEntries: lowStock,
	}, nil
}
