package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ldelacroix/stockroom/internal/core/domain"
	"github.com/ldelacroix/stockroom/internal/port"
)

// CatalogService owns the item and inventory catalogs. Plain CRUD; items
// are soft-deleted so historical orders keep resolving.
type CatalogService struct {
	items       port.ItemRepository
	inventories port.InventoryRepository
}

func NewCatalogService(items port.ItemRepository, inventories port.InventoryRepository) *CatalogService {
	return &CatalogService{items: items, inventories: inventories}
}

type ItemInput struct {
	Name        string          `json:"name"`
	Description *string         `json:"description"`
	Metadata    json.RawMessage `json:"metadata"`
	ImageURL    string          `json:"image_url"`
}

func (s *CatalogService) CreateItem(ctx context.Context, session domain.Session, in ItemInput) (*domain.Item, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: item name is required", ErrInvalidInput)
	}
	metadata := in.Metadata
	if len(metadata) == 0 {
		metadata = json.RawMessage("{}")
	}
	description := ""
	if in.Description != nil {
		description = *in.Description
	}

	item := domain.Item{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: description,
		Metadata:    metadata,
		ImageURL:    in.ImageURL,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   session.UserID,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return &item, nil
}

func (s *CatalogService) ListItems(ctx context.Context) ([]domain.Item, error) {
	return s.items.List(ctx)
}

func (s *CatalogService) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup item: %w", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return item, nil
}

func (s *CatalogService) UpdateItem(ctx context.Context, session domain.Session, id string, in ItemInput) (*domain.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Deleted() {
		return nil, fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}

	if in.Name != "" {
		item.Name = in.Name
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if len(in.Metadata) > 0 {
		item.Metadata = in.Metadata
	}
	if in.ImageURL != "" {
		item.ImageURL = in.ImageURL
	}

	now := time.Now().UTC()
	item.UpdatedAt = &now
	item.UpdatedBy = &session.UserID

	if err := s.items.Update(ctx, *item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

// DeleteItem marks the item deleted; the row stays for referential
// integrity of past orders and assignments.
func (s *CatalogService) DeleteItem(ctx context.Context, session domain.Session, id string) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}
	if item.Deleted() {
		return fmt.Errorf("item %s: %w", id, domain.ErrNotFound)
	}
	return s.items.SoftDelete(ctx, id, session.UserID)
}

func (s *CatalogService) CreateInventory(ctx context.Context, name, location string) (*domain.Inventory, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: inventory name is required", ErrInvalidInput)
	}
	inv := domain.Inventory{
		ID:        uuid.NewString(),
		Name:      name,
		Location:  location,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.inventories.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create inventory: %w", err)
	}
	return &inv, nil
}

func (s *CatalogService) ListInventories(ctx context.Context) ([]domain.Inventory, error) {
	return s.inventories.List(ctx)
}

func (s *CatalogService) GetInventory(ctx context.Context, id string) (*domain.Inventory, error) {
	inv, err := s.inventories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup inventory: %w", err)
	}
	if inv == nil {
		return nil, fmt.Errorf("inventory %s: %w", id, domain.ErrNotFound)
	}
	return inv, nil
}

func (s *CatalogService) DeleteInventory(ctx context.Context, session domain.Session, id string) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	if _, err := s.GetInventory(ctx, id); err != nil {
		return err
	}
	return s.inventories.Delete(ctx, id)
}
