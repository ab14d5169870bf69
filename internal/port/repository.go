package port

import (
	"context"

	"github.com/ldelacroix/stockroom/internal/core/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user domain.User) error

	// GetByID, GetByUsername and GetByEmail return (nil, nil) when no
	// matching non-deleted user exists.
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	List(ctx context.Context) ([]domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SoftDelete(ctx context.Context, id string) error
}

type ItemRepository interface {
	Create(ctx context.Context, item domain.Item) error

	// GetByID resolves deleted items too, for historical orders.
	GetByID(ctx context.Context, id string) (*domain.Item, error)

	List(ctx context.Context) ([]domain.Item, error)
	Update(ctx context.Context, item domain.Item) error
	SoftDelete(ctx context.Context, id, deletedBy string) error
	CountActive(ctx context.Context) (int, error)
}

type InventoryRepository interface {
	Create(ctx context.Context, inv domain.Inventory) error
	GetByID(ctx context.Context, id string) (*domain.Inventory, error)
	List(ctx context.Context) ([]domain.Inventory, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// StockRepository is the Stock Ledger: every mutation is a guarded
// single-row update that keeps stock non-negative.
type StockRepository interface {
	// Get returns (nil, nil) when the (inventory, item) pair has no entry.
	Get(ctx context.Context, inventoryID, itemID string) (*domain.StockEntry, error)

	ListByInventory(ctx context.Context, inventoryID string) ([]domain.InventoryItem, error)

	// Add merges delta into an existing entry or creates one with the
	// given threshold. delta must be positive.
	Add(ctx context.Context, inventoryID, itemID string, delta, threshold int) error

	// SetStock overwrites the stock counter with an absolute value.
	SetStock(ctx context.Context, inventoryID, itemID string, stock int) error

	// SetThreshold overwrites the alert threshold.
	SetThreshold(ctx context.Context, inventoryID, itemID string, threshold int) error

	// Decrease subtracts delta if and only if stock >= delta, as a single
	// conditional update; domain.ErrStockInsufficient otherwise.
	Decrease(ctx context.Context, inventoryID, itemID string, delta int) error

	Remove(ctx context.Context, inventoryID, itemID string) error
	CountLowStock(ctx context.Context) (int, error)
}

type OrderRepository interface {
	// Create persists the order and its lines in one transaction.
	Create(ctx context.Context, order domain.Order) error

	// GetByID returns the order with its lines, (nil, nil) if absent.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// List returns orders newest first. postedBy == "" means all users;
	// an empty states slice means all states.
	List(ctx context.Context, postedBy string, states []domain.OrderState) ([]domain.Order, error)

	// CandidateStock lists the inventories holding stock of an item.
	CandidateStock(ctx context.Context, itemID string) ([]domain.StockOption, error)

	ListAssignments(ctx context.Context, orderID string) ([]domain.OrderAssignment, error)

	// CommitAllocation atomically decrements stock for every assignment,
	// records the assignment rows and moves the Pending order to
	// Validated. Any infeasible assignment aborts the whole batch.
	CommitAllocation(ctx context.Context, orderID, processedBy string, assignments []domain.Assignment) error

	// Decline moves a Pending order to Declined. No stock effect.
	Decline(ctx context.Context, orderID, processedBy string) error

	CountByState(ctx context.Context, state domain.OrderState) (int, error)
}
