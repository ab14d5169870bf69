package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ldelacroix/stockroom/internal/core/domain"
	"github.com/ldelacroix/stockroom/internal/port"
)

var (
	ErrEmptyPlan             = errors.New("no assignments provided")
	ErrQuantityExceedsDemand = errors.New("assigned quantity exceeds requested quantity")
	ErrItemNotOnOrder        = errors.New("assignment references an item the order does not request")
	ErrOrderHasNoLines       = errors.New("order has no lines")
)

// OrderService owns the order lifecycle (Pending -> Validated | Declined,
// both terminal) and the allocation engine that turns a Pending order
// plus an allocation plan into committed stock decrements.
type OrderService struct {
	orders port.OrderRepository
	items  port.ItemRepository
}

func NewOrderService(orders port.OrderRepository, items port.ItemRepository) *OrderService {
	return &OrderService{orders: orders, items: items}
}

type OrderLineInput struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// Create opens a new order in the Pending state on behalf of the caller.
func (s *OrderService) Create(ctx context.Context, session domain.Session, destination string, lines []OrderLineInput) (*domain.Order, error) {
	if destination == "" {
		return nil, fmt.Errorf("%w: destination is required", ErrInvalidInput)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: order needs at least one line", ErrInvalidInput)
	}

	orderID := uuid.NewString()
	now := time.Now().UTC()
	order := domain.Order{
		ID:          orderID,
		Destination: destination,
		PostedBy:    session.UserID,
		State:       domain.OrderStatePending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	for _, line := range lines {
		if line.ItemID == "" || line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: each line needs an item and a positive quantity", ErrInvalidInput)
		}
		item, err := s.items.GetByID(ctx, line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("lookup item: %w", err)
		}
		if item == nil || item.Deleted() {
			return nil, fmt.Errorf("item %s: %w", line.ItemID, domain.ErrNotFound)
		}
		order.Lines = append(order.Lines, domain.OrderLine{
			ID:       uuid.NewString(),
			OrderID:  orderID,
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
		})
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}

// List returns the caller's orders, or every order for admins, optionally
// filtered by state.
func (s *OrderService) List(ctx context.Context, session domain.Session, states []domain.OrderState) ([]domain.Order, error) {
	postedBy := session.UserID
	if session.IsAdmin() {
		postedBy = ""
	}
	return s.orders.List(ctx, postedBy, states)
}

// Get returns the order with lines, each line's item and the inventories
// currently holding stock for it. Only the order's creator or an admin
// may read it.
func (s *OrderService) Get(ctx context.Context, session domain.Session, orderID string) (*domain.OrderDetail, error) {
	order, err := s.requireOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && order.PostedBy != session.UserID {
		return nil, ErrForbidden
	}

	detail := domain.OrderDetail{Order: *order}
	for _, line := range order.Lines {
		item, err := s.items.GetByID(ctx, line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("lookup item: %w", err)
		}
		if item == nil {
			return nil, fmt.Errorf("item %s: %w", line.ItemID, domain.ErrNotFound)
		}
		candidates, err := s.orders.CandidateStock(ctx, line.ItemID)
		if err != nil {
			return nil, fmt.Errorf("candidate stock: %w", err)
		}
		detail.LineDetails = append(detail.LineDetails, domain.OrderLineDetail{
			OrderLine:  line,
			Item:       *item,
			Candidates: candidates,
		})
	}
	return &detail, nil
}

func (s *OrderService) Assignments(ctx context.Context, session domain.Session, orderID string) ([]domain.OrderAssignment, error) {
	order, err := s.requireOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !session.IsAdmin() && order.PostedBy != session.UserID {
		return nil, ErrForbidden
	}
	return s.orders.ListAssignments(ctx, orderID)
}

// Validate is the allocation engine. It checks the plan against the
// order's demand, then hands the whole batch to storage for an
// all-or-nothing commit: every stock decrement, every assignment row and
// the state transition land together or not at all.
func (s *OrderService) Validate(ctx context.Context, session domain.Session, orderID string, plan []domain.Assignment) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	if len(plan) == 0 {
		return ErrEmptyPlan
	}
	for _, a := range plan {
		if a.ItemID == "" || a.InventoryID == "" {
			return fmt.Errorf("%w: assignment is missing an item or inventory reference", ErrInvalidInput)
		}
		if a.Quantity <= 0 {
			return fmt.Errorf("%w: assignment quantity must be positive", ErrInvalidInput)
		}
	}

	order, err := s.requireOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if order.State.Terminal() {
		return fmt.Errorf("order %s is %s: %w", orderID, order.State, domain.ErrOrderAlreadyProcessed)
	}
	if len(order.Lines) == 0 {
		return fmt.Errorf("order %s: %w", orderID, ErrOrderHasNoLines)
	}

	// The caller's UI pre-filters against remaining demand, but the
	// server is the authority: cap the per-item assignment sum here.
	requested := make(map[string]int, len(order.Lines))
	for _, line := range order.Lines {
		requested[line.ItemID] += line.Quantity
	}
	assigned := make(map[string]int, len(plan))
	for _, a := range plan {
		want, ok := requested[a.ItemID]
		if !ok {
			return fmt.Errorf("item %s: %w", a.ItemID, ErrItemNotOnOrder)
		}
		assigned[a.ItemID] += a.Quantity
		if assigned[a.ItemID] > want {
			return fmt.Errorf("item %s: %d assigned, %d requested: %w",
				a.ItemID, assigned[a.ItemID], want, ErrQuantityExceedsDemand)
		}
	}

	if err := s.orders.CommitAllocation(ctx, orderID, session.UserID, plan); err != nil {
		return fmt.Errorf("commit allocation: %w", err)
	}
	return nil
}

// Decline moves a Pending order to Declined. Stock is untouched; an order
// already in a terminal state is rejected rather than silently
// re-declined.
func (s *OrderService) Decline(ctx context.Context, session domain.Session, orderID string) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	order, err := s.requireOrder(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.State.CanTransitionTo(domain.OrderStateDeclined) {
		return fmt.Errorf("order %s is %s: %w", orderID, order.State, domain.ErrOrderAlreadyProcessed)
	}
	if err := s.orders.Decline(ctx, orderID, session.UserID); err != nil {
		return fmt.Errorf("decline order: %w", err)
	}
	return nil
}

func (s *OrderService) requireOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("lookup order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	return order, nil
}
