package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ldelacroix/stockroom/internal/core/domain"
)

type OrderStore struct {
	db *sql.DB
}

func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

func (s *OrderStore) Create(ctx context.Context, order domain.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, destination, posted_by, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		order.ID, order.Destination, order.PostedBy, order.State,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for _, line := range order.Lines {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, item_id, quantity) VALUES (?, ?, ?, ?)`,
			line.ID, line.OrderID, line.ItemID, line.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	return tx.Commit()
}

func (s *OrderStore) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	var order domain.Order
	err := s.db.QueryRowContext(ctx, `
		SELECT id, destination, posted_by, processed_by, state, created_at, updated_at
		FROM orders WHERE id = ?`, id,
	).Scan(&order.ID, &order.Destination, &order.PostedBy, &order.ProcessedBy,
		&order.State, &order.CreatedAt, &order.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, item_id, quantity FROM order_items WHERE order_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("query order lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line domain.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.ItemID, &line.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		order.Lines = append(order.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrderStore) List(ctx context.Context, postedBy string, states []domain.OrderState) ([]domain.Order, error) {
	query := `
		SELECT id, destination, posted_by, processed_by, state, created_at, updated_at
		FROM orders`
	var (
		clauses []string
		args    []any
	)
	if postedBy != "" {
		clauses = append(clauses, `posted_by = ?`)
		args = append(args, postedBy)
	}
	if len(states) > 0 {
		placeholders := make([]string, len(states))
		for i, st := range states {
			placeholders[i] = "?"
			args = append(args, st)
		}
		clauses = append(clauses, `state IN (`+strings.Join(placeholders, ",")+`)`)
	}
	if len(clauses) > 0 {
		query += ` WHERE ` + strings.Join(clauses, ` AND `)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(&order.ID, &order.Destination, &order.PostedBy, &order.ProcessedBy,
			&order.State, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (s *OrderStore) CandidateStock(ctx context.Context, itemID string) ([]domain.StockOption, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT inv.id, inv.name, ii.stock
		FROM inventory_items ii
		JOIN inventories inv ON inv.id = ii.inventory_id
		WHERE ii.item_id = ? AND ii.stock > 0
		ORDER BY inv.name`, itemID)
	if err != nil {
		return nil, fmt.Errorf("query candidate stock: %w", err)
	}
	defer rows.Close()

	var options []domain.StockOption
	for rows.Next() {
		var opt domain.StockOption
		if err := rows.Scan(&opt.InventoryID, &opt.InventoryName, &opt.Stock); err != nil {
			return nil, fmt.Errorf("scan stock option: %w", err)
		}
		options = append(options, opt)
	}
	return options, rows.Err()
}

func (s *OrderStore) ListAssignments(ctx context.Context, orderID string) ([]domain.OrderAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, order_id, item_id, inventory_id, quantity
		FROM order_inventory_assignments WHERE order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var assignments []domain.OrderAssignment
	for rows.Next() {
		var a domain.OrderAssignment
		if err := rows.Scan(&a.ID, &a.OrderID, &a.ItemID, &a.InventoryID, &a.Quantity); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// CommitAllocation runs the entire allocation batch in one transaction.
// Each decrement is conditional on sufficient stock; a zero-row update
// aborts the batch, so a single infeasible assignment rolls back every
// decrement and assignment row before it.
func (s *OrderStore) CommitAllocation(ctx context.Context, orderID, processedBy string, assignments []domain.Assignment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, a := range assignments {
		result, err := tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET stock = stock - ?
			WHERE inventory_id = ? AND item_id = ? AND stock >= ?`,
			a.Quantity, a.InventoryID, a.ItemID, a.Quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			var stock int
			err := tx.QueryRowContext(ctx, `
				SELECT stock FROM inventory_items WHERE inventory_id = ? AND item_id = ?`,
				a.InventoryID, a.ItemID,
			).Scan(&stock)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("stock entry %s/%s: %w", a.InventoryID, a.ItemID, domain.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("query stock entry: %w", err)
			}
			return fmt.Errorf("stock entry %s/%s has %d, need %d: %w",
				a.InventoryID, a.ItemID, stock, a.Quantity, domain.ErrStockInsufficient)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_inventory_assignments (id, order_id, item_id, inventory_id, quantity)
			VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), orderID, a.ItemID, a.InventoryID, a.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}

	// The state guard makes concurrent validations of the same order
	// mutually exclusive: the second one finds no Pending row.
	result, err := tx.ExecContext(ctx, `
		UPDATE orders SET state = ?, processed_by = ?, updated_at = NOW()
		WHERE id = ? AND state = ?`,
		domain.OrderStateValidated, processedBy, orderID, domain.OrderStatePending,
	)
	if err != nil {
		return fmt.Errorf("update order state: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("order %s: %w", orderID, domain.ErrOrderAlreadyProcessed)
	}

	return tx.Commit()
}

func (s *OrderStore) Decline(ctx context.Context, orderID, processedBy string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE orders SET state = ?, processed_by = ?, updated_at = NOW()
		WHERE id = ? AND state = ?`,
		domain.OrderStateDeclined, processedBy, orderID, domain.OrderStatePending,
	)
	if err != nil {
		return fmt.Errorf("update order state: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		var state domain.OrderState
		err := s.db.QueryRowContext(ctx, `SELECT state FROM orders WHERE id = ?`, orderID).Scan(&state)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("query order: %w", err)
		}
		return fmt.Errorf("order %s is %s: %w", orderID, state, domain.ErrOrderAlreadyProcessed)
	}
	return nil
}

func (s *OrderStore) CountByState(ctx context.Context, state domain.OrderState) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders WHERE state = ?`, state).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return count, nil
}
