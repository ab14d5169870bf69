package domain

import "time"

// OrderState is persisted as a raw integer (0/1/2) but only the named
// values are legal, and the only legal transitions are out of Pending.
type OrderState int

const (
	OrderStatePending   OrderState = 0
	OrderStateValidated OrderState = 1
	OrderStateDeclined  OrderState = 2
)

func (s OrderState) String() string {
	switch s {
	case OrderStatePending:
		return "pending"
	case OrderStateValidated:
		return "validated"
	case OrderStateDeclined:
		return "declined"
	}
	return "unknown"
}

func (s OrderState) Valid() bool {
	return s == OrderStatePending || s == OrderStateValidated || s == OrderStateDeclined
}

// Terminal reports whether no further state transition is allowed.
func (s OrderState) Terminal() bool {
	return s == OrderStateValidated || s == OrderStateDeclined
}

func (s OrderState) CanTransitionTo(next OrderState) bool {
	return s == OrderStatePending && next.Terminal()
}

type Order struct {
	ID          string      `json:"id"`
	Destination string      `json:"destination"`
	PostedBy    string      `json:"posted_by"`
	ProcessedBy *string     `json:"processed_by"`
	State       OrderState  `json:"state"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Lines       []OrderLine `json:"lines,omitempty"`
}

// OrderLine is the demand side: what the order asks for. Immutable once
// the order exists.
type OrderLine struct {
	ID       string `json:"id"`
	OrderID  string `json:"order_id"`
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

// OrderAssignment is the supply side: a committed fulfillment of part of
// an order line out of one inventory's stock.
type OrderAssignment struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	ItemID      string `json:"item_id"`
	InventoryID string `json:"inventory_id"`
	Quantity    int    `json:"quantity"`
}

// Assignment is one entry of a caller-proposed allocation plan, before it
// has been committed.
type Assignment struct {
	ItemID      string `json:"item_id"`
	InventoryID string `json:"inventory_id"`
	Quantity    int    `json:"quantity"`
}

// OrderDetail is the shape an administrator needs to build an allocation
// plan: each line with its item and the inventories currently holding
// stock for it.
type OrderDetail struct {
	Order
	LineDetails []OrderLineDetail `json:"line_details"`
}

type OrderLineDetail struct {
	OrderLine
	Item       Item          `json:"item"`
	Candidates []StockOption `json:"candidates"`
}

// StockOption is one inventory that could serve a line, with its current
// stock at read time.
type StockOption struct {
	InventoryID   string `json:"inventory_id"`
	InventoryName string `json:"inventory_name"`
	Stock         int    `json:"stock"`
}
