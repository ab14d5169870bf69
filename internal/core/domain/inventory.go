package domain

import "time"

type Inventory struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// StockEntry holds the quantity of one item in one inventory. Unique per
// (inventory, item) pair; stock never goes negative.
type StockEntry struct {
	InventoryID string `json:"inventory_id"`
	ItemID      string `json:"item_id"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
}

// Alert reports whether the entry is below its alert threshold.
func (e StockEntry) Alert() bool {
	return e.Stock < e.Threshold
}

// InventoryItem is the listing shape for one inventory's contents: the
// item joined with its stock entry.
type InventoryItem struct {
	ItemID      string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
	Alert       bool   `json:"alert"`
}
