package domain

import (
	"encoding/json"
	"time"
)

// Item is a catalog entry. Items are soft-deleted: a deleted item drops
// out of active listings but stays resolvable for historical orders and
// assignments that reference it.
type Item struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CreatedBy   string          `json:"created_by"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
	UpdatedBy   *string         `json:"updated_by,omitempty"`
	DeletedAt   *time.Time      `json:"deleted_at,omitempty"`
	DeletedBy   *string         `json:"deleted_by,omitempty"`
}

func (i Item) Deleted() bool {
	return i.DeletedAt != nil
}
