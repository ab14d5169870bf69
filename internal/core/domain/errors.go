package domain

import "errors"

// Errors shared between the storage adapters and the services. The
// handlers map them to HTTP statuses with errors.Is, so adapters wrap
// them with context rather than returning their own types.
var (
	ErrNotFound              = errors.New("not found")
	ErrStockInsufficient     = errors.New("insufficient stock")
	ErrOrderAlreadyProcessed = errors.New("order already processed")
)
