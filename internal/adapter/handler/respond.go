package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ldelacroix/stockroom/internal/core/domain"
	"github.com/ldelacroix/stockroom/internal/core/service"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps service and domain sentinels to HTTP statuses. Unknown
// errors become an opaque 500; the detail goes to the log, not the caller.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch {
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = err.Error()
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
		message = err.Error()
	case errors.Is(err, domain.ErrStockInsufficient),
		errors.Is(err, domain.ErrOrderAlreadyProcessed),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrEmailTaken):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrEmptyPlan),
		errors.Is(err, service.ErrQuantityExceedsDemand),
		errors.Is(err, service.ErrItemNotOnOrder),
		errors.Is(err, service.ErrOrderHasNoLines),
		errors.Is(err, service.ErrPasswordTooShort):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		log.Error().Err(err).Msg("request failed")
	}

	writeJSON(w, status, errorResponse{Error: message})
}
