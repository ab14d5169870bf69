package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ldelacroix/stockroom/internal/core/domain"
	"github.com/ldelacroix/stockroom/internal/core/service"
)

type OrderHandler struct {
	orders *service.OrderService
}

func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type createOrderRequest struct {
	Destination string                   `json:"destination"`
	Items       []service.OrderLineInput `json:"items"`
}

func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	order, err := h.orders.Create(r.Context(), session, req.Destination, req.Items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "order_id": order.ID})
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	var states []domain.OrderState
	if raw := r.URL.Query().Get("state"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || !domain.OrderState(n).Valid() {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid state filter"})
				return
			}
			states = append(states, domain.OrderState(n))
		}
	}

	orders, err := h.orders.List(r.Context(), session, states)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	detail, err := h.orders.Get(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *OrderHandler) Assignments(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	assignments, err := h.orders.Assignments(r.Context(), session, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

type validateOrderRequest struct {
	Assignments []domain.Assignment `json:"assignments"`
}

func (h *OrderHandler) Validate(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	var req validateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.orders.Validate(r.Context(), session, mux.Vars(r)["id"], req.Assignments); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *OrderHandler) Decline(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())

	if err := h.orders.Decline(r.Context(), session, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true, "declined": true})
}
