package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ldelacroix/stockroom/internal/core/service"
)

type InventoryHandler struct {
	catalog *service.CatalogService
	stock   *service.StockService
}

func NewInventoryHandler(catalog *service.CatalogService, stock *service.StockService) *InventoryHandler {
	return &InventoryHandler{catalog: catalog, stock: stock}
}

type inventoryRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req inventoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	inv, err := h.catalog.CreateInventory(r.Context(), req.Name, req.Location)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inv)
}

func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	inventories, err := h.catalog.ListInventories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inventories)
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.catalog.GetInventory(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inv)
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	session, _ := sessionFromContext(r.Context())
	if err := h.catalog.DeleteInventory(r.Context(), session, mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.stock.ListInventoryItems(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type addStockRequest struct {
	ItemID string `json:"item_id"`
	Stock  int    `json:"stock"`
}

func (h *InventoryHandler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req addStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := h.stock.AddStock(r.Context(), mux.Vars(r)["id"], req.ItemID, req.Stock); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type setStockRequest struct {
	Stock     *int `json:"stock"`
	Threshold *int `json:"threshold"`
}

func (h *InventoryHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req setStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Stock == nil && req.Threshold == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "nothing to update"})
		return
	}

	if req.Stock != nil {
		if err := h.stock.SetStock(r.Context(), vars["id"], vars["itemId"], *req.Stock); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Threshold != nil {
		if err := h.stock.SetThreshold(r.Context(), vars["id"], vars["itemId"], *req.Threshold); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *InventoryHandler) RemoveStock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.stock.RemoveEntry(r.Context(), vars["id"], vars["itemId"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
