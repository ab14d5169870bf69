package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/ldelacroix/stockroom/internal/core/service"
)

// NewRouter wires the full HTTP surface. Everything under /api except
// signup and login requires a bearer token; validate/decline and the
// user-management routes additionally require the admin role.
func NewRouter(
	auth *service.AuthService,
	catalog *service.CatalogService,
	stock *service.StockService,
	orders *service.OrderService,
	dashboard *service.DashboardService,
) *mux.Router {
	authHandler := NewAuthHandler(auth)
	itemHandler := NewItemHandler(catalog)
	inventoryHandler := NewInventoryHandler(catalog, stock)
	orderHandler := NewOrderHandler(orders)
	dashboardHandler := NewDashboardHandler(dashboard)

	r := mux.NewRouter()
	r.Use(RequestLogger)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	protected := api.NewRoute().Subrouter()
	protected.Use(Authenticate(auth))

	protected.HandleFunc("/logout", authHandler.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/users/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/users/password", authHandler.ChangePassword).Methods(http.MethodPatch)

	protected.HandleFunc("/items", itemHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/items", itemHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/items/{id}", itemHandler.Update).Methods(http.MethodPatch)
	protected.HandleFunc("/items/{id}", itemHandler.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/inventories", inventoryHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/inventories", inventoryHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/inventories/{id}", inventoryHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/inventories/{id}", inventoryHandler.Delete).Methods(http.MethodDelete)
	protected.HandleFunc("/inventories/{id}/items", inventoryHandler.ListItems).Methods(http.MethodGet)
	protected.HandleFunc("/inventories/{id}/items", inventoryHandler.AddStock).Methods(http.MethodPost)
	protected.HandleFunc("/inventories/{id}/items/{itemId}", inventoryHandler.SetStock).Methods(http.MethodPatch)
	protected.HandleFunc("/inventories/{id}/items/{itemId}", inventoryHandler.RemoveStock).Methods(http.MethodDelete)

	protected.HandleFunc("/orders", orderHandler.Create).Methods(http.MethodPost)
	protected.HandleFunc("/orders", orderHandler.List).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{id}", orderHandler.Get).Methods(http.MethodGet)
	protected.HandleFunc("/orders/{id}/assignments", orderHandler.Assignments).Methods(http.MethodGet)

	protected.HandleFunc("/dashboard", dashboardHandler.Summary).Methods(http.MethodGet)

	admin := protected.NewRoute().Subrouter()
	admin.Use(RequireAdmin)
	admin.HandleFunc("/users", authHandler.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}", authHandler.DeleteUser).Methods(http.MethodDelete)
	admin.HandleFunc("/orders/{id}/validate", orderHandler.Validate).Methods(http.MethodPatch)
	admin.HandleFunc("/orders/{id}/decline", orderHandler.Decline).Methods(http.MethodPatch, http.MethodPost)

	return r
}
