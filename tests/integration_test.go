package tests

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldelacroix/stockroom/internal/adapter/storage"
	"github.com/ldelacroix/stockroom/internal/core/domain"
	"github.com/ldelacroix/stockroom/internal/core/service"
)

type testEnv struct {
	mysql *sql.DB
	redis *redis.Client

	auth    *service.AuthService
	catalog *service.CatalogService
	stock   *service.StockService
	orders  *service.OrderService

	stockStore *storage.StockStore
	orderStore *storage.OrderStore
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mysqlDSN := os.Getenv("STOCKROOM_MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "root:root@tcp(localhost:3306)/stockroom?parseTime=true"
	}
	redisAddr := os.Getenv("STOCKROOM_REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	db, err := sql.Open("mysql", mysqlDSN)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	t.Cleanup(func() {
		rdb.Close()
		db.Close()
	})

	users := storage.NewUserStore(db)
	items := storage.NewItemStore(db)
	inventories := storage.NewInventoryStore(db)
	stock := storage.NewStockStore(db)
	orders := storage.NewOrderStore(db)
	tokens := storage.NewRedisTokenStore(rdb)

	return &testEnv{
		mysql:      db,
		redis:      rdb,
		auth:       service.NewAuthService(users, tokens, time.Minute, 4),
		catalog:    service.NewCatalogService(items, inventories),
		stock:      service.NewStockService(stock, items, inventories),
		orders:     service.NewOrderService(orders, items),
		stockStore: stock,
		orderStore: orders,
	}
}

// newSessions signs up one admin and one regular user through the real
// auth path (bcrypt + Redis token), promoting the admin directly in
// MySQL since signup never grants the role.
func (env *testEnv) newSessions(t *testing.T, ctx context.Context) (admin, user domain.Session) {
	t.Helper()

	suffix := uuid.New().String()[:8]

	adminUser, err := env.auth.Signup(ctx, service.SignupInput{
		Username: "intg-admin-" + suffix,
		Email:    "intg-admin-" + suffix + "@example.com",
		Password: "motdepasse",
	})
	require.NoError(t, err)
	_, err = env.mysql.ExecContext(ctx, `UPDATE users SET role = 'admin' WHERE id = ?`, adminUser.ID)
	require.NoError(t, err)

	regularUser, err := env.auth.Signup(ctx, service.SignupInput{
		Username: "intg-user-" + suffix,
		Email:    "intg-user-" + suffix + "@example.com",
		Password: "motdepasse",
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		env.mysql.Exec(`DELETE FROM users WHERE id IN (?, ?)`, adminUser.ID, regularUser.ID)
	})

	adminToken, _, err := env.auth.Login(ctx, adminUser.Username, "motdepasse")
	require.NoError(t, err)
	userToken, _, err := env.auth.Login(ctx, regularUser.Username, "motdepasse")
	require.NoError(t, err)

	adminSession, err := env.auth.Authenticate(ctx, adminToken)
	require.NoError(t, err)
	require.True(t, adminSession.IsAdmin())
	userSession, err := env.auth.Authenticate(ctx, userToken)
	require.NoError(t, err)

	return *adminSession, *userSession
}

// seedCatalog creates an item and an inventory holding the given stock,
// registering cleanup for every row it creates.
func (env *testEnv) seedCatalog(t *testing.T, ctx context.Context, admin domain.Session, stock int) (itemID, inventoryID string) {
	t.Helper()

	item, err := env.catalog.CreateItem(ctx, admin, service.ItemInput{Name: "intg item " + uuid.New().String()[:8]})
	require.NoError(t, err)
	inv, err := env.catalog.CreateInventory(ctx, "intg inventory "+uuid.New().String()[:8], "Lyon")
	require.NoError(t, err)

	t.Cleanup(func() {
		env.mysql.Exec(`DELETE FROM inventory_items WHERE inventory_id = ?`, inv.ID)
		env.mysql.Exec(`DELETE FROM inventories WHERE id = ?`, inv.ID)
		env.mysql.Exec(`DELETE FROM items WHERE id = ?`, item.ID)
	})

	require.NoError(t, env.stock.AddStock(ctx, inv.ID, item.ID, stock))
	return item.ID, inv.ID
}

func (env *testEnv) createOrder(t *testing.T, ctx context.Context, user domain.Session, itemID string, quantity int) string {
	t.Helper()

	order, err := env.orders.Create(ctx, user, "Paris", []service.OrderLineInput{
		{ItemID: itemID, Quantity: quantity},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		env.mysql.Exec(`DELETE FROM order_inventory_assignments WHERE order_id = ?`, order.ID)
		env.mysql.Exec(`DELETE FROM order_items WHERE order_id = ?`, order.ID)
		env.mysql.Exec(`DELETE FROM orders WHERE id = ?`, order.ID)
	})
	return order.ID
}

func (env *testEnv) stockOf(t *testing.T, ctx context.Context, inventoryID, itemID string) int {
	t.Helper()
	entry, err := env.stockStore.Get(ctx, inventoryID, itemID)
	require.NoError(t, err)
	require.NotNil(t, entry)
	return entry.Stock
}

func TestIntegration_OrderLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin, user := env.newSessions(t, ctx)
	itemID, inventoryID := env.seedCatalog(t, ctx, admin, 10)
	orderID := env.createOrder(t, ctx, user, itemID, 7)

	// The regular user sees the order with its allocation candidates.
	detail, err := env.orders.Get(ctx, user, orderID)
	require.NoError(t, err)
	require.Len(t, detail.LineDetails, 1)
	require.Len(t, detail.LineDetails[0].Candidates, 1)
	assert.Equal(t, 10, detail.LineDetails[0].Candidates[0].Stock)

	plan := []domain.Assignment{{ItemID: itemID, InventoryID: inventoryID, Quantity: 7}}
	require.NoError(t, env.orders.Validate(ctx, admin, orderID, plan))

	assert.Equal(t, 3, env.stockOf(t, ctx, inventoryID, itemID))

	order, err := env.orderStore.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateValidated, order.State)
	require.NotNil(t, order.ProcessedBy)
	assert.Equal(t, admin.UserID, *order.ProcessedBy)

	assignments, err := env.orders.Assignments(ctx, user, orderID)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, 7, assignments[0].Quantity)
	assert.Equal(t, inventoryID, assignments[0].InventoryID)

	// Validated is terminal.
	err = env.orders.Validate(ctx, admin, orderID, plan)
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyProcessed)
	err = env.orders.Decline(ctx, admin, orderID)
	assert.ErrorIs(t, err, domain.ErrOrderAlreadyProcessed)
	assert.Equal(t, 3, env.stockOf(t, ctx, inventoryID, itemID))
}

func TestIntegration_InsufficientStockLeavesEverythingUntouched(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin, user := env.newSessions(t, ctx)
	itemID, inventoryID := env.seedCatalog(t, ctx, admin, 5)
	orderID := env.createOrder(t, ctx, user, itemID, 8)

	err := env.orders.Validate(ctx, admin, orderID, []domain.Assignment{
		{ItemID: itemID, InventoryID: inventoryID, Quantity: 8},
	})
	require.ErrorIs(t, err, domain.ErrStockInsufficient)

	assert.Equal(t, 5, env.stockOf(t, ctx, inventoryID, itemID))

	order, err := env.orderStore.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatePending, order.State)

	assignments, err := env.orderStore.ListAssignments(ctx, orderID)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestIntegration_Decline(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin, user := env.newSessions(t, ctx)
	itemID, inventoryID := env.seedCatalog(t, ctx, admin, 10)
	orderID := env.createOrder(t, ctx, user, itemID, 4)

	require.NoError(t, env.orders.Decline(ctx, admin, orderID))

	order, err := env.orderStore.GetByID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStateDeclined, order.State)
	assert.Equal(t, 10, env.stockOf(t, ctx, inventoryID, itemID), "decline must not touch stock")
}

// Concurrent validations of the same order: the state guard in the
// allocation transaction lets exactly one through, and stock is
// decremented exactly once.
func TestIntegration_ConcurrentValidation(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	admin, user := env.newSessions(t, ctx)
	itemID, inventoryID := env.seedCatalog(t, ctx, admin, 10)
	orderID := env.createOrder(t, ctx, user, itemID, 3)

	plan := []domain.Assignment{{ItemID: itemID, InventoryID: inventoryID, Quantity: 3}}

	var wg sync.WaitGroup
	var successCount atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := env.orders.Validate(ctx, admin, orderID, plan); err == nil {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load())
	assert.Equal(t, 7, env.stockOf(t, ctx, inventoryID, itemID))
}
