package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ldelacroix/stockroom/internal/core/domain"
)

func strPtr(s string) *string { return &s }

func TestDeleteItem_HiddenFromListings(t *testing.T) {
	items := newMemItemRepo()
	svc := NewCatalogService(items, newMemInventoryRepo())
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, userSession, ItemInput{Name: "casserole", Description: strPtr("inox")})
	require.NoError(t, err)

	listed, err := svc.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, svc.DeleteItem(ctx, adminSession, item.ID))

	listed, err = svc.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed, "deleted items must drop out of listings")

	// The row survives the delete: GetItem still resolves it for
	// historical references.
	got, err := svc.GetItem(ctx, item.ID)
	require.NoError(t, err)
	assert.True(t, got.Deleted())
	require.NotNil(t, got.DeletedBy)
	assert.Equal(t, adminSession.UserID, *got.DeletedBy)

	// But it is gone as a mutation target.
	require.ErrorIs(t, svc.DeleteItem(ctx, adminSession, item.ID), domain.ErrNotFound)
	_, err = svc.UpdateItem(ctx, adminSession, item.ID, ItemInput{Name: "poêle"})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeletedItem_HistoricalOrderStillResolves(t *testing.T) {
	orders := newMemOrderRepo()
	items := newMemItemRepo("item-x")
	seedOrder(orders, 7, map[string]int{stockKey("inv-a", "item-x"): 10})

	catalog := NewCatalogService(items, newMemInventoryRepo())
	orderSvc := NewOrderService(orders, items)
	ctx := context.Background()

	require.NoError(t, catalog.DeleteItem(ctx, adminSession, "item-x"))

	// The existing order still reads back with its item.
	detail, err := orderSvc.Get(ctx, userSession, "order-1")
	require.NoError(t, err)
	require.Len(t, detail.LineDetails, 1)
	assert.Equal(t, "item-x", detail.LineDetails[0].Item.ID)
	assert.True(t, detail.LineDetails[0].Item.Deleted())

	// New orders may not reference it.
	_, err = orderSvc.Create(ctx, userSession, "Lyon", []OrderLineInput{{ItemID: "item-x", Quantity: 1}})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateItem_PartialBody(t *testing.T) {
	items := newMemItemRepo()
	svc := NewCatalogService(items, newMemInventoryRepo())
	ctx := context.Background()

	item, err := svc.CreateItem(ctx, userSession, ItemInput{Name: "casserole", Description: strPtr("inox")})
	require.NoError(t, err)

	// A body without a description leaves the stored one alone.
	updated, err := svc.UpdateItem(ctx, userSession, item.ID, ItemInput{Name: "casserole 24cm"})
	require.NoError(t, err)
	assert.Equal(t, "casserole 24cm", updated.Name)
	assert.Equal(t, "inox", updated.Description)

	// An explicit description, even empty, overwrites.
	updated, err = svc.UpdateItem(ctx, userSession, item.ID, ItemInput{Description: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "casserole 24cm", updated.Name, "empty name means keep")
	assert.Equal(t, "", updated.Description)
}

func TestCreateItem_Defaults(t *testing.T) {
	svc := NewCatalogService(newMemItemRepo(), newMemInventoryRepo())
	ctx := context.Background()

	_, err := svc.CreateItem(ctx, userSession, ItemInput{})
	require.ErrorIs(t, err, ErrInvalidInput)

	item, err := svc.CreateItem(ctx, userSession, ItemInput{Name: "casserole"})
	require.NoError(t, err)
	assert.Equal(t, "", item.Description)
	assert.JSONEq(t, "{}", string(item.Metadata))
	assert.Equal(t, userSession.UserID, item.CreatedBy)
}
