package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daleelapp/daleel-server/internal/domain"
)

func TestSync_CreateBusinessAppendsLeaf(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)

	first := seedBusiness(t, ts, "Helena's Bakery", root.ID, "bakeries")
	second := seedBusiness(t, ts, "Corner Oven", root.ID, "bakeries")

	leaves := items(t, ts, root.ID, "bakeries")
	// Leaves append in creation order, not name order.
	assert.Equal(t, []string{first.ID, second.ID}, itemIDs(leaves))
	assert.Equal(t, "Helena's Bakery", leaves[0].Name)
}

func TestSync_RenameRefreshesLeafInPlace(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)

	first := seedBusiness(t, ts, "Helena's Bakery", root.ID, "bakeries")
	seedBusiness(t, ts, "Corner Oven", root.ID, "bakeries")

	name := "Helena's Fine Bakery"
	_, err := ts.registry.UpdateBusiness(context.Background(), first.ID, UpdateBusinessRequest{Name: &name})
	require.NoError(t, err)

	leaves := items(t, ts, root.ID, "bakeries")
	require.Len(t, leaves, 2)
	assert.Equal(t, first.ID, leaves[0].ID)
	assert.Equal(t, "Helena's Fine Bakery", leaves[0].Name)
}

func TestSync_RecategorizeMovesLeaf(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)

	b := seedBusiness(t, ts, "Helena's Bakery", root.ID, "bakeries")

	sub := "florists"
	_, err := ts.registry.UpdateBusiness(context.Background(), b.ID, UpdateBusinessRequest{SubcategoryID: &sub})
	require.NoError(t, err)

	assert.Empty(t, items(t, ts, root.ID, "bakeries"))
	assert.Equal(t, []string{b.ID}, itemIDs(items(t, ts, root.ID, "florists")))
}

func TestSync_UncategorizeRemovesLeaf(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)

	b := seedBusiness(t, ts, "Helena's Bakery", root.ID, "bakeries")

	empty := ""
	_, err := ts.registry.UpdateBusiness(context.Background(), b.ID, UpdateBusinessRequest{
		CategoryID:    &empty,
		SubcategoryID: &empty,
	})
	require.NoError(t, err)

	assert.Empty(t, items(t, ts, root.ID, "bakeries"))

	got, err := ts.registry.GetBusiness(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
}

func TestSync_DeleteBusinessRemovesLeaf(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)
	ctx := context.Background()

	b := seedBusiness(t, ts, "Helena's Bakery", root.ID, "bakeries")

	require.NoError(t, ts.registry.DeleteBusiness(ctx, b.ID))
	assert.Empty(t, items(t, ts, root.ID, "bakeries"))
}

func TestSync_DeleteBusinessWithMissingLeaf(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)
	ctx := context.Background()

	b := seedBusiness(t, ts, "Helena's Bakery", root.ID, "bakeries")

	// Simulate a previously failed compensating write: the leaf is
	// already gone from the tree.
	c, err := ts.store.GetCategory(ctx, root.ID)
	require.NoError(t, err)
	require.True(t, c.Subcategory("bakeries").RemoveItem(b.ID))
	require.NoError(t, ts.store.UpdateCategory(ctx, c))

	// Deleting the business still succeeds; leaf removal is a no-op.
	require.NoError(t, ts.registry.DeleteBusiness(ctx, b.ID))
	assert.Empty(t, items(t, ts, root.ID, "bakeries"))
}

func TestSync_SubcategoryDeleteClearsOnlySubAssignment(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)
	ctx := context.Background()

	b := seedBusiness(t, ts, "Helena's Bakery", root.ID, "bakeries")

	_, err := ts.taxonomy.DeleteSubcategory(ctx, root.ID, "bakeries")
	require.NoError(t, err)

	// The business survives with its root assignment intact.
	got, err := ts.registry.GetBusiness(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.CategoryID)
	assert.Empty(t, got.SubcategoryID)
}

func TestSync_RootDeleteClearsAssignments(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)
	ctx := context.Background()

	b := seedBusiness(t, ts, "Helena's Bakery", root.ID, "bakeries")

	require.NoError(t, ts.taxonomy.DeleteRoot(ctx, root.ID))

	got, err := ts.registry.GetBusiness(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID)
	assert.Empty(t, got.SubcategoryID)
}

func TestSync_ReconcileRepairsTamperedTree(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)
	ctx := context.Background()

	first := seedBusiness(t, ts, "Helena's Bakery", root.ID, "bakeries")
	second := seedBusiness(t, ts, "Corner Oven", root.ID, "bakeries")

	// Tamper with the tree directly: drop one real leaf, add a ghost,
	// and corrupt a denormalized name.
	c, err := ts.store.GetCategory(ctx, root.ID)
	require.NoError(t, err)
	sub := c.Subcategory("bakeries")
	require.True(t, sub.RemoveItem(second.ID))
	sub.UpsertItem(domain.Item{ID: "biz-ghost", Name: "Ghost"})
	sub.Item(first.ID).Name = "Wrong Name"
	require.NoError(t, ts.store.UpdateCategory(ctx, c))

	require.NoError(t, ts.sync.Reconcile(ctx, root.ID))

	leaves := items(t, ts, root.ID, "bakeries")
	assert.Equal(t, []string{first.ID, second.ID}, itemIDs(leaves))
	assert.Equal(t, "Helena's Bakery", leaves[0].Name)
}

func TestSync_ReconcileIsIdempotent(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)
	ctx := context.Background()

	seedBusiness(t, ts, "Helena's Bakery", root.ID, "bakeries")
	seedBusiness(t, ts, "Corner Oven", root.ID, "bakeries")
	seedBusiness(t, ts, "Petal Pushers", root.ID, "florists")

	require.NoError(t, ts.sync.Reconcile(ctx, root.ID))
	after, err := ts.store.GetCategory(ctx, root.ID)
	require.NoError(t, err)

	require.NoError(t, ts.sync.Reconcile(ctx, root.ID))
	again, err := ts.store.GetCategory(ctx, root.ID)
	require.NoError(t, err)

	// A consistent tree is left byte-for-byte alone: the second run does
	// not even bump the version.
	assert.Equal(t, after.Version, again.Version)
	assert.Equal(t, after.Subcategories, again.Subcategories)
}

func TestSync_ReconcilePreservesRelativeOrder(t *testing.T) {
	ts := setupTestServices(t)
	root := seedTree(t, ts)
	ctx := context.Background()

	first := seedBusiness(t, ts, "Zebra Cakes", root.ID, "bakeries")
	second := seedBusiness(t, ts, "Apple Tarts", root.ID, "bakeries")

	// Explicit curation: reverse of both creation and name order.
	_, err := ts.taxonomy.ReorderItems(ctx, root.ID, "bakeries", []string{second.ID, first.ID})
	require.NoError(t, err)

	// A business assigned behind the tree's back gets appended; the
	// curated order of existing leaves survives.
	third := seedBusiness(t, ts, "Midnight Buns", root.ID, "florists")
	moved, err := ts.store.GetBusiness(ctx, third.ID)
	require.NoError(t, err)
	moved.SubcategoryID = "bakeries"
	require.NoError(t, ts.store.UpdateBusiness(ctx, moved))

	require.NoError(t, ts.sync.Reconcile(ctx, root.ID))

	assert.Equal(t, []string{second.ID, first.ID, third.ID},
		itemIDs(items(t, ts, root.ID, "bakeries")))
	assert.Empty(t, items(t, ts, root.ID, "florists"))
}

func TestSync_ReconcileUnknownRoot(t *testing.T) {
	ts := setupTestServices(t)

	err := ts.sync.Reconcile(context.Background(), "missing")
	assert.Error(t, err)
}
