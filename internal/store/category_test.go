package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daleelapp/daleel-server/internal/domain"
)

func newTestCategory(id, name string) *domain.Category {
	c := &domain.Category{
		ID:            id,
		Name:          name,
		Subcategories: []domain.Subcategory{},
	}
	c.InitTimestamps()
	return c
}

func TestStore_CreateAndGetCategory(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := newTestCategory("local-businesses", "LOCAL BUSINESSES")
	require.NoError(t, s.CreateCategory(ctx, c))
	assert.Equal(t, uint64(1), c.Version)

	got, err := s.GetCategory(ctx, "local-businesses")
	require.NoError(t, err)
	assert.Equal(t, "LOCAL BUSINESSES", got.Name)
	assert.Equal(t, uint64(1), got.Version)
}

func TestStore_CreateCategory_Duplicate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCategory(ctx, newTestCategory("food", "Food")))

	err := s.CreateCategory(ctx, newTestCategory("food", "Food Again"))
	assert.ErrorIs(t, err, ErrDuplicateCategory)
}

func TestStore_GetCategory_NotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetCategory(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestStore_ListCategories_SortedByName(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCategory(ctx, newTestCategory("services", "Services")))
	require.NoError(t, s.CreateCategory(ctx, newTestCategory("food", "Food")))

	list, err := s.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Food", list[0].Name)
	assert.Equal(t, "Services", list[1].Name)
}

func TestStore_UpdateCategory(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := newTestCategory("food", "Food")
	require.NoError(t, s.CreateCategory(ctx, c))

	c.Name = "Food & Drink"
	require.NoError(t, s.UpdateCategory(ctx, c))
	assert.Equal(t, uint64(2), c.Version)

	got, err := s.GetCategory(ctx, "food")
	require.NoError(t, err)
	assert.Equal(t, "Food & Drink", got.Name)
	assert.Equal(t, uint64(2), got.Version)
}

func TestStore_UpdateCategory_StaleVersion(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := newTestCategory("food", "Food")
	require.NoError(t, s.CreateCategory(ctx, c))

	// Two readers pick up version 1.
	first, err := s.GetCategory(ctx, "food")
	require.NoError(t, err)
	second, err := s.GetCategory(ctx, "food")
	require.NoError(t, err)

	first.Name = "Food & Drink"
	require.NoError(t, s.UpdateCategory(ctx, first))

	// The second write-back carries the stale version and is rejected.
	second.Name = "Groceries"
	err = s.UpdateCategory(ctx, second)
	assert.ErrorIs(t, err, ErrCategoryConflict)

	got, err := s.GetCategory(ctx, "food")
	require.NoError(t, err)
	assert.Equal(t, "Food & Drink", got.Name)
}

func TestStore_UpdateCategory_NotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.UpdateCategory(context.Background(), newTestCategory("missing", "Missing"))
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestStore_UpdateCategory_ChainedWrites(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	c := newTestCategory("food", "Food")
	require.NoError(t, s.CreateCategory(ctx, c))

	// The caller's copy tracks the stored version, so consecutive
	// write-backs of the same document succeed without a re-read.
	c.AddSubcategory(domain.Subcategory{ID: "bakeries", Name: "Bakeries"})
	require.NoError(t, s.UpdateCategory(ctx, c))
	c.AddSubcategory(domain.Subcategory{ID: "florists", Name: "Florists"})
	require.NoError(t, s.UpdateCategory(ctx, c))

	got, err := s.GetCategory(ctx, "food")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), got.Version)
	assert.Len(t, got.Subcategories, 2)
}

func TestStore_DeleteCategory(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateCategory(ctx, newTestCategory("food", "Food")))
	require.NoError(t, s.DeleteCategory(ctx, "food"))

	_, err := s.GetCategory(ctx, "food")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	assert.ErrorIs(t, s.DeleteCategory(ctx, "food"), ErrCategoryNotFound)
}
