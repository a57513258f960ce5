package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daleelapp/daleel-server/internal/domain"
	"github.com/daleelapp/daleel-server/internal/store"
)

// testServices bundles the service layer over a shared temp-dir store.
type testServices struct {
	store    *store.Store
	sync     *SyncService
	taxonomy *TaxonomyService
	registry *RegistryService
}

func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	s, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	syncService := NewSyncService(s, logger)

	return &testServices{
		store:    s,
		sync:     syncService,
		taxonomy: NewTaxonomyService(s, syncService, logger),
		registry: NewRegistryService(s, syncService, logger),
	}
}

// seedTree creates a root with two subcategories through the service layer.
func seedTree(t *testing.T, ts *testServices) *domain.Category {
	t.Helper()
	ctx := context.Background()

	root, err := ts.taxonomy.CreateRoot(ctx, CreateRootRequest{Name: "Local Businesses"})
	require.NoError(t, err)

	_, err = ts.taxonomy.AddSubcategory(ctx, root.ID, AddSubcategoryRequest{Name: "Bakeries"})
	require.NoError(t, err)
	root, err = ts.taxonomy.AddSubcategory(ctx, root.ID, AddSubcategoryRequest{Name: "Florists"})
	require.NoError(t, err)

	return root
}

// seedBusiness creates a categorized business through the service layer.
func seedBusiness(t *testing.T, ts *testServices, name, rootID, subID string) *domain.Business {
	t.Helper()

	b, err := ts.registry.CreateBusiness(context.Background(), CreateBusinessRequest{
		Name:          name,
		PaymentMethod: "platform",
		MerchantID:    "merch-1",
		CategoryID:    rootID,
		SubcategoryID: subID,
	})
	require.NoError(t, err)
	return b
}

// items returns the leaf list of a subcategory, re-read from the store.
func items(t *testing.T, ts *testServices, rootID, subID string) []domain.Item {
	t.Helper()

	c, err := ts.store.GetCategory(context.Background(), rootID)
	require.NoError(t, err)
	sub := c.Subcategory(subID)
	require.NotNil(t, sub)
	return sub.Items
}

func itemIDs(list []domain.Item) []string {
	ids := make([]string, len(list))
	for i, item := range list {
		ids[i] = item.ID
	}
	return ids
}
