package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (ts *testServer) createBusiness(t *testing.T, name, rootID, subID string) BusinessResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/businesses", authHeader, map[string]any{
		"name":           name,
		"payment_method": "platform",
		"merchant_id":    "merch-1",
		"category_id":    rootID,
		"subcategory_id": subID,
	})
	require.Equal(t, http.StatusOK, resp.Code, "create business failed: %s", resp.Body.String())

	var b BusinessResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &b))
	return b
}

func TestCreateBusiness(t *testing.T) {
	ts := setupTestServer(t)
	root := ts.createCategory(t, "Local Businesses")
	ts.addSubcategory(t, root.ID, "Bakeries")

	b := ts.createBusiness(t, "Helena's Bakery", root.ID, "bakeries")
	assert.NotEmpty(t, b.ID)
	assert.Equal(t, "active", b.Status)
	assert.Equal(t, "bakeries", b.SubcategoryID)

	// The tree mirrors the new business.
	resp := ts.api.Get("/api/v1/categories/"+root.ID, authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	var c CategoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &c))
	require.Len(t, c.Subcategories[0].Items, 1)
	assert.Equal(t, b.ID, c.Subcategories[0].Items[0].ID)
	assert.Equal(t, "Helena's Bakery", c.Subcategories[0].Items[0].Name)
}

func TestCreateBusiness_MissingMerchantID(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/businesses", authHeader, map[string]any{
		"name":           "Helena's Bakery",
		"payment_method": "platform",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, resp.Body.String(), "MISSING_REQUIRED_FIELD")
}

func TestCreateBusiness_UnknownCategory(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/businesses", authHeader, map[string]any{
		"name":           "Helena's Bakery",
		"payment_method": "platform",
		"merchant_id":    "merch-1",
		"category_id":    "missing",
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateBusiness_Recategorize(t *testing.T) {
	ts := setupTestServer(t)
	root := ts.createCategory(t, "Local Businesses")
	ts.addSubcategory(t, root.ID, "Bakeries")
	ts.addSubcategory(t, root.ID, "Florists")
	b := ts.createBusiness(t, "Helena's Bakery", root.ID, "bakeries")

	resp := ts.api.Patch("/api/v1/businesses/"+b.ID, authHeader,
		map[string]any{"subcategory_id": "florists"})
	require.Equal(t, http.StatusOK, resp.Code)

	var c CategoryResponse
	getResp := ts.api.Get("/api/v1/categories/"+root.ID, authHeader)
	require.NoError(t, json.Unmarshal(getResp.Body.Bytes(), &c))
	assert.Empty(t, c.Subcategories[0].Items)
	require.Len(t, c.Subcategories[1].Items, 1)
	assert.Equal(t, b.ID, c.Subcategories[1].Items[0].ID)
}

func TestDeleteBusiness(t *testing.T) {
	ts := setupTestServer(t)
	root := ts.createCategory(t, "Local Businesses")
	ts.addSubcategory(t, root.ID, "Bakeries")
	b := ts.createBusiness(t, "Helena's Bakery", root.ID, "bakeries")

	resp := ts.api.Delete("/api/v1/businesses/"+b.ID, authHeader)
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/businesses/"+b.ID, authHeader)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// The leaf is gone too.
	var c CategoryResponse
	getResp := ts.api.Get("/api/v1/categories/"+root.ID, authHeader)
	require.NoError(t, json.Unmarshal(getResp.Body.Bytes(), &c))
	assert.Empty(t, c.Subcategories[0].Items)
}

func TestListCategoryBusinesses(t *testing.T) {
	ts := setupTestServer(t)
	root := ts.createCategory(t, "Local Businesses")
	ts.addSubcategory(t, root.ID, "Bakeries")
	ts.addSubcategory(t, root.ID, "Florists")
	ts.createBusiness(t, "Helena's Bakery", root.ID, "bakeries")
	ts.createBusiness(t, "Petal Pushers", root.ID, "florists")

	resp := ts.api.Get("/api/v1/categories/"+root.ID+"/businesses?subcategory=bakeries", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListBusinessesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Businesses, 1)
	assert.Equal(t, "Helena's Bakery", list.Businesses[0].Name)

	resp = ts.api.Get("/api/v1/categories/"+root.ID+"/businesses", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list.Businesses, 2)
}

func TestListBusinesses(t *testing.T) {
	ts := setupTestServer(t)
	ts.api.Post("/api/v1/businesses", authHeader, map[string]any{
		"name":           "Zebra Cakes",
		"payment_method": "platform",
		"merchant_id":    "merch-1",
	})
	ts.api.Post("/api/v1/businesses", authHeader, map[string]any{
		"name":           "Apple Tarts",
		"payment_method": "platform",
		"merchant_id":    "merch-2",
	})

	resp := ts.api.Get("/api/v1/businesses", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)

	var list ListBusinessesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	require.Len(t, list.Businesses, 2)
	assert.Equal(t, "Apple Tarts", list.Businesses[0].Name)
}
