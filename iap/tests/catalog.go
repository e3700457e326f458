package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/flipchat-iap-client/iap"
)

// RunCatalogTests exercises a catalog that knows exactly the products in
// known and nothing else.
func RunCatalogTests(t *testing.T, c iap.Catalog, known []*iap.Product, teardown func()) {
	for _, tf := range []func(t *testing.T, c iap.Catalog, known []*iap.Product){
		testCatalog_Resolved,
		testCatalog_Invalid,
		testCatalog_Mixed,
	} {
		tf(t, c, known)
		teardown()
	}
}

func testCatalog_Resolved(t *testing.T, c iap.Catalog, known []*iap.Product) {
	ids := make([]iap.ProductID, len(known))
	for i, p := range known {
		ids[i] = p.ID
	}

	resp, err := c.LookupProducts(context.Background(), ids)
	require.NoError(t, err)
	require.Empty(t, resp.InvalidIDs)
	require.Len(t, resp.Products, len(known))

	byID := map[iap.ProductID]*iap.Product{}
	for _, p := range resp.Products {
		byID[p.ID] = p
	}
	for _, expected := range known {
		actual, ok := byID[expected.ID]
		require.True(t, ok, "missing %s", expected.ID)
		require.Equal(t, expected.Title, actual.Title)
		require.Equal(t, expected.Description, actual.Description)
		require.Equal(t, expected.Currency, actual.Currency)
		require.True(t, expected.Price.Equal(actual.Price), "price %s != %s", expected.Price, actual.Price)
	}
}

func testCatalog_Invalid(t *testing.T, c iap.Catalog, _ []*iap.Product) {
	resp, err := c.LookupProducts(context.Background(), []iap.ProductID{"com.app.unknown"})
	require.NoError(t, err)
	require.Empty(t, resp.Products)
	require.Equal(t, []iap.ProductID{"com.app.unknown"}, resp.InvalidIDs)
}

func testCatalog_Mixed(t *testing.T, c iap.Catalog, known []*iap.Product) {
	require.NotEmpty(t, known)

	resp, err := c.LookupProducts(context.Background(), []iap.ProductID{"com.app.unknown", known[0].ID})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	require.Equal(t, known[0].ID, resp.Products[0].ID)
	require.Equal(t, []iap.ProductID{"com.app.unknown"}, resp.InvalidIDs)
}
