package android

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/androidpublisher/v3"

	"github.com/code-payments/flipchat-iap-client/iap"
	"github.com/code-payments/flipchat-iap-client/iap/tests"
)

func TestCatalog(t *testing.T) {
	play := newFakePlay()
	play.products["com.app.pro"] = &androidpublisher.InAppProduct{
		Sku:             "com.app.pro",
		Status:          "active",
		DefaultLanguage: "en-US",
		DefaultPrice:    &androidpublisher.Price{PriceMicros: "1990000", Currency: "USD"},
		Listings: map[string]androidpublisher.InAppProductListing{
			"en-US": {Title: "Pro", Description: "Unlocks everything"},
		},
	}
	play.products["com.app.coins"] = &androidpublisher.InAppProduct{
		Sku:             "com.app.coins",
		Status:          "active",
		DefaultLanguage: "fr-FR",
		DefaultPrice:    &androidpublisher.Price{PriceMicros: "990000", Currency: "EUR"},
		Listings: map[string]androidpublisher.InAppProductListing{
			"fr-FR": {Title: "Pièces", Description: "Un paquet de pièces"},
		},
	}

	known := []*iap.Product{
		{
			ID:          "com.app.pro",
			Title:       "Pro",
			Description: "Unlocks everything",
			Price:       decimal.RequireFromString("1.99"),
			Currency:    "USD",
		},
		{
			ID:          "com.app.coins",
			Title:       "Pièces",
			Description: "Un paquet de pièces",
			Price:       decimal.RequireFromString("0.99"),
			Currency:    "EUR",
		},
	}

	catalog := NewCatalog(zaptest.NewLogger(t), newTestService(t, play), testPackageName, "en-US")
	tests.RunCatalogTests(t, catalog, known, func() {})
}

func TestCatalog_DisplayPrice(t *testing.T) {
	play := newFakePlay()
	play.products["com.app.coins"] = &androidpublisher.InAppProduct{
		Sku:             "com.app.coins",
		Status:          "active",
		DefaultLanguage: "en-US",
		DefaultPrice:    &androidpublisher.Price{PriceMicros: "4500000", Currency: "CAD"},
		Listings: map[string]androidpublisher.InAppProductListing{
			"en-US": {Title: "Coins"},
		},
	}

	catalog := NewCatalog(zaptest.NewLogger(t), newTestService(t, play), testPackageName, "en-US")
	resp, err := catalog.LookupProducts(context.Background(), []iap.ProductID{"com.app.coins"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	require.Equal(t, "4.50 CAD", resp.Products[0].DisplayPrice)
}

func TestCatalog_Inactive(t *testing.T) {
	play := newFakePlay()
	play.products["com.app.old"] = &androidpublisher.InAppProduct{
		Sku:          "com.app.old",
		Status:       "inactive",
		DefaultPrice: &androidpublisher.Price{PriceMicros: "990000", Currency: "USD"},
	}

	catalog := NewCatalog(zaptest.NewLogger(t), newTestService(t, play), testPackageName, "en-US")
	resp, err := catalog.LookupProducts(context.Background(), []iap.ProductID{"com.app.old"})
	require.NoError(t, err)
	require.Empty(t, resp.Products)
	require.Equal(t, []iap.ProductID{"com.app.old"}, resp.InvalidIDs)
}

func TestCatalog_ServerError(t *testing.T) {
	play := newFakePlay()
	play.failWith = http.StatusInternalServerError

	catalog := NewCatalog(zaptest.NewLogger(t), newTestService(t, play), testPackageName, "en-US")
	_, err := catalog.LookupProducts(context.Background(), []iap.ProductID{"com.app.coins"})
	require.Error(t, err)
}

func TestCatalog_BadRequest(t *testing.T) {
	play := newFakePlay()
	play.failWith = http.StatusBadRequest

	catalog := NewCatalog(zaptest.NewLogger(t), newTestService(t, play), testPackageName, "en-US")
	_, err := catalog.LookupProducts(context.Background(), []iap.ProductID{"com.app.coins", "com.app.gems"})
	require.Error(t, err)
}
