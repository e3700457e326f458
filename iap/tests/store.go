package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/flipchat-iap-client/iap"
)

func RunStoreTests(t *testing.T, s iap.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s iap.Store){
		testIapStore_HappyPath,
		testIapStore_Restored,
		testIapStore_Validation,
	} {
		tf(t, s)
		teardown()
	}
}

func testIapStore_HappyPath(t *testing.T, store iap.Store) {
	expected := &iap.Purchase{
		EntitlementKey: "txn-1",
		TransactionID:  "txn-1",
		ProductID:      "com.app.pro",
		ReceiptID:      []byte("receipt"),
		State:          iap.StateGranted,
		PurchasedAt:    time.Now().Add(-time.Minute).Truncate(time.Microsecond),
		CreatedAt:      time.Now(),
	}

	_, err := store.GetPurchase(context.Background(), expected.EntitlementKey)
	require.Equal(t, iap.ErrNotFound, err)

	require.NoError(t, store.CreatePurchase(context.Background(), expected))

	actual, err := store.GetPurchase(context.Background(), expected.EntitlementKey)
	require.NoError(t, err)
	require.Equal(t, expected.EntitlementKey, actual.EntitlementKey)
	require.Equal(t, expected.TransactionID, actual.TransactionID)
	require.Equal(t, expected.ProductID, actual.ProductID)
	require.Equal(t, expected.ReceiptID, actual.ReceiptID)
	require.Equal(t, expected.State, actual.State)
	require.True(t, expected.PurchasedAt.Equal(actual.PurchasedAt), "purchased at %s != %s", expected.PurchasedAt, actual.PurchasedAt)

	require.Equal(t, iap.ErrExists, store.CreatePurchase(context.Background(), expected))
}

func testIapStore_Restored(t *testing.T, store iap.Store) {
	restored := &iap.Purchase{
		EntitlementKey: "txn-original",
		TransactionID:  "txn-restore",
		ProductID:      "com.app.pro",
		State:          iap.StateRestored,
		CreatedAt:      time.Now(),
	}
	require.NoError(t, store.CreatePurchase(context.Background(), restored))

	actual, err := store.GetPurchase(context.Background(), "txn-original")
	require.NoError(t, err)
	require.Equal(t, "txn-restore", actual.TransactionID)
	require.Equal(t, iap.StateRestored, actual.State)
	require.Empty(t, actual.ReceiptID)
	require.True(t, actual.PurchasedAt.IsZero())

	_, err = store.GetPurchase(context.Background(), "txn-restore")
	require.Equal(t, iap.ErrNotFound, err)

	// A second grant under the same key, e.g. a later restore, is rejected.
	again := restored.Clone()
	again.TransactionID = "txn-restore-2"
	require.Equal(t, iap.ErrExists, store.CreatePurchase(context.Background(), again))
}

func testIapStore_Validation(t *testing.T, store iap.Store) {
	for _, invalid := range []*iap.Purchase{
		{TransactionID: "txn", ProductID: "com.app.pro", State: iap.StateGranted},
		{EntitlementKey: "txn", ProductID: "com.app.pro", State: iap.StateGranted},
		{EntitlementKey: "txn", TransactionID: "txn", State: iap.StateGranted},
		{EntitlementKey: "txn", TransactionID: "txn", ProductID: "com.app.pro"},
	} {
		require.Error(t, store.CreatePurchase(context.Background(), invalid))
	}

	_, err := store.GetPurchase(context.Background(), "txn")
	require.Equal(t, iap.ErrNotFound, err)
}
