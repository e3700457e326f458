package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/code-payments/flipchat-iap-client/iap"
	"github.com/code-payments/flipchat-iap-client/iap/memory"
	"github.com/code-payments/flipchat-iap-client/iap/tests"
)

func TestIap_CacheStore(t *testing.T) {
	testStore := NewInCache(memory.NewInMemory(), time.Minute).(*Cache)
	defer testStore.Close()

	teardown := func() {
		testStore.db = memory.NewInMemory()
		testStore.reset()
	}
	tests.RunStoreTests(t, testStore, teardown)
}

func TestIap_CacheStore_ReadThrough(t *testing.T) {
	db := memory.NewInMemory()
	store := NewInCache(db, time.Minute)
	defer store.(*Cache).Close()

	_, err := store.GetPurchase(context.Background(), "txn-1")
	require.ErrorIs(t, err, iap.ErrNotFound)

	// Written behind the cache's back; the earlier miss was not cached.
	require.NoError(t, db.CreatePurchase(context.Background(), &iap.Purchase{
		EntitlementKey: "txn-1",
		TransactionID:  "txn-1",
		ProductID:      "com.app.pro",
		State:          iap.StateGranted,
		CreatedAt:      time.Now(),
	}))

	purchase, err := store.GetPurchase(context.Background(), "txn-1")
	require.NoError(t, err)
	require.Equal(t, "txn-1", purchase.TransactionID)

	// Mutating the returned value does not leak into the cache.
	purchase.TransactionID = "mutated"
	purchase, err = store.GetPurchase(context.Background(), "txn-1")
	require.NoError(t, err)
	require.Equal(t, "txn-1", purchase.TransactionID)
}
