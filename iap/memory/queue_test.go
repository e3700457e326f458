package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/code-payments/flipchat-iap-client/iap"
)

type recordingObserver struct {
	batches  [][]*iap.Transaction
	restored int
	failures []error
}

func (o *recordingObserver) OnTransactionsUpdated(txns []*iap.Transaction) {
	o.batches = append(o.batches, txns)
}

func (o *recordingObserver) OnRestoreCompleted() {
	o.restored++
}

func (o *recordingObserver) OnRestoreFailed(err error) {
	o.failures = append(o.failures, err)
}

func TestPaymentQueue(t *testing.T) {
	q := NewPaymentQueue()
	require.True(t, q.CanMakePayments())

	observer := &recordingObserver{}
	require.NoError(t, q.SetObserver(observer))
	require.ErrorIs(t, q.SetObserver(&recordingObserver{}), iap.ErrObserverRegistered)

	payment := &iap.Payment{ID: uuid.New(), ProductID: "com.app.pro", Quantity: 1}
	require.NoError(t, q.AddPayment(context.Background(), payment))
	require.Equal(t, []*iap.Payment{payment}, q.Payments())

	require.NoError(t, q.RestoreCompletedTransactions(context.Background()))
	require.Equal(t, 1, q.Restores())

	txn := &iap.Transaction{ID: "txn-1", ProductID: "com.app.pro", State: iap.TransactionStatePurchased}
	q.Deliver(txn)
	require.Len(t, observer.batches, 1)
	require.Equal(t, "txn-1", observer.batches[0][0].ID)

	require.NoError(t, q.FinishTransaction(context.Background(), txn))
	require.Equal(t, []string{"txn-1"}, q.Finished())

	q.CompleteRestore()
	q.FailRestore(errors.New("failed"))
	require.Equal(t, 1, observer.restored)
	require.Len(t, observer.failures, 1)

	q.SetFinishError(errors.New("gone"))
	require.Error(t, q.FinishTransaction(context.Background(), txn))
	require.Equal(t, []string{"txn-1"}, q.Finished())
}
