package iap

import "context"

// PaymentQueue is the platform queue that processes payments and delivers
// transaction updates for the whole process, including transactions started
// on other devices.
type PaymentQueue interface {
	// CanMakePayments reports whether the device or account may pay.
	CanMakePayments() bool

	// SetObserver registers the queue's single observer. ErrObserverRegistered
	// is returned if one is already set.
	SetObserver(o TransactionObserver) error

	AddPayment(ctx context.Context, payment *Payment) error
	RestoreCompletedTransactions(ctx context.Context) error

	// FinishTransaction removes a terminal transaction from the queue.
	// Unfinished transactions are delivered again on the next launch.
	FinishTransaction(ctx context.Context, txn *Transaction) error
}

// TransactionObserver receives updates from a PaymentQueue. Implementations
// must return promptly.
type TransactionObserver interface {
	OnTransactionsUpdated(txns []*Transaction)
	OnRestoreCompleted()
	OnRestoreFailed(err error)
}
