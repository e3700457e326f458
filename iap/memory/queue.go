package memory

import (
	"context"
	"sync"

	"github.com/code-payments/flipchat-iap-client/iap"
)

// PaymentQueue is an iap.PaymentQueue that records what it is asked to do and
// lets callers deliver transaction updates by hand. It does not process
// payments.
type PaymentQueue struct {
	mu sync.Mutex

	observer        iap.TransactionObserver
	canMakePayments bool

	payments []*iap.Payment
	restores int
	finished []string

	addErr     error
	restoreErr error
	finishErr  error
}

func NewPaymentQueue() *PaymentQueue {
	return &PaymentQueue{canMakePayments: true}
}

func (q *PaymentQueue) SetCanMakePayments(allowed bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.canMakePayments = allowed
}

func (q *PaymentQueue) SetAddPaymentError(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.addErr = err
}

func (q *PaymentQueue) SetRestoreError(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.restoreErr = err
}

func (q *PaymentQueue) SetFinishError(err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.finishErr = err
}

func (q *PaymentQueue) CanMakePayments() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.canMakePayments
}

func (q *PaymentQueue) SetObserver(o iap.TransactionObserver) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.observer != nil {
		return iap.ErrObserverRegistered
	}
	q.observer = o
	return nil
}

func (q *PaymentQueue) AddPayment(_ context.Context, payment *iap.Payment) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.addErr != nil {
		return q.addErr
	}

	cloned := *payment
	q.payments = append(q.payments, &cloned)
	return nil
}

func (q *PaymentQueue) RestoreCompletedTransactions(_ context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.restoreErr != nil {
		return q.restoreErr
	}

	q.restores++
	return nil
}

func (q *PaymentQueue) FinishTransaction(_ context.Context, txn *iap.Transaction) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.finishErr != nil {
		return q.finishErr
	}

	q.finished = append(q.finished, txn.ID)
	return nil
}

// Deliver hands a batch of transaction updates to the observer.
func (q *PaymentQueue) Deliver(txns ...*iap.Transaction) {
	if o := q.getObserver(); o != nil {
		o.OnTransactionsUpdated(txns)
	}
}

func (q *PaymentQueue) CompleteRestore() {
	if o := q.getObserver(); o != nil {
		o.OnRestoreCompleted()
	}
}

func (q *PaymentQueue) FailRestore(err error) {
	if o := q.getObserver(); o != nil {
		o.OnRestoreFailed(err)
	}
}

func (q *PaymentQueue) Payments() []*iap.Payment {
	q.mu.Lock()
	defer q.mu.Unlock()

	result := make([]*iap.Payment, len(q.payments))
	for i, p := range q.payments {
		cloned := *p
		result[i] = &cloned
	}
	return result
}

func (q *PaymentQueue) Restores() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.restores
}

// Finished returns the ids of finished transactions in finish order.
func (q *PaymentQueue) Finished() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	return append([]string(nil), q.finished...)
}

func (q *PaymentQueue) getObserver() iap.TransactionObserver {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.observer
}
