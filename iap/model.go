package iap

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductID uniquely names a purchasable item in the store catalog.
type ProductID string

type Product struct {
	ID          ProductID
	Title       string
	Description string

	// DisplayPrice is the localized price string as supplied by the catalog,
	// e.g. "$4.99".
	DisplayPrice string

	// Price and Currency are populated when the catalog reports a machine
	// readable amount. Price is zero otherwise.
	Price    decimal.Decimal
	Currency string
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	cloned := *p
	return &cloned
}

type TransactionState int

const (
	TransactionStatePurchasing TransactionState = iota
	TransactionStatePurchased
	TransactionStateFailed
	TransactionStateRestored
	TransactionStateDeferred
)

// Known reports whether s is a state this package knows how to dispatch.
// Payment queues may deliver values added by newer platform versions.
func (s TransactionState) Known() bool {
	return s >= TransactionStatePurchasing && s <= TransactionStateDeferred
}

// Terminal reports whether a transaction in state s must be finished.
func (s TransactionState) Terminal() bool {
	switch s {
	case TransactionStatePurchased, TransactionStateFailed, TransactionStateRestored:
		return true
	default:
		return false
	}
}

func (s TransactionState) String() string {
	switch s {
	case TransactionStatePurchasing:
		return "purchasing"
	case TransactionStatePurchased:
		return "purchased"
	case TransactionStateFailed:
		return "failed"
	case TransactionStateRestored:
		return "restored"
	case TransactionStateDeferred:
		return "deferred"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Payment is a purchase intent submitted to the payment queue.
type Payment struct {
	ID        uuid.UUID
	ProductID ProductID
	Quantity  int
}

type Transaction struct {
	ID string

	// OriginalID is set for restored transactions and names the transaction
	// that originally bought the item.
	OriginalID string

	ProductID ProductID
	PaymentID uuid.UUID
	State     TransactionState

	// Receipt is the opaque receipt payload, if the payment queue supplies one.
	Receipt string

	// Err is the failure reported by the payment queue for failed transactions.
	// ErrPaymentCancelled marks a user cancellation.
	Err error

	// Date is when the payment queue recorded the transaction. It is stored
	// as the entitlement's purchase time.
	Date time.Time
}

// EntitlementKey is the identifier grants are keyed by. Restores of an item
// share the key of the purchase that originally bought it.
func (t *Transaction) EntitlementKey() string {
	if t.OriginalID != "" {
		return t.OriginalID
	}
	return t.ID
}

func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	cloned := *t
	return &cloned
}
