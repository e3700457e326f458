package iap

import (
	"context"
	"errors"
	"time"
)

var (
	ErrExists   = errors.New("entitlement already exists")
	ErrNotFound = errors.New("entitlement not found")
)

type State uint8

const (
	StateUnknown State = iota
	StateGranted
	StateRestored
)

func (s State) String() string {
	switch s {
	case StateGranted:
		return "granted"
	case StateRestored:
		return "restored"
	default:
		return "unknown"
	}
}

// Purchase is the durable record of a granted entitlement. It exists so that a
// transaction delivered again after a relaunch is not granted twice.
type Purchase struct {
	// EntitlementKey is the Transaction.EntitlementKey of the granting
	// transaction.
	EntitlementKey string
	TransactionID  string
	ProductID      ProductID
	ReceiptID      []byte
	State          State

	// PurchasedAt is the payment queue's transaction date. It is zero when
	// the queue did not report one.
	PurchasedAt time.Time
	CreatedAt   time.Time
}

// Store persists granted entitlements, keyed by entitlement key.
type Store interface {
	// CreatePurchase records a grant. ErrExists is returned if the key was
	// already granted.
	CreatePurchase(ctx context.Context, purchase *Purchase) error

	// GetPurchase returns the grant for an entitlement key, or ErrNotFound.
	GetPurchase(ctx context.Context, entitlementKey string) (*Purchase, error)
}

func (p *Purchase) Clone() *Purchase {
	var receiptID []byte
	if p.ReceiptID != nil {
		receiptID = make([]byte, len(p.ReceiptID))
		copy(receiptID, p.ReceiptID)
	}

	return &Purchase{
		EntitlementKey: p.EntitlementKey,
		TransactionID:  p.TransactionID,
		ProductID:      p.ProductID,
		ReceiptID:      receiptID,
		State:          p.State,
		PurchasedAt:    p.PurchasedAt,
		CreatedAt:      p.CreatedAt,
	}
}

// Validate checks the fields every Store implementation requires.
func (p *Purchase) Validate() error {
	if p.EntitlementKey == "" {
		return errors.New("entitlement key is required")
	}
	if p.TransactionID == "" {
		return errors.New("transaction id is required")
	}
	if p.ProductID == "" {
		return errors.New("product id is required")
	}
	if p.State != StateGranted && p.State != StateRestored {
		return errors.New("state must be granted or restored")
	}
	return nil
}
