package iap

import (
	"errors"
	"fmt"
)

var (
	ErrPaymentsNotAllowed = errors.New("payments are not allowed on this device")
	ErrConfigMissing      = errors.New("product id configuration is missing")
	ErrConfigMalformed    = errors.New("product id configuration is malformed")

	ErrNoProductIDs       = errors.New("no product ids requested")
	ErrRequestInProgress  = errors.New("a product request is already in progress")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrObserverRegistered = errors.New("payment queue already has an observer")
	ErrClientClosed       = errors.New("purchase client is closed")

	ErrPaymentCancelled = errors.New("payment cancelled by user")
	ErrInvalidReceipt   = errors.New("invalid receipt")
)

// CatalogError is delivered when a product lookup could not be completed. It
// is safe to retry.
type CatalogError struct {
	ProductIDs []ProductID
	Err        error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("product lookup for %d product(s) failed: %v", len(e.ProductIDs), e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// PurchaseError reports a transaction that did not result in an entitlement.
//
// Cancelled is set when the user backed out of the payment; applications
// usually should not present that case as an error.
type PurchaseError struct {
	TransactionID string
	ProductID     ProductID
	Cancelled     bool
	Err           error
}

func (e *PurchaseError) Error() string {
	if e.Cancelled {
		return fmt.Sprintf("purchase of %s cancelled", e.ProductID)
	}
	return fmt.Sprintf("purchase of %s failed (transaction %s): %v", e.ProductID, e.TransactionID, e.Err)
}

func (e *PurchaseError) Unwrap() error {
	return e.Err
}

// UnknownStateError is reported for transactions in a state this package
// does not recognize. The transaction is left in the queue.
type UnknownStateError struct {
	TransactionID string
	State         TransactionState
}

func (e *UnknownStateError) Error() string {
	return fmt.Sprintf("transaction %s has unrecognized state %s", e.TransactionID, e.State)
}
