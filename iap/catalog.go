package iap

import "context"

type CatalogResponse struct {
	Products   []*Product
	InvalidIDs []ProductID
}

// Catalog is the store's product metadata service.
type Catalog interface {
	// LookupProducts resolves ids. Unknown ids are reported in InvalidIDs and
	// are not an error.
	LookupProducts(ctx context.Context, ids []ProductID) (*CatalogResponse, error)
}

// ProductIDSource provides the statically configured product ids.
type ProductIDSource interface {
	// ProductIDs returns the configured ids in order. Errors match
	// ErrConfigMissing or ErrConfigMalformed.
	ProductIDs() ([]ProductID, error)
}

// ProductIDSourceFunc is an adapter to allow the use of ordinary functions as
// a ProductIDSource.
type ProductIDSourceFunc func() ([]ProductID, error)

func (f ProductIDSourceFunc) ProductIDs() ([]ProductID, error) {
	return f()
}

// Fulfiller unlocks purchased content on behalf of the application. It is
// called at most once per entitlement key in normal operation, but must be
// idempotent: a crash between Fulfill and the ledger write causes a repeat.
type Fulfiller interface {
	Fulfill(ctx context.Context, txn *Transaction) error
}

type FulfillerFunc func(ctx context.Context, txn *Transaction) error

func (f FulfillerFunc) Fulfill(ctx context.Context, txn *Transaction) error {
	return f(ctx, txn)
}

type noopFulfiller struct{}

func (noopFulfiller) Fulfill(context.Context, *Transaction) error {
	return nil
}
