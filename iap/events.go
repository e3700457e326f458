package iap

// Event is delivered to the application by a Client. The concrete types are
// the exhaustive set of events a Client emits.
type Event interface {
	isEvent()
}

// ProductsResolved carries the result of a successful product lookup. Both
// slices follow the order the ids were requested in.
type ProductsResolved struct {
	Products   []*Product
	InvalidIDs []ProductID
}

type ProductsRequestFailed struct {
	Err *CatalogError
}

// ProductsRequestCompleted follows every ProductsResolved or
// ProductsRequestFailed.
type ProductsRequestCompleted struct {
	ProductIDs []ProductID
}

// PurchaseUpdated reports a transaction that moved to purchasing, deferred,
// purchased or restored. For the latter two the entitlement has already been
// recorded and the transaction finished.
type PurchaseUpdated struct {
	Txn *Transaction
}

type PurchasesRestored struct{}

type RestoreFailed struct {
	Err error
}

// PurchaseFailed reports a transaction that did not produce an entitlement.
// Err is a *PurchaseError or *UnknownStateError.
type PurchaseFailed struct {
	Txn *Transaction
	Err error
}

func (ProductsResolved) isEvent()         {}
func (ProductsRequestFailed) isEvent()    {}
func (ProductsRequestCompleted) isEvent() {}
func (PurchaseUpdated) isEvent()          {}
func (PurchasesRestored) isEvent()        {}
func (RestoreFailed) isEvent()            {}
func (PurchaseFailed) isEvent()           {}
