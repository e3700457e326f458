package iap

import "context"

type Verifier interface {

	// VerifyReceipt takes a transaction receipt (for Google Play a purchase
	// token, for memory a signed payload) and determines if it is valid for the
	// given product.
	VerifyReceipt(ctx context.Context, productID ProductID, receipt string) (bool, error)

	// GetReceiptIdentifier takes a receipt and returns a stable identifier for
	// it, recorded alongside the granted entitlement.
	GetReceiptIdentifier(ctx context.Context, receipt string) ([]byte, error)
}
