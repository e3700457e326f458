package android

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/api/androidpublisher/v3"

	"github.com/code-payments/flipchat-iap-client/iap"
)

// 1 is cancelled and 2 is pending.
const purchaseStatePurchased = 0

// Verifier uses the Google Play Developer API to verify purchase tokens.
type Verifier struct {
	svc         *androidpublisher.Service
	packageName string
}

func NewVerifier(svc *androidpublisher.Service, packageName string) iap.Verifier {
	return &Verifier{
		svc:         svc,
		packageName: packageName,
	}
}

// VerifyReceipt treats the receipt as a purchase token. Tokens the API does
// not know about are invalid; transport and server errors are returned so
// the transaction can be retried.
func (v *Verifier) VerifyReceipt(ctx context.Context, productID iap.ProductID, receipt string) (bool, error) {
	if receipt == "" {
		return false, nil
	}

	purchase, err := v.svc.Purchases.Products.Get(v.packageName, string(productID), receipt).Context(ctx).Do()
	if isUnknownToken(err) {
		return false, nil
	} else if err != nil {
		return false, errors.Wrap(err, "failed to get product purchase")
	}

	return purchase.PurchaseState == purchaseStatePurchased, nil
}

// GetReceiptIdentifier returns the purchase token, which uniquely identifies
// a Play purchase.
func (v *Verifier) GetReceiptIdentifier(ctx context.Context, receipt string) ([]byte, error) {
	if receipt == "" {
		return nil, iap.ErrInvalidReceipt
	}
	return []byte(receipt), nil
}
