package tests

import (
	"context"
	"testing"

	"github.com/code-payments/flipchat-iap-client/iap"
)

type ValidReceiptForProduct func(productID iap.ProductID) string

func RunGenericVerifierTests(t *testing.T, v iap.Verifier, productID iap.ProductID, validReceiptFunc ValidReceiptForProduct, teardown func()) {
	for _, testFunc := range []func(t *testing.T, v iap.Verifier, productID iap.ProductID, validReceiptFunc ValidReceiptForProduct){
		testValidReceipt,
		testInvalidReceipt,
	} {
		testFunc(t, v, productID, validReceiptFunc)
		teardown()
	}
}

func testValidReceipt(t *testing.T, v iap.Verifier, productID iap.ProductID, validReceiptFunc ValidReceiptForProduct) {
	ctx := context.Background()

	validReceipt := validReceiptFunc(productID)

	identifier, err := v.GetReceiptIdentifier(ctx, validReceipt)
	if err != nil {
		t.Fatalf("unexpected error getting identifier: %v", err)
	}
	if identifier == nil {
		t.Errorf("expected identifier to be non-nil")
	}

	valid, err := v.VerifyReceipt(ctx, productID, validReceipt)
	if err != nil {
		t.Fatalf("unexpected error verifying valid receipt: %v", err)
	}
	if !valid {
		t.Errorf("expected receipt to be valid, got invalid")
	}
}

func testInvalidReceipt(t *testing.T, v iap.Verifier, productID iap.ProductID, validReceiptFunc ValidReceiptForProduct) {
	ctx := context.Background()

	// Just use the word "invalid" as an invalid receipt.
	invalidReceipt := "invalid"

	valid, _ := v.VerifyReceipt(ctx, productID, invalidReceipt)
	if valid {
		t.Errorf("expected receipt to be invalid, got valid")
	}
}
