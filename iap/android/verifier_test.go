package android

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/androidpublisher/v3"

	"github.com/code-payments/flipchat-iap-client/iap"
	"github.com/code-payments/flipchat-iap-client/iap/tests"
)

const testPurchaseToken = "gcjkgkiehhchodpancdfjgfo.AO-J1OyEz6mLitFxK7gDOBN0iv4_9f5Xc6dIAdK_tLj2SGi9msJz"

func TestVerifier(t *testing.T) {
	play := newFakePlay()
	play.purchases["com.app.pro/"+testPurchaseToken] = &androidpublisher.ProductPurchase{
		PurchaseState: 0,
	}

	verifier := NewVerifier(newTestService(t, play), testPackageName)

	validReceiptFunc := func(_ iap.ProductID) string {
		return testPurchaseToken
	}

	tests.RunGenericVerifierTests(t, verifier, "com.app.pro", validReceiptFunc, func() {})
}

func TestVerifier_NotPurchased(t *testing.T) {
	play := newFakePlay()
	play.purchases["com.app.coins/pending-token"] = &androidpublisher.ProductPurchase{PurchaseState: 2}
	play.purchases["com.app.coins/cancelled-token"] = &androidpublisher.ProductPurchase{PurchaseState: 1}

	verifier := NewVerifier(newTestService(t, play), testPackageName)

	for _, token := range []string{"pending-token", "cancelled-token"} {
		valid, err := verifier.VerifyReceipt(context.Background(), "com.app.coins", token)
		require.NoError(t, err)
		require.False(t, valid, token)
	}
}

func TestVerifier_WrongProduct(t *testing.T) {
	play := newFakePlay()
	play.purchases["com.app.coins/"+testPurchaseToken] = &androidpublisher.ProductPurchase{}

	verifier := NewVerifier(newTestService(t, play), testPackageName)

	valid, err := verifier.VerifyReceipt(context.Background(), "com.app.gems", testPurchaseToken)
	require.NoError(t, err)
	require.False(t, valid)
}

func TestVerifier_ServerError(t *testing.T) {
	play := newFakePlay()
	play.failWith = http.StatusInternalServerError

	verifier := NewVerifier(newTestService(t, play), testPackageName)

	_, err := verifier.VerifyReceipt(context.Background(), "com.app.coins", testPurchaseToken)
	require.Error(t, err)
}

func TestVerifier_EmptyReceipt(t *testing.T) {
	verifier := NewVerifier(newTestService(t, newFakePlay()), testPackageName)

	valid, err := verifier.VerifyReceipt(context.Background(), "com.app.coins", "")
	require.NoError(t, err)
	require.False(t, valid)

	_, err = verifier.GetReceiptIdentifier(context.Background(), "")
	require.ErrorIs(t, err, iap.ErrInvalidReceipt)
}

func TestVerifier_RejectedToken(t *testing.T) {
	for _, code := range []int{http.StatusBadRequest, http.StatusNotFound, http.StatusGone} {
		play := newFakePlay()
		play.failWith = code

		verifier := NewVerifier(newTestService(t, play), testPackageName)

		valid, err := verifier.VerifyReceipt(context.Background(), "com.app.coins", testPurchaseToken)
		require.NoError(t, err, code)
		require.False(t, valid, code)
	}
}
