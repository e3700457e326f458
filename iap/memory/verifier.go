package memory

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/code-payments/flipchat-iap-client/iap"
)

// MemoryVerifier checks an ed25519 signature over the product id. A receipt
// has the form base64(signature)|productID.
type MemoryVerifier struct {
	publicKey ed25519.PublicKey
}

func NewMemoryVerifier(pubKey ed25519.PublicKey) iap.Verifier {
	return &MemoryVerifier{publicKey: pubKey}
}

func (m *MemoryVerifier) VerifyReceipt(_ context.Context, productID iap.ProductID, receipt string) (bool, error) {
	signature, message, err := parseReceipt(receipt)
	if err != nil {
		// Malformed receipts are invalid, not a verification failure.
		return false, nil
	}

	if string(message) != string(productID) {
		return false, nil
	}

	return ed25519.Verify(m.publicKey, message, signature), nil
}

func (m *MemoryVerifier) GetReceiptIdentifier(_ context.Context, receipt string) ([]byte, error) {
	signature, _, err := parseReceipt(receipt)
	if err != nil {
		return nil, err
	}

	return signature, nil
}

func GenerateKeyPair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	return ed25519.GenerateKey(rand.Reader)
}

func GenerateValidReceipt(owner ed25519.PrivateKey, productID iap.ProductID) string {
	signature := ed25519.Sign(owner, []byte(productID))
	return base64.StdEncoding.EncodeToString(signature) + "|" + string(productID)
}

func parseReceipt(receipt string) (signature []byte, message []byte, err error) {
	parts := strings.SplitN(receipt, "|", 2)
	if len(parts) != 2 {
		return nil, nil, fmt.Errorf("invalid receipt format: %s", receipt)
	}

	signature, err = base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, nil, fmt.Errorf("error decoding signature: %w", err)
	}

	message = []byte(parts[1])
	return signature, message, nil
}
