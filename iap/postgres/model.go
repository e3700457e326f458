package postgres

import (
	"database/sql"
	"time"

	pg "github.com/code-payments/flipchat-iap-client/database/postgres"
	"github.com/code-payments/flipchat-iap-client/iap"
)

const (
	entitlementTable = "iap_entitlements"

	// Schema is the DDL for the entitlement ledger.
	Schema = `
CREATE TABLE IF NOT EXISTS ` + entitlementTable + ` (
	entitlement_key TEXT PRIMARY KEY,
	transaction_id  TEXT        NOT NULL,
	product_id      TEXT        NOT NULL,
	receipt_id      TEXT        NOT NULL DEFAULT '',
	state           SMALLINT    NOT NULL,
	purchased_at    TIMESTAMPTZ,
	created_at      TIMESTAMPTZ NOT NULL
)`
)

type entitlementModel struct {
	EntitlementKey string    `db:"entitlement_key"`
	TransactionID  string    `db:"transaction_id"`
	ProductID      string    `db:"product_id"`
	ReceiptID      string    `db:"receipt_id"`
	State          int16        `db:"state"`
	PurchasedAt    sql.NullTime `db:"purchased_at"`
	CreatedAt      time.Time    `db:"created_at"`
}

func toModel(p *iap.Purchase) *entitlementModel {
	return &entitlementModel{
		EntitlementKey: p.EntitlementKey,
		TransactionID:  p.TransactionID,
		ProductID:      string(p.ProductID),
		ReceiptID:      pg.Encode(p.ReceiptID, pg.Base58),
		State:          int16(p.State),
		PurchasedAt:    sql.NullTime{Time: p.PurchasedAt.UTC(), Valid: !p.PurchasedAt.IsZero()},
		CreatedAt:      p.CreatedAt.UTC(),
	}
}

func fromModel(m *entitlementModel) (*iap.Purchase, error) {
	decodedReceiptID, err := pg.Decode(m.ReceiptID)
	if err != nil {
		return nil, err
	}

	var purchasedAt time.Time
	if m.PurchasedAt.Valid {
		purchasedAt = m.PurchasedAt.Time
	}

	return &iap.Purchase{
		EntitlementKey: m.EntitlementKey,
		TransactionID:  m.TransactionID,
		ProductID:      iap.ProductID(m.ProductID),
		ReceiptID:      decodedReceiptID,
		State:          iap.State(m.State),
		PurchasedAt:    purchasedAt,
		CreatedAt:      m.CreatedAt,
	}, nil
}
