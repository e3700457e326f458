package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"

	"github.com/code-payments/flipchat-iap-client/iap"
)

type store struct {
	db *sqlx.DB
}

func NewInPostgres(db *sqlx.DB) iap.Store {
	return &store{
		db: db,
	}
}

// CreateSchema applies Schema. It is safe to call repeatedly.
func CreateSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return err
}

func (s *store) reset() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `DELETE FROM `+entitlementTable)
	if err != nil {
		panic(err)
	}
}

func (s *store) CreatePurchase(ctx context.Context, purchase *iap.Purchase) error {
	if err := purchase.Validate(); err != nil {
		return err
	}

	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO `+entitlementTable+` (entitlement_key, transaction_id, product_id, receipt_id, state, purchased_at, created_at)
		VALUES (:entitlement_key, :transaction_id, :product_id, :receipt_id, :state, :purchased_at, :created_at)
	`, toModel(purchase))
	if isUniqueViolation(err) {
		return iap.ErrExists
	}
	return err
}

func (s *store) GetPurchase(ctx context.Context, entitlementKey string) (*iap.Purchase, error) {
	var m entitlementModel
	query := `SELECT entitlement_key, transaction_id, product_id, receipt_id, state, purchased_at, created_at FROM ` + entitlementTable + ` WHERE entitlement_key = $1`
	err := s.db.GetContext(ctx, &m, query, entitlementKey)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, iap.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	return fromModel(&m)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
