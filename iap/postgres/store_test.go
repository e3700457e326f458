//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/sirupsen/logrus"

	postgrestest "github.com/code-payments/flipchat-iap-client/database/postgres/test"
	"github.com/code-payments/flipchat-iap-client/iap/tests"
)

var testDB *sqlx.DB

func TestMain(m *testing.M) {
	log := logrus.StandardLogger()

	pool, err := dockertest.NewPool("")
	if err != nil {
		log.WithError(err).Error("Error creating docker pool")
		os.Exit(1)
	}

	databaseUrl, cleanup, err := postgrestest.StartPostgresDB(pool)
	if err != nil {
		log.WithError(err).Error("Error starting postgres image")
		os.Exit(1)
	}

	testDB, err = postgrestest.WaitForConnection(pool, databaseUrl)
	if err != nil {
		log.WithError(err).Error("Error waiting for connection")
		cleanup()
		os.Exit(1)
	}

	if err := CreateSchema(context.Background(), testDB); err != nil {
		log.WithError(err).Error("Error creating schema")
		cleanup()
		os.Exit(1)
	}

	code := m.Run()

	_ = testDB.Close()
	cleanup()
	os.Exit(code)
}

func TestIap_PostgresStore(t *testing.T) {
	testStore := NewInPostgres(testDB)
	teardown := func() {
		testStore.(*store).reset()
	}
	tests.RunStoreTests(t, testStore, teardown)
}
