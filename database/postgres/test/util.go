package test

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/pkg/errors"

	pg "github.com/code-payments/flipchat-iap-client/database/postgres"
)

const (
	containerName     = "postgres"
	containerVersion  = "15-alpine"
	containerAutoKill = 120 // seconds

	port     = 5432
	user     = "iap"
	password = "iap"
	dbName   = "iap"
)

// StartPostgresDB starts a disposable postgres container and returns its
// connection url and a cleanup func.
func StartPostgresDB(pool *dockertest.Pool) (databaseUrl string, cleanup func(), err error) {
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: containerName,
		Tag:        containerVersion,
		Env: []string{
			"POSTGRES_USER=" + user,
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + dbName,
		},
		ExposedPorts: []string{fmt.Sprintf("%d/tcp", port)},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		return "", nil, errors.Wrap(err, "could not start postgres container")
	}

	if err := resource.Expire(containerAutoKill); err != nil {
		_ = pool.Purge(resource)
		return "", nil, errors.Wrap(err, "could not set container expiry")
	}

	hostAndPort := resource.GetHostPort(fmt.Sprintf("%d/tcp", port))
	databaseUrl = fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", user, password, hostAndPort, dbName)

	cleanup = func() {
		if err := pool.Purge(resource); err != nil {
			fmt.Printf("Could not purge resource: %s\n", err)
		}
	}

	return databaseUrl, cleanup, nil
}

// WaitForConnection retries until the database accepts connections.
func WaitForConnection(pool *dockertest.Pool, databaseUrl string) (*sqlx.DB, error) {
	pool.MaxWait = 2 * time.Minute

	var db *sqlx.DB
	err := pool.Retry(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var err error
		db, err = pg.Open(ctx, databaseUrl, pg.Options{})
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "database did not become ready")
	}
	return db, nil
}
