package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/code-payments/flipchat-iap-client/config"
	pg "github.com/code-payments/flipchat-iap-client/database/postgres"
	"github.com/code-payments/flipchat-iap-client/iap"
	"github.com/code-payments/flipchat-iap-client/iap/android"
	"github.com/code-payments/flipchat-iap-client/iap/cache"
	"github.com/code-payments/flipchat-iap-client/iap/memory"
	"github.com/code-payments/flipchat-iap-client/iap/postgres"
)

const usage = `usage: iapctl [-env file] <command> [args]

commands:
  products            resolve the configured product ids against Google Play
  entitlement <key>   show the ledger record for an entitlement key
  migrate             create the entitlement ledger schema
`

func main() {
	envFile := flag.String("env", ".env", "env file to load before the environment")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "products":
		err = runProducts(ctx, log, cfg)
	case "entitlement":
		if len(args) != 1 {
			flag.Usage()
			os.Exit(2)
		}
		err = runEntitlement(ctx, cfg, args[0])
	case "migrate":
		err = runMigrate(ctx, cfg)
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		log.Error("Command failed", zap.String("command", flag.Arg(0)), zap.Error(err))
		os.Exit(1)
	}
}

func runProducts(ctx context.Context, log *zap.Logger, cfg config.Config) error {
	if cfg.GooglePlay.PackageName == "" || cfg.GooglePlay.ServiceAccountFile == "" {
		return errors.New("GOOGLE_PLAY_PACKAGE_NAME and GOOGLE_PLAY_SERVICE_ACCOUNT_FILE are required")
	}

	serviceAccount, err := os.ReadFile(cfg.GooglePlay.ServiceAccountFile)
	if err != nil {
		return err
	}

	svc, err := android.NewService(ctx, serviceAccount)
	if err != nil {
		return err
	}

	// There is no device payment queue here, so an idle in-memory one stands
	// in. Only the catalog side of the client is used.
	client, err := iap.NewClient(
		log,
		android.NewCatalog(log, svc, cfg.GooglePlay.PackageName, cfg.GooglePlay.Language),
		memory.NewPaymentQueue(),
		cfg.ProductIDs(),
		memory.NewInMemory(),
		iap.WithCatalogTimeout(cfg.IAP.CatalogTimeout),
		iap.WithFinishedTTL(cfg.IAP.FinishedTTL),
	)
	if err != nil {
		return err
	}
	defer client.Close()

	ids, err := client.LoadProductIDs()
	if err != nil {
		return err
	}

	stream, closeStream := client.Stream("iapctl", 4, time.Second)
	defer closeStream()

	if err := client.RequestProducts(ctx, ids); err != nil {
		return err
	}

	var result error
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-stream.Channel():
			if !ok {
				return errors.New("event stream closed")
			}

			switch e := e.(type) {
			case iap.ProductsResolved:
				for _, p := range e.Products {
					fmt.Printf("%s\t%s\t%s\n", p.ID, p.DisplayPrice, p.Title)
				}
				for _, id := range e.InvalidIDs {
					fmt.Printf("%s\tinvalid\n", id)
				}
			case iap.ProductsRequestFailed:
				result = e.Err
			case iap.ProductsRequestCompleted:
				return result
			}
		}
	}
}

func runEntitlement(ctx context.Context, cfg config.Config, key string) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	store := cache.NewInCache(postgres.NewInPostgres(db), cfg.IAP.EntitlementCacheTTL)

	purchase, err := store.GetPurchase(ctx, key)
	if errors.Is(err, iap.ErrNotFound) {
		fmt.Printf("%s\tnot granted\n", key)
		return nil
	} else if err != nil {
		return err
	}

	fmt.Printf("%s\t%s\t%s\t%s\t%s\n",
		purchase.EntitlementKey,
		purchase.State,
		purchase.ProductID,
		purchase.TransactionID,
		purchase.CreatedAt.Format(time.RFC3339),
	)
	return nil
}

func runMigrate(ctx context.Context, cfg config.Config) error {
	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	return postgres.CreateSchema(ctx, db)
}

func openDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	if cfg.DB.URL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	return pg.Open(ctx, cfg.DB.URL, pg.Options{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
}
