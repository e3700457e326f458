package android

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/api/androidpublisher/v3"

	"github.com/code-payments/flipchat-iap-client/iap"
)

const statusActive = "active"

// Catalog resolves product ids against the managed products configured in
// the Play Console.
type Catalog struct {
	log         *zap.Logger
	svc         *androidpublisher.Service
	packageName string
	language    string
}

// NewCatalog returns a Catalog for packageName. Listings are localized to
// language when present, otherwise the product's default language is used.
func NewCatalog(log *zap.Logger, svc *androidpublisher.Service, packageName, language string) *Catalog {
	return &Catalog{
		log:         log,
		svc:         svc,
		packageName: packageName,
		language:    language,
	}
}

func (c *Catalog) LookupProducts(ctx context.Context, ids []iap.ProductID) (*iap.CatalogResponse, error) {
	resp := &iap.CatalogResponse{}

	for _, id := range ids {
		remote, err := c.svc.Inappproducts.Get(c.packageName, string(id)).Context(ctx).Do()
		if isNotFound(err) {
			resp.InvalidIDs = append(resp.InvalidIDs, id)
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "failed to get in-app product %s", id)
		}

		if remote.Status != "" && remote.Status != statusActive {
			c.log.Debug("Ignoring inactive product", zap.String("product_id", string(id)), zap.String("status", remote.Status))
			resp.InvalidIDs = append(resp.InvalidIDs, id)
			continue
		}

		product, err := c.toProduct(id, remote)
		if err != nil {
			c.log.Warn("Failed to convert product", zap.String("product_id", string(id)), zap.Error(err))
			resp.InvalidIDs = append(resp.InvalidIDs, id)
			continue
		}
		resp.Products = append(resp.Products, product)
	}

	return resp, nil
}

func (c *Catalog) toProduct(id iap.ProductID, remote *androidpublisher.InAppProduct) (*iap.Product, error) {
	if remote.DefaultPrice == nil {
		return nil, errors.New("product has no default price")
	}

	micros, err := decimal.NewFromString(remote.DefaultPrice.PriceMicros)
	if err != nil {
		return nil, errors.Wrap(err, "invalid price micros")
	}
	price := micros.Shift(-6)

	listing, ok := remote.Listings[c.language]
	if !ok {
		listing = remote.Listings[remote.DefaultLanguage]
	}

	return &iap.Product{
		ID:           id,
		Title:        listing.Title,
		Description:  listing.Description,
		DisplayPrice: price.StringFixed(2) + " " + remote.DefaultPrice.Currency,
		Price:        price,
		Currency:     remote.DefaultPrice.Currency,
	}, nil
}
