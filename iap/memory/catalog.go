package memory

import (
	"context"
	"sync"

	"github.com/code-payments/flipchat-iap-client/iap"
)

// Catalog is a static iap.Catalog backed by a map.
type Catalog struct {
	mu       sync.RWMutex
	products map[iap.ProductID]*iap.Product
	err      error
	hold     chan struct{}
}

func NewCatalog(products ...*iap.Product) *Catalog {
	c := &Catalog{
		products: make(map[iap.ProductID]*iap.Product),
	}
	for _, p := range products {
		c.AddProduct(p)
	}
	return c
}

func (c *Catalog) AddProduct(p *iap.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.products[p.ID] = p.Clone()
}

// SetError makes subsequent lookups fail with err. A nil err restores normal
// behaviour.
func (c *Catalog) SetError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.err = err
}

// Hold blocks lookups until the returned func is called or the lookup's
// context ends.
func (c *Catalog) Hold() (release func()) {
	ch := make(chan struct{})

	c.mu.Lock()
	c.hold = ch
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			if c.hold == ch {
				c.hold = nil
			}
			c.mu.Unlock()
			close(ch)
		})
	}
}

func (c *Catalog) LookupProducts(ctx context.Context, ids []iap.ProductID) (*iap.CatalogResponse, error) {
	c.mu.RLock()
	hold := c.hold
	c.mu.RUnlock()

	if hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.err != nil {
		return nil, c.err
	}

	resp := &iap.CatalogResponse{}
	for _, id := range ids {
		p, ok := c.products[id]
		if !ok {
			resp.InvalidIDs = append(resp.InvalidIDs, id)
			continue
		}
		resp.Products = append(resp.Products, p.Clone())
	}
	return resp, nil
}
