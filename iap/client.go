package iap

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ReneKroon/ttlcache"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/code-payments/flipchat-iap-client/event"
)

const (
	DefaultCatalogTimeout = 30 * time.Second
	DefaultFinishedTTL    = 24 * time.Hour
)

var errUnspecifiedFailure = errors.New("payment failed without a reported cause")

// Client mediates between the application and the store's catalog and payment
// queue. Construct one per process; it registers itself as the payment queue's
// only observer.
//
// All events are emitted from a single internal goroutine in the order their
// causes were received. Handlers run on that goroutine and must not block it
// for long.
type Client struct {
	log       *zap.Logger
	catalog   Catalog
	queue     PaymentQueue
	ids       ProductIDSource
	iaps      Store
	verifier  Verifier
	fulfiller Fulfiller

	catalogTimeout time.Duration
	finishedTTL    time.Duration

	events   *event.Bus[Event]
	finished *ttlcache.Cache
	inFlight atomic.Bool

	inbox     *inbox
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

type Option func(c *Client)

// WithVerifier makes the client check receipts before granting entitlements.
func WithVerifier(v Verifier) Option {
	return func(c *Client) {
		c.verifier = v
	}
}

// WithFulfiller sets the hook that unlocks content for new entitlements.
func WithFulfiller(f Fulfiller) Option {
	return func(c *Client) {
		c.fulfiller = f
	}
}

// WithCatalogTimeout bounds each product lookup. Non-positive values disable
// the bound.
func WithCatalogTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.catalogTimeout = d
	}
}

// WithFinishedTTL sets how long finished transaction ids are remembered to
// suppress duplicate acknowledgements.
func WithFinishedTTL(d time.Duration) Option {
	return func(c *Client) {
		c.finishedTTL = d
	}
}

func NewClient(
	log *zap.Logger,
	catalog Catalog,
	queue PaymentQueue,
	ids ProductIDSource,
	iaps Store,
	opts ...Option,
) (*Client, error) {
	c := &Client{
		log:            log,
		catalog:        catalog,
		queue:          queue,
		ids:            ids,
		iaps:           iaps,
		fulfiller:      noopFulfiller{},
		catalogTimeout: DefaultCatalogTimeout,
		finishedTTL:    DefaultFinishedTTL,
		events:         event.NewBus[Event](),
		inbox:          newInbox(),
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.finished = ttlcache.NewCache()
	c.finished.SetTTL(c.finishedTTL)

	if err := queue.SetObserver(c); err != nil {
		c.finished.Close()
		return nil, fmt.Errorf("failed to observe payment queue: %w", err)
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	go func() {
		defer close(c.done)
		c.inbox.run(c.ctx)
	}()

	return c, nil
}

// Subscribe registers h for all events and returns a func that removes it.
func (c *Client) Subscribe(h event.Handler[Event]) (unsubscribe func()) {
	return c.events.AddHandler(h)
}

// Stream returns a channel based subscription. A consumer that falls behind
// by more than sendTimeout has its stream closed.
func (c *Client) Stream(id string, bufferSize int, sendTimeout time.Duration) (*event.ChannelStream[Event], func()) {
	s := event.NewChannelStream[Event](id, bufferSize, sendTimeout, nil)
	remove := c.events.AddHandler(s)
	return s, func() {
		remove()
		s.Close()
	}
}

// Close stops event delivery. Transactions not yet finished are delivered
// again by the payment queue on the next launch. Close must not be called from
// an event handler.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.inbox.close()
		c.cancel()
		<-c.done
		c.finished.Close()
	})
}

// LoadProductIDs returns the configured product ids, provided the device may
// make payments.
func (c *Client) LoadProductIDs() ([]ProductID, error) {
	if !c.queue.CanMakePayments() {
		c.log.Info("User is not allowed to make payments")
		return nil, ErrPaymentsNotAllowed
	}

	ids, err := c.ids.ProductIDs()
	if err != nil {
		c.log.Warn("Failed to load product ids", zap.Error(err))
		return nil, err
	}
	return ids, nil
}

// RequestProducts starts an asynchronous lookup of ids. The result arrives as
// ProductsResolved or ProductsRequestFailed, followed by
// ProductsRequestCompleted. Only one lookup may be pending at a time; further
// calls fail with ErrRequestInProgress until the pending lookup's events are
// being delivered.
func (c *Client) RequestProducts(ctx context.Context, ids []ProductID) error {
	ids = dedupe(ids)
	if len(ids) == 0 {
		return ErrNoProductIDs
	}
	if c.ctx.Err() != nil {
		return ErrClientClosed
	}
	if !c.inFlight.CompareAndSwap(false, true) {
		return ErrRequestInProgress
	}

	go c.lookup(ctx, ids)
	return nil
}

func (c *Client) lookup(ctx context.Context, ids []ProductID) {
	var cancel context.CancelFunc
	if c.catalogTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.catalogTimeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()
	stop := context.AfterFunc(c.ctx, cancel)
	defer stop()

	log := c.log.With(zap.Int("num_product_ids", len(ids)))
	log.Debug("Requesting products")

	var result Event
	resp, err := c.catalog.LookupProducts(ctx, ids)
	if err != nil {
		log.Warn("Failed to request products", zap.Error(err))
		result = ProductsRequestFailed{Err: &CatalogError{ProductIDs: ids, Err: err}}
	} else {
		products, invalid := classify(log, ids, resp)
		log.Debug("Products resolved", zap.Int("num_products", len(products)), zap.Int("num_invalid", len(invalid)))
		result = ProductsResolved{Products: products, InvalidIDs: invalid}
	}

	pushed := c.inbox.push(func(_ context.Context) {
		c.inFlight.Store(false)
		c.emit(result)
		c.emit(ProductsRequestCompleted{ProductIDs: ids})
	})
	if !pushed {
		c.inFlight.Store(false)
	}
}

// Purchase submits a payment for product. The outcome is reported on the
// transaction stream; a nil error only means the payment was queued.
func (c *Client) Purchase(ctx context.Context, product *Product) (*Payment, error) {
	if product == nil || product.ID == "" {
		return nil, ErrInvalidProduct
	}
	if !c.queue.CanMakePayments() {
		return nil, ErrPaymentsNotAllowed
	}

	payment := &Payment{
		ID:        uuid.New(),
		ProductID: product.ID,
		Quantity:  1,
	}
	if err := c.queue.AddPayment(ctx, payment); err != nil {
		c.log.Warn("Failed to add payment", zap.String("product_id", string(product.ID)), zap.Error(err))
		return nil, fmt.Errorf("failed to add payment: %w", err)
	}

	c.log.Debug("Payment added",
		zap.String("product_id", string(product.ID)),
		zap.String("payment_id", payment.ID.String()),
	)
	return payment, nil
}

// Restore asks the payment queue to replay completed transactions. Each
// arrives as a restored transaction, followed by PurchasesRestored.
func (c *Client) Restore(ctx context.Context) error {
	if err := c.queue.RestoreCompletedTransactions(ctx); err != nil {
		c.log.Warn("Failed to restore purchases", zap.Error(err))
		return fmt.Errorf("failed to restore purchases: %w", err)
	}
	return nil
}

// OnTransactionsUpdated implements TransactionObserver.
func (c *Client) OnTransactionsUpdated(txns []*Transaction) {
	batch := make([]*Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn != nil {
			batch = append(batch, txn.Clone())
		}
	}

	c.inbox.push(func(ctx context.Context) {
		for _, txn := range batch {
			if ctx.Err() != nil {
				return
			}
			c.processTransaction(ctx, txn)
		}
	})
}

// OnRestoreCompleted implements TransactionObserver.
func (c *Client) OnRestoreCompleted() {
	c.inbox.push(func(context.Context) {
		c.emit(PurchasesRestored{})
	})
}

// OnRestoreFailed implements TransactionObserver.
func (c *Client) OnRestoreFailed(err error) {
	c.log.Warn("Restore failed", zap.Error(err))
	c.inbox.push(func(context.Context) {
		c.emit(RestoreFailed{Err: err})
	})
}

func (c *Client) processTransaction(ctx context.Context, txn *Transaction) {
	log := c.log.With(
		zap.String("transaction_id", txn.ID),
		zap.String("product_id", string(txn.ProductID)),
		zap.Stringer("state", txn.State),
	)

	if !txn.State.Known() {
		log.Warn("Unrecognized transaction state, leaving transaction in queue")
		c.emit(PurchaseFailed{
			Txn: txn,
			Err: &UnknownStateError{TransactionID: txn.ID, State: txn.State},
		})
		return
	}

	switch txn.State {
	case TransactionStatePurchasing:
		log.Debug("Transaction purchasing")
		c.emit(PurchaseUpdated{Txn: txn})

	case TransactionStateDeferred:
		log.Info("Transaction pending")
		c.emit(PurchaseUpdated{Txn: txn})

	case TransactionStatePurchased, TransactionStateRestored:
		err := c.grant(ctx, log, txn)
		if err != nil {
			// A bad receipt will never become grantable, everything else is
			// retried when the queue delivers the transaction again.
			c.emit(PurchaseFailed{
				Txn: txn,
				Err: &PurchaseError{TransactionID: txn.ID, ProductID: txn.ProductID, Err: err},
			})
			if errors.Is(err, ErrInvalidReceipt) {
				c.finish(ctx, log, txn)
			}
			return
		}

		c.finish(ctx, log, txn)
		c.emit(PurchaseUpdated{Txn: txn})

	case TransactionStateFailed:
		cause := txn.Err
		if cause == nil {
			cause = errUnspecifiedFailure
		}
		cancelled := errors.Is(cause, ErrPaymentCancelled)
		if cancelled {
			log.Debug("Payment cancelled by user")
		} else {
			log.Info("Transaction failed", zap.Error(cause))
		}

		c.emit(PurchaseFailed{
			Txn: txn,
			Err: &PurchaseError{TransactionID: txn.ID, ProductID: txn.ProductID, Cancelled: cancelled, Err: cause},
		})
		c.finish(ctx, log, txn)
	}
}

// grant durably records the entitlement for txn. It is a no-op for an
// entitlement key that was already granted.
func (c *Client) grant(ctx context.Context, log *zap.Logger, txn *Transaction) error {
	key := txn.EntitlementKey()

	_, err := c.iaps.GetPurchase(ctx, key)
	if err == nil {
		log.Debug("Entitlement already granted", zap.String("entitlement_key", key))
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		log.Warn("Failed to check existing entitlement", zap.Error(err))
		return fmt.Errorf("failed to check existing entitlement: %w", err)
	}

	var receiptID []byte
	if c.verifier != nil {
		receiptID, err = c.verify(ctx, log, txn)
		if err != nil {
			return err
		}
	}

	if err := c.fulfiller.Fulfill(ctx, txn.Clone()); err != nil {
		log.Warn("Failed to fulfill entitlement", zap.Error(err))
		return fmt.Errorf("failed to fulfill entitlement: %w", err)
	}

	state := StateGranted
	if txn.State == TransactionStateRestored {
		state = StateRestored
	}

	err = c.iaps.CreatePurchase(ctx, &Purchase{
		EntitlementKey: key,
		TransactionID:  txn.ID,
		ProductID:      txn.ProductID,
		ReceiptID:      receiptID,
		State:          state,
		PurchasedAt:    txn.Date,
		CreatedAt:      time.Now(),
	})
	if errors.Is(err, ErrExists) {
		return nil
	} else if err != nil {
		log.Warn("Failed to record entitlement", zap.Error(err))
		return fmt.Errorf("failed to record entitlement: %w", err)
	}

	log.Info("Entitlement granted", zap.String("entitlement_key", key))
	return nil
}

func (c *Client) verify(ctx context.Context, log *zap.Logger, txn *Transaction) ([]byte, error) {
	if txn.Receipt == "" {
		log.Warn("Transaction has no receipt")
		return nil, ErrInvalidReceipt
	}

	isVerified, err := c.verifier.VerifyReceipt(ctx, txn.ProductID, txn.Receipt)
	if err != nil {
		log.Warn("Failed to verify receipt", zap.Error(err))
		return nil, fmt.Errorf("failed to verify receipt: %w", err)
	} else if !isVerified {
		log.Warn("Receipt failed validation")
		return nil, ErrInvalidReceipt
	}

	receiptID, err := c.verifier.GetReceiptIdentifier(ctx, txn.Receipt)
	if err != nil {
		log.Warn("Failed to get receipt ID", zap.Error(err))
		return nil, fmt.Errorf("failed to get receipt id: %w", err)
	}
	return receiptID, nil
}

// finish acknowledges txn. Transactions that are not terminal stay in the
// queue.
func (c *Client) finish(ctx context.Context, log *zap.Logger, txn *Transaction) {
	if !txn.State.Terminal() {
		log.Error("Refusing to finish non-terminal transaction")
		return
	}
	if _, ok := c.finished.Get(txn.ID); ok {
		log.Debug("Transaction already finished")
		return
	}

	if err := c.queue.FinishTransaction(ctx, txn); err != nil {
		log.Warn("Failed to finish transaction", zap.Error(err))
		return
	}
	c.finished.Set(txn.ID, struct{}{})
}

func (c *Client) emit(e Event) {
	c.events.OnEvent(e)
}

func dedupe(ids []ProductID) []ProductID {
	seen := make(map[ProductID]struct{}, len(ids))
	result := make([]ProductID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}

// classify places every requested id in exactly one of the returned slices,
// in request order.
func classify(log *zap.Logger, ids []ProductID, resp *CatalogResponse) ([]*Product, []ProductID) {
	requested := make(map[ProductID]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	byID := map[ProductID]*Product{}
	if resp != nil {
		for _, p := range resp.Products {
			if p == nil {
				continue
			}
			if _, ok := requested[p.ID]; !ok {
				log.Warn("Dropping product that was not requested", zap.String("product_id", string(p.ID)))
				continue
			}
			if _, ok := byID[p.ID]; !ok {
				byID[p.ID] = p
			}
		}
	}

	products := make([]*Product, 0, len(byID))
	invalid := make([]ProductID, 0, len(ids)-len(byID))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p.Clone())
		} else {
			invalid = append(invalid, id)
		}
	}

	return products, invalid
}
