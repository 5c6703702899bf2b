package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/rajatc17/india-ecom/internal/broker"
	"github.com/rajatc17/india-ecom/internal/models"
	"github.com/rajatc17/india-ecom/internal/redisclient"
	"github.com/rajatc17/india-ecom/internal/store"
	"github.com/rajatc17/india-ecom/internal/util"
)

// CatalogWorker consumes store events and keeps derived catalog state
// fresh: category caches are invalidated when the catalog changes, and
// low-stock alerts are surfaced. Events are deduplicated through the
// processed_events table so a redelivered message is a no-op.
type CatalogWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	store        *store.Store
	redis        *redisclient.Client
	logger       *zap.Logger
}

// NewCatalogWorker creates a new catalog worker
func NewCatalogWorker(consumer *broker.Consumer, st *store.Store, redis *redisclient.Client) *CatalogWorker {
	w := &CatalogWorker{
		consumer: consumer,
		store:    st,
		redis:    redis,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnProductCreated(w.handleProductCreated)
	eventHandler.OnProductDeleted(w.handleProductDeleted)
	eventHandler.OnOrderPlaced(w.handleOrderPlaced)
	eventHandler.OnOrderCancelled(w.handleOrderCancelled)
	eventHandler.OnOrderStatusChanged(w.handleOrderStatusChanged)
	eventHandler.OnLowStock(w.handleLowStock)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *CatalogWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting catalog worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CatalogWorker) Stop() error {
	w.logger.Info("Stopping catalog worker")
	return w.consumer.Close()
}

// seen marks an event as processed, reporting whether it was already
// handled before.
func (w *CatalogWorker) seen(ctx context.Context, eventID, eventType string) (bool, error) {
	processed, err := w.store.IsEventProcessed(ctx, eventID)
	if err != nil {
		return false, err
	}
	if processed {
		return true, nil
	}
	return false, w.store.MarkEventProcessed(ctx, eventID, eventType)
}

// Product lifecycle changes make the cached category tree stale because
// it carries product counts.
func (w *CatalogWorker) handleProductCreated(ctx context.Context, event *models.ProductCreatedEvent) error {
	dup, err := w.seen(ctx, event.EventID, event.EventType)
	if err != nil || dup {
		return err
	}
	w.logger.Info("Product added to catalog",
		zap.String("product_id", event.ProductID),
		zap.String("category_id", event.CategoryID))
	return w.redis.InvalidateCategories(ctx)
}

func (w *CatalogWorker) handleProductDeleted(ctx context.Context, event *models.ProductDeletedEvent) error {
	dup, err := w.seen(ctx, event.EventID, event.EventType)
	if err != nil || dup {
		return err
	}
	w.logger.Info("Product removed from catalog",
		zap.String("product_id", event.ProductID),
		zap.String("category_id", event.CategoryID))
	return w.redis.InvalidateCategories(ctx)
}

func (w *CatalogWorker) handleOrderPlaced(ctx context.Context, event *models.OrderPlacedEvent) error {
	dup, err := w.seen(ctx, event.EventID, event.EventType)
	if err != nil || dup {
		return err
	}
	w.logger.Info("Order placed",
		zap.String("order_id", event.OrderID),
		zap.String("order_number", event.OrderNumber),
		zap.Int64("total", event.Total),
		zap.Int("items", len(event.Items)))
	return nil
}

func (w *CatalogWorker) handleOrderCancelled(ctx context.Context, event *models.OrderCancelledEvent) error {
	dup, err := w.seen(ctx, event.EventID, event.EventType)
	if err != nil || dup {
		return err
	}
	w.logger.Info("Order cancelled",
		zap.String("order_id", event.OrderID),
		zap.String("reason", event.Reason))
	return nil
}

func (w *CatalogWorker) handleOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	dup, err := w.seen(ctx, event.EventID, event.EventType)
	if err != nil || dup {
		return err
	}
	w.logger.Info("Order status changed",
		zap.String("order_id", event.OrderID),
		zap.String("from", event.FromStatus),
		zap.String("to", event.ToStatus))
	return nil
}

func (w *CatalogWorker) handleLowStock(ctx context.Context, event *models.LowStockEvent) error {
	dup, err := w.seen(ctx, event.EventID, event.EventType)
	if err != nil || dup {
		return err
	}
	w.logger.Warn("Product stock is low",
		zap.String("product_id", event.ProductID),
		zap.String("product_name", event.ProductName),
		zap.Int("stock", event.Stock),
		zap.Int("threshold", event.Threshold))
	return nil
}
