package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rajatc17/india-ecom/internal/broker"
	"github.com/rajatc17/india-ecom/internal/models"
	"github.com/rajatc17/india-ecom/internal/store"
	"github.com/rajatc17/india-ecom/internal/util"
)

// OrderService turns carts into orders and walks orders through their
// lifecycle.
type OrderService struct {
	store     *store.Store
	carts     *CartService
	publisher *broker.EventPublisher
	logger    *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(store *store.Store, carts *CartService, publisher *broker.EventPublisher) *OrderService {
	return &OrderService{
		store:     store,
		carts:     carts,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// Payment methods accepted at checkout.
var paymentMethods = map[string]bool{
	"cod":  true,
	"card": true,
	"upi":  true,
}

// PlaceOrderRequest is the checkout payload. The shipping address comes
// either from the user's address book (AddressID) or inline.
type PlaceOrderRequest struct {
	AddressID     string          `json:"addressId"`
	Address       *models.Address `json:"address"`
	PaymentMethod string          `json:"paymentMethod" binding:"required"`
}

// FormatOrderNumber renders a sequence value as a human-facing order number.
func FormatOrderNumber(year int, seq int64) string {
	return fmt.Sprintf("ORD-%d-%06d", year, seq)
}

/// ComputeShippingFee applies the flat-fee policy: free strictly above the
// threshold, flat fee otherwise.
func ComputeShippingFee(subtotal int64) int64 {
	if subtotal > models.FreeShippingThreshold {
		return 0
	}
	return models.FlatShippingFee
}

// buildOrderItems validates every cart line against the locked products and
// freezes catalog prices into order item snapshots. Prices come from the
// catalog at placement time, not from the cart snapshot, so a stale cart
// cannot buy at an old price. The returned subtotal is the sum of the
// effective line prices.
func buildOrderItems(orderID string, lines []models.CartItem, byID map[string]*models.Product) ([]models.OrderItem, int64, error) {
	var subtotal int64
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok || !product.IsActive {
			return nil, 0, &ProductUnavailableError{ProductID: line.ProductID, ProductName: line.Name}
		}
		if !product.IsAvailable {
			return nil, 0, &ProductUnavailableError{ProductID: product.ID, ProductName: product.Name}
		}
		if product.Stock < line.Quantity {
			return nil, 0, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   line.Quantity,
			}
		}

		unit := product.EffectivePrice()
		lineSubtotal := unit * int64(line.Quantity)
		subtotal += lineSubtotal

		image := ""
		if img := product.PrimaryImage(); img != nil {
			image = img.URL
		}
		items = append(items, models.OrderItem{
			ID:        uuid.NewString(),
			OrderID:   orderID,
			ProductID: product.ID,
			Name:      product.Name,
			Image:     image,
			UnitPrice: unit,
			Quantity:  line.Quantity,
			Subtotal:  lineSubtotal,
		})
	}
	return items, subtotal, nil
}

// Place converts the user's cart into an order inside one transaction.
// Products are row-locked, every line is re-validated against live state,
// prices are frozen from the catalog, and stock is decremented with a
// conditional update so a concurrent placement cannot oversell. The cart is
// cleared only after the transaction commits.
func (os *OrderService) Place(ctx context.Context, userID string, req PlaceOrderRequest) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Place")
	defer span.End()
	start := time.Now()

	if !paymentMethods[req.PaymentMethod] {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, Validationf("unsupported payment method %q", req.PaymentMethod)
	}

	address, err := os.resolveAddress(ctx, userID, req)
	if err != nil {
		util.OrdersFailedTotal.WithLabelValues("validation").Inc()
		return nil, err
	}

	cart, err := os.store.GetCartByUserID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		util.OrdersFailedTotal.WithLabelValues("empty_cart").Inc()
		return nil, ErrEmptyCart
	}

	order := &models.Order{
		ID:             uuid.NewString(),
		UserID:         userID,
		Status:         models.OrderStatusCreated,
		PaymentStatus:  models.PaymentStatusPending,
		PaymentMethod:  req.PaymentMethod,
		ShippingStatus: models.ShippingStatusPending,
		AddressLabel:   address.Label,
		AddressLine1:   address.Line1,
		AddressCity:    address.City,
		AddressState:   address.State,
		AddressPincode: address.Pincode,
	}

	var lowStock []*models.Product

	err = os.store.WithTx(ctx, func(tx *store.Tx) error {
		ids := make([]string, len(cart.Items))
		for i, item := range cart.Items {
			ids[i] = item.ProductID
		}
		products, err := tx.GetProductsForUpdate(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[string]*models.Product, len(products))
		for i := range products {
			byID[products[i].ID] = &products[i]
		}

		items, subtotal, err := buildOrderItems(order.ID, cart.Items, byID)
		if err != nil {
			return err
		}

		for _, item := range items {
			ok, err := tx.DecrementStock(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				product := byID[item.ProductID]
				return &InsufficientStockError{
					ProductID:   product.ID,
					ProductName: product.Name,
					Available:   product.Stock,
					Requested:   item.Quantity,
				}
			}
			product := byID[item.ProductID]
			product.Stock -= item.Quantity
			if product.IsLowStock() {
				lowStock = append(lowStock, product)
			}
		}

		seq, err := tx.NextOrderSequence(ctx)
		if err != nil {
			return err
		}
		order.OrderNumber = FormatOrderNumber(time.Now().Year(), seq)
		// Discount is the order-level coupon hook and stays zero for now.
		// Per-line catalog discounts are already baked into the unit prices.
		order.Subtotal = subtotal
		order.Discount = 0
		order.ShippingFee = ComputeShippingFee(subtotal)
		order.Total = subtotal + order.ShippingFee + order.Tax - order.Discount
		order.Items = items

		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}
		for i := range items {
			if err := tx.InsertOrderItem(ctx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if IsBusinessError(err) {
			util.OrdersFailedTotal.WithLabelValues("stock").Inc()
		} else {
			util.OrdersFailedTotal.WithLabelValues("internal").Inc()
		}
		return nil, err
	}

	order.Address = *address

	if _, err := os.carts.Clear(ctx, userID); err != nil {
		os.logger.Warn("Failed to clear cart after placement",
			zap.String("order_id", order.ID), zap.Error(err))
	}

	os.publishPlaced(ctx, order)
	for _, product := range lowStock {
		os.publishLowStock(ctx, product)
	}

	util.OrdersPlacedTotal.Inc()
	util.OrderPlacementLatency.Observe(time.Since(start).Seconds())
	os.logger.Info("Order placed",
		zap.String("order_id", order.ID),
		zap.String("order_number", order.OrderNumber),
		zap.String("user_id", userID),
		zap.Int64("total", order.Total))
	return order, nil
}

func (os *OrderService) resolveAddress(ctx context.Context, userID string, req PlaceOrderRequest) (*models.Address, error) {
	if req.Address != nil {
		addr := req.Address
		if addr.Line1 == "" || addr.City == "" || addr.State == "" || addr.Pincode == "" {
			return nil, Validationf("address requires line1, city, state and pincode")
		}
		return addr, nil
	}
	if req.AddressID == "" {
		return nil, Validationf("addressId or address is required")
	}

	addrs, err := os.store.GetAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range addrs {
		if addrs[i].ID == req.AddressID {
			return &addrs[i], nil
		}
	}
	return nil, Validationf("address %s not found", req.AddressID)
}

// GetForUser returns one order, enforcing ownership.
func (os *OrderService) GetForUser(ctx context.Context, userID, orderID string) (*models.Order, error) {
	order, err := os.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotFound
	}
	os.attachAddress(order)
	return order, nil
}

// Get returns one order without an ownership check, for admin use.
func (os *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := os.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	os.attachAddress(order)
	return order, nil
}

// ListForUser returns the user's order history, newest first.
func (os *OrderService) ListForUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := os.store.GetOrdersByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		os.attachAddress(&orders[i])
	}
	return orders, nil
}

// List returns one admin page of all orders.
func (os *OrderService) List(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > store.MaxPageLimit {
		limit = store.DefaultPageLimit
	}
	orders, total, err := os.store.ListOrders(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		os.attachAddress(&orders[i])
	}
	return orders, total, nil
}

func (os *OrderService) attachAddress(order *models.Order) {
	order.Address = models.Address{
		Label:   order.AddressLabel,
		Line1:   order.AddressLine1,
		City:    order.AddressCity,
		State:   order.AddressState,
		Pincode: order.AddressPincode,
	}
}

// cancellableStatuses are the overall statuses an order may be cancelled
// from. Once shipped the order is on a vehicle and cancellation closes.
var cancellableStatuses = map[string]bool{
	models.OrderStatusCreated:    true,
	models.OrderStatusConfirmed:  true,
	models.OrderStatusProcessing: true,
}

// Cancel cancels an order and restores its stock. The restore runs outside
// the cancellation write and is best-effort; failures are logged and
// counted rather than failing the cancellation.
func (os *OrderService) Cancel(ctx context.Context, userID, orderID, reason string) (*models.Order, error) {
	ctx, span := util.StartSpan(ctx, "OrderService.Cancel")
	defer span.End()

	order, err := os.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if userID != "" && order.UserID != userID {
		return nil, ErrNotFound
	}
	if !cancellableStatuses[order.Status] {
		return nil, &InvalidTransitionError{
			Field: "status",
			From:  order.Status,
			To:    models.OrderStatusCancelled,
		}
	}

	order.Status = models.OrderStatusCancelled
	order.CancelReason = reason
	if order.PaymentStatus == models.PaymentStatusPaid {
		order.PaymentStatus = models.PaymentStatusRefunded
	}
	if err := os.store.UpdateOrderStatus(ctx, order); err != nil {
		return nil, err
	}

	for _, item := range order.Items {
		if err := os.store.IncreaseStock(ctx, item.ProductID, item.Quantity); err != nil {
			util.StockRestoreFailures.Inc()
			os.logger.Error("Failed to restore stock for cancelled order",
				zap.String("order_id", order.ID),
				zap.String("product_id", item.ProductID),
				zap.Int("quantity", item.Quantity),
				zap.Error(err))
		}
	}

	os.publishCancelled(ctx, order, reason)
	util.OrdersCancelledTotal.Inc()
	os.logger.Info("Order cancelled",
		zap.String("order_id", order.ID),
		zap.String("reason", reason))
	os.attachAddress(order)
	return order, nil
}

// Transition tables for the three lifecycle dimensions.
var (
	statusTransitions = map[string][]string{
		models.OrderStatusCreated:    {models.OrderStatusConfirmed, models.OrderStatusCancelled},
		models.OrderStatusConfirmed:  {models.OrderStatusProcessing, models.OrderStatusCancelled},
		models.OrderStatusProcessing: {models.OrderStatusShipped, models.OrderStatusCancelled},
		models.OrderStatusShipped:    {models.OrderStatusDelivered},
		models.OrderStatusDelivered:  {models.OrderStatusRefunded},
	}
	paymentTransitions = map[string][]string{
		models.PaymentStatusPending: {models.PaymentStatusPaid, models.PaymentStatusFailed},
		models.PaymentStatusPaid:    {models.PaymentStatusRefunded},
		models.PaymentStatusFailed:  {models.PaymentStatusPending},
	}
	shippingTransitions = map[string][]string{
		models.ShippingStatusPending:        {models.ShippingStatusProcessing},
		models.ShippingStatusProcessing:     {models.ShippingStatusShipped},
		models.ShippingStatusShipped:        {models.ShippingStatusOutForDelivery},
		models.ShippingStatusOutForDelivery: {models.ShippingStatusDelivered},
	}
)

func transitionAllowed(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UpdateStatusRequest carries the admin transition. Only the provided
// dimensions move.
type UpdateStatusRequest struct {
	Status         string `json:"status"`
	PaymentStatus  string `json:"paymentStatus"`
	ShippingStatus string `json:"shippingStatus"`
}

// UpdateStatus applies admin transitions across the three lifecycle
// dimensions. Shipping progress drags the overall status forward (shipped,
// delivered), and a payment landing on paid confirms a freshly created
// order.
func (os *OrderService) UpdateStatus(ctx context.Context, orderID string, req UpdateStatusRequest) (*models.Order, error) {
	order, err := os.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == models.OrderStatusCancelled {
		return nil, &InvalidTransitionError{Field: "status", From: order.Status, To: req.Status}
	}
	fromStatus := order.Status

	if req.Status != "" && req.Status != order.Status {
		if req.Status == models.OrderStatusCancelled {
			return nil, Validationf("use the cancel endpoint to cancel an order")
		}
		if !transitionAllowed(statusTransitions, order.Status, req.Status) {
			return nil, &InvalidTransitionError{Field: "status", From: order.Status, To: req.Status}
		}
		order.Status = req.Status
	}

	if req.PaymentStatus != "" && req.PaymentStatus != order.PaymentStatus {
		if !transitionAllowed(paymentTransitions, order.PaymentStatus, req.PaymentStatus) {
			return nil, &InvalidTransitionError{Field: "paymentStatus", From: order.PaymentStatus, To: req.PaymentStatus}
		}
		order.PaymentStatus = req.PaymentStatus
		if order.PaymentStatus == models.PaymentStatusPaid && order.Status == models.OrderStatusCreated {
			order.Status = models.OrderStatusConfirmed
		}
	}

	if req.ShippingStatus != "" && req.ShippingStatus != order.ShippingStatus {
		if !transitionAllowed(shippingTransitions, order.ShippingStatus, req.ShippingStatus) {
			return nil, &InvalidTransitionError{Field: "shippingStatus", From: order.ShippingStatus, To: req.ShippingStatus}
		}
		order.ShippingStatus = req.ShippingStatus
		switch order.ShippingStatus {
		case models.ShippingStatusShipped:
			if order.Status == models.OrderStatusProcessing || order.Status == models.OrderStatusConfirmed {
				order.Status = models.OrderStatusShipped
			}
		case models.ShippingStatusDelivered:
			if order.Status != models.OrderStatusDelivered {
				order.Status = models.OrderStatusDelivered
			}
		}
	}

	if err := os.store.UpdateOrderStatus(ctx, order); err != nil {
		return nil, err
	}

	if order.Status != fromStatus {
		os.publishStatusChanged(ctx, order, fromStatus)
	}
	os.attachAddress(order)
	return order, nil
}

func eventItems(items []models.OrderItem) []models.OrderEventItem {
	out := make([]models.OrderEventItem, len(items))
	for i, item := range items {
		out[i] = models.OrderEventItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}
	return out
}

func (os *OrderService) publishPlaced(ctx context.Context, order *models.Order) {
	if os.publisher == nil {
		return
	}
	event := &models.OrderPlacedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.NewString(),
			EventType: models.EventTypeOrderPlaced,
			Timestamp: time.Now(),
		},
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		Total:       order.Total,
		Items:       eventItems(order.Items),
	}
	if err := os.publisher.PublishOrderPlaced(ctx, event); err != nil {
		os.logger.Warn("Failed to publish order placed event",
			zap.String("order_id", order.ID), zap.Error(err))
	}
}

func (os *OrderService) publishCancelled(ctx context.Context, order *models.Order, reason string) {
	if os.publisher == nil {
		return
	}
	event := &models.OrderCancelledEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.NewString(),
			EventType: models.EventTypeOrderCancelled,
			Timestamp: time.Now(),
		},
		OrderID: order.ID,
		UserID:  order.UserID,
		Reason:  reason,
		Items:   eventItems(order.Items),
	}
	if err := os.publisher.PublishOrderCancelled(ctx, event); err != nil {
		os.logger.Warn("Failed to publish order cancelled event",
			zap.String("order_id", order.ID), zap.Error(err))
	}
}

func (os *OrderService) publishStatusChanged(ctx context.Context, order *models.Order, from string) {
	if os.publisher == nil {
		return
	}
	event := &models.OrderStatusChangedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.NewString(),
			EventType: models.EventTypeOrderStatusChanged,
			Timestamp: time.Now(),
		},
		OrderID:    order.ID,
		FromStatus: from,
		ToStatus:   order.Status,
	}
	if err := os.publisher.PublishOrderStatusChanged(ctx, event); err != nil {
		os.logger.Warn("Failed to publish order status event",
			zap.String("order_id", order.ID), zap.Error(err))
	}
}

func (os *OrderService) publishLowStock(ctx context.Context, product *models.Product) {
	if os.publisher == nil {
		return
	}
	event := &models.LowStockEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.NewString(),
			EventType: models.EventTypeLowStock,
			Timestamp: time.Now(),
		},
		ProductID:   product.ID,
		ProductName: product.Name,
		Stock:       product.Stock,
		Threshold:   product.LowStockThreshold,
	}
	if err := os.publisher.PublishLowStock(ctx, event); err != nil {
		os.logger.Warn("Failed to publish low stock event",
			zap.String("product_id", product.ID), zap.Error(err))
	}
}
