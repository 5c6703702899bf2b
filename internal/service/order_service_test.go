package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajatc17/india-ecom/internal/models"
)

func TestComputeShippingFee(t *testing.T) {
	assert.Equal(t, int64(models.FlatShippingFee), ComputeShippingFee(0))
	assert.Equal(t, int64(models.FlatShippingFee), ComputeShippingFee(999))
	// Free shipping kicks in strictly above the threshold.
	assert.Equal(t, int64(models.FlatShippingFee), ComputeShippingFee(models.FreeShippingThreshold))
	assert.Equal(t, int64(0), ComputeShippingFee(models.FreeShippingThreshold+1))
	assert.Equal(t, int64(0), ComputeShippingFee(8430))
}

func TestFormatOrderNumber(t *testing.T) {
	assert.Equal(t, "ORD-2026-000001", FormatOrderNumber(2026, 1))
	assert.Equal(t, "ORD-2026-000042", FormatOrderNumber(2026, 42))
	assert.Equal(t, "ORD-2027-123456", FormatOrderNumber(2027, 123456))
	// Sequences past six digits widen rather than truncate.
	assert.Equal(t, "ORD-2027-1234567", FormatOrderNumber(2027, 1234567))
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, transitionAllowed(statusTransitions, models.OrderStatusCreated, models.OrderStatusConfirmed))
	assert.True(t, transitionAllowed(statusTransitions, models.OrderStatusConfirmed, models.OrderStatusProcessing))
	assert.True(t, transitionAllowed(statusTransitions, models.OrderStatusProcessing, models.OrderStatusShipped))
	assert.True(t, transitionAllowed(statusTransitions, models.OrderStatusShipped, models.OrderStatusDelivered))
	assert.True(t, transitionAllowed(statusTransitions, models.OrderStatusDelivered, models.OrderStatusRefunded))

	assert.False(t, transitionAllowed(statusTransitions, models.OrderStatusCreated, models.OrderStatusDelivered))
	assert.False(t, transitionAllowed(statusTransitions, models.OrderStatusShipped, models.OrderStatusCancelled))
	assert.False(t, transitionAllowed(statusTransitions, models.OrderStatusDelivered, models.OrderStatusCreated))
	assert.False(t, transitionAllowed(statusTransitions, models.OrderStatusCancelled, models.OrderStatusConfirmed))
}

func TestPaymentTransitions(t *testing.T) {
	assert.True(t, transitionAllowed(paymentTransitions, models.PaymentStatusPending, models.PaymentStatusPaid))
	assert.True(t, transitionAllowed(paymentTransitions, models.PaymentStatusPending, models.PaymentStatusFailed))
	assert.True(t, transitionAllowed(paymentTransitions, models.PaymentStatusPaid, models.PaymentStatusRefunded))
	assert.True(t, transitionAllowed(paymentTransitions, models.PaymentStatusFailed, models.PaymentStatusPending))

	assert.False(t, transitionAllowed(paymentTransitions, models.PaymentStatusPending, models.PaymentStatusRefunded))
	assert.False(t, transitionAllowed(paymentTransitions, models.PaymentStatusRefunded, models.PaymentStatusPaid))
}

func TestShippingTransitions(t *testing.T) {
	assert.True(t, transitionAllowed(shippingTransitions, models.ShippingStatusPending, models.ShippingStatusProcessing))
	assert.True(t, transitionAllowed(shippingTransitions, models.ShippingStatusProcessing, models.ShippingStatusShipped))
	assert.True(t, transitionAllowed(shippingTransitions, models.ShippingStatusShipped, models.ShippingStatusOutForDelivery))
	assert.True(t, transitionAllowed(shippingTransitions, models.ShippingStatusOutForDelivery, models.ShippingStatusDelivered))

	assert.False(t, transitionAllowed(shippingTransitions, models.ShippingStatusPending, models.ShippingStatusDelivered))
	assert.False(t, transitionAllowed(shippingTransitions, models.ShippingStatusDelivered, models.ShippingStatusPending))
}

func TestCancellableStatuses(t *testing.T) {
	assert.True(t, cancellableStatuses[models.OrderStatusCreated])
	assert.True(t, cancellableStatuses[models.OrderStatusConfirmed])
	assert.True(t, cancellableStatuses[models.OrderStatusProcessing])

	assert.False(t, cancellableStatuses[models.OrderStatusShipped])
	assert.False(t, cancellableStatuses[models.OrderStatusDelivered])
	assert.False(t, cancellableStatuses[models.OrderStatusCancelled])
}

func TestEventItems(t *testing.T) {
	items := []models.OrderItem{
		{ProductID: "p1", Quantity: 2, UnitPrice: 950},
		{ProductID: "p2", Quantity: 1, UnitPrice: 3305},
	}

	out := eventItems(items)

	assert.Equal(t, []models.OrderEventItem{
		{ProductID: "p1", Quantity: 2, UnitPrice: 950},
		{ProductID: "p2", Quantity: 1, UnitPrice: 3305},
	}, out)
}

func TestBuildOrderItemsFreezesEffectivePrices(t *testing.T) {
	lines := []models.CartItem{
		{ProductID: "p1", Name: "Banarasi Saree", Quantity: 1},
		{ProductID: "p2", Name: "Kanjivaram Silk", Quantity: 3},
	}
	byID := map[string]*models.Product{
		"p1": {ID: "p1", Name: "Banarasi Saree", Price: 3305, IsActive: true, IsAvailable: true, Stock: 5},
		"p2": {ID: "p2", Name: "Kanjivaram Silk", Price: 3305, DiscountedPrice: 2810, IsActive: true, IsAvailable: true, Stock: 10},
	}

	items, subtotal, err := buildOrderItems("o1", lines, byID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, int64(3305), items[0].UnitPrice)
	assert.Equal(t, int64(3305), items[0].Subtotal)
	// The discounted product is charged at its effective price.
	assert.Equal(t, int64(2810), items[1].UnitPrice)
	assert.Equal(t, int64(8430), items[1].Subtotal)
	assert.Equal(t, int64(11735), subtotal)
	assert.Equal(t, "o1", items[0].OrderID)
}

func TestOrderTotalIdentity(t *testing.T) {
	// One product at 3305 discounted to 2810, quantity 3.
	lines := []models.CartItem{{ProductID: "p1", Name: "Kanjivaram Silk", Quantity: 3}}
	byID := map[string]*models.Product{
		"p1": {ID: "p1", Name: "Kanjivaram Silk", Price: 3305, DiscountedPrice: 2810, IsActive: true, IsAvailable: true, Stock: 10},
	}

	_, subtotal, err := buildOrderItems("o1", lines, byID)
	require.NoError(t, err)
	assert.Equal(t, int64(8430), subtotal)

	var order models.Order
	order.Subtotal = subtotal
	order.Discount = 0
	order.ShippingFee = ComputeShippingFee(subtotal)
	order.Total = subtotal + order.ShippingFee + order.Tax - order.Discount

	assert.Equal(t, int64(0), order.ShippingFee)
	assert.Equal(t, int64(8430), order.Total)
	// The persisted fields must satisfy total = subtotal + shipping + tax - discount.
	assert.Equal(t, order.Subtotal+order.ShippingFee+order.Tax-order.Discount, order.Total)
}

func TestBuildOrderItemsRejectsBadLines(t *testing.T) {
	byID := map[string]*models.Product{
		"inactive": {ID: "inactive", Name: "Old Stock", Price: 100, IsActive: false, IsAvailable: true, Stock: 5},
		"paused":   {ID: "paused", Name: "Paused", Price: 100, IsActive: true, IsAvailable: false, Stock: 5},
		"low":      {ID: "low", Name: "Nearly Gone", Price: 100, IsActive: true, IsAvailable: true, Stock: 2},
	}

	_, _, err := buildOrderItems("o1", []models.CartItem{{ProductID: "ghost", Quantity: 1}}, byID)
	var unavailable *ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)

	_, _, err = buildOrderItems("o1", []models.CartItem{{ProductID: "inactive", Quantity: 1}}, byID)
	require.ErrorAs(t, err, &unavailable)

	_, _, err = buildOrderItems("o1", []models.CartItem{{ProductID: "paused", Quantity: 1}}, byID)
	require.ErrorAs(t, err, &unavailable)

	_, _, err = buildOrderItems("o1", []models.CartItem{{ProductID: "low", Quantity: 3}}, byID)
	var stock *InsufficientStockError
	require.ErrorAs(t, err, &stock)
	assert.Equal(t, 2, stock.Available)
	assert.Equal(t, 3, stock.Requested)
}

func TestPaymentMethods(t *testing.T) {
	assert.True(t, paymentMethods["cod"])
	assert.True(t, paymentMethods["card"])
	assert.True(t, paymentMethods["upi"])
	assert.False(t, paymentMethods["cheque"])
}
