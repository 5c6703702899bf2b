package models

import "time"

// Event types
const (
	EventTypeOrderPlaced        = "ORDER_PLACED"
	EventTypeOrderCancelled     = "ORDER_CANCELLED"
	EventTypeOrderStatusChanged = "ORDER_STATUS_CHANGED"
	EventTypeProductCreated     = "PRODUCT_CREATED"
	EventTypeProductDeleted     = "PRODUCT_DELETED"
	EventTypeLowStock           = "LOW_STOCK"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderPlacedEvent published after an order placement transaction commits
type OrderPlacedEvent struct {
	BaseEvent
	OrderID     string           `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	UserID      string           `json:"user_id"`
	Total       int64            `json:"total"`
	Items       []OrderEventItem `json:"items"`
}

// OrderCancelledEvent published when an order is cancelled
type OrderCancelledEvent struct {
	BaseEvent
	OrderID string           `json:"order_id"`
	UserID  string           `json:"user_id"`
	Reason  string           `json:"reason"`
	Items   []OrderEventItem `json:"items"`
}

// OrderStatusChangedEvent published on any status transition
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID    string `json:"order_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
}

// ProductCreatedEvent published when the catalog gains a product
type ProductCreatedEvent struct {
	BaseEvent
	ProductID  string `json:"product_id"`
	CategoryID string `json:"category_id"`
}

// ProductDeletedEvent published when a product is removed
type ProductDeletedEvent struct {
	BaseEvent
	ProductID  string `json:"product_id"`
	CategoryID string `json:"category_id"`
}

// LowStockEvent published when a placement drops stock to the threshold
type LowStockEvent struct {
	BaseEvent
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
}

// OrderEventItem represents item data carried in order events
type OrderEventItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}
