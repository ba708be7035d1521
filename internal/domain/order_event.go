package domain

import "time"

type OrderCreatedEvent struct {
	OrderID    uint64    `json:"orderId"`
	OrderCode  string    `json:"orderCode"`
	UserID     uint64    `json:"userId"`
	TotalPrice int64     `json:"totalPrice"`
	CreatedAt  time.Time `json:"createdAt"`
}

type OrderStatusChangedEvent struct {
	OrderID   uint64      `json:"orderId"`
	OrderCode string      `json:"orderCode"`
	From      OrderStatus `json:"from"`
	To        OrderStatus `json:"to"`
	ChangedAt time.Time   `json:"changedAt"`
}

type OrderDeletedEvent struct {
	OrderID   uint64    `json:"orderId"`
	OrderCode string    `json:"orderCode"`
	DeletedAt time.Time `json:"deletedAt"`
}
