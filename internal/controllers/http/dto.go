package http

import "storefront/internal/domain"

type CartItemRequest struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Size      string `json:"size" binding:"required"`
	Quantity  int64  `json:"quantity" binding:"required,min=1"`
}

type ShippingAddressRequest struct {
	Address    string `json:"address" binding:"required"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode" binding:"required"`
	Country    string `json:"country" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
}

type PlaceOrderRequest struct {
	UserID          uint64                 `json:"userId" binding:"required"`
	BuyerName       string                 `json:"buyerName" binding:"required"`
	BuyerEmail      string                 `json:"buyerEmail" binding:"required,email"`
	Items           []CartItemRequest      `json:"items" binding:"required,min=1,dive"`
	ShippingAddress ShippingAddressRequest `json:"shippingAddress" binding:"required"`
	PaymentMethod   domain.PaymentMethod   `json:"paymentMethod" binding:"required"`
}

type ChangeStatusRequest struct {
	Status domain.OrderStatus `json:"status" binding:"required"`
}

type OrderPageResponse struct {
	Orders        []domain.Order `json:"orders"`
	TotalMatching int64          `json:"totalMatching"`
	TotalAll      int64          `json:"totalAll"`
}
