package domain

import (
	"regexp"
	"time"
)

// ShippingFee is the flat surcharge added to every order total.
const ShippingFee int64 = 70

type OrderStatus string

const (
	StatusPlaced     OrderStatus = "placed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusCancelled  OrderStatus = "cancelled"
	StatusDelivered  OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusPlaced, StatusProcessing, StatusShipped, StatusCancelled, StatusDelivered:
		return true
	}
	return false
}

// Terminal reports whether no further transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

var transitions = map[OrderStatus][]OrderStatus{
	StatusPlaced:     {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether moving from s to next is a legal status change.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "cash_on_delivery"
	PaymentMobileWallet   PaymentMethod = "mobile_wallet"
	PaymentCreditCard     PaymentMethod = "credit_card"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCashOnDelivery, PaymentMobileWallet, PaymentCreditCard:
		return true
	}
	return false
}

var phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

type ShippingAddress struct {
	Address    string `json:"address" gorm:"not null"`
	City       string `json:"city" gorm:"not null"`
	PostalCode string `json:"postalCode" gorm:"not null"`
	Country    string `json:"country" gorm:"not null"`
	Phone      string `json:"phone" gorm:"size:15;not null"`
}

// Validate checks that every field is present and the phone is 10-15 digits.
func (a ShippingAddress) Validate() error {
	if a.Address == "" || a.City == "" || a.PostalCode == "" || a.Country == "" {
		return ErrInvalidShippingInfo
	}
	if !phonePattern.MatchString(a.Phone) {
		return ErrInvalidShippingInfo
	}
	return nil
}

// OrderLine is a frozen snapshot of one purchased (product, size, quantity).
// Price is quantity times the unit price at the time of purchase; later
// catalog edits never alter it.
type OrderLine struct {
	ID           uint64 `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID      uint64 `json:"orderId" gorm:"not null;index"`
	ProductID    uint64 `json:"productId" gorm:"not null;index"`
	ProductName  string `json:"productName" gorm:"not null"`
	ProductImage string `json:"productImage"`
	Size         string `json:"size" gorm:"size:16;not null"`
	Quantity     int64  `json:"quantity" gorm:"not null"`
	Price        int64  `json:"price" gorm:"not null"`
}

type Order struct {
	ID              uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderCode       string          `json:"orderCode" gorm:"size:32;uniqueIndex;not null"`
	UserID          uint64          `json:"userId" gorm:"not null;index"`
	BuyerName       string          `json:"buyerName" gorm:"not null"`
	BuyerEmail      string          `json:"buyerEmail" gorm:"not null"`
	Lines           []OrderLine     `json:"products" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalPrice      int64           `json:"totalPrice" gorm:"not null"`
	ShippingAddress ShippingAddress `json:"shippingAddress" gorm:"embedded;embeddedPrefix:ship_"`
	PaymentMethod   PaymentMethod   `json:"paymentInfo" gorm:"size:32;not null"`
	Status          OrderStatus     `json:"status" gorm:"type:enum('placed','processing','shipped','cancelled','delivered');default:'placed'"`
	Paid            bool            `json:"atPaid" gorm:"not null;default:false"`
	CreatedAt       time.Time       `json:"createdAt" gorm:"autoCreateTime"`
}
