package domain

import "errors"

var (
	ErrProductNotFound     = errors.New("product not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidCart         = errors.New("invalid cart")
	ErrInvalidShippingInfo = errors.New("invalid shipping info")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrConflictRetryable   = errors.New("concurrent update conflict, retry")
)
