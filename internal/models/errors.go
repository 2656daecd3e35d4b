package models

import "errors"

// Common errors used throughout the application
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrItemNotFound      = errors.New("cart item not found")
	ErrCheckoutNotFound  = errors.New("checkout not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidStage      = errors.New("operation not allowed at this checkout stage")
	ErrPaymentInProgress = errors.New("payment is being processed")
	ErrPaymentFailed     = errors.New("payment failed, please try again")
	ErrInvalidInput      = errors.New("invalid input")
	ErrSoldOut           = errors.New("not enough tickets left")
	ErrSaleEnded         = errors.New("ticket sales have ended")
	ErrNotTransferable   = errors.New("ticket cannot be transferred")
)
