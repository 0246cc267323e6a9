package services

import "errors"

var (
	ErrInvalidAddress  = errors.New("invalid shipping address")
	ErrEmptyOrder      = errors.New("order must contain at least one item")
	ErrProductNotFound = errors.New("product not found")
	ErrCouponInvalid   = errors.New("coupon is no longer valid")
	ErrTotalMismatch   = errors.New("order total mismatch")
	ErrOrderNotFound   = errors.New("order not found")

	// ErrAlreadyProcessed signals the idempotent no-op case: a notification
	// for an order whose payment outcome is already recorded.
	ErrAlreadyProcessed = errors.New("payment already processed")
)
