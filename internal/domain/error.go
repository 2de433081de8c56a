package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotOwner           = errors.New("caller does not own this property")
	ErrInvalidDuration    = errors.New("promotion duration must be 7, 30, 60 or 90 days")
	ErrTierUnavailable    = errors.New("promotion tier is not available")
	ErrPromoCodeExhausted = errors.New("promo code usage cap reached")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayTxNotFound  = errors.New("gateway has no record of this transaction")
	ErrInvalidSignature   = errors.New("webhook signature mismatch")
	ErrLockNotAcquired    = errors.New("could not acquire lock")

	// Infrastructure errors surfaced through repositories
	ErrOperationFailed    = errors.New("operation failed")
	ErrInvalidExecContext = errors.New("invalid execution context")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
)
