package service

import "errors"

// Sentinel errors raised by the service layer. Handlers translate them to
// HTTP statuses in exactly one place; anything not listed here surfaces
// as an internal error.
var (
	// ErrUserExists — duplicate username or email at registration.
	ErrUserExists = errors.New("username or email already registered")
	// ErrInvalidCredentials is deliberately uniform: callers cannot tell an
	// unknown user from a wrong password or a bad refresh token.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUserNotFound — missing user reference.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoleNotFound — an admin requested a role with no stored record.
	ErrRoleNotFound = errors.New("role not found")
	// ErrProductNotFound — missing product reference.
	ErrProductNotFound = errors.New("product not found")
	// ErrInvoiceNotFound — missing invoice reference.
	ErrInvoiceNotFound = errors.New("invoice not found")
	// ErrProductInactive — an inactive product cannot be billed.
	ErrProductInactive = errors.New("product is inactive")
	// ErrInsufficientStock — requested quantity exceeds available stock.
	ErrInsufficientStock = errors.New("not enough stock")
)
