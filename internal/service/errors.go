package service

import (
	"errors"
	"fmt"

	"github.com/rajatc17/india-ecom/internal/store"
)

// ErrNotFound re-exports the store sentinel so handlers only import service.
var ErrNotFound = store.ErrNotFound

var (
	// ErrCycle reports a parent chain that revisits a category. The stored
	// data does not enforce acyclicity, so the resolver treats a revisit as
	// corrupt data rather than recursing forever.
	ErrCycle = errors.New("category hierarchy contains a cycle")

	// ErrEmptyCart rejects checkout and sync operations on an empty cart.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrInvalidCredentials covers both unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrEmailTaken reports a registration against an existing email.
	ErrEmailTaken = errors.New("email already in use")
)

// ValidationError reports malformed or missing input. No state changed.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validationf builds a ValidationError from a format string.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientStockError names the offending product and tells the client
// how much stock is actually available.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.ProductName, e.Available, e.Requested)
}

// ProductUnavailableError reports an inactive or unavailable product in an
// order or cart operation.
type ProductUnavailableError struct {
	ProductID   string
	ProductName string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("product %s is not available", e.ProductName)
}

// InvalidTransitionError reports a status change the state machine forbids.
type InvalidTransitionError struct {
	Field string
	From  string
	To    string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Field, e.From, e.To)
}

// IsBusinessError reports whether err is a business-rule violation that maps
// to a 400 rather than a 500.
func IsBusinessError(err error) bool {
	var (
		vErr *ValidationError
		sErr *InsufficientStockError
		uErr *ProductUnavailableError
		tErr *InvalidTransitionError
	)
	return errors.As(err, &vErr) ||
		errors.As(err, &sErr) ||
		errors.As(err, &uErr) ||
		errors.As(err, &tErr) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrCycle)
}
