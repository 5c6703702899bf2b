package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBusinessError(t *testing.T) {
	assert.True(t, IsBusinessError(Validationf("bad input")))
	assert.True(t, IsBusinessError(&InsufficientStockError{ProductName: "Vase", Available: 2, Requested: 5}))
	assert.True(t, IsBusinessError(&ProductUnavailableError{ProductName: "Vase"}))
	assert.True(t, IsBusinessError(&InvalidTransitionError{Field: "status", From: "shipped", To: "created"}))
	assert.True(t, IsBusinessError(ErrEmptyCart))
	assert.True(t, IsBusinessError(ErrCycle))

	assert.False(t, IsBusinessError(errors.New("connection refused")))
	assert.False(t, IsBusinessError(ErrNotFound))
}

func TestIsBusinessErrorWrapped(t *testing.T) {
	err := fmt.Errorf("placing order: %w", &InsufficientStockError{ProductName: "Vase"})
	assert.True(t, IsBusinessError(err))
}

func TestInsufficientStockErrorMessage(t *testing.T) {
	err := &InsufficientStockError{ProductName: "Banarasi Saree", Available: 2, Requested: 5}
	assert.Contains(t, err.Error(), "Banarasi Saree")
	assert.Contains(t, err.Error(), "2")
}

func TestInvalidTransitionErrorMessage(t *testing.T) {
	err := &InvalidTransitionError{Field: "status", From: "delivered", To: "created"}
	assert.Contains(t, err.Error(), "delivered")
	assert.Contains(t, err.Error(), "created")
}
