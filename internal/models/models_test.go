package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice(t *testing.T) {
	p := Product{Price: 3305}
	assert.Equal(t, int64(3305), p.EffectivePrice())

	p.DiscountedPrice = 2810
	assert.Equal(t, int64(2810), p.EffectivePrice())
}

func TestInStock(t *testing.T) {
	assert.True(t, (&Product{Stock: 1, IsAvailable: true}).InStock())
	assert.False(t, (&Product{Stock: 0, IsAvailable: true}).InStock())
	assert.False(t, (&Product{Stock: 5, IsAvailable: false}).InStock())
}

func TestIsLowStock(t *testing.T) {
	p := Product{Stock: 5, LowStockThreshold: 5}
	assert.True(t, p.IsLowStock())

	p.Stock = 6
	assert.False(t, p.IsLowStock())

	// Out of stock is not "low", it is gone.
	p.Stock = 0
	assert.False(t, p.IsLowStock())
}

func TestHasStock(t *testing.T) {
	p := Product{Stock: 3, IsAvailable: true}
	assert.True(t, p.HasStock(3))
	assert.False(t, p.HasStock(4))

	p.IsAvailable = false
	assert.False(t, p.HasStock(1))
}

func TestDiscountPercentage(t *testing.T) {
	p := Product{Price: 1000, DiscountedPrice: 750}
	assert.Equal(t, 25, p.DiscountPercentage())

	p.DiscountedPrice = 0
	assert.Equal(t, 0, p.DiscountPercentage())

	p = Product{Price: 3305, DiscountedPrice: 2810}
	assert.Equal(t, 15, p.DiscountPercentage())
}

func TestPrimaryImage(t *testing.T) {
	p := Product{}
	assert.Nil(t, p.PrimaryImage())

	p.Images = []ProductImage{{URL: "a.jpg"}, {URL: "b.jpg"}}
	assert.Equal(t, "a.jpg", p.PrimaryImage().URL)

	p.Images[1].IsPrimary = true
	assert.Equal(t, "b.jpg", p.PrimaryImage().URL)
}

func TestCartItemEffectivePrice(t *testing.T) {
	ci := CartItem{Price: 500}
	assert.Equal(t, int64(500), ci.EffectivePrice())

	ci.DiscountedPrice = 400
	assert.Equal(t, int64(400), ci.EffectivePrice())
}
