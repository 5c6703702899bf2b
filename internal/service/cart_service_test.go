package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rajatc17/india-ecom/internal/models"
)

func TestRecomputeTotalsEmpty(t *testing.T) {
	totals := RecomputeTotals(nil)

	assert.Equal(t, 0, totals.TotalItems)
	assert.Equal(t, int64(0), totals.Subtotal)
	assert.Equal(t, int64(0), totals.Discount)
	assert.Equal(t, int64(0), totals.Total)
}

func TestRecomputeTotalsDiscountedLine(t *testing.T) {
	items := []models.CartItem{
		{Price: 3305, DiscountedPrice: 2810, Quantity: 3},
	}
	totals := RecomputeTotals(items)

	assert.Equal(t, 3, totals.TotalItems)
	assert.Equal(t, int64(8430), totals.Subtotal)
	assert.Equal(t, int64(1485), totals.Discount)
	assert.Equal(t, int64(8430), totals.Total)
}

func TestRecomputeTotalsMixedLines(t *testing.T) {
	items := []models.CartItem{
		{Price: 1000, DiscountedPrice: 800, Quantity: 2},
		{Price: 500, Quantity: 1},
	}
	totals := RecomputeTotals(items)

	assert.Equal(t, 3, totals.TotalItems)
	assert.Equal(t, int64(2*800+500), totals.Subtotal)
	assert.Equal(t, int64(400), totals.Discount)
	assert.Equal(t, totals.Subtotal, totals.Total)
}

func TestRecomputeTotalsIgnoresBogusDiscount(t *testing.T) {
	// A discounted price at or above list is not a discount.
	items := []models.CartItem{
		{Price: 500, DiscountedPrice: 500, Quantity: 1},
	}
	totals := RecomputeTotals(items)

	assert.Equal(t, int64(500), totals.Subtotal)
	assert.Equal(t, int64(0), totals.Discount)
}

func TestSnapshotLine(t *testing.T) {
	product := &models.Product{
		ID:              "p1",
		Name:            "Blue Pottery Vase",
		Slug:            "blue-pottery-vase",
		Price:           1200,
		DiscountedPrice: 950,
		Images: []models.ProductImage{
			{URL: "first.jpg"},
			{URL: "primary.jpg", IsPrimary: true},
		},
	}

	line := snapshotLine("cart-1", product, 2)

	assert.Equal(t, "cart-1", line.CartID)
	assert.Equal(t, "p1", line.ProductID)
	assert.Equal(t, "Blue Pottery Vase", line.Name)
	assert.Equal(t, "primary.jpg", line.Image)
	assert.Equal(t, int64(1200), line.Price)
	assert.Equal(t, int64(950), line.DiscountedPrice)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, int64(1900), line.Subtotal)
	assert.NotEmpty(t, line.ID)
}

func TestSnapshotLineNoImages(t *testing.T) {
	product := &models.Product{ID: "p2", Name: "Stole", Price: 700}

	line := snapshotLine("cart-1", product, 1)

	assert.Empty(t, line.Image)
	assert.Equal(t, int64(700), line.Subtotal)
}
