package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajatc17/india-ecom/internal/store"
)

func TestCatalogParamsToFilterDefaults(t *testing.T) {
	f := CatalogParams{}.toFilter()

	assert.Equal(t, 1, f.Page)
	assert.Equal(t, store.DefaultPageLimit, f.Limit)
	assert.True(t, f.ActiveOnly)
	assert.Nil(t, f.GITagged)
	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.MaxPrice)
	assert.False(t, f.InStock)
	assert.False(t, f.Featured)
}

func TestCatalogParamsToFilterParsing(t *testing.T) {
	params := CatalogParams{
		Query:    "silk saree",
		Region:   "varanasi",
		GITagged: "true",
		MinPrice: "500",
		MaxPrice: "5000",
		InStock:  "true",
		Featured: "true",
		Sort:     "-price",
		Page:     "3",
		Limit:    "40",
	}
	f := params.toFilter()

	assert.Equal(t, "silk saree", f.Query)
	assert.Equal(t, "varanasi", f.Region)
	require.NotNil(t, f.GITagged)
	assert.True(t, *f.GITagged)
	require.NotNil(t, f.MinPrice)
	assert.Equal(t, int64(500), *f.MinPrice)
	require.NotNil(t, f.MaxPrice)
	assert.Equal(t, int64(5000), *f.MaxPrice)
	assert.True(t, f.InStock)
	assert.True(t, f.Featured)
	assert.Equal(t, "-price", f.Sort)
	assert.Equal(t, 3, f.Page)
	assert.Equal(t, 40, f.Limit)
}

func TestCatalogParamsToFilterLenient(t *testing.T) {
	// Unparseable values are treated as absent, never an error.
	params := CatalogParams{
		GITagged: "yes",
		MinPrice: "cheap",
		MaxPrice: "12.5",
		Page:     "first",
		Limit:    "lots",
	}
	f := params.toFilter()

	assert.Nil(t, f.GITagged)
	assert.Nil(t, f.MinPrice)
	assert.Nil(t, f.MaxPrice)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, store.DefaultPageLimit, f.Limit)
}

func TestCatalogParamsToFilterClampsLimit(t *testing.T) {
	f := CatalogParams{Limit: "500"}.toFilter()
	assert.Equal(t, store.MaxPageLimit, f.Limit)

	f = CatalogParams{Limit: "-2", Page: "-7"}.toFilter()
	assert.Equal(t, store.DefaultPageLimit, f.Limit)
	assert.Equal(t, 1, f.Page)
}

func TestProductRequestValidate(t *testing.T) {
	ok := ProductRequest{Name: "Vase", CategoryID: "c1", Price: 1200}
	assert.NoError(t, ok.validate())

	discounted := ok
	discounted.DiscountedPrice = 950
	assert.NoError(t, discounted.validate())

	free := ok
	free.Price = 0
	assert.Error(t, free.validate())

	negDiscount := ok
	negDiscount.DiscountedPrice = -1
	assert.Error(t, negDiscount.validate())

	overDiscount := ok
	overDiscount.DiscountedPrice = 1200
	assert.Error(t, overDiscount.validate())

	negStock := ok
	negStock.Stock = -5
	assert.Error(t, negStock.validate())
}

func TestProductRequestToModelDefaults(t *testing.T) {
	req := ProductRequest{Name: "Vase", CategoryID: "c1", Price: 1200}

	product := req.toModel("p1", "vase")

	assert.Equal(t, "p1", product.ID)
	assert.Equal(t, "vase", product.Slug)
	assert.True(t, product.IsAvailable)
	assert.True(t, product.IsActive)
	assert.Equal(t, 5, product.LowStockThreshold)
}

func TestProductRequestToModelExplicitFlags(t *testing.T) {
	off := false
	req := ProductRequest{
		Name:              "Vase",
		CategoryID:        "c1",
		Price:             1200,
		IsAvailable:       &off,
		IsActive:          &off,
		LowStockThreshold: 12,
	}

	product := req.toModel("p1", "vase")

	assert.False(t, product.IsAvailable)
	assert.False(t, product.IsActive)
	assert.Equal(t, 12, product.LowStockThreshold)
}

func TestMutateStockRejectsInvalidInput(t *testing.T) {
	// Validation runs before any store access, so a zero-value service is
	// enough to exercise it.
	cs := &CatalogService{}
	ctx := context.Background()

	for _, op := range []string{StockOpAdd, StockOpSubtract} {
		_, err := cs.MutateStock(ctx, "p1", op, 0)
		require.Error(t, err, op)
		assert.True(t, IsBusinessError(err), op)

		_, err = cs.MutateStock(ctx, "p1", op, -20)
		require.Error(t, err, op)
		assert.True(t, IsBusinessError(err), op)
	}

	_, err := cs.MutateStock(ctx, "p1", StockOpSet, -1)
	require.Error(t, err)
	assert.True(t, IsBusinessError(err))

	_, err = cs.MutateStock(ctx, "p1", "increment", 5)
	require.Error(t, err)
	assert.True(t, IsBusinessError(err))
}
