package inventory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeightedAverageCost(t *testing.T) {
	t.Run("averages prior stock with the receipt", func(t *testing.T) {
		cost := WeightedAverageCost(10, decimal.RequireFromString("4.00"), 20, decimal.RequireFromString("5.00"))
		assert.Equal(t, "4.67", cost.StringFixed(2))
	})

	t.Run("empty shelf takes the received cost", func(t *testing.T) {
		cost := WeightedAverageCost(0, decimal.RequireFromString("9.99"), 5, decimal.RequireFromString("3.50"))
		assert.Equal(t, "3.50", cost.StringFixed(2))
	})

	t.Run("zero total does not divide by zero", func(t *testing.T) {
		cost := WeightedAverageCost(0, decimal.RequireFromString("2.00"), 0, decimal.RequireFromString("3.00"))
		assert.Equal(t, "3.00", cost.StringFixed(2))
	})
}

func TestProduct_ApplyReceiptCost(t *testing.T) {
	p, err := NewProduct(uuid.New(), "Widget", "W-1", decimal.RequireFromString("4.00"), decimal.RequireFromString("9.00"))
	require.NoError(t, err)

	newCost := p.ApplyReceiptCost(10, 20, decimal.RequireFromString("5.00"))
	assert.Equal(t, "4.67", newCost.StringFixed(2))
	assert.Equal(t, 2, p.Version)
}

func TestNewProduct_Validation(t *testing.T) {
	_, err := NewProduct(uuid.New(), "  ", "", decimal.Zero, decimal.Zero)
	assert.Error(t, err)

	_, err = NewProduct(uuid.New(), "Widget", "", decimal.NewFromInt(-1), decimal.Zero)
	assert.Error(t, err)
}
