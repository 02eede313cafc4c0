package report

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriod_Bounds(t *testing.T) {
	at := time.Date(2024, 2, 29, 17, 45, 0, 0, time.UTC)

	start, end := PeriodDaily.Bounds(at)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), end)

	start, end = PeriodMonthly.Bounds(at)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), end)

	assert.False(t, Period("weekly").IsValid())
}

func TestSummarize(t *testing.T) {
	tenantID, productID := uuid.New(), uuid.New()
	orderA, orderB := uuid.New(), uuid.New()
	start, end := PeriodDaily.Bounds(time.Now())

	lines := []SoldLine{
		{OrderID: orderA, ProductID: productID, Quantity: 2, TotalPrice: decimal.RequireFromString("20.00")},
		{OrderID: orderB, ProductID: productID, Quantity: 1, TotalPrice: decimal.RequireFromString("9.50")},
		{OrderID: orderB, ProductID: uuid.New(), Quantity: 5, TotalPrice: decimal.RequireFromString("50.00")},
	}

	s := Summarize(tenantID, productID, PeriodDaily, start, end, lines)
	require.NotNil(t, s)
	assert.Equal(t, int64(3), s.TotalQuantity)
	assert.Equal(t, "29.50", s.TotalRevenue.StringFixed(2))
	assert.Equal(t, 2, s.TotalOrders)

	assert.Nil(t, Summarize(tenantID, productID, PeriodDaily, start, end, nil))
}
