package inventory

import (
	"strings"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item with a purchase cost and a selling price.
// Cost moves by weighted average every time stock is received.
type Product struct {
	shared.TenantAggregateRoot
	Name  string
	SKU   string
	Cost  decimal.Decimal
	Price decimal.Decimal
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, name, sku string, cost, price decimal.Decimal) (*Product, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Product name is required")
	}
	if cost.IsNegative() || price.IsNegative() {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Product cost and price cannot be negative")
	}
	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		SKU:                 strings.TrimSpace(sku),
		Cost:                shared.RoundCurrency(cost),
		Price:               shared.RoundCurrency(price),
	}, nil
}

// ApplyReceiptCost recalculates Cost after receivedQty units arrived at unitCost,
// given the aggregate quantity on hand before the receipt. Returns the new cost.
func (p *Product) ApplyReceiptCost(priorQty, receivedQty int64, unitCost decimal.Decimal) decimal.Decimal {
	p.Cost = WeightedAverageCost(priorQty, p.Cost, receivedQty, unitCost)
	p.IncrementVersion()
	return p.Cost
}

// WeightedAverageCost returns
// (priorQty*oldCost + receivedQty*unitCost) / (priorQty+receivedQty)
// rounded to currency places. When there is nothing on hand to average against
// the received unit cost wins.
func WeightedAverageCost(priorQty int64, oldCost decimal.Decimal, receivedQty int64, unitCost decimal.Decimal) decimal.Decimal {
	total := priorQty + receivedQty
	if priorQty <= 0 || total <= 0 {
		return shared.RoundCurrency(unitCost)
	}
	value := decimal.NewFromInt(priorQty).Mul(oldCost).
		Add(decimal.NewFromInt(receivedQty).Mul(unitCost))
	return shared.RoundCurrency(value.Div(decimal.NewFromInt(total)))
}
