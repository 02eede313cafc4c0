package inventory

import (
	"cmp"
	"slices"

	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/google/uuid"
)

// Allocation is the part of a deduction taken from one inventory row
type Allocation struct {
	Inventory *Inventory
	Quantity  int64
}

// PlanDeduction decides which rows cover qty units of one product.
//
// A pinned location must have a row with enough stock. With AllLocations the
// rows are drained largest first (ties by location name) until qty is covered.
// rows must all belong to the same product.
func PlanDeduction(rows []*Inventory, location string, qty int64) ([]Allocation, error) {
	if qty <= 0 {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Deduction quantity must be positive")
	}

	if location != AllLocations {
		for _, row := range rows {
			if row.Location != location {
				continue
			}
			if !row.CanFulfill(qty) {
				return nil, shared.Errorf(shared.ErrInsufficientStock,
					"Not enough stock at %s: available %d, requested %d", location, row.Quantity, qty)
			}
			return []Allocation{{Inventory: row, Quantity: qty}}, nil
		}
		return nil, shared.Errorf(shared.ErrNoInventoryRecord, "No inventory record at %s", location)
	}

	if available := TotalQuantity(rows); available < qty {
		return nil, shared.Errorf(shared.ErrInsufficientStock,
			"Not enough stock across locations: available %d, requested %d", available, qty)
	}

	ordered := slices.Clone(rows)
	slices.SortStableFunc(ordered, func(a, b *Inventory) int {
		if c := cmp.Compare(b.Quantity, a.Quantity); c != 0 {
			return c
		}
		return cmp.Compare(a.Location, b.Location)
	})

	remaining := qty
	plan := make([]Allocation, 0, len(ordered))
	for _, row := range ordered {
		if remaining == 0 {
			break
		}
		if row.Quantity <= 0 {
			continue
		}
		take := min(row.Quantity, remaining)
		plan = append(plan, Allocation{Inventory: row, Quantity: take})
		remaining -= take
	}
	return plan, nil
}

// Reversal is the part of a past deduction to put back
type Reversal struct {
	Movement StockMovement
	Quantity int64
}

// PlanReversal walks deductions newest first and picks movements until qty
// units are covered. The last pick may be partial.
func PlanReversal(movements []StockMovement, qty int64) ([]Reversal, error) {
	if qty <= 0 {
		return nil, shared.Errorf(shared.ErrInvalidInput, "Reversal quantity must be positive")
	}

	ordered := NewestFirst(movements)
	remaining := qty
	plan := make([]Reversal, 0, len(ordered))
	for _, m := range ordered {
		if remaining == 0 {
			break
		}
		if !m.IsDeduction() {
			continue
		}
		take := min(m.DeductedQuantity(), remaining)
		plan = append(plan, Reversal{Movement: m, Quantity: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, shared.Errorf(shared.ErrInvalidState,
			"Only %d of %d units can be reversed from movement history", qty-remaining, qty)
	}
	return plan, nil
}

// NewestFirst returns a copy of movements in reverse chronological order
func NewestFirst(movements []StockMovement) []StockMovement {
	ordered := slices.Clone(movements)
	slices.SortStableFunc(ordered, func(a, b StockMovement) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID.String(), a.ID.String())
	})
	return ordered
}

// SortedProductIDs returns ids ascending. Rows are locked in this order so
// that two transactions touching the same products cannot deadlock.
func SortedProductIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	slices.SortFunc(out, func(a, b uuid.UUID) int {
		return cmp.Compare(a.String(), b.String())
	})
	return out
}
