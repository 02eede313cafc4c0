package trade

import "github.com/erp/retailcore/internal/domain/shared"

// BusinessMode selects how a tenant finalizes sales orders.
// Retail orders go straight from draft to completed; wholesale orders ship
// first (in_transit) and are completed once billed.
type BusinessMode string

const (
	BusinessModeRetail    BusinessMode = "retail"
	BusinessModeWholesale BusinessMode = "wholesale"
)

// IsValid checks if the mode is known
func (m BusinessMode) IsValid() bool {
	return m == BusinessModeRetail || m == BusinessModeWholesale
}

// String returns the string representation of BusinessMode
func (m BusinessMode) String() string {
	return string(m)
}

// ParseBusinessMode parses a stored mode
func ParseBusinessMode(s string) (BusinessMode, error) {
	m := BusinessMode(s)
	if !m.IsValid() {
		return "", shared.Errorf(shared.ErrInvalidInput, "Unknown business mode %q", s)
	}
	return m, nil
}
