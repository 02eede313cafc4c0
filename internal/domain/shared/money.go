package shared

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of minor-unit digits amounts are rounded to
const CurrencyPlaces int32 = 2

// RoundCurrency rounds half away from zero to CurrencyPlaces
func RoundCurrency(d decimal.Decimal) decimal.Decimal {
	return d.Round(CurrencyPlaces)
}
