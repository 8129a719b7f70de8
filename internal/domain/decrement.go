package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SecurityTemperature classifies how hard a security is to borrow.
type SecurityTemperature string

const (
	TemperatureHTB SecurityTemperature = "HTB" // Hard To Borrow
	TemperatureGC  SecurityTemperature = "GC"  // General Collateral
)

var (
	gcDecrementRatio      = decimal.RequireFromString("0.2")
	defaultDecrementRatio = decimal.RequireFromString("0.1")
)

// ParseTemperature normalizes a temperature code. Unknown values are kept as-is.
func ParseTemperature(value string) SecurityTemperature {
	return SecurityTemperature(strings.ToUpper(strings.TrimSpace(value)))
}

// CalculateDecrementQuantity returns how much inventory an approval consumes:
// the full quantity for HTB, 20% for GC and 10% for anything else.
func CalculateDecrementQuantity(requestedQuantity decimal.Decimal, temperature SecurityTemperature) decimal.Decimal {
	switch temperature {
	case TemperatureHTB:
		return requestedQuantity
	case TemperatureGC:
		return requestedQuantity.Mul(gcDecrementRatio)
	default:
		return requestedQuantity.Mul(defaultDecrementRatio)
	}
}
