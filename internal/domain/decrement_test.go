package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateDecrementQuantity(t *testing.T) {
	tests := []struct {
		name        string
		quantity    string
		temperature SecurityTemperature
		expected    string
	}{
		{"HTB takes full quantity", "1000", TemperatureHTB, "1000"},
		{"GC takes twenty percent", "1000", TemperatureGC, "200"},
		{"other takes ten percent", "1000", SecurityTemperature("WARM"), "100"},
		{"empty takes ten percent", "1000", SecurityTemperature(""), "100"},
		{"fractional GC", "333", TemperatureGC, "66.6"},
		{"fractional default", "7", SecurityTemperature("X"), "0.7"},
		{"zero quantity", "0", TemperatureHTB, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateDecrementQuantity(decimal.RequireFromString(tt.quantity), tt.temperature)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(result), "got %s", result)
		})
	}
}

func TestCalculateDecrementQuantity_NoFloatDrift(t *testing.T) {
	q := decimal.RequireFromString("0.3")

	assert.Equal(t, "0.03", CalculateDecrementQuantity(q, "").String())
	assert.Equal(t, "0.06", CalculateDecrementQuantity(q, TemperatureGC).String())
}

func TestParseTemperature(t *testing.T) {
	assert.Equal(t, TemperatureHTB, ParseTemperature(" htb "))
	assert.Equal(t, TemperatureGC, ParseTemperature("gc"))
	assert.Equal(t, SecurityTemperature("WARM"), ParseTemperature("warm"))
}
