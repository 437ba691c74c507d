package money

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeAdd(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"пустой список", nil, 0},
		{"дробные значения без дрейфа", []float64{0.1, 0.2}, 0.3},
		{"NaN и Inf пропускаются", []float64{10, math.NaN(), 5.5, math.Inf(1)}, 15.5},
		{"отрицательные значения", []float64{100, -40.25}, 59.75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SafeAdd(tt.values...))
		})
	}
}

func TestSafeMultiply(t *testing.T) {
	assert.Equal(t, 12.35, SafeMultiply(2.47, 5))
	assert.Equal(t, 0.0, SafeMultiply(math.NaN(), 5))
	assert.Equal(t, 0.0, SafeMultiply(3, math.Inf(-1)))
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 0.0, SafeDivide(10, 0))
	assert.Equal(t, 2.5, SafeDivide(10, 4))
	assert.Equal(t, 3.33, SafeDivide(10, 3))
	assert.Equal(t, 0.0, SafeDivide(math.NaN(), 4))
}

func TestCalculatePercentage(t *testing.T) {
	assert.Equal(t, 25.0, CalculatePercentage(1, 4))
	assert.Equal(t, 33.33, CalculatePercentage(1, 3))
	assert.Equal(t, 0.0, CalculatePercentage(1, 0))
	assert.Equal(t, 0.0, CalculatePercentage(1, math.NaN()))
}

func TestCalculateProfit(t *testing.T) {
	assert.Equal(t, 200.0, CalculateProfit(100, 80, 10))
	assert.Equal(t, 0.0, CalculateProfit(math.NaN(), 80, 10))
	assert.Equal(t, -50.0, CalculateProfit(70, 80, 5))
}

func TestRoundWhole(t *testing.T) {
	assert.Equal(t, int64(33333), RoundWhole(100000.0/3))
	assert.Equal(t, int64(3), RoundWhole(2.5))
	assert.Equal(t, int64(0), RoundWhole(math.Inf(1)))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "0", FormatCurrency(math.NaN()))
	assert.Equal(t, "0", FormatCurrency(math.Inf(1)))
	assert.Equal(t, "0", FormatCurrency(0))
	assert.Equal(t, "1,000", FormatCurrency(1000))
	assert.Equal(t, "1,234.57", FormatCurrency(1234.567))
}
