package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestEstimateTaxBracketBoundaries фиксирует константы шкалы на границах диапазонов.
func TestEstimateTaxBracketBoundaries(t *testing.T) {
	assert.Equal(t, 0.0, EstimateTax(250000))
	assert.Equal(t, 12500.0, EstimateTax(500000))
	assert.Equal(t, 112500.0, EstimateTax(1000000))
	assert.Equal(t, 262500.0, EstimateTax(1500000))
}

// TestEstimateTaxInsideBrackets проверяет значения внутри диапазонов.
func TestEstimateTaxInsideBrackets(t *testing.T) {
	assert.Equal(t, 0.0, EstimateTax(0))
	assert.Equal(t, 0.0, EstimateTax(-1000))
	assert.Equal(t, 5000.0, EstimateTax(350000))
	assert.Equal(t, 52500.0, EstimateTax(700000))
	assert.Equal(t, 142500.0, EstimateTax(1100000))
}
