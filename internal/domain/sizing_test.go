package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBalancedSize_EqualSpendWithinTolerance(t *testing.T) {
	// Precios casi iguales: gasto igual por leg, desbalance minúsculo
	s := BalancedSize(0.49, 0.48, 100, 0.05)

	assert.InDelta(t, 100/0.49, s.QtyYes, 1e-9)
	assert.InDelta(t, 100/0.48, s.QtyNo, 1e-9)
	assert.InDelta(t, 200, s.TotalSpend(), 1e-9)
	assert.False(t, s.IsZero())

	ratio := min(s.QtyYes, s.QtyNo) / max(s.QtyYes, s.QtyNo)
	assert.GreaterOrEqual(t, ratio, 0.95)
}

func TestBalancedSize_ClampToExpensiveLeg(t *testing.T) {
	// 0.52 vs 0.45: ratio de cantidades 0.865, fuera de tolerancia 0.05.
	// Ambos legs se recortan a la cantidad del lado caro.
	s := BalancedSize(0.52, 0.45, 100, 0.05)

	assert.InDelta(t, s.QtyYes, s.QtyNo, 1e-9)
	assert.InDelta(t, 100/0.52, s.QtyYes, 1e-9)

	// El lado caro gasta maxSpend completo, el barato menos
	assert.InDelta(t, 100, s.SpendYes, 1e-9)
	assert.Less(t, s.SpendNo, 100.0)
	assert.InDelta(t, s.QtyNo*0.45, s.SpendNo, 1e-9)
}

func TestBalancedSize_ZeroBudget(t *testing.T) {
	assert.True(t, BalancedSize(0.5, 0.45, 0, 0.05).IsZero())
	assert.True(t, BalancedSize(0.5, 0.45, -10, 0.05).IsZero())
}

func TestBalancedSize_InvalidPrices(t *testing.T) {
	assert.True(t, BalancedSize(0, 0.45, 100, 0.05).IsZero())
	assert.True(t, BalancedSize(0.5, -0.1, 100, 0.05).IsZero())
}

func TestBalancedSize_NeverExceedsBudgetPerLeg(t *testing.T) {
	for _, prices := range [][2]float64{{0.3, 0.6}, {0.52, 0.45}, {0.10, 0.85}} {
		s := BalancedSize(prices[0], prices[1], 50, 0.05)
		assert.LessOrEqual(t, s.SpendYes, 50.0+1e-9)
		assert.LessOrEqual(t, s.SpendNo, 50.0+1e-9)
	}
}
