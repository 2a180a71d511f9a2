package valueobject

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(decimal.NewFromFloat(1234.56), INR)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", m.StringFixed(2))
	assert.Equal(t, INR, m.Currency())

	_, err = NewMoney(decimal.NewFromInt(10), "")
	assert.Error(t, err)
}

func TestMoney_Signs(t *testing.T) {
	assert.True(t, NewMoneyINR(decimal.NewFromInt(5)).IsPositive())
	assert.True(t, NewMoneyINR(decimal.NewFromInt(-5)).IsNegative())
	zero := NewMoneyINR(decimal.Zero)
	assert.False(t, zero.IsPositive())
	assert.False(t, zero.IsNegative())
}

func TestMoney_Round(t *testing.T) {
	m := NewMoneyINR(decimal.NewFromFloat(1180.496))
	assert.Equal(t, "1180.50", m.Round(2).StringFixed(2))
	assert.Equal(t, "1180", m.Round(0).Amount().String())
}

func TestMoney_WithinTolerance(t *testing.T) {
	a := NewMoneyINR(decimal.NewFromFloat(100.00))
	assert.True(t, a.WithinTolerance(NewMoneyINR(decimal.NewFromFloat(100.009))))
	assert.True(t, a.WithinTolerance(NewMoneyINR(decimal.NewFromFloat(99.99))))
	assert.False(t, a.WithinTolerance(NewMoneyINR(decimal.NewFromFloat(100.02))))

	usd, err := NewMoney(decimal.NewFromInt(100), Currency("USD"))
	require.NoError(t, err)
	assert.False(t, a.WithinTolerance(usd))
}
