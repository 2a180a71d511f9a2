package purchasing

import (
	"testing"

	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var intraCtx = TaxContext{SourceState: "Gujarat", DeliveryState: "Gujarat"}

func TestResolveDiscount(t *testing.T) {
	basis := decimal.NewFromInt(1000)

	tests := []struct {
		name      string
		valueType DiscountValueType
		value     decimal.Decimal
		want      decimal.Decimal
	}{
		{"amount", DiscountValueTypeAmount, decimal.NewFromInt(150), decimal.NewFromInt(150)},
		{"percent", DiscountValueTypePercent, decimal.NewFromInt(10), decimal.NewFromInt(100)},
		{"amount capped at basis", DiscountValueTypeAmount, decimal.NewFromInt(5000), basis},
		{"percent capped at basis", DiscountValueTypePercent, decimal.NewFromInt(150), basis},
		{"zero value", DiscountValueTypeAmount, decimal.Zero, decimal.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveDiscount(tt.valueType, tt.value, basis)
			assert.True(t, got.Equal(tt.want), "want %s got %s", tt.want, got)
		})
	}
}

func TestPriceLine(t *testing.T) {
	line, err := PriceLine(LineInput{
		ProductID:                  uuid.New(),
		ProductName:                "Steel Rod 12mm",
		Quantity:                   decimal.NewFromInt(10),
		Rate:                       decimal.NewFromInt(100),
		InProductDiscount:          decimal.NewFromInt(10),
		InProductDiscountValueType: DiscountValueTypePercent,
		TaxRates:                   []decimal.Decimal{decimal.NewFromInt(18)},
	}, intraCtx)

	require.NoError(t, err)
	assert.True(t, line.Base().Equal(decimal.NewFromInt(1000)))
	assert.True(t, line.DiscountAmount().Equal(decimal.NewFromInt(100)))
	assert.True(t, line.TaxableBase().Equal(decimal.NewFromInt(900)))
	// 900 at 18% intra-state: CGST 81 + SGST 81
	require.Len(t, line.Taxes, 2)
	assert.True(t, line.TaxTotal().Equal(decimal.NewFromInt(162)))
	assert.True(t, line.TotalPrice.Equal(decimal.NewFromInt(1062)), "got %s", line.TotalPrice)
}

func TestPriceLine_DiscountCappedAtBase(t *testing.T) {
	line, err := PriceLine(LineInput{
		ProductID:                  uuid.New(),
		Quantity:                   decimal.NewFromInt(1),
		Rate:                       decimal.NewFromInt(100),
		InProductDiscount:          decimal.NewFromInt(500),
		InProductDiscountValueType: DiscountValueTypeAmount,
		TaxRates:                   []decimal.Decimal{decimal.NewFromInt(18)},
	}, intraCtx)

	require.NoError(t, err)
	assert.True(t, line.TaxableBase().IsZero(), "taxable base must not go negative")
	assert.True(t, line.TotalPrice.IsZero())
}

func TestPriceLine_Rejections(t *testing.T) {
	valid := LineInput{
		ProductID: uuid.New(),
		Quantity:  decimal.NewFromInt(1),
		Rate:      decimal.NewFromInt(100),
	}

	tests := []struct {
		name   string
		mutate func(*LineInput)
		code   string
	}{
		{"zero quantity", func(in *LineInput) { in.Quantity = decimal.Zero }, "INVALID_QUANTITY"},
		{"negative quantity", func(in *LineInput) { in.Quantity = decimal.NewFromInt(-1) }, "INVALID_QUANTITY"},
		{"negative rate", func(in *LineInput) { in.Rate = decimal.NewFromInt(-5) }, "INVALID_RATE"},
		{"negative discount", func(in *LineInput) { in.InProductDiscount = decimal.NewFromInt(-1) }, "INVALID_DISCOUNT"},
		{"missing product", func(in *LineInput) { in.ProductID = uuid.Nil }, "INVALID_PRODUCT"},
		{"negative tax rate", func(in *LineInput) { in.TaxRates = []decimal.Decimal{decimal.NewFromInt(-18)} }, "INVALID_TAX_RATE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := PriceLine(in, intraCtx)
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.code, domainErr.Code)
		})
	}
}

func TestPriceLine_ZeroRateLine(t *testing.T) {
	// Free-of-charge lines are allowed; only negative rates are rejected
	line, err := PriceLine(LineInput{
		ProductID: uuid.New(),
		Quantity:  decimal.NewFromInt(3),
		Rate:      decimal.Zero,
		TaxRates:  []decimal.Decimal{decimal.NewFromInt(18)},
	}, intraCtx)

	require.NoError(t, err)
	assert.True(t, line.TotalPrice.IsZero())
}
