package purchasing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxContext_IntraState(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		delivery string
		want     bool
	}{
		{"same state", "Gujarat", "Gujarat", true},
		{"case insensitive", "gujarat", "GUJARAT", true},
		{"surrounding whitespace", " Gujarat ", "Gujarat", true},
		{"different states", "Gujarat", "Maharashtra", false},
		{"empty source", "", "Gujarat", false},
		{"both empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := TaxContext{SourceState: tt.source, DeliveryState: tt.delivery}
			assert.Equal(t, tt.want, ctx.IntraState())
		})
	}
}

func TestComputeLineTaxes_IntraState(t *testing.T) {
	ctx := TaxContext{SourceState: "Gujarat", DeliveryState: "Gujarat"}
	taxes := ComputeLineTaxes(decimal.NewFromInt(1000), decimal.NewFromInt(18), ctx)

	require.Len(t, taxes, 2)
	assert.Equal(t, TaxSubTypeCGST, taxes[0].SubType)
	assert.Equal(t, TaxSubTypeSGST, taxes[1].SubType)
	for _, tax := range taxes {
		assert.Equal(t, TaxTypeGST, tax.Type)
		assert.True(t, tax.Rate.Equal(decimal.NewFromInt(9)), "rate should be half the nominal rate")
		assert.True(t, tax.Amount.Equal(decimal.NewFromInt(90)), "amount = 1000 * 9%%, got %s", tax.Amount)
	}
}

func TestComputeLineTaxes_InterState(t *testing.T) {
	ctx := TaxContext{SourceState: "Gujarat", DeliveryState: "Maharashtra"}
	taxes := ComputeLineTaxes(decimal.NewFromInt(1000), decimal.NewFromInt(18), ctx)

	require.Len(t, taxes, 1)
	assert.Equal(t, TaxSubTypeIGST, taxes[0].SubType)
	assert.True(t, taxes[0].Rate.Equal(decimal.NewFromInt(18)))
	assert.True(t, taxes[0].Amount.Equal(decimal.NewFromInt(180)))
}

func TestComputeLineTaxes_TotalTaxEqualAcrossContexts(t *testing.T) {
	base := decimal.NewFromFloat(1234.56)
	rate := decimal.NewFromInt(12)

	intra := ComputeLineTaxes(base, rate, TaxContext{SourceState: "Gujarat", DeliveryState: "Gujarat"})
	inter := ComputeLineTaxes(base, rate, TaxContext{SourceState: "Gujarat", DeliveryState: "Kerala"})

	sum := func(taxes []TaxLine) decimal.Decimal {
		total := decimal.Zero
		for _, tax := range taxes {
			total = total.Add(tax.Amount)
		}
		return total
	}
	diff := sum(intra).Sub(sum(inter)).Abs()
	assert.True(t, diff.LessThanOrEqual(decimal.NewFromFloat(0.01)),
		"intra and inter splits should carry the same total tax, diff %s", diff)
}

func TestComputeLineTaxes_ZeroRate(t *testing.T) {
	ctx := TaxContext{SourceState: "Gujarat", DeliveryState: "Gujarat"}
	assert.Nil(t, ComputeLineTaxes(decimal.NewFromInt(1000), decimal.Zero, ctx))
}

func TestTaxShapeValid(t *testing.T) {
	intra := TaxContext{SourceState: "Gujarat", DeliveryState: "Gujarat"}
	inter := TaxContext{SourceState: "Gujarat", DeliveryState: "Kerala"}

	cgstSgst := []TaxLine{
		{Type: TaxTypeGST, SubType: TaxSubTypeCGST, Rate: decimal.NewFromInt(9)},
		{Type: TaxTypeGST, SubType: TaxSubTypeSGST, Rate: decimal.NewFromInt(9)},
	}
	igst := []TaxLine{
		{Type: TaxTypeGST, SubType: TaxSubTypeIGST, Rate: decimal.NewFromInt(18)},
	}

	assert.True(t, TaxShapeValid(cgstSgst, intra))
	assert.False(t, TaxShapeValid(cgstSgst, inter))
	assert.True(t, TaxShapeValid(igst, inter))
	assert.False(t, TaxShapeValid(igst, intra))
}
