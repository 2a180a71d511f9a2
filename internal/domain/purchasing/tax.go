package purchasing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Tax type and sub-type identifiers carried on each tax line
const (
	TaxTypeGST = "GST"

	TaxSubTypeCGST = "CGST"
	TaxSubTypeSGST = "SGST"
	TaxSubTypeIGST = "IGST"
)

var two = decimal.NewFromInt(2)
var hundred = decimal.NewFromInt(100)

// TaxContext carries the source and delivery states that determine whether a
// transaction is intra-state (CGST+SGST) or inter-state (IGST).
type TaxContext struct {
	SourceState   string
	DeliveryState string
}

// IntraState reports whether source and delivery state match. Comparison is
// case-insensitive and ignores surrounding whitespace; state names arrive
// from user-edited address forms.
func (c TaxContext) IntraState() bool {
	src := strings.ToLower(strings.TrimSpace(c.SourceState))
	dst := strings.ToLower(strings.TrimSpace(c.DeliveryState))
	return src != "" && src == dst
}

// TaxLine is one tax component applied to a line item. For a nominal GST
// rate exactly one of two shapes appears: CGST+SGST (each half the nominal
// rate) or a single IGST at the full nominal rate, never a mix.
type TaxLine struct {
	Type    string          `json:"type"`
	SubType string          `json:"subType"`
	Rate    decimal.Decimal `json:"rate"`
	Amount  decimal.Decimal `json:"amount"`
}

// ComputeLineTaxes splits a nominal GST rate over a taxable base according
// to the tax context. Intra-state yields CGST and SGST at half the nominal
// rate each; inter-state yields a single IGST line at the full rate.
// Amounts are rounded to two decimal places.
func ComputeLineTaxes(taxableBase, nominalRate decimal.Decimal, ctx TaxContext) []TaxLine {
	if nominalRate.LessThanOrEqual(decimal.Zero) {
		return nil
	}

	if ctx.IntraState() {
		half := nominalRate.Div(two)
		amount := taxableBase.Mul(half).Div(hundred).Round(2)
		return []TaxLine{
			{Type: TaxTypeGST, SubType: TaxSubTypeCGST, Rate: half, Amount: amount},
			{Type: TaxTypeGST, SubType: TaxSubTypeSGST, Rate: half, Amount: amount},
		}
	}

	amount := taxableBase.Mul(nominalRate).Div(hundred).Round(2)
	return []TaxLine{
		{Type: TaxTypeGST, SubType: TaxSubTypeIGST, Rate: nominalRate, Amount: amount},
	}
}

// TaxShapeValid checks that a line's tax components match the context:
// intra-state lines carry only CGST/SGST, inter-state lines only IGST.
func TaxShapeValid(taxes []TaxLine, ctx TaxContext) bool {
	intra := ctx.IntraState()
	for _, t := range taxes {
		switch t.SubType {
		case TaxSubTypeCGST, TaxSubTypeSGST:
			if !intra {
				return false
			}
		case TaxSubTypeIGST:
			if intra {
				return false
			}
		}
	}
	return true
}
