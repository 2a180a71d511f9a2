package purchasing

import (
	"fmt"

	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType distinguishes a single flat discount on the whole order from
// per-line discounts already reflected in each line's total.
type DiscountType string

const (
	DiscountTypeFlat    DiscountType = "Flat"
	DiscountTypeProduct DiscountType = "Product"
)

// IsValid checks if the discount type is valid
func (t DiscountType) IsValid() bool {
	return t == DiscountTypeFlat || t == DiscountTypeProduct
}

// DiscountValueType says whether a discount value is an absolute amount or a
// percentage of its basis.
type DiscountValueType string

const (
	DiscountValueTypeAmount  DiscountValueType = "Amount"
	DiscountValueTypePercent DiscountValueType = "Percent"
)

// IsValid checks if the discount value type is valid
func (t DiscountValueType) IsValid() bool {
	return t == DiscountValueTypeAmount || t == DiscountValueTypePercent
}

// ResolveDiscount converts a discount specification into an absolute amount
// against the given basis. Percent values are taken as a fraction of the
// basis; the result is capped at the basis so a discount can never drive a
// taxable amount negative.
func ResolveDiscount(valueType DiscountValueType, value, basis decimal.Decimal) decimal.Decimal {
	if value.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	var resolved decimal.Decimal
	switch valueType {
	case DiscountValueTypePercent:
		resolved = basis.Mul(value).Div(hundred).Round(2)
	default:
		resolved = value
	}
	if resolved.GreaterThan(basis) {
		return basis
	}
	return resolved
}

// LineItem is one product row on a purchase order. Taxes and TotalPrice are
// computed by PriceLine; everything else is caller input.
type LineItem struct {
	ProductID                  uuid.UUID         `json:"productId"`
	ProductName                string            `json:"productName"`
	Quantity                   decimal.Decimal   `json:"quantity"`
	Unit                       string            `json:"unit,omitempty"`
	HSNOrSAC                   string            `json:"hsnOrSacCode,omitempty"`
	Rate                       decimal.Decimal   `json:"rate"`
	InProductDiscount          decimal.Decimal   `json:"inProductDiscount"`
	InProductDiscountValueType DiscountValueType `json:"inProductDiscountValueType"`
	Taxes                      []TaxLine         `json:"taxes"`
	TotalPrice                 decimal.Decimal   `json:"totalPrice"`
}

// Base returns quantity × rate before any discount or tax
func (li *LineItem) Base() decimal.Decimal {
	return li.Quantity.Mul(li.Rate)
}

// DiscountAmount returns the line's resolved absolute discount
func (li *LineItem) DiscountAmount() decimal.Decimal {
	return ResolveDiscount(li.InProductDiscountValueType, li.InProductDiscount, li.Base())
}

// TaxableBase returns the base net of the line discount
func (li *LineItem) TaxableBase() decimal.Decimal {
	return li.Base().Sub(li.DiscountAmount())
}

// TaxTotal returns the sum of this line's tax amounts
func (li *LineItem) TaxTotal() decimal.Decimal {
	total := decimal.Zero
	for _, t := range li.Taxes {
		total = total.Add(t.Amount)
	}
	return total
}

// LineInput is the caller-supplied shape of one product row before pricing.
// TaxRates lists the nominal GST rates to apply; the intra/inter split is
// decided by the tax context, not the caller.
type LineInput struct {
	ProductID                  uuid.UUID
	ProductName                string
	Quantity                   decimal.Decimal
	Unit                       string
	HSNOrSAC                   string
	Rate                       decimal.Decimal
	InProductDiscount          decimal.Decimal
	InProductDiscountValueType DiscountValueType
	TaxRates                   []decimal.Decimal
}

// PriceLine runs the full per-line pipeline: base, discount resolution and
// cap, taxable amount, tax split, line total.
func PriceLine(in LineInput, ctx TaxContext) (LineItem, error) {
	if in.ProductID == uuid.Nil {
		return LineItem{}, shared.NewDomainError("INVALID_PRODUCT", "Line product ID cannot be empty")
	}
	if in.Quantity.LessThanOrEqual(decimal.Zero) {
		return LineItem{}, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity must be positive, got %s", in.Quantity))
	}
	if in.Rate.LessThan(decimal.Zero) {
		return LineItem{}, shared.NewDomainError("INVALID_RATE", fmt.Sprintf("Rate cannot be negative, got %s", in.Rate))
	}
	if in.InProductDiscount.LessThan(decimal.Zero) {
		return LineItem{}, shared.NewDomainError("INVALID_DISCOUNT", "Line discount cannot be negative")
	}
	valueType := in.InProductDiscountValueType
	if valueType == "" {
		valueType = DiscountValueTypeAmount
	}
	if !valueType.IsValid() {
		return LineItem{}, shared.NewDomainError("INVALID_DISCOUNT", fmt.Sprintf("Unknown discount value type %q", in.InProductDiscountValueType))
	}

	line := LineItem{
		ProductID:                  in.ProductID,
		ProductName:                in.ProductName,
		Quantity:                   in.Quantity,
		Unit:                       in.Unit,
		HSNOrSAC:                   in.HSNOrSAC,
		Rate:                       in.Rate,
		InProductDiscount:          in.InProductDiscount,
		InProductDiscountValueType: valueType,
	}

	taxable := line.TaxableBase()
	for _, rate := range in.TaxRates {
		if rate.LessThan(decimal.Zero) {
			return LineItem{}, shared.NewDomainError("INVALID_TAX_RATE", fmt.Sprintf("Tax rate cannot be negative, got %s", rate))
		}
		line.Taxes = append(line.Taxes, ComputeLineTaxes(taxable, rate, ctx)...)
	}
	line.TotalPrice = taxable.Add(line.TaxTotal())
	return line, nil
}
