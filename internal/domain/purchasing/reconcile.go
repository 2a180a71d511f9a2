package purchasing

import (
	"fmt"

	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/alanwarcs/BM-Backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

func withinTolerance(a, b decimal.Decimal) bool {
	return valueobject.NewMoneyINR(a).WithinTolerance(valueobject.NewMoneyINR(b))
}

func mismatch(errs *shared.ValidationErrors, field, message string, expected, actual decimal.Decimal) {
	errs.AddMismatch(field, "TOTALS_MISMATCH", message,
		valueobject.NewMoneyINR(expected).StringFixed(2), valueobject.NewMoneyINR(actual).StringFixed(2))
}

// Reconcile verifies the closed arithmetic system linking line items,
// discount, tax, round-off and the grand total. It collects every violation
// rather than stopping at the first, so a caller can report the full set of
// inconsistencies in one response. Reconcile never mutates the order.
//
// All comparisons use an absolute tolerance of 0.01 to absorb per-line
// rounding.
func Reconcile(po *PurchaseOrder) shared.ValidationErrors {
	var errs shared.ValidationErrors

	if len(po.Products) == 0 {
		errs.Add("products", "EMPTY_PRODUCTS", "Purchase order must have at least one product line")
	}

	ctx := po.Address.TaxContext()
	lineDiscounts := decimal.Zero
	for i := range po.Products {
		li := &po.Products[i]
		field := fmt.Sprintf("products[%d]", i)

		if li.Quantity.LessThanOrEqual(decimal.Zero) {
			errs.Add(field+".quantity", "INVALID_QUANTITY", "Quantity must be positive")
		}
		if li.Rate.LessThan(decimal.Zero) {
			errs.Add(field+".rate", "INVALID_RATE", "Rate cannot be negative")
		}
		if !TaxShapeValid(li.Taxes, ctx) {
			errs.Add(field+".taxes", "INVALID_TAX_SHAPE", "Tax components do not match the intra-state/inter-state context")
		}

		expectedTotal := li.TaxableBase().Add(li.TaxTotal())
		if !withinTolerance(expectedTotal, li.TotalPrice) {
			mismatch(&errs, field+".totalPrice", "Line total does not match taxable amount plus taxes", expectedTotal, li.TotalPrice)
		}
		lineDiscounts = lineDiscounts.Add(li.DiscountAmount())
	}

	expectedSubtotal := po.ComputeSubtotal()
	if !withinTolerance(expectedSubtotal, po.Subtotal) {
		mismatch(&errs, "subtotal", "Subtotal does not match sum of quantity × rate", expectedSubtotal, po.Subtotal)
	}

	expectedTax := po.SumLineTaxes()
	if !withinTolerance(expectedTax, po.TaxAmount) {
		mismatch(&errs, "taxAmount", "Tax amount does not match sum of line taxes", expectedTax, po.TaxAmount)
	}

	expectedBeforeDiscount := po.Subtotal.Add(po.TaxAmount)
	if !withinTolerance(expectedBeforeDiscount, po.TotalBeforeDiscount) {
		mismatch(&errs, "totalBeforeDiscount", "Total before discount does not equal subtotal plus tax", expectedBeforeDiscount, po.TotalBeforeDiscount)
	}

	if !po.DiscountType.IsValid() {
		errs.Add("discountType", "INVALID_DISCOUNT_TYPE", fmt.Sprintf("Unknown discount type %q", po.DiscountType))
	}
	if valueobject.NewMoneyINR(po.Discount).IsNegative() || valueobject.NewMoneyINR(po.TotalAmountOfDiscount).IsNegative() {
		errs.Add("discount", "INVALID_DISCOUNT", "Discount cannot be negative")
	}

	// A Flat discount is subtracted exactly once from the aggregate; a
	// Product discount is already reflected in each line's total and the
	// recorded total must match the sum of per-line discounts.
	flatDiscount := decimal.Zero
	switch po.DiscountType {
	case DiscountTypeFlat:
		expected := ResolveDiscount(po.DiscountValueType, po.Discount, po.TotalBeforeDiscount)
		if !withinTolerance(expected, po.TotalAmountOfDiscount) {
			mismatch(&errs, "totalAmountOfDiscount", "Discount total does not match the resolved flat discount", expected, po.TotalAmountOfDiscount)
		}
		flatDiscount = po.TotalAmountOfDiscount
	case DiscountTypeProduct:
		if !withinTolerance(lineDiscounts, po.TotalAmountOfDiscount) {
			mismatch(&errs, "totalAmountOfDiscount", "Discount total does not match the sum of per-line discounts", lineDiscounts, po.TotalAmountOfDiscount)
		}
	}

	if !po.RoundOff && !po.RoundOffAmount.IsZero() {
		errs.Add("roundOffAmount", "INVALID_ROUND_OFF", "Round-off amount must be zero when round-off is disabled")
	}
	if po.RoundOffAmount.Abs().GreaterThanOrEqual(one) {
		errs.Add("roundOffAmount", "INVALID_ROUND_OFF", "Round-off magnitude must be less than 1.00")
	}

	// Line totals already carry per-line discounts, so only a flat discount
	// is subtracted here.
	expectedGrand := po.SumLineTotals().Sub(flatDiscount).Add(po.RoundOffAmount)
	if !withinTolerance(expectedGrand, po.GrandAmount) {
		mismatch(&errs, "grandAmount", "Grand amount does not reconcile with lines, discount and round-off", expectedGrand, po.GrandAmount)
	}

	if valueobject.NewMoneyINR(po.PaidAmount).IsNegative() {
		errs.Add("paidAmount", "INVALID_AMOUNT", "Paid amount cannot be negative")
	}
	if po.PaidAmount.GreaterThan(po.GrandAmount.Add(valueobject.ReconciliationTolerance)) {
		errs.Add("paidAmount", "INVALID_AMOUNT", "Paid amount cannot exceed grand amount")
	}
	expectedDue := po.GrandAmount.Sub(po.PaidAmount)
	if !withinTolerance(expectedDue, po.DueAmount) {
		mismatch(&errs, "dueAmount", "Due amount does not equal grand amount minus paid amount", expectedDue, po.DueAmount)
	}
	if derived := DerivePaymentStatus(po.PaidAmount, po.GrandAmount); po.PaymentStatus != derived {
		errs.AddMismatch("paymentStatus", "INVALID_PAYMENT_STATUS", "Payment status is inconsistent with paid and grand amounts", string(derived), string(po.PaymentStatus))
	}

	if po.Vendor.GSTStatus == GSTStatusRegistered && po.Vendor.GSTIN == "" {
		errs.Add("vendor.gstin", "GSTIN_REQUIRED", "GSTIN is required for a GST-registered vendor")
	}

	if po.PaymentType == PaymentTypeEMI && po.EMIDetails == nil {
		errs.Add("emiDetails", "EMI_REQUIRED", "EMI payment type requires an installment schedule")
	}
	if po.EMIDetails != nil {
		financed := po.GrandAmount.Sub(po.EMIDetails.AdvancePayment)
		errs.Merge(po.EMIDetails.ValidateSchedule(financed, po.OrderDate))
	}

	return errs
}
