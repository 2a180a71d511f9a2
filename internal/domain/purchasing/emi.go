package purchasing

import (
	"fmt"
	"time"

	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/alanwarcs/BM-Backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// EMIFrequency is the cadence of an installment schedule
type EMIFrequency string

const (
	EMIFrequencyMonthly    EMIFrequency = "Monthly"
	EMIFrequencyQuarterly  EMIFrequency = "Quarterly"
	EMIFrequencyHalfYearly EMIFrequency = "Half-Yearly"
	EMIFrequencyYearly     EMIFrequency = "Yearly"
)

// IsValid checks if the frequency is valid
func (f EMIFrequency) IsValid() bool {
	switch f {
	case EMIFrequencyMonthly, EMIFrequencyQuarterly, EMIFrequencyHalfYearly, EMIFrequencyYearly:
		return true
	}
	return false
}

// Months returns the number of months between consecutive installments
func (f EMIFrequency) Months() int {
	switch f {
	case EMIFrequencyQuarterly:
		return 3
	case EMIFrequencyHalfYearly:
		return 6
	case EMIFrequencyYearly:
		return 12
	default:
		return 1
	}
}

// InstallmentStatus tracks whether a single installment has been settled
type InstallmentStatus string

const (
	InstallmentStatusUnpaid InstallmentStatus = "Unpaid"
	InstallmentStatusPaid   InstallmentStatus = "Paid"
)

// PaymentMethod is the settlement channel recorded on a paid installment
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "Cash"
	PaymentMethodBankTransfer PaymentMethod = "Bank Transfer"
	PaymentMethodCheque       PaymentMethod = "Cheque"
	PaymentMethodCard         PaymentMethod = "Card"
	PaymentMethodUPI          PaymentMethod = "UPI"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodCheque, PaymentMethodCard, PaymentMethodUPI:
		return true
	}
	return false
}

// Installment is one entry of an EMI schedule. Payment fields are only set
// through PurchaseOrder.RecordInstallmentPayment, never by generic updates.
type Installment struct {
	Amount           decimal.Decimal   `json:"amount"`
	DueDate          time.Time         `json:"dueDate"`
	Status           InstallmentStatus `json:"status"`
	PaymentDate      *time.Time        `json:"paymentDate,omitempty"`
	PaymentMethod    PaymentMethod     `json:"paymentMethod,omitempty"`
	PaymentReference string            `json:"paymentReference,omitempty"`
	PaymentNote      string            `json:"paymentNote,omitempty"`
}

// EMIDetails is the installment plan attached to an EMI purchase order
type EMIDetails struct {
	Frequency         EMIFrequency    `json:"frequency"`
	InterestRate      decimal.Decimal `json:"interestRate"`
	TotalWithInterest decimal.Decimal `json:"totalWithInterest"`
	AdvancePayment    decimal.Decimal `json:"advancePayment"`
	Installments      []Installment   `json:"installments"`
}

// TargetAmount returns the figure the installments must sum to: the total
// with interest when one is declared, otherwise the financed amount.
func (e *EMIDetails) TargetAmount(financed decimal.Decimal) decimal.Decimal {
	if e.TotalWithInterest.GreaterThan(decimal.Zero) {
		return e.TotalWithInterest
	}
	return financed
}

// ValidateSchedule checks the installment plan: valid frequency, positive
// amounts, due dates on or after the order date and in ascending order, and
// installments summing to the target within the 0.01 tolerance. All
// violations are collected.
func (e *EMIDetails) ValidateSchedule(financed decimal.Decimal, orderDate time.Time) shared.ValidationErrors {
	var errs shared.ValidationErrors

	if !e.Frequency.IsValid() {
		errs.Add("emiDetails.frequency", "INVALID_FREQUENCY", fmt.Sprintf("Unknown EMI frequency %q", e.Frequency))
	}
	if e.InterestRate.LessThan(decimal.Zero) {
		errs.Add("emiDetails.interestRate", "INVALID_INTEREST_RATE", "Interest rate cannot be negative")
	}
	if valueobject.NewMoneyINR(e.AdvancePayment).IsNegative() {
		errs.Add("emiDetails.advancePayment", "INVALID_AMOUNT", "Advance payment cannot be negative")
	}
	if len(e.Installments) == 0 {
		errs.Add("emiDetails.installments", "EMPTY_SCHEDULE", "EMI schedule must have at least one installment")
		return errs
	}

	orderDay := orderDate.Truncate(24 * time.Hour)
	sum := decimal.Zero
	for i, inst := range e.Installments {
		field := fmt.Sprintf("emiDetails.installments[%d]", i)
		if !valueobject.NewMoneyINR(inst.Amount).IsPositive() {
			errs.Add(field+".amount", "INVALID_AMOUNT", "Installment amount must be positive")
		}
		if inst.DueDate.Before(orderDay) {
			errs.Add(field+".dueDate", "INVALID_DUE_DATE", "Installment due date cannot precede the order date")
		}
		if i > 0 && inst.DueDate.Before(e.Installments[i-1].DueDate) {
			errs.Add(field+".dueDate", "UNORDERED_SCHEDULE", "Installment due dates must be in ascending order")
		}
		sum = sum.Add(inst.Amount)
	}

	target := e.TargetAmount(financed)
	if !valueobject.NewMoneyINR(sum).WithinTolerance(valueobject.NewMoneyINR(target)) {
		errs.AddMismatch("emiDetails.installments", "SCHEDULE_SUM_MISMATCH",
			"Installments do not sum to the financed total", target.StringFixed(2), sum.StringFixed(2))
	}

	return errs
}

// BuildSchedule generates an evenly split installment plan starting one
// period after the first due date. The last installment absorbs the rounding
// remainder so the schedule always sums to the target exactly.
func BuildSchedule(target decimal.Decimal, count int, frequency EMIFrequency, firstDue time.Time) ([]Installment, error) {
	if count <= 0 {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Installment count must be positive")
	}
	if target.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_SCHEDULE", "Schedule target must be positive")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_FREQUENCY", fmt.Sprintf("Unknown EMI frequency %q", frequency))
	}

	per := valueobject.NewMoneyINR(target.Div(decimal.NewFromInt(int64(count)))).Round(2).Amount()
	installments := make([]Installment, count)
	running := decimal.Zero
	due := firstDue
	for i := 0; i < count; i++ {
		amount := per
		if i == count-1 {
			amount = target.Sub(running)
		}
		installments[i] = Installment{
			Amount:  amount,
			DueDate: due,
			Status:  InstallmentStatusUnpaid,
		}
		running = running.Add(amount)
		due = due.AddDate(0, frequency.Months(), 0)
	}
	return installments, nil
}
