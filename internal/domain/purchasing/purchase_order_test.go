package purchasing

import (
	"testing"
	"time"

	"github.com/alanwarcs/BM-Backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	vendor := VendorSnapshot{ID: uuid.New(), Name: "Acme Traders", GSTStatus: GSTStatusUnregistered, State: "Gujarat"}
	business := BusinessSnapshot{ID: uuid.New(), Name: "Mehta Enterprises", State: "Gujarat"}
	po, err := NewPurchaseOrder(uuid.New(), "PO-0001", vendor, business, time.Now())
	require.NoError(t, err)
	po.GrandAmount = decimal.NewFromInt(1000)
	po.DueAmount = decimal.NewFromInt(1000)
	return po
}

func TestNewPurchaseOrder(t *testing.T) {
	po := newTestOrder(t)
	assert.Equal(t, StatusPending, po.Status)
	assert.Equal(t, PaymentStatusUnPaid, po.PaymentStatus)
	assert.Equal(t, 1, po.GetVersion())
	assert.False(t, po.IsDeleted)
}

func TestNewPurchaseOrder_Invalid(t *testing.T) {
	vendor := VendorSnapshot{ID: uuid.New()}
	_, err := NewPurchaseOrder(uuid.New(), "", vendor, BusinessSnapshot{}, time.Now())
	assert.Error(t, err)

	_, err = NewPurchaseOrder(uuid.New(), "PO-0001", VendorSnapshot{}, BusinessSnapshot{}, time.Now())
	assert.Error(t, err)

	_, err = NewPurchaseOrder(uuid.New(), "PO-0001", vendor, BusinessSnapshot{}, time.Time{})
	assert.Error(t, err)
}

func TestStatusTransitions(t *testing.T) {
	assert.True(t, StatusPending.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusPending.CanTransitionTo(StatusCancel))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusPending))
	assert.False(t, StatusCompleted.CanTransitionTo(StatusCancel))
	assert.False(t, StatusCancel.CanTransitionTo(StatusCompleted))
}

func TestMarkCompleted(t *testing.T) {
	po := newTestOrder(t)
	require.NoError(t, po.MarkCompleted())
	assert.Equal(t, StatusCompleted, po.Status)
	assert.Equal(t, 2, po.GetVersion())

	err := po.MarkCompleted()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestMarkCancelled_Terminal(t *testing.T) {
	po := newTestOrder(t)
	require.NoError(t, po.MarkCancelled())
	assert.Error(t, po.MarkCompleted())
}

func TestDerivePaymentStatus(t *testing.T) {
	grand := decimal.NewFromInt(1000)
	assert.Equal(t, PaymentStatusUnPaid, DerivePaymentStatus(decimal.Zero, grand))
	assert.Equal(t, PaymentStatusPartiallyPaid, DerivePaymentStatus(decimal.NewFromInt(500), grand))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(grand, grand))
	assert.Equal(t, PaymentStatusPaid, DerivePaymentStatus(decimal.NewFromInt(1001), grand))
}

func TestApplyPayment(t *testing.T) {
	po := newTestOrder(t)

	require.NoError(t, po.ApplyPayment(decimal.NewFromInt(400)))
	assert.True(t, po.PaidAmount.Equal(decimal.NewFromInt(400)))
	assert.True(t, po.DueAmount.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, PaymentStatusPartiallyPaid, po.PaymentStatus)

	require.NoError(t, po.ApplyPayment(decimal.NewFromInt(600)))
	assert.Equal(t, PaymentStatusPaid, po.PaymentStatus)
	assert.True(t, po.DueAmount.IsZero())

	assert.Error(t, po.ApplyPayment(decimal.NewFromInt(1)), "overpayment must be rejected")
	assert.Error(t, po.ApplyPayment(decimal.Zero))
}

func TestMarkBillGenerated(t *testing.T) {
	po := newTestOrder(t)
	billDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, po.MarkBillGenerated("BILL-77", billDate))
	assert.True(t, po.IsBillGenerated)
	assert.Equal(t, "BILL-77", po.BillNumber)
	require.NotNil(t, po.BillGeneratedAt)

	assert.Error(t, po.MarkBillGenerated("BILL-78", billDate))
}

func TestSoftDelete(t *testing.T) {
	po := newTestOrder(t)
	deletedBy := uuid.New()

	require.NoError(t, po.SoftDelete(deletedBy))
	assert.True(t, po.IsDeleted)
	require.NotNil(t, po.UpdatedBy)
	assert.Equal(t, deletedBy, *po.UpdatedBy)

	assert.ErrorIs(t, po.SoftDelete(deletedBy), shared.ErrNotFound)
	assert.ErrorIs(t, po.MarkCompleted(), shared.ErrNotFound)
	assert.ErrorIs(t, po.ApplyPayment(decimal.NewFromInt(10)), shared.ErrNotFound)
}

func TestRecordInstallmentPayment(t *testing.T) {
	po := newTestOrder(t)
	po.PaymentType = PaymentTypeEMI
	po.EMIDetails = &EMIDetails{
		Frequency: EMIFrequencyMonthly,
		Installments: []Installment{
			{Amount: decimal.NewFromInt(500), DueDate: time.Now().AddDate(0, 1, 0), Status: InstallmentStatusUnpaid},
			{Amount: decimal.NewFromInt(500), DueDate: time.Now().AddDate(0, 2, 0), Status: InstallmentStatusUnpaid},
		},
	}
	paidAt := time.Now()

	require.NoError(t, po.RecordInstallmentPayment(0, PaymentMethodUPI, "UTR123", "first emi", paidAt))
	inst := po.EMIDetails.Installments[0]
	assert.Equal(t, InstallmentStatusPaid, inst.Status)
	assert.Equal(t, PaymentMethodUPI, inst.PaymentMethod)
	assert.Equal(t, "UTR123", inst.PaymentReference)
	assert.True(t, po.PaidAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, po.DueAmount.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, PaymentStatusPartiallyPaid, po.PaymentStatus)

	// second installment untouched
	assert.Equal(t, InstallmentStatusUnpaid, po.EMIDetails.Installments[1].Status)
}

func TestRecordInstallmentPayment_Rejections(t *testing.T) {
	po := newTestOrder(t)
	assert.Error(t, po.RecordInstallmentPayment(0, PaymentMethodCash, "", "", time.Now()), "no EMI schedule")

	po.EMIDetails = &EMIDetails{
		Frequency: EMIFrequencyMonthly,
		Installments: []Installment{
			{Amount: decimal.NewFromInt(500), Status: InstallmentStatusPaid},
		},
	}
	assert.Error(t, po.RecordInstallmentPayment(0, PaymentMethodCash, "", "", time.Now()), "already paid")
	assert.Error(t, po.RecordInstallmentPayment(5, PaymentMethodCash, "", "", time.Now()), "index out of range")
	assert.Error(t, po.RecordInstallmentPayment(0, PaymentMethod("Barter"), "", "", time.Now()), "unknown method")
}

func TestDiffAttachments(t *testing.T) {
	po := newTestOrder(t)
	a := NewAttachment("quote.pdf", "business/po/quote.pdf", nil)
	b := NewAttachment("photo.jpg", "business/po/photo.jpg", nil)
	c := NewAttachment("terms.pdf", "business/po/terms.pdf", nil)
	po.Attachments = []Attachment{a, b, c}

	kept, removed := po.DiffAttachments([]uuid.UUID{a.ID, c.ID})
	require.Len(t, kept, 2)
	require.Len(t, removed, 1)
	assert.Equal(t, b.ID, removed[0].ID)
}

func TestFindAttachment(t *testing.T) {
	po := newTestOrder(t)
	a := NewAttachment("quote.pdf", "business/po/quote.pdf", nil)
	po.Attachments = []Attachment{a}

	assert.NotNil(t, po.FindAttachment(a.ID))
	assert.Nil(t, po.FindAttachment(uuid.New()))
}
