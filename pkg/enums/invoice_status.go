package enums

import "fmt"

// InvoiceStatus mirrors an order's payment status onto its invoices.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusFailed  InvoiceStatus = "failed"
)

var validInvoiceStatuses = []InvoiceStatus{
	InvoiceStatusPending,
	InvoiceStatusPaid,
	InvoiceStatusFailed,
}

// IsValid reports whether the value is a known InvoiceStatus.
func (i InvoiceStatus) IsValid() bool {
	for _, candidate := range validInvoiceStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// InvoiceStatusForPayment maps an order payment status onto the invoice
// vocabulary. Refunded orders leave their invoices failed.
func InvoiceStatusForPayment(status PaymentStatus) (InvoiceStatus, error) {
	switch status {
	case PaymentStatusUnpaid:
		return InvoiceStatusPending, nil
	case PaymentStatusPaid:
		return InvoiceStatusPaid, nil
	case PaymentStatusFailed, PaymentStatusRefunded:
		return InvoiceStatusFailed, nil
	default:
		return "", fmt.Errorf("no invoice status for payment status %q", status)
	}
}
