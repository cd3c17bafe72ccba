package services

import "context"

// ReclosePolicy decides whether a month that already has an invoice may be closed again.
type ReclosePolicy interface {
	CheckReclose(ctx context.Context, store InvoiceStore, m Month) error
}

// AllowReclose lets every close produce the month's next invoice.
type AllowReclose struct{}

func (AllowReclose) CheckReclose(context.Context, InvoiceStore, Month) error { return nil }

// SingleInvoicePerMonth rejects a close when the month already has an invoice.
type SingleInvoicePerMonth struct{}

func (SingleInvoicePerMonth) CheckReclose(ctx context.Context, store InvoiceStore, m Month) error {
	n, err := store.CountForMonth(ctx, m.String())
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrAlreadyClosed
	}
	return nil
}

// RecloseFromConfig maps the INVOICE_ALLOW_RECLOSE flag to a policy.
func RecloseFromConfig(allow bool) ReclosePolicy {
	if allow {
		return AllowReclose{}
	}
	return SingleInvoicePerMonth{}
}
