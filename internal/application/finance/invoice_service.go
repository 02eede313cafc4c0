package finance

import (
	"context"
	"errors"
	"fmt"

	"github.com/erp/retailcore/internal/application/numbering"
	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/finance"
	"github.com/erp/retailcore/internal/domain/sequence"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/erp/retailcore/internal/infrastructure/logger"
	"github.com/erp/retailcore/internal/infrastructure/telemetry"
	"github.com/erp/retailcore/internal/infrastructure/validation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService issues invoices for completed orders and records payments
// and refunds against them
type InvoiceService struct {
	scope          uow.TransactionScope
	numbering      *numbering.NumberingService
	snapshots      *SnapshotService
	eventPublisher shared.EventPublisher
	metrics        *telemetry.LedgerMetrics
	logger         *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(scope uow.TransactionScope, numbering *numbering.NumberingService, snapshots *SnapshotService, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		scope:     scope,
		numbering: numbering,
		snapshots: snapshots,
		logger:    logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *InvoiceService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetMetrics sets the ledger metrics (optional)
func (s *InvoiceService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// CreateInvoice issues the invoice of a completed order. An order has at most
// one invoice. Registered customers are debited the invoice total.
func (s *InvoiceService) CreateInvoice(ctx context.Context, tenantID, orderID uuid.UUID) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create", "sales_order_id", orderID.String())
	defer span.End()
	log := logger.ForContext(ctx, s.logger)

	var invoice *finance.Invoice
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		order, err := repos.SalesOrderRepo().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if order.Status != trade.OrderStatusCompleted {
			return shared.Errorf(shared.ErrInvalidState,
				"Order %s is %s; only completed orders can be invoiced", order.OrderNumber, order.Status)
		}
		existing, err := repos.InvoiceRepo().FindBySalesOrder(ctx, tenantID, orderID)
		if err == nil {
			return shared.Errorf(shared.ErrAlreadyExists,
				"Order %s already has invoice %s", order.OrderNumber, existing.InvoiceNumber)
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		number, err := s.numbering.Draw(ctx, repos, tenantID, sequence.KindInvoice)
		if err != nil {
			return err
		}
		invoice, err = finance.NewInvoice(tenantID, number, order.ID, order.CustomerID, order.CachedTotal)
		if err != nil {
			return err
		}
		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}

		if invoice.CustomerID == nil || !invoice.TotalInvoiceAmount.IsPositive() {
			return nil
		}
		entry, err := finance.NewLedgerEntry(tenantID, *invoice.CustomerID, finance.EntryTypeDebit, finance.EntryKindSale,
			invoice.TotalInvoiceAmount, fmt.Sprintf("Invoice %s", invoice.InvoiceNumber))
		if err != nil {
			return err
		}
		return repos.CustomerLedgerRepo().Append(ctx, entry.ForInvoice(invoice.ID))
	})
	s.metrics.RecordTransition(ctx, "create_invoice", err)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Invoice creation rejected",
			zap.String("sales_order_id", orderID.String()),
			zap.Error(err))
		return nil, err
	}

	log.Info("Invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("total", invoice.TotalInvoiceAmount.StringFixed(2)))
	s.publishDomainEvents(ctx, invoice)
	s.refreshSnapshot(ctx, invoice)
	resp := ToInvoiceResponse(invoice, nil)
	return &resp, nil
}

// RecordPayment appends a payment and refreshes the invoice's paid amount
// and status in the same transaction
func (s *InvoiceService) RecordPayment(ctx context.Context, tenantID uuid.UUID, req RecordPaymentRequest) (*InvoiceResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.record(ctx, tenantID, finance.PaymentTypePayment, paymentInput(req))
}

// RecordRefund appends a refund. The refund may not exceed payments minus
// earlier refunds.
func (s *InvoiceService) RecordRefund(ctx context.Context, tenantID uuid.UUID, req RecordRefundRequest) (*InvoiceResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.record(ctx, tenantID, finance.PaymentTypeRefund, paymentInput(req))
}

type paymentInput struct {
	InvoiceID  uuid.UUID
	Amount     decimal.Decimal
	Method     finance.PaymentMethod
	Reference  string
	ReceivedBy *uuid.UUID
}

func (s *InvoiceService) record(ctx context.Context, tenantID uuid.UUID, kind finance.PaymentType, in paymentInput) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "record_"+string(kind),
		"invoice_id", in.InvoiceID.String(), "amount", in.Amount.StringFixed(2))
	defer span.End()
	log := logger.ForContext(ctx, s.logger)

	var (
		invoice *finance.Invoice
		history []finance.Payment
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, tenantID, in.InvoiceID)
		if err != nil {
			return err
		}
		payment, err := finance.NewPayment(tenantID, invoice.ID, kind, in.Amount, in.Method, in.Reference)
		if err != nil {
			return err
		}
		payment.ReceivedBy = in.ReceivedBy

		history, err = repos.PaymentRepo().FindByInvoice(ctx, tenantID, invoice.ID)
		if err != nil {
			return err
		}
		if kind == finance.PaymentTypeRefund {
			if err := finance.CheckRefund(history, payment.Amount); err != nil {
				return err
			}
		}
		if err := repos.PaymentRepo().Append(ctx, payment); err != nil {
			return err
		}
		history = append(history, *payment)
		invoice.Reconcile(history)
		invoice.AddDomainEvent(finance.NewPaymentRecordedEvent(invoice, payment))
		if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
			return err
		}

		if invoice.CustomerID == nil {
			return nil
		}
		entryType, entryKind := finance.EntryTypeCredit, finance.EntryKindPayment
		if kind == finance.PaymentTypeRefund {
			entryType, entryKind = finance.EntryTypeDebit, finance.EntryKindRefund
		}
		entry, err := finance.NewLedgerEntry(tenantID, *invoice.CustomerID, entryType, entryKind, payment.Amount,
			fmt.Sprintf("%s on invoice %s", kind, invoice.InvoiceNumber))
		if err != nil {
			return err
		}
		return repos.CustomerLedgerRepo().Append(ctx, entry.ForInvoice(invoice.ID).ForPayment(payment.ID))
	})
	s.metrics.RecordPayment(ctx, string(kind), err)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Payment rejected",
			zap.String("invoice_id", in.InvoiceID.String()),
			zap.String("type", string(kind)),
			zap.Error(err))
		return nil, err
	}

	log.Info("Payment recorded",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("type", string(kind)),
		zap.String("paid", invoice.CachedPaidAmount.StringFixed(2)),
		zap.String("status", string(invoice.PaymentStatus)))
	s.publishDomainEvents(ctx, invoice)
	s.refreshSnapshot(ctx, invoice)
	resp := ToInvoiceResponse(invoice, history)
	return &resp, nil
}

// RecalculatePaidAmount rebuilds the invoice's cached paid amount and status
// from its payment history. Running it twice changes nothing.
func (s *InvoiceService) RecalculatePaidAmount(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var (
		invoice *finance.Invoice
		history []finance.Payment
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		invoice, history, err = s.recalculate(ctx, repos, tenantID, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice, history)
	return &resp, nil
}

// RecalculateAll rebuilds every invoice of a tenant and returns how many
// cached amounts changed
func (s *InvoiceService) RecalculateAll(ctx context.Context, tenantID uuid.UUID) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "recalculate_all")
	defer span.End()

	var ids []uuid.UUID
	if err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		ids, err = repos.InvoiceRepo().ListIDsForTenant(ctx, tenantID)
		return err
	}); err != nil {
		telemetry.RecordError(span, err)
		return 0, err
	}

	changed := 0
	for _, id := range ids {
		err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
			before, err := repos.InvoiceRepo().FindByID(ctx, tenantID, id)
			if err != nil {
				return err
			}
			after, _, err := s.recalculate(ctx, repos, tenantID, id)
			if err != nil {
				return err
			}
			if !before.CachedPaidAmount.Equal(after.CachedPaidAmount) || before.PaymentStatus != after.PaymentStatus {
				changed++
			}
			return nil
		})
		if err != nil {
			telemetry.RecordError(span, err)
			return changed, err
		}
	}
	logger.ForContext(ctx, s.logger).Info("Recalculated invoice paid amounts",
		zap.String("tenant_id", tenantID.String()),
		zap.Int("invoices", len(ids)),
		zap.Int("changed", changed))
	return changed, nil
}

func (s *InvoiceService) recalculate(ctx context.Context, repos uow.Repositories, tenantID, invoiceID uuid.UUID) (*finance.Invoice, []finance.Payment, error) {
	invoice, err := repos.InvoiceRepo().FindByIDForUpdate(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	history, err := repos.PaymentRepo().FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return nil, nil, err
	}
	invoice.Reconcile(history)
	if err := repos.InvoiceRepo().Save(ctx, invoice); err != nil {
		return nil, nil, err
	}
	return invoice, history, nil
}

// GetInvoice returns an invoice with its payment history
func (s *InvoiceService) GetInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var (
		invoice *finance.Invoice
		history []finance.Payment
	)
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByID(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		history, err = repos.PaymentRepo().FindByInvoice(ctx, tenantID, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToInvoiceResponse(invoice, history)
	return &resp, nil
}

func (s *InvoiceService) refreshSnapshot(ctx context.Context, invoice *finance.Invoice) {
	if s.snapshots == nil || invoice.CustomerID == nil {
		return
	}
	// The ledger write is committed; a failed recompute is repaired by
	// SnapshotService.RecomputeAll.
	_, _ = s.snapshots.OnLedgerChanged(ctx, invoice.TenantID, *invoice.CustomerID)
}

func (s *InvoiceService) publishDomainEvents(ctx context.Context, invoice *finance.Invoice) {
	events := invoice.GetDomainEvents()
	invoice.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.ForContext(ctx, s.logger).Error("Failed to publish invoice events",
			zap.String("invoice_id", invoice.ID.String()),
			zap.Error(err))
	}
}
