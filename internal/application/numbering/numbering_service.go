// Package numbering issues human-readable order and invoice numbers.
package numbering

import (
	"context"

	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/sequence"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NumberingService draws numbers from per-tenant counters
type NumberingService struct {
	scope    uow.TransactionScope
	prefixes sequence.Prefixes
	logger   *zap.Logger
	metrics  *telemetry.LedgerMetrics
}

// NewNumberingService creates a new NumberingService
func NewNumberingService(scope uow.TransactionScope, prefixes sequence.Prefixes, logger *zap.Logger) *NumberingService {
	if prefixes == nil {
		prefixes = sequence.DefaultPrefixes()
	}
	return &NumberingService{
		scope:    scope,
		prefixes: prefixes,
		logger:   logger,
	}
}

// SetMetrics sets the ledger metrics (optional)
func (s *NumberingService) SetMetrics(metrics *telemetry.LedgerMetrics) {
	s.metrics = metrics
}

// NextOrderNumber issues the next sales order number in its own transaction
func (s *NumberingService) NextOrderNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return s.next(ctx, tenantID, sequence.KindSalesOrder)
}

// NextInvoiceNumber issues the next invoice number in its own transaction
func (s *NumberingService) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	return s.next(ctx, tenantID, sequence.KindInvoice)
}

func (s *NumberingService) next(ctx context.Context, tenantID uuid.UUID, kind sequence.Kind) (string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "numbering", "next", "kind", string(kind))
	defer span.End()

	var number string
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		number, err = s.Draw(ctx, repos, tenantID, kind)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return "", err
	}
	return number, nil
}

// Draw issues a number inside the caller's transaction. If that transaction
// rolls back the counter is not advanced.
func (s *NumberingService) Draw(ctx context.Context, repos uow.Repositories, tenantID uuid.UUID, kind sequence.Kind) (string, error) {
	if !kind.IsValid() {
		return "", shared.Errorf(shared.ErrInvalidInput, "Unknown sequence kind %q", kind)
	}
	prefix := s.prefixes.For(kind)
	if tenantID == uuid.Nil {
		s.logger.Warn("No tenant for sequence, issuing fallback number",
			zap.String("kind", string(kind)))
		return sequence.Fallback(prefix), nil
	}

	n, err := repos.SequenceRepo().Next(ctx, tenantID, kind)
	if err != nil {
		return "", err
	}
	number := sequence.Format(prefix, n)
	s.metrics.RecordNumber(ctx, string(kind))
	s.logger.Debug("Issued document number",
		zap.String("tenant_id", tenantID.String()),
		zap.String("number", number))
	return number, nil
}

// Peek returns the last number issued for kind without advancing the
// counter. It returns "" when the tenant has not drawn one yet.
func (s *NumberingService) Peek(ctx context.Context, tenantID uuid.UUID, kind sequence.Kind) (string, error) {
	if !kind.IsValid() {
		return "", shared.Errorf(shared.ErrInvalidInput, "Unknown sequence kind %q", kind)
	}
	var n int64
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		n, err = repos.SequenceRepo().Current(ctx, tenantID, kind)
		return err
	})
	if err != nil || n == 0 {
		return "", err
	}
	return sequence.Format(s.prefixes.For(kind), n), nil
}
