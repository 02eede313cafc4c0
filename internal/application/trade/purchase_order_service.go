package trade

import (
	"context"
	"sort"

	inventoryapp "github.com/erp/retailcore/internal/application/inventory"
	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/erp/retailcore/internal/infrastructure/logger"
	"github.com/erp/retailcore/internal/infrastructure/telemetry"
	"github.com/erp/retailcore/internal/infrastructure/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order business operations
type PurchaseOrderService struct {
	scope           uow.TransactionScope
	ledger          *inventoryapp.Ledger
	defaultLocation string
	eventPublisher  shared.EventPublisher
	metrics         *telemetry.LedgerMetrics
	logger          *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(scope uow.TransactionScope, ledger *inventoryapp.Ledger, logger *zap.Logger, opts ...Option) *PurchaseOrderService {
	cfg := applyOptions(opts)
	return &PurchaseOrderService{
		scope:           scope,
		ledger:          ledger,
		defaultLocation: cfg.defaultLocation,
		metrics:         cfg.metrics,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create places a pending purchase order
func (s *PurchaseOrderService) Create(ctx context.Context, tenantID uuid.UUID, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	location := req.Location
	if location == "" {
		location = s.defaultLocation
	}
	po, err := trade.NewPurchaseOrder(tenantID, req.Reference, req.SupplierName, location)
	if err != nil {
		return nil, err
	}
	po.Note = req.Note

	err = s.scope.Execute(ctx, func(repos uow.Repositories) error {
		for _, item := range req.Items {
			if _, err := repos.ProductRepo().FindByID(ctx, tenantID, item.ProductID); err != nil {
				return err
			}
			if _, err := po.AddItem(item.ProductID, item.Quantity, item.UnitPrice); err != nil {
				return err
			}
		}
		return repos.PurchaseOrderRepo().Save(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, tenantID, poID uuid.UUID) (*PurchaseOrderResponse, error) {
	var po *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByID(ctx, tenantID, poID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// ReceivePurchaseOrder brings every line into stock at the order's location
// and moves product costs by weighted average. A second receipt fails with
// ALREADY_RECEIVED and changes nothing.
func (s *PurchaseOrderService) ReceivePurchaseOrder(ctx context.Context, tenantID, poID uuid.UUID) (*PurchaseOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "receive", "purchase_order_id", poID.String())
	defer span.End()
	log := logger.ForContext(ctx, s.logger)

	var po *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, tenantID, poID)
		if err != nil {
			return err
		}
		if err := po.MarkReceived(); err != nil {
			return err
		}

		lines := make([]trade.PurchaseOrderItem, len(po.Items))
		copy(lines, po.Items)
		sort.SliceStable(lines, func(i, j int) bool {
			return lines[i].ProductID.String() < lines[j].ProductID.String()
		})
		for _, line := range lines {
			result, err := s.ledger.Receive(ctx, repos, inventoryapp.ReceiveRequest{
				TenantID:        tenantID,
				ProductID:       line.ProductID,
				Quantity:        line.Quantity,
				Location:        po.Location,
				UnitCost:        line.UnitPrice,
				PurchaseOrderID: po.ID,
				Note:            "Purchase order " + po.Reference,
			})
			if err != nil {
				return err
			}
			log.Debug("Purchase line received",
				zap.String("product_id", line.ProductID.String()),
				zap.Int64("quantity", line.Quantity),
				zap.String("new_cost", result.NewCost.StringFixed(2)))
		}
		return repos.PurchaseOrderRepo().Save(ctx, po)
	})
	s.metrics.RecordTransition(ctx, "receive_purchase_order", err)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Purchase order receipt rejected",
			zap.String("purchase_order_id", poID.String()),
			zap.Error(err))
		return nil, err
	}

	log.Info("Purchase order received",
		zap.String("purchase_order_id", po.ID.String()),
		zap.Int("lines", len(po.Items)))
	s.publishDomainEvents(ctx, po)
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// Cancel cancels a pending purchase order
func (s *PurchaseOrderService) Cancel(ctx context.Context, tenantID, poID uuid.UUID) (*PurchaseOrderResponse, error) {
	var po *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, tenantID, poID)
		if err != nil {
			return err
		}
		if err := po.Cancel(); err != nil {
			return err
		}
		return repos.PurchaseOrderRepo().Save(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

func (s *PurchaseOrderService) publishDomainEvents(ctx context.Context, po *trade.PurchaseOrder) {
	events := po.GetDomainEvents()
	po.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.ForContext(ctx, s.logger).Error("Failed to publish purchase order events",
			zap.String("purchase_order_id", po.ID.String()),
			zap.Error(err))
	}
}
