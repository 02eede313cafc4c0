package trade

import (
	"context"
	"errors"

	inventoryapp "github.com/erp/retailcore/internal/application/inventory"
	"github.com/erp/retailcore/internal/application/numbering"
	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/inventory"
	"github.com/erp/retailcore/internal/domain/sequence"
	"github.com/erp/retailcore/internal/domain/shared"
	"github.com/erp/retailcore/internal/domain/trade"
	"github.com/erp/retailcore/internal/infrastructure/logger"
	"github.com/erp/retailcore/internal/infrastructure/telemetry"
	"github.com/erp/retailcore/internal/infrastructure/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultLocation is used when neither the request nor the service names one
const DefaultLocation = "Main Store"

// SalesOrderService handles sales order business operations.
// Every state transition runs in a single transaction: the order row is
// locked first, then the inventory rows of its products in ascending id order.
type SalesOrderService struct {
	scope           uow.TransactionScope
	ledger          *inventoryapp.Ledger
	numbering       *numbering.NumberingService
	defaultLocation string
	eventPublisher  shared.EventPublisher
	metrics         *telemetry.LedgerMetrics
	logger          *zap.Logger
}

// Option configures the order services
type Option func(*options)

type options struct {
	defaultLocation string
	metrics         *telemetry.LedgerMetrics
}

// WithDefaultLocation sets the location used when an order names none
func WithDefaultLocation(location string) Option {
	return func(o *options) {
		if location != "" {
			o.defaultLocation = location
		}
	}
}

// WithMetrics sets the ledger metrics
func WithMetrics(metrics *telemetry.LedgerMetrics) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

func applyOptions(opts []Option) options {
	o := options{defaultLocation: DefaultLocation}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(
	scope uow.TransactionScope,
	ledger *inventoryapp.Ledger,
	numbering *numbering.NumberingService,
	logger *zap.Logger,
	opts ...Option,
) *SalesOrderService {
	o := applyOptions(opts)
	return &SalesOrderService{
		scope:           scope,
		ledger:          ledger,
		numbering:       numbering,
		defaultLocation: o.defaultLocation,
		metrics:         o.metrics,
		logger:          logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SalesOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateOrder opens a draft order. The order number is drawn in the same
// transaction, so a failed create does not consume a number.
func (s *SalesOrderService) CreateOrder(ctx context.Context, tenantID uuid.UUID, req CreateSalesOrderRequest) (*SalesOrderResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	location := req.Location
	if location == "" {
		location = s.defaultLocation
	}

	var order *trade.SalesOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		number, err := s.numbering.Draw(ctx, repos, tenantID, sequence.KindSalesOrder)
		if err != nil {
			return err
		}
		order, err = trade.NewSalesOrder(tenantID, number, location, req.CustomerType, req.CustomerID)
		if err != nil {
			return err
		}
		if req.EmployeeID != nil {
			order.SetEmployee(*req.EmployeeID)
		}
		order.Note = req.Note
		for _, item := range req.Items {
			if err := s.addItem(ctx, repos, order, item); err != nil {
				return err
			}
		}
		return repos.SalesOrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	logger.ForContext(ctx, s.logger).Info("Sales order created",
		zap.String("order_number", order.OrderNumber),
		zap.String("location", order.Location),
		zap.Int("items", len(order.Items)))
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// AddItem adds a line to a draft order
func (s *SalesOrderService) AddItem(ctx context.Context, tenantID, orderID uuid.UUID, req CreateOrderItemRequest) (*SalesOrderResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.editDraft(ctx, tenantID, orderID, func(repos uow.Repositories, order *trade.SalesOrder) error {
		return s.addItem(ctx, repos, order, req)
	})
}

// UpdateItemQuantity changes the quantity of a draft line
func (s *SalesOrderService) UpdateItemQuantity(ctx context.Context, tenantID, orderID uuid.UUID, req UpdateItemQuantityRequest) (*SalesOrderResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	return s.editDraft(ctx, tenantID, orderID, func(_ uow.Repositories, order *trade.SalesOrder) error {
		return order.UpdateItemQuantity(req.ItemID, req.Quantity)
	})
}

// RemoveItem drops a draft line
func (s *SalesOrderService) RemoveItem(ctx context.Context, tenantID, orderID, itemID uuid.UUID) (*SalesOrderResponse, error) {
	return s.editDraft(ctx, tenantID, orderID, func(_ uow.Repositories, order *trade.SalesOrder) error {
		return order.RemoveItem(itemID)
	})
}

func (s *SalesOrderService) editDraft(ctx context.Context, tenantID, orderID uuid.UUID, edit func(uow.Repositories, *trade.SalesOrder) error) (*SalesOrderResponse, error) {
	var order *trade.SalesOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		order, err = repos.SalesOrderRepo().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := edit(repos, order); err != nil {
			return err
		}
		return repos.SalesOrderRepo().Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

func (s *SalesOrderService) addItem(ctx context.Context, repos uow.Repositories, order *trade.SalesOrder, req CreateOrderItemRequest) error {
	product, err := repos.ProductRepo().FindByID(ctx, order.TenantID, req.ProductID)
	if err != nil {
		return err
	}
	price := product.Price
	if req.Price != nil {
		price = *req.Price
	}
	_, err = order.AddItem(product.ID, req.Quantity, price)
	return err
}

// GetOrder retrieves a sales order by ID
func (s *SalesOrderService) GetOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	var order *trade.SalesOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		order, err = repos.SalesOrderRepo().FindByID(ctx, tenantID, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// FinalizeOrder completes an order.
//
// Retail orders complete from draft: every product is checked against the
// order's location before anything is written, then deducted with SALE.
// Wholesale orders complete from in_transit: their stock already left, so
// only zero-quantity SALE markers are written.
func (s *SalesOrderService) FinalizeOrder(ctx context.Context, tenantID, orderID uuid.UUID, mode trade.BusinessMode) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, "finalize", func(repos uow.Repositories, order *trade.SalesOrder) error {
		if err := order.CheckComplete(mode); err != nil {
			return err
		}
		if mode == trade.BusinessModeWholesale {
			if _, err := s.ledger.MarkSold(ctx, repos, tenantID, order.ID); err != nil {
				return err
			}
		} else if err := s.deductOrder(ctx, repos, order, inventory.ChangeTypeSale); err != nil {
			return err
		}
		return order.Complete(mode)
	})
}

// MarkInTransit ships a wholesale order: stock is deducted with
// SALE_IN_TRANSIT and the order waits for billing.
func (s *SalesOrderService) MarkInTransit(ctx context.Context, tenantID, orderID uuid.UUID, mode trade.BusinessMode) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, "mark_in_transit", func(repos uow.Repositories, order *trade.SalesOrder) error {
		if err := order.CheckMarkInTransit(mode); err != nil {
			return err
		}
		if err := s.deductOrder(ctx, repos, order, inventory.ChangeTypeSaleInTransit); err != nil {
			return err
		}
		return order.MarkInTransit(mode)
	})
}

// ReopenOrder puts a completed or in-transit order back to draft and
// restores every unit it took from stock. Invoiced orders cannot be reopened.
func (s *SalesOrderService) ReopenOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, "reopen", func(repos uow.Repositories, order *trade.SalesOrder) error {
		if !order.Status.HasStockImpact() {
			return order.Reopen()
		}
		invoice, err := repos.InvoiceRepo().FindBySalesOrder(ctx, tenantID, order.ID)
		if err == nil {
			return shared.Errorf(shared.ErrInvalidState,
				"Order %s has invoice %s and cannot be reopened", order.OrderNumber, invoice.InvoiceNumber)
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		required := order.RequiredQuantities()
		for _, productID := range inventory.SortedProductIDs(order.ProductIDs()) {
			if _, err := s.ledger.ReverseOrder(ctx, repos, tenantID, order.ID, productID, required[productID]); err != nil {
				return err
			}
		}
		return order.Reopen()
	})
}

// CancelOrder cancels a draft order
func (s *SalesOrderService) CancelOrder(ctx context.Context, tenantID, orderID uuid.UUID) (*SalesOrderResponse, error) {
	return s.transition(ctx, tenantID, orderID, "cancel", func(_ uow.Repositories, order *trade.SalesOrder) error {
		return order.Cancel()
	})
}

func (s *SalesOrderService) deductOrder(ctx context.Context, repos uow.Repositories, order *trade.SalesOrder, changeType inventory.ChangeType) error {
	required := order.RequiredQuantities()
	stock, err := s.ledger.LockProducts(ctx, repos, order.TenantID, order.ProductIDs())
	if err != nil {
		return err
	}
	if err := stock.Check(required, order.Location); err != nil {
		return err
	}
	for _, productID := range inventory.SortedProductIDs(order.ProductIDs()) {
		if _, err := s.ledger.DeductLocked(ctx, repos, stock[productID], inventoryapp.DeductRequest{
			TenantID:     order.TenantID,
			ProductID:    productID,
			Quantity:     required[productID],
			Location:     order.Location,
			ChangeType:   changeType,
			SalesOrderID: order.ID,
			Note:         "Sales order " + order.OrderNumber,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *SalesOrderService) transition(ctx context.Context, tenantID, orderID uuid.UUID, op string, apply func(uow.Repositories, *trade.SalesOrder) error) (*SalesOrderResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sales_order", op, "order_id", orderID.String())
	defer span.End()
	log := logger.ForContext(ctx, s.logger)

	var order *trade.SalesOrder
	err := s.scope.Execute(ctx, func(repos uow.Repositories) error {
		var err error
		order, err = repos.SalesOrderRepo().FindByIDForUpdate(ctx, tenantID, orderID)
		if err != nil {
			return err
		}
		if err := apply(repos, order); err != nil {
			return err
		}
		return repos.SalesOrderRepo().Save(ctx, order)
	})
	s.metrics.RecordTransition(ctx, op, err)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Warn("Sales order transition rejected",
			zap.String("operation", op),
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return nil, err
	}

	log.Info("Sales order transitioned",
		zap.String("operation", op),
		zap.String("order_number", order.OrderNumber),
		zap.String("status", order.Status.String()))
	s.publishDomainEvents(ctx, order)
	resp := ToSalesOrderResponse(order)
	return &resp, nil
}

// publishDomainEvents runs after commit. A failing subscriber is logged and
// does not undo the transition.
func (s *SalesOrderService) publishDomainEvents(ctx context.Context, order *trade.SalesOrder) {
	events := order.GetDomainEvents()
	order.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		logger.ForContext(ctx, s.logger).Error("Failed to publish sales order events",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
	}
}
