// Package checkout turns a buyer's cart submission into a placed order.
package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Service places orders and quotes prices
type Service struct {
	productRepo    catalog.ProductRepository
	txScope        TransactionScope
	pricing        *catalog.PricingResolver
	stock          *catalog.StockReconciler
	guard          *order.ConsistencyGuard
	eventPublisher shared.EventPublisher
	idempotency    shared.IdempotencyStore
	idempotencyTTL time.Duration
	metrics        *telemetry.CheckoutMetrics
	logger         *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithEventPublisher publishes domain events after each committed checkout
func WithEventPublisher(publisher shared.EventPublisher) Option {
	return func(s *Service) {
		s.eventPublisher = publisher
	}
}

// WithIdempotencyStore enables Idempotency-Key handling
func WithIdempotencyStore(store shared.IdempotencyStore, ttl time.Duration) Option {
	return func(s *Service) {
		s.idempotency = store
		s.idempotencyTTL = ttl
	}
}

// WithTotalTolerance overrides the accepted difference between declared and computed totals
func WithTotalTolerance(tolerance decimal.Decimal) Option {
	return func(s *Service) {
		s.guard = order.NewConsistencyGuard(tolerance)
	}
}

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a checkout service. productRepo serves read-only quotes;
// checkouts use the repositories of txScope.
func NewService(productRepo catalog.ProductRepository, txScope TransactionScope, opts ...Option) *Service {
	s := &Service{
		productRepo:    productRepo,
		txScope:        txScope,
		pricing:        catalog.NewPricingResolver(),
		stock:          catalog.NewStockReconciler(),
		guard:          order.NewConsistencyGuard(order.DefaultTotalTolerance),
		idempotencyTTL: shared.DefaultIdempotencyConfig().TTL,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetCheckoutMetrics sets the business metrics collector
func (s *Service) SetCheckoutMetrics(m *telemetry.CheckoutMetrics) {
	s.metrics = m
}

// PlaceOrder validates, prices and reserves every requested line and persists the
// order in a single transaction. Either the whole order is placed or nothing changes.
func (s *Service) PlaceOrder(ctx context.Context, buyer identity.Buyer, req PlaceOrderRequest) (resp *OrderResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place_order",
		telemetry.SpanAttrBuyerID, buyer.ID.String(),
		telemetry.SpanAttrBuyerClass, buyer.Class.String(),
		telemetry.SpanAttrItemCount, len(req.Items),
	)
	start := time.Now()
	defer func() {
		s.metrics.RecordDuration(ctx, time.Since(start), err == nil)
		if err != nil {
			code := shared.CodeInternalError
			if de, ok := shared.AsDomainError(err); ok {
				code = de.Code
			}
			s.metrics.RecordRejected(ctx, code)
			telemetry.SetAttributes(span, telemetry.SpanAttrErrorCode, code)
			telemetry.RecordError(span, err)
		}
		span.End()
	}()

	address, payment, err := s.validateRequest(buyer, req)
	if err != nil {
		return nil, err
	}

	release, err := s.claimIdempotencyKey(ctx, buyer.ID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			release()
		}
	}()

	var placed *order.Order
	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		o, err := s.assemble(ctx, repos, buyer, req, address, payment)
		if err != nil {
			return err
		}
		placed = o
		return nil
	})
	if err != nil {
		return nil, s.translateError(err, buyer)
	}

	s.publishEvents(ctx, placed)

	s.logger.Info("order placed",
		zap.String("order_id", placed.ID.String()),
		zap.String("order_number", placed.OrderNumber),
		zap.String("buyer_id", buyer.ID.String()),
		zap.String("buyer_class", buyer.Class.String()),
		zap.String("total_amount", placed.TotalAmount.String()),
		zap.Int("items_count", len(placed.Items)),
		zap.String("trace_id", telemetry.GetTraceID(ctx)),
	)
	s.metrics.RecordOrderPlaced(ctx, buyer.Class.String(), placed.Currency.String(), placed.TotalAmount, placed.TotalQuantity())
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, placed.ID.String(),
		telemetry.SpanAttrOrderNumber, placed.OrderNumber,
		telemetry.SpanAttrAmount, placed.TotalAmount.String(),
	)

	response := ToOrderResponse(placed)
	return &response, nil
}

// assemble runs inside the transaction. Validation and pricing complete for every
// line before any product is mutated.
func (s *Service) assemble(
	ctx context.Context,
	repos TransactionalRepositories,
	buyer identity.Buyer,
	req PlaceOrderRequest,
	address valueobject.ShippingAddress,
	payment order.PaymentMethod,
) (*order.Order, error) {
	products, err := s.loadProducts(ctx, repos.ProductRepo(), req.Items)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(req.Items))
	lines := make([]catalog.ReservationLine, 0, len(req.Items))
	calculated := decimal.Zero
	var currency valueobject.Currency

	for i, in := range req.Items {
		p, ok := products[in.ProductID]
		if !ok {
			return nil, shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("Product %s not found", in.ProductID)).
				WithDetails(map[string]any{"product_id": in.ProductID.String(), "item_index": i})
		}
		if err := p.CheckPurchaseEligibility(buyer.Class, in.Quantity); err != nil {
			return nil, err
		}

		if currency == "" {
			currency = p.Currency()
		} else if p.Currency() != currency {
			return nil, shared.NewDomainError(shared.CodeValidationFailed,
				"All items in an order must be priced in the same currency").
				WithDetails(map[string]any{"product_id": p.ID.String(), "currency": p.Currency().String()})
		}

		unitPrice, tier := s.pricing.ResolvePrice(p, buyer.Class, in.Quantity)
		item := order.NewItem(p, in.Quantity, unitPrice, tier, s.pricing.RequiresCustomQuote(p, in.Quantity))
		calculated = calculated.Add(item.ItemTotal)
		items = append(items, item)
		lines = append(lines, catalog.ReservationLine{Product: p, Quantity: in.Quantity})
	}

	if err := s.guard.Check(calculated, *req.TotalAmount); err != nil {
		return nil, err
	}

	if err := s.stock.ReserveAll(lines); err != nil {
		return nil, err
	}
	telemetry.AddEvent(trace.SpanFromContext(ctx), "stock_reserved", telemetry.SpanAttrItemCount, len(lines))

	// Lines for the same product share one *Product, so each product is saved once.
	saved := make(map[uuid.UUID]struct{}, len(products))
	for _, line := range lines {
		if _, done := saved[line.Product.ID]; done {
			continue
		}
		if err := repos.ProductRepo().SaveWithLock(ctx, line.Product); err != nil {
			return nil, err
		}
		saved[line.Product.ID] = struct{}{}
	}

	o, err := order.NewOrder(buyer, items, address, payment, currency)
	if err != nil {
		return nil, err
	}
	if req.IdempotencyKey != "" {
		o.SetIdempotencyKey(req.IdempotencyKey)
	}
	if err := repos.OrderRepo().Save(ctx, o); err != nil {
		return nil, err
	}
	if err := repos.CartRepo().Clear(ctx, buyer.ID); err != nil {
		return nil, err
	}
	return o, nil
}

// loadProducts row-locks every distinct product in the request
func (s *Service) loadProducts(ctx context.Context, repo catalog.ProductRepository, items []PlaceOrderItemInput) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}

	loaded, err := repo.FindByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	products := make(map[uuid.UUID]*catalog.Product, len(loaded))
	for _, p := range loaded {
		products[p.ID] = p
	}
	return products, nil
}

func (s *Service) validateRequest(buyer identity.Buyer, req PlaceOrderRequest) (valueobject.ShippingAddress, order.PaymentMethod, error) {
	if buyer.ID == uuid.Nil {
		return valueobject.ShippingAddress{}, "", shared.NewDomainError(shared.CodeValidationFailed, "Buyer is required")
	}
	if len(req.Items) == 0 {
		return valueobject.ShippingAddress{}, "", shared.NewDomainError(shared.CodeValidationFailed, "Order must contain at least one item")
	}
	for i, it := range req.Items {
		if it.ProductID == uuid.Nil {
			return valueobject.ShippingAddress{}, "", shared.NewDomainError(shared.CodeValidationFailed,
				fmt.Sprintf("Item %d is missing a product ID", i+1)).
				WithDetails(map[string]any{"item_index": i})
		}
		if it.Quantity < 1 {
			return valueobject.ShippingAddress{}, "", shared.NewDomainError(shared.CodeValidationFailed,
				fmt.Sprintf("Quantity of item %d must be at least 1", i+1)).
				WithDetails(map[string]any{"item_index": i, "quantity": it.Quantity})
		}
	}
	if req.TotalAmount == nil {
		return valueobject.ShippingAddress{}, "", shared.NewDomainError(shared.CodeValidationFailed, "Order total is required")
	}
	if req.TotalAmount.IsNegative() {
		return valueobject.ShippingAddress{}, "", shared.NewDomainError(shared.CodeValidationFailed, "Order total cannot be negative")
	}

	address, err := req.ShippingAddress.ToAddress()
	if err != nil {
		return valueobject.ShippingAddress{}, "", shared.NewDomainError(shared.CodeValidationFailed,
			"Invalid shipping address: "+err.Error())
	}
	payment, err := order.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return valueobject.ShippingAddress{}, "", err
	}
	return address, payment, nil
}

// claimIdempotencyKey reserves the buyer's key for the duration of the checkout.
// The returned func releases it again and is safe to call when nothing was claimed.
// If the store is unreachable the checkout proceeds without the guarantee.
func (s *Service) claimIdempotencyKey(ctx context.Context, buyerID uuid.UUID, key string) (func(), error) {
	noop := func() {}
	if key == "" || s.idempotency == nil {
		return noop, nil
	}

	scoped := buyerID.String() + ":" + key
	claimed, err := s.idempotency.MarkProcessed(ctx, scoped, s.idempotencyTTL)
	if err != nil {
		s.logger.Error("idempotency store unavailable, continuing without key claim",
			zap.String("buyer_id", buyerID.String()),
			zap.Error(err),
		)
		return noop, nil
	}
	if !claimed {
		s.logger.Warn("duplicate checkout rejected",
			zap.String("buyer_id", buyerID.String()),
			zap.String("idempotency_key", key),
		)
		return nil, shared.ErrDuplicateRequest.WithDetails(map[string]any{"idempotency_key": key})
	}

	return func() {
		if err := s.idempotency.Release(context.WithoutCancel(ctx), scoped); err != nil {
			s.logger.Warn("failed to release idempotency key",
				zap.String("buyer_id", buyerID.String()),
				zap.Error(err),
			)
		}
	}, nil
}

// translateError logs rejections and hides infrastructure failures behind INTERNAL_ERROR
func (s *Service) translateError(err error, buyer identity.Buyer) error {
	if de, ok := shared.AsDomainError(err); ok {
		s.logger.Info("checkout rejected",
			zap.String("buyer_id", buyer.ID.String()),
			zap.String("code", de.Code),
			zap.String("reason", de.Message),
		)
		return de
	}
	s.logger.Error("checkout failed",
		zap.String("buyer_id", buyer.ID.String()),
		zap.Error(err),
	)
	return shared.ErrInternal
}

func (s *Service) publishEvents(ctx context.Context, o *order.Order) {
	events := o.GetDomainEvents()
	o.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		// The order is committed; a lost notification must not fail the checkout.
		s.logger.Error("failed to publish order events",
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
}

// QuotePrice returns what the buyer would pay for quantity units of a product,
// without reserving anything.
func (s *Service) QuotePrice(ctx context.Context, buyer identity.Buyer, productID uuid.UUID, quantity int) (*PriceQuoteResponse, error) {
	if quantity < 1 {
		return nil, shared.NewDomainError(shared.CodeValidationFailed, "Quantity must be at least 1")
	}

	p, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if _, ok := shared.AsDomainError(err); ok {
			return nil, err
		}
		s.logger.Error("failed to load product for quote",
			zap.String("product_id", productID.String()),
			zap.Error(err),
		)
		return nil, shared.ErrInternal
	}
	if !p.Published {
		return nil, shared.ErrNotFound
	}

	unitPrice, tier := s.pricing.ResolvePrice(p, buyer.Class, quantity)
	resp := &PriceQuoteResponse{
		ProductID:           p.ID,
		Quantity:            quantity,
		UnitPrice:           unitPrice,
		LineTotal:           catalog.LineTotal(unitPrice, quantity),
		Currency:            p.Currency().String(),
		TierApplied:         tier,
		RequiresCustomQuote: s.pricing.RequiresCustomQuote(p, quantity),
		Eligible:            true,
	}
	if buyer.IsCorporate() && p.CorporatePricing.Enabled {
		resp.MinimumOrderQuantity = p.CorporatePricing.MinimumOrderQuantity
	}
	if err := p.CheckPurchaseEligibility(buyer.Class, quantity); err != nil {
		if de, ok := shared.AsDomainError(err); ok && de.Code == shared.CodeAccessDenied {
			return nil, de
		}
		resp.Eligible = false
		resp.IneligibleReason = err.Error()
	}
	return resp, nil
}
