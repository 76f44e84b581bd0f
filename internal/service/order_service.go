package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/stock"
	"go-insumos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type OrderService interface {
	Create(ctx context.Context, req *CreateOrderRequest, actor model.Actor) (*model.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter repository.OrderFilter) (Paged[model.Order], error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateOrderRequest, actor model.Actor) (*model.Order, error)
	Delete(ctx context.Context, id uuid.UUID, actor model.Actor) error
	// SetStatus moves an order through its lifecycle. Entering delivered credits the
	// ordered quantity to the supply ledger exactly once.
	SetStatus(ctx context.Context, id uuid.UUID, status string, actor model.Actor) (*StatusResult, error)
}

type CreateOrderRequest struct {
	Supplier   string           `json:"supplier" validate:"required,max=120"`
	TargetKind model.TargetKind `json:"target_kind" validate:"omitempty,oneof=supply product"`
	ItemName   string           `json:"item_name" validate:"required,max=120"`
	Quantity   decimal.Decimal  `json:"quantity" validate:"gt=0"`
	Unit       string           `json:"unit" validate:"required,oneof=kg g l ml pz units"`
	TotalPrice decimal.Decimal  `json:"total_price" validate:"gte=0"`
	ExpectedAt string           `json:"expected_at"`
}

type UpdateOrderRequest struct {
	Supplier   *string           `json:"supplier" validate:"omitempty,min=1,max=120"`
	TargetKind *model.TargetKind `json:"target_kind" validate:"omitempty,oneof=supply product"`
	ItemName   *string           `json:"item_name" validate:"omitempty,min=1,max=120"`
	Quantity   *decimal.Decimal  `json:"quantity" validate:"omitempty,gt=0"`
	Unit       *string           `json:"unit" validate:"omitempty,oneof=kg g l ml pz units"`
	TotalPrice *decimal.Decimal  `json:"total_price" validate:"omitempty,gte=0"`
	ExpectedAt *string           `json:"expected_at"`
}

func (r *UpdateOrderRequest) empty() bool {
	return r.Supplier == nil && r.TargetKind == nil && r.ItemName == nil && r.Quantity == nil &&
		r.Unit == nil && r.TotalPrice == nil && r.ExpectedAt == nil
}

// StatusResult is the outcome of a set-status request.
type StatusResult struct {
	Order         model.Order       `json:"order"`
	Changed       bool              `json:"changed"`
	StockCredited bool              `json:"stock_credited"`
	Supply        *model.SupplyItem `json:"supply,omitempty"`
	Message       string            `json:"message"`
}

type orderService struct {
	orderRepo   repository.OrderRepository
	supplyRepo  repository.SupplyRepository
	productRepo repository.ProductRepository
	events      EventPublisher
	loc         *time.Location
	now         func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, supplyRepo repository.SupplyRepository, productRepo repository.ProductRepository, events EventPublisher, loc *time.Location) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		supplyRepo:  supplyRepo,
		productRepo: productRepo,
		events:      publisherOrNop(events),
		loc:         loc,
		now:         time.Now,
	}
}

// checkTarget makes sure the ordered item exists when the order is written.
func (s *orderService) checkTarget(ctx context.Context, t model.OrderTarget) error {
	var err error
	switch t := t.(type) {
	case model.SupplyTarget:
		_, err = s.supplyRepo.FindByName(ctx, t.SupplyName)
	case model.ProductTarget:
		_, err = s.productRepo.FindByName(ctx, t.ProductName)
	}
	if apierror.IsNotFound(err) {
		return apierror.ValidationFields(map[string]string{"item_name": fmt.Sprintf("unknown %s", t.Kind())})
	}
	return err
}

func (s *orderService) Create(ctx context.Context, req *CreateOrderRequest, actor model.Actor) (*model.Order, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.TargetKind == "" {
		req.TargetKind = model.TargetSupply
	}
	target, err := model.NewOrderTarget(req.TargetKind, req.ItemName)
	if err != nil {
		return nil, apierror.ValidationFields(map[string]string{"target_kind": err.Error()})
	}
	if err := s.checkTarget(ctx, target); err != nil {
		return nil, err
	}
	expected, err := parseDate("expected_at", req.ExpectedAt, s.loc)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		Supplier:   req.Supplier,
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		TotalPrice: req.TotalPrice,
		OrderedAt:  model.Today(s.now(), s.loc),
		ExpectedAt: expected,
		Status:     model.OrderPending,
	}
	order.SetTarget(target)
	order.CreatedBy = actor.ID
	order.UpdatedBy = actor.ID

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	s.events.Publish(ws.Event{
		Type:    ws.EventOrderStatus,
		Action:  "order_created",
		Data:    order,
		User:    actorRef(actor),
		Message: say(actor, "ordered %s %s of '%s'", order.Quantity.String(), order.Unit, order.ItemName),
	})
	return order, nil
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.orderRepo.FindByID(ctx, id)
}

func (s *orderService) List(ctx context.Context, filter repository.OrderFilter) (Paged[model.Order], error) {
	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return Paged[model.Order]{}, err
	}
	return newPaged(orders, total, filter.Page), nil
}

func (s *orderService) Update(ctx context.Context, id uuid.UUID, req *UpdateOrderRequest, actor model.Actor) (*model.Order, error) {
	if req.empty() {
		return nil, apierror.Validation("no fields to update")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderPending {
		return nil, apierror.Conflict(fmt.Sprintf("order is %s; only pending orders can be edited", order.Status))
	}

	if req.TargetKind != nil || req.ItemName != nil {
		kind, name := order.TargetKind, order.ItemName
		if req.TargetKind != nil {
			kind = *req.TargetKind
		}
		if req.ItemName != nil {
			name = *req.ItemName
		}
		target, err := model.NewOrderTarget(kind, name)
		if err != nil {
			return nil, apierror.ValidationFields(map[string]string{"target_kind": err.Error()})
		}
		if err := s.checkTarget(ctx, target); err != nil {
			return nil, err
		}
		order.SetTarget(target)
	}
	if req.Supplier != nil {
		order.Supplier = *req.Supplier
	}
	if req.Quantity != nil {
		order.Quantity = *req.Quantity
	}
	if req.Unit != nil {
		order.Unit = *req.Unit
	}
	if req.TotalPrice != nil {
		order.TotalPrice = *req.TotalPrice
	}
	if req.ExpectedAt != nil {
		expected, err := parseDate("expected_at", *req.ExpectedAt, s.loc)
		if err != nil {
			return nil, err
		}
		order.ExpectedAt = expected
	}
	order.UpdatedBy = actor.ID

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) Delete(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	if err := s.orderRepo.Delete(ctx, id, actor.ID); err != nil {
		return err
	}
	s.events.Publish(ws.Event{
		Type:    ws.EventOrderStatus,
		Action:  "order_deleted",
		Data:    map[string]interface{}{"id": id},
		User:    actorRef(actor),
		Message: say(actor, "deleted an order"),
	})
	return nil
}

func (s *orderService) SetStatus(ctx context.Context, id uuid.UUID, status string, actor model.Actor) (*StatusResult, error) {
	next, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, apierror.ValidationFields(map[string]string{"status": "must be one of: pending delivered cancelled"})
	}

	decide := func(o model.Order) (stock.Transition, error) {
		t, err := stock.PlanTransition(o.Status, next)
		if errors.Is(err, stock.ErrTerminalState) {
			return t, apierror.Conflict(fmt.Sprintf("order is already %s and cannot become %s", o.Status, next))
		}
		return t, err
	}

	change, err := s.orderRepo.ApplyStatus(ctx, id, decide, actor, s.now())
	if err != nil {
		return nil, err
	}

	res := &StatusResult{
		Order:         change.Order,
		Changed:       change.Transition.Changed,
		StockCredited: change.Movement != nil,
		Supply:        change.Supply,
		Message:       statusMessage(change),
	}
	if !res.Changed {
		return res, nil
	}

	s.events.Publish(ws.Event{
		Type:    ws.EventOrderStatus,
		Action:  "order_" + string(change.Order.Status),
		Data:    change.Order,
		User:    actorRef(actor),
		Message: say(actor, "marked order of '%s' as %s", change.Order.ItemName, change.Order.Status),
	})

	if res.StockCredited {
		mv := change.Movement
		log.Info().
			Str("order", change.Order.ID.String()).
			Str("supply", change.Supply.Name).
			Str("quantity", mv.Quantity.String()).
			Str("before", mv.QuantityBefore.String()).
			Str("after", mv.QuantityAfter.String()).
			Str("actor", actor.ID).
			Msg("order delivered, stock credited")

		s.events.Publish(ws.Event{
			Type:   ws.EventStockUpdate,
			Action: "order_delivered",
			Data: map[string]interface{}{
				"id":        change.Supply.ID,
				"name":      change.Supply.Name,
				"order_id":  change.Order.ID,
				"quantity":  mv.Quantity,
				"old_stock": mv.QuantityBefore,
				"new_stock": mv.QuantityAfter,
			},
			User:    actorRef(actor),
			Message: say(actor, "received %s %s of '%s'", mv.Quantity.String(), change.Order.Unit, change.Supply.Name),
		})
	}
	return res, nil
}

func statusMessage(c *repository.StatusChange) string {
	switch {
	case !c.Transition.Changed:
		return fmt.Sprintf("order is already %s", c.Order.Status)
	case c.Movement != nil:
		return "order delivered and stock updated"
	case c.Order.Status == model.OrderDelivered:
		return "order delivered"
	case c.Order.Status == model.OrderCancelled:
		return "order cancelled"
	}
	return "order status updated"
}
