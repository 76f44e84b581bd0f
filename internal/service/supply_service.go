package service

import (
	"context"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type SupplyService interface {
	Create(ctx context.Context, req *CreateSupplyRequest, actor model.Actor) (*model.SupplyItem, error)
	Get(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error)
	List(ctx context.Context, filter repository.SupplyFilter) (Paged[model.SupplyItem], error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateSupplyRequest, actor model.Actor) (*model.SupplyItem, error)
	Delete(ctx context.Context, id uuid.UUID, actor model.Actor) error
	Adjust(ctx context.Context, id uuid.UUID, req *AdjustStockRequest, actor model.Actor) (*model.SupplyItem, error)
	Movements(ctx context.Context, filter repository.MovementFilter) (Paged[model.StockMovement], error)
}

type CreateSupplyRequest struct {
	Name             string           `json:"name" validate:"required,max=120"`
	QuantityOnHand   *decimal.Decimal `json:"quantity_on_hand" validate:"omitempty,gte=0"`
	MinimumThreshold decimal.Decimal  `json:"minimum_threshold" validate:"gte=0"`
	Unit             string           `json:"unit" validate:"required,oneof=kg g l ml pz units"`
	ExpiryDate       string           `json:"expiry_date"`
	Supplier         string           `json:"supplier" validate:"required,max=120"`
	Price            decimal.Decimal  `json:"price" validate:"gte=0"`
	Category         string           `json:"category" validate:"required,max=60"`
}

// UpdateSupplyRequest is a partial update. The quantity on hand is not editable here;
// use an adjustment. An empty expiry_date clears the date.
type UpdateSupplyRequest struct {
	Name             *string          `json:"name" validate:"omitempty,min=1,max=120"`
	MinimumThreshold *decimal.Decimal `json:"minimum_threshold" validate:"omitempty,gte=0"`
	Unit             *string          `json:"unit" validate:"omitempty,oneof=kg g l ml pz units"`
	ExpiryDate       *string          `json:"expiry_date"`
	Supplier         *string          `json:"supplier" validate:"omitempty,min=1,max=120"`
	Price            *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Category         *string          `json:"category" validate:"omitempty,min=1,max=60"`
}

func (r *UpdateSupplyRequest) empty() bool {
	return r.Name == nil && r.MinimumThreshold == nil && r.Unit == nil && r.ExpiryDate == nil &&
		r.Supplier == nil && r.Price == nil && r.Category == nil
}

type AdjustStockRequest struct {
	Type     model.MovementType `json:"type" validate:"required,oneof=IN OUT"`
	Quantity decimal.Decimal    `json:"quantity" validate:"gt=0"`
	Note     string             `json:"note" validate:"max=255"`
}

type supplyService struct {
	supplyRepo   repository.SupplyRepository
	movementRepo repository.MovementRepository
	events       EventPublisher
	loc          *time.Location
	now          func() time.Time
}

func NewSupplyService(supplyRepo repository.SupplyRepository, movementRepo repository.MovementRepository, events EventPublisher, loc *time.Location) SupplyService {
	return &supplyService{
		supplyRepo:   supplyRepo,
		movementRepo: movementRepo,
		events:       publisherOrNop(events),
		loc:          loc,
		now:          time.Now,
	}
}

func (s *supplyService) Create(ctx context.Context, req *CreateSupplyRequest, actor model.Actor) (*model.SupplyItem, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	expiry, err := parseDate("expiry_date", req.ExpiryDate, s.loc)
	if err != nil {
		return nil, err
	}

	item := &model.SupplyItem{
		Name:             req.Name,
		MinimumThreshold: req.MinimumThreshold,
		Unit:             req.Unit,
		ExpiryDate:       expiry,
		Supplier:         req.Supplier,
		Price:            req.Price,
		Category:         req.Category,
		RegisteredAt:     model.Today(s.now(), s.loc),
	}
	if req.QuantityOnHand != nil {
		item.QuantityOnHand = *req.QuantityOnHand
	}
	item.CreatedBy = actor.ID
	item.UpdatedBy = actor.ID

	if err := s.supplyRepo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.events.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "supply_created",
		Data:    item,
		User:    actorRef(actor),
		Message: say(actor, "created supply '%s'", item.Name),
	})
	return item, nil
}

func (s *supplyService) Get(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error) {
	return s.supplyRepo.FindByID(ctx, id)
}

func (s *supplyService) List(ctx context.Context, filter repository.SupplyFilter) (Paged[model.SupplyItem], error) {
	items, total, err := s.supplyRepo.FindAll(ctx, filter)
	if err != nil {
		return Paged[model.SupplyItem]{}, err
	}
	return newPaged(items, total, filter.Page), nil
}

func (s *supplyService) Update(ctx context.Context, id uuid.UUID, req *UpdateSupplyRequest, actor model.Actor) (*model.SupplyItem, error) {
	if req.empty() {
		return nil, apierror.Validation("no fields to update")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	item, err := s.supplyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.MinimumThreshold != nil {
		item.MinimumThreshold = *req.MinimumThreshold
	}
	if req.Unit != nil {
		item.Unit = *req.Unit
	}
	if req.ExpiryDate != nil {
		expiry, err := parseDate("expiry_date", *req.ExpiryDate, s.loc)
		if err != nil {
			return nil, err
		}
		item.ExpiryDate = expiry
	}
	if req.Supplier != nil {
		item.Supplier = *req.Supplier
	}
	if req.Price != nil {
		item.Price = *req.Price
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	item.UpdatedBy = actor.ID

	if err := s.supplyRepo.Update(ctx, item); err != nil {
		return nil, err
	}

	s.events.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "supply_updated",
		Data:    item,
		User:    actorRef(actor),
		Message: say(actor, "updated supply '%s'", item.Name),
	})
	return item, nil
}

// Delete removes the supply. Recipe lines naming it stay in place and no longer
// resolve against the ledger.
func (s *supplyService) Delete(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	item, err := s.supplyRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.supplyRepo.Delete(ctx, id, actor.ID); err != nil {
		return err
	}

	s.events.Publish(ws.Event{
		Type:    ws.EventStockUpdate,
		Action:  "supply_deleted",
		Data:    map[string]interface{}{"id": item.ID, "name": item.Name},
		User:    actorRef(actor),
		Message: say(actor, "deleted supply '%s'", item.Name),
	})
	return nil
}

func (s *supplyService) Adjust(ctx context.Context, id uuid.UUID, req *AdjustStockRequest, actor model.Actor) (*model.SupplyItem, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	mv := &model.StockMovement{
		Type:     req.Type,
		Quantity: req.Quantity,
		Reason:   model.ReasonAdjustment,
		Note:     req.Note,
	}
	mv.CreatedBy = actor.ID
	mv.UpdatedBy = actor.ID

	item, err := s.supplyRepo.Adjust(ctx, id, mv)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("supply", item.Name).
		Str("type", string(mv.Type)).
		Str("quantity", mv.Quantity.String()).
		Str("after", mv.QuantityAfter.String()).
		Str("actor", actor.ID).
		Msg("stock adjusted")

	s.events.Publish(ws.Event{
		Type:   ws.EventStockUpdate,
		Action: "stock_adjusted",
		Data: map[string]interface{}{
			"id":        item.ID,
			"name":      item.Name,
			"type":      mv.Type,
			"quantity":  mv.Quantity,
			"old_stock": mv.QuantityBefore,
			"new_stock": mv.QuantityAfter,
		},
		User:    actorRef(actor),
		Message: say(actor, "adjusted '%s' (%s %s)", item.Name, mv.Type, mv.Quantity.String()),
	})
	return item, nil
}

func (s *supplyService) Movements(ctx context.Context, filter repository.MovementFilter) (Paged[model.StockMovement], error) {
	items, total, err := s.movementRepo.FindAll(ctx, filter)
	if err != nil {
		return Paged[model.StockMovement]{}, err
	}
	return newPaged(items, total, filter.Page), nil
}
