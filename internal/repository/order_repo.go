package repository

import (
	"context"
	"fmt"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/stock"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderFilter struct {
	Status     model.OrderStatus
	TargetKind model.TargetKind
	Search     string
	Page       Page
}

// DecideFunc plans a status change for an order that is already locked.
type DecideFunc func(order model.Order) (stock.Transition, error)

// StatusChange reports what ApplyStatus did. Supply and Movement are set only
// when the ledger was credited.
type StatusChange struct {
	Order      model.Order
	Transition stock.Transition
	Supply     *model.SupplyItem
	Movement   *model.StockMovement
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindAll(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	// Update rewrites the non-status columns of a pending order.
	Update(ctx context.Context, order *model.Order) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error

	// ApplyStatus runs decide against the locked row and, in the same transaction,
	// writes the new status and credits the ledger when the plan says so. Two
	// concurrent deliveries of one order credit it once.
	ApplyStatus(ctx context.Context, id uuid.UUID, decide DecideFunc, actor model.Actor, at time.Time) (*StatusChange, error)
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepo(db *gorm.DB) OrderRepository {
	return &orderRepo{db}
}

func (r *orderRepo) Create(ctx context.Context, order *model.Order) error {
	return translate(r.db.WithContext(ctx).Create(order).Error, "order")
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		return nil, translate(err, "order")
	}
	return &order, nil
}

func (r *orderRepo) FindAll(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var (
		orders []model.Order
		total  int64
	)
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TargetKind != "" {
		q = q.Where("target_kind = ?", filter.TargetKind)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("item_name ILIKE ? OR supplier ILIKE ?", like, like)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "order")
	}
	err := q.Scopes(paginate(filter.Page)).
		Order("ordered_at DESC, created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, 0, translate(err, "order")
	}
	return orders, total, nil
}

func (r *orderRepo) Update(ctx context.Context, order *model.Order) error {
	db := r.db.WithContext(ctx)
	res := db.Model(order).
		Where("status = ?", model.OrderPending).
		Select("supplier", "target_kind", "item_name", "quantity", "unit", "total_price", "expected_at", "updated_by").
		Updates(order)
	if res.Error != nil {
		return translate(res.Error, "order")
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var current model.Order
	if err := db.Select("id", "status").First(&current, "id = ?", order.ID).Error; err != nil {
		return translate(err, "order")
	}
	return apierror.Conflict(fmt.Sprintf("order is %s; only pending orders can be edited", current.Status))
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).Where("id = ?", id).Update("deleted_by", deletedBy)
		if res.Error != nil {
			return translate(res.Error, "order")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "order")
		}
		return translate(tx.Delete(&model.Order{}, "id = ?", id).Error, "order")
	})
}

func (r *orderRepo) ApplyStatus(ctx context.Context, id uuid.UUID, decide DecideFunc, actor model.Actor, at time.Time) (*StatusChange, error) {
	change := &StatusChange{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order model.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, "id = ?", id).Error; err != nil {
			return translate(err, "order")
		}

		t, err := decide(order)
		if err != nil {
			return err
		}
		change.Transition = t
		if !t.Changed {
			change.Order = order
			return nil
		}

		updates := map[string]interface{}{
			"status":     t.To,
			"updated_by": actor.ID,
		}
		if t.To == model.OrderDelivered {
			updates["delivered_at"] = at
		}
		// compare-and-set on top of the row lock
		res := tx.Model(&model.Order{}).Where("id = ? AND status = ?", order.ID, t.From).Updates(updates)
		if res.Error != nil {
			return translate(res.Error, "order")
		}
		if res.RowsAffected == 0 {
			return apierror.Conflict("order status changed concurrently")
		}
		order.Status = t.To
		order.UpdatedBy = actor.ID
		if t.To == model.OrderDelivered {
			order.DeliveredAt = &at
		}
		change.Order = order

		if !t.CreditsLedger(order.Target()) {
			return nil
		}
		s, err := lockSupply(tx, "name = ?", order.ItemName)
		if apierror.IsNotFound(err) {
			return apierror.NotFound(fmt.Sprintf("supply %q not found", order.ItemName))
		}
		if err != nil {
			return err
		}
		orderID := order.ID
		mv := &model.StockMovement{
			Type:     model.MovementIn,
			Quantity: order.Quantity,
			Reason:   model.ReasonOrderDelivery,
			OrderID:  &orderID,
			Note:     "delivery of order " + orderID.String(),
		}
		mv.CreatedBy = actor.ID
		mv.UpdatedBy = actor.ID
		if err := applyMovement(tx, s, mv); err != nil {
			return err
		}
		change.Supply = s
		change.Movement = mv
		return nil
	})
	if err != nil {
		return nil, translate(err, "order")
	}
	return change, nil
}
