package repository

import (
	"context"
	"time"

	"go-insumos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SupplyFilter struct {
	Search   string
	Category string
	Page     Page
}

type SupplyRepository interface {
	Create(ctx context.Context, item *model.SupplyItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error)
	FindByName(ctx context.Context, name string) (*model.SupplyItem, error)
	FindByNames(ctx context.Context, names []string) ([]model.SupplyItem, error)
	FindAll(ctx context.Context, filter SupplyFilter) ([]model.SupplyItem, int64, error)
	// Update writes every descriptive column. The quantity on hand is not one of them.
	Update(ctx context.Context, item *model.SupplyItem) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error

	// AlertCandidates returns out-of-stock, low-stock and expiring rows, one query per
	// category. An item in several categories appears several times.
	AlertCandidates(ctx context.Context, expiryHorizon time.Time) ([]model.SupplyItem, error)

	// Adjust locks the row, applies mv and logs it, atomically.
	Adjust(ctx context.Context, id uuid.UUID, mv *model.StockMovement) (*model.SupplyItem, error)
}

type supplyRepo struct {
	db *gorm.DB
}

func NewSupplyRepo(db *gorm.DB) SupplyRepository {
	return &supplyRepo{db}
}

// Create inserts item. A positive opening quantity is logged as the first movement.
func (r *supplyRepo) Create(ctx context.Context, item *model.SupplyItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return translate(err, "supply")
		}
		if !item.QuantityOnHand.IsPositive() {
			return nil
		}
		mv := &model.StockMovement{
			SupplyID:       item.ID,
			Type:           model.MovementIn,
			Quantity:       item.QuantityOnHand,
			QuantityBefore: decimal.Zero,
			QuantityAfter:  item.QuantityOnHand,
			Reason:         model.ReasonOpening,
		}
		mv.CreatedBy = item.CreatedBy
		mv.UpdatedBy = item.CreatedBy
		return translate(tx.Create(mv).Error, "stock movement")
	})
}

func (r *supplyRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SupplyItem, error) {
	var item model.SupplyItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, translate(err, "supply")
	}
	return &item, nil
}

func (r *supplyRepo) FindByName(ctx context.Context, name string) (*model.SupplyItem, error) {
	var item model.SupplyItem
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&item).Error; err != nil {
		return nil, translate(err, "supply")
	}
	return &item, nil
}

func (r *supplyRepo) FindByNames(ctx context.Context, names []string) ([]model.SupplyItem, error) {
	var items []model.SupplyItem
	if len(names) == 0 {
		return items, nil
	}
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&items).Error; err != nil {
		return nil, translate(err, "supply")
	}
	return items, nil
}

func (r *supplyRepo) FindAll(ctx context.Context, filter SupplyFilter) ([]model.SupplyItem, int64, error) {
	var (
		items []model.SupplyItem
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.SupplyItem{})
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "supply")
	}
	if err := q.Scopes(paginate(filter.Page)).Order("name ASC").Find(&items).Error; err != nil {
		return nil, 0, translate(err, "supply")
	}
	return items, total, nil
}

func (r *supplyRepo) Update(ctx context.Context, item *model.SupplyItem) error {
	res := r.db.WithContext(ctx).Model(item).
		Select("name", "minimum_threshold", "unit", "expiry_date", "supplier", "price", "category", "registered_at", "updated_by").
		Updates(item)
	if res.Error != nil {
		return translate(res.Error, "supply")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "supply")
	}
	return nil
}

func (r *supplyRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.SupplyItem{}).Where("id = ?", id).Update("deleted_by", deletedBy)
		if res.Error != nil {
			return translate(res.Error, "supply")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "supply")
		}
		return translate(tx.Delete(&model.SupplyItem{}, "id = ?", id).Error, "supply")
	})
}

func (r *supplyRepo) AlertCandidates(ctx context.Context, expiryHorizon time.Time) ([]model.SupplyItem, error) {
	db := r.db.WithContext(ctx)
	queries := []*gorm.DB{
		db.Where("quantity_on_hand <= 0"),
		db.Where("quantity_on_hand > 0 AND quantity_on_hand <= minimum_threshold"),
		db.Where("expiry_date IS NOT NULL AND expiry_date <= ?", expiryHorizon),
	}

	var out []model.SupplyItem
	for _, q := range queries {
		var batch []model.SupplyItem
		if err := q.Order("name ASC").Find(&batch).Error; err != nil {
			return nil, translate(err, "supply")
		}
		out = append(out, batch...)
	}
	return out, nil
}

func (r *supplyRepo) Adjust(ctx context.Context, id uuid.UUID, mv *model.StockMovement) (*model.SupplyItem, error) {
	var item *model.SupplyItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		s, err := lockSupply(tx, "id = ?", id)
		if err != nil {
			return err
		}
		if err := applyMovement(tx, s, mv); err != nil {
			return err
		}
		item = s
		return nil
	})
	if err != nil {
		return nil, translate(err, "supply")
	}
	return item, nil
}
