package repository

import (
	"context"

	"go-insumos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierFilter struct {
	Search   string
	Category string
	Page     Page
}

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	FindAll(ctx context.Context, filter SupplierFilter) ([]model.Supplier, int64, error)
	Update(ctx context.Context, supplier *model.Supplier) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
}

type supplierRepo struct {
	db *gorm.DB
}

func NewSupplierRepo(db *gorm.DB) SupplierRepository {
	return &supplierRepo{db}
}

func (r *supplierRepo) Create(ctx context.Context, supplier *model.Supplier) error {
	return translate(r.db.WithContext(ctx).Create(supplier).Error, "supplier")
}

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, translate(err, "supplier")
	}
	return &supplier, nil
}

func (r *supplierRepo) FindAll(ctx context.Context, filter SupplierFilter) ([]model.Supplier, int64, error) {
	var (
		suppliers []model.Supplier
		total     int64
	)
	q := r.db.WithContext(ctx).Model(&model.Supplier{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("name ILIKE ? OR contact ILIKE ? OR item ILIKE ?", like, like, like)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "supplier")
	}
	if err := q.Scopes(paginate(filter.Page)).Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, 0, translate(err, "supplier")
	}
	return suppliers, total, nil
}

func (r *supplierRepo) Update(ctx context.Context, supplier *model.Supplier) error {
	res := r.db.WithContext(ctx).Model(supplier).
		Select("name", "category", "item", "email", "phone", "address", "contact", "updated_by").
		Updates(supplier)
	if res.Error != nil {
		return translate(res.Error, "supplier")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "supplier")
	}
	return nil
}

func (r *supplierRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Supplier{}).Where("id = ?", id).Update("deleted_by", deletedBy)
		if res.Error != nil {
			return translate(res.Error, "supplier")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "supplier")
		}
		return translate(tx.Delete(&model.Supplier{}, "id = ?", id).Error, "supplier")
	})
}
