package repository

import (
	"context"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductFilter struct {
	Search   string
	Category model.ProductCategory
	Page     Page
}

type ProductRepository interface {
	// Create inserts the product together with its recipe lines.
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByName(ctx context.Context, name string) (*model.Product, error)
	FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error

	FindRecipe(ctx context.Context, productID uuid.UUID) ([]model.RecipeLine, error)
	// ReplaceRecipe swaps the whole recipe of a product in one transaction. Readers see
	// either the old set of lines or the new one.
	ReplaceRecipe(ctx context.Context, productID uuid.UUID, lines []model.RecipeLine) ([]model.RecipeLine, error)
	AddRecipeLine(ctx context.Context, line *model.RecipeLine) error
	FindRecipeLine(ctx context.Context, id uuid.UUID) (*model.RecipeLine, error)
	UpdateRecipeLine(ctx context.Context, line *model.RecipeLine) error
	DeleteRecipeLine(ctx context.Context, id uuid.UUID) (*model.RecipeLine, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func recipeOrder(db *gorm.DB) *gorm.DB {
	return db.Order("recipe_lines.created_at ASC, recipe_lines.supply_name ASC")
}

func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(product).Error, "product")
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Preload("Recipe", recipeOrder).First(&product, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "product")
	}
	return &product, nil
}

func (r *productRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&product).Error; err != nil {
		return nil, translate(err, "product")
	}
	return &product, nil
}

func (r *productRepo) FindAll(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var (
		products []model.Product
		total    int64
	)
	q := r.db.WithContext(ctx).Model(&model.Product{})
	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "product")
	}
	err := q.Preload("Recipe", recipeOrder).
		Scopes(paginate(filter.Page)).
		Order("name ASC").
		Find(&products).Error
	if err != nil {
		return nil, 0, translate(err, "product")
	}
	return products, total, nil
}

func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	res := r.db.WithContext(ctx).Model(product).
		Select("name", "category", "price", "description", "image", "updated_by").
		Updates(product)
	if res.Error != nil {
		return translate(res.Error, "product")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "product")
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Product{}).Where("id = ?", id).Update("deleted_by", deletedBy)
		if res.Error != nil {
			return translate(res.Error, "product")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "product")
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.RecipeLine{}).Error; err != nil {
			return translate(err, "recipe line")
		}
		return translate(tx.Delete(&model.Product{}, "id = ?", id).Error, "product")
	})
}

func (r *productRepo) FindRecipe(ctx context.Context, productID uuid.UUID) ([]model.RecipeLine, error) {
	var lines []model.RecipeLine
	err := recipeOrder(r.db.WithContext(ctx).Where("product_id = ?", productID)).Find(&lines).Error
	if err != nil {
		return nil, translate(err, "recipe line")
	}
	return lines, nil
}

// lockProduct serializes recipe writers of one product.
func lockProduct(tx *gorm.DB, id uuid.UUID) error {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Select("id").First(&p, "id = ?", id).Error
	return translate(err, "product")
}

func (r *productRepo) ReplaceRecipe(ctx context.Context, productID uuid.UUID, lines []model.RecipeLine) ([]model.RecipeLine, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, productID); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.RecipeLine{}).Error; err != nil {
			return translate(err, "recipe line")
		}
		if len(lines) == 0 {
			return nil
		}
		for i := range lines {
			lines[i].ProductID = productID
		}
		return translate(tx.Create(&lines).Error, "recipe line")
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *productRepo) AddRecipeLine(ctx context.Context, line *model.RecipeLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, line.ProductID); err != nil {
			return err
		}
		var n int64
		err := tx.Model(&model.RecipeLine{}).
			Where("product_id = ? AND supply_name = ?", line.ProductID, line.SupplyName).
			Count(&n).Error
		if err != nil {
			return translate(err, "recipe line")
		}
		if n > 0 {
			return apierror.Conflict("recipe already uses " + line.SupplyName)
		}
		return translate(tx.Create(line).Error, "recipe line")
	})
}

func (r *productRepo) FindRecipeLine(ctx context.Context, id uuid.UUID) (*model.RecipeLine, error) {
	var line model.RecipeLine
	if err := r.db.WithContext(ctx).First(&line, "id = ?", id).Error; err != nil {
		return nil, translate(err, "recipe line")
	}
	return &line, nil
}

func (r *productRepo) UpdateRecipeLine(ctx context.Context, line *model.RecipeLine) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockProduct(tx, line.ProductID); err != nil {
			return err
		}
		res := tx.Model(line).Select("supply_name", "quantity_required", "unit").Updates(line)
		if res.Error != nil {
			return translate(res.Error, "recipe line")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "recipe line")
		}
		return nil
	})
}

func (r *productRepo) DeleteRecipeLine(ctx context.Context, id uuid.UUID) (*model.RecipeLine, error) {
	var line model.RecipeLine
	res := r.db.WithContext(ctx).Clauses(clause.Returning{}).Where("id = ?", id).Delete(&line)
	if res.Error != nil {
		return nil, translate(res.Error, "recipe line")
	}
	if res.RowsAffected == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "recipe line")
	}
	return &line, nil
}
