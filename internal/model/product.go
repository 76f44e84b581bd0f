package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryDrinks   ProductCategory = "drinks"
	CategoryFood     ProductCategory = "food"
	CategoryDesserts ProductCategory = "desserts"
)

// Product is a sellable item assembled from supplies. Availability is derived, never stored.
type Product struct {
	BaseModel
	Name         string          `gorm:"type:varchar(120);not null;uniqueIndex:idx_products_name,where:deleted_at IS NULL" json:"name"`
	Category     ProductCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Price        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Description  string          `gorm:"type:text" json:"description,omitempty"`
	Image        string          `gorm:"type:text" json:"image,omitempty"`
	RegisteredAt time.Time       `gorm:"type:date" json:"registered_at"`

	Recipe []RecipeLine `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"recipe,omitempty"`
}

func (Product) TableName() string { return "products" }

// RecipeLine says how much of one supply a single product unit needs.
// The supply is referenced by name, not by key.
type RecipeLine struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_recipe_lines_product_supply" json:"product_id"`
	SupplyName       string          `gorm:"type:varchar(120);not null;uniqueIndex:idx_recipe_lines_product_supply;index" json:"supply_name"`
	QuantityRequired decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity_required"`
	Unit             string          `gorm:"type:varchar(20);not null" json:"unit"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (RecipeLine) TableName() string { return "recipe_lines" }

func (l *RecipeLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
