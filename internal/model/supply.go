package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SupplyItem is a raw supply (insumo). QuantityOnHand is the stock ledger balance and is
// only changed through order delivery or an explicit adjustment.
type SupplyItem struct {
	BaseModel
	Name             string          `gorm:"type:varchar(120);not null;uniqueIndex:idx_supply_items_name,where:deleted_at IS NULL" json:"name"`
	QuantityOnHand   decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0" json:"quantity_on_hand"`
	MinimumThreshold decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0" json:"minimum_threshold"`
	Unit             string          `gorm:"type:varchar(20);not null" json:"unit"`
	ExpiryDate       *time.Time      `gorm:"type:date" json:"expiry_date,omitempty"`
	Supplier         string          `gorm:"type:varchar(120)" json:"supplier"`
	Price            decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	Category         string          `gorm:"type:varchar(60)" json:"category"`
	RegisteredAt     time.Time       `gorm:"type:date" json:"registered_at"`
}

func (SupplyItem) TableName() string { return "supply_items" }

// Units accepted for supplies and recipe lines.
var SupplyUnits = []string{"kg", "g", "l", "ml", "pz", "units"}
