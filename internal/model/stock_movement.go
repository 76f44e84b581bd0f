package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn  MovementType = "IN"
	MovementOut MovementType = "OUT"
)

type MovementReason string

const (
	ReasonOrderDelivery MovementReason = "order_delivery"
	ReasonAdjustment    MovementReason = "adjustment"
	ReasonOpening       MovementReason = "opening_balance"
)

// StockMovement is one entry of the ledger history. Rows are append-only.
type StockMovement struct {
	BaseModel
	SupplyID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"supply_id"`
	Supply         *SupplyItem     `gorm:"foreignKey:SupplyID" json:"supply,omitempty"`
	Type           MovementType    `gorm:"type:varchar(10);not null" json:"type"`
	Quantity       decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	QuantityBefore decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity_before"`
	QuantityAfter  decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity_after"`
	Reason         MovementReason  `gorm:"type:varchar(30);not null" json:"reason"`
	OrderID        *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_stock_movements_order,where:order_id IS NOT NULL" json:"order_id,omitempty"`
	Note           string          `json:"note,omitempty"`
}

func (StockMovement) TableName() string { return "stock_movements" }
