package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the closed, case-sensitive set of order states.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus accepts only the exact lowercase values.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderPending, OrderDelivered, OrderCancelled:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// TargetKind is the persisted discriminator of an order target.
type TargetKind string

const (
	TargetSupply  TargetKind = "supply"
	TargetProduct TargetKind = "product"
)

// OrderTarget is what an order acquires: a SupplyTarget or a ProductTarget.
type OrderTarget interface {
	Kind() TargetKind
	Name() string
	isOrderTarget()
}

type SupplyTarget struct{ SupplyName string }

func (SupplyTarget) Kind() TargetKind { return TargetSupply }
func (t SupplyTarget) Name() string   { return t.SupplyName }
func (SupplyTarget) isOrderTarget()   {}

type ProductTarget struct{ ProductName string }

func (ProductTarget) Kind() TargetKind { return TargetProduct }
func (t ProductTarget) Name() string   { return t.ProductName }
func (ProductTarget) isOrderTarget()   {}

// NewOrderTarget builds the variant for kind.
func NewOrderTarget(kind TargetKind, name string) (OrderTarget, error) {
	switch kind {
	case TargetSupply:
		return SupplyTarget{SupplyName: name}, nil
	case TargetProduct:
		return ProductTarget{ProductName: name}, nil
	}
	return nil, fmt.Errorf("unknown order target kind %q", kind)
}

// Order (pedido) is a purchase or production request.
type Order struct {
	BaseModel
	Supplier    string          `gorm:"type:varchar(120);not null" json:"supplier"`
	TargetKind  TargetKind      `gorm:"type:varchar(10);not null;index" json:"target_kind"`
	ItemName    string          `gorm:"type:varchar(120);not null" json:"item_name"`
	Quantity    decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(20);not null" json:"unit"`
	TotalPrice  decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_price"`
	OrderedAt   time.Time       `gorm:"type:date;not null;index" json:"ordered_at"`
	ExpectedAt  *time.Time      `gorm:"type:date" json:"expected_at,omitempty"`
	Status      OrderStatus     `gorm:"type:varchar(12);not null;default:pending;index" json:"status"`
	DeliveredAt *time.Time      `json:"delivered_at,omitempty"`
}

func (Order) TableName() string { return "orders" }

// Target returns the typed variant. Rows with an unknown kind fall back to a supply target,
// which is what the column default has always meant.
func (o *Order) Target() OrderTarget {
	t, err := NewOrderTarget(o.TargetKind, o.ItemName)
	if err != nil {
		return SupplyTarget{SupplyName: o.ItemName}
	}
	return t
}

func (o *Order) SetTarget(t OrderTarget) {
	o.TargetKind = t.Kind()
	o.ItemName = t.Name()
}
