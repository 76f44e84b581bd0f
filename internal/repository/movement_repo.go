package repository

import (
	"context"
	"time"

	"go-insumos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type MovementFilter struct {
	SupplyID *uuid.UUID
	Type     model.MovementType
	Page     Page
}

type MovementRepository interface {
	FindAll(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error)
	GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*DashboardStats, error)
}

// StockMovementData is one day of the inbound/outbound chart.
type StockMovementData struct {
	Date     string          `json:"date"`
	Inbound  decimal.Decimal `json:"inbound"`
	Outbound decimal.Decimal `json:"outbound"`
}

// DashboardStats is the overview card data.
type DashboardStats struct {
	TotalSupplies   int64           `json:"total_supplies"`
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	OutOfStockCount int64           `json:"out_of_stock_count"`
	PendingOrders   int64           `json:"pending_orders"`
	TotalValuation  decimal.Decimal `json:"total_valuation"`
}

type movementRepo struct {
	db *gorm.DB
}

func NewMovementRepo(db *gorm.DB) MovementRepository {
	return &movementRepo{db}
}

func (r *movementRepo) FindAll(ctx context.Context, filter MovementFilter) ([]model.StockMovement, int64, error) {
	var (
		movements []model.StockMovement
		total     int64
	)
	q := r.db.WithContext(ctx).Model(&model.StockMovement{})
	if filter.SupplyID != nil {
		q = q.Where("supply_id = ?", *filter.SupplyID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "stock movement")
	}
	err := q.Preload("Supply").
		Scopes(paginate(filter.Page)).
		Order("created_at DESC").
		Find(&movements).Error
	if err != nil {
		return nil, 0, translate(err, "stock movement")
	}
	return movements, total, nil
}

func (r *movementRepo) GetStockMovement(ctx context.Context, startDate, endDate time.Time) ([]StockMovementData, error) {
	rows, err := r.db.WithContext(ctx).Model(&model.StockMovement{}).
		Select(`
			TO_CHAR(DATE(created_at), 'YYYY-MM-DD') as date,
			COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE 0 END), 0) as inbound,
			COALESCE(SUM(CASE WHEN type = 'OUT' THEN quantity ELSE 0 END), 0) as outbound
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, translate(err, "stock movement")
	}
	defer rows.Close()

	results := []StockMovementData{}
	for rows.Next() {
		var data StockMovementData
		if err := rows.Scan(&data.Date, &data.Inbound, &data.Outbound); err != nil {
			return nil, translate(err, "stock movement")
		}
		results = append(results, data)
	}
	return results, translate(rows.Err(), "stock movement")
}

func (r *movementRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	steps := []error{
		db.Model(&model.SupplyItem{}).Count(&stats.TotalSupplies).Error,
		db.Model(&model.Product{}).Count(&stats.TotalProducts).Error,
		db.Model(&model.SupplyItem{}).
			Where("quantity_on_hand > 0 AND quantity_on_hand <= minimum_threshold").
			Count(&stats.LowStockCount).Error,
		db.Model(&model.SupplyItem{}).Where("quantity_on_hand <= 0").Count(&stats.OutOfStockCount).Error,
		db.Model(&model.Order{}).Where("status = ?", model.OrderPending).Count(&stats.PendingOrders).Error,
		db.Model(&model.SupplyItem{}).
			Select("COALESCE(SUM(quantity_on_hand * price), 0)").
			Row().Scan(&stats.TotalValuation),
	}
	for _, err := range steps {
		if err != nil {
			return nil, translate(err, "dashboard")
		}
	}
	return &stats, nil
}
