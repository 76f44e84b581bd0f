package service

import (
	"context"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/repository"
)

const maxMovementDays = 366

type DashboardService interface {
	GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error)
	GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error)
}

type dashboardService struct {
	movementRepo repository.MovementRepository
	now          func() time.Time
}

func NewDashboardService(movementRepo repository.MovementRepository) DashboardService {
	return &dashboardService{movementRepo: movementRepo, now: time.Now}
}

func (s *dashboardService) GetStockMovement(ctx context.Context, days int) ([]repository.StockMovementData, error) {
	if days < 1 || days > maxMovementDays {
		return nil, apierror.ValidationFields(map[string]string{"days": "must be between 1 and 366"})
	}
	endDate := s.now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.movementRepo.GetStockMovement(ctx, startDate, endDate)
}

func (s *dashboardService) GetDashboardStats(ctx context.Context) (*repository.DashboardStats, error) {
	return s.movementRepo.GetDashboardStats(ctx)
}
