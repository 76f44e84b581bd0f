package service

import (
	"context"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/stock"
)

type AlertService interface {
	// List returns the supplies needing attention, most severe first.
	List(ctx context.Context, category string) ([]stock.Alert, error)
	Summary(ctx context.Context) (stock.Summary, error)
}

type alertService struct {
	supplyRepo repository.SupplyRepository
	loc        *time.Location
	now        func() time.Time
}

func NewAlertService(supplyRepo repository.SupplyRepository, loc *time.Location) AlertService {
	return &alertService{supplyRepo: supplyRepo, loc: loc, now: time.Now}
}

func (s *alertService) candidates(ctx context.Context, now time.Time) ([]model.SupplyItem, error) {
	horizon := model.Today(now, s.loc).AddDate(0, 0, stock.ExpiringSoonDays)
	return s.supplyRepo.AlertCandidates(ctx, horizon)
}

func (s *alertService) List(ctx context.Context, category string) ([]stock.Alert, error) {
	cat, err := stock.ParseCategory(category)
	if err != nil {
		return nil, apierror.ValidationFields(map[string]string{
			"category": "must be one of: all low-stock out-of-stock expiring-soon expired",
		})
	}
	now := s.now()
	items, err := s.candidates(ctx, now)
	if err != nil {
		return nil, err
	}
	return stock.Rank(items, cat, now, s.loc), nil
}

func (s *alertService) Summary(ctx context.Context) (stock.Summary, error) {
	now := s.now()
	items, err := s.candidates(ctx, now)
	if err != nil {
		return stock.Summary{}, err
	}
	return stock.Summarize(items, now, s.loc), nil
}
