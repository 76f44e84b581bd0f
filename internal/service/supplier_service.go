package service

import (
	"context"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"

	"github.com/google/uuid"
)

type SupplierService interface {
	Create(ctx context.Context, req *CreateSupplierRequest, actor model.Actor) (*model.Supplier, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, filter repository.SupplierFilter) (Paged[model.Supplier], error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateSupplierRequest, actor model.Actor) (*model.Supplier, error)
	Delete(ctx context.Context, id uuid.UUID, actor model.Actor) error
}

type CreateSupplierRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Category string `json:"category" validate:"required,max=60"`
	Item     string `json:"item" validate:"max=120"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"max=30"`
	Address  string `json:"address" validate:"required"`
	Contact  string `json:"contact" validate:"required,max=120"`
}

type UpdateSupplierRequest struct {
	Name     *string `json:"name" validate:"omitempty,min=1,max=120"`
	Category *string `json:"category" validate:"omitempty,min=1,max=60"`
	Item     *string `json:"item" validate:"omitempty,max=120"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone" validate:"omitempty,max=30"`
	Address  *string `json:"address" validate:"omitempty,min=1"`
	Contact  *string `json:"contact" validate:"omitempty,min=1,max=120"`
}

func (r *UpdateSupplierRequest) empty() bool {
	return r.Name == nil && r.Category == nil && r.Item == nil && r.Email == nil &&
		r.Phone == nil && r.Address == nil && r.Contact == nil
}

type supplierService struct {
	supplierRepo repository.SupplierRepository
	loc          *time.Location
	now          func() time.Time
}

func NewSupplierService(supplierRepo repository.SupplierRepository, loc *time.Location) SupplierService {
	return &supplierService{supplierRepo: supplierRepo, loc: loc, now: time.Now}
}

func (s *supplierService) Create(ctx context.Context, req *CreateSupplierRequest, actor model.Actor) (*model.Supplier, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	sup := &model.Supplier{
		Name:         req.Name,
		Category:     req.Category,
		Item:         req.Item,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Contact:      req.Contact,
		RegisteredAt: model.Today(s.now(), s.loc),
	}
	sup.CreatedBy = actor.ID
	sup.UpdatedBy = actor.ID
	if err := s.supplierRepo.Create(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *supplierService) Get(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	return s.supplierRepo.FindByID(ctx, id)
}

func (s *supplierService) List(ctx context.Context, filter repository.SupplierFilter) (Paged[model.Supplier], error) {
	items, total, err := s.supplierRepo.FindAll(ctx, filter)
	if err != nil {
		return Paged[model.Supplier]{}, err
	}
	return newPaged(items, total, filter.Page), nil
}

func (s *supplierService) Update(ctx context.Context, id uuid.UUID, req *UpdateSupplierRequest, actor model.Actor) (*model.Supplier, error) {
	if req.empty() {
		return nil, apierror.Validation("no fields to update")
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	sup, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&sup.Name, req.Name)
	set(&sup.Category, req.Category)
	set(&sup.Item, req.Item)
	set(&sup.Email, req.Email)
	set(&sup.Phone, req.Phone)
	set(&sup.Address, req.Address)
	set(&sup.Contact, req.Contact)
	sup.UpdatedBy = actor.ID

	if err := s.supplierRepo.Update(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *supplierService) Delete(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	return s.supplierRepo.Delete(ctx, id, actor.ID)
}
