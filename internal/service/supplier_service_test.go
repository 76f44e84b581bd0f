package service

import (
	"context"
	"testing"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type supplierStub struct {
	rows map[uuid.UUID]*model.Supplier
}

func (s *supplierStub) Create(_ context.Context, sup *model.Supplier) error {
	if sup.ID == uuid.Nil {
		sup.ID = uuid.New()
	}
	cp := *sup
	s.rows[sup.ID] = &cp
	return nil
}

func (s *supplierStub) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	sup, ok := s.rows[id]
	if !ok {
		return nil, apierror.NotFound("supplier not found")
	}
	cp := *sup
	return &cp, nil
}

func (s *supplierStub) FindAll(_ context.Context, _ repository.SupplierFilter) ([]model.Supplier, int64, error) {
	out := make([]model.Supplier, 0, len(s.rows))
	for _, sup := range s.rows {
		out = append(out, *sup)
	}
	return out, int64(len(out)), nil
}

func (s *supplierStub) Update(_ context.Context, sup *model.Supplier) error {
	if _, ok := s.rows[sup.ID]; !ok {
		return apierror.NotFound("supplier not found")
	}
	cp := *sup
	s.rows[sup.ID] = &cp
	return nil
}

func (s *supplierStub) Delete(_ context.Context, id uuid.UUID, _ string) error {
	if _, ok := s.rows[id]; !ok {
		return apierror.NotFound("supplier not found")
	}
	delete(s.rows, id)
	return nil
}

func newSupplierSvc() (*supplierService, *supplierStub) {
	repo := &supplierStub{rows: map[uuid.UUID]*model.Supplier{}}
	return &supplierService{supplierRepo: repo, loc: time.UTC, now: clock}, repo
}

func TestSupplierCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	svc, repo := newSupplierSvc()

	sup, err := svc.Create(ctx, &CreateSupplierRequest{
		Name:     "Molinos SA",
		Category: "dry goods",
		Email:    "ventas@molinos.example",
		Address:  "Av. Central 12",
		Contact:  "Rosa",
	}, alice)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), sup.RegisteredAt)
	assert.Equal(t, alice.ID, sup.CreatedBy)

	updated, err := svc.Update(ctx, sup.ID, &UpdateSupplierRequest{Phone: strPtr("555-0101")}, alice)
	require.NoError(t, err)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, "Molinos SA", updated.Name)
	assert.Equal(t, "555-0101", repo.rows[sup.ID].Phone)

	page, err := svc.List(ctx, repository.SupplierFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, page.Total)

	require.NoError(t, svc.Delete(ctx, sup.ID, alice))
	_, err = svc.Get(ctx, sup.ID)
	assert.True(t, apierror.IsNotFound(err))
}

func TestSupplierValidation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newSupplierSvc()

	_, err := svc.Create(ctx, &CreateSupplierRequest{Name: "Lala", Email: "not-an-email"}, alice)
	assert.True(t, apierror.IsValidation(err))

	_, err = svc.Update(ctx, uuid.New(), &UpdateSupplierRequest{}, alice)
	assert.True(t, apierror.IsValidation(err))

	_, err = svc.Update(ctx, uuid.New(), &UpdateSupplierRequest{Name: strPtr("Lala")}, alice)
	assert.True(t, apierror.IsNotFound(err))
}
