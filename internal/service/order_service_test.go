package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderSvc(m *memStore, rec *recorder) *orderService {
	s := NewOrderService(orderStub{m}, supplyStub{m}, productStub{m}, rec, time.UTC).(*orderService)
	s.now = clock
	return s
}

func placeOrder(t *testing.T, svc *orderService, item, qty string) *model.Order {
	t.Helper()
	o, err := svc.Create(context.Background(), &CreateOrderRequest{
		Supplier:   "Molinos SA",
		ItemName:   item,
		Quantity:   dec(qty),
		Unit:       "kg",
		TotalPrice: dec("300"),
	}, alice)
	require.NoError(t, err)
	return o
}

func TestCreateOrder(t *testing.T) {
	m, rec := newMemStore(), &recorder{}
	m.seedSupply("Flour", "4", "10", nil)
	svc := newOrderSvc(m, rec)

	o, err := svc.Create(context.Background(), &CreateOrderRequest{
		Supplier:   "Molinos SA",
		ItemName:   "Flour",
		Quantity:   dec("25"),
		Unit:       "kg",
		TotalPrice: dec("300"),
		ExpectedAt: "2026-03-14",
	}, alice)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, o.Status)
	assert.Equal(t, model.TargetSupply, o.TargetKind)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), o.OrderedAt)
	require.NotNil(t, o.ExpectedAt)
	assert.Equal(t, 14, o.ExpectedAt.Day())
	assert.Equal(t, alice.ID, o.CreatedBy)
	assert.Equal(t, []string{"order_status/order_created"}, rec.actions())
}

func TestCreateOrderValidation(t *testing.T) {
	m := newMemStore()
	m.seedSupply("Flour", "4", "10", nil)
	svc := newOrderSvc(m, &recorder{})
	ctx := context.Background()

	_, err := svc.Create(ctx, &CreateOrderRequest{Supplier: "X", ItemName: "Flour", Quantity: dec("0"), Unit: "kg"}, alice)
	assert.True(t, apierror.IsValidation(err), "zero quantity")

	_, err = svc.Create(ctx, &CreateOrderRequest{Supplier: "X", ItemName: "Sugar", Quantity: dec("1"), Unit: "kg"}, alice)
	var ae *apierror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apierror.KindValidation, ae.Kind)
	assert.Equal(t, "unknown supply", ae.Fields["item_name"])

	_, err = svc.Create(ctx, &CreateOrderRequest{Supplier: "X", TargetKind: "shelf", ItemName: "Flour", Quantity: dec("1"), Unit: "kg"}, alice)
	assert.True(t, apierror.IsValidation(err), "unknown target kind")

	_, err = svc.Create(ctx, &CreateOrderRequest{Supplier: "X", ItemName: "Flour", Quantity: dec("1"), Unit: "kg", ExpectedAt: "soon"}, alice)
	assert.True(t, apierror.IsValidation(err), "bad date")
}

func TestDeliverCreditsStockOnce(t *testing.T) {
	m, rec := newMemStore(), &recorder{}
	m.seedSupply("Flour", "4", "10", nil)
	svc := newOrderSvc(m, rec)
	ctx := context.Background()
	o := placeOrder(t, svc, "Flour", "25")

	res, err := svc.SetStatus(ctx, o.ID, "delivered", alice)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.True(t, res.StockCredited)
	assert.Equal(t, "order delivered and stock updated", res.Message)
	assert.Equal(t, model.OrderDelivered, res.Order.Status)
	require.NotNil(t, res.Order.DeliveredAt)
	require.NotNil(t, res.Supply)
	assert.True(t, res.Supply.QuantityOnHand.Equal(dec("29")))
	assert.True(t, m.quantity("Flour").Equal(dec("29")))

	again, err := svc.SetStatus(ctx, o.ID, "delivered", alice)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.False(t, again.StockCredited)
	assert.Equal(t, "order is already delivered", again.Message)
	assert.True(t, m.quantity("Flour").Equal(dec("29")))
	assert.Equal(t, 1, m.movementCount())

	assert.Equal(t, []string{
		"order_status/order_created",
		"order_status/order_delivered",
		"stock_update/order_delivered",
	}, rec.actions())
}

func TestConcurrentDeliveriesCreditOnce(t *testing.T) {
	m := newMemStore()
	m.seedSupply("Flour", "4", "10", nil)
	svc := newOrderSvc(m, &recorder{})
	o := placeOrder(t, svc, "Flour", "25")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		credited int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.SetStatus(context.Background(), o.ID, "delivered", alice)
			if !assert.NoError(t, err) {
				return
			}
			if res.StockCredited {
				mu.Lock()
				credited++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, credited)
	assert.Equal(t, 1, m.movementCount())
	assert.True(t, m.quantity("Flour").Equal(dec("29")))
}

func TestTerminalStatesReject(t *testing.T) {
	m := newMemStore()
	m.seedSupply("Flour", "4", "10", nil)
	svc := newOrderSvc(m, &recorder{})
	ctx := context.Background()

	delivered := placeOrder(t, svc, "Flour", "1")
	_, err := svc.SetStatus(ctx, delivered.ID, "delivered", alice)
	require.NoError(t, err)

	_, err = svc.SetStatus(ctx, delivered.ID, "cancelled", alice)
	assert.True(t, apierror.IsConflict(err))
	_, err = svc.SetStatus(ctx, delivered.ID, "pending", alice)
	assert.True(t, apierror.IsConflict(err))

	cancelled := placeOrder(t, svc, "Flour", "1")
	res, err := svc.SetStatus(ctx, cancelled.ID, "cancelled", alice)
	require.NoError(t, err)
	assert.Equal(t, "order cancelled", res.Message)
	assert.False(t, res.StockCredited)

	_, err = svc.SetStatus(ctx, cancelled.ID, "delivered", alice)
	assert.True(t, apierror.IsConflict(err))

	assert.True(t, m.quantity("Flour").Equal(dec("5")))
	assert.Equal(t, 1, m.movementCount())
}

func TestSetStatusValidation(t *testing.T) {
	m := newMemStore()
	m.seedSupply("Flour", "4", "10", nil)
	svc := newOrderSvc(m, &recorder{})
	o := placeOrder(t, svc, "Flour", "1")

	_, err := svc.SetStatus(context.Background(), o.ID, "Delivered", alice)
	assert.True(t, apierror.IsValidation(err))

	_, err = svc.SetStatus(context.Background(), uuid.New(), "delivered", alice)
	assert.True(t, apierror.IsNotFound(err))
}

func TestProductOrderDeliversWithoutCredit(t *testing.T) {
	m := newMemStore()
	m.seedSupply("Flour", "4", "10", nil)
	products := newProductSvc(m, &recorder{})
	_, err := products.Create(context.Background(), &CreateProductRequest{Name: "Bagel", Category: "food"}, alice)
	require.NoError(t, err)
	svc := newOrderSvc(m, &recorder{})

	o, err := svc.Create(context.Background(), &CreateOrderRequest{
		Supplier: "Bakery", TargetKind: model.TargetProduct, ItemName: "Bagel", Quantity: dec("12"), Unit: "pz",
	}, alice)
	require.NoError(t, err)

	res, err := svc.SetStatus(context.Background(), o.ID, "delivered", alice)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.False(t, res.StockCredited)
	assert.Equal(t, "order delivered", res.Message)
	assert.Equal(t, 0, m.movementCount())
	assert.True(t, m.quantity("Flour").Equal(dec("4")))
}

func TestDeliveryOfVanishedSupplyLeavesOrderPending(t *testing.T) {
	m := newMemStore()
	flour := m.seedSupply("Flour", "4", "10", nil)
	svc := newOrderSvc(m, &recorder{})
	o := placeOrder(t, svc, "Flour", "25")

	require.NoError(t, supplyStub{m}.Delete(context.Background(), flour.ID, alice.ID))

	_, err := svc.SetStatus(context.Background(), o.ID, "delivered", alice)
	assert.True(t, apierror.IsNotFound(err))

	got, err := svc.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderPending, got.Status)
	assert.Nil(t, got.DeliveredAt)
}

func TestUpdateOrderOnlyWhilePending(t *testing.T) {
	m := newMemStore()
	m.seedSupply("Flour", "4", "10", nil)
	m.seedSupply("Sugar", "4", "10", nil)
	svc := newOrderSvc(m, &recorder{})
	ctx := context.Background()
	o := placeOrder(t, svc, "Flour", "25")

	_, err := svc.Update(ctx, o.ID, &UpdateOrderRequest{}, alice)
	assert.True(t, apierror.IsValidation(err))

	_, err = svc.Update(ctx, o.ID, &UpdateOrderRequest{ItemName: strPtr("Salt")}, alice)
	assert.True(t, apierror.IsValidation(err))

	got, err := svc.Update(ctx, o.ID, &UpdateOrderRequest{ItemName: strPtr("Sugar"), Quantity: decPtr("30")}, alice)
	require.NoError(t, err)
	assert.Equal(t, "Sugar", got.ItemName)
	assert.True(t, got.Quantity.Equal(dec("30")))

	_, err = svc.SetStatus(ctx, o.ID, "cancelled", alice)
	require.NoError(t, err)

	_, err = svc.Update(ctx, o.ID, &UpdateOrderRequest{Quantity: decPtr("31")}, alice)
	assert.True(t, apierror.IsConflict(err))
}

func TestListOrdersNewestFirst(t *testing.T) {
	m := newMemStore()
	m.seedSupply("Flour", "4", "10", nil)
	svc := newOrderSvc(m, &recorder{})
	ctx := context.Background()

	first := placeOrder(t, svc, "Flour", "1")
	second := placeOrder(t, svc, "Flour", "2")
	_, err := svc.SetStatus(ctx, first.ID, "delivered", alice)
	require.NoError(t, err)

	all, err := svc.List(ctx, repository.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all.Items, 2)
	assert.Equal(t, second.ID, all.Items[0].ID)
	assert.Equal(t, int64(2), all.Total)

	pending, err := svc.List(ctx, repository.OrderFilter{Status: model.OrderPending})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, second.ID, pending.Items[0].ID)

	require.NoError(t, svc.Delete(ctx, second.ID, alice))
	_, err = svc.Get(ctx, second.ID)
	assert.True(t, apierror.IsNotFound(err))
}
