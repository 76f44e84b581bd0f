package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	alice    = model.Actor{ID: uuid.NewString(), Name: "Alice", Email: "alice@example.com"}
)

func clock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string { return &s }

// memStore backs every stub repository. One mutex stands in for row locks.
type memStore struct {
	mu        sync.Mutex
	supplies  map[uuid.UUID]*model.SupplyItem
	products  map[uuid.UUID]*model.Product
	orders    map[uuid.UUID]*model.Order
	orderSeq  []uuid.UUID
	movements []model.StockMovement
}

func newMemStore() *memStore {
	return &memStore{
		supplies: map[uuid.UUID]*model.SupplyItem{},
		products: map[uuid.UUID]*model.Product{},
		orders:   map[uuid.UUID]*model.Order{},
	}
}

func (m *memStore) supplyByNameLocked(name string) *model.SupplyItem {
	for _, s := range m.supplies {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (m *memStore) moveLocked(s *model.SupplyItem, mv *model.StockMovement) error {
	before := s.QuantityOnHand
	after := before.Add(mv.Quantity)
	if mv.Type == model.MovementOut {
		after = before.Sub(mv.Quantity)
	}
	if after.IsNegative() {
		return apierror.Validation("insufficient stock for " + s.Name)
	}
	s.QuantityOnHand = after
	mv.ID = uuid.New()
	mv.SupplyID = s.ID
	mv.QuantityBefore = before
	mv.QuantityAfter = after
	m.movements = append(m.movements, *mv)
	return nil
}

func (m *memStore) movementCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.movements)
}

func (m *memStore) quantity(name string) decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s := m.supplyByNameLocked(name); s != nil {
		return s.QuantityOnHand
	}
	return decimal.Zero
}

// seedSupply stores a supply directly, bypassing the service.
func (m *memStore) seedSupply(name, qty, min string, expiry *time.Time) *model.SupplyItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &model.SupplyItem{
		Name:             name,
		QuantityOnHand:   dec(qty),
		MinimumThreshold: dec(min),
		Unit:             "kg",
		ExpiryDate:       expiry,
	}
	s.ID = uuid.New()
	m.supplies[s.ID] = s
	cp := *s
	return &cp
}

func page[T any](items []T, p repository.Page) []T {
	n := p.Normalize()
	off := n.Offset()
	if off >= len(items) {
		return []T{}
	}
	end := off + n.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[off:end]
}

// ---- supplies

type supplyStub struct{ *memStore }

func (r supplyStub) Create(_ context.Context, item *model.SupplyItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.supplyByNameLocked(item.Name) != nil {
		return apierror.Conflict("supply already exists")
	}
	item.ID = uuid.New()
	cp := *item
	r.supplies[item.ID] = &cp
	if item.QuantityOnHand.IsPositive() {
		r.movements = append(r.movements, model.StockMovement{
			SupplyID:      item.ID,
			Type:          model.MovementIn,
			Quantity:      item.QuantityOnHand,
			QuantityAfter: item.QuantityOnHand,
			Reason:        model.ReasonOpening,
		})
	}
	return nil
}

func (r supplyStub) FindByID(_ context.Context, id uuid.UUID) (*model.SupplyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.supplies[id]
	if !ok {
		return nil, apierror.NotFound("supply not found")
	}
	cp := *s
	return &cp, nil
}

func (r supplyStub) FindByName(_ context.Context, name string) (*model.SupplyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.supplyByNameLocked(name)
	if s == nil {
		return nil, apierror.NotFound("supply not found")
	}
	cp := *s
	return &cp, nil
}

func (r supplyStub) FindByNames(_ context.Context, names []string) ([]model.SupplyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SupplyItem
	for _, n := range names {
		if s := r.supplyByNameLocked(n); s != nil {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r supplyStub) all() []model.SupplyItem {
	out := make([]model.SupplyItem, 0, len(r.supplies))
	for _, s := range r.supplies {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r supplyStub) FindAll(_ context.Context, f repository.SupplyFilter) ([]model.SupplyItem, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.SupplyItem
	for _, s := range r.all() {
		if f.Search != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.Category != "" && s.Category != f.Category {
			continue
		}
		out = append(out, s)
	}
	return page(out, f.Page), int64(len(out)), nil
}

func (r supplyStub) Update(_ context.Context, item *model.SupplyItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.supplies[item.ID]
	if !ok {
		return apierror.NotFound("supply not found")
	}
	cp := *item
	cp.QuantityOnHand = cur.QuantityOnHand
	r.supplies[item.ID] = &cp
	return nil
}

func (r supplyStub) Delete(_ context.Context, id uuid.UUID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.supplies[id]; !ok {
		return apierror.NotFound("supply not found")
	}
	delete(r.supplies, id)
	return nil
}

func (r supplyStub) AlertCandidates(_ context.Context, horizon time.Time) ([]model.SupplyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.all()
	var out []model.SupplyItem
	for _, s := range all {
		if !s.QuantityOnHand.IsPositive() {
			out = append(out, s)
		}
	}
	for _, s := range all {
		if s.QuantityOnHand.IsPositive() && s.QuantityOnHand.LessThanOrEqual(s.MinimumThreshold) {
			out = append(out, s)
		}
	}
	for _, s := range all {
		if s.ExpiryDate != nil && !s.ExpiryDate.After(horizon) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r supplyStub) Adjust(_ context.Context, id uuid.UUID, mv *model.StockMovement) (*model.SupplyItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.supplies[id]
	if !ok {
		return nil, apierror.NotFound("supply not found")
	}
	if err := r.moveLocked(s, mv); err != nil {
		return nil, err
	}
	cp := *s
	return &cp, nil
}

// ---- movements

type movementStub struct{ *memStore }

func (r movementStub) FindAll(_ context.Context, f repository.MovementFilter) ([]model.StockMovement, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for i := len(r.movements) - 1; i >= 0; i-- {
		mv := r.movements[i]
		if f.SupplyID != nil && mv.SupplyID != *f.SupplyID {
			continue
		}
		out = append(out, mv)
	}
	return page(out, f.Page), int64(len(out)), nil
}

func (r movementStub) GetStockMovement(context.Context, time.Time, time.Time) ([]repository.StockMovementData, error) {
	return []repository.StockMovementData{}, nil
}

func (r movementStub) GetDashboardStats(context.Context) (*repository.DashboardStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return &repository.DashboardStats{TotalSupplies: int64(len(r.supplies))}, nil
}

// ---- products

type productStub struct{ *memStore }

func copyProduct(p *model.Product) *model.Product {
	cp := *p
	cp.Recipe = append([]model.RecipeLine(nil), p.Recipe...)
	return &cp
}

func (r productStub) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.products {
		if existing.Name == p.Name {
			return apierror.Conflict("product already exists")
		}
	}
	p.ID = uuid.New()
	for i := range p.Recipe {
		p.Recipe[i].ID = uuid.New()
		p.Recipe[i].ProductID = p.ID
	}
	r.products[p.ID] = copyProduct(p)
	return nil
}

func (r productStub) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, apierror.NotFound("product not found")
	}
	return copyProduct(p), nil
}

func (r productStub) FindByName(_ context.Context, name string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Name == name {
			return copyProduct(p), nil
		}
	}
	return nil, apierror.NotFound("product not found")
}

func (r productStub) FindAll(_ context.Context, f repository.ProductFilter) ([]model.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Product
	for _, p := range r.products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, *copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Page), int64(len(out)), nil
}

func (r productStub) Update(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.products[p.ID]
	if !ok {
		return apierror.NotFound("product not found")
	}
	cp := copyProduct(p)
	cp.Recipe = cur.Recipe
	r.products[p.ID] = cp
	return nil
}

func (r productStub) Delete(_ context.Context, id uuid.UUID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return apierror.NotFound("product not found")
	}
	delete(r.products, id)
	return nil
}

func (r productStub) FindRecipe(_ context.Context, productID uuid.UUID) ([]model.RecipeLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return []model.RecipeLine{}, nil
	}
	return append([]model.RecipeLine(nil), p.Recipe...), nil
}

func (r productStub) ReplaceRecipe(_ context.Context, productID uuid.UUID, lines []model.RecipeLine) ([]model.RecipeLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return nil, apierror.NotFound("product not found")
	}
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].ProductID = productID
	}
	p.Recipe = append([]model.RecipeLine(nil), lines...)
	return lines, nil
}

func (r productStub) AddRecipeLine(_ context.Context, line *model.RecipeLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[line.ProductID]
	if !ok {
		return apierror.NotFound("product not found")
	}
	for _, l := range p.Recipe {
		if l.SupplyName == line.SupplyName {
			return apierror.Conflict("recipe already uses " + line.SupplyName)
		}
	}
	line.ID = uuid.New()
	p.Recipe = append(p.Recipe, *line)
	return nil
}

func (r productStub) lineLocked(id uuid.UUID) (*model.Product, int) {
	for _, p := range r.products {
		for i, l := range p.Recipe {
			if l.ID == id {
				return p, i
			}
		}
	}
	return nil, -1
}

func (r productStub) FindRecipeLine(_ context.Context, id uuid.UUID) (*model.RecipeLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, i := r.lineLocked(id)
	if p == nil {
		return nil, apierror.NotFound("recipe line not found")
	}
	l := p.Recipe[i]
	return &l, nil
}

func (r productStub) UpdateRecipeLine(_ context.Context, line *model.RecipeLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, i := r.lineLocked(line.ID)
	if p == nil {
		return apierror.NotFound("recipe line not found")
	}
	for j, l := range p.Recipe {
		if j != i && l.SupplyName == line.SupplyName {
			return apierror.Conflict("recipe line already exists")
		}
	}
	p.Recipe[i] = *line
	return nil
}

func (r productStub) DeleteRecipeLine(_ context.Context, id uuid.UUID) (*model.RecipeLine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, i := r.lineLocked(id)
	if p == nil {
		return nil, apierror.NotFound("recipe line not found")
	}
	l := p.Recipe[i]
	p.Recipe = append(p.Recipe[:i], p.Recipe[i+1:]...)
	return &l, nil
}

// ---- orders

type orderStub struct{ *memStore }

func (r orderStub) Create(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = uuid.New()
	cp := *o
	r.orders[o.ID] = &cp
	r.orderSeq = append(r.orderSeq, o.ID)
	return nil
}

func (r orderStub) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, apierror.NotFound("order not found")
	}
	cp := *o
	return &cp, nil
}

func (r orderStub) FindAll(_ context.Context, f repository.OrderFilter) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Order
	for i := len(r.orderSeq) - 1; i >= 0; i-- {
		o, ok := r.orders[r.orderSeq[i]]
		if !ok {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.TargetKind != "" && o.TargetKind != f.TargetKind {
			continue
		}
		out = append(out, *o)
	}
	return page(out, f.Page), int64(len(out)), nil
}

func (r orderStub) Update(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.orders[o.ID]
	if !ok {
		return apierror.NotFound("order not found")
	}
	if cur.Status != model.OrderPending {
		return apierror.Conflict("only pending orders can be edited")
	}
	cp := *o
	cp.Status = cur.Status
	r.orders[o.ID] = &cp
	return nil
}

func (r orderStub) Delete(_ context.Context, id uuid.UUID, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return apierror.NotFound("order not found")
	}
	delete(r.orders, id)
	return nil
}

func (r orderStub) ApplyStatus(_ context.Context, id uuid.UUID, decide repository.DecideFunc, actor model.Actor, at time.Time) (*repository.StatusChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, apierror.NotFound("order not found")
	}
	t, err := decide(*o)
	if err != nil {
		return nil, err
	}
	change := &repository.StatusChange{Transition: t}
	if !t.Changed {
		change.Order = *o
		return change, nil
	}

	// resolve the supply before touching anything, as a rollback would leave it
	var sup *model.SupplyItem
	if t.CreditsLedger(o.Target()) {
		sup = r.supplyByNameLocked(o.ItemName)
		if sup == nil {
			return nil, apierror.NotFound("supply \"" + o.ItemName + "\" not found")
		}
	}

	o.Status = t.To
	o.UpdatedBy = actor.ID
	if t.To == model.OrderDelivered {
		o.DeliveredAt = &at
	}
	change.Order = *o

	if sup != nil {
		orderID := o.ID
		mv := &model.StockMovement{
			Type:     model.MovementIn,
			Quantity: o.Quantity,
			Reason:   model.ReasonOrderDelivery,
			OrderID:  &orderID,
		}
		if err := r.moveLocked(sup, mv); err != nil {
			return nil, err
		}
		cp := *sup
		change.Supply = &cp
		change.Movement = mv
	}
	return change, nil
}

// ---- events

type recorder struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recorder) Publish(e ws.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type + "/" + e.Action
	}
	return out
}
