package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/stock"
	"go-insumos-ws/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	Create(ctx context.Context, req *CreateProductRequest, actor model.Actor) (*ProductView, error)
	// Detail joins the product's recipe with the current ledger.
	Detail(ctx context.Context, id uuid.UUID) (*ProductView, error)
	List(ctx context.Context, filter repository.ProductFilter) (Paged[ProductView], error)
	Update(ctx context.Context, id uuid.UUID, req *UpdateProductRequest, actor model.Actor) (*ProductView, error)
	Delete(ctx context.Context, id uuid.UUID, actor model.Actor) error

	Recipe(ctx context.Context, productID uuid.UUID) (*stock.Availability, error)
	ReplaceRecipe(ctx context.Context, productID uuid.UUID, req *ReplaceRecipeRequest, actor model.Actor) (*ProductView, error)
	AddRecipeLine(ctx context.Context, productID uuid.UUID, req *RecipeLineInput, actor model.Actor) (*ProductView, error)
	UpdateRecipeLine(ctx context.Context, lineID uuid.UUID, req *UpdateRecipeLineRequest, actor model.Actor) (*ProductView, error)
	DeleteRecipeLine(ctx context.Context, lineID uuid.UUID, actor model.Actor) (*ProductView, error)
}

type RecipeLineInput struct {
	SupplyName       string          `json:"supply_name" validate:"required,max=120"`
	QuantityRequired decimal.Decimal `json:"quantity_required" validate:"gt=0"`
	Unit             string          `json:"unit" validate:"required,oneof=kg g l ml pz units"`
}

type CreateProductRequest struct {
	Name        string            `json:"name" validate:"required,max=120"`
	Category    string            `json:"category" validate:"required,oneof=drinks food desserts"`
	Price       decimal.Decimal   `json:"price" validate:"gte=0"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Recipe      []RecipeLineInput `json:"recipe" validate:"dive"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Category    *string          `json:"category" validate:"omitempty,oneof=drinks food desserts"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Description *string          `json:"description"`
	Image       *string          `json:"image"`
}

func (r *UpdateProductRequest) empty() bool {
	return r.Name == nil && r.Category == nil && r.Price == nil && r.Description == nil && r.Image == nil
}

type ReplaceRecipeRequest struct {
	Lines []RecipeLineInput `json:"lines" validate:"dive"`
}

type UpdateRecipeLineRequest struct {
	SupplyName       *string          `json:"supply_name" validate:"omitempty,min=1,max=120"`
	QuantityRequired *decimal.Decimal `json:"quantity_required" validate:"omitempty,gt=0"`
	Unit             *string          `json:"unit" validate:"omitempty,oneof=kg g l ml pz units"`
}

// ProductView is a product with its derived availability.
type ProductView struct {
	ID              uuid.UUID                `json:"id"`
	Name            string                   `json:"name"`
	Category        model.ProductCategory    `json:"category"`
	Price           decimal.Decimal          `json:"price"`
	Description     string                   `json:"description,omitempty"`
	Image           string                   `json:"image,omitempty"`
	RegisteredAt    time.Time                `json:"registered_at"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
	Recipe          []stock.LineAvailability `json:"recipe"`
	ProducibleUnits int64                    `json:"producible_units"`
	StockStatus     stock.Status             `json:"stock_status"`
}

func newProductView(p *model.Product, a stock.Availability) *ProductView {
	return &ProductView{
		ID:              p.ID,
		Name:            p.Name,
		Category:        p.Category,
		Price:           p.Price,
		Description:     p.Description,
		Image:           p.Image,
		RegisteredAt:    p.RegisteredAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
		Recipe:          a.Lines,
		ProducibleUnits: a.ProducibleUnits,
		StockStatus:     a.Status,
	}
}

type productService struct {
	productRepo repository.ProductRepository
	supplyRepo  repository.SupplyRepository
	events      EventPublisher
	loc         *time.Location
	now         func() time.Time
}

func NewProductService(productRepo repository.ProductRepository, supplyRepo repository.SupplyRepository, events EventPublisher, loc *time.Location) ProductService {
	return &productService{
		productRepo: productRepo,
		supplyRepo:  supplyRepo,
		events:      publisherOrNop(events),
		loc:         loc,
		now:         time.Now,
	}
}

// ledgerFor loads the balances of every supply named by lines.
func (s *productService) ledgerFor(ctx context.Context, lines []model.RecipeLine) (stock.Ledger, error) {
	names := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.SupplyName]; ok {
			continue
		}
		seen[l.SupplyName] = struct{}{}
		names = append(names, l.SupplyName)
	}
	items, err := s.supplyRepo.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	return stock.NewLedger(items), nil
}

func (s *productService) view(ctx context.Context, p *model.Product) (*ProductView, error) {
	ledger, err := s.ledgerFor(ctx, p.Recipe)
	if err != nil {
		return nil, err
	}
	return newProductView(p, stock.Compute(p.Recipe, ledger)), nil
}

// checkRecipe rejects repeated supplies and supplies that do not exist.
func (s *productService) checkRecipe(ctx context.Context, field string, lines []RecipeLineInput) error {
	fields := map[string]string{}
	names := make([]string, 0, len(lines))
	seen := make(map[string]int, len(lines))
	for i, l := range lines {
		if first, dup := seen[l.SupplyName]; dup {
			fields[fmt.Sprintf("%s[%d].supply_name", field, i)] = fmt.Sprintf("repeats line %d", first)
			continue
		}
		seen[l.SupplyName] = i
		names = append(names, l.SupplyName)
	}

	items, err := s.supplyRepo.FindByNames(ctx, names)
	if err != nil {
		return err
	}
	known := stock.NewLedger(items)
	for i, l := range lines {
		if _, ok := known[l.SupplyName]; !ok {
			fields[fmt.Sprintf("%s[%d].supply_name", field, i)] = "unknown supply"
		}
	}

	if len(fields) > 0 {
		return apierror.ValidationFields(fields)
	}
	return nil
}

func toRecipeLines(in []RecipeLineInput) []model.RecipeLine {
	lines := make([]model.RecipeLine, len(in))
	for i, l := range in {
		lines[i] = model.RecipeLine{
			SupplyName:       strings.TrimSpace(l.SupplyName),
			QuantityRequired: l.QuantityRequired,
			Unit:             l.Unit,
		}
	}
	return lines
}

func trimLines(in []RecipeLineInput) {
	for i := range in {
		in[i].SupplyName = strings.TrimSpace(in[i].SupplyName)
	}
}

func (s *productService) Create(ctx context.Context, req *CreateProductRequest, actor model.Actor) (*ProductView, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	trimLines(req.Recipe)
	if err := s.checkRecipe(ctx, "recipe", req.Recipe); err != nil {
		return nil, err
	}

	p := &model.Product{
		Name:         req.Name,
		Category:     model.ProductCategory(req.Category),
		Price:        req.Price,
		Description:  req.Description,
		Image:        req.Image,
		RegisteredAt: model.Today(s.now(), s.loc),
		Recipe:       toRecipeLines(req.Recipe),
	}
	p.CreatedBy = actor.ID
	p.UpdatedBy = actor.ID

	if err := s.productRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	v, err := s.view(ctx, p)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ws.Event{
		Type:    ws.EventRecipeUpdated,
		Action:  "product_created",
		Data:    v,
		User:    actorRef(actor),
		Message: say(actor, "created product '%s'", p.Name),
	})
	return v, nil
}

func (s *productService) Detail(ctx context.Context, id uuid.UUID) (*ProductView, error) {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *productService) List(ctx context.Context, filter repository.ProductFilter) (Paged[ProductView], error) {
	products, total, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return Paged[ProductView]{}, err
	}

	var all []model.RecipeLine
	for _, p := range products {
		all = append(all, p.Recipe...)
	}
	ledger, err := s.ledgerFor(ctx, all)
	if err != nil {
		return Paged[ProductView]{}, err
	}

	views := make([]ProductView, len(products))
	for i := range products {
		views[i] = *newProductView(&products[i], stock.Compute(products[i].Recipe, ledger))
	}
	return newPaged(views, total, filter.Page), nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req *UpdateProductRequest, actor model.Actor) (*ProductView, error) {
	if req.empty() {
		return nil, apierror.Validation("no fields to update")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Category != nil {
		p.Category = model.ProductCategory(*req.Category)
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	p.UpdatedBy = actor.ID

	if err := s.productRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return s.view(ctx, p)
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID, actor model.Actor) error {
	p, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id, actor.ID); err != nil {
		return err
	}

	s.events.Publish(ws.Event{
		Type:    ws.EventRecipeUpdated,
		Action:  "product_deleted",
		Data:    map[string]interface{}{"id": p.ID, "name": p.Name},
		User:    actorRef(actor),
		Message: say(actor, "deleted product '%s'", p.Name),
	})
	return nil
}

func (s *productService) Recipe(ctx context.Context, productID uuid.UUID) (*stock.Availability, error) {
	v, err := s.Detail(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &stock.Availability{ProducibleUnits: v.ProducibleUnits, Status: v.StockStatus, Lines: v.Recipe}, nil
}

func (s *productService) ReplaceRecipe(ctx context.Context, productID uuid.UUID, req *ReplaceRecipeRequest, actor model.Actor) (*ProductView, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	trimLines(req.Lines)
	if err := s.checkRecipe(ctx, "lines", req.Lines); err != nil {
		return nil, err
	}
	if _, err := s.productRepo.ReplaceRecipe(ctx, productID, toRecipeLines(req.Lines)); err != nil {
		return nil, err
	}
	return s.recipeChanged(ctx, productID, actor, "replaced")
}

func (s *productService) AddRecipeLine(ctx context.Context, productID uuid.UUID, req *RecipeLineInput, actor model.Actor) (*ProductView, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	in := []RecipeLineInput{*req}
	trimLines(in)
	if err := s.checkRecipe(ctx, "line", in); err != nil {
		return nil, err
	}
	line := toRecipeLines(in)[0]
	line.ProductID = productID
	if err := s.productRepo.AddRecipeLine(ctx, &line); err != nil {
		return nil, err
	}
	return s.recipeChanged(ctx, productID, actor, "added "+line.SupplyName+" to")
}

func (s *productService) UpdateRecipeLine(ctx context.Context, lineID uuid.UUID, req *UpdateRecipeLineRequest, actor model.Actor) (*ProductView, error) {
	if req.SupplyName == nil && req.QuantityRequired == nil && req.Unit == nil {
		return nil, apierror.Validation("no fields to update")
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	line, err := s.productRepo.FindRecipeLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	if req.SupplyName != nil {
		in := []RecipeLineInput{{SupplyName: *req.SupplyName}}
		trimLines(in)
		if err := s.checkRecipe(ctx, "line", in); err != nil {
			return nil, err
		}
		line.SupplyName = in[0].SupplyName
	}
	if req.QuantityRequired != nil {
		line.QuantityRequired = *req.QuantityRequired
	}
	if req.Unit != nil {
		line.Unit = *req.Unit
	}
	if err := s.productRepo.UpdateRecipeLine(ctx, line); err != nil {
		return nil, err
	}
	return s.recipeChanged(ctx, line.ProductID, actor, "updated")
}

func (s *productService) DeleteRecipeLine(ctx context.Context, lineID uuid.UUID, actor model.Actor) (*ProductView, error) {
	line, err := s.productRepo.DeleteRecipeLine(ctx, lineID)
	if err != nil {
		return nil, err
	}
	return s.recipeChanged(ctx, line.ProductID, actor, "removed "+line.SupplyName+" from")
}

func (s *productService) recipeChanged(ctx context.Context, productID uuid.UUID, actor model.Actor, what string) (*ProductView, error) {
	v, err := s.Detail(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.events.Publish(ws.Event{
		Type:    ws.EventRecipeUpdated,
		Action:  "recipe_updated",
		Data:    v,
		User:    actorRef(actor),
		Message: say(actor, "%s the recipe of '%s'", what, v.Name),
	})
	return v, nil
}
