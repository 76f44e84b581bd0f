package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-insumos-ws/internal/apierror"
	"go-insumos-ws/internal/model"
	"go-insumos-ws/internal/repository"
	"go-insumos-ws/internal/service"
	"go-insumos-ws/internal/stock"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct{}

func (fakeAuth) Authenticate(_ context.Context, token string) (*model.User, error) {
	u := &model.User{Email: token + "@example.com", FullName: token}
	u.ID = uuid.New()
	switch token {
	case "admin":
		u.Privileges = append(u.Privileges, model.DefaultPrivileges...)
	case "viewer":
	default:
		return nil, apierror.Unauthorized("invalid or expired token")
	}
	return u, nil
}

type fakeOrders struct {
	service.OrderService
	setStatus func(id uuid.UUID, status string, actor model.Actor) (*service.StatusResult, error)
}

func (f fakeOrders) SetStatus(_ context.Context, id uuid.UUID, status string, actor model.Actor) (*service.StatusResult, error) {
	return f.setStatus(id, status, actor)
}

type fakeAlerts struct{}

func (fakeAlerts) List(_ context.Context, category string) ([]stock.Alert, error) {
	if category == "stale" {
		return nil, apierror.ValidationFields(map[string]string{"category": "must be one of: all"})
	}
	item := model.SupplyItem{Name: "Milk", QuantityOnHand: decimal.Zero}
	return []stock.Alert{{SupplyItem: item, Severity: 4, Alerts: []stock.Category{stock.CategoryOutOfStock}}}, nil
}

func (fakeAlerts) Summary(context.Context) (stock.Summary, error) {
	return stock.Summary{OutOfStock: 1}, nil
}

type fakeSupplies struct {
	service.SupplyService
	list func(f repository.SupplyFilter) (service.Paged[model.SupplyItem], error)
}

func (f fakeSupplies) List(_ context.Context, filter repository.SupplyFilter) (service.Paged[model.SupplyItem], error) {
	return f.list(filter)
}

func newTestApp(orders service.OrderService, supplies service.SupplyService) *fiber.App {
	h := &Handlers{
		Auth:      NewAuthHandler(nil),
		User:      NewUserHandler(nil),
		Role:      NewRoleHandler(nil),
		Supply:    NewSupplyHandler(supplies),
		Product:   NewProductHandler(nil),
		Order:     NewOrderHandler(orders),
		Alert:     NewAlertHandler(fakeAlerts{}),
		Supplier:  NewSupplierHandler(nil),
		Dashboard: NewDashboardHandler(nil),
	}
	app := fiber.New()
	h.Register(app.Group("/api/v1"), fakeAuth{}, func(c *fiber.Ctx) error { return c.Next() })
	return app
}

func call(t *testing.T, app *fiber.App, method, path, token, body string) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func TestSetStatusRoute(t *testing.T) {
	orderID := uuid.New()
	var gotStatus string
	var gotActor model.Actor
	orders := fakeOrders{setStatus: func(id uuid.UUID, status string, actor model.Actor) (*service.StatusResult, error) {
		if id != orderID {
			return nil, apierror.NotFound("order not found")
		}
		gotStatus, gotActor = status, actor
		if status == "pending" {
			return nil, apierror.Conflict("order is already delivered and cannot become pending")
		}
		return &service.StatusResult{Changed: true, StockCredited: true, Message: "order delivered and stock updated"}, nil
	}}
	app := newTestApp(orders, nil)
	path := "/api/v1/orders/" + orderID.String() + "/status"

	code, body := call(t, app, http.MethodPatch, path, "admin", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "order delivered and stock updated", body["message"])
	assert.Equal(t, "delivered", gotStatus)
	assert.Equal(t, "admin", gotActor.Name)

	code, body = call(t, app, http.MethodPatch, path, "admin", `{"status":"pending"}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "order is already delivered and cannot become pending", body["error"])

	code, _ = call(t, app, http.MethodPatch, path, "admin", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, app, http.MethodPatch, "/api/v1/orders/"+uuid.NewString()+"/status", "admin", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusNotFound, code)

	code, body = call(t, app, http.MethodPatch, "/api/v1/orders/42/status", "admin", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid id", body["error"])

	code, _ = call(t, app, http.MethodPatch, path, "viewer", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = call(t, app, http.MethodPatch, path, "", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestAlertRoutes(t *testing.T) {
	app := newTestApp(nil, nil)

	code, body := call(t, app, http.MethodGet, "/api/v1/alerts", "viewer", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["total"])

	code, body = call(t, app, http.MethodGet, "/api/v1/alerts?category=stale", "viewer", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]interface{}{"category": "must be one of: all"}, body["fields"])

	code, body = call(t, app, http.MethodGet, "/api/v1/alerts/summary", "viewer", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["out_of_stock"])
}

func TestListSuppliesQuery(t *testing.T) {
	var got repository.SupplyFilter
	supplies := fakeSupplies{list: func(f repository.SupplyFilter) (service.Paged[model.SupplyItem], error) {
		got = f
		return service.Paged[model.SupplyItem]{Items: []model.SupplyItem{}, Page: f.Page.Page, Limit: f.Page.Limit}, nil
	}}
	app := newTestApp(nil, supplies)

	code, body := call(t, app, http.MethodGet, "/api/v1/supplies?search=milk&category=dairy&page=2&limit=10", "viewer", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, repository.SupplyFilter{Search: "milk", Category: "dairy", Page: repository.Page{Page: 2, Limit: 10}}, got)
	assert.Equal(t, float64(2), body["page"])
}

func TestInternalErrorsAreHidden(t *testing.T) {
	supplies := fakeSupplies{list: func(repository.SupplyFilter) (service.Paged[model.SupplyItem], error) {
		return service.Paged[model.SupplyItem]{}, apierror.Internal("database error", io.ErrUnexpectedEOF)
	}}
	app := newTestApp(nil, supplies)

	code, body := call(t, app, http.MethodGet, "/api/v1/supplies", "viewer", "")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "database error", body["error"])
}
