package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	inventorymemory "github.com/broasteria/broasteria/internal/domains/inventory/adapters/memory"
	inventoryapp "github.com/broasteria/broasteria/internal/domains/inventory/application"
	locationsmemory "github.com/broasteria/broasteria/internal/domains/locations/adapters/memory"
	locationsapp "github.com/broasteria/broasteria/internal/domains/locations/application"
	menumemory "github.com/broasteria/broasteria/internal/domains/menu/adapters/memory"
	menuapp "github.com/broasteria/broasteria/internal/domains/menu/application"
	ordersmemory "github.com/broasteria/broasteria/internal/domains/orders/adapters/memory"
	ordersapp "github.com/broasteria/broasteria/internal/domains/orders/application"
	promosmemory "github.com/broasteria/broasteria/internal/domains/promotions/adapters/memory"
	promosapp "github.com/broasteria/broasteria/internal/domains/promotions/application"
	reportingapp "github.com/broasteria/broasteria/internal/domains/reporting/application"
	usersmemory "github.com/broasteria/broasteria/internal/domains/users/adapters/memory"
	usersapp "github.com/broasteria/broasteria/internal/domains/users/application"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	orderRepo := ordersmemory.NewRepository()
	orderService := ordersapp.NewService(orderRepo)
	menuService := menuapp.NewService(menumemory.NewRepository())
	promoService := promosapp.NewService(promosmemory.NewRepository())
	locationService := locationsapp.NewService(locationsmemory.NewRepository())
	inventoryService := inventoryapp.NewService(inventorymemory.NewRepository())
	userService := usersapp.NewService(usersmemory.NewRepository(), []byte("router-test-secret"))
	reportService := reportingapp.NewService(orderRepo)

	return NewRouter(Handlers{
		Orders:      NewOrdersHandler(orderService, nil),
		Menu:        NewMenuHandler(menuService, nil),
		Promotions:  NewPromotionsHandler(promoService, nil),
		Locations:   NewLocationsHandler(locationService, nil),
		Inventory:   NewInventoryHandler(inventoryService, nil),
		Users:       NewUsersHandler(userService, nil),
		Reports:     NewReportsHandler(reportService, nil),
		UserService: userService,
	})
}

type envelope struct {
	Success       bool            `json:"success"`
	Message       string          `json:"message"`
	CurrentStatus string          `json:"currentStatus"`
	Data          json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, payload any) (int, envelope) {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec.Code, env
}

func loginAs(t *testing.T, router *gin.Engine, tenantID, email, role string) string {
	t.Helper()
	status, _ := doJSON(t, router, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"tenantId": tenantID,
		"email":    email,
		"name":     "Router Test",
		"role":     role,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, status)

	status, env := doJSON(t, router, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"tenantId": tenantID,
		"email":    email,
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusOK, status)
	var parsed struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &parsed))
	require.NotEmpty(t, parsed.Token)
	return parsed.Token
}

func TestRouter_PublicMenuNeedsNoToken(t *testing.T) {
	router := newTestRouter(t)

	status, env := doJSON(t, router, http.MethodGet, "/api/v1/tenants/demo/menu", "", nil)
	require.Equal(t, http.StatusOK, status)
	require.True(t, env.Success)
	require.JSONEq(t, "[]", string(env.Data))
}

func TestRouter_OrderCreationRequiresToken(t *testing.T) {
	router := newTestRouter(t)

	status, env := doJSON(t, router, http.MethodPost, "/api/v1/tenants/demo/orders", "", map[string]any{
		"customerId":      "cust-1",
		"items":           []map[string]any{{"itemId": "i1", "name": "Fries", "price": 8.9, "quantity": 1}},
		"deliveryAddress": "Av. Larco 101",
	})
	require.Equal(t, http.StatusUnauthorized, status)
	require.False(t, env.Success)
}

func TestRouter_TokenScopedToTenant(t *testing.T) {
	router := newTestRouter(t)
	token := loginAs(t, router, "tenant-a", "staff@a.dev", "staff")

	status, env := doJSON(t, router, http.MethodGet, "/api/v1/tenants/tenant-b/orders", token, nil)
	require.Equal(t, http.StatusForbidden, status)
	require.False(t, env.Success)

	status, _ = doJSON(t, router, http.MethodGet, "/api/v1/tenants/tenant-a/orders", token, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestRouter_RoleGates(t *testing.T) {
	router := newTestRouter(t)
	customer := loginAs(t, router, "demo", "cust@demo.dev", "customer")
	manager := loginAs(t, router, "demo", "boss@demo.dev", "manager")

	item := map[string]any{"name": "Broasted Quarter", "category": "chicken", "price": 18.9}

	status, env := doJSON(t, router, http.MethodPost, "/api/v1/tenants/demo/menu", customer, item)
	require.Equal(t, http.StatusForbidden, status)
	require.False(t, env.Success)

	status, env = doJSON(t, router, http.MethodPost, "/api/v1/tenants/demo/menu", manager, item)
	require.Equal(t, http.StatusCreated, status)
	require.True(t, env.Success)
}

func TestRouter_OrderLifecycleAndErrorMapping(t *testing.T) {
	router := newTestRouter(t)
	token := loginAs(t, router, "demo", "ops@demo.dev", "staff")

	status, env := doJSON(t, router, http.MethodPost, "/api/v1/tenants/demo/orders", token, map[string]any{
		"customerId":      "cust-1",
		"items":           []map[string]any{{"itemId": "i1", "name": "Half Chicken", "price": 32.9, "quantity": 1}},
		"deliveryAddress": "Av. Larco 101",
	})
	require.Equal(t, http.StatusCreated, status)
	var order struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.Equal(t, "PENDING", order.Status)

	// unknown order id
	status, env = doJSON(t, router, http.MethodGet, "/api/v1/tenants/demo/orders/nope", token, nil)
	require.Equal(t, http.StatusNotFound, status)
	require.False(t, env.Success)

	// PENDING cannot jump to PACKING
	status, env = doJSON(t, router, http.MethodPut, "/api/v1/tenants/demo/orders/"+order.ID+"/status", token, map[string]any{
		"target": "PACKING",
	})
	require.Equal(t, http.StatusConflict, status)
	require.False(t, env.Success)

	// a stale expectedCurrent reports where the order actually is
	status, env = doJSON(t, router, http.MethodPut, "/api/v1/tenants/demo/orders/"+order.ID+"/status", token, map[string]any{
		"target":          "RECEIVED",
		"expectedCurrent": "COOKING",
	})
	require.Equal(t, http.StatusConflict, status)
	require.False(t, env.Success)
	require.Equal(t, "PENDING", env.CurrentStatus)

	// the legal move works
	status, env = doJSON(t, router, http.MethodPut, "/api/v1/tenants/demo/orders/"+order.ID+"/status", token, map[string]any{
		"target": "RECEIVED",
	})
	require.Equal(t, http.StatusOK, status)
	require.NoError(t, json.Unmarshal(env.Data, &order))
	require.Equal(t, "RECEIVED", order.Status)

	// validation errors map to 400
	status, env = doJSON(t, router, http.MethodPut, "/api/v1/tenants/demo/orders/"+order.ID+"/status", token, map[string]any{
		"target": "TELEPORTED",
	})
	require.Equal(t, http.StatusBadRequest, status)
	require.False(t, env.Success)
}

func TestRouter_ManualStepEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token := loginAs(t, router, "demo", "ops@demo.dev", "staff")

	status, env := doJSON(t, router, http.MethodPost, "/api/v1/tenants/demo/orders", token, map[string]any{
		"customerId":      "cust-2",
		"items":           []map[string]any{{"itemId": "i2", "name": "Wings", "price": 24.9, "quantity": 1}},
		"deliveryAddress": "Jr. Union 55",
	})
	require.Equal(t, http.StatusCreated, status)
	var order struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &order))

	for _, step := range []string{"validate", "receive", "cook", "pack", "deliver", "complete"} {
		status, env = doJSON(t, router, http.MethodPost, "/api/v1/tenants/demo/orders/"+order.ID+"/steps/"+step, token, nil)
		require.Equalf(t, http.StatusOK, status, "step %s: %s", step, env.Message)
	}

	status, env = doJSON(t, router, http.MethodGet, "/api/v1/tenants/demo/orders/"+order.ID, token, nil)
	require.Equal(t, http.StatusOK, status)
	var final struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &final))
	require.Equal(t, "COMPLETED", final.Status)

	status, _ = doJSON(t, router, http.MethodPost, "/api/v1/tenants/demo/orders/"+order.ID+"/steps/warp", token, nil)
	require.Equal(t, http.StatusBadRequest, status)
}

func TestRouter_HealthAndUnknownRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
