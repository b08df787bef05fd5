package transport

import (
	"net/http"

	"github.com/gin-gonic/gin"

	usersdomain "github.com/broasteria/broasteria/internal/domains/users/domain"
	usersports "github.com/broasteria/broasteria/internal/domains/users/ports"
	"github.com/broasteria/broasteria/internal/realtime"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Orders     *OrdersHandler
	Menu       *MenuHandler
	Promotions *PromotionsHandler
	Locations  *LocationsHandler
	Inventory  *InventoryHandler
	Users      *UsersHandler
	Reports    *ReportsHandler
	Gateway    *realtime.Gateway

	// UserService backs the authentication middleware.
	UserService usersports.Service

	// Middleware runs before every route (otelgin and friends).
	Middleware []gin.HandlerFunc
}

// NewRouter mounts the full API surface.
//
// Menu browsing, delivery checks, and promo validation are public so
// storefronts can render before login. Everything else requires a token
// scoped to the tenant on the path; staff actions are role-gated.
func NewRouter(h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	for _, mw := range h.Middleware {
		if mw != nil {
			router.Use(mw)
		}
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if h.Gateway != nil {
		router.GET("/ws/:tenantId", h.Gateway.Handle)
	}

	api := router.Group("/api/v1")

	auth := api.Group("/auth")
	auth.POST("/register", h.Users.Register)
	auth.POST("/login", h.Users.Login)
	authed := auth.Group("", Authenticate(h.UserService))
	authed.GET("/me", h.Users.Me)
	authed.POST("/password", h.Users.ChangePassword)

	tenant := api.Group("/tenants/:tenantId")

	tenant.GET("/menu", h.Menu.List)
	tenant.GET("/menu/:itemId", h.Menu.Get)
	tenant.POST("/delivery/check", h.Locations.CheckAvailability)
	tenant.GET("/locations", h.Locations.List)
	tenant.POST("/promotions/validate", h.Promotions.Validate)

	secured := tenant.Group("", Authenticate(h.UserService), RequireTenant())

	secured.POST("/orders", h.Orders.Create)
	secured.GET("/orders/:orderId", h.Orders.Get)
	secured.POST("/orders/:orderId/cancel", h.Orders.Cancel)
	secured.GET("/customers/:customerId/orders", h.Orders.ListByCustomer)
	secured.POST("/promotions/redeem", h.Promotions.Redeem)

	staff := secured.Group("", RequireRole(usersdomain.RoleAdmin, usersdomain.RoleManager, usersdomain.RoleStaff))
	staff.GET("/orders", h.Orders.List)
	staff.GET("/orders/active", h.Orders.Active)
	staff.PUT("/orders/:orderId/status", h.Orders.Transition)
	staff.POST("/orders/:orderId/steps/:step", h.Orders.Step)
	staff.POST("/orders/:orderId/workflow/start", h.Orders.StartWorkflow)
	staff.GET("/inventory", h.Inventory.List)
	staff.GET("/inventory/low", h.Inventory.Low)
	staff.GET("/inventory/:stockId", h.Inventory.Get)
	staff.POST("/inventory/:stockId/adjust", h.Inventory.Adjust)

	manager := secured.Group("", RequireRole(usersdomain.RoleAdmin, usersdomain.RoleManager))
	manager.POST("/orders/:orderId/assign", h.Orders.AssignStaff)
	manager.POST("/menu", h.Menu.Create)
	manager.PUT("/menu/:itemId", h.Menu.Update)
	manager.PATCH("/menu/:itemId/availability", h.Menu.SetAvailability)
	manager.DELETE("/menu/:itemId", h.Menu.Delete)
	manager.POST("/promotions", h.Promotions.Create)
	manager.GET("/promotions", h.Promotions.List)
	manager.GET("/promotions/:promoId", h.Promotions.Get)
	manager.PATCH("/promotions/:promoId/active", h.Promotions.SetActive)
	manager.DELETE("/promotions/:promoId", h.Promotions.Delete)
	manager.POST("/locations", h.Locations.Create)
	manager.GET("/locations/:locationId", h.Locations.Get)
	manager.PATCH("/locations/:locationId/active", h.Locations.SetActive)
	manager.DELETE("/locations/:locationId", h.Locations.Delete)
	manager.POST("/inventory", h.Inventory.Create)
	manager.DELETE("/inventory/:stockId", h.Inventory.Delete)
	manager.GET("/users", h.Users.List)
	manager.GET("/users/:userId", h.Users.Get)
	manager.PATCH("/users/:userId/active", h.Users.SetActive)
	manager.GET("/reports/dashboard", h.Reports.Dashboard)
	manager.GET("/reports/today", h.Reports.Today)
	manager.GET("/reports/workflow", h.Reports.WorkflowStats)

	return router
}
