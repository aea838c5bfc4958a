// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/handlers"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/middleware"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/realtime"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
)

// Handlers bundles every HTTP handler the API mounts
type Handlers struct {
	Catalog   *handlers.CatalogHandler
	Cart      *handlers.CartHandler
	Checkout  *handlers.CheckoutHandler
	Orders    *handlers.OrderHandler
	Settings  *handlers.SettingsHandler
	Analytics *handlers.AnalyticsHandler
	Ledger    *handlers.LedgerHandler
	Realtime  *realtime.Handler
}

// Deps are the cross-cutting pieces routes need besides handlers
type Deps struct {
	Config        *config.Config
	Authenticator middleware.Authenticator
}

// SetupRoutes mounts the API under /api. The legacy /submit-order route and
// the websocket feed live on the root group, outside the /api timeout.
func SetupRoutes(root *gin.RouterGroup, api *gin.RouterGroup, h Handlers, deps Deps) {
	session := middleware.Session(deps.Config.Session.CookieTTL, deps.Config.IsProduction())

	SetupCatalogRoutes(api, h.Catalog)
	SetupSessionRoutes(api, h.Cart, session)
	SetupCheckoutRoutes(root, api, h.Checkout, h.Orders, session, deps.Authenticator)
	SetupStaffRoutes(api, h.Orders, h.Analytics, deps.Authenticator)
	SetupSettingsRoutes(api, h.Settings, deps.Authenticator)
	SetupAdminRoutes(api, h.Catalog, h.Ledger, deps.Authenticator)

	root.GET("/ws/orders", h.Realtime.ServeWS)
}

// SetupCatalogRoutes sets up the public catalog browse routes
func SetupCatalogRoutes(rg *gin.RouterGroup, catalog *handlers.CatalogHandler) {
	rg.GET("/universities", catalog.ListUniversities)
	rg.GET("/campuses", catalog.ListCampuses)
	rg.GET("/campuses/:id", catalog.GetCampus)
	rg.GET("/restaurants", catalog.ListRestaurants)
	rg.GET("/restaurants/:id", catalog.GetRestaurant)
	rg.GET("/menu-items", catalog.ListMenuItems)
	rg.GET("/mart-items", catalog.ListMartItems)
}

// SetupSessionRoutes sets up cart and selection routes keyed by the session cookie
func SetupSessionRoutes(rg *gin.RouterGroup, cart *handlers.CartHandler, session gin.HandlerFunc) {
	carts := rg.Group("/cart")
	carts.Use(session)
	{
		carts.GET("", cart.GetCart)
		carts.DELETE("", cart.ClearCart)
		carts.GET("/totals", cart.GetTotals)
		carts.POST("/items", cart.AddToCart)
		carts.DELETE("/items", cart.RemoveItem)
		carts.POST("/items/increment", cart.IncrementItem)
		carts.POST("/items/decrement", cart.DecrementItem)
	}

	selection := rg.Group("/session/selection")
	selection.Use(session)
	{
		selection.GET("", cart.GetSelection)
		selection.PUT("", cart.UpdateSelection)
		selection.DELETE("", cart.ClearSelection)
	}
}

// SetupCheckoutRoutes sets up order placement and customer order tracking
func SetupCheckoutRoutes(root, rg *gin.RouterGroup, checkout *handlers.CheckoutHandler, orders *handlers.OrderHandler, session gin.HandlerFunc, authenticator middleware.Authenticator) {
	optional := middleware.OptionalAuth(authenticator)

	rg.POST("/checkout", session, optional, checkout.Submit)
	root.POST("/submit-order", session, optional, checkout.Submit)

	mine := rg.Group("/my-orders")
	mine.Use(session)
	{
		mine.GET("/:reference", orders.TrackOrder)
		mine.GET("/:reference/receipt", orders.GetMyReceipt)
	}
}

// SetupStaffRoutes sets up order operations and dashboards for every staff role
func SetupStaffRoutes(rg *gin.RouterGroup, orders *handlers.OrderHandler, analytics *handlers.AnalyticsHandler, authenticator middleware.Authenticator) {
	staff := rg.Group("")
	staff.Use(middleware.Authenticate(authenticator), middleware.RequireStaff())
	{
		staff.GET("/orders", orders.ListOrders)
		staff.GET("/orders/:id", orders.GetOrder)
		staff.PATCH("/orders/:id/status", orders.UpdateOrderStatus)
		staff.GET("/orders/:id/receipt", orders.GetReceipt)

		staff.GET("/analytics/dashboard", analytics.GetDashboard)
	}
}

// SetupSettingsRoutes sets up delivery fee routes; reads are public
func SetupSettingsRoutes(rg *gin.RouterGroup, settings *handlers.SettingsHandler, authenticator middleware.Authenticator) {
	rg.GET("/campus-settings", settings.ListCampusSettings)
	rg.GET("/global-delivery-fee", settings.GetGlobalDeliveryFee)
	rg.GET("/fee-config", settings.GetFeeConfig)

	authenticated := middleware.Authenticate(authenticator)
	rg.PUT("/campus-settings/:campusId", authenticated, settings.UpsertCampusSetting)
	rg.PUT("/global-delivery-fee", authenticated, settings.SetGlobalDeliveryFee)
}

// SetupAdminRoutes sets up catalog management and ledger operations
func SetupAdminRoutes(rg *gin.RouterGroup, catalog *handlers.CatalogHandler, ledger *handlers.LedgerHandler, authenticator middleware.Authenticator) {
	admin := rg.Group("/admin")
	admin.Use(middleware.Authenticate(authenticator), middleware.RequireStaff())
	{
		universities := admin.Group("/universities")
		{
			universities.POST("", catalog.CreateUniversity)
			universities.PUT("/:id", catalog.UpdateUniversity)
			universities.DELETE("/:id", catalog.DeleteUniversity)
		}

		campuses := admin.Group("/campuses")
		{
			campuses.POST("", catalog.CreateCampus)
			campuses.PUT("/:id", catalog.UpdateCampus)
			campuses.DELETE("/:id", catalog.DeleteCampus)
		}

		restaurants := admin.Group("/restaurants")
		{
			restaurants.POST("", catalog.CreateRestaurant)
			restaurants.PUT("/:id", catalog.UpdateRestaurant)
			restaurants.DELETE("/:id", catalog.DeleteRestaurant)
		}

		menuItems := admin.Group("/menu-items")
		{
			menuItems.POST("", catalog.CreateMenuItem)
			menuItems.PUT("/:id", catalog.UpdateMenuItem)
			menuItems.DELETE("/:id", catalog.DeleteMenuItem)
		}

		martItems := admin.Group("/mart-items")
		{
			martItems.POST("", catalog.CreateMartItem)
			martItems.PUT("/:id", catalog.UpdateMartItem)
			martItems.DELETE("/:id", catalog.DeleteMartItem)
		}

		ledgers := admin.Group("/ledger")
		ledgers.Use(middleware.RequireRole(auth.RoleSuperAdmin))
		{
			ledgers.GET("/stats", ledger.GetStats)
			ledgers.POST("/flush", ledger.Flush)
			ledgers.POST("/:id/requeue", ledger.Requeue)
		}
	}
}
