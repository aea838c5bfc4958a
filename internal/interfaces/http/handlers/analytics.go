// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/campus-delivery-backend/internal/domain/analytics"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/middleware"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
)

// DashboardService computes dashboard aggregates
type DashboardService interface {
	Dashboard(ctx context.Context, req analytics.DashboardRequest) (*analytics.Dashboard, error)
}

// AnalyticsHandler handles analytics endpoints
type AnalyticsHandler struct {
	analytics DashboardService
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(service DashboardService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: service}
}

// DashboardQuery represents dashboard query parameters
type DashboardQuery struct {
	Period       string `form:"period"`
	Days         int    `form:"days"`
	Top          int    `form:"top"`
	CampusID     uint   `form:"campusId"`
	RestaurantID uint   `form:"restaurantId"`
}

// GetDashboard handles GET /api/analytics/dashboard. The scope follows the
// caller's role: campus admins see their campus, managers their restaurant.
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	var q DashboardQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, invalidRequest(err))
		return
	}

	scope := order.AnalyticsScope{CampusID: q.CampusID, RestaurantID: q.RestaurantID}
	principal, _ := middleware.PrincipalFromContext(c)
	switch principal.Role {
	case auth.RoleCampusAdmin:
		scope.CampusID = principal.CampusID
	case auth.RoleRestaurantManager:
		scope.CampusID = principal.CampusID
		scope.RestaurantID = principal.RestaurantID
	}
	if !authorize(c, auth.ActionViewAnalytics, auth.Scope{CampusID: scope.CampusID}) {
		return
	}

	dashboard, err := h.analytics.Dashboard(c.Request.Context(), analytics.DashboardRequest{
		Scope:  scope,
		Period: q.Period,
		Days:   q.Days,
		Top:    q.Top,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Dashboard statistics retrieved successfully",
		"data":    dashboard,
	})
}
