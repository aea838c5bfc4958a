// internal/interfaces/http/handlers/settings.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/campus-delivery-backend/internal/domain/pricing"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/middleware"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
)

// FeeService reads and writes delivery fee settings
type FeeService interface {
	Resolve(ctx context.Context, campusID uint) (pricing.FeeConfig, error)
	ListCampusSettings(ctx context.Context) ([]pricing.CampusSetting, error)
	UpsertCampusSetting(ctx context.Context, campusID uint, req *pricing.CampusSettingRequest, updatedBy string) (*pricing.CampusSetting, error)
	GlobalDeliveryFee(ctx context.Context) (float64, error)
	SetGlobalDeliveryFee(ctx context.Context, fee float64, updatedBy string) error
}

// SettingsHandler handles fee setting endpoints
type SettingsHandler struct {
	fees FeeService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(fees FeeService) *SettingsHandler {
	return &SettingsHandler{fees: fees}
}

// ListCampusSettings handles GET /api/campus-settings
func (h *SettingsHandler) ListCampusSettings(c *gin.Context) {
	settings, err := h.fees.ListCampusSettings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if settings == nil {
		settings = []pricing.CampusSetting{}
	}
	c.JSON(http.StatusOK, settings)
}

// UpsertCampusSetting handles PUT /api/campus-settings/:campusId
func (h *SettingsHandler) UpsertCampusSetting(c *gin.Context) {
	campusID, err := pathID(c, "campusId")
	if err != nil {
		respondError(c, err)
		return
	}
	if !authorize(c, auth.ActionManageCampusFees, auth.Scope{CampusID: campusID}) {
		return
	}

	var req pricing.CampusSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}

	setting, err := h.fees.UpsertCampusSetting(c.Request.Context(), campusID, &req, middleware.Actor(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Campus settings saved successfully",
		"data":    setting,
	})
}

// GetGlobalDeliveryFee handles GET /api/global-delivery-fee
func (h *SettingsHandler) GetGlobalDeliveryFee(c *gin.Context) {
	fee, err := h.fees.GlobalDeliveryFee(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deliveryFee": fee})
}

// SetGlobalDeliveryFee handles PUT /api/global-delivery-fee
func (h *SettingsHandler) SetGlobalDeliveryFee(c *gin.Context) {
	if !authorize(c, auth.ActionManageGlobalFees, auth.Scope{}) {
		return
	}

	var req pricing.GlobalFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}

	if err := h.fees.SetGlobalDeliveryFee(c.Request.Context(), req.DeliveryFee, middleware.Actor(c)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Global delivery fee updated successfully",
		"deliveryFee": req.DeliveryFee,
	})
}

// GetFeeConfig handles GET /api/fee-config?campusId=
func (h *SettingsHandler) GetFeeConfig(c *gin.Context) {
	campusID, err := queryID(c, "campusId")
	if err != nil {
		respondError(c, err)
		return
	}

	fee, err := h.fees.Resolve(c.Request.Context(), campusID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": fee})
}
