// internal/interfaces/http/handlers/catalog.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/your-org/campus-delivery-backend/internal/domain/catalog"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/middleware"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
)

// CatalogService is the catalog surface the handler needs
type CatalogService interface {
	ListUniversities(ctx context.Context) ([]catalog.University, error)
	CreateUniversity(ctx context.Context, req *catalog.UniversityRequest) (*catalog.University, error)
	UpdateUniversity(ctx context.Context, id uint, req *catalog.UniversityRequest) (*catalog.University, error)
	DeleteUniversity(ctx context.Context, id uint) error

	ListCampuses(ctx context.Context, universityID uint) ([]catalog.Campus, error)
	GetCampus(ctx context.Context, id uint) (*catalog.Campus, error)
	CreateCampus(ctx context.Context, req *catalog.CampusRequest) (*catalog.Campus, error)
	UpdateCampus(ctx context.Context, id uint, req *catalog.CampusUpdateRequest) (*catalog.Campus, error)
	DeleteCampus(ctx context.Context, id uint) error

	ListRestaurants(ctx context.Context, campusID uint) ([]catalog.RestaurantView, error)
	GetRestaurant(ctx context.Context, id uint) (*catalog.RestaurantView, error)
	CreateRestaurant(ctx context.Context, req *catalog.RestaurantRequest) (*catalog.RestaurantView, error)
	UpdateRestaurant(ctx context.Context, id uint, req *catalog.RestaurantUpdateRequest) (*catalog.RestaurantView, error)
	DeleteRestaurant(ctx context.Context, id uint) error

	ListMenuItems(ctx context.Context, restaurantID uint) ([]catalog.MenuItem, error)
	GetMenuItem(ctx context.Context, id uint) (*catalog.MenuItem, error)
	CreateMenuItem(ctx context.Context, req *catalog.MenuItemRequest) (*catalog.MenuItem, error)
	UpdateMenuItem(ctx context.Context, id uint, req *catalog.MenuItemUpdateRequest) (*catalog.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uint) error

	ListMartItems(ctx context.Context, campusID uint) ([]catalog.MartItem, error)
	GetMartItem(ctx context.Context, id uint) (*catalog.MartItem, error)
	CreateMartItem(ctx context.Context, req *catalog.MartItemRequest) (*catalog.MartItem, error)
	UpdateMartItem(ctx context.Context, id uint, req *catalog.MartItemUpdateRequest) (*catalog.MartItem, error)
	DeleteMartItem(ctx context.Context, id uint) error
}

// CatalogHandler handles university, campus, restaurant, menu and mart endpoints.
// List endpoints answer with bare arrays, which is the contract storefront
// clients already consume.
type CatalogHandler struct {
	catalog CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalogService}
}

// ListUniversities handles GET /api/universities
func (h *CatalogHandler) ListUniversities(c *gin.Context) {
	universities, err := h.catalog.ListUniversities(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, universities)
}

// ListCampuses handles GET /api/campuses?universityId=
func (h *CatalogHandler) ListCampuses(c *gin.Context) {
	universityID, err := queryID(c, "universityId")
	if err != nil {
		respondError(c, err)
		return
	}
	campuses, err := h.catalog.ListCampuses(c.Request.Context(), universityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campuses)
}

// GetCampus handles GET /api/campuses/:id
func (h *CatalogHandler) GetCampus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	campus, err := h.catalog.GetCampus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, campus)
}

// ListRestaurants handles GET /api/restaurants?campusId=
func (h *CatalogHandler) ListRestaurants(c *gin.Context) {
	campusID, err := queryID(c, "campusId")
	if err != nil {
		respondError(c, err)
		return
	}
	restaurants, err := h.catalog.ListRestaurants(c.Request.Context(), campusID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurants)
}

// GetRestaurant handles GET /api/restaurants/:id
func (h *CatalogHandler) GetRestaurant(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	restaurant, err := h.catalog.GetRestaurant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurant)
}

// ListMenuItems handles GET /api/menu-items?restaurantId=
func (h *CatalogHandler) ListMenuItems(c *gin.Context) {
	restaurantID, err := queryID(c, "restaurantId")
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.catalog.ListMenuItems(c.Request.Context(), restaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// ListMartItems handles GET /api/mart-items?campusId=
func (h *CatalogHandler) ListMartItems(c *gin.Context) {
	campusID, err := queryID(c, "campusId")
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := h.catalog.ListMartItems(c.Request.Context(), campusID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// Admin endpoints

// CreateUniversity handles POST /api/admin/universities
func (h *CatalogHandler) CreateUniversity(c *gin.Context) {
	if !authorize(c, auth.ActionManageUniversities, auth.Scope{}) {
		return
	}
	var req catalog.UniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	university, err := h.catalog.CreateUniversity(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "University created successfully", "data": university})
}

// UpdateUniversity handles PUT /api/admin/universities/:id
func (h *CatalogHandler) UpdateUniversity(c *gin.Context) {
	if !authorize(c, auth.ActionManageUniversities, auth.Scope{}) {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	var req catalog.UniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	university, err := h.catalog.UpdateUniversity(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "University updated successfully", "data": university})
}

// DeleteUniversity handles DELETE /api/admin/universities/:id
func (h *CatalogHandler) DeleteUniversity(c *gin.Context) {
	if !authorize(c, auth.ActionManageUniversities, auth.Scope{}) {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.catalog.DeleteUniversity(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "University deleted successfully"})
}

// CreateCampus handles POST /api/admin/campuses
func (h *CatalogHandler) CreateCampus(c *gin.Context) {
	if !authorize(c, auth.ActionManageUniversities, auth.Scope{}) {
		return
	}
	var req catalog.CampusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	campus, err := h.catalog.CreateCampus(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Campus created successfully", "data": campus})
}

// UpdateCampus handles PUT /api/admin/campuses/:id
func (h *CatalogHandler) UpdateCampus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if !authorize(c, auth.ActionManageCatalog, auth.Scope{CampusID: id}) {
		return
	}
	var req catalog.CampusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	campus, err := h.catalog.UpdateCampus(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Campus updated successfully", "data": campus})
}

// DeleteCampus handles DELETE /api/admin/campuses/:id
func (h *CatalogHandler) DeleteCampus(c *gin.Context) {
	if !authorize(c, auth.ActionManageUniversities, auth.Scope{}) {
		return
	}
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.catalog.DeleteCampus(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Campus deleted successfully"})
}

// CreateRestaurant handles POST /api/admin/restaurants
func (h *CatalogHandler) CreateRestaurant(c *gin.Context) {
	var req catalog.RestaurantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	if !authorize(c, auth.ActionManageCatalog, auth.Scope{CampusID: req.CampusID}) {
		return
	}
	restaurant, err := h.catalog.CreateRestaurant(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Restaurant created successfully", "data": restaurant})
}

// UpdateRestaurant handles PUT /api/admin/restaurants/:id
func (h *CatalogHandler) UpdateRestaurant(c *gin.Context) {
	current, ok := h.restaurantFor(c, auth.ActionManageCatalog)
	if !ok {
		return
	}
	var req catalog.RestaurantUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	restaurant, err := h.catalog.UpdateRestaurant(c.Request.Context(), current.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant updated successfully", "data": restaurant})
}

// DeleteRestaurant handles DELETE /api/admin/restaurants/:id
func (h *CatalogHandler) DeleteRestaurant(c *gin.Context) {
	current, ok := h.restaurantFor(c, auth.ActionManageCatalog)
	if !ok {
		return
	}
	if err := h.catalog.DeleteRestaurant(c.Request.Context(), current.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Restaurant deleted successfully"})
}

// CreateMenuItem handles POST /api/admin/menu-items
func (h *CatalogHandler) CreateMenuItem(c *gin.Context) {
	var req catalog.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	restaurant, err := h.catalog.GetRestaurant(c.Request.Context(), req.RestaurantID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !authorize(c, auth.ActionManageMenu, restaurantScope(restaurant)) {
		return
	}
	item, err := h.catalog.CreateMenuItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Menu item created successfully", "data": item})
}

// UpdateMenuItem handles PUT /api/admin/menu-items/:id
func (h *CatalogHandler) UpdateMenuItem(c *gin.Context) {
	item, ok := h.menuItemFor(c)
	if !ok {
		return
	}
	var req catalog.MenuItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	updated, err := h.catalog.UpdateMenuItem(c.Request.Context(), item.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item updated successfully", "data": updated})
}

// DeleteMenuItem handles DELETE /api/admin/menu-items/:id
func (h *CatalogHandler) DeleteMenuItem(c *gin.Context) {
	item, ok := h.menuItemFor(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteMenuItem(c.Request.Context(), item.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Menu item deleted successfully"})
}

// CreateMartItem handles POST /api/admin/mart-items
func (h *CatalogHandler) CreateMartItem(c *gin.Context) {
	var req catalog.MartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	if !authorize(c, auth.ActionManageCatalog, auth.Scope{CampusID: req.CampusID}) {
		return
	}
	item, err := h.catalog.CreateMartItem(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Mart item created successfully", "data": item})
}

// UpdateMartItem handles PUT /api/admin/mart-items/:id
func (h *CatalogHandler) UpdateMartItem(c *gin.Context) {
	item, ok := h.martItemFor(c)
	if !ok {
		return
	}
	var req catalog.MartItemUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, invalidRequest(err))
		return
	}
	updated, err := h.catalog.UpdateMartItem(c.Request.Context(), item.ID, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mart item updated successfully", "data": updated})
}

// DeleteMartItem handles DELETE /api/admin/mart-items/:id
func (h *CatalogHandler) DeleteMartItem(c *gin.Context) {
	item, ok := h.martItemFor(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteMartItem(c.Request.Context(), item.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Mart item deleted successfully"})
}

func (h *CatalogHandler) restaurantFor(c *gin.Context, action auth.Action) (*catalog.RestaurantView, bool) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	restaurant, err := h.catalog.GetRestaurant(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !authorize(c, action, restaurantScope(restaurant)) {
		return nil, false
	}
	return restaurant, true
}

func (h *CatalogHandler) menuItemFor(c *gin.Context) (*catalog.MenuItem, bool) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	item, err := h.catalog.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	restaurant, err := h.catalog.GetRestaurant(c.Request.Context(), item.RestaurantID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !authorize(c, auth.ActionManageMenu, restaurantScope(restaurant)) {
		return nil, false
	}
	return item, true
}

func (h *CatalogHandler) martItemFor(c *gin.Context) (*catalog.MartItem, bool) {
	id, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	item, err := h.catalog.GetMartItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if !authorize(c, auth.ActionManageCatalog, auth.Scope{CampusID: item.CampusID}) {
		return nil, false
	}
	return item, true
}

func restaurantScope(r *catalog.RestaurantView) auth.Scope {
	return auth.Scope{CampusID: r.CampusID, RestaurantIDs: []uint{r.ID}, Resource: true}
}

// authorize writes 401/403 and returns false when the caller may not act on scope
func authorize(c *gin.Context, action auth.Action, scope auth.Scope) bool {
	principal, ok := middleware.PrincipalFromContext(c)
	if !ok {
		respondError(c, apperror.Unauthorized("authentication required"))
		return false
	}
	if !principal.Can(action, scope) {
		respondError(c, apperror.Forbidden("not allowed to perform this action"))
		return false
	}
	return true
}
