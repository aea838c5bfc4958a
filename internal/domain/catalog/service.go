// internal/domain/catalog/service.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/domain/availability"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

var (
	ErrUniversityNotFound = errors.New("university not found")
	ErrCampusNotFound     = errors.New("campus not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrMenuItemNotFound   = errors.New("menu item not found")
	ErrMartItemNotFound   = errors.New("mart item not found")
)

// Service handles catalog business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
	now    func() time.Time
}

// NewService creates a new catalog service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	loc := cfg.Location()
	return &Service{
		db:     db,
		config: cfg,
		now:    func() time.Time { return time.Now().In(loc) },
	}
}

// UniversityRequest represents university create/update data
type UniversityRequest struct {
	Name string `json:"name" binding:"required"`
}

// CampusRequest represents campus create data
type CampusRequest struct {
	UniversityID uint   `json:"universityId" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Location     string `json:"location"`
}

// CampusUpdateRequest represents campus update data
type CampusUpdateRequest struct {
	Name     *string `json:"name"`
	Location *string `json:"location"`
}

// RestaurantRequest represents restaurant create data
type RestaurantRequest struct {
	CampusID  uint   `json:"campusId" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Location  string `json:"location"`
	Cuisine   string `json:"cuisine"`
	OpenTime  string `json:"openTime"`
	CloseTime string `json:"closeTime"`
	Is24x7    *bool  `json:"is24x7"`
	PhotoURL  string `json:"photoURL"`
	ManagerID string `json:"managerId"`
}

// RestaurantUpdateRequest represents restaurant update data
type RestaurantUpdateRequest struct {
	Name      *string `json:"name"`
	Location  *string `json:"location"`
	Cuisine   *string `json:"cuisine"`
	OpenTime  *string `json:"openTime"`
	CloseTime *string `json:"closeTime"`
	Is24x7    *bool   `json:"is24x7"`
	PhotoURL  *string `json:"photoURL"`
	ManagerID *string `json:"managerId"`
}

// MenuItemRequest represents menu item create data
type MenuItemRequest struct {
	RestaurantID uint    `json:"restaurantId" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Description  string  `json:"description"`
	Price        float64 `json:"price" binding:"required,gt=0"`
	Category     string  `json:"category"`
	PhotoURL     string  `json:"photoURL"`
	IsAvailable  *bool   `json:"isAvailable"`
}

// MenuItemUpdateRequest represents menu item update data
type MenuItemUpdateRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	PhotoURL    *string  `json:"photoURL"`
	IsAvailable *bool    `json:"isAvailable"`
}

// MartItemRequest represents mart item create data
type MartItemRequest struct {
	CampusID uint    `json:"campusId" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Price    float64 `json:"price" binding:"required,gt=0"`
	Category string  `json:"category"`
	PhotoURL string  `json:"photoURL"`
	InStock  *bool   `json:"inStock"`
}

// MartItemUpdateRequest represents mart item update data
type MartItemUpdateRequest struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Category *string  `json:"category"`
	PhotoURL *string  `json:"photoURL"`
	InStock  *bool    `json:"inStock"`
}

// Universities

// ListUniversities retrieves all universities ordered by name
func (s *Service) ListUniversities(ctx context.Context) ([]University, error) {
	var universities []University
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&universities).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve universities: %w", err)
	}
	return universities, nil
}

// GetUniversity retrieves a single university by ID
func (s *Service) GetUniversity(ctx context.Context, id uint) (*University, error) {
	var university University
	if err := s.db.WithContext(ctx).First(&university, id).Error; err != nil {
		return nil, notFoundOr(err, ErrUniversityNotFound, "failed to retrieve university")
	}
	return &university, nil
}

// CreateUniversity creates a new university
func (s *Service) CreateUniversity(ctx context.Context, req *UniversityRequest) (*University, error) {
	university := University{
		Name: strings.TrimSpace(req.Name),
		Slug: GenerateSlug(req.Name),
	}
	if university.Slug == "" {
		return nil, apperror.Validation("university name must contain letters or digits")
	}

	var existing University
	if err := s.db.WithContext(ctx).Where("slug = ?", university.Slug).First(&existing).Error; err == nil {
		return nil, apperror.Conflict(fmt.Sprintf("university %s already exists", university.Name))
	}

	if err := s.db.WithContext(ctx).Create(&university).Error; err != nil {
		return nil, fmt.Errorf("failed to create university: %w", err)
	}
	return &university, nil
}

// UpdateUniversity renames a university
func (s *Service) UpdateUniversity(ctx context.Context, id uint, req *UniversityRequest) (*University, error) {
	university, err := s.GetUniversity(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name": strings.TrimSpace(req.Name),
		"slug": GenerateSlug(req.Name),
	}
	if err := s.db.WithContext(ctx).Model(university).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update university: %w", err)
	}
	return s.GetUniversity(ctx, id)
}

// DeleteUniversity soft deletes a university
func (s *Service) DeleteUniversity(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &University{}, id, ErrUniversityNotFound)
}

// Campuses

// ListCampuses retrieves campuses, optionally narrowed to one university
func (s *Service) ListCampuses(ctx context.Context, universityID uint) ([]Campus, error) {
	query := s.db.WithContext(ctx).Model(&Campus{})
	if universityID > 0 {
		query = query.Where("university_id = ?", universityID)
	}

	var campuses []Campus
	if err := query.Order("name ASC").Find(&campuses).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve campuses: %w", err)
	}
	return campuses, nil
}

// GetCampus retrieves a single campus by ID
func (s *Service) GetCampus(ctx context.Context, id uint) (*Campus, error) {
	var campus Campus
	if err := s.db.WithContext(ctx).First(&campus, id).Error; err != nil {
		return nil, notFoundOr(err, ErrCampusNotFound, "failed to retrieve campus")
	}
	return &campus, nil
}

// CreateCampus creates a campus under an existing university
func (s *Service) CreateCampus(ctx context.Context, req *CampusRequest) (*Campus, error) {
	if _, err := s.GetUniversity(ctx, req.UniversityID); err != nil {
		return nil, err
	}

	campus := Campus{
		UniversityID: req.UniversityID,
		Name:         strings.TrimSpace(req.Name),
		Location:     req.Location,
	}
	if err := s.db.WithContext(ctx).Create(&campus).Error; err != nil {
		return nil, fmt.Errorf("failed to create campus: %w", err)
	}
	return &campus, nil
}

// UpdateCampus updates an existing campus
func (s *Service) UpdateCampus(ctx context.Context, id uint, req *CampusUpdateRequest) (*Campus, error) {
	campus, err := s.GetCampus(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(campus).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update campus: %w", err)
		}
	}
	return s.GetCampus(ctx, id)
}

// DeleteCampus soft deletes a campus
func (s *Service) DeleteCampus(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &Campus{}, id, ErrCampusNotFound)
}

// Restaurants

// ListRestaurants retrieves a campus's restaurants with their opening status
func (s *Service) ListRestaurants(ctx context.Context, campusID uint) ([]RestaurantView, error) {
	query := s.db.WithContext(ctx).Model(&Restaurant{})
	if campusID > 0 {
		query = query.Where("campus_id = ?", campusID)
	}

	var restaurants []Restaurant
	if err := query.Order("name ASC").Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve restaurants: %w", err)
	}

	now := s.now()
	views := make([]RestaurantView, len(restaurants))
	for i, r := range restaurants {
		views[i] = NewRestaurantView(r, now)
	}
	return views, nil
}

// GetRestaurant retrieves a single restaurant with its opening status
func (s *Service) GetRestaurant(ctx context.Context, id uint) (*RestaurantView, error) {
	var restaurant Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, id).Error; err != nil {
		return nil, notFoundOr(err, ErrRestaurantNotFound, "failed to retrieve restaurant")
	}
	view := NewRestaurantView(restaurant, s.now())
	return &view, nil
}

// RestaurantsByIDs retrieves the given restaurants keyed by ID; unknown IDs are omitted
func (s *Service) RestaurantsByIDs(ctx context.Context, ids []uint) (map[uint]Restaurant, error) {
	out := make(map[uint]Restaurant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var restaurants []Restaurant
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve restaurants: %w", err)
	}
	for _, r := range restaurants {
		out[r.ID] = r
	}
	return out, nil
}

// CreateRestaurant creates a restaurant after validating its opening hours
func (s *Service) CreateRestaurant(ctx context.Context, req *RestaurantRequest) (*RestaurantView, error) {
	restaurant := Restaurant{
		CampusID:  req.CampusID,
		Name:      strings.TrimSpace(req.Name),
		Location:  req.Location,
		Cuisine:   req.Cuisine,
		OpenTime:  strings.TrimSpace(req.OpenTime),
		CloseTime: strings.TrimSpace(req.CloseTime),
		Is24x7:    req.Is24x7,
		PhotoURL:  req.PhotoURL,
		ManagerID: req.ManagerID,
	}
	if err := validateHours(restaurant.Window()); err != nil {
		return nil, err
	}
	if _, err := s.GetCampus(ctx, req.CampusID); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(&restaurant).Error; err != nil {
		return nil, fmt.Errorf("failed to create restaurant: %w", err)
	}
	view := NewRestaurantView(restaurant, s.now())
	return &view, nil
}

// UpdateRestaurant updates an existing restaurant
func (s *Service) UpdateRestaurant(ctx context.Context, id uint, req *RestaurantUpdateRequest) (*RestaurantView, error) {
	current, err := s.GetRestaurant(ctx, id)
	if err != nil {
		return nil, err
	}

	updates, window := restaurantUpdates(current.Restaurant, req)
	if err := validateHours(window); err != nil {
		return nil, err
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&current.Restaurant).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update restaurant: %w", err)
		}
	}
	return s.GetRestaurant(ctx, id)
}

// DeleteRestaurant soft deletes a restaurant
func (s *Service) DeleteRestaurant(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &Restaurant{}, id, ErrRestaurantNotFound)
}

// Menu items

// ListMenuItems retrieves a restaurant's menu
func (s *Service) ListMenuItems(ctx context.Context, restaurantID uint) ([]MenuItem, error) {
	query := s.db.WithContext(ctx).Model(&MenuItem{})
	if restaurantID > 0 {
		query = query.Where("restaurant_id = ?", restaurantID)
	}

	var items []MenuItem
	if err := query.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve menu items: %w", err)
	}
	return items, nil
}

// GetMenuItem retrieves a single menu item by ID
func (s *Service) GetMenuItem(ctx context.Context, id uint) (*MenuItem, error) {
	var item MenuItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFoundOr(err, ErrMenuItemNotFound, "failed to retrieve menu item")
	}
	return &item, nil
}

// CreateMenuItem adds a dish to a restaurant's menu
func (s *Service) CreateMenuItem(ctx context.Context, req *MenuItemRequest) (*MenuItem, error) {
	if _, err := s.GetRestaurant(ctx, req.RestaurantID); err != nil {
		return nil, err
	}

	item := MenuItem{
		RestaurantID: req.RestaurantID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Price:        req.Price,
		Category:     req.Category,
		PhotoURL:     req.PhotoURL,
		IsAvailable:  req.IsAvailable == nil || *req.IsAvailable,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}
	return &item, nil
}

// UpdateMenuItem updates an existing menu item
func (s *Service) UpdateMenuItem(ctx context.Context, id uint, req *MenuItemUpdateRequest) (*MenuItem, error) {
	item, err := s.GetMenuItem(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, apperror.Validation("price must be positive")
		}
		updates["price"] = *req.Price
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = *req.PhotoURL
	}
	if req.IsAvailable != nil {
		updates["is_available"] = *req.IsAvailable
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update menu item: %w", err)
		}
	}
	return s.GetMenuItem(ctx, id)
}

// DeleteMenuItem soft deletes a menu item
func (s *Service) DeleteMenuItem(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &MenuItem{}, id, ErrMenuItemNotFound)
}

// Mart items

// ListMartItems retrieves a campus's mart catalogue
func (s *Service) ListMartItems(ctx context.Context, campusID uint) ([]MartItem, error) {
	query := s.db.WithContext(ctx).Model(&MartItem{})
	if campusID > 0 {
		query = query.Where("campus_id = ?", campusID)
	}

	var items []MartItem
	if err := query.Order("category ASC, name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve mart items: %w", err)
	}
	return items, nil
}

// GetMartItem retrieves a single mart item by ID
func (s *Service) GetMartItem(ctx context.Context, id uint) (*MartItem, error) {
	var item MartItem
	if err := s.db.WithContext(ctx).First(&item, id).Error; err != nil {
		return nil, notFoundOr(err, ErrMartItemNotFound, "failed to retrieve mart item")
	}
	return &item, nil
}

// CreateMartItem adds a product to a campus mart
func (s *Service) CreateMartItem(ctx context.Context, req *MartItemRequest) (*MartItem, error) {
	if _, err := s.GetCampus(ctx, req.CampusID); err != nil {
		return nil, err
	}

	item := MartItem{
		CampusID: req.CampusID,
		Name:     strings.TrimSpace(req.Name),
		Price:    req.Price,
		Category: req.Category,
		PhotoURL: req.PhotoURL,
		InStock:  req.InStock == nil || *req.InStock,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("failed to create mart item: %w", err)
	}
	return &item, nil
}

// UpdateMartItem updates an existing mart item
func (s *Service) UpdateMartItem(ctx context.Context, id uint, req *MartItemUpdateRequest) (*MartItem, error) {
	item, err := s.GetMartItem(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, apperror.Validation("price must be positive")
		}
		updates["price"] = *req.Price
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = *req.PhotoURL
	}
	if req.InStock != nil {
		updates["in_stock"] = *req.InStock
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update mart item: %w", err)
		}
	}
	return s.GetMartItem(ctx, id)
}

// DeleteMartItem soft deletes a mart item
func (s *Service) DeleteMartItem(ctx context.Context, id uint) error {
	return deleteByID(ctx, s.db, &MartItem{}, id, ErrMartItemNotFound)
}

// restaurantUpdates builds the column updates for req and the window the
// restaurant will have once they are applied
func restaurantUpdates(current Restaurant, req *RestaurantUpdateRequest) (map[string]interface{}, availability.Window) {
	updates := make(map[string]interface{})
	next := current

	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Cuisine != nil {
		updates["cuisine"] = *req.Cuisine
	}
	if req.OpenTime != nil {
		next.OpenTime = strings.TrimSpace(*req.OpenTime)
		updates["open_time"] = next.OpenTime
	}
	if req.CloseTime != nil {
		next.CloseTime = strings.TrimSpace(*req.CloseTime)
		updates["close_time"] = next.CloseTime
	}
	if req.Is24x7 != nil {
		next.Is24x7 = req.Is24x7
		updates["is24x7"] = *req.Is24x7
	}
	if req.PhotoURL != nil {
		updates["photo_url"] = *req.PhotoURL
	}
	if req.ManagerID != nil {
		updates["manager_id"] = *req.ManagerID
	}

	return updates, next.Window()
}

func validateHours(w availability.Window) error {
	if err := availability.Validate(w); err != nil {
		return apperror.New(apperror.TypeValidation, err.Error(), err)
	}
	return nil
}

func notFoundOr(err, notFound error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.Wrap(apperror.TypeNotFound, notFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func deleteByID(ctx context.Context, db *gorm.DB, model interface{}, id uint, notFound error) error {
	result := db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if result.Error != nil {
		return fmt.Errorf("failed to delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.Wrap(apperror.TypeNotFound, notFound)
	}
	return nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug generates a URL-friendly slug from name
func GenerateSlug(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
