// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrOrderNotFound is returned when an order does not exist
var ErrOrderNotFound = errors.New("order not found")

// TxHook runs inside the order creation transaction after the order row exists
type TxHook func(tx *gorm.DB, o *Order) error

// Service handles order business logic
type Service struct {
	db        *gorm.DB
	config    *config.Config
	publisher Publisher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// NewService creates a new order service. publisher may be nil.
func NewService(db *gorm.DB, cfg *config.Config, publisher Publisher, logger logrus.FieldLogger) *Service {
	return &Service{
		db:        db,
		config:    cfg,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// OrderListRequest represents order list query parameters
type OrderListRequest struct {
	Page         int         `form:"page,default=1"`
	Limit        int         `form:"limit,default=20"`
	CampusID     uint        `form:"campusId"`
	RestaurantID uint        `form:"restaurantId"`
	Status       OrderStatus `form:"status"`
	Search       string      `form:"search"`
	SortBy       string      `form:"sortBy,default=created_at"`
	SortOrder    string      `form:"sortOrder,default=desc"`
	DateFrom     string      `form:"dateFrom"`
	DateTo       string      `form:"dateTo"`
}

// UpdateStatusRequest represents a status change
type UpdateStatusRequest struct {
	Status  OrderStatus `json:"status" binding:"required"`
	Comment string      `json:"comment"`
}

// OrderResponse represents order response with pagination
type OrderResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// Pagination represents pagination information
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// AnalyticsScope narrows the orders fed to dashboards
type AnalyticsScope struct {
	CampusID     uint
	RestaurantID uint
	Since        *time.Time
}

// Create persists an order, its first history entry and whatever the hooks
// write, all in one transaction
func (s *Service) Create(ctx context.Context, o *Order, actor string, hooks ...TxHook) error {
	now := s.now()
	o.Status = OrderStatusPending

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		history := OrderStatusHistory{
			OrderID:   o.ID,
			Status:    OrderStatusPending,
			Comment:   "Order placed",
			CreatedBy: actor,
			CreatedAt: now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}
		o.StatusHistory = []OrderStatusHistory{history}

		for _, hook := range hooks {
			if err := hook(tx, o); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, NewCreatedEvent(o, now))
	return nil
}

// List retrieves orders with filtering and pagination
func (s *Service) List(ctx context.Context, req *OrderListRequest) (*OrderResponse, error) {
	normalizePage(req)

	query, err := s.filtered(ctx, req)
	if err != nil {
		return nil, err
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	var orders []Order
	offset := (req.Page - 1) * req.Limit
	err = query.Order(buildOrderClause(req.SortBy, req.SortOrder)).
		Offset(offset).Limit(req.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}

	totalPages := int((total + int64(req.Limit) - 1) / int64(req.Limit))
	return &OrderResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       req.Page,
			Limit:      req.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    req.Page < totalPages,
			HasPrev:    req.Page > 1,
		},
	}, nil
}

// Get retrieves a single order by ID with its history
func (s *Service) Get(ctx context.Context, id uint) (*Order, error) {
	return s.first(ctx, "id = ?", id)
}

// GetByReference retrieves a single order by its reference
func (s *Service) GetByReference(ctx context.Context, reference string) (*Order, error) {
	return s.first(ctx, "reference = ?", reference)
}

// UpdateStatus moves an order along its lifecycle. Writing the current status
// is a no-op and reports changed=false.
func (s *Service) UpdateStatus(ctx context.Context, id uint, to OrderStatus, comment, actor string) (*Order, bool, error) {
	if _, err := ParseStatus(string(to)); err != nil {
		return nil, false, apperror.Validation(err.Error())
	}

	var (
		order   Order
		from    OrderStatus
		changed bool
		now     = s.now()
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.Wrap(apperror.TypeNotFound, ErrOrderNotFound)
			}
			return fmt.Errorf("failed to retrieve order: %w", err)
		}

		from = order.EffectiveStatus()
		if err := CheckTransition(from, to); err != nil {
			return apperror.Wrap(apperror.TypeConflict, err)
		}
		if from == to {
			return nil
		}

		updates := statusUpdates(to, now)
		if err := tx.Model(&order).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}

		history := OrderStatusHistory{
			OrderID:    order.ID,
			FromStatus: from,
			Status:     to,
			Comment:    comment,
			CreatedBy:  actor,
			CreatedAt:  now,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to create status history: %w", err)
		}

		changed = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	updated, err := s.Get(ctx, id)
	if err != nil {
		return nil, false, err
	}
	if changed {
		s.logger.WithFields(logrus.Fields{
			"order_id": id,
			"from":     from,
			"to":       to,
			"actor":    actor,
		}).Info("Order status updated")
		s.publish(ctx, NewStatusChangedEvent(updated, from, actor, now))
	}
	return updated, changed, nil
}

// ListForAnalytics loads every order in scope, oldest first
func (s *Service) ListForAnalytics(ctx context.Context, scope AnalyticsScope) ([]Order, error) {
	query := s.db.WithContext(ctx).Model(&Order{})
	if scope.CampusID > 0 {
		query = query.Where("campus_id = ?", scope.CampusID)
	}
	if scope.RestaurantID > 0 {
		query = query.Where("restaurant_ids @> ?::jsonb", restaurantFilter(scope.RestaurantID))
	}
	if scope.Since != nil {
		query = query.Where("created_at >= ?", *scope.Since)
	}

	var orders []Order
	if err := query.Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to retrieve orders: %w", err)
	}
	return orders, nil
}

func (s *Service) first(ctx context.Context, cond string, arg interface{}) (*Order, error) {
	var order Order
	err := s.db.WithContext(ctx).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		Where(cond, arg).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.Wrap(apperror.TypeNotFound, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to retrieve order: %w", err)
	}
	return &order, nil
}

func (s *Service) filtered(ctx context.Context, req *OrderListRequest) (*gorm.DB, error) {
	query := s.db.WithContext(ctx).Model(&Order{})

	if req.CampusID > 0 {
		query = query.Where("campus_id = ?", req.CampusID)
	}
	if req.RestaurantID > 0 {
		query = query.Where("restaurant_ids @> ?::jsonb", restaurantFilter(req.RestaurantID))
	}
	if req.Status != "" {
		if _, err := ParseStatus(string(req.Status)); err != nil {
			return nil, apperror.Validation(err.Error())
		}
		query = query.Where("status = ?", req.Status)
	}
	if req.Search != "" {
		like := "%" + req.Search + "%"
		query = query.Where("reference ILIKE ? OR customer_name ILIKE ? OR phone ILIKE ?", like, like, like)
	}
	if req.DateFrom != "" {
		from, err := parseDate(req.DateFrom, s.config.Location())
		if err != nil {
			return nil, err
		}
		query = query.Where("created_at >= ?", from)
	}
	if req.DateTo != "" {
		to, err := parseDate(req.DateTo, s.config.Location())
		if err != nil {
			return nil, err
		}
		query = query.Where("created_at < ?", to.AddDate(0, 0, 1))
	}
	return query, nil
}

func (s *Service) publish(ctx context.Context, evt Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, evt); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":    evt.Type,
			"order_id": evt.OrderID,
		}).Warn("Failed to publish order event")
	}
}

// statusUpdates returns the columns written for a move to status
func statusUpdates(status OrderStatus, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{
		"status": status,
	}
	switch status {
	case OrderStatusAccepted:
		updates["accepted_at"] = now
	case OrderStatusDelivered:
		updates["delivered_at"] = now
	case OrderStatusCancelled:
		updates["cancelled_at"] = now
	}
	return updates
}

func restaurantFilter(id uint) string {
	return fmt.Sprintf("[%d]", id)
}

func parseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, apperror.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}

func normalizePage(req *OrderListRequest) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}
	if req.Limit > 200 {
		req.Limit = 200
	}
}

func buildOrderClause(sortBy, sortOrder string) string {
	validSortFields := map[string]bool{
		"created_at":  true,
		"updated_at":  true,
		"grand_total": true,
		"status":      true,
		"reference":   true,
	}

	if !validSortFields[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "desc" {
		sortOrder = "desc"
	}

	return fmt.Sprintf("%s %s", sortBy, sortOrder)
}
