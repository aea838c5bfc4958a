// internal/domain/checkout/service.go
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/domain/availability"
	"github.com/your-org/campus-delivery-backend/internal/domain/cart"
	"github.com/your-org/campus-delivery-backend/internal/domain/catalog"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
	"github.com/your-org/campus-delivery-backend/internal/domain/pricing"
	"github.com/your-org/campus-delivery-backend/internal/domain/session"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s-]{6,18}[0-9]$`)

// fieldMessages are the client-facing messages for failed form rules
var fieldMessages = map[string]string{
	"Name":                 "name is required",
	"Phone":                "a valid phone number is required",
	"Email":                "email is invalid",
	"Gender":               "gender must be male or female",
	"Address":              "address is required",
	"Persons":              "persons must be at least 1",
	"PaymentScreenshotURL": "a valid payment screenshot URL is required",
	"RecaptchaToken":       "recaptcha token is required",
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
	}
}

// Verifier checks a human-verification token
type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}

// CartStore is the session cart the order is built from. Checkout hands
// place a snapshot and removes what was ordered once place returns nil.
type CartStore interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Checkout(ctx context.Context, sessionID string, place func(c *cart.Cart) error) error
}

// SelectionReader returns the session's university and campus
type SelectionReader interface {
	Current(ctx context.Context, sessionID string) (*session.State, error)
}

// RestaurantDirectory looks up catalog restaurants for opening hours
type RestaurantDirectory interface {
	RestaurantsByIDs(ctx context.Context, ids []uint) (map[uint]catalog.Restaurant, error)
}

// FeeResolver returns the delivery fee configuration of a campus
type FeeResolver interface {
	Resolve(ctx context.Context, campusID uint) (pricing.FeeConfig, error)
}

// OrderCreator persists orders
type OrderCreator interface {
	Create(ctx context.Context, o *order.Order, actor string, hooks ...order.TxHook) error
}

// Dependencies are the collaborators a checkout needs
type Dependencies struct {
	Carts       CartStore
	Selection   SelectionReader
	Restaurants RestaurantDirectory
	Fees        FeeResolver
	Orders      OrderCreator
	Verifier    Verifier
	// Hooks run inside the order transaction
	Hooks []order.TxHook
}

// SubmitOrderRequest is the checkout form
type SubmitOrderRequest struct {
	Name                 string `json:"name" binding:"required,max=255"`
	Phone                string `json:"phone" binding:"required,phone"`
	Email                string `json:"email" binding:"omitempty,email,max=255"`
	Gender               string `json:"gender" binding:"required,oneof=male female"`
	Address              string `json:"address" binding:"required"`
	Persons              int    `json:"persons" binding:"gte=1"`
	PaymentScreenshotURL string `json:"paymentScreenshotURL" binding:"required,url"`
	Notes                string `json:"notes"`
	RecaptchaToken       string `json:"recaptchaToken" binding:"required"`
}

// UnmarshalJSON trims the form so binding rules see normalized values
func (r *SubmitOrderRequest) UnmarshalJSON(data []byte) error {
	type form SubmitOrderRequest
	if err := json.Unmarshal(data, (*form)(r)); err != nil {
		return err
	}
	normalize(r)
	return nil
}

// Payee is where the customer sends the payment
type Payee struct {
	Name          string `json:"payeeName"`
	BankName      string `json:"bankName"`
	AccountNumber string `json:"accountNumber"`
}

// Result is returned after a successful checkout
type Result struct {
	Order  *order.Order   `json:"order"`
	Totals pricing.Totals `json:"totals"`
	Payee  Payee          `json:"payee"`
}

// Quote is a totals preview for the current cart
type Quote struct {
	Totals  pricing.Totals    `json:"totals"`
	Fee     pricing.FeeConfig `json:"fee"`
	Persons int               `json:"persons"`
}

// Service handles checkout business logic
type Service struct {
	deps   Dependencies
	config *config.Config
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewService creates a new checkout service
func NewService(deps Dependencies, cfg *config.Config, logger logrus.FieldLogger) *Service {
	loc := cfg.Location()
	return &Service{
		deps:   deps,
		config: cfg,
		logger: logger,
		now:    func() time.Time { return time.Now().In(loc) },
	}
}

// Quote computes totals for the session cart without placing an order.
// A zero campusID uses the session's selected campus.
func (s *Service) Quote(ctx context.Context, sessionID string, persons int, campusID uint) (*Quote, error) {
	if persons < 1 {
		persons = 1
	}

	c, err := s.deps.Carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if campusID == 0 {
		state, err := s.deps.Selection.Current(ctx, sessionID)
		if err != nil {
			return nil, err
		}
		if state.Campus == nil {
			return nil, apperror.Validation("select a campus first")
		}
		campusID = state.Campus.ID
	}

	fee, err := s.deps.Fees.Resolve(ctx, campusID)
	if err != nil {
		return nil, err
	}
	return &Quote{Totals: pricing.ComputeTotals(c.Total(), persons, fee), Fee: fee, Persons: persons}, nil
}

// Submit validates the session cart, persists the order and takes the ordered
// lines out of the cart
func (s *Service) Submit(ctx context.Context, sessionID, remoteIP, actor string, req *SubmitOrderRequest) (*Result, error) {
	normalize(req)
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.deps.Verifier.Verify(ctx, req.RecaptchaToken, remoteIP); err != nil {
		return nil, err
	}

	state, err := s.deps.Selection.Current(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.Campus == nil {
		return nil, apperror.Validation("select a campus first")
	}
	fee, err := s.deps.Fees.Resolve(ctx, state.Campus.ID)
	if err != nil {
		return nil, err
	}

	var (
		o      *order.Order
		totals pricing.Totals
	)
	err = s.deps.Carts.Checkout(ctx, sessionID, func(c *cart.Cart) error {
		if c.IsEmpty() {
			return apperror.Validation("cart is empty")
		}
		if err := checkCampus(c, state.Campus.ID); err != nil {
			return err
		}
		restaurantIDs, err := s.checkOpen(ctx, c)
		if err != nil {
			return err
		}

		totals = pricing.ComputeTotals(c.Total(), req.Persons, fee)
		o = buildOrder(req, c, state, restaurantIDs, totals, fee)
		o.SessionID = sessionID
		return s.deps.Orders.Create(ctx, o, actor, s.deps.Hooks...)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"reference":   o.Reference,
		"campus_id":   o.CampusID,
		"grand_total": totals.GrandTotal,
	}).Info("Order placed")

	return &Result{
		Order:  o,
		Totals: totals,
		Payee: Payee{
			Name:          fee.PayeeName,
			BankName:      fee.BankName,
			AccountNumber: fee.AccountNumber,
		},
	}, nil
}

// checkOpen rejects the checkout when any restaurant in the cart is closed.
// Catalog hours win over the hours captured on the line.
func (s *Service) checkOpen(ctx context.Context, c *cart.Cart) ([]uint, error) {
	var ids []uint
	seen := make(map[uint]bool)
	for _, line := range c.Lines {
		id, err := strconv.ParseUint(line.RestaurantRef, 10, 64)
		if err != nil || id == 0 || seen[uint(id)] {
			continue
		}
		seen[uint(id)] = true
		ids = append(ids, uint(id))
	}

	known := map[uint]catalog.Restaurant{}
	if len(ids) > 0 && s.deps.Restaurants != nil {
		var err error
		if known, err = s.deps.Restaurants.RestaurantsByIDs(ctx, ids); err != nil {
			return nil, err
		}
	}

	now := s.now()
	checked := make(map[string]bool)
	for _, line := range c.Lines {
		if checked[line.RestaurantLabel] {
			continue
		}
		checked[line.RestaurantLabel] = true

		window, ok := lineWindow(line, known)
		if !ok {
			continue
		}
		if !availability.IsOpen(window, now) {
			msg := fmt.Sprintf("%s is closed right now", line.RestaurantLabel)
			if opens := availability.NextOpeningTime(window); opens != "" {
				msg = fmt.Sprintf("%s is closed right now, it opens at %s", line.RestaurantLabel, opens)
			}
			return nil, apperror.Conflict(msg)
		}
	}
	return ids, nil
}

func lineWindow(line cart.Line, known map[uint]catalog.Restaurant) (availability.Window, bool) {
	if id, err := strconv.ParseUint(line.RestaurantRef, 10, 64); err == nil {
		if r, ok := known[uint(id)]; ok {
			return r.Window(), true
		}
	}
	if line.Restaurant != nil {
		return line.Restaurant.Window(), true
	}
	return availability.Window{}, false
}

func checkCampus(c *cart.Cart, campusID uint) error {
	want := strconv.FormatUint(uint64(campusID), 10)
	for _, ref := range c.CampusRefs() {
		if ref != want {
			return apperror.Conflict("cart contains items from another campus")
		}
	}
	return nil
}

func buildOrder(req *SubmitOrderRequest, c *cart.Cart, state *session.State, restaurantIDs []uint, totals pricing.Totals, fee pricing.FeeConfig) *order.Order {
	items := make([]order.Item, 0, len(c.Lines))
	for _, line := range c.Lines {
		it := order.Item{
			Name:       line.ItemName,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			Restaurant: line.RestaurantLabel,
		}
		if id, err := strconv.ParseUint(line.RestaurantRef, 10, 64); err == nil {
			it.RestaurantID = uint(id)
		}
		items = append(items, it)
	}
	if restaurantIDs == nil {
		restaurantIDs = []uint{}
	}

	o := &order.Order{
		CampusID:             state.Campus.ID,
		CampusName:           state.Campus.Name,
		CustomerName:         req.Name,
		Phone:                req.Phone,
		Email:                req.Email,
		Gender:               req.Gender,
		Address:              req.Address,
		Persons:              req.Persons,
		ItemTotal:            totals.ItemTotal,
		DeliveryCharge:       totals.DeliveryCharge,
		GrandTotal:           totals.GrandTotal,
		CartItemsText:        order.FormatItemsText(items),
		CartItemsArray:       items,
		RestaurantNames:      c.Restaurants(),
		RestaurantIDs:        restaurantIDs,
		PaymentScreenshotURL: req.PaymentScreenshotURL,
		PayeeName:            fee.PayeeName,
		PayeeBank:            fee.BankName,
		PayeeAccount:         fee.AccountNumber,
		Notes:                req.Notes,
	}
	if state.University != nil {
		o.UniversityID = state.University.ID
		o.UniversityName = state.University.Name
	} else {
		o.UniversityID = state.Campus.UniversityID
	}
	return o
}

func normalize(req *SubmitOrderRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = strings.TrimSpace(req.Email)
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))
	req.Address = strings.TrimSpace(req.Address)
	req.PaymentScreenshotURL = strings.TrimSpace(req.PaymentScreenshotURL)
	req.Notes = strings.TrimSpace(req.Notes)
	req.RecaptchaToken = strings.TrimSpace(req.RecaptchaToken)
}

func validate(req *SubmitOrderRequest) error {
	err := binding.Validator.ValidateStruct(req)
	if verr := ValidationError(err); verr != nil {
		return verr
	}
	return err
}

// ValidationError turns a failed form rule into a validation error naming
// the first bad field. It returns nil when err is not a rule failure.
func ValidationError(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return nil
	}
	msg, ok := fieldMessages[fields[0].StructField()]
	if !ok {
		msg = strings.ToLower(fields[0].StructField()) + " is invalid"
	}
	return apperror.New(apperror.TypeValidation, msg, err)
}
