package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/your-org/campus-delivery-backend/internal/config"
	"github.com/your-org/campus-delivery-backend/internal/domain/analytics"
	"github.com/your-org/campus-delivery-backend/internal/domain/cart"
	"github.com/your-org/campus-delivery-backend/internal/domain/catalog"
	"github.com/your-org/campus-delivery-backend/internal/domain/checkout"
	"github.com/your-org/campus-delivery-backend/internal/domain/ledger"
	"github.com/your-org/campus-delivery-backend/internal/domain/order"
	"github.com/your-org/campus-delivery-backend/internal/domain/pricing"
	"github.com/your-org/campus-delivery-backend/internal/domain/session"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/middleware"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
	"github.com/your-org/campus-delivery-backend/internal/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var jwtManager = auth.NewJWTManager(&config.Config{
	JWT: config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef"},
})

func bearer(t *testing.T, p auth.Principal) string {
	t.Helper()
	tok, err := jwtManager.GenerateToken(p, time.Hour)
	require.NoError(t, err)
	return "Bearer " + tok
}

var (
	superAdmin  = auth.Principal{UserID: "root", Email: "root@campus.test", Role: auth.RoleSuperAdmin}
	campusAdmin = auth.Principal{UserID: "ca", Email: "lahore@campus.test", Role: auth.RoleCampusAdmin, CampusID: 3}
	manager     = auth.Principal{UserID: "rm", Email: "pizza@campus.test", Role: auth.RoleRestaurantManager, CampusID: 3, RestaurantID: 7}
	student     = auth.Principal{UserID: "st", Role: auth.RoleUser}
)

type request struct {
	method    string
	path      string
	body      interface{}
	principal *auth.Principal
	sessionID string
}

func do(t *testing.T, r *gin.Engine, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if req.body != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(req.body))
	}
	httpReq := httptest.NewRequest(req.method, req.path, &body)
	httpReq.Header.Set("Content-Type", "application/json")
	if req.principal != nil {
		httpReq.Header.Set("Authorization", bearer(t, *req.principal))
	}
	if req.sessionID != "" {
		httpReq.Header.Set("X-Session-ID", req.sessionID)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httpReq)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest))
}

func errorType(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error apperror.Body `json:"error"`
	}
	decode(t, w, &body)
	return string(body.Error.Type)
}

// Cart

type fakeSelection struct {
	state *session.State
}

func (f *fakeSelection) Current(context.Context, string) (*session.State, error) {
	return f.state, nil
}

func (f *fakeSelection) SelectUniversity(_ context.Context, _ string, id uint) (*session.State, error) {
	if id == 99 {
		return nil, apperror.Wrap(apperror.TypeNotFound, catalog.ErrUniversityNotFound)
	}
	f.state.University = &session.UniversitySelection{ID: id, Name: "FAST"}
	if f.state.Campus != nil && f.state.Campus.UniversityID != id {
		f.state.Campus = nil
	}
	return f.state, nil
}

func (f *fakeSelection) SelectCampus(_ context.Context, _ string, id uint) (*session.State, error) {
	f.state.Campus = &session.CampusSelection{ID: id, UniversityID: 1, Name: "Lahore"}
	if f.state.University == nil {
		f.state.University = &session.UniversitySelection{ID: 1, Name: "FAST"}
	}
	return f.state, nil
}

func (f *fakeSelection) Clear(context.Context, string) error {
	f.state = &session.State{}
	return nil
}

type fakeQuoter struct {
	persons  int
	campusID uint
}

func (f *fakeQuoter) Quote(_ context.Context, _ string, persons int, campusID uint) (*checkout.Quote, error) {
	f.persons = persons
	f.campusID = campusID
	fee := pricing.DefaultFeeConfig
	return &checkout.Quote{Totals: pricing.ComputeTotals(400, persons, fee), Fee: fee, Persons: persons}, nil
}

func cartRouter(t *testing.T) (*gin.Engine, *fakeSelection, *fakeQuoter) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewRedisStore(client, time.Hour)
	carts := cart.NewService(store, nil, nil, logger.Discard())
	selection := &fakeSelection{state: &session.State{}}
	quoter := &fakeQuoter{}
	h := NewCartHandler(carts, selection, quoter)

	r := gin.New()
	api := r.Group("/api", middleware.Session(3600, false))
	api.GET("/cart", h.GetCart)
	api.POST("/cart/items", h.AddToCart)
	api.POST("/cart/items/increment", h.IncrementItem)
	api.POST("/cart/items/decrement", h.DecrementItem)
	api.DELETE("/cart/items", h.RemoveItem)
	api.DELETE("/cart", h.ClearCart)
	api.GET("/cart/totals", h.GetTotals)
	api.GET("/session/selection", h.GetSelection)
	api.PUT("/session/selection", h.UpdateSelection)
	api.DELETE("/session/selection", h.ClearSelection)
	return r, selection, quoter
}

type cartEnvelope struct {
	Data cart.CartResponse `json:"data"`
}

func TestCartFlow(t *testing.T) {
	r, _, _ := cartRouter(t)
	sid := uuid.New().String()

	burger := map[string]interface{}{
		"itemName":        "Burger",
		"unitPrice":       200,
		"restaurantLabel": "Pizza Hut",
		"restaurantRef":   "7",
	}
	for i := 0; i < 2; i++ {
		w := do(t, r, request{method: http.MethodPost, path: "/api/cart/items", body: burger, sessionID: sid})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := do(t, r, request{method: http.MethodGet, path: "/api/cart", sessionID: sid})
	require.Equal(t, http.StatusOK, w.Code)
	var got cartEnvelope
	decode(t, w, &got)
	require.Len(t, got.Data.Items, 1)
	assert.Equal(t, 2, got.Data.Items[0].Quantity)
	assert.Equal(t, 400.0, got.Data.Total)
	assert.Equal(t, []string{"Pizza Hut"}, got.Data.Restaurants)

	key := map[string]string{"itemName": "Burger", "restaurantLabel": "Pizza Hut"}
	w = do(t, r, request{method: http.MethodPost, path: "/api/cart/items/increment", body: key, sessionID: sid})
	decode(t, w, &got)
	assert.Equal(t, 3, got.Data.Count)

	w = do(t, r, request{method: http.MethodPost, path: "/api/cart/items/decrement", body: key, sessionID: sid})
	decode(t, w, &got)
	assert.Equal(t, 2, got.Data.Count)

	w = do(t, r, request{method: http.MethodDelete, path: "/api/cart/items", body: key, sessionID: sid})
	decode(t, w, &got)
	assert.Empty(t, got.Data.Items)
	assert.Equal(t, 0.0, got.Data.Total)
}

func TestCartIsPerSession(t *testing.T) {
	r, _, _ := cartRouter(t)

	body := map[string]interface{}{"itemName": "Tea", "unitPrice": 50, "restaurantLabel": "Dhaba"}
	w := do(t, r, request{method: http.MethodPost, path: "/api/cart/items", body: body, sessionID: uuid.New().String()})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, request{method: http.MethodGet, path: "/api/cart", sessionID: uuid.New().String()})
	var got cartEnvelope
	decode(t, w, &got)
	assert.Empty(t, got.Data.Items)
}

func TestAddToCartValidation(t *testing.T) {
	r, _, _ := cartRouter(t)

	cases := map[string]map[string]interface{}{
		"missing name":       {"unitPrice": 10, "restaurantLabel": "Dhaba"},
		"missing restaurant": {"itemName": "Tea", "unitPrice": 10},
		"negative price":     {"itemName": "Tea", "unitPrice": -1, "restaurantLabel": "Dhaba"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, request{method: http.MethodPost, path: "/api/cart/items", body: body, sessionID: uuid.New().String()})
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "validation", errorType(t, w))
		})
	}
}

func TestCartTotals(t *testing.T) {
	r, _, quoter := cartRouter(t)

	w := do(t, r, request{method: http.MethodGet, path: "/api/cart/totals?persons=3&campusId=3"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3, quoter.persons)
	assert.EqualValues(t, 3, quoter.campusID)

	var got struct {
		Data checkout.Quote `json:"data"`
	}
	decode(t, w, &got)
	assert.Equal(t, 850.0, got.Data.Totals.GrandTotal)

	w = do(t, r, request{method: http.MethodGet, path: "/api/cart/totals?persons=0"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSelection(t *testing.T) {
	r, selection, _ := cartRouter(t)

	w := do(t, r, request{method: http.MethodPut, path: "/api/session/selection", body: map[string]uint{"campusId": 3}})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, selection.state.Campus)
	assert.EqualValues(t, 3, selection.state.Campus.ID)

	w = do(t, r, request{method: http.MethodPut, path: "/api/session/selection", body: map[string]uint{"universityId": 2}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, selection.state.Campus, "switching university drops the campus")

	w = do(t, r, request{method: http.MethodPut, path: "/api/session/selection", body: map[string]uint{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, request{method: http.MethodPut, path: "/api/session/selection", body: map[string]uint{"universityId": 99}})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Checkout

type fakeSubmitter struct {
	sessionID string
	actor     string
	err       error
}

func (f *fakeSubmitter) Submit(_ context.Context, sessionID, _, actor string, req *checkout.SubmitOrderRequest) (*checkout.Result, error) {
	f.sessionID = sessionID
	f.actor = actor
	if f.err != nil {
		return nil, f.err
	}
	return &checkout.Result{
		Order:  &order.Order{ID: 1, Reference: "ORD-1", CustomerName: req.Name},
		Totals: pricing.Totals{ItemTotal: 400, DeliveryCharge: 450, GrandTotal: 850},
	}, nil
}

func checkoutForm() map[string]interface{} {
	return map[string]interface{}{
		"name":                 "Ali",
		"phone":                "0300-1234567",
		"gender":               "male",
		"address":              "Hostel 4, Room 12",
		"persons":              2,
		"paymentScreenshotURL": "https://cdn.example.com/p.png",
		"recaptchaToken":       "token",
	}
}

func checkoutRouter(submitter OrderSubmitter) *gin.Engine {
	h := NewCheckoutHandler(submitter)
	r := gin.New()
	r.Use(middleware.Session(3600, false), middleware.OptionalAuth(jwtManager))
	r.POST("/api/checkout", h.Submit)
	r.POST("/submit-order", h.Submit)
	return r
}

func TestCheckoutSubmit(t *testing.T) {
	submitter := &fakeSubmitter{}
	r := checkoutRouter(submitter)
	sid := uuid.New().String()

	for _, path := range []string{"/api/checkout", "/submit-order"} {
		w := do(t, r, request{method: http.MethodPost, path: path, body: checkoutForm(), sessionID: sid})
		require.Equal(t, http.StatusCreated, w.Code, path)

		var got struct {
			Data checkout.Result `json:"data"`
		}
		decode(t, w, &got)
		assert.Equal(t, "ORD-1", got.Data.Order.Reference)
		assert.Equal(t, 850.0, got.Data.Totals.GrandTotal)
		assert.Equal(t, sid, submitter.sessionID)
		assert.Equal(t, "guest", submitter.actor)
	}
}

func TestCheckoutErrorsAreNormalized(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{apperror.Validation("your cart is empty"), http.StatusBadRequest, "validation"},
		{apperror.Conflict("Pizza Hut is closed right now"), http.StatusConflict, "conflict"},
		{apperror.Network("recaptcha unavailable", nil), http.StatusBadGateway, "network"},
		{context.DeadlineExceeded, http.StatusBadGateway, "network"},
	}
	for _, tc := range cases {
		r := checkoutRouter(&fakeSubmitter{err: tc.err})
		w := do(t, r, request{method: http.MethodPost, path: "/api/checkout", body: checkoutForm()})
		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.kind, errorType(t, w))
	}
}

func TestCheckoutRejectsInvalidFormBeforeSubmitting(t *testing.T) {
	cases := []struct {
		field   string
		value   interface{}
		message string
	}{
		{"name", "   ", "name is required"},
		{"phone", "call me", "a valid phone number is required"},
		{"gender", "unknown", "gender must be male or female"},
		{"persons", 0, "persons must be at least 1"},
		{"paymentScreenshotURL", "not a url", "a valid payment screenshot URL is required"},
	}
	for _, tc := range cases {
		submitter := &fakeSubmitter{}
		r := checkoutRouter(submitter)

		form := checkoutForm()
		form[tc.field] = tc.value
		w := do(t, r, request{method: http.MethodPost, path: "/api/checkout", body: form})
		require.Equal(t, http.StatusBadRequest, w.Code, tc.field)

		var got struct {
			Error apperror.Body `json:"error"`
		}
		decode(t, w, &got)
		assert.Equal(t, apperror.TypeValidation, got.Error.Type)
		assert.Equal(t, tc.message, got.Error.Message)
		assert.Empty(t, submitter.sessionID, "submitter reached for %s", tc.field)
	}
}

// Orders

type fakeOrders struct {
	orders  map[uint]*order.Order
	listReq *order.OrderListRequest
	actor   string
}

func (f *fakeOrders) List(_ context.Context, req *order.OrderListRequest) (*order.OrderResponse, error) {
	f.listReq = req
	return &order.OrderResponse{Orders: []order.Order{}}, nil
}

func (f *fakeOrders) Get(_ context.Context, id uint) (*order.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, apperror.Wrap(apperror.TypeNotFound, order.ErrOrderNotFound)
	}
	return o, nil
}

func (f *fakeOrders) GetByReference(_ context.Context, reference string) (*order.Order, error) {
	for _, o := range f.orders {
		if o.Reference == reference {
			return o, nil
		}
	}
	return nil, apperror.Wrap(apperror.TypeNotFound, order.ErrOrderNotFound)
}

func (f *fakeOrders) UpdateStatus(_ context.Context, id uint, to order.OrderStatus, _, actor string) (*order.Order, bool, error) {
	o := f.orders[id]
	from := o.EffectiveStatus()
	if err := order.CheckTransition(from, to); err != nil {
		return nil, false, apperror.Wrap(apperror.TypeConflict, err)
	}
	f.actor = actor
	if from == to {
		return o, false, nil
	}
	o.Status = to
	return o, true, nil
}

type fakeReceipts struct{}

func (fakeReceipts) GenerateReceipt(o *order.Order) ([]byte, error) {
	return []byte("%PDF-" + o.Reference), nil
}

func orderRouter(orders *fakeOrders) *gin.Engine {
	h := NewOrderHandler(orders, fakeReceipts{})
	r := gin.New()
	r.Use(middleware.Session(3600, false))

	staff := r.Group("/api/orders", middleware.Authenticate(jwtManager), middleware.RequireStaff())
	staff.GET("", h.ListOrders)
	staff.GET("/:id", h.GetOrder)
	staff.PATCH("/:id/status", h.UpdateOrderStatus)
	staff.GET("/:id/receipt", h.GetReceipt)

	r.GET("/api/my-orders/:reference", h.TrackOrder)
	r.GET("/api/my-orders/:reference/receipt", h.GetMyReceipt)
	return r
}

func sampleOrders(sessionID string) *fakeOrders {
	return &fakeOrders{orders: map[uint]*order.Order{
		1: {ID: 1, Reference: "ORD-1", SessionID: sessionID, CampusID: 3, Status: order.OrderStatusPending, RestaurantIDs: datatypes.JSONSlice[uint]{7}},
		2: {ID: 2, Reference: "ORD-2", CampusID: 4, Status: order.OrderStatusPending, RestaurantIDs: datatypes.JSONSlice[uint]{8}},
		3: {ID: 3, Reference: "ORD-3", CampusID: 3, Status: order.OrderStatusPending},
	}}
}

func TestListOrdersIsScopedByRole(t *testing.T) {
	orders := sampleOrders("")
	r := orderRouter(orders)

	w := do(t, r, request{method: http.MethodGet, path: "/api/orders?campusId=4", principal: &campusAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, orders.listReq.CampusID, "campus admins cannot widen their scope")

	w = do(t, r, request{method: http.MethodGet, path: "/api/orders", principal: &manager})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, orders.listReq.RestaurantID)

	w = do(t, r, request{method: http.MethodGet, path: "/api/orders?campusId=4&status=pending", principal: &superAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 4, orders.listReq.CampusID)
	assert.Equal(t, order.OrderStatusPending, orders.listReq.Status)

	w = do(t, r, request{method: http.MethodGet, path: "/api/orders", principal: &student})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, request{method: http.MethodGet, path: "/api/orders"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestManagerCannotReachOrdersWithoutRestaurants(t *testing.T) {
	orders := sampleOrders("")
	r := orderRouter(orders)

	w := do(t, r, request{method: http.MethodGet, path: "/api/orders/3", principal: &manager})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, request{method: http.MethodGet, path: "/api/orders/3/receipt", principal: &manager})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, request{method: http.MethodPatch, path: "/api/orders/3/status", body: map[string]string{"status": "accepted"}, principal: &manager})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, order.OrderStatusPending, orders.orders[3].Status)

	w = do(t, r, request{method: http.MethodGet, path: "/api/orders/3", principal: &campusAdmin})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetOrderChecksScope(t *testing.T) {
	r := orderRouter(sampleOrders(""))

	w := do(t, r, request{method: http.MethodGet, path: "/api/orders/1", principal: &manager})
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Data struct {
			Reference    string              `json:"reference"`
			NextStatuses []order.OrderStatus `json:"nextStatuses"`
		} `json:"data"`
	}
	decode(t, w, &got)
	assert.Equal(t, "ORD-1", got.Data.Reference)
	assert.Equal(t, []order.OrderStatus{order.OrderStatusAccepted, order.OrderStatusCancelled}, got.Data.NextStatuses)

	w = do(t, r, request{method: http.MethodGet, path: "/api/orders/2", principal: &manager})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, request{method: http.MethodGet, path: "/api/orders/2", principal: &campusAdmin})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, request{method: http.MethodGet, path: "/api/orders/404", principal: &superAdmin})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, r, request{method: http.MethodGet, path: "/api/orders/abc", principal: &superAdmin})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	orders := sampleOrders("")
	r := orderRouter(orders)
	path := "/api/orders/1/status"

	w := do(t, r, request{method: http.MethodPatch, path: path, body: map[string]string{"status": "delivered"}, principal: &manager})
	assert.Equal(t, http.StatusConflict, w.Code, "pending cannot jump to delivered")
	assert.Equal(t, "conflict", errorType(t, w))

	w = do(t, r, request{method: http.MethodPatch, path: path, body: map[string]string{"status": "accepted"}, principal: &manager})
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Changed bool `json:"changed"`
	}
	decode(t, w, &got)
	assert.True(t, got.Changed)
	assert.Equal(t, order.OrderStatusAccepted, orders.orders[1].Status)
	assert.Equal(t, "pizza@campus.test", orders.actor)

	w = do(t, r, request{method: http.MethodPatch, path: path, body: map[string]string{"status": "accepted"}, principal: &manager})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &got)
	assert.False(t, got.Changed, "same status is a no-op")

	w = do(t, r, request{method: http.MethodPatch, path: "/api/orders/2/status", body: map[string]string{"status": "accepted"}, principal: &manager})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, request{method: http.MethodPatch, path: path, body: map[string]string{}, principal: &superAdmin})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReceipts(t *testing.T) {
	sid := uuid.New().String()
	r := orderRouter(sampleOrders(sid))

	w := do(t, r, request{method: http.MethodGet, path: "/api/orders/1/receipt", principal: &campusAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "receipt-ORD-1.pdf")
	assert.Equal(t, "%PDF-ORD-1", w.Body.String())

	w = do(t, r, request{method: http.MethodGet, path: "/api/my-orders/ORD-1/receipt", sessionID: sid})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, request{method: http.MethodGet, path: "/api/my-orders/ORD-1", sessionID: uuid.New().String()})
	assert.Equal(t, http.StatusNotFound, w.Code, "other sessions cannot see the order")

	w = do(t, r, request{method: http.MethodGet, path: "/api/my-orders/ORD-2", sessionID: sid})
	assert.Equal(t, http.StatusNotFound, w.Code, "orders without a session are not trackable")
}

// Settings

type fakeFees struct {
	campus    map[uint]pricing.CampusSetting
	global    float64
	updatedBy string
}

func (f *fakeFees) Resolve(_ context.Context, campusID uint) (pricing.FeeConfig, error) {
	fee := pricing.DefaultFeeConfig
	if s, ok := f.campus[campusID]; ok {
		fee.PerPersonCharge = s.DeliveryFee
	}
	return fee, nil
}

func (f *fakeFees) ListCampusSettings(context.Context) ([]pricing.CampusSetting, error) {
	var out []pricing.CampusSetting
	for _, s := range f.campus {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeFees) UpsertCampusSetting(_ context.Context, campusID uint, req *pricing.CampusSettingRequest, updatedBy string) (*pricing.CampusSetting, error) {
	s := pricing.CampusSetting{CampusID: campusID, DeliveryFee: req.DeliveryFee, UpdatedBy: updatedBy}
	f.campus[campusID] = s
	return &s, nil
}

func (f *fakeFees) GlobalDeliveryFee(context.Context) (float64, error) { return f.global, nil }

func (f *fakeFees) SetGlobalDeliveryFee(_ context.Context, fee float64, updatedBy string) error {
	f.global = fee
	f.updatedBy = updatedBy
	return nil
}

func settingsRouter(fees *fakeFees) *gin.Engine {
	h := NewSettingsHandler(fees)
	r := gin.New()
	r.GET("/api/campus-settings", h.ListCampusSettings)
	r.GET("/api/global-delivery-fee", h.GetGlobalDeliveryFee)
	r.GET("/api/fee-config", h.GetFeeConfig)

	admin := r.Group("/api", middleware.Authenticate(jwtManager))
	admin.PUT("/campus-settings/:campusId", h.UpsertCampusSetting)
	admin.PUT("/global-delivery-fee", h.SetGlobalDeliveryFee)
	return r
}

func TestSettings(t *testing.T) {
	fees := &fakeFees{campus: map[uint]pricing.CampusSetting{}, global: 150}
	r := settingsRouter(fees)

	w := do(t, r, request{method: http.MethodGet, path: "/api/campus-settings"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = do(t, r, request{method: http.MethodGet, path: "/api/global-delivery-fee"})
	assert.JSONEq(t, `{"deliveryFee":150}`, w.Body.String())

	body := map[string]float64{"deliveryFee": 120}
	w = do(t, r, request{method: http.MethodPut, path: "/api/campus-settings/3", body: body, principal: &campusAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lahore@campus.test", fees.campus[3].UpdatedBy)

	w = do(t, r, request{method: http.MethodPut, path: "/api/campus-settings/4", body: body, principal: &campusAdmin})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, request{method: http.MethodPut, path: "/api/campus-settings/3", body: body, principal: &manager})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, request{method: http.MethodPut, path: "/api/campus-settings/3", body: map[string]float64{"deliveryFee": 0}, principal: &superAdmin})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, request{method: http.MethodPut, path: "/api/global-delivery-fee", body: map[string]float64{"deliveryFee": 175}, principal: &campusAdmin})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(t, r, request{method: http.MethodPut, path: "/api/global-delivery-fee", body: map[string]float64{"deliveryFee": 175}, principal: &superAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 175.0, fees.global)
	assert.Equal(t, "root@campus.test", fees.updatedBy)

	w = do(t, r, request{method: http.MethodGet, path: "/api/fee-config?campusId=3"})
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Data pricing.FeeConfig `json:"data"`
	}
	decode(t, w, &got)
	assert.Equal(t, 120.0, got.Data.PerPersonCharge)
}

// Analytics

type fakeDashboard struct {
	req analytics.DashboardRequest
}

func (f *fakeDashboard) Dashboard(_ context.Context, req analytics.DashboardRequest) (*analytics.Dashboard, error) {
	f.req = req
	return &analytics.Dashboard{Period: analytics.ParsePeriod(req.Period), Days: req.Days}, nil
}

func TestDashboardScope(t *testing.T) {
	svc := &fakeDashboard{}
	h := NewAnalyticsHandler(svc)
	r := gin.New()
	r.GET("/api/analytics/dashboard", middleware.Authenticate(jwtManager), middleware.RequireStaff(), h.GetDashboard)

	w := do(t, r, request{method: http.MethodGet, path: "/api/analytics/dashboard?period=1month&days=30&campusId=9", principal: &campusAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 3, svc.req.Scope.CampusID)
	assert.Equal(t, "1month", svc.req.Period)
	assert.Equal(t, 30, svc.req.Days)

	w = do(t, r, request{method: http.MethodGet, path: "/api/analytics/dashboard", principal: &manager})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, svc.req.Scope.RestaurantID)

	w = do(t, r, request{method: http.MethodGet, path: "/api/analytics/dashboard?campusId=9", principal: &superAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 9, svc.req.Scope.CampusID)
	assert.Zero(t, svc.req.Scope.RestaurantID)

	w = do(t, r, request{method: http.MethodGet, path: "/api/analytics/dashboard?days=abc", principal: &superAdmin})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// Catalog

type fakeCatalog struct {
	CatalogService
	restaurants map[uint]catalog.Restaurant
	created     *catalog.MenuItemRequest
}

func (f *fakeCatalog) ListRestaurants(_ context.Context, campusID uint) ([]catalog.RestaurantView, error) {
	now := time.Date(2025, 3, 20, 13, 0, 0, 0, time.UTC)
	views := []catalog.RestaurantView{}
	for _, r := range f.restaurants {
		if campusID == 0 || r.CampusID == campusID {
			views = append(views, catalog.NewRestaurantView(r, now))
		}
	}
	return views, nil
}

func (f *fakeCatalog) GetRestaurant(_ context.Context, id uint) (*catalog.RestaurantView, error) {
	r, ok := f.restaurants[id]
	if !ok {
		return nil, apperror.Wrap(apperror.TypeNotFound, catalog.ErrRestaurantNotFound)
	}
	view := catalog.NewRestaurantView(r, time.Now())
	return &view, nil
}

func (f *fakeCatalog) CreateMenuItem(_ context.Context, req *catalog.MenuItemRequest) (*catalog.MenuItem, error) {
	f.created = req
	return &catalog.MenuItem{ID: 1, RestaurantID: req.RestaurantID, Name: req.Name, Price: req.Price}, nil
}

func TestCatalogEndpoints(t *testing.T) {
	svc := &fakeCatalog{restaurants: map[uint]catalog.Restaurant{
		7: {ID: 7, CampusID: 3, Name: "Pizza Hut", OpenTime: "11:00 AM", CloseTime: "11:00 PM"},
		8: {ID: 8, CampusID: 4, Name: "Dhaba", OpenTime: "9:00 AM", CloseTime: "12:00 PM"},
	}}
	h := NewCatalogHandler(svc)
	r := gin.New()
	r.GET("/api/restaurants", h.ListRestaurants)
	r.POST("/api/admin/menu-items", middleware.Authenticate(jwtManager), h.CreateMenuItem)

	w := do(t, r, request{method: http.MethodGet, path: "/api/restaurants?campusId=3"})
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Pizza Hut", list[0]["name"])
	assert.Equal(t, true, list[0]["isOpen"])

	w = do(t, r, request{method: http.MethodGet, path: "/api/restaurants?campusId=x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	item := map[string]interface{}{"restaurantId": 7, "name": "Fajita", "price": 1200}
	w = do(t, r, request{method: http.MethodPost, path: "/api/admin/menu-items", body: item, principal: &manager})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.NotNil(t, svc.created)
	assert.Equal(t, "Fajita", svc.created.Name)

	item["restaurantId"] = 8
	w = do(t, r, request{method: http.MethodPost, path: "/api/admin/menu-items", body: item, principal: &manager})
	assert.Equal(t, http.StatusForbidden, w.Code, "managers only edit their own menu")

	item["restaurantId"] = 404
	w = do(t, r, request{method: http.MethodPost, path: "/api/admin/menu-items", body: item, principal: &superAdmin})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Ledger

type fakeLedgerStore struct {
	known    uuid.UUID
	requeued []uuid.UUID
}

func (f *fakeLedgerStore) Stats(context.Context) (map[ledger.OutboxStatus]int64, error) {
	return map[ledger.OutboxStatus]int64{ledger.OutboxStatusPending: 2, ledger.OutboxStatusFailed: 1}, nil
}

func (f *fakeLedgerStore) Requeue(_ context.Context, id uuid.UUID, _ time.Time) error {
	if id != f.known {
		return ledger.ErrEntryNotFound
	}
	f.requeued = append(f.requeued, id)
	return nil
}

type fakeFlusher struct{ sent int }

func (f *fakeFlusher) Flush(context.Context) (int, error) { return f.sent, nil }

func ledgerRouter(h *LedgerHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/api/admin/ledger", middleware.Authenticate(jwtManager), middleware.RequireRole(auth.RoleSuperAdmin))
	g.GET("/stats", h.GetStats)
	g.POST("/flush", h.Flush)
	g.POST("/:id/requeue", h.Requeue)
	return r
}

func TestLedgerEndpoints(t *testing.T) {
	store := &fakeLedgerStore{known: uuid.New()}

	r := ledgerRouter(NewLedgerHandler(store, &fakeFlusher{sent: 4}))

	w := do(t, r, request{method: http.MethodGet, path: "/api/admin/ledger/stats", principal: &superAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		Data struct {
			Counts  map[string]int64 `json:"counts"`
			Enabled bool             `json:"enabled"`
		} `json:"data"`
	}
	decode(t, w, &stats)
	assert.True(t, stats.Data.Enabled)
	assert.EqualValues(t, 2, stats.Data.Counts["pending"])

	w = do(t, r, request{method: http.MethodPost, path: "/api/admin/ledger/flush", principal: &superAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sent":4`)

	w = do(t, r, request{method: http.MethodPost, path: "/api/admin/ledger/" + store.known.String() + "/requeue", principal: &superAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []uuid.UUID{store.known}, store.requeued)

	w = do(t, r, request{method: http.MethodPost, path: "/api/admin/ledger/" + uuid.NewString() + "/requeue", principal: &superAdmin})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", errorType(t, w))

	w = do(t, r, request{method: http.MethodPost, path: "/api/admin/ledger/nope/requeue", principal: &superAdmin})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, request{method: http.MethodGet, path: "/api/admin/ledger/stats", principal: &campusAdmin})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLedgerFlushWithoutSink(t *testing.T) {
	r := ledgerRouter(NewLedgerHandler(&fakeLedgerStore{}, nil))

	w := do(t, r, request{method: http.MethodPost, path: "/api/admin/ledger/flush", principal: &superAdmin})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", errorType(t, w))

	w = do(t, r, request{method: http.MethodGet, path: "/api/admin/ledger/stats", principal: &superAdmin})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"enabled":false`)
}
