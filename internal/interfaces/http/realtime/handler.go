// internal/interfaces/http/realtime/handler.go
package realtime

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/your-org/campus-delivery-backend/internal/interfaces/http/middleware"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
	"github.com/your-org/campus-delivery-backend/internal/pkg/auth"
)

// Handler upgrades dashboard requests to the order feed
type Handler struct {
	hub           *Hub
	authenticator middleware.Authenticator
	upgrader      websocket.Upgrader
	logger        logrus.FieldLogger
}

// NewHandler creates a feed handler. Browsers may only connect from the
// allowed origins; clients without an Origin header are accepted.
func NewHandler(hub *Hub, authenticator middleware.Authenticator, allowedOrigins []string, logger logrus.FieldLogger) *Handler {
	return &Handler{
		hub:           hub,
		authenticator: authenticator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || middleware.IsOriginAllowed(origin, allowedOrigins)
			},
		},
		logger: logger,
	}
}

// ServeWS handles GET /ws/orders?campusId=&token=
func (h *Handler) ServeWS(c *gin.Context) {
	// browsers cannot set headers on websocket requests, so the token may come in the query
	token := auth.ExtractTokenFromHeader(c.GetHeader("Authorization"))
	if token == "" {
		token = c.Query("token")
	}
	if token == "" {
		respondError(c, apperror.Unauthorized("token required"))
		return
	}

	principal, err := h.authenticator.Authenticate(token)
	if err != nil {
		respondError(c, apperror.New(apperror.TypeAuth, "invalid or expired token", err))
		return
	}

	var campusID uint
	if raw := c.Query("campusId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondError(c, apperror.Validation("invalid campusId"))
			return
		}
		campusID = uint(id)
	}

	if !principal.Can(auth.ActionViewOrders, auth.Scope{CampusID: campusID}) {
		respondError(c, apperror.Forbidden("not allowed to watch this campus"))
		return
	}

	var restaurantID uint
	switch principal.Role {
	case auth.RoleCampusAdmin:
		campusID = principal.CampusID
	case auth.RoleRestaurantManager:
		campusID = principal.CampusID
		restaurantID = principal.RestaurantID
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.WithError(err).Warn("order feed upgrade failed")
		return
	}

	client := NewClient(h.hub, conn, principal.UserID, campusID, restaurantID)
	h.hub.Attach(client)
	go client.WritePump()
	client.ReadPump()
}

func respondError(c *gin.Context, err error) {
	status, body := apperror.Response(err)
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
