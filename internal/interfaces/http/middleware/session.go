// internal/interfaces/http/middleware/session.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionIDKey    = "session_id"
	sessionCookie   = "session_id"
	sessionIDHeader = "X-Session-ID"
)

// Session resolves the anonymous session id from the X-Session-ID header or
// the session cookie, issuing a new cookie when neither is present
func Session(cookieTTL int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader(sessionIDHeader)
		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = ""
		}
		if sessionID == "" {
			if cookie, err := c.Cookie(sessionCookie); err == nil {
				if _, err := uuid.Parse(cookie); err == nil {
					sessionID = cookie
				}
			}
		}
		if sessionID == "" {
			sessionID = uuid.New().String()
		}

		// refreshed on every request so an active session keeps its cookie
		c.SetCookie(sessionCookie, sessionID, cookieTTL, "/", "", secure, true)
		c.Header(sessionIDHeader, sessionID)
		c.Set(sessionIDKey, sessionID)
		c.Next()
	}
}

// SessionIDFromContext returns the session id set by Session
func SessionIDFromContext(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
