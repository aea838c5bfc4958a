// internal/interfaces/http/handlers/response.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/your-org/campus-delivery-backend/internal/pkg/apperror"
)

// respondError writes the normalized error body and records err for the request log
func respondError(c *gin.Context, err error) {
	status, body := apperror.Response(err)
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}

func invalidRequest(err error) error {
	return apperror.New(apperror.TypeValidation, "invalid request data: "+err.Error(), err)
}

// pathID parses a positive numeric path parameter
func pathID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid " + name)
	}
	return uint(id), nil
}

// queryID parses an optional numeric query parameter; absent means zero
func queryID(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, apperror.Validation("invalid " + name)
	}
	return uint(id), nil
}
