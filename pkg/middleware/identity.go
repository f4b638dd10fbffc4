package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareit/service-booking/pkg/response"
)

// UserIDHeader carries the caller's pre-authenticated user id.
const UserIDHeader = "X-Sharer-User-Id"

const userIDKey = "user_id"

// IdentityMiddleware requires a positive numeric X-Sharer-User-Id header.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(UserIDHeader)
		if raw == "" {
			response.BadRequest(c, "missing "+UserIDHeader+" header")
			return
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.BadRequest(c, "invalid "+UserIDHeader+" header")
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// GetUserID returns the id stored by IdentityMiddleware.
func GetUserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
