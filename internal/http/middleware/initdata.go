package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	initdata "github.com/telegram-mini-apps/init-data-golang"
)

// Context keys to store Telegram init-data derived fields.
const (
	UserCtxParam        = "user"
	UserIdCtxParam      = "user_id"
	DisplayNameCtxParam = "display_name"
)

// InitDataMiddleware validates Telegram Mini Apps init-data and stores the
// parsed user in the context. It expects init-data in one of the following
// places (checked in order):
//  1. Header: "X-Telegram-Init-Data"
//  2. Header: "init_data"
//  3. Query:  "init_data"
//
// If token is empty, the middleware answers 500 to avoid insecure defaults.
func InitDataMiddleware(token string, expIn time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "init-data validation is not configured"})
			return
		}

		raw := c.GetHeader("X-Telegram-Init-Data")
		if raw == "" {
			raw = c.GetHeader("init_data")
		}
		if raw == "" {
			raw = c.Query("init_data")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing init_data"})
			return
		}

		// expIn==0 disables the TTL check as per library contract
		if err := initdata.Validate(raw, token, expIn); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid init_data"})
			return
		}

		parsed, err := initdata.Parse(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid init_data format"})
			return
		}
		if parsed.User.ID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "init_data has no user"})
			return
		}

		c.Set(UserCtxParam, parsed.User)
		c.Set(UserIdCtxParam, parsed.User.ID)
		c.Set(DisplayNameCtxParam, DisplayName(parsed.User))
		c.Next()
	}
}

// DisplayName prefers @username and falls back to the full name.
func DisplayName(u initdata.User) string {
	if u.Username != "" {
		return "@" + u.Username
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserID returns the authenticated user id, or 0.
func UserID(c *gin.Context) int64 {
	if v, ok := c.Get(UserIdCtxParam); ok {
		if id, ok := v.(int64); ok {
			return id
		}
	}
	return 0
}

// RequireAdmin allows only ids from the configured admin set.
func RequireAdmin(admins map[int64]struct{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := UserID(c)
		if id == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Telegram Init Data required"})
			return
		}
		if _, ok := admins[id]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
