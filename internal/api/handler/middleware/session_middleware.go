package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pmmbridge"
)

// SessionMiddleware ensures every request carries a session identifier
// cookie. The cookie holds an opaque id only; all state stays server-side.
func SessionMiddleware(cfg pmmbridge.AppConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cfg.SessionConfig.CookieName)
		if err != nil || id == "" {
			id = uuid.NewString()
			c.SetCookie(
				cfg.SessionConfig.CookieName,
				id,
				int(cfg.SessionConfig.TTL.Seconds()),
				"/",
				"",
				cfg.SessionConfig.CookieSecure,
				true,
			)
		}
		c.Set("sessionID", id)
		c.Next()
	}
}
