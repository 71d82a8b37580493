package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/planhive/planhive/internal/common/config"
)

// CORSMiddleware applies the explicit cross-origin allow-list. Origins
// not on the list never receive an Access-Control-Allow-Origin header.
func CORSMiddleware(cors *config.CORSConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			c.Next()
			return
		}

		allowed := false
		for _, allowedOrigin := range cors.AllowOrigins {
			if origin == allowedOrigin {
				allowed = true
				c.Header("Access-Control-Allow-Origin", allowedOrigin)
				break
			}
		}

		if allowed {
			if len(cors.AllowMethods) > 0 {
				c.Header("Access-Control-Allow-Methods", strings.Join(cors.AllowMethods, ", "))
			}
			if len(cors.AllowHeaders) > 0 {
				c.Header("Access-Control-Allow-Headers", strings.Join(cors.AllowHeaders, ", "))
			}
			if len(cors.ExposeHeaders) > 0 {
				c.Header("Access-Control-Expose-Headers", strings.Join(cors.ExposeHeaders, ", "))
			}
			if cors.AllowCredentials {
				c.Header("Access-Control-Allow-Credentials", "true")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
