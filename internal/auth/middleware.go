package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"skm_agent_backend/platform/config"
)

// ContextOperatorKey is the gin context key holding the authenticated
// operator name.
const ContextOperatorKey = "operator"

// Required returns middleware that validates operator access tokens.
// Supports token via Authorization header (Bearer) or query param (for SSE).
func Required(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		rawToken, ok := extractBearerToken(c.GetHeader("Authorization"))
		if !ok {
			// EventSource cannot set headers, so the stream passes the
			// token in the query string.
			rawToken = c.Query("token")
			if rawToken == "" {
				abortUnauthorized(c, "missing token")
				return
			}
		}

		operator, err := ParseToken(rawToken, cfg)
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(ContextOperatorKey, operator)
		c.Next()
	}
}

func extractBearerToken(authHeader string) (string, bool) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	rawToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if rawToken == "" {
		return "", false
	}
	return rawToken, true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
