package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"crewtrack.in/crewtrack/security"
	"crewtrack.in/crewtrack/web/common"
)

const identityKey = "identity"

// Authentication checks for a valid Bearer token (header or cookie) and
// places the parsed identity claims into the gin context.
func Authentication(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := ""

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Try to get from cookie
			cookie, err := c.Cookie("crewtrack.ApplicationCookie")
			if err != nil {
				// Cookie not found either
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = cookie
		} else {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}

			tokenStr = parts[1]
		}

		claims, err := security.ParseIdentityToken(tokenStr, jwtSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, common.NewErrorResponse("invalid or expired token"))
			return
		}

		c.Set(identityKey, claims)
		c.Next()
	}
}

// GetIdentity returns the claims placed by Authentication, or nil.
func GetIdentity(c *gin.Context) *security.IdentityClaims {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*security.IdentityClaims)
	return claims
}
