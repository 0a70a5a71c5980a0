package middleware

import (
	"bitwise74/secure-file-ops/internal/model"
	"bitwise74/secure-file-ops/internal/service"
	"bitwise74/secure-file-ops/pkg/security"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgUnauthenticated = "Could not validate credentials"
	msgForbidden       = "Insufficient permissions"
	msgUnverified      = "Email not verified"
)

// Authenticated resolves the bearer token into a user and stores it as user
// and its ID as userID. Every failure looks the same to the caller, the
// reason only ends up in the debug log
func Authenticated(tokens *security.TokenService, users *service.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetString("requestID")

		reject := func(reason string, err error) {
			zap.L().Debug("Rejected credentials", zap.String("reason", reason), zap.Error(err), zap.String("requestID", requestID))

			c.Header("WWW-Authenticate", "Bearer")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     msgUnauthenticated,
				"requestID": requestID,
			})
		}

		scheme, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			reject("missing bearer token", nil)
			return
		}

		claims, err := tokens.VerifySession(strings.TrimSpace(token))
		if err != nil {
			reject("invalid session token", err)
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), claims.Subject)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				reject("unknown subject", err)
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to resolve token subject", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by Authenticated
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, ok := c.Get("user")
	if !ok {
		return nil, false
	}

	u, ok := v.(*model.User)
	return u, ok && u != nil
}

// RequireRole only lets users with the given role through
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}

		if u.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     msgForbidden,
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}

// RequireVerified only lets users that confirmed their email through
func RequireVerified() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}

		if !u.Verified {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":     msgUnverified,
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":     msgUnauthenticated,
		"requestID": c.GetString("requestID"),
	})
}
