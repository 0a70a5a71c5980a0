package auth

import (
	"bitwise74/secure-file-ops/internal"
	"bitwise74/secure-file-ops/internal/service"
	"bitwise74/secure-file-ops/pkg/security"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// VerifyEmail redeems the token sent by mail. The token is the only
// credential, no session is needed
func VerifyEmail(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid token",
			"requestID": requestID,
		})
		return
	}

	claims, err := d.Tokens.VerifyVerification(token)
	if err != nil {
		msg := "Invalid token"
		if errors.Is(err, security.ErrTokenExpired) {
			msg = "Verification token has expired"
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     msg,
			"requestID": requestID,
		})

		zap.L().Debug("Rejected verification token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := d.Users.MarkVerified(c.Request.Context(), claims.Email); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "User not found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Email verified successfully",
	})
}
