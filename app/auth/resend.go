package auth

import (
	"bitwise74/secure-file-ops/internal"
	"bitwise74/secure-file-ops/pkg/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func ResendVerification(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user, _ := middleware.CurrentUser(c)

	if user.Verified {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Email already verified",
			"requestID": requestID,
		})
		return
	}

	if err := sendVerification(d, user.Email); err != nil {
		c.JSON(http.StatusNotImplemented, gin.H{
			"error":     "Failed to send verification email: mail provider unavailable",
			"requestID": requestID,
		})

		zap.L().Error("Failed to send verification email", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification Email Sent",
	})
}
