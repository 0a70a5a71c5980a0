// Package auth holds the account endpoints, signup, login and email verification
package auth

import (
	"bitwise74/secure-file-ops/internal"
	"bitwise74/secure-file-ops/internal/model"
	"bitwise74/secure-file-ops/internal/service"
	"bitwise74/secure-file-ops/pkg/validators"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type signupBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func Signup(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	var data signupBody
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})

		zap.L().Debug("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	for _, check := range []error{
		validators.RoleValidator(data.Role),
		validators.EmailValidator(data.Email),
		validators.PasswordValidator(data.Password),
	} {
		if check != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     check.Error(),
				"requestID": requestID,
			})
			return
		}
	}

	hash, err := d.Argon.Hash(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user, err := d.Users.Create(c.Request.Context(), data.Email, hash, data.Role)
	if err != nil {
		if errors.Is(err, service.ErrConflict) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	token, err := d.Tokens.IssueSession(user.Email, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate session token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// The account exists at this point, a mail failure only means the
	// client has to use the resend endpoint
	if user.Role == model.RoleClient {
		if err := sendVerification(d, user.Email); err != nil {
			zap.L().Warn("Failed to send verification email on signup", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func sendVerification(d *internal.Deps, email string) error {
	token, err := d.Tokens.IssueVerification(email)
	if err != nil {
		return err
	}

	return d.Mailer.SendVerification(email, service.VerificationLink(d.Config.Host.BaseURL, token))
}
