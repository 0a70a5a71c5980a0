package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimiter rejects bodies bigger than maxBytes with a 413. Requests
// that announce their size are turned away before anything is read
func BodySizeLimiter(maxBytes int64) gin.HandlerFunc {
	return BodySizeLimiterWith(maxBytes, http.StatusRequestEntityTooLarge, "Request body size exceeds limit")
}

// BodySizeLimiterWith is BodySizeLimiter answering with the given status and
// message. Bodies without a known length are only cut off while reading,
// handlers check that with IsBodyTooLarge
func BodySizeLimiterWith(maxBytes int64, status int, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(status, gin.H{
				"error":     message,
				"requestID": c.GetString("requestID"),
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// IsBodyTooLarge reports whether err came from a body cut off by BodySizeLimiter
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
