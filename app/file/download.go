package file

import (
	"bitwise74/secure-file-ops/internal"
	"bitwise74/secure-file-ops/internal/service"
	"errors"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Download(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	dl, err := d.Files.Redeem(c.Request.Context(), c.Param("encrypted_link"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidLink):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid link",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "File not found",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrUpstreamUnavailable):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Failed to fetch file: " + service.ErrUpstreamUnavailable.Error(),
				"requestID": requestID,
			})

			zap.L().Error("Failed to fetch file from storage", zap.Error(err), zap.String("requestID", requestID))
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to redeem download link", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}
	defer dl.Body.Close()

	contentType := dl.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.DataFromReader(http.StatusOK, dl.Size, contentType, dl.Body, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}),
	})
}
