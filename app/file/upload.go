// Package file holds the file endpoints, upload, link issuing, download and listing
package file

import (
	"bitwise74/secure-file-ops/internal"
	"bitwise74/secure-file-ops/internal/service"
	"bitwise74/secure-file-ops/pkg/middleware"
	"bitwise74/secure-file-ops/pkg/validators"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Upload(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)
	user, _ := middleware.CurrentUser(c)

	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     validators.ErrFileTooLarge.Error(),
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No file provided",
			"requestID": requestID,
		})

		zap.L().Debug("Failed to read multipart file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	code, f, err := validators.FileValidator(fh)
	if err != nil {
		if code >= http.StatusInternalServerError {
			c.JSON(code, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to validate upload", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}
	defer f.Close()

	rec, err := d.Files.Upload(c.Request.Context(), service.UploadInput{
		Body:        f,
		Size:        fh.Size,
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Uploader:    user,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to store file: " + service.ErrStorage.Error(),
			"requestID": requestID,
		})

		zap.L().Error("Failed to upload file", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"file_id":   rec.ID,
		"file_name": rec.FileName,
	})
}
