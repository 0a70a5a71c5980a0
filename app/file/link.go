package file

import (
	"bitwise74/secure-file-ops/internal"
	"bitwise74/secure-file-ops/internal/service"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DownloadLink hands out an encrypted link for a file ID. The file itself is
// only looked up when the link is redeemed
func DownloadLink(c *gin.Context, d *internal.Deps) {
	requestID := c.MustGet("requestID").(string)

	link, err := d.Files.IssueLink(c.Param("file_id"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidFileID) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Invalid file ID",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to generate download link",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate download link", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"download_link": link,
		"message":       "success",
	})
}
