// Package root holds endpoints that aren't tied to users or files
package root

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Heartbeat answers HEAD /heartbeat so load balancers can probe the service
func Heartbeat(c *gin.Context) {
	c.Status(http.StatusOK)
}
