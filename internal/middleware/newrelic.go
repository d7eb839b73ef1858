package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
)

// NewRelicAttributes tags the nrgin transaction with the route's resource ID
// and reports 5xx responses as errors. It must run after nrgin.Middleware;
// without a transaction it does nothing.
func NewRelicAttributes() gin.HandlerFunc {
	return func(c *gin.Context) {
		txn := nrgin.Transaction(c)
		if txn == nil {
			c.Next()
			return
		}

		if id := c.Param("id"); id != "" {
			txn.AddAttribute("resourceId", id)
		}
		if driverID := c.Query("driver_id"); driverID != "" {
			txn.AddAttribute("driverId", driverID)
		}

		c.Next()

		// Record error if present.
		for _, err := range c.Errors {
			txn.NoticeError(err.Err)
		}
		if status := c.Writer.Status(); status >= 500 && len(c.Errors) == 0 {
			txn.NoticeError(fmt.Errorf("%s %s returned %d", c.Request.Method, c.FullPath(), status))
		}
	}
}
