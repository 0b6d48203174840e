package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const staffTokenHeader = "X-Staff-Token"

// StaffAuth admits requests carrying the shared staff token.
func StaffAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(staffTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{
				Code:    "UNAUTHORIZED",
				Message: "staff credentials required",
			})
			return
		}
		c.Next()
	}
}
