package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/charterbook/internal/apperrors"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type errorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// writeError renders err as {code, message, details}. Errors outside the
// taxonomy become INTERNAL_ERROR without leaking their text.
func writeError(c *gin.Context, err error) {
	appErr := apperrors.AsAppError(err)
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		writeError(c, apperrors.InvalidInput("malformed request body: "+err.Error()))
		return false
	}
	return true
}

func parseDate(c *gin.Context, value string, loc *time.Location) (time.Time, bool) {
	if value == "" {
		writeError(c, apperrors.InvalidField("date", "is required"))
		return time.Time{}, false
	}
	date, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		writeError(c, apperrors.InvalidField("date", "must be a date in YYYY-MM-DD format"))
		return time.Time{}, false
	}
	return date, true
}
