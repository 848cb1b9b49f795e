package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fractional-quest/internal/common/errors"
)

func writeError(c *gin.Context, err error) {
	stdErr := apperrors.AsStandardError(err)
	status := apperrors.HTTPStatus(stdErr)
	body := gin.H{"error": stdErr.Message, "code": stdErr.Code}
	if stdErr.Details != "" && status < http.StatusInternalServerError {
		body["details"] = stdErr.Details
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, body)
}
