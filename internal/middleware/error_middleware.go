package middleware

import (
	"errors"

	"travelwise/internal/transport/httpdto"
	apperrors "travelwise/pkg/errors"
	"travelwise/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		code := errorCode(err)
		if code == httpdto.CodeInternal {
			l.Errorf("request error: %s", err.Error())
		} else {
			l.Infof("request error: %s", err.Error())
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(c.Writer.Status(), httpdto.NewErrorResponse(err.Error(), code))
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotImplemented):
		return httpdto.CodeNotImplemented
	default:
		return httpdto.CodeInternal
	}
}
