package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDKey = "request_id"

// RequestID attaches an id to every request and echoes it back in the
// response header, so log lines and client reports can be correlated.
func RequestID() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		requestID := ctx.GetHeader("X-Request-Id")

		if requestID == "" {
			requestID = strings.ReplaceAll(uuid.New().String(), "-", "")
		}

		ctx.Set(RequestIDKey, requestID)
		ctx.Header("X-Request-Id", requestID)
		ctx.Next()
	}
}
