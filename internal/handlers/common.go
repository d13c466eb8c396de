package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/apperr"
)

// respondError maps a service error to its status/kind pair. Unclassified
// errors come back as 500 with a generic message.
func respondError(ctx *gin.Context, err error) {
	ctx.JSON(apperr.HTTPStatus(err), gin.H{"error": apperr.PublicMessage(err)})
}
