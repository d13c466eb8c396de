package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/services"
)

// CronHandler exposes the maintenance operations to an external scheduler
// (platform cron, in-cluster job). Requests must carry the shared secret.
type CronHandler struct {
	maintenance *services.Maintenance
	status      *services.StatusEngine
	secret      string
}

func NewCronHandler(maintenance *services.Maintenance, status *services.StatusEngine) *CronHandler {
	return &CronHandler{
		maintenance: maintenance,
		status:      status,
		secret:      os.Getenv("CRON_SECRET"),
	}
}

func (h *CronHandler) authorized(ctx *gin.Context) bool {
	if h.secret == "" || ctx.GetHeader("X-Cron-Secret") != h.secret {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid cron secret"})
		return false
	}
	return true
}

func (h *CronHandler) StatusUpdate(ctx *gin.Context) {
	if !h.authorized(ctx) {
		return
	}

	updated, err := h.status.RecomputeAll(ctx.Request.Context())

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Status recompute failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "updated_count": updated})
}

func (h *CronHandler) DeadlineCheck(ctx *gin.Context) {
	if !h.authorized(ctx) {
		return
	}

	alerted, err := h.maintenance.ScanDeadlines(ctx.Request.Context())

	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Deadline scan failed"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"success": true, "alerted_count": alerted})
}
