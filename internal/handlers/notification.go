package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type NotificationHandler struct {
	notify *services.Dispatcher
}

func NewNotificationHandler(notify *services.Dispatcher) *NotificationHandler {
	return &NotificationHandler{notify: notify}
}

func (h *NotificationHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notifications, err := h.notify.ListForUser(userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.NotificationResponse, 0, len(notifications))

	for _, notification := range notifications {
		response = append(response, types.NotificationResponse{
			ID:        notification.ID,
			ProjectID: notification.ProjectID,
			TaskID:    notification.TaskID,
			Title:     notification.Title,
			Body:      notification.Body,
			Type:      notification.Type,
			Read:      notification.Read,
			Timestamp: notification.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"notifications": response})
}

func (h *NotificationHandler) MarkRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	notificationID, err := utils.GetNotificationID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.notify.MarkRead(notificationID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (h *NotificationHandler) MarkAllRead(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	count, err := h.notify.MarkAllRead(userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"message": "All notifications marked as read",
		"count":   count,
	})
}
