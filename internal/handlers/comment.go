package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskhive-dev/taskhive/internal/services"
	"github.com/taskhive-dev/taskhive/internal/types"
	"github.com/taskhive-dev/taskhive/internal/utils"
)

type CreateCommentRequest struct {
	Message string `json:"message" binding:"required"`
}

type CommentHandler struct {
	comments *services.Comments
}

func NewCommentHandler(comments *services.Comments) *CommentHandler {
	return &CommentHandler{comments: comments}
}

func (h *CommentHandler) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, taskID, err := utils.GetProjectTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var body CreateCommentRequest

	if err := ctx.BindJSON(&body); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Comment message cannot be empty"})
		return
	}

	comment, err := h.comments.Add(projectID, taskID, userID, body.Message)

	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"comment": types.CommentResponse{
			ID:        comment.ID,
			TaskID:    comment.TaskID,
			UserID:    comment.UserID,
			Message:   comment.Message,
			Timestamp: comment.CreatedAt,
		},
	})
}

func (h *CommentHandler) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, taskID, err := utils.GetProjectTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comments, err := h.comments.List(projectID, taskID, userID)

	if err != nil {
		respondError(ctx, err)
		return
	}

	response := make([]types.CommentResponse, 0, len(comments))

	for _, comment := range comments {
		response = append(response, types.CommentResponse{
			ID:        comment.ID,
			TaskID:    comment.TaskID,
			UserID:    comment.UserID,
			Message:   comment.Message,
			Timestamp: comment.CreatedAt,
		})
	}

	ctx.JSON(http.StatusOK, gin.H{"comments": response})
}

func (h *CommentHandler) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	projectID, taskID, err := utils.GetProjectTaskID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	commentID, err := utils.GetCommentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.comments.Delete(projectID, taskID, commentID, userID); err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}
