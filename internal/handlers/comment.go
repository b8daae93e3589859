package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-service/internal/dto"
	apierrors "github.com/yukikurage/task-service/internal/errors"
	"github.com/yukikurage/task-service/internal/middleware"
	"github.com/yukikurage/task-service/internal/services"
	"github.com/yukikurage/task-service/internal/utils"
)

type CommentHandler struct {
	commentService *services.CommentService
}

func NewCommentHandler(commentService *services.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// ListComments returns one slice of a task's comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	params, err := utils.GetPaginationParams(c)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	slice, err := h.commentService.ListComments(taskID, params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Comments retrieved", dto.ToCommentListResponse(slice)))
}

// CreateComment adds a comment to a task
func (h *CommentHandler) CreateComment(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.CreateComment(principal, taskID, req.Text)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewResponse("Comment created", dto.ToCommentDTO(*comment)))
}

// UpdateComment overwrites a comment's text
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.UpdateComment(principal, taskID, commentID, req.Text)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Comment updated", dto.ToCommentDTO(*comment)))
}

// DeleteComment deletes a comment
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}
	commentID, ok := parseID(c, "commentId")
	if !ok {
		return
	}

	comment, err := h.commentService.DeleteComment(principal, taskID, commentID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Comment deleted", dto.ToCommentDTO(*comment)))
}
