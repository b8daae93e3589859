package dto

import (
	"time"

	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/services"
	"github.com/yukikurage/task-service/internal/utils"
)

// CommentRequest is the body of comment create and update requests
type CommentRequest struct {
	Text string `json:"text" binding:"required,notblank,max=10000"`
}

// CommentDTO represents a comment in API responses
type CommentDTO struct {
	ID        uint64    `json:"id"`
	Text      string    `json:"text"`
	TaskID    uint64    `json:"task_id"`
	Owner     UserDTO   `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CommentListResponse is one slice of a task's comments
type CommentListResponse struct {
	Comments []CommentDTO `json:"comments"`
	utils.SliceResponse
}

// ToCommentDTO converts a Comment model to CommentDTO
func ToCommentDTO(comment models.Comment) CommentDTO {
	return CommentDTO{
		ID:        comment.ID,
		Text:      comment.Text,
		TaskID:    comment.TaskID,
		Owner:     ToUserDTO(comment.Owner),
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

// ToCommentListResponse converts a comment slice to CommentListResponse
func ToCommentListResponse(slice *services.CommentSlice) CommentListResponse {
	items := make([]CommentDTO, len(slice.Comments))
	for i, comment := range slice.Comments {
		items[i] = ToCommentDTO(comment)
	}

	return CommentListResponse{
		Comments: items,
		SliceResponse: utils.SliceResponse{
			Page:    slice.Page,
			Size:    slice.Size,
			HasNext: slice.HasNext,
		},
	}
}
