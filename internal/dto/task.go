package dto

import (
	"time"

	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/services"
	"github.com/yukikurage/task-service/internal/utils"
)

// CreateTaskRequest is the body of a task creation request
type CreateTaskRequest struct {
	Title       string              `json:"title" binding:"required,notblank,max=255"`
	Description string              `json:"description" binding:"max=10000"`
	Priority    models.TaskPriority `json:"priority" binding:"required,oneof=LOW MEDIUM HIGH"`
	Deadline    time.Time           `json:"deadline" binding:"required"`
	ExecutorID  uint64              `json:"executor_id" binding:"required,gt=0"`
}

// UpdateTaskRequest is the body of a task update request.
// Status is optional; when omitted the status is left unchanged.
type UpdateTaskRequest struct {
	Title       string              `json:"title" binding:"required,notblank,max=255"`
	Description string              `json:"description" binding:"max=10000"`
	Priority    models.TaskPriority `json:"priority" binding:"required,oneof=LOW MEDIUM HIGH"`
	Status      *models.TaskStatus  `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	Deadline    time.Time           `json:"deadline" binding:"required"`
	ExecutorID  uint64              `json:"executor_id" binding:"required,gt=0"`
}

// ChangeStatusRequest is the body of a status change request
type ChangeStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required,oneof=TODO IN_PROGRESS DONE"`
}

// SuggestTasksRequest is the body of a task suggestion request
type SuggestTasksRequest struct {
	Text string `json:"text" binding:"required,notblank,max=10000"`
}

// TaskCommentDTO represents a comment embedded in a task
type TaskCommentDTO struct {
	ID    uint64  `json:"id"`
	Text  string  `json:"text"`
	Owner UserDTO `json:"owner"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Deadline    time.Time           `json:"deadline"`
	Creator     UserDTO             `json:"creator"`
	Executor    UserDTO             `json:"executor"`
	Comments    []TaskCommentDTO    `json:"comments"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TaskListResponse is one slice of tasks. No total is reported.
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	utils.SliceResponse
}

// SuggestedTaskDTO represents a drafted, unsaved task
type SuggestedTaskDTO struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	Deadline    *time.Time          `json:"deadline"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	comments := make([]TaskCommentDTO, len(task.Comments))
	for i, comment := range task.Comments {
		comments[i] = TaskCommentDTO{
			ID:    comment.ID,
			Text:  comment.Text,
			Owner: ToUserDTO(comment.Owner),
		}
	}

	return TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Deadline:    task.Deadline,
		Creator:     ToUserDTO(task.Creator),
		Executor:    ToUserDTO(task.Executor),
		Comments:    comments,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// ToTaskListResponse converts a task slice to TaskListResponse
func ToTaskListResponse(slice *services.TaskSlice) TaskListResponse {
	items := make([]TaskDTO, len(slice.Tasks))
	for i, task := range slice.Tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks: items,
		SliceResponse: utils.SliceResponse{
			Page:    slice.Page,
			Size:    slice.Size,
			HasNext: slice.HasNext,
		},
	}
}

// ToSuggestedTaskDTOs converts drafted tasks for the response
func ToSuggestedTaskDTOs(suggestions []services.SuggestedTask) []SuggestedTaskDTO {
	items := make([]SuggestedTaskDTO, len(suggestions))
	for i, s := range suggestions {
		items[i] = SuggestedTaskDTO{
			Title:       s.Title,
			Description: s.Description,
			Priority:    s.Priority,
			Deadline:    s.Deadline,
		}
	}
	return items
}
