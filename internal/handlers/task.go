package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-service/internal/dto"
	apierrors "github.com/yukikurage/task-service/internal/errors"
	"github.com/yukikurage/task-service/internal/middleware"
	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/repository"
	"github.com/yukikurage/task-service/internal/services"
	"github.com/yukikurage/task-service/internal/utils"
)

type TaskHandler struct {
	taskService       *services.TaskService
	suggestionService *services.SuggestionService
}

func NewTaskHandler(taskService *services.TaskService, suggestionService *services.SuggestionService) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		suggestionService: suggestionService,
	}
}

// ListTasks returns tasks the user created or is assigned to
func (h *TaskHandler) ListTasks(c *gin.Context) {
	h.listTasks(c, repository.TaskRelationEither)
}

// ListCreatedTasks returns tasks the user created
func (h *TaskHandler) ListCreatedTasks(c *gin.Context) {
	h.listTasks(c, repository.TaskRelationCreator)
}

// ListAssignedTasks returns tasks the user is assigned to
func (h *TaskHandler) ListAssignedTasks(c *gin.Context) {
	h.listTasks(c, repository.TaskRelationExecutor)
}

func (h *TaskHandler) listTasks(c *gin.Context, relation repository.TaskRelation) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params, err := utils.GetPaginationParams(c)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	input := services.ListTasksInput{
		Relation: relation,
		Page:     params,
	}

	if raw := c.Query("userId"); raw != "" {
		userID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || userID == 0 {
			apierrors.BadRequest(c, "Invalid userId")
			return
		}
		input.UserID = &userID
	}
	if raw := c.Query("status"); raw != "" {
		status := models.TaskStatus(raw)
		input.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := models.TaskPriority(raw)
		input.Priority = &priority
	}

	slice, err := h.taskService.ListTasks(principal, input)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Tasks retrieved", dto.ToTaskListResponse(slice)))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(taskID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Task retrieved", dto.ToTaskDTO(*task)))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req dto.CreateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.CreateTask(principal, services.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		ExecutorID:  req.ExecutorID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewResponse("Task created", dto.ToTaskDTO(*task)))
}

// UpdateTask overwrites a task's mutable fields
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.UpdateTask(principal, taskID, services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Status:      req.Status,
		Deadline:    req.Deadline,
		ExecutorID:  req.ExecutorID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Task updated", dto.ToTaskDTO(*task)))
}

// ChangeStatus sets the status of a task
func (h *TaskHandler) ChangeStatus(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ChangeStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	task, err := h.taskService.ChangeStatus(principal, taskID, req.Status)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Task status changed", dto.ToTaskDTO(*task)))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	taskID, ok := parseID(c, "id")
	if !ok {
		return
	}

	task, err := h.taskService.DeleteTask(principal, taskID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Task deleted", dto.ToTaskDTO(*task)))
}

// SuggestTasks drafts tasks from free text without saving them
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	var req dto.SuggestTasksRequest
	if !bindJSON(c, &req) {
		return
	}

	suggestions, err := h.suggestionService.SuggestTasks(c.Request.Context(), req.Text)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewResponse("Tasks suggested", dto.ToSuggestedTaskDTOs(suggestions)))
}
