package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-service/internal/constants"
	"github.com/yukikurage/task-service/internal/database"
	"github.com/yukikurage/task-service/internal/dto"
	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/repository"
	"github.com/yukikurage/task-service/internal/services"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler and CommentHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db             *gorm.DB
	handler        *TaskHandler
	commentHandler *CommentHandler
	router         *gin.Engine
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	gin.SetMode(gin.TestMode)
	RegisterValidators()

	// Create in-memory SQLite database
	suite.db, err = database.Open("sqlite", ":memory:", nil)
	suite.Require().NoError(err)
	suite.Require().NoError(database.Migrate(suite.db))

	store := repository.NewStore(suite.db)

	// Without an API key suggestions stay disabled
	suite.handler = NewTaskHandler(services.NewTaskService(store, nil), services.NewSuggestionService(""))
	suite.commentHandler = NewCommentHandler(services.NewCommentService(store))

	suite.router = gin.New()
	suite.router.Use(func(c *gin.Context) {
		var principal models.Principal
		if raw := c.GetHeader("X-Test-User"); raw != "" {
			_, _ = fmt.Sscan(raw, &principal.ID)
		}
		c.Set(constants.ContextKeyPrincipal, principal)
		c.Next()
	})

	tasks := suite.router.Group("/api/tasks")
	tasks.GET("", suite.handler.ListTasks)
	tasks.GET("/created", suite.handler.ListCreatedTasks)
	tasks.GET("/assigned", suite.handler.ListAssignedTasks)
	tasks.POST("", suite.handler.CreateTask)
	tasks.POST("/suggest", suite.handler.SuggestTasks)
	tasks.GET("/:id", suite.handler.GetTask)
	tasks.PUT("/:id", suite.handler.UpdateTask)
	tasks.PATCH("/:id", suite.handler.ChangeStatus)
	tasks.DELETE("/:id", suite.handler.DeleteTask)
	tasks.GET("/:id/comments", suite.commentHandler.ListComments)
	tasks.POST("/:id/comments", suite.commentHandler.CreateComment)
	tasks.PUT("/:id/comments/:commentId", suite.commentHandler.UpdateComment)
	tasks.DELETE("/:id/comments/:commentId", suite.commentHandler.DeleteComment)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(name string) *models.User {
	user := &models.User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hashedpassword",
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, creatorID, executorID uint64) *models.Task {
	task := &models.Task{
		Title:      title,
		Status:     models.TaskStatusTodo,
		Priority:   models.TaskPriorityMedium,
		Deadline:   time.Now().Add(24 * time.Hour),
		CreatorID:  creatorID,
		ExecutorID: executorID,
	}
	suite.Require().NoError(suite.db.Omit("Creator", "Executor", "Comments").Create(task).Error)
	return task
}

func (suite *TaskHandlerTestSuite) request(method, url string, payload any, userID uint64) *httptest.ResponseRecorder {
	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}
	if userID != 0 {
		req.Header.Set("X-Test-User", fmt.Sprint(userID))
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](suite *TaskHandlerTestSuite, w *httptest.ResponseRecorder) T {
	var envelope struct {
		Timestamp time.Time `json:"timestamp"`
		Message   string    `json:"message"`
		Body      T         `json:"body"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &envelope))
	suite.False(envelope.Timestamp.IsZero())
	suite.NotEmpty(envelope.Message)
	return envelope.Body
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	creator := suite.createTestUser("creator")
	executor := suite.createTestUser("executor")

	w := suite.request(http.MethodPost, "/api/tasks", map[string]any{
		"title":       "New Task",
		"description": "details",
		"priority":    "HIGH",
		"deadline":    time.Now().Add(time.Hour).Format(time.RFC3339),
		"executor_id": executor.ID,
	}, creator.ID)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	task := decodeBody[dto.TaskDTO](suite, w)
	assert.Equal(suite.T(), "New Task", task.Title)
	assert.Equal(suite.T(), models.TaskStatusTodo, task.Status)
	assert.Equal(suite.T(), creator.ID, task.Creator.ID)
	assert.Equal(suite.T(), executor.ID, task.Executor.ID)
	assert.NotNil(suite.T(), task.Comments)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Unauthorized() {
	w := suite.request(http.MethodPost, "/api/tasks", map[string]any{"title": "x"}, 0)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidBody() {
	creator := suite.createTestUser("creator")

	w := suite.request(http.MethodPost, "/api/tasks", map[string]any{
		"title":       "",
		"priority":    "URGENT",
		"deadline":    time.Now().Add(time.Hour).Format(time.RFC3339),
		"executor_id": creator.ID,
	}, creator.ID)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "priority")
}

func (suite *TaskHandlerTestSuite) TestCreateTask_PastDeadline() {
	creator := suite.createTestUser("creator")

	w := suite.request(http.MethodPost, "/api/tasks", map[string]any{
		"title":       "late",
		"priority":    "LOW",
		"deadline":    time.Now().Add(-time.Hour).Format(time.RFC3339),
		"executor_id": creator.ID,
	}, creator.ID)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_UnknownExecutor() {
	creator := suite.createTestUser("creator")

	w := suite.request(http.MethodPost, "/api/tasks", map[string]any{
		"title":       "orphan",
		"priority":    "LOW",
		"deadline":    time.Now().Add(time.Hour).Format(time.RFC3339),
		"executor_id": 9999,
	}, creator.ID)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask() {
	creator := suite.createTestUser("creator")
	viewer := suite.createTestUser("viewer")
	task := suite.createTestTask("Visible", creator.ID, creator.ID)

	w := suite.request(http.MethodGet, fmt.Sprintf("/api/tasks/%d", task.ID), nil, viewer.ID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Visible", decodeBody[dto.TaskDTO](suite, w).Title)

	w = suite.request(http.MethodGet, "/api/tasks/9999", nil, viewer.ID)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/tasks/abc", nil, viewer.ID)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/api/tasks/0", nil, viewer.ID)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_OnlyCreator() {
	creator := suite.createTestUser("creator")
	executor := suite.createTestUser("executor")
	task := suite.createTestTask("Original", creator.ID, executor.ID)

	payload := map[string]any{
		"title":       "Renamed",
		"priority":    "LOW",
		"deadline":    time.Now().Add(time.Hour).Format(time.RFC3339),
		"executor_id": executor.ID,
	}
	url := fmt.Sprintf("/api/tasks/%d", task.ID)

	w := suite.request(http.MethodPut, url, payload, executor.ID)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPut, url, payload, creator.ID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	updated := decodeBody[dto.TaskDTO](suite, w)
	assert.Equal(suite.T(), "Renamed", updated.Title)
	assert.Equal(suite.T(), models.TaskStatusTodo, updated.Status)
}

func (suite *TaskHandlerTestSuite) TestChangeStatus_OnlyExecutor() {
	creator := suite.createTestUser("creator")
	executor := suite.createTestUser("executor")
	task := suite.createTestTask("Work", creator.ID, executor.ID)
	url := fmt.Sprintf("/api/tasks/%d", task.ID)

	w := suite.request(http.MethodPatch, url, map[string]any{"status": "IN_PROGRESS"}, creator.ID)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPatch, url, map[string]any{"status": "IN_PROGRESS"}, executor.ID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), models.TaskStatusInProgress, decodeBody[dto.TaskDTO](suite, w).Status)

	w = suite.request(http.MethodPatch, url, map[string]any{"status": "BLOCKED"}, executor.ID)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_ReturnsSnapshot() {
	creator := suite.createTestUser("creator")
	executor := suite.createTestUser("executor")
	task := suite.createTestTask("Doomed", creator.ID, executor.ID)
	url := fmt.Sprintf("/api/tasks/%d", task.ID)

	w := suite.request(http.MethodDelete, url, nil, executor.ID)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodDelete, url, nil, creator.ID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "Doomed", decodeBody[dto.TaskDTO](suite, w).Title)

	w = suite.request(http.MethodGet, url, nil, creator.ID)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_Slices() {
	creator := suite.createTestUser("creator")
	executor := suite.createTestUser("executor")
	for i := range 3 {
		suite.createTestTask(fmt.Sprintf("Task %d", i), creator.ID, executor.ID)
	}

	w := suite.request(http.MethodGet, "/api/tasks?page=0&size=2", nil, creator.ID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	first := decodeBody[dto.TaskListResponse](suite, w)
	assert.Len(suite.T(), first.Tasks, 2)
	assert.True(suite.T(), first.HasNext)
	assert.NotContains(suite.T(), w.Body.String(), "total")

	w = suite.request(http.MethodGet, "/api/tasks?page=1&size=2", nil, creator.ID)
	second := decodeBody[dto.TaskListResponse](suite, w)
	assert.Len(suite.T(), second.Tasks, 1)
	assert.False(suite.T(), second.HasNext)
}

func (suite *TaskHandlerTestSuite) TestListTasks_RelationsAndFilters() {
	creator := suite.createTestUser("creator")
	executor := suite.createTestUser("executor")
	suite.createTestTask("Assigned", creator.ID, executor.ID)

	w := suite.request(http.MethodGet, "/api/tasks/created", nil, executor.ID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Empty(suite.T(), decodeBody[dto.TaskListResponse](suite, w).Tasks)

	w = suite.request(http.MethodGet, "/api/tasks/assigned", nil, executor.ID)
	assert.Len(suite.T(), decodeBody[dto.TaskListResponse](suite, w).Tasks, 1)

	w = suite.request(http.MethodGet, fmt.Sprintf("/api/tasks/created?userId=%d", creator.ID), nil, executor.ID)
	assert.Len(suite.T(), decodeBody[dto.TaskListResponse](suite, w).Tasks, 1)

	w = suite.request(http.MethodGet, "/api/tasks?status=DONE", nil, executor.ID)
	assert.Empty(suite.T(), decodeBody[dto.TaskListResponse](suite, w).Tasks)

	w = suite.request(http.MethodGet, "/api/tasks?userId=9999", nil, executor.ID)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/tasks?size=0", nil, executor.ID)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodGet, "/api/tasks?priority=URGENT", nil, executor.ID)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestComments_OwnerOnly() {
	creator := suite.createTestUser("creator")
	outsider := suite.createTestUser("outsider")
	task := suite.createTestTask("Discussed", creator.ID, creator.ID)
	base := fmt.Sprintf("/api/tasks/%d/comments", task.ID)

	w := suite.request(http.MethodPost, base, map[string]any{"text": "   "}, outsider.ID)
	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, base, map[string]any{"text": "first!"}, outsider.ID)
	assert.Equal(suite.T(), http.StatusCreated, w.Code)
	comment := decodeBody[dto.CommentDTO](suite, w)
	assert.Equal(suite.T(), outsider.ID, comment.Owner.ID)

	commentURL := fmt.Sprintf("%s/%d", base, comment.ID)

	w = suite.request(http.MethodPut, commentURL, map[string]any{"text": "edited by creator"}, creator.ID)
	assert.Equal(suite.T(), http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPut, commentURL, map[string]any{"text": "edited"}, outsider.ID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), "edited", decodeBody[dto.CommentDTO](suite, w).Text)

	w = suite.request(http.MethodGet, base, nil, creator.ID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Len(suite.T(), decodeBody[dto.CommentListResponse](suite, w).Comments, 1)

	w = suite.request(http.MethodDelete, commentURL, nil, outsider.ID)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w = suite.request(http.MethodDelete, commentURL, nil, outsider.ID)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/tasks/9999/comments", nil, creator.ID)
	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestSuggestTasks_NotConfigured() {
	user := suite.createTestUser("user")

	w := suite.request(http.MethodPost, "/api/tasks/suggest", map[string]any{"text": "buy milk"}, user.ID)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
