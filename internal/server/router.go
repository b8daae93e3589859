package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-service/internal/config"
	"github.com/yukikurage/task-service/internal/handlers"
	"github.com/yukikurage/task-service/internal/middleware"
	"github.com/yukikurage/task-service/internal/repository"
	"github.com/yukikurage/task-service/internal/services"
	"gorm.io/gorm"
)

// SetupRouter wires repositories, services and handlers into a gin engine
func SetupRouter(cfg *config.Config, db *gorm.DB, suggestionService *services.SuggestionService) (*gin.Engine, error) {
	handlers.RegisterValidators()

	store := repository.NewStore(db)

	tokenService, err := services.NewTokenService(services.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		TTL:    cfg.JWTTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	authService, err := services.NewAuthService(store.Users(), services.NewBcryptHasher(cfg.BcryptCost), tokenService)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}
	taskService := services.NewTaskService(store, nil)
	commentService := services.NewCommentService(store)

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService, suggestionService)
	commentHandler := handlers.NewCommentHandler(commentService)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.RequestID(), middleware.Tracing())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Service is running",
		})
	})

	api := r.Group("/api")
	api.Use(middleware.ResolvePrincipal(authService))
	{
		users := api.Group("/users")
		{
			users.POST("/sign-up", authHandler.SignUp)
			users.POST("/sign-in", authHandler.SignIn)
			users.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
			users.DELETE("/me", middleware.RequireAuth(), authHandler.DeleteCurrentUser)
		}

		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/created", taskHandler.ListCreatedTasks)
			tasks.GET("/assigned", taskHandler.ListAssignedTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", taskHandler.UpdateTask)
			tasks.PATCH("/:id", taskHandler.ChangeStatus)
			tasks.DELETE("/:id", taskHandler.DeleteTask)

			tasks.GET("/:id/comments", commentHandler.ListComments)
			tasks.POST("/:id/comments", commentHandler.CreateComment)
			tasks.PUT("/:id/comments/:commentId", commentHandler.UpdateComment)
			tasks.DELETE("/:id/comments/:commentId", commentHandler.DeleteComment)
		}
	}

	return r, nil
}
