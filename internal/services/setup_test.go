package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/task-service/internal/database"
	"github.com/yukikurage/task-service/internal/models"
	"github.com/yukikurage/task-service/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// fixedNow is the clock every service test runs against.
var fixedNow = time.Date(2030, time.January, 10, 12, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func newTestTokenService(t *testing.T, ttl time.Duration, now func() time.Time) *TokenService {
	t.Helper()

	tokens, err := NewTokenService(TokenConfig{
		Secret: []byte(testSecret),
		TTL:    ttl,
		Now:    now,
	})
	require.NoError(t, err)
	return tokens
}

func newTestAuthService(t *testing.T, db *gorm.DB) *AuthService {
	t.Helper()

	auth, err := NewAuthService(
		repository.NewUserRepository(db),
		NewBcryptHasher(bcrypt.MinCost),
		newTestTokenService(t, time.Hour, nil),
	)
	require.NoError(t, err)
	return auth
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hashedpassword",
	}
	require.NoError(t, repository.NewUserRepository(db).Create(user))
	return user
}

func createTestTask(t *testing.T, svc *TaskService, creator, executor *models.User, title string) *models.Task {
	t.Helper()

	task, err := svc.CreateTask(models.PrincipalOf(creator), CreateTaskInput{
		Title:      title,
		Priority:   models.TaskPriorityMedium,
		Deadline:   fixedNow.Add(48 * time.Hour),
		ExecutorID: executor.ID,
	})
	require.NoError(t, err)
	return task
}
