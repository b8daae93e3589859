package repository

import (
	"github.com/yukikurage/task-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Omit(clause.Associations).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// ExistsByEmailOrUsername reports whether either value is already registered
func (r *GormUserRepository) ExistsByEmailOrUsername(email, username string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete removes a user and everything the user created, is assigned to or authored.
// Dependents go first so foreign keys never dangle.
func (r *GormUserRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		ownedTasks := tx.Model(&models.Task{}).
			Select("id").
			Where("creator_id = ? OR executor_id = ?", id, id)

		if err := tx.Where("owner_id = ? OR task_id IN (?)", id, ownedTasks).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("creator_id = ? OR executor_id = ?", id, id).
			Delete(&models.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
