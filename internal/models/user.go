package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	CreatedTasks  []Task    `gorm:"foreignKey:CreatorID" json:"-"`
	AssignedTasks []Task    `gorm:"foreignKey:ExecutorID" json:"-"`
	Comments      []Comment `gorm:"foreignKey:OwnerID" json:"-"`
}

// Principal is the authenticated identity a request acts as.
// The zero value is the anonymous principal.
type Principal struct {
	ID       uint64
	Username string
	Email    string
}

// PrincipalOf builds the principal for a stored user.
func PrincipalOf(user *User) Principal {
	return Principal{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// IsAnonymous reports whether no user is attached.
func (p Principal) IsAnonymous() bool {
	return p.ID == 0
}
