// models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserStatus is the explicit lifecycle state of an account. Accounts are
// never hard-deleted: disabling blocks login and cascades deletion of the
// user's application records.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// UserRole replaces the old hard-coded admin email comparison.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string     `gorm:"size:100;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	CompanyName  string     `gorm:"size:255" json:"companyName,omitempty"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	Role         UserRole   `gorm:"size:20;not null;default:'user'" json:"role"`
	Status       UserStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	Notes        string     `gorm:"type:text" json:"notes,omitempty"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return
}

func (u *User) Disabled() bool {
	return u.Status == UserStatusDisabled
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
