package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Base
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FirstName    string     `gorm:"not null" json:"first_name"`
	LastName     string     `gorm:"not null" json:"last_name"`
	Role         Role       `gorm:"type:varchar(20);default:'member';not null" json:"role"` // admin, member
	TeamID       *uuid.UUID `gorm:"type:uuid;index" json:"team_id"`
	IsActive     bool       `gorm:"default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`

	// Relationships
	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsAdmin reports whether the user is an active admin of a team. The admin
// role is team-scoped: a user detached from any team administers nothing.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin && u.TeamID != nil && u.IsActive
}
