package models

import "github.com/google/uuid"

type Team struct {
	Base
	Name      string    `gorm:"not null" json:"name"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"created_by"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`

	// Relationships
	Members     []User       `gorm:"foreignKey:TeamID" json:"-"`
	Invitations []Invitation `gorm:"foreignKey:TeamID" json:"-"`
}

func (Team) TableName() string {
	return "teams"
}
