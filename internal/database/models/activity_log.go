package models

import "github.com/google/uuid"

type ActivityLog struct {
	Base
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	TeamID    *uuid.UUID `gorm:"type:uuid;index" json:"team_id"`
	Action    string     `gorm:"not null" json:"action"`
	Details   string     `json:"details,omitempty"`
	IPAddress string     `json:"ip_address,omitempty"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
