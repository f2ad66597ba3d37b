package models

import (
	"time"

	"github.com/google/uuid"
)

type Invitation struct {
	Base
	Email      string     `gorm:"index;not null" json:"email"`
	Role       Role       `gorm:"type:varchar(20);default:'member';not null" json:"role"` // admin, member
	TeamID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"team_id"`
	Token      string     `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt  time.Time  `gorm:"not null" json:"expires_at"`
	IsUsed     bool       `gorm:"default:false" json:"is_used"`
	InvitedBy  uuid.UUID  `gorm:"type:uuid;not null" json:"invited_by"`
	AcceptedAt *time.Time `json:"accepted_at"`

	// Email dispatch outcome, advisory only. A failed send never
	// invalidates the invitation.
	EmailSent   bool   `gorm:"default:false" json:"email_sent"`
	EmailDetail string `json:"email_detail,omitempty"`

	// Relationships
	Team    *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Inviter *User `gorm:"foreignKey:InvitedBy" json:"inviter,omitempty"`
}

func (Invitation) TableName() string {
	return "invitations"
}

// Pending reports whether the invitation is still redeemable at the given
// instant. Expiry is computed, never stored.
func (i *Invitation) Pending(now time.Time) bool {
	return !i.IsUsed && now.Before(i.ExpiresAt)
}
