package activity

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/database/models"
	"gorm.io/gorm"
)

// Action names written to the activity log.
const (
	ActionRegister   = "user.register"
	ActionLogin      = "user.login"
	ActionInvite     = "invitation.created"
	ActionAccept     = "invitation.accepted"
	ActionRoleChange = "member.role_changed"
	ActionRemoval    = "member.removed"
)

type Entry struct {
	UserID  *uuid.UUID
	TeamID  *uuid.UUID
	Action  string
	Details string
	IP      string
}

// Recorder appends audit rows. Writes are best-effort: a failed insert is
// logged and swallowed, never surfaced to the caller.
type Recorder struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRecorder(db *gorm.DB, logger *slog.Logger) *Recorder {
	return &Recorder{db: db, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, e Entry) {
	log := models.ActivityLog{
		UserID:    e.UserID,
		TeamID:    e.TeamID,
		Action:    e.Action,
		Details:   e.Details,
		IPAddress: e.IP,
	}

	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		r.logger.Warn("failed to record activity", "action", e.Action, "error", err)
	}
}
