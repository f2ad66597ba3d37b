package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/activity"
	"github.com/hugh/teamly/internal/auth"
	"github.com/hugh/teamly/internal/database/models"
	"github.com/hugh/teamly/internal/mailer"
	"gorm.io/gorm"
)

var (
	ErrTeamNotFound        = errors.New("team not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrForbidden           = errors.New("not authorized for this team")
	ErrLastAdmin           = errors.New("cannot demote or remove the last admin of the team")
	ErrDuplicateUser       = errors.New("user with this email already exists")
	ErrDuplicateInvitation = errors.New("an active invitation already exists for this email")
	ErrInvalidInvitation   = errors.New("invalid or expired invitation token")
	ErrInvitationNotFound  = errors.New("invitation not found or has expired")
)

type Service struct {
	db          *gorm.DB
	jwt         *auth.JWTService
	mailer      mailer.Mailer
	logger      *slog.Logger
	recorder    *activity.Recorder
	frontendURL string
	now         func() time.Time
}

type Option func(*Service)

// WithNow overrides the service clock, used by expiry boundary tests.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(db *gorm.DB, jwt *auth.JWTService, m mailer.Mailer, logger *slog.Logger, frontendURL string, opts ...Option) *Service {
	s := &Service{
		db:          db,
		jwt:         jwt,
		mailer:      m,
		logger:      logger,
		recorder:    activity.NewRecorder(db, logger),
		frontendURL: frontendURL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListMembers returns the active members of the caller's team.
func (s *Service) ListMembers(ctx context.Context, actor *models.User, teamID uuid.UUID) ([]models.User, error) {
	if err := s.requireSameTeam(actor, teamID); err != nil {
		return nil, err
	}

	var members []models.User
	if err := s.db.WithContext(ctx).
		Where("team_id = ? AND is_active = ?", teamID, true).
		Order("created_at").
		Find(&members).Error; err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	return members, nil
}

// UpdateMemberRole changes a member's role. Only same-team changes are
// allowed, and an admin demoting themself is refused while they are the
// team's only active admin. A second admin demoting the first is fine,
// that asymmetry is the point of the guard.
func (s *Service) UpdateMemberRole(ctx context.Context, actor *models.User, memberID uuid.UUID, newRole models.Role) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if member.TeamID == nil || actor.TeamID == nil || *member.TeamID != *actor.TeamID {
		return nil, ErrForbidden
	}

	if member.ID == actor.ID && newRole != models.RoleAdmin {
		admins, err := s.activeAdminCount(ctx, *actor.TeamID)
		if err != nil {
			return nil, err
		}
		if admins <= 1 {
			return nil, ErrLastAdmin
		}
	}

	if err := s.db.WithContext(ctx).Model(member).Update("role", newRole).Error; err != nil {
		return nil, fmt.Errorf("updating role: %w", err)
	}
	member.Role = newRole

	s.recorder.Record(ctx, activity.Entry{
		UserID:  &actor.ID,
		TeamID:  actor.TeamID,
		Action:  activity.ActionRoleChange,
		Details: fmt.Sprintf("member %s set to %s", member.Email, newRole),
	})

	return member, nil
}

// RemoveMember deactivates a member and detaches them from the team. Rows
// are never deleted, history stays intact. Self-removal is refused for the
// last active admin.
func (s *Service) RemoveMember(ctx context.Context, actor *models.User, memberID uuid.UUID) error {
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		return err
	}

	if member.TeamID == nil || actor.TeamID == nil || *member.TeamID != *actor.TeamID {
		return ErrForbidden
	}

	if member.ID == actor.ID {
		admins, err := s.activeAdminCount(ctx, *actor.TeamID)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastAdmin
		}
	}

	if err := s.db.WithContext(ctx).Model(member).Updates(map[string]interface{}{
		"is_active": false,
		"team_id":   nil,
	}).Error; err != nil {
		return fmt.Errorf("removing member: %w", err)
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:  &actor.ID,
		TeamID:  actor.TeamID,
		Action:  activity.ActionRemoval,
		Details: fmt.Sprintf("member %s removed", member.Email),
	})

	return nil
}

func (s *Service) loadMember(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var member models.User
	if err := s.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}
	return &member, nil
}

func (s *Service) activeAdminCount(ctx context.Context, teamID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("team_id = ? AND role = ? AND is_active = ?", teamID, models.RoleAdmin, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return count, nil
}

func (s *Service) requireSameTeam(actor *models.User, teamID uuid.UUID) error {
	if actor.TeamID == nil || *actor.TeamID != teamID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) requireTeamAdmin(actor *models.User, teamID uuid.UUID) error {
	if err := s.requireSameTeam(actor, teamID); err != nil {
		return err
	}
	if actor.Role != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
