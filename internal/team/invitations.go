package team

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/activity"
	"github.com/hugh/teamly/internal/auth"
	"github.com/hugh/teamly/internal/database/models"
	"github.com/hugh/teamly/internal/mailer"
	"gorm.io/gorm"
)

type InviteInput struct {
	Email  string
	TeamID uuid.UUID
	Role   models.Role
}

type AcceptInput struct {
	Password  string
	FirstName string
	LastName  string
}

// Invite creates an invitation for an email address to join the admin's
// team. The invitation row and its token share one expiry. Email dispatch
// happens after the row is committed, and a failed send only marks the
// advisory fields, the invitation stays valid and re-sendable.
func (s *Service) Invite(ctx context.Context, actor *models.User, input InviteInput) (*models.Invitation, error) {
	if err := s.requireTeamAdmin(actor, input.TeamID); err != nil {
		return nil, err
	}

	var existingUser models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
		return nil, ErrDuplicateUser
	}

	now := s.now()
	var existingInvite models.Invitation
	err := s.db.WithContext(ctx).
		Where("email = ? AND team_id = ? AND is_used = ? AND expires_at > ?",
			input.Email, input.TeamID, false, now).
		First(&existingInvite).Error
	if err == nil {
		return nil, ErrDuplicateInvitation
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("checking existing invitations: %w", err)
	}

	var team models.Team
	if err := s.db.WithContext(ctx).First(&team, "id = ?", input.TeamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}

	token, err := s.jwt.IssueInvitationToken(input.Email, input.TeamID, input.Role)
	if err != nil {
		return nil, fmt.Errorf("minting invitation token: %w", err)
	}

	invitation := models.Invitation{
		Email:     input.Email,
		Role:      input.Role,
		TeamID:    input.TeamID,
		Token:     token,
		ExpiresAt: now.Add(s.jwt.InvitationTTL()),
		InvitedBy: actor.ID,
	}
	if err := s.db.WithContext(ctx).Create(&invitation).Error; err != nil {
		return nil, fmt.Errorf("creating invitation: %w", err)
	}

	// Dispatch outside the transaction boundary.
	delivered, detail := s.mailer.SendInvitation(ctx, mailer.InvitationEmail{
		InvitationID: invitation.ID,
		ToEmail:      input.Email,
		InviterName:  actor.FullName(),
		TeamName:     team.Name,
		Link:         s.frontendURL + "/auth/accept-invitation/" + token,
		Role:         input.Role,
	})
	if !delivered {
		s.logger.Warn("invitation email not delivered", "email", input.Email, "detail", detail)
	}

	invitation.EmailSent = delivered
	invitation.EmailDetail = detail
	if err := s.db.WithContext(ctx).Model(&invitation).Updates(map[string]interface{}{
		"email_sent":   delivered,
		"email_detail": detail,
	}).Error; err != nil {
		s.logger.Warn("failed to record email dispatch outcome", "invitation_id", invitation.ID, "error", err)
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:  &actor.ID,
		TeamID:  &input.TeamID,
		Action:  activity.ActionInvite,
		Details: fmt.Sprintf("invited %s as %s", input.Email, input.Role),
	})

	return &invitation, nil
}

// Accept redeems an invitation token and creates the invited user. The
// token is verified first, then the backing row is re-checked: a token
// that still verifies but whose row was used or invalidated is rejected.
// User creation and marking the row used happen in one transaction, so a
// failed creation leaves the invitation redeemable.
func (s *Service) Accept(ctx context.Context, token string, input AcceptInput) (*models.User, error) {
	claims, err := s.jwt.Verify(token, auth.TokenTypeInvitation)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInvitation, err)
	}
	if claims.TeamID == nil {
		return nil, ErrInvalidInvitation
	}

	now := s.now()
	var invitation models.Invitation
	err = s.db.WithContext(ctx).
		Where("token = ? AND is_used = ? AND expires_at > ?", token, false, now).
		First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", claims.Email).First(&existing).Error; err == nil {
		return nil, ErrDuplicateUser
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Email:        claims.Email,
		PasswordHash: hash,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Role:         claims.Role,
		TeamID:       claims.TeamID,
		IsActive:     true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Model(&invitation).Updates(map[string]interface{}{
			"is_used":     true,
			"accepted_at": now,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("accepting invitation: %w", err)
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID:  &user.ID,
		TeamID:  claims.TeamID,
		Action:  activity.ActionAccept,
		Details: fmt.Sprintf("%s joined as %s", user.Email, user.Role),
	})

	return &user, nil
}

// ListPending returns the team's unused, unexpired invitations. Expiry is
// a computed predicate over expires_at, never a stored state.
func (s *Service) ListPending(ctx context.Context, actor *models.User, teamID uuid.UUID) ([]models.Invitation, error) {
	if err := s.requireTeamAdmin(actor, teamID); err != nil {
		return nil, err
	}

	var invitations []models.Invitation
	if err := s.db.WithContext(ctx).
		Where("team_id = ? AND is_used = ? AND expires_at > ?", teamID, false, s.now()).
		Order("created_at").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}
	return invitations, nil
}

// RosterEntry is one row of the combined members-and-invitations view.
type RosterEntry struct {
	ID           *uuid.UUID  `json:"id"`
	Email        string      `json:"email"`
	FirstName    string      `json:"first_name,omitempty"`
	LastName     string      `json:"last_name,omitempty"`
	Role         models.Role `json:"role"`
	Status       string      `json:"status"` // active, pending
	InvitationID *uuid.UUID  `json:"invitation_id,omitempty"`
}

type Roster struct {
	TeamID             uuid.UUID     `json:"team_id"`
	Entries            []RosterEntry `json:"members_and_invitations"`
	TotalMembers       int           `json:"total_members"`
	PendingInvitations int           `json:"pending_invitations"`
}

// GetRoster returns active members and pending invitations in one view.
// Any team member may read it; listing invitations alone stays admin-only.
func (s *Service) GetRoster(ctx context.Context, actor *models.User, teamID uuid.UUID) (*Roster, error) {
	members, err := s.ListMembers(ctx, actor, teamID)
	if err != nil {
		return nil, err
	}

	var invitations []models.Invitation
	if err := s.db.WithContext(ctx).
		Where("team_id = ? AND is_used = ? AND expires_at > ?", teamID, false, s.now()).
		Order("created_at").
		Find(&invitations).Error; err != nil {
		return nil, fmt.Errorf("listing invitations: %w", err)
	}

	roster := &Roster{
		TeamID:             teamID,
		Entries:            make([]RosterEntry, 0, len(members)+len(invitations)),
		TotalMembers:       len(members),
		PendingInvitations: len(invitations),
	}

	for i := range members {
		m := &members[i]
		roster.Entries = append(roster.Entries, RosterEntry{
			ID:        &m.ID,
			Email:     m.Email,
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Role:      m.Role,
			Status:    "active",
		})
	}
	for i := range invitations {
		inv := &invitations[i]
		roster.Entries = append(roster.Entries, RosterEntry{
			Email:        inv.Email,
			Role:         inv.Role,
			Status:       "pending",
			InvitationID: &inv.ID,
		})
	}

	return roster, nil
}
