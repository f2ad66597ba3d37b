package mailer

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/database/models"
)

// InvitationEmail is everything the membership core hands to the email
// collaborator. InvitationID travels along so asynchronous deliverers can
// write the outcome back onto the row.
type InvitationEmail struct {
	InvitationID uuid.UUID   `json:"invitation_id"`
	ToEmail      string      `json:"to_email"`
	InviterName  string      `json:"inviter_name"`
	TeamName     string      `json:"team_name"`
	Link         string      `json:"link"`
	Role         models.Role `json:"role"`
}

// Mailer delivers invitation emails. delivered=false is advisory: callers
// log it and carry on, the invitation stays valid either way.
type Mailer interface {
	SendInvitation(ctx context.Context, email InvitationEmail) (delivered bool, detail string)
}
