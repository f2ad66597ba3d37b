package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
	"github.com/hugh/teamly/internal/mailer"
)

// Task type names
const (
	TypeInvitationEmail = "mail:invitation"
)

// InvitationEmailPayload contains the data for an invitation email task.
type InvitationEmailPayload struct {
	Email mailer.InvitationEmail `json:"email"`
}

func NewInvitationEmailTask(payload InvitationEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeInvitationEmail, data, asynq.Queue("mail")), nil
}
