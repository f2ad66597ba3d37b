package tasks

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/teamly/internal/mailer"
)

// QueueMailer satisfies mailer.Mailer by enqueuing delivery onto the mail
// queue instead of sending inline. "Delivered" here means accepted for
// asynchronous delivery; the worker records the real outcome on the row.
type QueueMailer struct {
	client *asynq.Client
	logger *slog.Logger
}

func NewQueueMailer(client *asynq.Client, logger *slog.Logger) *QueueMailer {
	return &QueueMailer{client: client, logger: logger}
}

func (q *QueueMailer) SendInvitation(ctx context.Context, email mailer.InvitationEmail) (bool, string) {
	task, err := NewInvitationEmailTask(InvitationEmailPayload{Email: email})
	if err != nil {
		return false, err.Error()
	}

	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		q.logger.Warn("failed to enqueue invitation email", "to", email.ToEmail, "error", err)
		return false, err.Error()
	}

	return true, "queued for delivery"
}

var _ mailer.Mailer = (*QueueMailer)(nil)
