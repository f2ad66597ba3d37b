package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/teamly/internal/database/models"
	"github.com/hugh/teamly/internal/mailer"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	mailer mailer.Mailer
}

func NewHandler(db *gorm.DB, logger *slog.Logger, m mailer.Mailer) *Handler {
	return &Handler{db: db, logger: logger, mailer: m}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeInvitationEmail, h.HandleInvitationEmail)
}

// HandleInvitationEmail delivers a queued invitation email and records the
// outcome on the invitation row. Delivery failure is terminal for the task
// but never for the invitation, which stays redeemable.
func (h *Handler) HandleInvitationEmail(ctx context.Context, t *asynq.Task) error {
	var payload InvitationEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	h.logger.Info("delivering invitation email",
		"invitation_id", payload.Email.InvitationID,
		"to", payload.Email.ToEmail,
	)

	delivered, detail := h.mailer.SendInvitation(ctx, payload.Email)
	if !delivered {
		h.logger.Warn("invitation email delivery failed",
			"invitation_id", payload.Email.InvitationID,
			"detail", detail,
		)
	}

	err := h.db.WithContext(ctx).Model(&models.Invitation{}).
		Where("id = ?", payload.Email.InvitationID).
		Updates(map[string]interface{}{
			"email_sent":   delivered,
			"email_detail": detail,
		}).Error
	if err != nil {
		h.logger.Warn("failed to record email dispatch outcome",
			"invitation_id", payload.Email.InvitationID,
			"error", err,
		)
	}

	return nil
}
