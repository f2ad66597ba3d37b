package dto

import (
	"time"

	"github.com/hugh/teamly/internal/api/validation"
	"github.com/hugh/teamly/internal/database/models"
)

type InviteRequest struct {
	Email  string `json:"email"`
	TeamID string `json:"team_id"`
	Role   string `json:"role"`
}

func (r InviteRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email is invalid"
	}
	if r.TeamID == "" {
		errors["team_id"] = "Team id is required"
	} else if !validation.IsValidUUID(r.TeamID) {
		errors["team_id"] = "Team id is invalid"
	}
	if _, err := models.ParseRole(r.Role); err != nil {
		errors["role"] = "Role must be 'admin' or 'member'"
	}

	return errors
}

type AcceptInvitationRequest struct {
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r AcceptInvitationRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}
	if r.FirstName == "" {
		errors["first_name"] = "First name is required"
	}
	if r.LastName == "" {
		errors["last_name"] = "Last name is required"
	}

	return errors
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

func (r UpdateRoleRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if _, err := models.ParseRole(r.Role); err != nil {
		errors["role"] = "Role must be 'admin' or 'member'"
	}

	return errors
}

type InvitationDTO struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	TeamID      string    `json:"team_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	EmailSent   bool      `json:"email_sent"`
	EmailDetail string    `json:"email_detail,omitempty"`
}

func NewInvitationDTO(inv *models.Invitation) InvitationDTO {
	return InvitationDTO{
		ID:          inv.ID.String(),
		Email:       inv.Email,
		Role:        inv.Role.String(),
		TeamID:      inv.TeamID.String(),
		ExpiresAt:   inv.ExpiresAt,
		CreatedAt:   inv.CreatedAt,
		EmailSent:   inv.EmailSent,
		EmailDetail: inv.EmailDetail,
	}
}

func NewUserDTO(u *models.User) UserDTO {
	dto := UserDTO{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role.String(),
		IsActive:  u.IsActive,
	}
	if u.TeamID != nil {
		dto.TeamID = u.TeamID.String()
	}
	if u.Team != nil {
		dto.TeamName = u.Team.Name
	}
	return dto
}
