package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hugh/teamly/internal/api/dto"
	"github.com/hugh/teamly/internal/auth"
	"github.com/hugh/teamly/internal/team"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps domain sentinel errors to HTTP responses. The
// last-admin violation gets its own code so clients can render a precise
// message instead of a generic forbidden.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Incorrect email or password"})
	case errors.Is(err, auth.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Could not validate credentials"})
	case errors.Is(err, auth.ErrInactiveUser):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Account is inactive"})
	case errors.Is(err, auth.ErrRegistrationClosed):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{
			Error: "Registration is closed. Please request an invitation from an existing team admin.",
		})
	case errors.Is(err, auth.ErrUserExists), errors.Is(err, team.ErrDuplicateUser):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "User with this email already exists"})
	case errors.Is(err, team.ErrDuplicateInvitation):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{Error: "An active invitation already exists for this email"})
	case errors.Is(err, team.ErrInvalidInvitation):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid or expired invitation token"})
	case errors.Is(err, team.ErrInvitationNotFound):
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invitation not found or has expired"})
	case errors.Is(err, team.ErrLastAdmin):
		writeJSON(w, http.StatusConflict, dto.ErrorResponse{
			Error: "Cannot demote or remove the last admin of the team",
			Code:  "last_admin_protected",
		})
	case errors.Is(err, team.ErrForbidden):
		writeJSON(w, http.StatusForbidden, dto.ErrorResponse{Error: "Not authorized for this team"})
	case errors.Is(err, team.ErrTeamNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Team not found"})
	case errors.Is(err, team.ErrMemberNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Member not found"})
	case errors.Is(err, auth.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found"})
	default:
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}
