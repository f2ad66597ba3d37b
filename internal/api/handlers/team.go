package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/api/dto"
	"github.com/hugh/teamly/internal/api/middleware"
	"github.com/hugh/teamly/internal/database/models"
	"github.com/hugh/teamly/internal/team"
)

type TeamHandler struct {
	teamService *team.Service
}

func NewTeamHandler(teamService *team.Service) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req dto.InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	teamID, _ := uuid.Parse(req.TeamID)
	role, _ := models.ParseRole(req.Role)

	invitation, err := h.teamService.Invite(r.Context(), middleware.GetUser(r.Context()), team.InviteInput{
		Email:  req.Email,
		TeamID: teamID,
		Role:   role,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.NewInvitationDTO(invitation))
}

func (h *TeamHandler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamIDParam(w, r)
	if !ok {
		return
	}

	invitations, err := h.teamService.ListPending(r.Context(), middleware.GetUser(r.Context()), teamID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]dto.InvitationDTO, 0, len(invitations))
	for i := range invitations {
		out = append(out, dto.NewInvitationDTO(&invitations[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TeamHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invitation token is required"})
		return
	}

	var req dto.AcceptInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	user, err := h.teamService.Accept(r.Context(), token, team.AcceptInput{
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Invitation accepted successfully",
		"user":    dto.NewUserDTO(user),
	})
}

func (h *TeamHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamIDParam(w, r)
	if !ok {
		return
	}

	members, err := h.teamService.ListMembers(r.Context(), middleware.GetUser(r.Context()), teamID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]dto.UserDTO, 0, len(members))
	for i := range members {
		out = append(out, dto.NewUserDTO(&members[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *TeamHandler) Roster(w http.ResponseWriter, r *http.Request) {
	teamID, ok := teamIDParam(w, r)
	if !ok {
		return
	}

	roster, err := h.teamService.GetRoster(r.Context(), middleware.GetUser(r.Context()), teamID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, roster)
}

func (h *TeamHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	memberID, ok := memberIDParam(w, r)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	role, _ := models.ParseRole(req.Role)

	member, err := h.teamService.UpdateMemberRole(r.Context(), middleware.GetUser(r.Context()), memberID, role)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewUserDTO(member))
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	memberID, ok := memberIDParam(w, r)
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(r.Context(), middleware.GetUser(r.Context()), memberID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Member removed successfully"})
}

func teamIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.URL.Query().Get("team_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Valid team_id query parameter is required"})
		return uuid.Nil, false
	}
	return id, true
}

func memberIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Valid member id is required"})
		return uuid.Nil, false
	}
	return id, true
}
