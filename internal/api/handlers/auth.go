package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hugh/teamly/internal/api/dto"
	"github.com/hugh/teamly/internal/api/middleware"
	"github.com/hugh/teamly/internal/auth"
)

type AuthHandler struct {
	authService      auth.Authenticator
	accessExpirySecs int
}

func NewAuthHandler(authService auth.Authenticator, accessExpirySecs int) *AuthHandler {
	return &AuthHandler{
		authService:      authService,
		accessExpirySecs: accessExpirySecs,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    h.accessExpirySecs,
		User:         dto.NewUserDTO(resp.User),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    h.accessExpirySecs,
		User:         dto.NewUserDTO(resp.User),
	})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		AccessToken: resp.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   h.accessExpirySecs,
		User:        dto.NewUserDTO(resp.User),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Error: "Could not validate credentials"})
		return
	}

	writeJSON(w, http.StatusOK, dto.NewUserDTO(user))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless; logout is a client-side concern.
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Successfully logged out"})
}
