package dto

import "github.com/hugh/teamly/internal/api/validation"

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Email is invalid"
	}
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

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (r RefreshRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.RefreshToken == "" {
		errors["refresh_token"] = "Refresh token is required"
	}

	return errors
}

type TokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	TokenType    string  `json:"token_type"`
	ExpiresIn    int     `json:"expires_in"`
	User         UserDTO `json:"user"`
}

type UserDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	TeamID    string `json:"team_id,omitempty"`
	TeamName  string `json:"team_name,omitempty"`
	IsActive  bool   `json:"is_active"`
}
