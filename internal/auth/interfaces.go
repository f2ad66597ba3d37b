package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/database/models"
)

// Authenticator defines the interface for identity operations.
type Authenticator interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	ResolveCaller(ctx context.Context, accessToken string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenService defines the interface for token mint/verify operations.
type TokenService interface {
	IssueAccessToken(userID uuid.UUID, teamID *uuid.UUID, email string, role models.Role, ttl time.Duration) (string, error)
	IssueRefreshToken(userID uuid.UUID, email string) (string, error)
	IssueInvitationToken(email string, teamID uuid.UUID, role models.Role) (string, error)
	Verify(tokenString string, want TokenType) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
