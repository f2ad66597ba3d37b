package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/activity"
	"github.com/hugh/teamly/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrRegistrationClosed = errors.New("registration is closed")
	ErrUnauthenticated    = errors.New("unauthenticated")
)

type Service struct {
	db       *gorm.DB
	jwt      *JWTService
	logger   *slog.Logger
	recorder *activity.Recorder
}

func NewService(db *gorm.DB, jwt *JWTService, logger *slog.Logger) *Service {
	return &Service{
		db:       db,
		jwt:      jwt,
		logger:   logger,
		recorder: activity.NewRecorder(db, logger),
	}
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	User         *models.User `json:"user"`
}

// Register implements the bootstrap rule: only the very first user may
// self-register, becoming admin of a freshly created team. Team and user
// reference each other, so the team is created with a placeholder owner
// and back-patched once the user row exists, all in one transaction.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil, ErrRegistrationClosed
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var user models.User
	var team models.Team
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		team = models.Team{
			Name:      input.FirstName + "'s Team",
			CreatedBy: uuid.Nil, // patched below once the user exists
			IsActive:  true,
		}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}

		user = models.User{
			Email:        input.Email,
			PasswordHash: hash,
			FirstName:    input.FirstName,
			LastName:     input.LastName,
			Role:         models.RoleAdmin,
			TeamID:       &team.ID,
			IsActive:     true,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		team.CreatedBy = user.ID
		return tx.Model(&models.Team{}).Where("id = ?", team.ID).
			Update("created_by", user.ID).Error
	})
	if err != nil {
		return nil, err
	}

	user.Team = &team

	s.recorder.Record(ctx, activity.Entry{
		UserID:  &user.ID,
		TeamID:  user.TeamID,
		Action:  activity.ActionRegister,
		Details: "bootstrap registration",
	})

	return s.issueTokens(&user)
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Team").
		Where("email = ?", input.Email).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	// Best-effort: a failed last_login write must not block token issuance.
	now := s.jwt.Now()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		s.logger.Warn("failed to update last_login", "user_id", user.ID, "error", err)
	}

	s.recorder.Record(ctx, activity.Entry{
		UserID: &user.ID,
		TeamID: user.TeamID,
		Action: activity.ActionLogin,
	})

	return s.issueTokens(&user)
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	claims, err := s.jwt.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil || !user.IsActive {
		return nil, ErrUnauthenticated
	}

	access, err := s.jwt.IssueAccessToken(user.ID, user.TeamID, user.Email, user.Role, 0)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{AccessToken: access, User: user}, nil
}

// ResolveCaller turns a bearer access token into the authenticated user.
// Any failure, token, lookup or inactive account, collapses to
// ErrUnauthenticated.
func (s *Service) ResolveCaller(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.jwt.Verify(accessToken, TokenTypeAccess)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := s.GetUserByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	if !user.IsActive {
		return nil, ErrUnauthenticated
	}

	return user, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Team").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *Service) issueTokens(user *models.User) (*AuthResponse, error) {
	access, err := s.jwt.IssueAccessToken(user.ID, user.TeamID, user.Email, user.Role, 0)
	if err != nil {
		return nil, err
	}

	refresh, err := s.jwt.IssueRefreshToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         user,
	}, nil
}
