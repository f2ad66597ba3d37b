package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/database/models"
)

var (
	ErrTokenMalformed    = errors.New("token is malformed")
	ErrTokenTypeMismatch = errors.New("unexpected token type")
	ErrTokenExpired      = errors.New("token has expired")
)

// TokenType discriminates the three token kinds minted by the service.
type TokenType string

const (
	TokenTypeAccess     TokenType = "access"
	TokenTypeRefresh    TokenType = "refresh"
	TokenTypeInvitation TokenType = "invitation"
)

type Claims struct {
	UserID    uuid.UUID   `json:"user_id,omitempty"`
	TeamID    *uuid.UUID  `json:"team_id,omitempty"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role,omitempty"`
	TokenType TokenType   `json:"type"`
	jwt.RegisteredClaims
}

// JWTOptions carries everything the token service needs at construction
// time. Nothing is read from ambient process state afterwards.
type JWTOptions struct {
	Secret        string
	Algorithm     string // HMAC family only, defaults to HS256
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	InvitationTTL time.Duration
	Now           func() time.Time // test hook, defaults to time.Now
}

type JWTService struct {
	secret        []byte
	method        jwt.SigningMethod
	accessTTL     time.Duration
	refreshTTL    time.Duration
	invitationTTL time.Duration
	now           func() time.Time
}

func NewJWTService(opts JWTOptions) *JWTService {
	method := jwt.SigningMethodHS256
	if opts.Algorithm != "" {
		if m, ok := jwt.GetSigningMethod(opts.Algorithm).(*jwt.SigningMethodHMAC); ok {
			method = m
		}
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = 7 * 24 * time.Hour
	}
	if opts.InvitationTTL <= 0 {
		opts.InvitationTTL = 7 * 24 * time.Hour
	}

	return &JWTService{
		secret:        []byte(opts.Secret),
		method:        method,
		accessTTL:     opts.AccessTTL,
		refreshTTL:    opts.RefreshTTL,
		invitationTTL: opts.InvitationTTL,
		now:           now,
	}
}

// InvitationTTL is exposed so invitation rows can be stamped with the same
// expiry the embedded token carries.
func (s *JWTService) InvitationTTL() time.Duration {
	return s.invitationTTL
}

func (s *JWTService) Now() time.Time {
	return s.now()
}

func (s *JWTService) IssueAccessToken(userID uuid.UUID, teamID *uuid.UUID, email string, role models.Role, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.accessTTL
	}
	now := s.now()
	claims := Claims{
		UserID:    userID,
		TeamID:    teamID,
		Email:     email,
		Role:      role,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "teamly",
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) IssueRefreshToken(userID uuid.UUID, email string) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:    userID,
		Email:     email,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "teamly",
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

func (s *JWTService) IssueInvitationToken(email string, teamID uuid.UUID, role models.Role) (string, error) {
	now := s.now()
	claims := Claims{
		TeamID:    &teamID,
		Email:     email,
		Role:      role,
		TokenType: TokenTypeInvitation,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.invitationTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "teamly",
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

// Verify decodes the token and checks, in order: signature, token kind,
// expiry. Kind and expiry are checked here rather than delegated to the
// jwt library so every token kind surfaces the same error set.
func (s *JWTService) Verify(tokenString string, want TokenType) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenMalformed
		}
		return s.secret, nil
	}, jwt.WithoutClaimsValidation())

	if err != nil {
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.TokenType != want {
		return nil, ErrTokenTypeMismatch
	}

	if claims.ExpiresAt == nil || s.now().After(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	return claims, nil
}
