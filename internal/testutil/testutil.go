package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/auth"
	"github.com/hugh/teamly/internal/database/models"
	"github.com/hugh/teamly/internal/mailer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Team{},
		&models.User{},
		&models.Invitation{},
		&models.ActivityLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// NewTestJWTService creates a token service with a deterministic secret and
// an optional controllable clock.
func NewTestJWTService(now func() time.Time) *auth.JWTService {
	return auth.NewJWTService(auth.JWTOptions{
		Secret:        "test-secret-key-for-testing",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
		InvitationTTL: 7 * 24 * time.Hour,
		Now:           now,
	})
}

// CreateTestTeam creates a team owned by the given user id.
func CreateTestTeam(t *testing.T, db *gorm.DB, createdBy uuid.UUID) *models.Team {
	t.Helper()

	team := &models.Team{
		Base:      models.Base{ID: uuid.New()},
		Name:      "Test Team " + uuid.New().String()[:8],
		CreatedBy: createdBy,
		IsActive:  true,
	}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("failed to create test team: %v", err)
	}
	return team
}

// CreateTestUser creates an active user on the given team with the role.
func CreateTestUser(t *testing.T, db *gorm.DB, team *models.Team, role models.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("Testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base:         models.Base{ID: uuid.New()},
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	if team != nil {
		user.TeamID = &team.ID
		user.Team = team
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestInvitation creates a pending invitation with a valid token.
func CreateTestInvitation(t *testing.T, db *gorm.DB, jwt *auth.JWTService, email string, team *models.Team, role models.Role, inviter *models.User) *models.Invitation {
	t.Helper()

	token, err := jwt.IssueInvitationToken(email, team.ID, role)
	if err != nil {
		t.Fatalf("failed to mint invitation token: %v", err)
	}

	inv := &models.Invitation{
		Base:      models.Base{ID: uuid.New()},
		Email:     email,
		Role:      role,
		TeamID:    team.ID,
		Token:     token,
		ExpiresAt: jwt.Now().Add(jwt.InvitationTTL()),
		InvitedBy: inviter.ID,
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create test invitation: %v", err)
	}
	return inv
}

// GenerateTestToken generates a valid access token for the given user
func GenerateTestToken(t *testing.T, jwt *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwt.IssueAccessToken(user.ID, user.TeamID, user.Email, user.Role, 0)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return token
}

// FakeMailer records invitation emails and returns a configurable outcome.
type FakeMailer struct {
	mu        sync.Mutex
	Sent      []mailer.InvitationEmail
	Delivered bool
	Detail    string
}

func NewFakeMailer() *FakeMailer {
	return &FakeMailer{Delivered: true, Detail: "sent via fake"}
}

func (f *FakeMailer) SendInvitation(ctx context.Context, email mailer.InvitationEmail) (bool, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = append(f.Sent, email)
	return f.Delivered, f.Detail
}

func (f *FakeMailer) LastSent(t *testing.T) mailer.InvitationEmail {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Sent) == 0 {
		t.Fatal("no invitation emails sent")
	}
	return f.Sent[len(f.Sent)-1]
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}
