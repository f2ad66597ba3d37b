package auth_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/auth"
	"github.com/hugh/teamly/internal/database/models"
	"github.com/hugh/teamly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_Register_Bootstrap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := auth.NewService(db, testutil.NewTestJWTService(nil), discardLogger())
	ctx := context.Background()

	t.Run("first registration creates admin and team", func(t *testing.T) {
		resp, err := svc.Register(ctx, auth.RegisterInput{
			Email:     "founder@example.com",
			Password:  "Foundersecret1",
			FirstName: "Ada",
			LastName:  "Lovelace",
		})
		require.NoError(t, err)
		require.NotNil(t, resp.User)

		assert.Equal(t, models.RoleAdmin, resp.User.Role)
		require.NotNil(t, resp.User.TeamID)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)

		// The team's owner must be back-patched to the new user.
		var team models.Team
		require.NoError(t, db.First(&team, "id = ?", *resp.User.TeamID).Error)
		assert.Equal(t, resp.User.ID, team.CreatedBy)
		assert.Equal(t, "Ada's Team", team.Name)
	})

	t.Run("second registration is closed", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email:     "second@example.com",
			Password:  "Somesecret1",
			FirstName: "Grace",
			LastName:  "Hopper",
		})
		assert.ErrorIs(t, err, auth.ErrRegistrationClosed)
	})

	t.Run("duplicate email reported before closed registration", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email:     "founder@example.com",
			Password:  "Foundersecret1",
			FirstName: "Ada",
			LastName:  "Lovelace",
		})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})
}

func TestService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	jwt := testutil.NewTestJWTService(nil)
	svc := auth.NewService(db, jwt, discardLogger())
	ctx := context.Background()

	team := testutil.CreateTestTeam(t, db, uuid.New())
	user := testutil.CreateTestUser(t, db, team, models.RoleMember)

	t.Run("valid credentials issue tokens and stamp last_login", func(t *testing.T) {
		resp, err := svc.Login(ctx, auth.LoginInput{Email: user.Email, Password: "Testpassword123"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)

		var reloaded models.User
		require.NoError(t, db.First(&reloaded, "id = ?", user.ID).Error)
		require.NotNil(t, reloaded.LastLogin)
		assert.WithinDuration(t, time.Now(), *reloaded.LastLogin, time.Minute)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: user.Email, Password: "Wrongpassword1"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{Email: "nobody@example.com", Password: "Testpassword123"})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := testutil.CreateTestUser(t, db, team, models.RoleMember)
		require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

		_, err := svc.Login(ctx, auth.LoginInput{Email: inactive.Email, Password: "Testpassword123"})
		assert.ErrorIs(t, err, auth.ErrInactiveUser)
	})
}

func TestService_Refresh(t *testing.T) {
	db := testutil.SetupTestDB(t)
	jwt := testutil.NewTestJWTService(nil)
	svc := auth.NewService(db, jwt, discardLogger())
	ctx := context.Background()

	team := testutil.CreateTestTeam(t, db, uuid.New())
	user := testutil.CreateTestUser(t, db, team, models.RoleMember)

	t.Run("valid refresh token yields new access token", func(t *testing.T) {
		refresh, err := jwt.IssueRefreshToken(user.ID, user.Email)
		require.NoError(t, err)

		resp, err := svc.Refresh(ctx, refresh)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)

		claims, err := jwt.Verify(resp.AccessToken, auth.TokenTypeAccess)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
	})

	t.Run("access token is not accepted as refresh token", func(t *testing.T) {
		access := testutil.GenerateTestToken(t, jwt, user)
		_, err := svc.Refresh(ctx, access)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}

func TestService_ResolveCaller(t *testing.T) {
	db := testutil.SetupTestDB(t)
	jwt := testutil.NewTestJWTService(nil)
	svc := auth.NewService(db, jwt, discardLogger())
	ctx := context.Background()

	team := testutil.CreateTestTeam(t, db, uuid.New())
	user := testutil.CreateTestUser(t, db, team, models.RoleAdmin)

	t.Run("resolves an active user", func(t *testing.T) {
		token := testutil.GenerateTestToken(t, jwt, user)
		resolved, err := svc.ResolveCaller(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, resolved.ID)
		assert.Equal(t, models.RoleAdmin, resolved.Role)
	})

	t.Run("rejects a malformed token", func(t *testing.T) {
		_, err := svc.ResolveCaller(ctx, "garbage")
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("rejects a token for a missing subject", func(t *testing.T) {
		ghost := &models.User{Base: models.Base{ID: uuid.New()}, Email: "ghost@example.com", Role: models.RoleMember}
		token := testutil.GenerateTestToken(t, jwt, ghost)
		_, err := svc.ResolveCaller(ctx, token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})

	t.Run("rejects an inactive subject", func(t *testing.T) {
		inactive := testutil.CreateTestUser(t, db, team, models.RoleMember)
		token := testutil.GenerateTestToken(t, jwt, inactive)
		require.NoError(t, db.Model(inactive).Update("is_active", false).Error)

		_, err := svc.ResolveCaller(ctx, token)
		assert.ErrorIs(t, err, auth.ErrUnauthenticated)
	})
}
