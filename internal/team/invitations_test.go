package team_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/teamly/internal/database/models"
	"github.com/hugh/teamly/internal/team"
	"github.com/hugh/teamly/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Invite(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	teamRow := testutil.CreateTestTeam(t, fx.db, uuid.New())
	admin := testutil.CreateTestUser(t, fx.db, teamRow, models.RoleAdmin)
	member := testutil.CreateTestUser(t, fx.db, teamRow, models.RoleMember)

	t.Run("creates an invitation and dispatches email", func(t *testing.T) {
		inv, err := fx.svc.Invite(ctx, admin, team.InviteInput{
			Email:  "new@example.com",
			TeamID: teamRow.ID,
			Role:   models.RoleMember,
		})
		require.NoError(t, err)

		assert.Equal(t, "new@example.com", inv.Email)
		assert.Equal(t, models.RoleMember, inv.Role)
		assert.False(t, inv.IsUsed)
		assert.True(t, inv.EmailSent)
		assert.Equal(t, fx.now.Add(7*24*time.Hour), inv.ExpiresAt)

		sent := fx.mailer.LastSent(t)
		assert.Equal(t, inv.ID, sent.InvitationID)
		assert.Equal(t, "new@example.com", sent.ToEmail)
		assert.Equal(t, teamRow.Name, sent.TeamName)
		assert.Contains(t, sent.Link, "/auth/accept-invitation/"+inv.Token)
	})

	t.Run("non-admin cannot invite", func(t *testing.T) {
		_, err := fx.svc.Invite(ctx, member, team.InviteInput{
			Email:  "nope@example.com",
			TeamID: teamRow.ID,
			Role:   models.RoleMember,
		})
		assert.ErrorIs(t, err, team.ErrForbidden)
	})

	t.Run("admin cannot invite into another team", func(t *testing.T) {
		otherTeam := testutil.CreateTestTeam(t, fx.db, uuid.New())
		_, err := fx.svc.Invite(ctx, admin, team.InviteInput{
			Email:  "nope@example.com",
			TeamID: otherTeam.ID,
			Role:   models.RoleMember,
		})
		assert.ErrorIs(t, err, team.ErrForbidden)
	})

	t.Run("existing user email is refused", func(t *testing.T) {
		_, err := fx.svc.Invite(ctx, admin, team.InviteInput{
			Email:  member.Email,
			TeamID: teamRow.ID,
			Role:   models.RoleMember,
		})
		assert.ErrorIs(t, err, team.ErrDuplicateUser)
	})

	t.Run("pending invitation blocks a duplicate", func(t *testing.T) {
		_, err := fx.svc.Invite(ctx, admin, team.InviteInput{
			Email:  "new@example.com",
			TeamID: teamRow.ID,
			Role:   models.RoleAdmin,
		})
		assert.ErrorIs(t, err, team.ErrDuplicateInvitation)
	})

	t.Run("expired invitation no longer blocks", func(t *testing.T) {
		*fx.now = fx.now.Add(7*24*time.Hour + time.Second)

		inv, err := fx.svc.Invite(ctx, admin, team.InviteInput{
			Email:  "new@example.com",
			TeamID: teamRow.ID,
			Role:   models.RoleMember,
		})
		require.NoError(t, err)
		assert.False(t, inv.IsUsed)
	})

	t.Run("failed email leaves the invitation valid", func(t *testing.T) {
		fx.mailer.Delivered = false
		fx.mailer.Detail = "smtp connection refused"

		inv, err := fx.svc.Invite(ctx, admin, team.InviteInput{
			Email:  "unreached@example.com",
			TeamID: teamRow.ID,
			Role:   models.RoleMember,
		})
		require.NoError(t, err)
		assert.False(t, inv.EmailSent)
		assert.Equal(t, "smtp connection refused", inv.EmailDetail)

		var reloaded models.Invitation
		require.NoError(t, fx.db.First(&reloaded, "id = ?", inv.ID).Error)
		assert.False(t, reloaded.EmailSent)
		assert.False(t, reloaded.IsUsed)
	})
}

func TestService_Accept(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	teamRow := testutil.CreateTestTeam(t, fx.db, uuid.New())
	admin := testutil.CreateTestUser(t, fx.db, teamRow, models.RoleAdmin)

	invite := func(t *testing.T, email string) *models.Invitation {
		t.Helper()
		inv, err := fx.svc.Invite(ctx, admin, team.InviteInput{
			Email:  email,
			TeamID: teamRow.ID,
			Role:   models.RoleMember,
		})
		require.NoError(t, err)
		return inv
	}

	t.Run("round trip creates the invited user", func(t *testing.T) {
		inv := invite(t, "joiner@example.com")

		user, err := fx.svc.Accept(ctx, inv.Token, team.AcceptInput{
			Password:  "Joinersecret1",
			FirstName: "Jo",
			LastName:  "Iner",
		})
		require.NoError(t, err)

		assert.Equal(t, "joiner@example.com", user.Email)
		assert.Equal(t, models.RoleMember, user.Role)
		require.NotNil(t, user.TeamID)
		assert.Equal(t, teamRow.ID, *user.TeamID)
		assert.True(t, user.IsActive)

		var reloaded models.Invitation
		require.NoError(t, fx.db.First(&reloaded, "id = ?", inv.ID).Error)
		assert.True(t, reloaded.IsUsed)
		require.NotNil(t, reloaded.AcceptedAt)
	})

	t.Run("a used invitation cannot be redeemed again", func(t *testing.T) {
		inv := invite(t, "once@example.com")

		_, err := fx.svc.Accept(ctx, inv.Token, team.AcceptInput{
			Password: "Oncesecret1", FirstName: "On", LastName: "Ce",
		})
		require.NoError(t, err)

		_, err = fx.svc.Accept(ctx, inv.Token, team.AcceptInput{
			Password: "Oncesecret1", FirstName: "On", LastName: "Ce",
		})
		assert.ErrorIs(t, err, team.ErrInvitationNotFound)
	})

	t.Run("garbage token is rejected before any lookup", func(t *testing.T) {
		_, err := fx.svc.Accept(ctx, "not-a-token", team.AcceptInput{
			Password: "Whatever123", FirstName: "X", LastName: "Y",
		})
		assert.ErrorIs(t, err, team.ErrInvalidInvitation)
	})

	t.Run("access token is not an invitation", func(t *testing.T) {
		token := testutil.GenerateTestToken(t, fx.jwt, admin)
		_, err := fx.svc.Accept(ctx, token, team.AcceptInput{
			Password: "Whatever123", FirstName: "X", LastName: "Y",
		})
		assert.ErrorIs(t, err, team.ErrInvalidInvitation)
	})

	t.Run("valid up to the expiry instant, rejected after", func(t *testing.T) {
		inv := invite(t, "boundary@example.com")

		*fx.now = inv.ExpiresAt.Add(-time.Second)
		user, err := fx.svc.Accept(ctx, inv.Token, team.AcceptInput{
			Password: "Boundary1234", FirstName: "Bo", LastName: "Undary",
		})
		require.NoError(t, err)
		assert.Equal(t, "boundary@example.com", user.Email)

		late := invite(t, "late@example.com")
		*fx.now = late.ExpiresAt.Add(time.Second)
		_, err = fx.svc.Accept(ctx, late.Token, team.AcceptInput{
			Password: "Latesecret12", FirstName: "La", LastName: "Te",
		})
		assert.ErrorIs(t, err, team.ErrInvalidInvitation)
	})

	t.Run("email registered after the invite is refused", func(t *testing.T) {
		inv := invite(t, "raced@example.com")

		raced := testutil.CreateTestUser(t, fx.db, teamRow, models.RoleMember)
		require.NoError(t, fx.db.Model(raced).Update("email", "raced@example.com").Error)

		_, err := fx.svc.Accept(ctx, inv.Token, team.AcceptInput{
			Password: "Racedsecret1", FirstName: "Ra", LastName: "Ced",
		})
		assert.ErrorIs(t, err, team.ErrDuplicateUser)
	})
}

func TestService_ListPending(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	teamRow := testutil.CreateTestTeam(t, fx.db, uuid.New())
	admin := testutil.CreateTestUser(t, fx.db, teamRow, models.RoleAdmin)
	member := testutil.CreateTestUser(t, fx.db, teamRow, models.RoleMember)

	first, err := fx.svc.Invite(ctx, admin, team.InviteInput{
		Email: "one@example.com", TeamID: teamRow.ID, Role: models.RoleMember,
	})
	require.NoError(t, err)
	_, err = fx.svc.Invite(ctx, admin, team.InviteInput{
		Email: "two@example.com", TeamID: teamRow.ID, Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	t.Run("admin sees pending invitations", func(t *testing.T) {
		pending, err := fx.svc.ListPending(ctx, admin, teamRow.ID)
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("member may not list invitations", func(t *testing.T) {
		_, err := fx.svc.ListPending(ctx, member, teamRow.ID)
		assert.ErrorIs(t, err, team.ErrForbidden)
	})

	t.Run("accepted invitations disappear", func(t *testing.T) {
		_, err := fx.svc.Accept(ctx, first.Token, team.AcceptInput{
			Password: "Onesecret123", FirstName: "O", LastName: "Ne",
		})
		require.NoError(t, err)

		pending, err := fx.svc.ListPending(ctx, admin, teamRow.ID)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, "two@example.com", pending[0].Email)
	})
}
