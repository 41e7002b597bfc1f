package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samedayramps/template-tiny-church/internal/domain"
	"github.com/samedayramps/template-tiny-church/internal/session"
	"github.com/samedayramps/template-tiny-church/pkg/ratelimit"
	"github.com/samedayramps/template-tiny-church/pkg/token"
)

func newTestAuthService(t *testing.T, profiles *fakeProfileRepo) *AuthService {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	resetTokens, err := token.NewService([]byte("0123456789abcdef0123456789abcdef"), "test", time.Hour)
	require.NoError(t, err)

	return NewAuthService(
		profiles,
		session.NewRedisStore(client),
		ratelimit.NewSignInLimiter(client, 3, time.Minute),
		resetTokens,
		nil,
		time.Hour,
	)
}

func TestAuthSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("creates profile with the default role", func(t *testing.T) {
		profiles := newFakeProfileRepo()
		svc := newTestAuthService(t, profiles)

		profile, err := svc.SignUp(ctx, SignUpRequest{Email: "  New@Example.COM ", Password: "hunter2hunter2"})
		require.NoError(t, err)

		assert.Equal(t, "new@example.com", profile.Email)
		assert.Equal(t, domain.RoleUser, profile.Role)
		assert.NotEmpty(t, profile.PasswordHash)
		assert.NotEqual(t, "hunter2hunter2", profile.PasswordHash)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		profiles := newFakeProfileRepo()
		svc := newTestAuthService(t, profiles)

		_, err := svc.SignUp(ctx, SignUpRequest{Email: "new@example.com", Password: "hunter2hunter2"})
		require.NoError(t, err)

		_, err = svc.SignUp(ctx, SignUpRequest{Email: "NEW@example.com", Password: "hunter2hunter2"})
		assert.ErrorIs(t, err, ErrEmailTaken)
	})
}

func TestAuthSignIn(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials mint a session", func(t *testing.T) {
		profiles := newFakeProfileRepo()
		svc := newTestAuthService(t, profiles)

		_, err := svc.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter2hunter2"})
		require.NoError(t, err)

		result, err := svc.SignIn(ctx, SignInRequest{Email: "user@example.com", Password: "hunter2hunter2"})
		require.NoError(t, err)

		assert.NotEmpty(t, result.SessionID)
		assert.Equal(t, "/dashboard", result.Redirect)

		profile, err := svc.Authenticate(ctx, result.SessionID)
		require.NoError(t, err)
		require.NotNil(t, profile)
		assert.Equal(t, "user@example.com", profile.Email)
	})

	t.Run("admin redirect targets the admin console", func(t *testing.T) {
		admin := testAdmin()
		profiles := newFakeProfileRepo()
		svc := newTestAuthService(t, profiles)

		created, err := svc.SignUp(ctx, SignUpRequest{Email: admin.Email, Password: "hunter2hunter2"})
		require.NoError(t, err)
		created.Role = domain.RoleAdmin

		result, err := svc.SignIn(ctx, SignInRequest{Email: admin.Email, Password: "hunter2hunter2"})
		require.NoError(t, err)
		assert.Equal(t, "/admin/dashboard", result.Redirect)
	})

	t.Run("wrong password fails", func(t *testing.T) {
		profiles := newFakeProfileRepo()
		svc := newTestAuthService(t, profiles)

		_, err := svc.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter2hunter2"})
		require.NoError(t, err)

		_, err = svc.SignIn(ctx, SignInRequest{Email: "user@example.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email fails the same way", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeProfileRepo())

		_, err := svc.SignIn(ctx, SignInRequest{Email: "nobody@example.com", Password: "whatever"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("locks out after repeated failures", func(t *testing.T) {
		profiles := newFakeProfileRepo()
		svc := newTestAuthService(t, profiles)

		_, err := svc.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter2hunter2"})
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			_, err = svc.SignIn(ctx, SignInRequest{Email: "user@example.com", Password: "wrong-password"})
			require.ErrorIs(t, err, ErrInvalidCredentials)
		}

		// Even the correct password is refused while locked.
		_, err = svc.SignIn(ctx, SignInRequest{Email: "user@example.com", Password: "hunter2hunter2"})
		assert.ErrorIs(t, err, ErrTooManyAttempts)
	})
}

func TestAuthSignOut(t *testing.T) {
	ctx := context.Background()
	profiles := newFakeProfileRepo()
	svc := newTestAuthService(t, profiles)

	_, err := svc.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	result, err := svc.SignIn(ctx, SignInRequest{Email: "user@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, result.SessionID))

	profile, err := svc.Authenticate(ctx, result.SessionID)
	assert.NoError(t, err)
	assert.Nil(t, profile)

	// Signing out again, or with no session at all, still succeeds.
	assert.NoError(t, svc.SignOut(ctx, result.SessionID))
	assert.NoError(t, svc.SignOut(ctx, ""))
}

func TestAuthAuthenticate(t *testing.T) {
	ctx := context.Background()

	t.Run("empty session id resolves to nothing", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeProfileRepo())

		profile, err := svc.Authenticate(ctx, "")
		assert.NoError(t, err)
		assert.Nil(t, profile)
	})

	t.Run("session outlives a deleted profile", func(t *testing.T) {
		profiles := newFakeProfileRepo()
		svc := newTestAuthService(t, profiles)

		created, err := svc.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "hunter2hunter2"})
		require.NoError(t, err)

		result, err := svc.SignIn(ctx, SignInRequest{Email: "user@example.com", Password: "hunter2hunter2"})
		require.NoError(t, err)

		require.NoError(t, profiles.Delete(ctx, created.ID))

		profile, err := svc.Authenticate(ctx, result.SessionID)
		assert.NoError(t, err)
		assert.Nil(t, profile)
	})
}

func TestAuthPasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email still reports success", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeProfileRepo())
		assert.NoError(t, svc.ForgotPassword(ctx, "nobody@example.com"))
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		svc := newTestAuthService(t, newFakeProfileRepo())
		err := svc.ResetPassword(ctx, "not-a-token", "new-password-123")
		assert.ErrorIs(t, err, ErrInvalidResetToken)
	})

	t.Run("valid token replaces the password", func(t *testing.T) {
		profiles := newFakeProfileRepo()
		svc := newTestAuthService(t, profiles)

		created, err := svc.SignUp(ctx, SignUpRequest{Email: "user@example.com", Password: "old-password-123"})
		require.NoError(t, err)

		resetTokens, err := token.NewService([]byte("0123456789abcdef0123456789abcdef"), "test", time.Hour)
		require.NoError(t, err)
		raw, err := resetTokens.GeneratePasswordReset(created.ID)
		require.NoError(t, err)

		require.NoError(t, svc.ResetPassword(ctx, raw, "new-password-123"))

		_, err = svc.SignIn(ctx, SignInRequest{Email: "user@example.com", Password: "old-password-123"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		result, err := svc.SignIn(ctx, SignInRequest{Email: "user@example.com", Password: "new-password-123"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.SessionID)
	})
}
