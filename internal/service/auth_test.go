package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/angelarchive/archive-server/internal/auth"
	"github.com/angelarchive/archive-server/internal/config"
	domainerrors "github.com/angelarchive/archive-server/internal/errors"
	"github.com/angelarchive/archive-server/internal/service"
	"github.com/angelarchive/archive-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store      *store.Store
	auth       *service.AuthService
	catalog    *service.CatalogService
	collection *service.CollectionService
	export     *service.ExportService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.New(t.TempDir(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	key, err := auth.LoadOrGenerateKey(t.TempDir())
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(key, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	catalog := service.NewCatalogService(st, "https://cdn.example.com")

	return &testEnv{
		store:      st,
		auth:       service.NewAuthService(st, tokens, nil),
		catalog:    catalog,
		collection: service.NewCollectionService(st, catalog, nil),
		export: service.NewExportService(st, catalog, config.ExportConfig{
			Cooldown: time.Hour,
		}, nil),
	}
}

func signupTestUser(t *testing.T, env *testEnv) *service.AuthResponse {
	t.Helper()

	resp, err := env.auth.Signup(context.Background(), service.SignupRequest{
		Username: "collector",
		Email:    "c@example.com",
		Password: "hunter22hunter22",
	})
	require.NoError(t, err)
	return resp
}

func TestSignup_ReturnsTokenAndSanitizedUser(t *testing.T) {
	env := setupTestEnv(t)

	resp := signupTestUser(t, env)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "collector", resp.User.Username)
	assert.Empty(t, resp.User.PasswordHash, "hash must not leave the service layer")
}

func TestSignup_RejectsInvalidRequest(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.auth.Signup(context.Background(), service.SignupRequest{
		Username: "ab",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	env := setupTestEnv(t)
	signupTestUser(t, env)

	_, err := env.auth.Signup(context.Background(), service.SignupRequest{
		Username: "Collector",
		Email:    "other@example.com",
		Password: "hunter22hunter22",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.ErrorContains(t, err, "username")
}

func TestSignup_DuplicateEmail(t *testing.T) {
	env := setupTestEnv(t)
	signupTestUser(t, env)

	_, err := env.auth.Signup(context.Background(), service.SignupRequest{
		Username: "different",
		Email:    "C@Example.com",
		Password: "hunter22hunter22",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
	assert.ErrorContains(t, err, "email")
}

func TestLogin_Roundtrip(t *testing.T) {
	env := setupTestEnv(t)
	signupTestUser(t, env)

	resp, err := env.auth.Login(context.Background(), service.LoginRequest{
		Username: "collector",
		Password: "hunter22hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	claims, err := env.auth.Verify(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
}

func TestLogin_WrongPassword(t *testing.T) {
	env := setupTestEnv(t)
	signupTestUser(t, env)

	_, err := env.auth.Login(context.Background(), service.LoginRequest{
		Username: "collector",
		Password: "not the password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestLogin_UnknownUsername(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.auth.Login(context.Background(), service.LoginRequest{
		Username: "ghost",
		Password: "whatever1234",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestLogout_RevokesToken(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	resp := signupTestUser(t, env)

	claims, err := env.auth.Verify(ctx, resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, claims.SessionID))

	_, err = env.auth.Verify(ctx, resp.AccessToken)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestVerify_GarbageToken(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.auth.Verify(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestMe_And_GetByUsername(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	resp := signupTestUser(t, env)

	me, err := env.auth.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "collector", me.Username)
	assert.Empty(t, me.PasswordHash)
	assert.NotEmpty(t, me.AvatarColor)

	profile, err := env.auth.GetByUsername(ctx, "COLLECTOR")
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, profile.ID)
}

func TestUpdateProfile(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	resp := signupTestUser(t, env)

	user, err := env.auth.UpdateProfile(ctx, resp.User.ID, service.UpdateProfileRequest{
		ProfilePic: "https://cdn.example.com/pics/collector.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/pics/collector.png", user.ProfilePic)

	me, err := env.auth.Me(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/pics/collector.png", me.ProfilePic)

	_, err = env.auth.UpdateProfile(ctx, resp.User.ID, service.UpdateProfileRequest{
		ProfilePic: "not a url",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestAvailabilityChecks(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	signupTestUser(t, env)

	free, err := env.auth.UsernameAvailable(ctx, "collector")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = env.auth.UsernameAvailable(ctx, "someoneelse")
	require.NoError(t, err)
	assert.True(t, free)

	free, err = env.auth.EmailAvailable(ctx, "c@example.com")
	require.NoError(t, err)
	assert.False(t, free)

	free, err = env.auth.EmailAvailable(ctx, "new@example.com")
	require.NoError(t, err)
	assert.True(t, free)
}
