package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/freshcart-backend/internal/users"
	pkgAuth "github.com/angelmondragon/freshcart-backend/pkg/auth"
	"github.com/angelmondragon/freshcart-backend/pkg/config"
	"github.com/angelmondragon/freshcart-backend/pkg/db/dbtest"
	"github.com/angelmondragon/freshcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/freshcart-backend/pkg/errors"
	"github.com/angelmondragon/freshcart-backend/pkg/security"
)

var (
	testJWT      = config.JWTConfig{Secret: "test-secret", Issuer: "freshcart-test", ExpirationMinutes: 30}
	fastPassword = config.PasswordConfig{ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32}
)

func newTestService(t *testing.T, cfg config.PasswordConfig) (Service, *users.Repository) {
	t.Helper()
	repo := users.NewRepository(dbtest.Open(t))
	svc, err := NewService(ServiceParams{
		Users:     repo,
		Hasher:    security.NewHasher(cfg),
		JWTConfig: testJWT,
	})
	require.NoError(t, err)
	return svc, repo
}

func requireCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	require.Equal(t, code, typed.Code())
}

func TestRegisterIssuesCustomerToken(t *testing.T) {
	svc, repo := newTestService(t, fastPassword)
	ctx := context.Background()

	phone := "  +91 98450 00000 "
	resp, err := svc.Register(ctx, RegisterRequest{
		Email:     "  Asha@Example.com ",
		Password:  "correct horse",
		FirstName: " Asha ",
		LastName:  "Rao",
		Phone:     &phone,
	})
	require.NoError(t, err)
	require.Equal(t, "asha@example.com", resp.User.Email)
	require.Equal(t, "Asha", resp.User.FirstName)
	require.Equal(t, enums.UserRoleCustomer, resp.User.Role)
	require.NotNil(t, resp.User.Phone)
	require.Equal(t, "+91 98450 00000", *resp.User.Phone)
	require.Equal(t, "Bearer", resp.TokenType)

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, resp.User.ID, claims.UserID)
	require.Equal(t, enums.UserRoleCustomer, claims.Role)

	stored, err := repo.FindByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse", stored.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t, fastPassword)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "dup@example.com", Password: "password1", FirstName: "A"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "DUP@example.com", Password: "password2", FirstName: "B"})
	requireCode(t, err, pkgerrors.CodeConflict)
}

func TestLogin(t *testing.T) {
	svc, repo := newTestService(t, fastPassword)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "ravi@example.com", Password: "password1", FirstName: "Ravi"})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "Ravi@example.com", Password: "password1"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User.LastLoginAt)

	stored, err := repo.FindByEmail(ctx, "ravi@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)

	cases := []LoginRequest{
		{Email: "ravi@example.com", Password: "wrong-password"},
		{Email: "nobody@example.com", Password: "password1"},
		{Email: "   ", Password: "password1"},
	}
	for _, tc := range cases {
		_, err := svc.Login(ctx, tc)
		requireCode(t, err, pkgerrors.CodeUnauthorized)
	}
}

func TestLoginRejectsInactiveUser(t *testing.T) {
	svc, repo := newTestService(t, fastPassword)
	ctx := context.Background()

	hash, err := security.HashPassword("password1", fastPassword)
	require.NoError(t, err)
	inactive := false
	_, err = repo.Create(ctx, users.CreateUserDTO{Email: "gone@example.com", PasswordHash: hash, FirstName: "Gone", IsActive: &inactive})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "gone@example.com", Password: "password1"})
	requireCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLoginUpgradesWeakHash(t *testing.T) {
	stronger := fastPassword
	stronger.ArgonTime = 2
	svc, repo := newTestService(t, stronger)
	ctx := context.Background()

	weak, err := security.HashPassword("password1", fastPassword)
	require.NoError(t, err)
	_, err = repo.Create(ctx, users.CreateUserDTO{Email: "ops@example.com", PasswordHash: weak, FirstName: "Ops", Role: enums.UserRoleAdmin})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, LoginRequest{Email: "ops@example.com", Password: "password1"})
	require.NoError(t, err)
	require.Equal(t, enums.UserRoleAdmin, resp.User.Role)

	stored, err := repo.FindByEmail(ctx, "ops@example.com")
	require.NoError(t, err)
	require.NotEqual(t, weak, stored.PasswordHash)

	ok, rehash, err := security.NewHasher(stronger).Verify("password1", stored.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, rehash)
}
