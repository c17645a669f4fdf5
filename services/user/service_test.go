package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"license-tracker/pkg/authz"
	"license-tracker/pkg/errutil"
	"license-tracker/pkg/security"
	"license-tracker/pkg/session"
	"license-tracker/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

type fakeSessions struct {
	revoked   []string
	revokeErr error
}

func (f *fakeSessions) Issue(userID, username string) (string, time.Time, error) {
	return "token-" + userID, time.Now().Add(time.Hour), nil
}

func (f *fakeSessions) Revoke(_ context.Context, claims *session.Claims) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	if claims != nil {
		f.revoked = append(f.revoked, claims.ID)
	}
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeSessions) {
	t.Helper()

	db := testutil.NewTestDB(t, &User{})
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	authorizer, err := authz.NewDefaultAuthorizer()
	require.NoError(t, err)
	sessions := &fakeSessions{}

	return &Service{
		repo:      NewRepository(db),
		node:      node,
		hasher:    security.NewBcryptHasher(4),
		sessions:  sessions,
		authz:     authorizer,
		maxAdmins: 3,
	}, sessions
}

func signup(t *testing.T, svc *Service, username string) *User {
	t.Helper()
	u, err := svc.Signup(context.Background(), Credentials{Username: username, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func TestSignupFirstUserIsAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	first := signup(t, svc, "alice")
	require.Equal(t, authz.RoleAdmin, first.Role)

	second := signup(t, svc, "bob")
	require.Equal(t, authz.RoleGeneral, second.Role)
	require.NotEqual(t, first.ID, second.ID)
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []Credentials{
		{Username: "ab", Password: "secret1"},
		{Username: "has space", Password: "secret1"},
		{Username: "abcdefghijklmnopqrstu", Password: "secret1"},
		{Username: "alice", Password: "12345"},
	}
	for _, c := range cases {
		_, err := svc.Signup(ctx, c)
		require.True(t, errutil.Is(err, errutil.StatusBadRequest), "%+v", c)
	}
}

func TestSignupDuplicateIsCaseInsensitive(t *testing.T) {
	svc, _ := newTestService(t)
	signup(t, svc, "Alice")

	_, err := svc.Signup(context.Background(), Credentials{Username: "alice", Password: "secret1"})
	require.True(t, errutil.Is(err, errutil.StatusConflict))
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u := signup(t, svc, "alice")

	resp, err := svc.Login(ctx, Credentials{Username: "ALICE", Password: "secret1"})
	require.NoError(t, err)
	require.Equal(t, "token-"+u.ID, resp.Token)
	require.Equal(t, u.ID, resp.User.ID)

	_, err = svc.Login(ctx, Credentials{Username: "alice", Password: "wrong!!"})
	require.True(t, errutil.Is(err, errutil.StatusUnauthorized))

	_, err = svc.Login(ctx, Credentials{Username: "nobody", Password: "secret1"})
	require.True(t, errutil.Is(err, errutil.StatusUnauthorized))

	for _, blank := range []string{"", "   "} {
		resp, err = svc.Login(ctx, Credentials{Username: blank, Password: "secret1"})
		require.Nil(t, resp)
		require.True(t, errutil.Is(err, errutil.StatusUnauthorized))
	}
}

func TestGetByUsernameBlankKeyMatchesNothing(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u := signup(t, svc, "alice")

	_, err := svc.repo.GetByUsername(ctx, "   ")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = svc.repo.GetByID(ctx, "")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	got, err := svc.repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
}

func TestLogout(t *testing.T) {
	svc, sessions := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Logout(ctx, &session.Claims{Claims: jwt.Claims{ID: "jti-1"}}))
	require.Equal(t, []string{"jti-1"}, sessions.revoked)

	sessions.revokeErr = errors.New("redis down")
	err := svc.Logout(ctx, &session.Claims{Claims: jwt.Claims{ID: "jti-2"}})
	require.True(t, errutil.Is(err, errutil.StatusServiceUnavailable))
}

func TestLoadPrincipal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	u := signup(t, svc, "alice")

	p, err := svc.LoadPrincipal(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, authz.Principal{UserID: u.ID, Username: "alice", Role: authz.RoleAdmin}, p)

	_, err = svc.LoadPrincipal(ctx, "missing")
	require.True(t, errutil.Is(err, errutil.StatusNotFound))
}

func TestPromote(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	admin := signup(t, svc, "alice").Principal()
	bob := signup(t, svc, "bob")
	carol := signup(t, svc, "carol")
	dave := signup(t, svc, "dave")

	_, err := svc.Promote(ctx, bob.Principal(), carol.ID)
	require.True(t, errutil.Is(err, errutil.StatusForbidden))

	promoted, err := svc.Promote(ctx, admin, bob.ID)
	require.NoError(t, err)
	require.Equal(t, authz.RoleAdmin, promoted.Role)

	// already admin
	_, err = svc.Promote(ctx, admin, bob.ID)
	require.NoError(t, err)

	_, err = svc.Promote(ctx, admin, carol.ID)
	require.NoError(t, err)

	_, err = svc.Promote(ctx, admin, dave.ID)
	require.True(t, errutil.Is(err, errutil.StatusForbidden))

	_, err = svc.Promote(ctx, admin, "missing")
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	n, err := svc.CountAdmins(ctx, admin)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestTransferAdmin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice := signup(t, svc, "alice")
	bob := signup(t, svc, "bob")

	err := svc.TransferAdmin(ctx, alice.Principal(), alice.ID)
	require.True(t, errutil.Is(err, errutil.StatusBadRequest))

	err = svc.TransferAdmin(ctx, alice.Principal(), "missing")
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	require.NoError(t, svc.TransferAdmin(ctx, alice.Principal(), bob.ID))

	p, err := svc.LoadPrincipal(ctx, bob.ID)
	require.NoError(t, err)
	require.True(t, p.IsAdmin())

	p, err = svc.LoadPrincipal(ctx, alice.ID)
	require.NoError(t, err)
	require.False(t, p.IsAdmin())
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	alice := signup(t, svc, "alice")
	bob := signup(t, svc, "bob")

	err := svc.DeleteUser(ctx, alice.Principal(), alice.ID)
	require.True(t, errutil.Is(err, errutil.StatusForbidden))

	err = svc.DeleteUser(ctx, bob.Principal(), alice.ID)
	require.True(t, errutil.Is(err, errutil.StatusForbidden))

	require.NoError(t, svc.DeleteUser(ctx, alice.Principal(), bob.ID))

	err = svc.DeleteUser(ctx, alice.Principal(), bob.ID)
	require.True(t, errutil.Is(err, errutil.StatusNotFound))

	users, err := svc.ListUsers(ctx, alice.Principal())
	require.NoError(t, err)
	require.Len(t, users, 1)
}
