package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"license-tracker/pkg/authz"
	"license-tracker/pkg/errutil"
	"license-tracker/services/license"
	"license-tracker/services/user"

	"github.com/stretchr/testify/require"
)

type fakeLicenses struct {
	licenses []*license.License
	query    string
}

func (f *fakeLicenses) SearchLicenses(_ context.Context, _ authz.Principal, query string) ([]*license.License, error) {
	f.query = query
	return f.licenses, nil
}

type fakeUsers struct {
	users  []*user.User
	admins int64
	err    error
}

func (f *fakeUsers) ListUsers(context.Context, authz.Principal) ([]*user.User, error) {
	return f.users, f.err
}

func (f *fakeUsers) CountAdmins(context.Context, authz.Principal) (int64, error) {
	return f.admins, f.err
}

func TestSummary(t *testing.T) {
	lic := &fakeLicenses{licenses: []*license.License{
		{ID: "1", Name: "a", ExpiryDate: "2026-11-17"}, // 30 days
		{ID: "2", Name: "b", ExpiryDate: "2026-11-18"}, // 31 days
		{ID: "3", Name: "c", ExpiryDate: "2026-10-01"}, // expired
		{ID: "4", Name: "d", ExpiryDate: "soon"},
	}}
	users := &fakeUsers{
		users: []*user.User{
			{ID: "1", Username: "alice", Role: authz.RoleAdmin},
			{ID: "2", Username: "bob", Role: authz.RoleGeneral},
		},
		admins: 1,
	}
	svc := &Service{
		licenses: lic,
		users:    users,
		loc:      time.UTC,
		now:      func() time.Time { return time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC) },
	}

	actor := authz.Principal{UserID: "1", Username: "alice", Role: authz.RoleAdmin}
	out, err := svc.Summary(context.Background(), actor, "  acme ")
	require.NoError(t, err)
	require.Equal(t, "acme", lic.query)
	require.Len(t, out.Licenses, 4)
	require.Equal(t, 2, out.ExpiringSoon)
	require.Len(t, out.Users, 1)
	require.Equal(t, "bob", out.Users[0].Username)
	require.Equal(t, 2, out.TotalUsers)
	require.EqualValues(t, 1, out.AdminCount)
}

func TestSummaryPropagatesErrors(t *testing.T) {
	svc := &Service{
		licenses: &fakeLicenses{},
		users:    &fakeUsers{err: errutil.Internal("failed to list users", errors.New("db"))},
		loc:      time.UTC,
		now:      time.Now,
	}

	_, err := svc.Summary(context.Background(), authz.Principal{UserID: "1"}, "")
	require.True(t, errutil.Is(err, errutil.StatusInternal))
}
