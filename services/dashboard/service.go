package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"license-tracker/pkg/authz"
	"license-tracker/pkg/config"
	"license-tracker/services/expiry"
	"license-tracker/services/license"
	"license-tracker/services/user"

	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"
)

// ExpiringSoonDays bounds the expiring_soon counter. Already expired
// licenses are included.
const ExpiringSoonDays = 30

type Licenses interface {
	SearchLicenses(ctx context.Context, actor authz.Principal, query string) ([]*license.License, error)
}

type Users interface {
	ListUsers(ctx context.Context, actor authz.Principal) ([]*user.User, error)
	CountAdmins(ctx context.Context, actor authz.Principal) (int64, error)
}

type Summary struct {
	Query        string             `json:"query"`
	Role         string             `json:"role"`
	Username     string             `json:"user"`
	Licenses     []*license.License `json:"licenses"`
	Users        []*user.User       `json:"users"`
	ExpiringSoon int                `json:"expiring_soon"`
	TotalUsers   int                `json:"total_users"`
	AdminCount   int64              `json:"admin_count"`
}

type Service struct {
	licenses Licenses
	users    Users
	loc      *time.Location
	now      func() time.Time
}

type Params struct {
	fx.In

	Config   *config.Config
	Licenses *license.Service
	Users    *user.Service
}

func NewService(p Params) (*Service, error) {
	loc, err := expiry.LoadLocation(p.Config.Scanner.Timezone)
	if err != nil {
		return nil, fmt.Errorf("scanner.timezone: %w", err)
	}
	return &Service{licenses: p.Licenses, users: p.Users, loc: loc, now: time.Now}, nil
}

// Summary loads the dashboard view for the caller in parallel.
func (s *Service) Summary(ctx context.Context, actor authz.Principal, query string) (*Summary, error) {
	query = strings.TrimSpace(query)
	out := &Summary{Query: query, Role: actor.Role, Username: actor.Username}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		licenses, err := s.licenses.SearchLicenses(gctx, actor, query)
		if err != nil {
			return err
		}
		out.Licenses = licenses
		return nil
	})
	g.Go(func() error {
		users, err := s.users.ListUsers(gctx, actor)
		if err != nil {
			return err
		}
		others := make([]*user.User, 0, len(users))
		for _, u := range users {
			if u.ID != actor.UserID {
				others = append(others, u)
			}
		}
		out.Users = others
		return nil
	})
	g.Go(func() error {
		n, err := s.users.CountAdmins(gctx, actor)
		if err != nil {
			return err
		}
		out.AdminCount = n
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	today := s.now().In(s.loc)
	for _, l := range out.Licenses {
		if days, ok := l.DaysLeft(today); ok && days <= ExpiringSoonDays {
			out.ExpiringSoon++
		}
	}
	out.TotalUsers = len(out.Users) + 1
	return out, nil
}
