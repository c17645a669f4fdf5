package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"license-tracker/pkg/authz"
	"license-tracker/pkg/config"
	"license-tracker/pkg/errutil"
	"license-tracker/pkg/security"
	"license-tracker/pkg/session"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Sessions is the part of the session manager the user flows need.
type Sessions interface {
	Issue(userID, username string) (string, time.Time, error)
	Revoke(ctx context.Context, claims *session.Claims) error
}

type Service struct {
	repo      Repository
	node      *snowflake.Node
	hasher    security.Hasher
	sessions  Sessions
	authz     authz.Authorizer
	maxAdmins int
}

type Params struct {
	fx.In

	Config     *config.Config
	Repository Repository
	Node       *snowflake.Node
	Hasher     security.Hasher
	Sessions   *session.Manager
	Authorizer authz.Authorizer
}

func NewService(p Params) *Service {
	return &Service{
		repo:      p.Repository,
		node:      p.Node,
		hasher:    p.Hasher,
		sessions:  p.Sessions,
		authz:     p.Authorizer,
		maxAdmins: p.Config.Auth.MaxAdmins,
	}
}

// Signup registers a new account. The first account ever created is admin.
func (s *Service) Signup(ctx context.Context, req Credentials) (*User, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateCredentials(req); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetByUsername(ctx, req.Username); err == nil {
		return nil, errutil.Conflict("username already exists", nil)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errutil.Internal("failed to check username", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errutil.Internal("failed to hash password", err)
	}

	u := &User{
		ID:           s.node.Generate().String(),
		Username:     req.Username,
		UsernameKey:  usernameKey(req.Username),
		PasswordHash: hash,
	}
	if err := s.repo.CreateWithBootstrapRole(ctx, u); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errutil.Conflict("username already exists", err)
		}
		return nil, errutil.Internal("failed to create user", err)
	}

	zap.L().Info("user signed up", zap.String("user_id", u.ID), zap.String("username", u.Username), zap.String("role", u.Role))
	return u, nil
}

func (s *Service) Login(ctx context.Context, req Credentials) (*LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, errutil.Unauthorized("invalid credentials", nil)
	}

	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errutil.Unauthorized("invalid credentials", nil)
		}
		return nil, errutil.Internal("failed to load user", err)
	}

	if !s.hasher.Verify(u.PasswordHash, req.Password) {
		zap.L().Info("login rejected", zap.String("username", u.Username))
		return nil, errutil.Unauthorized("invalid credentials", nil)
	}

	token, exp, err := s.sessions.Issue(u.ID, u.Username)
	if err != nil {
		return nil, errutil.Internal("failed to issue session", err)
	}

	return &LoginResponse{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *Service) Logout(ctx context.Context, claims *session.Claims) error {
	if err := s.sessions.Revoke(ctx, claims); err != nil {
		return errutil.ServiceUnavailable("failed to revoke session", err)
	}
	return nil
}

// LoadPrincipal resolves the caller for a verified session.
func (s *Service) LoadPrincipal(ctx context.Context, userID string) (authz.Principal, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return authz.Principal{}, translate(err, "failed to load user")
	}
	return u.Principal(), nil
}

func (s *Service) ListUsers(ctx context.Context, actor authz.Principal) ([]*User, error) {
	if err := s.authz.Authorize(actor, authz.ResourceUser, authz.ActionRead).Err(); err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, errutil.Internal("failed to list users", err)
	}
	return users, nil
}

func (s *Service) CountAdmins(ctx context.Context, actor authz.Principal) (int64, error) {
	if err := s.authz.Authorize(actor, authz.ResourceUser, authz.ActionRead).Err(); err != nil {
		return 0, err
	}

	n, err := s.repo.CountByRole(ctx, authz.RoleAdmin)
	if err != nil {
		return 0, errutil.Internal("failed to count admins", err)
	}
	return n, nil
}

// Promote grants admin to the target. Promoting an admin is a no-op.
func (s *Service) Promote(ctx context.Context, actor authz.Principal, id string) (*User, error) {
	if err := s.authz.Authorize(actor, authz.ResourceUser, authz.ActionPromote).Err(); err != nil {
		return nil, err
	}

	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "failed to load user")
	}
	if target.Role == authz.RoleAdmin {
		return target, nil
	}

	admins, err := s.repo.CountByRole(ctx, authz.RoleAdmin)
	if err != nil {
		return nil, errutil.Internal("failed to count admins", err)
	}
	if s.maxAdmins > 0 && admins >= int64(s.maxAdmins) {
		return nil, errutil.Forbidden("maximum number of admins reached", nil)
	}

	if err := s.repo.UpdateRole(ctx, id, authz.RoleAdmin); err != nil {
		return nil, translate(err, "failed to promote user")
	}
	target.Role = authz.RoleAdmin

	zap.L().Info("user promoted", zap.String("user_id", id), zap.String("by", actor.Username))
	return target, nil
}

// TransferAdmin promotes the target and demotes the caller.
func (s *Service) TransferAdmin(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Authorize(actor, authz.ResourceUser, authz.ActionTransfer).Err(); err != nil {
		return err
	}
	if id == actor.UserID {
		return errutil.BadRequest("cannot transfer admin to yourself", nil)
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return translate(err, "failed to load user")
	}

	if err := s.repo.TransferAdmin(ctx, actor.UserID, id); err != nil {
		return translate(err, "failed to transfer admin")
	}

	zap.L().Info("admin transferred", zap.String("from", actor.UserID), zap.String("to", id))
	return nil
}

func (s *Service) DeleteUser(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Authorize(actor, authz.ResourceUser, authz.ActionDelete).Err(); err != nil {
		return err
	}
	if id == actor.UserID {
		return errutil.Forbidden("cannot delete yourself", nil)
	}

	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return errutil.Internal("failed to delete user", err)
	}
	if n == 0 {
		return errutil.NotFound("user not found", nil)
	}

	zap.L().Info("user deleted", zap.String("user_id", id), zap.String("by", actor.Username))
	return nil
}

func translate(err error, internal string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errutil.NotFound("user not found", err)
	}
	return errutil.Internal(internal, err)
}
