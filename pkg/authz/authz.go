package authz

import (
	_ "embed"
	"fmt"

	"license-tracker/pkg/config"
	"license-tracker/pkg/errutil"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	stringadapter "github.com/casbin/casbin/v2/persist/string-adapter"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("authz", fx.Provide(ProvideAuthorizer))

//go:embed model.conf
var defaultModel string

//go:embed policy.csv
var defaultPolicy string

const (
	RoleAdmin   = "admin"
	RoleGeneral = "general"
)

type Resource string

const (
	ResourceLicense Resource = "license"
	ResourceUser    Resource = "user"
	ResourceScan    Resource = "scan"
)

type Action string

const (
	ActionRead     Action = "read"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionPromote  Action = "promote"
	ActionTransfer Action = "transfer"
	ActionTrigger  Action = "trigger"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID   string
	Username string
	Role     string
}

func (p Principal) Authenticated() bool { return p.UserID != "" }

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

type Decision struct {
	Allowed bool
	Reason  string

	unauthenticated bool
}

// Err maps a denial onto 401 for anonymous callers and 403 otherwise.
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.unauthenticated:
		return errutil.Unauthorized(d.Reason, nil)
	default:
		return errutil.Forbidden(d.Reason, nil)
	}
}

type Authorizer interface {
	Authorize(p Principal, resource Resource, action Action) Decision
}

type casbinAuthorizer struct {
	enforcer *casbin.Enforcer
}

func ProvideAuthorizer(cfg *config.Config) (Authorizer, error) {
	if cfg.AccessControl.Model != "" && cfg.AccessControl.Policy != "" {
		e, err := casbin.NewEnforcer(cfg.AccessControl.Model, cfg.AccessControl.Policy)
		if err != nil {
			return nil, fmt.Errorf("load access control files: %w", err)
		}
		zap.L().Info("access control loaded from files",
			zap.String("model", cfg.AccessControl.Model),
			zap.String("policy", cfg.AccessControl.Policy))
		return &casbinAuthorizer{enforcer: e}, nil
	}
	return NewDefaultAuthorizer()
}

// NewDefaultAuthorizer builds the enforcer from the built-in role policy.
func NewDefaultAuthorizer() (Authorizer, error) {
	m, err := model.NewModelFromString(defaultModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m, stringadapter.NewAdapter(defaultPolicy))
	if err != nil {
		return nil, err
	}
	return &casbinAuthorizer{enforcer: e}, nil
}

func (a *casbinAuthorizer) Authorize(p Principal, resource Resource, action Action) Decision {
	if !p.Authenticated() {
		return Decision{Reason: "authentication required", unauthenticated: true}
	}

	ok, err := a.enforcer.Enforce(p.Role, string(resource), string(action))
	if err != nil {
		zap.L().Error("authorization check failed",
			zap.String("role", p.Role),
			zap.String("resource", string(resource)),
			zap.String("action", string(action)),
			zap.Error(err))
		return Decision{Reason: "authorization unavailable"}
	}
	if !ok {
		return Decision{Reason: fmt.Sprintf("%s may not %s %s", p.Role, action, resource)}
	}
	return Decision{Allowed: true}
}
