package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"time"

	"license-tracker/pkg/config"

	"github.com/bwmarrin/snowflake"
	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("session",
	fx.Provide(
		NewRedisDenylist,
		NewManager,
	),
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrRevoked      = errors.New("session revoked")
)

const issuer = "license-tracker"

// Claims is the signed payload carried by the session cookie or bearer token.
type Claims struct {
	jwt.Claims
	Username string `json:"username"`
}

type Manager struct {
	key      []byte
	signer   jose.Signer
	ttl      time.Duration
	name     string
	secure   bool
	denylist Denylist
	node     *snowflake.Node
	now      func() time.Time
}

type Params struct {
	fx.In

	Config   *config.Config
	Denylist Denylist
	Node     *snowflake.Node
}

func NewManager(p Params) (*Manager, error) {
	secret := p.Config.Session.Secret
	if secret == "" {
		if p.Config.AppEnv == "production" {
			return nil, errors.New("session.secret is required in production")
		}
		zap.L().Warn("session.secret is empty, using an ephemeral key; sessions will not survive a restart")
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		secret = string(buf)
	}

	return newManager(secret, p.Config.Session.TTL, p.Config.Session.Name, p.Config.Session.Secure, p.Denylist, p.Node)
}

func newManager(secret string, ttl time.Duration, name string, secure bool, denylist Denylist, node *snowflake.Node) (*Manager, error) {
	// HS256 needs a 256-bit key, any secret length is accepted
	sum := sha256.Sum256([]byte(secret))
	key := sum[:]

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, err
	}

	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	return &Manager{
		key:      key,
		signer:   signer,
		ttl:      ttl,
		name:     name,
		secure:   secure,
		denylist: denylist,
		node:     node,
		now:      time.Now,
	}, nil
}

// CookieName is the cookie that carries the session token.
func (m *Manager) CookieName() string { return m.name }

func (m *Manager) Secure() bool { return m.secure }

func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue signs a new session for the user.
func (m *Manager) Issue(userID, username string) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(m.ttl)

	claims := Claims{
		Claims: jwt.Claims{
			Issuer:   issuer,
			Subject:  userID,
			ID:       m.node.Generate().String(),
			IssuedAt: jwt.NewNumericDate(now),
			Expiry:   jwt.NewNumericDate(exp),
		},
		Username: username,
	}

	raw, err := jwt.Signed(m.signer).Claims(claims).Serialize()
	if err != nil {
		return "", time.Time{}, err
	}
	return raw, exp, nil
}

// Verify checks signature, expiry and revocation of a session token.
func (m *Manager) Verify(ctx context.Context, raw string) (*Claims, error) {
	tok, err := jwt.ParseSigned(raw, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := tok.Claims(m.key, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if err := claims.ValidateWithLeeway(jwt.Expected{Issuer: issuer, Time: m.now()}, 0); err != nil {
		return nil, ErrInvalidToken
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}

	revoked, err := m.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrRevoked
	}

	return &claims, nil
}

// Revoke denies the token until its natural expiry.
func (m *Manager) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" {
		return nil
	}

	ttl := time.Minute
	if claims.Expiry != nil {
		if remaining := claims.Expiry.Time().Sub(m.now()); remaining > 0 {
			ttl = remaining
		}
	}
	return m.denylist.Revoke(ctx, claims.ID, ttl)
}
