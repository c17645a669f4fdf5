package middleware

import (
	"context"
	"errors"
	"strings"

	"license-tracker/pkg/authz"
	"license-tracker/pkg/errutil"
	"license-tracker/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	principalKey = "auth.principal"
	claimsKey    = "auth.claims"
)

// PrincipalLoader resolves the current account behind a verified session.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID string) (authz.Principal, error)
}

type Authenticator struct {
	sessions *session.Manager
	loader   PrincipalLoader
}

func NewAuthenticator(sessions *session.Manager, loader PrincipalLoader) *Authenticator {
	return &Authenticator{sessions: sessions, loader: loader}
}

// Authenticate resolves the session from the Authorization header or cookie.
// Requests without a valid session continue as anonymous.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFromRequest(c, a.sessions.CookieName())
		if raw == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		claims, err := a.sessions.Verify(ctx, raw)
		if err != nil {
			if !errors.Is(err, session.ErrInvalidToken) && !errors.Is(err, session.ErrRevoked) {
				zap.L().Warn("session verification failed", zap.Error(err))
			}
			c.Next()
			return
		}

		principal, err := a.loader.LoadPrincipal(ctx, claims.Subject)
		if err != nil {
			// account removed after the session was issued
			if errutil.Is(err, errutil.StatusNotFound) {
				_ = c.Error(errutil.Forbidden("account no longer exists", err))
				c.Abort()
				return
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		SetPrincipal(c, principal)
		c.Next()
	}
}

// RequireSession rejects anonymous callers with 401.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Principal(c).Authenticated() {
			_ = c.Error(errutil.Unauthorized("authentication required", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Principal returns the caller attached by Authenticate, or the zero value.
func Principal(c *gin.Context) authz.Principal {
	if v, ok := c.Get(principalKey); ok {
		if p, ok := v.(authz.Principal); ok {
			return p
		}
	}
	return authz.Principal{}
}

// SetPrincipal attaches the caller to the request.
func SetPrincipal(c *gin.Context, p authz.Principal) {
	c.Set(principalKey, p)
}

// SessionClaims returns the verified session claims, if any.
func SessionClaims(c *gin.Context) *session.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*session.Claims); ok {
			return claims
		}
	}
	return nil
}

func tokenFromRequest(c *gin.Context, cookieName string) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if v, err := c.Cookie(cookieName); err == nil {
		return v
	}
	return ""
}
