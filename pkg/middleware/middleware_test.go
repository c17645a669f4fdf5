package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"license-tracker/pkg/authz"
	"license-tracker/pkg/config"
	"license-tracker/pkg/errutil"
	"license-tracker/pkg/session"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	zap.ReplaceGlobals(zap.NewNop())
}

type noDenylist struct{}

func (noDenylist) Revoke(context.Context, string, time.Duration) error { return nil }
func (noDenylist) IsRevoked(context.Context, string) (bool, error)    { return false, nil }

type loaderFunc func(ctx context.Context, userID string) (authz.Principal, error)

func (f loaderFunc) LoadPrincipal(ctx context.Context, userID string) (authz.Principal, error) {
	return f(ctx, userID)
}

func newSessions(t *testing.T) *session.Manager {
	t.Helper()
	cfg := &config.Config{}
	cfg.Session.Secret = "test-secret"
	cfg.Session.Name = "license_session"
	cfg.Session.TTL = time.Hour

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	m, err := session.NewManager(session.Params{Config: cfg, Denylist: noDenylist{}, Node: node})
	require.NoError(t, err)
	return m
}

func TestErrorRendersBaseError(t *testing.T) {
	r := gin.New()
	r.Use(Error())
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(errutil.NotFound("license not found", nil))
	})
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(errors.New("db exploded"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), `"code":"not_found"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, w.Body.String(), "db exploded")
}

func TestAuthenticate(t *testing.T) {
	sessions := newSessions(t)
	loader := loaderFunc(func(_ context.Context, userID string) (authz.Principal, error) {
		if userID == "gone" {
			return authz.Principal{}, errutil.NotFound("user not found", nil)
		}
		return authz.Principal{UserID: userID, Username: "alice", Role: authz.RoleGeneral}, nil
	})
	auth := NewAuthenticator(sessions, loader)

	r := gin.New()
	r.Use(Error(), auth.Authenticate())
	protected := r.Group("/", RequireSession())
	protected.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, Principal(c).Username)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := sessions.Issue("7", "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "alice", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "license_session", Value: token})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	gone, _, err := sessions.Issue("gone", "ghost")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+gone)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders("https://licenses.example.com"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "https://licenses.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
}

func TestSecurityHeadersPreflightAllowsUpdate(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders(""))
	r.PUT("/licenses/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/licenses/1", nil)
	req.Header.Set("Origin", "https://ui.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
}
