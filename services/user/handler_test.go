package user

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"license-tracker/pkg/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, _ := newTestService(t)
	h := NewHandler(svc, nil)

	r := gin.New()
	r.Use(middleware.Error())
	h.RegisterPublic(r)
	return r, svc
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestSignupAndLoginRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	w := post(r, "/auth/signup", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, w.Body.String(), `"role":"admin"`)
	require.NotContains(t, w.Body.String(), "password_hash")

	w = post(r, "/auth/signup", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusConflict, w.Code)

	w = post(r, "/auth/signup", `{"username":"a","password":"x"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = post(r, "/auth/login", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"token"`)

	w = post(r, "/auth/login", `{"username":"alice","password":"nope123"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
