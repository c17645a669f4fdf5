package user

import (
	"net/http"

	"license-tracker/pkg/errutil"
	"license-tracker/pkg/middleware"
	"license-tracker/pkg/session"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc      *Service
	sessions *session.Manager
}

func NewHandler(svc *Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// RegisterPublic mounts the routes reachable without a session.
func (h *Handler) RegisterPublic(r gin.IRouter) {
	g := r.Group("/auth")
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
}

func (h *Handler) Register(r gin.IRouter) {
	r.POST("/auth/logout", h.Logout)
	r.GET("/users", h.List)

	admin := r.Group("/admin/users")
	admin.POST("/:id/promote", h.Promote)
	admin.POST("/:id/transfer_admin", h.TransferAdmin)
	admin.DELETE("/:id", h.Delete)
}

func (h *Handler) Signup(c *gin.Context) {
	var req Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	u, err := h.svc.Signup(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Signup successful", "user": u})
}

func (h *Handler) Login(c *gin.Context) {
	var req Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if h.sessions != nil {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.sessions.CookieName(), resp.Token, int(h.sessions.TTL().Seconds()), "/", "", h.sessions.Secure(), true)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), middleware.SessionClaims(c)); err != nil {
		_ = c.Error(err)
		return
	}

	if h.sessions != nil {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(h.sessions.CookieName(), "", -1, "/", "", h.sessions.Secure(), true)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) List(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Handler) Promote(c *gin.Context) {
	u, err := h.svc.Promote(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User promoted to admin", "user": u})
}

func (h *Handler) TransferAdmin(c *gin.Context) {
	if err := h.svc.TransferAdmin(c.Request.Context(), middleware.Principal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin role transferred"})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.DeleteUser(c.Request.Context(), middleware.Principal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
