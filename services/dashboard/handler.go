package dashboard

import (
	"net/http"

	"license-tracker/pkg/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/dashboard", h.Get)
}

func (h *Handler) Get(c *gin.Context) {
	summary, err := h.svc.Summary(c.Request.Context(), middleware.Principal(c), c.Query("query"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
