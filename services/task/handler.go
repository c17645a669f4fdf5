package task

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
	r.POST("/admin/scan", h.TriggerScan)
}

func (h *Handler) TriggerScan(c *gin.Context) {
	info, err := h.svc.TriggerScan(c.Request.Context(), middleware.Principal(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{
		"message": "Scan enqueued",
		"task_id": info.ID,
		"queue":   info.Queue,
	})
}
