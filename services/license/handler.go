package license

import (
	"net/http"

	"license-tracker/pkg/errutil"
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
	g := r.Group("/licenses")
	g.GET("", h.List)
	g.POST("", h.Add)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.UpdateExpiry)
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) Add(c *gin.Context) {
	var req AddLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	l, err := h.svc.AddLicense(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "License added successfully",
		"license_id": l.ID,
		"license":    l,
	})
}

func (h *Handler) Get(c *gin.Context) {
	l, err := h.svc.GetLicense(c.Request.Context(), middleware.Principal(c), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *Handler) List(c *gin.Context) {
	var req ListLicensesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid query", err))
		return
	}

	resp, err := h.svc.ListLicenses(c.Request.Context(), middleware.Principal(c), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateExpiry(c *gin.Context) {
	var req UpdateExpiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	l, err := h.svc.UpdateExpiry(c.Request.Context(), middleware.Principal(c), c.Param("id"), req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "License updated successfully", "license": l})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.svc.DeleteLicense(c.Request.Context(), middleware.Principal(c), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "License deleted successfully"})
}
