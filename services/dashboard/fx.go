package dashboard

import (
	"license-tracker/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var ServerModule = fx.Module("dashboard.server",
	fx.Provide(NewService, NewHandler),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, auth *middleware.Authenticator, h *Handler) {
	h.Register(r.Group("/", auth.Authenticate(), middleware.RequireSession()))
}
