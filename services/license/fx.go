package license

import (
	"license-tracker/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("license.module",
	fx.Provide(
		NewRepository,
		NewService,
	),
)

var ServerModule = fx.Module("license.server",
	Module,
	fx.Provide(NewHandler),
	fx.Invoke(registerRoutes),
)

func registerRoutes(r *gin.Engine, auth *middleware.Authenticator, h *Handler) {
	h.Register(r.Group("/", auth.Authenticate(), middleware.RequireSession()))
}
