package user

import (
	"license-tracker/pkg/middleware"
	"license-tracker/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("user.module",
	fx.Provide(
		NewRepository,
		NewService,
		newAuthenticator,
	),
)

var ServerModule = fx.Module("user.server",
	Module,
	fx.Provide(NewHandler),
	fx.Invoke(registerRoutes),
)

func newAuthenticator(sessions *session.Manager, svc *Service) *middleware.Authenticator {
	return middleware.NewAuthenticator(sessions, svc)
}

func registerRoutes(r *gin.Engine, auth *middleware.Authenticator, h *Handler) {
	h.RegisterPublic(r)
	h.Register(r.Group("/", auth.Authenticate(), middleware.RequireSession()))
}
