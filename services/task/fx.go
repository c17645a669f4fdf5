package task

import (
	"license-tracker/pkg/middleware"
	"license-tracker/pkg/taskname"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("task.service",
	fx.Provide(
		NewRepository,
		NewService,
	),
)

// WorkerModule runs the daily scheduler and the scan handler.
var WorkerModule = fx.Module("task.worker",
	Module,
	fx.Provide(NewScheduler),
	fx.Invoke(registerHandlers, StartScheduler),
)

var ServerModule = fx.Module("task.server",
	Module,
	fx.Provide(NewHandler),
	fx.Invoke(registerRoutes),
)

func registerHandlers(mux *asynq.ServeMux, svc *Service) {
	mux.HandleFunc(taskname.LicenseExpiryScan, svc.HandleScanTask)
}

func registerRoutes(r *gin.Engine, auth *middleware.Authenticator, h *Handler) {
	h.Register(r.Group("/", auth.Authenticate(), middleware.RequireSession()))
}
