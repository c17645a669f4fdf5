package main

import (
	"log"
	_ "time/tzdata"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"license-tracker/pkg/authz"
	"license-tracker/pkg/config"
	"license-tracker/pkg/db"
	"license-tracker/pkg/gen"
	"license-tracker/pkg/hashistack/secretmanager"
	"license-tracker/pkg/hashistack/servicediscover"
	"license-tracker/pkg/health"
	"license-tracker/pkg/httpapi"
	"license-tracker/pkg/logger"
	"license-tracker/pkg/otelcol"
	"license-tracker/pkg/profiling"
	"license-tracker/pkg/redis"
	"license-tracker/pkg/security"
	"license-tracker/pkg/sequence"
	"license-tracker/pkg/server"
	"license-tracker/pkg/session"
	queue "license-tracker/pkg/task"
	"license-tracker/services/bootstrap"
	"license-tracker/services/dashboard"
	"license-tracker/services/license"
	"license-tracker/services/task"
	"license-tracker/services/user"
)

func main() {
	opts := []fx.Option{
		secretmanager.Module,
		config.Source(),
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		redis.Module,
		gen.Module,
		sequence.Module,
		security.Module,
		session.Module,
		authz.Module,
		queue.Client,
		health.Module,
		httpapi.Module,
		bootstrap.Module,
		user.ServerModule,
		license.ServerModule,
		dashboard.ServerModule,
		task.ServerModule,
		server.ProvideHTTPServer,
		servicediscover.Module,
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	app.Run()
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
