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
	"license-tracker/pkg/featureflags"
	"license-tracker/pkg/gen"
	"license-tracker/pkg/hashistack/secretmanager"
	"license-tracker/pkg/logger"
	"license-tracker/pkg/notify"
	"license-tracker/pkg/otelcol"
	"license-tracker/pkg/profiling"
	queue "license-tracker/pkg/task"
	"license-tracker/services/bootstrap"
	"license-tracker/services/expiry"
	"license-tracker/services/license"
	"license-tracker/services/task"
)

func main() {
	opts := []fx.Option{
		secretmanager.Module,
		config.Source(),
		logger.Module,
		otelcol.Module,
		profiling.Module,
		db.Module,
		gen.Module,
		authz.Module,
		featureflags.Module,
		notify.Module,
		bootstrap.Module,
		license.Module,
		expiry.Module,
		queue.Client,
		queue.Server,
		task.WorkerModule,
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
