// Command scan runs the license expiry scan once and exits, for use from
// system cron or a Kubernetes CronJob.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"
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
	"license-tracker/services/bootstrap"
	"license-tracker/services/expiry"
	"license-tracker/services/license"
	"license-tracker/services/task"
)

func main() {
	var svc *task.Service

	opts := []fx.Option{
		secretmanager.Module,
		config.Source(),
		logger.Module,
		otelcol.Module,
		db.Module,
		gen.Module,
		authz.Module,
		featureflags.Module,
		notify.Module,
		bootstrap.Module,
		license.Module,
		expiry.Module,
		task.Module,
		fx.Populate(&svc),
		fxLogger,
	}

	if err := fx.ValidateApp(opts...); err != nil {
		log.Fatalf("fx validation failed: %v", err)
	}

	app := fx.New(opts...)

	startCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatalf("failed to start: %v", err)
	}

	_, result, runErr := svc.RunScan(context.Background(), task.SourceCLI)

	if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
		zap.L().Error("failed to write scan result", zap.Error(err))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		zap.L().Warn("shutdown incomplete", zap.Error(err))
	}

	if runErr != nil {
		os.Exit(1)
	}
}

var fxLogger = fx.WithLogger(func(cfg *config.Config, logger *zap.Logger) fxevent.Logger {
	return fxevent.NopLogger
})
