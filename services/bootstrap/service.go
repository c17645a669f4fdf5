package bootstrap

import (
	"context"
	"fmt"

	"license-tracker/services/license"
	"license-tracker/services/task"
	"license-tracker/services/user"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db *gorm.DB
}

type ServiceParams struct {
	fx.In
	DB *gorm.DB
}

func NewService(p ServiceParams) *Service {
	return &Service{db: p.DB}
}

// Models lists every table the application owns.
func Models() []any {
	return []any{
		&license.License{},
		&user.User{},
		&task.Job{},
	}
}

// Migrate creates or alters the tables to match the models.
func (s *Service) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(Models()...); err != nil {
		zap.L().Error("[bootstrap] schema migration failed", zap.Error(err))
		return fmt.Errorf("migrate schema: %w", err)
	}
	zap.L().Info("[bootstrap] schema up to date", zap.Int("tables", len(Models())))
	return nil
}
