package task

import (
	"context"
	"time"

	"license-tracker/pkg/db/option"
	"license-tracker/pkg/repository"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, job *Job) error
	Finish(ctx context.Context, id, status, errMsg string, processed, notified int, at time.Time) error
	GetByID(ctx context.Context, id string) (*Job, error)
}

type gormRepository struct {
	store repository.Repository[Job]
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{store: repository.ProvideStore[Job](db)}
}

func (r *gormRepository) Create(ctx context.Context, job *Job) error {
	return r.store.Create(ctx, job)
}

func (r *gormRepository) Finish(ctx context.Context, id, status, errMsg string, processed, notified int, at time.Time) error {
	return r.store.Update(ctx, id, map[string]any{
		"status":       status,
		"error_msg":    errMsg,
		"processed":    processed,
		"notified":     notified,
		"completed_at": at,
	})
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*Job, error) {
	return r.store.FindOne(ctx, nil, option.WithWhere("id = ?", id))
}
