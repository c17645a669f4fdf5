package license

import (
	"context"
	"strings"
	"time"

	"license-tracker/pkg/db/option"
	"license-tracker/pkg/db/pagination"
	"license-tracker/pkg/repository"

	"gorm.io/gorm"
)

type ListParams struct {
	Query  string
	Cursor *pagination.Cursor
	Limit  int
}

type Repository interface {
	Create(ctx context.Context, l *License) error
	GetByID(ctx context.Context, id string) (*License, error)
	ScanAll(ctx context.Context) ([]*License, error)
	Search(ctx context.Context, query string) ([]*License, error)
	List(ctx context.Context, p ListParams) ([]*License, error)
	UpdateExpiry(ctx context.Context, id, expiry, by string, on time.Time) error
	Delete(ctx context.Context, id string) (int64, error)
}

type gormRepository struct {
	db    *gorm.DB
	store repository.Repository[License]
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{
		db:    db,
		store: repository.ProvideStore[License](db),
	}
}

func (r *gormRepository) Create(ctx context.Context, l *License) error {
	return r.store.Create(ctx, l)
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*License, error) {
	return r.store.FindOne(ctx, nil, option.WithWhere("id = ?", id))
}

// ScanAll returns the full snapshot in insertion order.
func (r *gormRepository) ScanAll(ctx context.Context) ([]*License, error) {
	return r.store.Find(ctx, nil, option.WithOrder("created_at ASC, id ASC"))
}

func (r *gormRepository) Search(ctx context.Context, query string) ([]*License, error) {
	return r.store.Find(ctx, nil, matchQuery(query), option.WithOrder("created_at DESC, id DESC"))
}

// List pages newest first. Limit+1 rows are fetched so the caller can tell
// whether another page exists.
func (r *gormRepository) List(ctx context.Context, p ListParams) ([]*License, error) {
	opts := []option.QueryOption{
		matchQuery(p.Query),
		option.WithOrder("created_at DESC, id DESC"),
		option.WithLimit(p.Limit + 1),
	}

	if p.Cursor != nil {
		at, err := time.Parse(time.RFC3339Nano, p.Cursor.CreatedAt)
		if err != nil {
			return nil, err
		}
		opts = append(opts, option.WithWhere("(created_at < ? OR (created_at = ? AND id < ?))", at, at, p.Cursor.ID))
	}

	return r.store.Find(ctx, nil, opts...)
}

func (r *gormRepository) UpdateExpiry(ctx context.Context, id, expiry, by string, on time.Time) error {
	return r.store.Update(ctx, id, map[string]any{
		"expiry_date":     expiry,
		"last_updated_by": by,
		"last_updated_on": on,
	})
}

func (r *gormRepository) Delete(ctx context.Context, id string) (int64, error) {
	return r.store.Delete(ctx, id)
}

// likeEscaper escapes LIKE wildcards for ESCAPE '!'.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// matchQuery is a case-insensitive substring match over the license name and
// both owners.
func matchQuery(query string) option.QueryOption {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	like := "%" + likeEscaper.Replace(q) + "%"
	return option.WithWhere(
		"(LOWER(name) LIKE ? ESCAPE '!' OR LOWER(primary_owner) LIKE ? ESCAPE '!' OR LOWER(secondary_owner) LIKE ? ESCAPE '!')",
		like, like, like,
	)
}
