package user

import (
	"context"

	"license-tracker/pkg/authz"
	"license-tracker/pkg/db/option"
	"license-tracker/pkg/repository"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	// CreateWithBootstrapRole stores u as admin when no user exists yet and
	// as general otherwise.
	CreateWithBootstrapRole(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context, role string) (int64, error)
	UpdateRole(ctx context.Context, id, role string) error
	Delete(ctx context.Context, id string) (int64, error)
	TransferAdmin(ctx context.Context, fromID, toID string) error
}

type gormRepository struct {
	db    *gorm.DB
	store repository.Repository[User]
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{
		db:    db,
		store: repository.ProvideStore[User](db),
	}
}

func (r *gormRepository) Create(ctx context.Context, u *User) error {
	return r.store.Create(ctx, u)
}

func (r *gormRepository) CreateWithBootstrapRole(ctx context.Context, u *User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := r.store.WithTrx(tx)

		n, err := store.Count(ctx, nil)
		if err != nil {
			return err
		}
		if n == 0 {
			u.Role = authz.RoleAdmin
		} else {
			u.Role = authz.RoleGeneral
		}
		return store.Create(ctx, u)
	})
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*User, error) {
	return r.store.FindOne(ctx, nil, option.WithWhere("id = ?", id))
}

func (r *gormRepository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.store.FindOne(ctx, nil, option.WithWhere("username_key = ?", usernameKey(username)))
}

func (r *gormRepository) List(ctx context.Context) ([]*User, error) {
	return r.store.Find(ctx, nil, option.WithOrder("created_at ASC, id ASC"))
}

func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	return r.store.Count(ctx, nil)
}

func (r *gormRepository) CountByRole(ctx context.Context, role string) (int64, error) {
	return r.store.Count(ctx, &User{Role: role})
}

func (r *gormRepository) UpdateRole(ctx context.Context, id, role string) error {
	return r.store.Update(ctx, id, map[string]any{"role": role})
}

func (r *gormRepository) Delete(ctx context.Context, id string) (int64, error) {
	return r.store.Delete(ctx, id)
}

// TransferAdmin promotes toID and demotes fromID in one transaction.
func (r *gormRepository) TransferAdmin(ctx context.Context, fromID, toID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := r.store.WithTrx(tx)
		if err := store.Update(ctx, toID, map[string]any{"role": authz.RoleAdmin}); err != nil {
			return err
		}
		return store.Update(ctx, fromID, map[string]any{"role": authz.RoleGeneral})
	})
}
