package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"license-tracker/pkg/db/option"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID    string `gorm:"column:id;primaryKey"`
	Name  string `gorm:"column:name"`
	Color string `gorm:"column:color"`
}

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestStore(t *testing.T) {
	ctx := context.Background()
	repo := ProvideStore[widget](newDB(t))

	require.NoError(t, repo.Create(ctx, &widget{ID: "1", Name: "a", Color: "red"}))
	require.NoError(t, repo.Create(ctx, &widget{ID: "2", Name: "b", Color: "red"}))
	require.NoError(t, repo.Create(ctx, &widget{ID: "3", Name: "c", Color: "blue"}))

	reds, err := repo.Find(ctx, &widget{Color: "red"}, option.WithOrder("id DESC"))
	require.NoError(t, err)
	require.Len(t, reds, 2)
	require.Equal(t, "2", reds[0].ID)

	n, err := repo.Count(ctx, &widget{Color: "red"})
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	got, err := repo.FindOne(ctx, &widget{ID: "3"})
	require.NoError(t, err)
	require.Equal(t, "c", got.Name)

	_, err = repo.FindOne(ctx, &widget{ID: "404"})
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	require.NoError(t, repo.Update(ctx, "3", map[string]any{"color": "green"}))
	require.True(t, errors.Is(repo.Update(ctx, "404", map[string]any{"color": "x"}), gorm.ErrRecordNotFound))

	deleted, err := repo.Delete(ctx, "1")
	require.NoError(t, err)
	require.EqualValues(t, 1, deleted)

	all, err := repo.Find(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
