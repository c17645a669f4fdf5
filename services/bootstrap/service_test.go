package bootstrap

import (
	"context"
	"testing"

	"license-tracker/services/testutil"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrateCreatesTables(t *testing.T) {
	zap.ReplaceGlobals(zap.NewNop())
	db := testutil.NewTestDB(t)
	svc := NewService(ServiceParams{DB: db})

	require.NoError(t, svc.Migrate(context.Background()))
	// idempotent
	require.NoError(t, svc.Migrate(context.Background()))

	for _, table := range []string{"licenses", "users", "scan_jobs"} {
		require.True(t, db.Migrator().HasTable(table), table)
	}
}
