package db

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"

	"license-tracker/pkg/config"
)

func TestDialect(t *testing.T) {
	cfg := &config.Config{}

	cfg.Database.Type = "postgres"
	cfg.Database.Host = "db"
	cfg.Database.Port = "5432"
	cfg.Database.DBNAME = "licenses"
	d, err := Dialect(cfg)
	require.NoError(t, err)
	pg, ok := d.(*postgres.Dialector)
	require.True(t, ok)
	require.Contains(t, pg.Config.DSN, "dbname=licenses")
	require.Equal(t, "licenses", getDBNameFromDialector(d))

	cfg.Database.Type = "mysql"
	d, err = Dialect(cfg)
	require.NoError(t, err)
	_, ok = d.(*mysql.Dialector)
	require.True(t, ok)
	require.Equal(t, "licenses", getDBNameFromDialector(d))

	cfg.Database.Type = "sqlite"
	cfg.Database.DBNAME = ":memory:"
	d, err = Dialect(cfg)
	require.NoError(t, err)
	_, ok = d.(*sqlite.Dialector)
	require.True(t, ok)

	cfg.Database.Type = "oracle"
	_, err = Dialect(cfg)
	require.Error(t, err)
}

func TestExtractDBNameFromDSN(t *testing.T) {
	require.Equal(t, "app", extractDBNameFromDSN("host=x port=1 dbname=app sslmode=disable"))
	require.Equal(t, "app", extractDBNameFromDSN("u:p@tcp(h:3306)/app?parseTime=True"))
	require.Equal(t, "unknown", extractDBNameFromDSN("host=x"))
}
