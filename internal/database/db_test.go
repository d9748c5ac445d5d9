package database

import (
	"path/filepath"
	"testing"

	"github.com/fyerfyer/integra-processual/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DSN = filepath.Join(t.TempDir(), "nested", "integra.db")

	require.NoError(t, Setup(cfg, nil))
	defer func() {
		assert.NoError(t, Close())
		DB = nil
	}()

	db := MustDB()
	assert.True(t, db.Migrator().HasTable(&models.ProcessRun{}))
	assert.True(t, db.Migrator().HasTable(&models.RunDocument{}))
	assert.FileExists(t, cfg.DSN)
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(&Config{Type: "mysql"}, nil)
	assert.Error(t, err)
}

func TestMustDBPanics(t *testing.T) {
	original := DB
	DB = nil
	defer func() { DB = original }()

	assert.Panics(t, func() { MustDB() })
	assert.NoError(t, Close())
}
