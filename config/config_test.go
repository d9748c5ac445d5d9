package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "patterns/signatures_expanded.json", cfg.Patterns.Path)
	assert.Equal(t, 20, cfg.Segmenter.MinLines)
	assert.Equal(t, 500, cfg.Classifier.Window)
	assert.Equal(t, 30, cfg.Cleaner.HexMinLength)
	assert.Equal(t, 20, cfg.Cleaner.ShortLineMaxLength)
	assert.Equal(t, "rows", cfg.Extractor.Engine)
	assert.Equal(t, 10, cfg.Extractor.ProgressEvery)
	assert.True(t, cfg.Extractor.NormalizeUnicode)
	assert.Equal(t, []string{"json", "markdown", "text", "html"}, cfg.Output.Formats)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.False(t, cfg.Database.Enable)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.Log.Level)

	assert.Equal(t, cfg, Default())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
segmenter:
  min_lines: 5
extractor:
  engine: pdfcpu
output:
  formats: [json, text]
storage:
  path: /tmp/saida
server:
  port: 9090
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Segmenter.MinLines)
	assert.Equal(t, "pdfcpu", cfg.Extractor.Engine)
	assert.Equal(t, []string{"json", "text"}, cfg.Output.Formats)
	assert.Equal(t, "/tmp/saida", cfg.Storage.Path)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	// 未覆盖的字段保留默认值
	assert.Equal(t, 500, cfg.Classifier.Window)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("INTEGRA_SERVER_PORT", "7070")
	t.Setenv("INTEGRA_CACHE_TYPE", "redis")
	t.Setenv("INTEGRA_SEGMENTER_MIN_LINES", "3")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Cache.Type)
	assert.Equal(t, 3, cfg.Segmenter.MinLines)
}

func TestLoadExpandsSecrets(t *testing.T) {
	t.Setenv("MINIO_SECRET", "s3cr3t")
	path := writeConfig(t, `
storage:
  secret_key: ${MINIO_SECRET}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", cfg.Storage.SecretKey)
}

func TestLoadValidation(t *testing.T) {
	tests := map[string]string{
		"unknown engine":  "extractor:\n  engine: ocr\n",
		"unknown format":  "output:\n  formats: [pdf]\n",
		"negative guard":  "segmenter:\n  min_lines: -1\n",
		"bad log level":   "log:\n  level: loud\n",
		"port too large":  "server:\n  port: 70000\n",
		"unknown storage": "storage:\n  type: ftp\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}
