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
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o644))
	return dir
}

func TestLoad_FullConfig(t *testing.T) {
	dir := writeConfig(t, `
connection:
  host: db.example.org
  port: 5433
  username: miqa
  database: methylation
  sslmode: require
storage:
  endpoint: https://nyc3.digitaloceanspaces.com
  bucket: miqa-idat
  region: nyc3
crawl:
  study_limit: 25
  sample_limit: 5
  download: false
  platforms: [GPL13534, GPL21145]
  timeout: 30m
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "db.example.org", cfg.Connection.Host)
	assert.Equal(t, 5433, cfg.Connection.Port)
	assert.Equal(t, "miqa", cfg.Connection.Username)
	assert.Equal(t, "methylation", cfg.Connection.Database)
	assert.Equal(t, "require", cfg.Connection.SSLMode)

	assert.Equal(t, "https://nyc3.digitaloceanspaces.com", cfg.Storage.Endpoint)
	assert.Equal(t, "miqa-idat", cfg.Storage.Bucket)
	assert.Equal(t, "nyc3", cfg.Storage.Region)

	assert.Equal(t, 25, cfg.Crawl.StudyLimit)
	assert.Equal(t, 5, cfg.Crawl.SampleLimit)
	require.NotNil(t, cfg.Crawl.Download)
	assert.False(t, *cfg.Crawl.Download)
	assert.Equal(t, []string{"GPL13534", "GPL21145"}, cfg.Crawl.Platforms)
	assert.Equal(t, "30m", cfg.Crawl.Timeout)
}

func TestLoad_MinimalConfig(t *testing.T) {
	dir := writeConfig(t, `
connection:
  host: localhost
  database: miqa
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Connection.Host)
	assert.Zero(t, cfg.Connection.Port)
	assert.Empty(t, cfg.Storage.Bucket)
	// Unset download must be distinguishable from explicit false.
	assert.Nil(t, cfg.Crawl.Download)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := writeConfig(t, "connection: [not a mapping")
	_, err := Load(dir)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrConfigNotFound)
}
