package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")

	assert.Equal(t, "productgate", cfg.System.Appid)
	assert.Equal(t, 4002, cfg.Web.Port)
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, "http://users-api:4001", cfg.Users.Baseurl)
	assert.Equal(t, 0, cfg.Users.Timeout)
	assert.Equal(t, filepath.Join(cfg.System.Workdir, "data", "products.db"), cfg.Document.Path)
}

func TestLoadConfigBackendSwitch(t *testing.T) {
	t.Setenv("PRODUCTS_BACKEND", "cosmos")
	assert.Equal(t, BackendCosmos, LoadConfig("").Backend)

	t.Setenv("PRODUCTS_BACKEND", "COSMOS")
	assert.Equal(t, BackendCosmos, LoadConfig("").Backend)

	// unknown values fall back to postgres
	t.Setenv("PRODUCTS_BACKEND", "mongo")
	assert.Equal(t, BackendPostgres, LoadConfig("").Backend)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("USERS_API_URL", "http://127.0.0.1:9001")
	t.Setenv("PRODUCTGATE_WEB_PORT", "8080")
	t.Setenv("PRODUCTGATE_USERS_TIMEOUT", "5")

	cfg := LoadConfig("")
	assert.Equal(t, "http://127.0.0.1:9001", cfg.Users.Baseurl)
	assert.Equal(t, 8080, cfg.Web.Port)
	assert.Equal(t, 5, cfg.Users.Timeout)
}

func TestLoadConfigFile(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "productgate.yml")
	require.NoError(t, os.WriteFile(cfile, []byte(`
backend: cosmos
web:
  port: 4100
document:
  path: /tmp/docs.db
`), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, BackendCosmos, cfg.Backend)
	assert.Equal(t, 4100, cfg.Web.Port)
	assert.Equal(t, "/tmp/docs.db", cfg.Document.Path)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg := LoadConfig(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Equal(t, BackendPostgres, cfg.Backend)
	assert.Equal(t, 4002, cfg.Web.Port)
}
