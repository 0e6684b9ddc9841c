package master

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
server:
  host: "127.0.0.1"
  port: 18080
  mode: "test"
database:
  driver: "sqlite"
  sqlite:
    path: ":memory:"
    log_level: "silent"
log:
  level: "warn"
  format: "json"
  output: "stdout"
security:
  jwt:
    secret: "app_test_rbacmaster_jwt_secret_key_32chars"
  password:
    bcrypt_cost: 4
menu:
  cache:
    enabled: true
    store: "memory"
    ttl: 1m
    size: 16
app:
  environment: "test"
  features:
    dev_endpoints: true
`

func TestNewApp_ServesRoutes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.test.yaml"), []byte(testConfigYAML), 0o644))

	app, err := NewApp(dir, "test")
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = app.Stop(ctx)
	})

	assert.Equal(t, "sqlite", app.GetConfig().Database.Driver)

	engine := app.GetRouter().GetEngine()
	for path, want := range map[string]int{
		"/api/health":         http.StatusOK,
		"/api/ready":          http.StatusOK,
		"/api/menu/my-menus":  http.StatusUnauthorized,
		"/api/auth/register":  http.StatusNotFound,
		"/api/does-not-exist": http.StatusNotFound,
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/dev/initial", nil))
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestNewApp_InvalidConfig(t *testing.T) {
	_, err := NewApp(t.TempDir(), "test")
	assert.Error(t, err)
}
