package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestRead_FileAndDefaults(t *testing.T) {
	p := writeConfig(t, `
app:
  http:
    port: 9000
jwt:
  secret: s3cret
db:
  driver: postgres
  dsn: host=db
cache:
  enable: true
rating:
  aggregateStrategy: per_store
`)
	c, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, 9000, c.App.HTTP.Port)
	assert.Equal(t, 8081, c.App.Admin.Port)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, "store-rating", c.JWT.Issuer)
	assert.True(t, c.Cache.Enable)
	assert.Equal(t, 30*time.Second, c.Cache.TTL())
	assert.Equal(t, "per_store", c.Rating.AggregateStrategy)
	assert.Equal(t, "store-rating.events", c.MQ.Exchange)
}

func TestRead_EnvOverrides(t *testing.T) {
	p := writeConfig(t, "jwt:\n  secret: from-file\n")
	t.Setenv("APP_JWT_SECRET", "from-env")
	t.Setenv("APP_DB_DSN", "file:env.db")
	t.Setenv("APP_MQ_URL", "amqp://guest:guest@mq:5672/")

	c, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.JWT.Secret)
	assert.Equal(t, "file:env.db", c.DB.DSN)
	assert.Equal(t, "amqp://guest:guest@mq:5672/", c.MQ.URL)
}

func TestRead_PathFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t, "jwt:\n  secret: x\nlog:\n  level: warn\n"))
	c, err := Read("")
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Read(writeConfig(t, "db:\n  driver: sqlite\n"))
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestLimits_Timeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, Limits{TimeoutSec: 10}.Timeout())
}
