package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL", "DATABASE_DRIVER", "DATABASE_PATH", "LOG_LEVEL", "SERVER_PORT"} {
		t.Setenv(k, "")
	}
	// keep godotenv from picking up a developer .env
	chdir(t, t.TempDir())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "knowledge.db", cfg.Database.Path)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.Model)
	assert.True(t, cfg.Response.IncludeAnalysisID)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9000
database:
  driver: mysql
  host: db
  port: 3306
  user: root
  password: secret
  name: knowledge
openai:
  apiKey: from-file
response:
  includeAnalysisID: false
`), 0o600))
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("SERVER_PORT", "9100")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "from-env", cfg.OpenAI.APIKey)
	assert.False(t, cfg.Response.IncludeAnalysisID)
	assert.Equal(t, "root:secret@tcp(db:3306)/knowledge?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("OPENAI_API_KEY")
	require.NoError(t, os.WriteFile(".env", []byte("OPENAI_API_KEY=from-dotenv\n"), 0o600))

	cfg, err := Load("config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.OpenAI.APIKey)
}

func TestLoad_BadPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "eighty")
	_, err := Load("config.yaml")
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	assert.Error(t, cfg.Validate(), "missing api key")

	cfg.OpenAI.APIKey = "k"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Driver = "oracle"
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = DriverPostgres
	cfg.Minio.Enabled = true
	assert.Error(t, cfg.Validate())
}

func TestPostgresDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.Host = "pg"
	cfg.Database.Port = 5432
	cfg.Database.User = "app"
	cfg.Database.Password = "p@ss"
	cfg.Database.Name = "knowledge"

	assert.Equal(t, "postgres://app:p%40ss@pg:5432/knowledge?sslmode=disable", cfg.PostgresDSN())
}
