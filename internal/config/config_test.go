package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "5000", cfg.ServerPort)
	require.Equal(t, "development", cfg.Env)
	require.Equal(t, "mysql", cfg.DBDriver)
	require.Equal(t, 24*time.Hour, cfg.JWTExpiresIn)
	require.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.AllowedOrigins)
	require.Equal(t, "gpt-3.5-turbo", cfg.AIModel)
	require.False(t, cfg.EncryptionEnabled(), "no secret means no envelope")
}

func TestLoad_TrimsOrigins(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("ALLOWED_ORIGINS", " http://a.example , http://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_MongoRequiresURI(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "mongo")
	t.Setenv("MONGO_URI", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_UnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")

	_, err := Load()
	require.Error(t, err)
}

func TestEncryptionEnabled(t *testing.T) {
	cfg := Config{CryptoSecret: "k", CryptoEnabled: true}
	require.True(t, cfg.EncryptionEnabled())

	cfg.CryptoEnabled = false
	require.False(t, cfg.EncryptionEnabled())
}

func TestIsDevelopment(t *testing.T) {
	require.True(t, Config{Env: "development"}.IsDevelopment())
	require.False(t, Config{Env: "production"}.IsDevelopment())
}

func TestMySQLDSN(t *testing.T) {
	cfg := Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "3306", DBName: "d"}
	require.Equal(t, "u:p@tcp(h:3306)/d?parseTime=true", cfg.MySQLDSN())
}
