package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Ensure clean env for this test.
	os.Clearenv()

	cfg := Load()
	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, "users.yaml", cfg.UsersFile)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 5*time.Second, cfg.ReadHeaderTimeout)
	require.Equal(t, 1<<20, cfg.MaxBodyBytes)
	require.Equal(t, "development", cfg.Env)
	require.Equal(t, "", cfg.LogFile)
	require.Equal(t, "pdf", cfg.ExportFormat)
	require.Empty(t, cfg.PDFFont)
	require.False(t, cfg.IsProduction())
}

func TestLoad_OverridesAndInvalidValues(t *testing.T) {
	t.Cleanup(os.Clearenv)

	t.Run("valid overrides", func(t *testing.T) {
		os.Setenv("NOTES_DATA_DIR", "/var/lib/notes")
		os.Setenv("USERS_FILE", "/etc/notes/users.yaml")
		os.Setenv("HTTP_ADDR", ":9999")
		os.Setenv("HTTP_READ_HEADER_TIMEOUT", "10s")
		os.Setenv("MAX_BODY_BYTES", "2048")
		os.Setenv("APP_ENV", "production")
		os.Setenv("LOG_FILE", "/var/log/notes.log")
		os.Setenv("EXPORT_FORMAT", "txt")
		os.Setenv("PDF_FONT", "/usr/share/fonts/DejaVuSans.ttf")

		cfg := Load()
		require.Equal(t, "/var/lib/notes", cfg.DataDir)
		require.Equal(t, "/etc/notes/users.yaml", cfg.UsersFile)
		require.Equal(t, ":9999", cfg.HTTPAddr)
		require.Equal(t, 10*time.Second, cfg.ReadHeaderTimeout)
		require.Equal(t, 2048, cfg.MaxBodyBytes)
		require.True(t, cfg.IsProduction())
		require.Equal(t, "/var/log/notes.log", cfg.LogFile)
		require.Equal(t, "txt", cfg.ExportFormat)
		require.Equal(t, "/usr/share/fonts/DejaVuSans.ttf", cfg.PDFFont)
	})

	t.Run("invalid numbers fall back to defaults", func(t *testing.T) {
		os.Clearenv()
		os.Setenv("HTTP_READ_HEADER_TIMEOUT", "bad")
		os.Setenv("MAX_BODY_BYTES", "abc")

		cfg := Load()
		require.Equal(t, 5*time.Second, cfg.ReadHeaderTimeout)
		require.Equal(t, 1<<20, cfg.MaxBodyBytes)

		os.Setenv("MAX_BODY_BYTES", "-5")
		require.Equal(t, 1<<20, Load().MaxBodyBytes)
	})
}
