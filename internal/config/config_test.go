package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "uploads", cfg.Upload.Dir)
	assert.Equal(t, int64(16*1024*1024), cfg.Upload.MaxBytes)
	assert.Equal(t, []string{"csv"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, "Order Date", cfg.Columns.Date)
	assert.Equal(t, "Restaurant Name", cfg.Columns.Category)
	assert.Equal(t, 587, cfg.Mail.Port)
	assert.False(t, cfg.Mail.Configured())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CSVDESK_SERVER_PORT", "9090")
	t.Setenv("CSVDESK_COLUMNS_DATE", "Ship Date")
	t.Setenv("CSVDESK_UPLOAD_ALLOWED_EXTENSIONS", "csv,xlsx")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "Ship Date", cfg.Columns.Date)
	assert.Equal(t, []string{"csv", "xlsx"}, cfg.Upload.AllowedExtensions)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "csvdesk.yaml")
	content := `
mail:
  host: smtp.example.com
  username: mailer
  password: hunter2
columns:
  category: Store Name
`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	t.Setenv("CSVDESK_CONFIG", configPath)

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Mail.Configured())
	assert.Equal(t, "smtp.example.com", cfg.Mail.Host)
	assert.Equal(t, "Store Name", cfg.Columns.Category)
	// Defaults still apply where neither env nor file set a value.
	assert.Equal(t, "Order Date", cfg.Columns.Date)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("CSVDESK_SERVER_PORT", "99999")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid server port")
}

func TestAllowedExtension(t *testing.T) {
	cfg := &Config{Upload: UploadConfig{AllowedExtensions: []string{"csv", ".XLSX"}}}

	tests := []struct {
		filename string
		want     bool
	}{
		{"orders.csv", true},
		{"orders.CSV", true},
		{"book.xlsx", true},
		{"orders.txt", false},
		{"noextension", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.AllowedExtension(tt.filename))
		})
	}
}

func TestEnsureUploadDir(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Upload: UploadConfig{Dir: filepath.Join(dir, "uploads")}}

	require.NoError(t, cfg.EnsureUploadDir())

	info, err := os.Stat(cfg.Upload.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMailConfig_Sender(t *testing.T) {
	m := MailConfig{Username: "user@example.com"}
	assert.Equal(t, "user@example.com", m.Sender())

	m.From = "noreply@example.com"
	assert.Equal(t, "noreply@example.com", m.Sender())
}
