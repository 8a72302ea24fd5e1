package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("CACHE_TTL_SECONDS", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, 300*time.Second, cfg.CacheTTL)
	assert.Equal(t, 32, cfg.MaxUploadMB)
	assert.Contains(t, cfg.DSN(), "dbname="+cfg.PostgresDB)
}

func TestLoadOverridesAndBadInts(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("MAX_UPLOAD_MB", "lots")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/sales?sslmode=disable")

	cfg := Load()

	assert.Equal(t, 8081, cfg.Port)
	assert.Equal(t, 32, cfg.MaxUploadMB)
	assert.Equal(t, "postgres://u:p@db:5432/sales?sslmode=disable", cfg.DSN())
}

func TestReportURLDropsPlaceholders(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"https://x.io", ""},
		{"https://app.powerbi.com/view?r=YOUR_REPORT_ID", ""},
		{"  https://app.powerbi.com/view?r=abc123def456  ", "https://app.powerbi.com/view?r=abc123def456"},
	}

	for _, tt := range tests {
		cfg := &Config{PBIReportURL: tt.raw}
		assert.Equal(t, tt.want, cfg.ReportURL(), "raw=%q", tt.raw)
	}
}

func TestAllowedOriginsList(t *testing.T) {
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg := Load()

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}
