package config

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig()

	if cfg.Server.Port != "8080" {
		t.Errorf("default port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Host != "localhost" {
		t.Errorf("default db host = %s, want localhost", cfg.Database.Host)
	}
	if cfg.JWT.AccessTokenExpiry != 15*time.Minute {
		t.Errorf("default access expiry = %s, want 15m", cfg.JWT.AccessTokenExpiry)
	}
	if cfg.Booking.ApprovalExpiry != 24*time.Hour {
		t.Errorf("default approval expiry = %s, want 24h", cfg.Booking.ApprovalExpiry)
	}
	if cfg.Booking.SweepInterval != time.Minute {
		t.Errorf("default sweep interval = %s, want 1m", cfg.Booking.SweepInterval)
	}
	if cfg.Booking.SweepBatchSize != 100 {
		t.Errorf("default sweep batch size = %d, want 100", cfg.Booking.SweepBatchSize)
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		t.Error("default CORS origins must not be empty")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("BOOKING_APPROVAL_EXPIRY", "48h")
	t.Setenv("BOOKING_SWEEP_INTERVAL", "30s")
	t.Setenv("BOOKING_SWEEP_BATCH_SIZE", "25")

	cfg := LoadConfig()
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.Booking.ApprovalExpiry != 48*time.Hour {
		t.Errorf("approval expiry = %s, want 48h", cfg.Booking.ApprovalExpiry)
	}
	if cfg.Booking.SweepInterval != 30*time.Second {
		t.Errorf("sweep interval = %s, want 30s", cfg.Booking.SweepInterval)
	}
	if cfg.Booking.SweepBatchSize != 25 {
		t.Errorf("sweep batch size = %d, want 25", cfg.Booking.SweepBatchSize)
	}
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("BOOKING_APPROVAL_EXPIRY", "not-a-duration")
	t.Setenv("BOOKING_SWEEP_BATCH_SIZE", "-3")

	cfg := LoadConfig()
	if cfg.Booking.ApprovalExpiry != 24*time.Hour {
		t.Errorf("approval expiry = %s, want fallback 24h", cfg.Booking.ApprovalExpiry)
	}
	if cfg.Booking.SweepBatchSize != 100 {
		t.Errorf("sweep batch size = %d, want fallback 100", cfg.Booking.SweepBatchSize)
	}
}

func TestParseOrigins(t *testing.T) {
	origins := parseOrigins("http://a.example,http://b.example")
	if len(origins) != 2 || origins[0] != "http://a.example" || origins[1] != "http://b.example" {
		t.Errorf("parseOrigins = %v", origins)
	}
	if got := parseOrigins(""); len(got) != 0 {
		t.Errorf("parseOrigins(\"\") = %v, want empty", got)
	}
}
