package invitekit

import (
	"errors"
	"testing"
)

func TestConfigSetDefaults(t *testing.T) {
	var cfg Config
	cfg.setDefaults()

	if cfg.SessionDir != "./session" {
		t.Errorf("SessionDir = %q", cfg.SessionDir)
	}
	if cfg.InputPath != "telegram_users.csv" || cfg.OutputPath != "invite_results.csv" {
		t.Errorf("paths = %q, %q", cfg.InputPath, cfg.OutputPath)
	}
	if cfg.BatchSize != 10 || cfg.BatchDelay != 5 || cfg.InviteDelay != 1 {
		t.Errorf("batching = %d/%d/%d", cfg.BatchSize, cfg.BatchDelay, cfg.InviteDelay)
	}
	if cfg.MaxFloodWait != 600 {
		t.Errorf("MaxFloodWait = %d", cfg.MaxFloodWait)
	}
	if cfg.Logger == nil {
		t.Error("Logger not defaulted")
	}
	if cfg.DeviceModel != "invitekit" {
		t.Errorf("DeviceModel = %q", cfg.DeviceModel)
	}
}

func TestConfigSetDefaultsKeepsValues(t *testing.T) {
	cfg := Config{BatchSize: 3, BatchDelay: 60, MaxFloodWait: -1}
	cfg.setDefaults()

	if cfg.BatchSize != 3 || cfg.BatchDelay != 60 {
		t.Errorf("explicit values overwritten: %d/%d", cfg.BatchSize, cfg.BatchDelay)
	}
	if cfg.MaxFloodWait != -1 {
		t.Errorf("MaxFloodWait = %d, want -1 kept", cfg.MaxFloodWait)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := Config{APIID: 12345, APIHash: "hash", Channel: "@test"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing api id", func(c *Config) { c.APIID = 0 }, ErrMissingAPIID},
		{"missing api hash", func(c *Config) { c.APIHash = "" }, ErrMissingAPIHash},
		{"missing channel", func(c *Config) { c.Channel = "" }, ErrMissingChannel},
		{"negative batch size", func(c *Config) { c.BatchSize = -1 }, ErrBadBatchSize},
		{"negative batch delay", func(c *Config) { c.BatchDelay = -1 }, ErrBadDelay},
		{"negative invite delay", func(c *Config) { c.InviteDelay = -1 }, ErrBadDelay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
