package config

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Port != 20310 {
		t.Fatalf("Port = %d", cfg.Server.Port)
	}
	if cfg.Data.DataDir != "data" {
		t.Fatalf("DataDir = %q", cfg.Data.DataDir)
	}
	if cfg.Import.MaxRowsPerSheet != 1000 {
		t.Fatalf("MaxRowsPerSheet = %d", cfg.Import.MaxRowsPerSheet)
	}
}

func TestConfigTomlRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 8080
	cfg.Server.DevMode = true
	cfg.Import.MaxRowsPerSheet = 50

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := &AppConfig{}
	if err := toml.Unmarshal(data, got); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got.Server.Port != 8080 || !got.Server.DevMode || got.Import.MaxRowsPerSheet != 50 {
		t.Fatalf("got = %+v", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("SHEETDESK_DATA_DIR", "/tmp/sheetdesk-test")
	t.Setenv("SHEETDESK_MAX_ROWS_PER_SHEET", "200")

	cfg := DefaultConfig()
	applyEnvOverrides(cfg)

	if cfg.Data.DataDir != "/tmp/sheetdesk-test" {
		t.Fatalf("DataDir = %q", cfg.Data.DataDir)
	}
	if cfg.Import.MaxRowsPerSheet != 200 {
		t.Fatalf("MaxRowsPerSheet = %d", cfg.Import.MaxRowsPerSheet)
	}

	// 非法值不覆盖
	t.Setenv("SHEETDESK_MAX_ROWS_PER_SHEET", "abc")
	cfg = DefaultConfig()
	applyEnvOverrides(cfg)
	if cfg.Import.MaxRowsPerSheet != 1000 {
		t.Fatalf("MaxRowsPerSheet = %d", cfg.Import.MaxRowsPerSheet)
	}
}
