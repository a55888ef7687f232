package config

import (
	"testing"
	"time"
)

// ============================================================
// Config Tests
// ============================================================

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Bot.HubAsset != "USDT" {
		t.Errorf("expected default hub USDT, got %s", cfg.Bot.HubAsset)
	}
	if cfg.Bot.TradeAmount != 3.0 {
		t.Errorf("expected default trade amount 3.0, got %v", cfg.Bot.TradeAmount)
	}
	if cfg.Bot.MinProfitPct != 0.3 {
		t.Errorf("expected default min profit 0.3, got %v", cfg.Bot.MinProfitPct)
	}
	if cfg.Bot.FeeRate != 0.001 {
		t.Errorf("expected default fee rate 0.001, got %v", cfg.Bot.FeeRate)
	}
	if cfg.Bot.ScanInterval != 300*time.Millisecond {
		t.Errorf("expected default scan interval 300ms, got %v", cfg.Bot.ScanInterval)
	}
	if cfg.Bot.Cooldown != 2*time.Second {
		t.Errorf("expected default cooldown 2s, got %v", cfg.Bot.Cooldown)
	}
	if !cfg.Bot.DryRun {
		t.Error("expected dry run enabled by default")
	}
	if !cfg.Exchange.UseTestnet {
		t.Error("expected testnet enabled by default")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Enabled {
		t.Error("expected trade journal disabled by default")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HUB_ASSET", "BTC")
	t.Setenv("TRADE_AMOUNT", "10.5")
	t.Setenv("SCAN_INTERVAL", "1s")
	t.Setenv("MAX_TRIANGLES", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Bot.HubAsset != "BTC" {
		t.Errorf("expected hub BTC, got %s", cfg.Bot.HubAsset)
	}
	if cfg.Bot.TradeAmount != 10.5 {
		t.Errorf("expected trade amount 10.5, got %v", cfg.Bot.TradeAmount)
	}
	if cfg.Bot.ScanInterval != time.Second {
		t.Errorf("expected scan interval 1s, got %v", cfg.Bot.ScanInterval)
	}
	if cfg.Bot.MaxTriangles != 50 {
		t.Errorf("expected max triangles 50, got %d", cfg.Bot.MaxTriangles)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("TRADE_AMOUNT", "not-a-number")
	t.Setenv("SCAN_INTERVAL", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Непарсящиеся значения откатываются на дефолты
	if cfg.Bot.TradeAmount != 3.0 {
		t.Errorf("expected fallback trade amount 3.0, got %v", cfg.Bot.TradeAmount)
	}
	if cfg.Bot.ScanInterval != 300*time.Millisecond {
		t.Errorf("expected fallback scan interval 300ms, got %v", cfg.Bot.ScanInterval)
	}
}

func TestValidateTrading(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{
			name:    "live mode without keys",
			env:     map[string]string{"DRY_RUN": "false"},
			wantErr: true,
		},
		{
			name: "live mode with keys",
			env: map[string]string{
				"DRY_RUN":            "false",
				"BINANCE_API_KEY":    "key",
				"BINANCE_API_SECRET": "secret",
			},
			wantErr: false,
		},
		{
			name:    "negative trade amount",
			env:     map[string]string{"TRADE_AMOUNT": "-1"},
			wantErr: true,
		},
		{
			name:    "fee rate too high",
			env:     map[string]string{"FEE_RATE": "0.5"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateRanges(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"port out of range", map[string]string{"SERVER_PORT": "70000"}},
		{"zero max symbols", map[string]string{"MAX_SYMBOLS": "0"}},
		{"zero max triangles", map[string]string{"MAX_TRIANGLES": "0"}},
		{"depth too deep", map[string]string{"DEPTH_LEVELS": "500"}},
		{"too many retries", map[string]string{"FETCH_RETRIES": "50"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			if _, err := Load(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "bot",
		Password: "secret",
		Name:     "triarb",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 user=bot password=secret dbname=triarb sslmode=disable"
	if got := db.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}

	safe := db.DSNWithoutPassword()
	if safe == db.DSN() {
		t.Error("DSNWithoutPassword must not contain the password")
	}
	want = "host=localhost port=5432 user=bot dbname=triarb sslmode=disable"
	if safe != want {
		t.Errorf("DSNWithoutPassword() = %q, want %q", safe, want)
	}
}
