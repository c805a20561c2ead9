package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
environment: test
server:
  port: 8080
  shutdown_timeout: 5s
backend:
  type: clickhouse
  batch_size: 100
  batch_timeout: 2s
fmp:
  api_key: secret
  symbols: [AAPL, MSFT]
  poll_interval: 15s
forecast:
  max_steps: 500
  max_order: 50
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	c, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Backend.Type != "clickhouse" {
		t.Errorf("backend.type = %q", c.Backend.Type)
	}
	if c.FMP.PollInterval != 15*time.Second {
		t.Errorf("fmp.poll_interval = %v", c.FMP.PollInterval)
	}
	if len(c.FMP.Symbols) != 2 {
		t.Errorf("fmp.symbols = %v", c.FMP.Symbols)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	body := `
environment: test
backend:
  type: rabbitmq
fmp:
  api_key: secret
  symbols: [AAPL]
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected error for unknown backend type")
	}
}

func TestLoadRequiresAPIKey(t *testing.T) {
	body := `
environment: test
backend:
  type: kafka
fmp:
  symbols: [AAPL]
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("FMP_API_KEY", "from-env")
	t.Setenv("SYMBOLS", "TSLA,NVDA,AMZN")
	t.Setenv("BACKEND", "kafka")

	c, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv returned error: %v", err)
	}
	if c.FMP.APIKey != "from-env" {
		t.Errorf("api key not overridden: %q", c.FMP.APIKey)
	}
	if len(c.FMP.Symbols) != 3 || c.FMP.Symbols[0] != "TSLA" {
		t.Errorf("symbols not overridden: %v", c.FMP.Symbols)
	}
	if c.Backend.Type != "kafka" {
		t.Errorf("backend not overridden: %q", c.Backend.Type)
	}
}
