package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(EnvMap{})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "https://evmapi-testnet.confluxscan.io/api", cfg.ExplorerAPIURL)
	assert.Equal(t, "https://evmtestnet.confluxscan.io", cfg.ExplorerWebURL)
	assert.Zero(t, cfg.ExplorerTimeout)
	assert.Equal(t, uint64(71), cfg.ChainID)
	assert.Equal(t, []string{"https://evmtestnet.confluxrpc.com"}, cfg.ChainRPCURLs)
	assert.Equal(t, 18, cfg.CurrencyDecimals)
	assert.Equal(t, StateBackendSQLite, cfg.StateBackend)
	assert.Empty(t, cfg.WalletProviderURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(EnvMap{
		"HTTP_ADDR":        "127.0.0.1:9000",
		"EXPLORER_WEB_URL": "https://scan.example/",
		"EXPLORER_TIMEOUT": "3s",
		"CHAIN_ID":         "1030",
		"STATE_BACKEND":    "Redis",
		"KAFKA_BROKERS":    "a:9092, b:9092,",
		"CHAIN_RPC_URLS":   "https://one, https://two",
		"LOG_FORMAT":       "JSON",
	})
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	assert.Equal(t, "https://scan.example", cfg.ExplorerWebURL)
	assert.Equal(t, 3*time.Second, cfg.ExplorerTimeout)
	assert.Equal(t, uint64(1030), cfg.ChainID)
	assert.Equal(t, StateBackendRedis, cfg.StateBackend)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []string{"https://one", "https://two"}, cfg.ChainRPCURLs)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]EnvMap{
		"chain id":      {"CHAIN_ID": "seventy"},
		"zero chain id": {"CHAIN_ID": "0"},
		"timeout":       {"EXPLORER_TIMEOUT": "soon"},
		"backend":       {"STATE_BACKEND": "postgres"},
		"decimals":      {"CURRENCY_DECIMALS": "-1"},
		"zero decimals": {"CURRENCY_DECIMALS": "0"},
		"huge decimals": {"CURRENCY_DECIMALS": "4294967297"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(env)
			assert.Error(t, err)
		})
	}
}

func TestLoadRequiresSource(t *testing.T) {
	_, err := Load(nil)
	assert.Error(t, err)
}
