package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type StateBackend string

const (
	StateBackendSQLite StateBackend = "sqlite"
	StateBackendMySQL  StateBackend = "mysql"
	StateBackendRedis  StateBackend = "redis"
)

// maxCurrencyDecimals matches application.MaxDecimals.
const maxCurrencyDecimals = 36

type Config struct {
	HTTPAddr          string
	ExplorerAPIURL    string
	ExplorerWebURL    string
	ExplorerTimeout   time.Duration
	WalletProviderURL string
	ChainID           uint64
	ChainName         string
	ChainRPCURLs      []string
	ChainExplorerURLs []string
	CurrencySymbol    string
	CurrencyDecimals  int
	StateBackend      StateBackend
	StateDBPath       string
	DBDSN             string
	RedisAddr         string
	OtelEndpoint      string
	KafkaBrokers      []string
	KafkaTopic        string
	LogLevel          string
	LogFormat         string
	LogFile           string
	LogMaxSizeMB      int
	LogMaxBackups     int
}

type EnvSource interface {
	Lookup(key string) (string, bool)
}

type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

func FromEnviron() EnvSource {
	env := make(EnvMap)
	for _, entry := range os.Environ() {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}

func Load(source EnvSource) (Config, error) {
	if source == nil {
		return Config{}, errors.New("env source is required")
	}

	explorerTimeout, err := parseDurationEnv(source, "EXPLORER_TIMEOUT", 0)
	if err != nil {
		return Config{}, err
	}
	chainID, err := parseUintEnv(source, "CHAIN_ID", 71)
	if err != nil {
		return Config{}, err
	}
	if chainID == 0 {
		return Config{}, errors.New("CHAIN_ID must be positive")
	}
	decimals, err := parseUintEnv(source, "CURRENCY_DECIMALS", 18)
	if err != nil {
		return Config{}, err
	}
	if decimals == 0 || decimals > maxCurrencyDecimals {
		return Config{}, fmt.Errorf("CURRENCY_DECIMALS must be between 1 and %d", maxCurrencyDecimals)
	}
	rpcURLs, err := parseList(source, "CHAIN_RPC_URLS", "https://evmtestnet.confluxrpc.com")
	if err != nil {
		return Config{}, err
	}
	explorerURLs, err := parseList(source, "CHAIN_EXPLORER_URLS", "https://www.confluxscan.io/")
	if err != nil {
		return Config{}, err
	}
	logMaxSize, err := parseUintEnv(source, "LOG_MAX_SIZE_MB", 100)
	if err != nil {
		return Config{}, err
	}
	logMaxBackups, err := parseUintEnv(source, "LOG_MAX_BACKUPS", 3)
	if err != nil {
		return Config{}, err
	}

	backend := StateBackend(strings.ToLower(stringEnv(source, "STATE_BACKEND", string(StateBackendSQLite))))
	switch backend {
	case StateBackendSQLite, StateBackendMySQL, StateBackendRedis:
	default:
		return Config{}, fmt.Errorf("invalid STATE_BACKEND: %s", backend)
	}

	cfg := Config{
		HTTPAddr:          stringEnv(source, "HTTP_ADDR", ":8080"),
		ExplorerAPIURL:    stringEnv(source, "EXPLORER_API_URL", "https://evmapi-testnet.confluxscan.io/api"),
		ExplorerWebURL:    strings.TrimRight(stringEnv(source, "EXPLORER_WEB_URL", "https://evmtestnet.confluxscan.io"), "/"),
		ExplorerTimeout:   explorerTimeout,
		WalletProviderURL: stringEnv(source, "WALLET_PROVIDER_URL", ""),
		ChainID:           chainID,
		ChainName:         stringEnv(source, "CHAIN_NAME", "CFXTestnet"),
		ChainRPCURLs:      rpcURLs,
		ChainExplorerURLs: explorerURLs,
		CurrencySymbol:    stringEnv(source, "CURRENCY_SYMBOL", "CFX"),
		CurrencyDecimals:  int(decimals),
		StateBackend:      backend,
		StateDBPath:       stringEnv(source, "STATE_DB_PATH", "txdash.db"),
		DBDSN:             stringEnv(source, "DB_DSN", "root:@tcp(127.0.0.1:3306)/txdash?parseTime=true"),
		RedisAddr:         stringEnv(source, "REDIS_ADDR", "127.0.0.1:6379"),
		OtelEndpoint:      stringEnv(source, "OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		KafkaBrokers:      optionalList(source, "KAFKA_BROKERS"),
		KafkaTopic:        stringEnv(source, "KAFKA_TOPIC", "txdash-fetches"),
		LogLevel:          stringEnv(source, "LOG_LEVEL", "info"),
		LogFormat:         strings.ToLower(stringEnv(source, "LOG_FORMAT", "text")),
		LogFile:           stringEnv(source, "LOG_FILE", ""),
		LogMaxSizeMB:      int(logMaxSize),
		LogMaxBackups:     int(logMaxBackups),
	}
	if cfg.ExplorerAPIURL == "" {
		return Config{}, errors.New("EXPLORER_API_URL is required")
	}
	return cfg, nil
}

func stringEnv(source EnvSource, key, defaultValue string) string {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	return strings.TrimSpace(raw)
}

func parseUintEnv(source EnvSource, key string, defaultValue uint64) (uint64, error) {
	raw, ok := source.Lookup(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseDurationEnv(source EnvSource, key string, defaultValue time.Duration) (time.Duration, error) {
	raw, ok := source.Lookup(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	duration, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return duration, nil
}

func parseList(source EnvSource, key string, defaultValue string) ([]string, error) {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		raw = defaultValue
	}
	values := splitList(raw)
	if len(values) == 0 {
		return nil, fmt.Errorf("%s is required", key)
	}
	return values, nil
}

func optionalList(source EnvSource, key string) []string {
	raw, ok := source.Lookup(key)
	if !ok {
		return nil
	}
	return splitList(raw)
}

func splitList(raw string) []string {
	var values []string
	for _, item := range strings.Split(raw, ",") {
		value := strings.TrimSpace(item)
		if value == "" {
			continue
		}
		values = append(values, value)
	}
	return values
}
