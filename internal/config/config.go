package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	Neo4j   Neo4jConfig
	Valkey  ValkeyConfig
	OpenAI  OpenAIConfig
	History HistoryConfig
	MCP     MCPConfig
	Log     LogConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
}

type Neo4jConfig struct {
	URI          string
	User         string
	Password     string
	Database     string
	QueryTimeout time.Duration
}

type ValkeyConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a Valkey address was configured.
func (v ValkeyConfig) Enabled() bool { return v.Addr != "" }

type OpenAIConfig struct {
	APIKey  string
	BaseURL string // OPENAI_BASE_URL (optional, for OpenAI-compatible gateways)
	Model   string
}

type HistoryConfig struct {
	Backend string // "memory" or "valkey"
	Key     string
}

type MCPConfig struct {
	Addr string
}

type LogConfig struct {
	Level slog.Level
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnvInt("SERVER_PORT", 8000),
			ReadTimeout:  time.Duration(getEnvInt("SERVER_READ_TIMEOUT_SECS", 30)) * time.Second,
			WriteTimeout: time.Duration(getEnvInt("SERVER_WRITE_TIMEOUT_SECS", 90)) * time.Second,
			CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		},
		Neo4j: Neo4jConfig{
			URI:          getEnv("NEO4J_URI", "bolt://localhost:7687"),
			User:         getEnv("NEO4J_USER", "neo4j"),
			Password:     getEnv("NEO4J_PASSWORD", "password"),
			Database:     getEnv("NEO4J_DATABASE", ""),
			QueryTimeout: time.Duration(getEnvInt("QUERY_TIMEOUT_SECS", 30)) * time.Second,
		},
		Valkey: ValkeyConfig{
			Addr:     getEnv("VALKEY_ADDR", ""),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("OPENAI_MODEL", "gpt-4"),
		},
		History: HistoryConfig{
			Backend: strings.ToLower(getEnv("HISTORY_BACKEND", "memory")),
			Key:     getEnv("HISTORY_KEY", "catalograph:history"),
		},
		MCP: MCPConfig{
			Addr: getEnv("MCP_ADDR", ":8090"),
		},
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.Log.Level = level

	switch cfg.History.Backend {
	case "memory":
	case "valkey":
		if !cfg.Valkey.Enabled() {
			return nil, fmt.Errorf("HISTORY_BACKEND=valkey requires VALKEY_ADDR")
		}
	default:
		return nil, fmt.Errorf("HISTORY_BACKEND must be memory or valkey, got %q", cfg.History.Backend)
	}

	return cfg, nil
}

// Addr returns the host:port the API server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return l, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
