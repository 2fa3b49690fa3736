package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del servidor del dashboard.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Gateway GatewayConfig `yaml:"gateway"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig controla el listener HTTP.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig controla dónde se persiste el watchlist.
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite | jsonfile
	DSN    string `yaml:"dsn"`    // ruta al archivo SQLite, o ":memory:"
	File   string `yaml:"file"`   // ruta del archivo JSON para el driver jsonfile
}

// AuthConfig controla cómo se resuelve la identidad del usuario.
type AuthConfig struct {
	Scheme        string `yaml:"scheme"`         // session | wallet
	SessionSecret string `yaml:"session_secret"` // secreto HMAC para el scheme session
	SignMessage   string `yaml:"sign_message"`   // mensaje firmado para el scheme wallet
}

// GatewayConfig contiene los base URLs y credenciales de los providers
// de market data.
type GatewayConfig struct {
	AssetsBase string `yaml:"assets_base"`
	NewsBase   string `yaml:"news_base"`
	APIKey     string `yaml:"api_key"`
}

// CacheConfig controla la caché TTL de respuestas del gateway.
type CacheConfig struct {
	Driver            string `yaml:"driver"`     // memory | redis
	RedisAddr         string `yaml:"redis_addr"` // host:port para el driver redis
	AssetsTTLSeconds  int    `yaml:"assets_ttl_seconds"`
	HistoryTTLSeconds int    `yaml:"history_ttl_seconds"`
	NewsTTLSeconds    int    `yaml:"news_ttl_seconds"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// AssetsTTL devuelve el TTL de caché de assets como time.Duration.
func (c *Config) AssetsTTL() time.Duration {
	return time.Duration(c.Cache.AssetsTTLSeconds) * time.Second
}

// HistoryTTL devuelve el TTL de caché de series históricas.
func (c *Config) HistoryTTL() time.Duration {
	return time.Duration(c.Cache.HistoryTTLSeconds) * time.Second
}

// NewsTTL devuelve el TTL de caché de noticias.
func (c *Config) NewsTTL() time.Duration {
	return time.Duration(c.Cache.NewsTTLSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
// Los secretos (SESSION_SECRET, COINCAP_API_KEY) viven en el entorno, nunca
// en el YAML versionado.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Auth.SessionSecret = v
	}
	if v := os.Getenv("COINCAP_API_KEY"); v != "" {
		cfg.Gateway.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "retrotoken.db"
	}
	if cfg.Storage.File == "" {
		cfg.Storage.File = "watchlist.json"
	}
	if cfg.Auth.Scheme == "" {
		cfg.Auth.Scheme = "session"
	}
	if cfg.Gateway.AssetsBase == "" {
		cfg.Gateway.AssetsBase = "https://api.coincap.io/v2"
	}
	if cfg.Gateway.NewsBase == "" {
		cfg.Gateway.NewsBase = "https://min-api.cryptocompare.com/data/v2"
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = "memory"
	}
	if cfg.Cache.RedisAddr == "" {
		cfg.Cache.RedisAddr = "localhost:6379"
	}
	if cfg.Cache.AssetsTTLSeconds <= 0 {
		cfg.Cache.AssetsTTLSeconds = 60
	}
	if cfg.Cache.HistoryTTLSeconds <= 0 {
		cfg.Cache.HistoryTTLSeconds = 300
	}
	if cfg.Cache.NewsTTLSeconds <= 0 {
		cfg.Cache.NewsTTLSeconds = 600
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
