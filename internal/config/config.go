package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Listing  ListingConfig  `mapstructure:"listing"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port          string        `mapstructure:"port"`
	SiteURL       string        `mapstructure:"site_url"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionName   string        `mapstructure:"session_name"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	// Driver is one of postgres, mysql, sqlite.
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

type CacheConfig struct {
	// Backend is memory or redis.
	Backend   string        `mapstructure:"backend"`
	TTL       time.Duration `mapstructure:"ttl"`
	Size      int           `mapstructure:"size"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	Prefix    string        `mapstructure:"prefix"`
}

type StorageConfig struct {
	// Backend is local or minio.
	Backend   string `mapstructure:"backend"`
	Dir       string `mapstructure:"dir"`
	URLPrefix string `mapstructure:"url_prefix"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	PublicURL string `mapstructure:"public_url"`
}

type ListingConfig struct {
	PageSize int `mapstructure:"page_size"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

var defaults = map[string]interface{}{
	"server.port":           "8080",
	"server.site_url":       "http://localhost:8080",
	"server.session_secret": "secret_key_change_me",
	"server.session_name":   "yatube_session",
	"server.read_timeout":   10 * time.Second,
	"server.write_timeout":  10 * time.Second,

	"database.driver": "postgres",
	"database.dsn":    "host=localhost user=postgres password=postgres dbname=yatube port=5432 sslmode=disable",
	"database.debug":  false,

	"cache.backend":    "memory",
	"cache.ttl":        20 * time.Second,
	"cache.size":       500,
	"cache.redis_addr": "localhost:6379",
	"cache.redis_db":   0,
	"cache.prefix":     "yatube:cache:",

	"storage.backend":    "local",
	"storage.dir":        "./media",
	"storage.url_prefix": "/media",
	"storage.endpoint":   "127.0.0.1:9000",
	"storage.access_key": "",
	"storage.secret_key": "",
	"storage.bucket":     "yatube",
	"storage.use_ssl":    false,
	"storage.public_url": "http://127.0.0.1:9000",

	"listing.page_size": 10,

	"log.level":       "info",
	"log.development": false,
}

// Environment names kept short and compatible with the usual deployment vars.
var envBindings = map[string]string{
	"server.port":           "PORT",
	"server.site_url":       "SITE_URL",
	"server.session_secret": "SESSION_SECRET",
	"database.driver":       "DATABASE_DRIVER",
	"database.dsn":          "DATABASE_URL",
	"database.debug":        "DATABASE_DEBUG",
	"cache.backend":         "CACHE_BACKEND",
	"cache.ttl":             "CACHE_TTL",
	"cache.redis_addr":      "REDIS_ADDR",
	"storage.backend":       "STORAGE_BACKEND",
	"storage.dir":           "MEDIA_DIR",
	"storage.endpoint":      "MINIO_ENDPOINT",
	"storage.access_key":    "MINIO_ACCESS_KEY",
	"storage.secret_key":    "MINIO_SECRET_KEY",
	"storage.bucket":        "MINIO_BUCKET",
	"storage.use_ssl":       "MINIO_USE_SSL",
	"storage.public_url":    "MINIO_PUBLIC_URL",
	"listing.page_size":     "PAGE_SIZE",
	"log.level":             "LOG_LEVEL",
	"log.development":       "LOG_DEVELOPMENT",
}

// LoadEnv loads a .env file when one is present.
func LoadEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Load reads configuration from defaults, an optional yaml file and the
// environment, in increasing order of precedence. An empty path looks for
// app.yaml in the working directory and tolerates its absence.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("YATUBE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, "YATUBE_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("app")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Cache.Backend)
	}
	switch c.Storage.Backend {
	case "local", "minio":
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive, got %s", c.Cache.TTL)
	}
	if c.Listing.PageSize < 1 {
		return fmt.Errorf("listing.page_size must be positive, got %d", c.Listing.PageSize)
	}
	return nil
}
