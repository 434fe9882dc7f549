// Package config builds the runtime configuration from defaults, an optional
// YAML file and the environment (a .env file is loaded first when present).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Driver names for the document store and the revocation set.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Mongo      MongoConfig      `yaml:"mongo"`
	Auth       AuthConfig       `yaml:"auth"`
	Store      StoreConfig      `yaml:"store"`
	Revocation RevocationConfig `yaml:"revocation"`
	Log        LogConfig        `yaml:"log"`
	Admin      AdminConfig      `yaml:"admin"`

	// EnvFileLoaded reports whether a .env file was found by Load.
	EnvFileLoaded bool `yaml:"-"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Mode            string        `yaml:"mode"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	PublicURL       string        `yaml:"public_url"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type MongoConfig struct {
	URI            string        `yaml:"uri"`
	Database       string        `yaml:"database"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTL         time.Duration `yaml:"token_ttl"`
	AllowAdminSignup bool          `yaml:"allow_admin_signup"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"`
}

type RevocationConfig struct {
	Driver string      `yaml:"driver"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// AdminConfig seeds an elevated account at startup when both fields are set.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoadDefaults populates development defaults. The secret must be
// overridden outside of local runs.
func (c *Config) LoadDefaults() {
	c.Server.Addr = ":8080"
	c.Server.Mode = "release"
	c.Server.PublicURL = "http://127.0.0.1:8080"
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Mongo.URI = "mongodb://localhost:27017/"
	c.Mongo.Database = "weatherDB"
	c.Mongo.ConnectTimeout = 10 * time.Second
	c.Auth.JWTSecret = "super_secret_weather_key"
	c.Auth.TokenTTL = 30 * time.Minute
	c.Store.Driver = DriverMongo
	c.Revocation.Driver = DriverMongo
	c.Revocation.Redis.Key = "weather:blacklist"
	c.Log.Level = "info"
}

// Load applies defaults, then the YAML file at path (skipped when the path is
// empty or missing), then .env and environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	cfg.EnvFileLoaded = godotenv.Load() == nil
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Addr = ":" + v
	}
	setString(&c.Server.Addr, "HTTP_ADDR")
	setString(&c.Server.Mode, "GIN_MODE")
	setString(&c.Server.PublicURL, "PUBLIC_URL")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	setString(&c.Mongo.URI, "MONGODB_URI")
	setString(&c.Mongo.Database, "DATABASE_NAME")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Store.Driver, "STORE_DRIVER")
	setString(&c.Revocation.Driver, "REVOCATION_DRIVER")
	setString(&c.Revocation.Redis.Addr, "REDIS_ADDR")
	setString(&c.Revocation.Redis.Username, "REDIS_USERNAME")
	setString(&c.Revocation.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Revocation.Redis.Key, "REDIS_BLACKLIST_KEY")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Admin.Username, "ADMIN_USERNAME")
	setString(&c.Admin.Password, "ADMIN_PASSWORD")

	if v := os.Getenv("TOKEN_TTL_MINUTES"); v != "" {
		minutes, err := strconv.Atoi(v)
		if err != nil || minutes <= 0 {
			return fmt.Errorf("invalid TOKEN_TTL_MINUTES %q", v)
		}
		c.Auth.TokenTTL = time.Duration(minutes) * time.Minute
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DB %q", v)
		}
		c.Revocation.Redis.DB = db
	}
	for name, dst := range map[string]*bool{
		"LOG_JSON":           &c.Log.JSON,
		"ALLOW_ADMIN_SIGNUP": &c.Auth.AllowAdminSignup,
	} {
		if v := os.Getenv(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s %q", name, v)
			}
			*dst = b
		}
	}
	return nil
}

// Validate rejects configurations the application cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("jwt secret must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	switch c.Store.Driver {
	case DriverMongo, DriverMemory:
	default:
		return fmt.Errorf("unsupported store driver: %s", c.Store.Driver)
	}
	switch c.Revocation.Driver {
	case DriverMongo:
		if c.Store.Driver != DriverMongo {
			return errors.New("mongo revocation driver requires the mongo store driver")
		}
	case DriverMemory:
	case DriverRedis:
		if c.Revocation.Redis.Addr == "" {
			return errors.New("redis revocation driver requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported revocation driver: %s", c.Revocation.Driver)
	}
	return nil
}

func setString(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
