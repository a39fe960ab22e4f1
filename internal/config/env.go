package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is stripped from environment variables: TRACKER_DB_HOST sets db_host.
const EnvPrefix = "TRACKER_"

// DefaultJWTSecret is only fit for local development; serve warns about it.
const DefaultJWTSecret = "dev-secret-change-me"

type Env struct {
	AppAddr     string        `koanf:"app_addr"`
	GinMode     string        `koanf:"gin_mode"`
	LogLevel    string        `koanf:"log_level"`
	LogJSON     bool          `koanf:"log_json"`
	DBDriver    string        `koanf:"db_driver"`
	DBHost      string        `koanf:"db_host"`
	DBUser      string        `koanf:"db_user"`
	DBPassword  string        `koanf:"db_password"`
	DBName      string        `koanf:"db_name"`
	DBPath      string        `koanf:"db_path"`
	JWTSecret   string        `koanf:"jwt_secret"`
	TokenTTL    time.Duration `koanf:"token_ttl"`
	CORSOrigins []string      `koanf:"cors_origins"`
}

var defaults = map[string]any{
	"app_addr":     ":8080",
	"gin_mode":     "",
	"log_level":    "info",
	"log_json":     false,
	"db_driver":    "mysql",
	"db_host":      "127.0.0.1:3306",
	"db_user":      "root",
	"db_password":  "",
	"db_name":      "tracker",
	"db_path":      "tracker.db",
	"jwt_secret":   DefaultJWTSecret,
	"token_ttl":    "24h",
	"cors_origins": []string{"*"},
}

// mapProvider feeds a plain map to koanf.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("config: map provider has no byte form")
}

func (m mapProvider) Read() (map[string]any, error) { return m, nil }

// LoadEnv reads configuration with precedence defaults < YAML file < environment.
// An empty path skips the file.
func LoadEnv(path string) (Env, error) {
	k := koanf.New(".")
	if err := k.Load(mapProvider(defaults), nil); err != nil {
		return Env{}, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Env{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	transform := func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return Env{}, fmt.Errorf("load env: %w", err)
	}

	var e Env
	if err := k.Unmarshal("", &e); err != nil {
		return Env{}, fmt.Errorf("unmarshal config: %w", err)
	}
	e.AppAddr = strings.TrimSpace(e.AppAddr)
	e.GinMode = strings.TrimSpace(e.GinMode)
	e.CORSOrigins = splitOrigins(e.CORSOrigins)
	if err := e.Validate(); err != nil {
		return Env{}, err
	}
	return e, nil
}

func (e Env) Validate() error {
	if e.AppAddr == "" {
		return fmt.Errorf("config: app_addr is empty")
	}
	if strings.TrimSpace(e.JWTSecret) == "" {
		return fmt.Errorf("config: jwt_secret is empty")
	}
	if e.TokenTTL <= 0 {
		return fmt.Errorf("config: token_ttl must be positive, got %s", e.TokenTTL)
	}
	return nil
}

// splitOrigins trims entries and also splits any that still hold commas,
// which is how a YAML scalar arrives.
func splitOrigins(in []string) []string {
	var out []string
	for _, raw := range in {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
