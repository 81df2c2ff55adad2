package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"cinelist/internal/logging"
	"cinelist/internal/validation"
)

const (
	// EnvPrefix marks environment variables that override settings:
	// CINELIST_SERVER_PORT -> server.port, CINELIST_CLIENT_BASE_URL -> client.base_url.
	EnvPrefix = "CINELIST_"

	// PathEnvVar overrides the settings file location.
	PathEnvVar = "CINELIST_CONFIG"

	// DefaultPath is used when neither a flag nor PathEnvVar names a file.
	DefaultPath = "cache/settings.yaml"
)

// Settings represents the application configuration.
type Settings struct {
	Server ServerSettings `koanf:"server"`
	Client ClientSettings `koanf:"client"`
	Log    LogConfig      `koanf:"log"`
}

// ServerSettings configures the reference watchlist backend.
type ServerSettings struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	APIPrefix       string        `koanf:"api_prefix"`
	StorageDir      string        `koanf:"storage_dir" validate:"required"`
	SessionDuration time.Duration `koanf:"session_duration" validate:"gt=0"`
	AuthRatePerMin  int           `koanf:"auth_rate_per_min" validate:"min=1"`
	AuthRateBurst   int           `koanf:"auth_rate_burst" validate:"min=1"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
}

// ClientSettings configures the watchlist client and CLI.
type ClientSettings struct {
	BaseURL         string        `koanf:"base_url" validate:"required,url"`
	CredentialsFile string        `koanf:"credentials_file" validate:"required"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	HydrateWorkers  int           `koanf:"hydrate_workers" validate:"min=1"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `koanf:"file"`
	Level      string `koanf:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled"`
	Format     string `koanf:"format" validate:"omitempty,oneof=json console"`
	MaxSize    int    `koanf:"max_size"`
	MaxAge     int    `koanf:"max_age"`
	MaxBackups int    `koanf:"max_backups"`
	Compress   bool   `koanf:"compress"`
}

// Logging converts the log section into logging.Config.
func (c LogConfig) Logging() logging.Config {
	return logging.Config{
		Level:      c.Level,
		Format:     c.Format,
		File:       c.File,
		MaxSize:    c.MaxSize,
		MaxBackups: c.MaxBackups,
		MaxAge:     c.MaxAge,
		Compress:   c.Compress,
	}
}

// Address returns host:port for the HTTP listener.
func (s ServerSettings) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host:            "0.0.0.0",
			Port:            7777,
			APIPrefix:       "/api",
			StorageDir:      "cache",
			SessionDuration: 30 * 24 * time.Hour,
			AuthRatePerMin:  10,
			AuthRateBurst:   5,
			ShutdownTimeout: 10 * time.Second,
		},
		Client: ClientSettings{
			BaseURL:         "http://localhost:7777/api",
			CredentialsFile: "cache/credentials.json",
			Timeout:         30 * time.Second,
			RefreshInterval: 0, // polling disabled
			HydrateWorkers:  4,
		},
		Log: LogConfig{
			File:       "",
			Level:      "info",
			Format:     "console",
			MaxSize:    50, // 50 MB per file
			MaxBackups: 3,
			MaxAge:     7, // days
			Compress:   true,
		},
	}
}

// ResolvePath picks the settings file: explicit flag, then PathEnvVar, then DefaultPath.
func ResolvePath(flagValue string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := strings.TrimSpace(os.Getenv(PathEnvVar)); p != "" {
		return p
	}
	return DefaultPath
}

// Manager loads settings from defaults, a YAML file and the environment, in
// increasing order of precedence.
type Manager struct {
	path string
}

func NewManager(configPath string) *Manager {
	return &Manager{path: configPath}
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// Load layers defaults, the YAML file and CINELIST_* environment variables.
// A missing file is created with defaults.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(DefaultSettings(), "koanf"), nil); err != nil {
		return Settings{}, fmt.Errorf("load defaults: %w", err)
	}

	if _, err := os.Stat(m.path); errors.Is(err, fs.ErrNotExist) {
		if err := m.Save(DefaultSettings()); err != nil {
			return Settings{}, err
		}
	} else if err != nil {
		return Settings{}, err
	} else if err := k.Load(file.Provider(m.path), yaml.Parser()); err != nil {
		return Settings{}, fmt.Errorf("load config file %s: %w", m.path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Settings{}, fmt.Errorf("load environment: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}

	s.normalize()
	if err := validation.Struct(s); err != nil {
		return Settings{}, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if dir := filepath.Dir(m.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(s, "koanf"), nil); err != nil {
		return err
	}
	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, m.path)
}

func (s *Settings) normalize() {
	s.Server.APIPrefix = "/" + strings.Trim(strings.TrimSpace(s.Server.APIPrefix), "/")
	if s.Server.APIPrefix == "/" {
		s.Server.APIPrefix = ""
	}
	s.Client.BaseURL = strings.TrimRight(strings.TrimSpace(s.Client.BaseURL), "/")
	s.Log.Level = strings.ToLower(strings.TrimSpace(s.Log.Level))
	s.Log.Format = strings.ToLower(strings.TrimSpace(s.Log.Format))
}

// envKey maps CINELIST_SECTION_SOME_KEY to section.some_key.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}
