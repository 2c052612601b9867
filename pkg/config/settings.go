package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Environment variables that override settings.
const (
	EnvRedisURL = "GRAPHLAYOUT_REDIS_URL"
	EnvMongoURI = "GRAPHLAYOUT_MONGO_URI"
	EnvAddr     = "GRAPHLAYOUT_ADDR"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Storage backends.
const (
	StorageMemory = "memory"
	StorageMongo  = "mongo"
)

// Settings configures the CLI and the HTTP server.
type Settings struct {
	Cache   CacheSettings   `toml:"cache"`
	Storage StorageSettings `toml:"storage"`
	Server  ServerSettings  `toml:"server"`
	Layout  LayoutSettings  `toml:"layout"`
}

// CacheSettings selects the layout cache.
type CacheSettings struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// StorageSettings selects the graph store used by the server.
type StorageSettings struct {
	Backend  string `toml:"backend"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// ServerSettings configures the HTTP server.
type ServerSettings struct {
	Addr string `toml:"addr"`
	// MaxBodyBytes limits request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes"`
}

// LayoutSettings holds layout defaults.
type LayoutSettings struct {
	// Default is the strategy used when no params are given.
	Default string `toml:"default"`
	// Params is a parameter file applied when no params are given.
	Params string `toml:"params"`
}

// ErrInvalidSettings is returned when settings validation fails.
var ErrInvalidSettings = errors.New("invalid settings")

// DefaultSettings returns the settings used when no file exists.
func DefaultSettings() *Settings {
	return &Settings{
		Cache:   CacheSettings{Backend: CacheFile, Dir: defaultCacheDir(), Prefix: "graphlayout:"},
		Storage: StorageSettings{Backend: StorageMemory, Database: "graphlayout"},
		Server:  ServerSettings{Addr: ":8080", MaxBodyBytes: 8 << 20},
		Layout:  LayoutSettings{Default: "planar"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/graphlayout/config.toml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "graphlayout", "config.toml")
}

func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "graphlayout")
	}
	return filepath.Join(dir, "graphlayout")
}

// LoadSettings reads settings from path on top of the defaults, then
// applies environment overrides. A missing file is not an error.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	if path != "" {
		if _, err := toml.DecodeFile(path, s); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading settings %s: %w", path, err)
		}
	}
	s.applyEnv(os.Getenv)
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) applyEnv(getenv func(string) string) {
	if v := getenv(EnvRedisURL); v != "" {
		s.Cache.RedisURL = v
		if s.Cache.Backend == CacheFile {
			s.Cache.Backend = CacheRedis
		}
	}
	if v := getenv(EnvMongoURI); v != "" {
		s.Storage.MongoURI = v
		if s.Storage.Backend == StorageMemory {
			s.Storage.Backend = StorageMongo
		}
	}
	if v := getenv(EnvAddr); v != "" {
		s.Server.Addr = v
	}
}

// Validate checks backend names and their required fields.
func (s *Settings) Validate() error {
	switch s.Cache.Backend {
	case CacheNone:
	case CacheFile:
		if s.Cache.Dir == "" {
			return fmt.Errorf("%w: cache.dir is required for the file cache", ErrInvalidSettings)
		}
	case CacheRedis:
		if s.Cache.RedisURL == "" {
			return fmt.Errorf("%w: cache.redis_url is required for the redis cache", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: cache.backend must be one of none, file, redis, got %q", ErrInvalidSettings, s.Cache.Backend)
	}

	switch s.Storage.Backend {
	case StorageMemory:
	case StorageMongo:
		if s.Storage.MongoURI == "" || s.Storage.Database == "" {
			return fmt.Errorf("%w: storage.mongo_uri and storage.database are required for mongo", ErrInvalidSettings)
		}
	default:
		return fmt.Errorf("%w: storage.backend must be memory or mongo, got %q", ErrInvalidSettings, s.Storage.Backend)
	}

	if s.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.max_body_bytes must be positive", ErrInvalidSettings)
	}
	return nil
}
