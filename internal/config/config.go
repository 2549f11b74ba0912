// Package config loads stepscan.toml and overlays flags and STEPSCAN_*
// environment variables on top of it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the project configuration file looked up from the working directory.
const FileName = "stepscan.toml"

type Config struct {
	Scan    ScanConfig    `toml:"scan"`
	Cache   CacheConfig   `toml:"cache"`
	Log     LogConfig     `toml:"log"`
	Metrics MetricsConfig `toml:"metrics"`
	S3      S3Config      `toml:"s3"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

type ScanConfig struct {
	// Jobs <= 0 means GOMAXPROCS.
	Jobs            int  `toml:"jobs"`
	MaxDepth        int  `toml:"max_depth"`
	SkipBadEntities bool `toml:"skip_bad_entities"`
	MaxDiagnostics  int  `toml:"max_diagnostics"`
}

type CacheConfig struct {
	Enabled bool `toml:"enabled"`
	// Dir defaults to $XDG_CACHE_HOME/stepscan.
	Dir string `toml:"dir"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // json | console
}

type MetricsConfig struct {
	// Textfile is a node-exporter textfile path; empty disables metrics output.
	Textfile string `toml:"textfile"`
}

type S3Config struct {
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	PathStyle bool   `toml:"path_style"`
	// статические ключи нужны только для MinIO и похожих хранилищ
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
}

func Default() Config {
	return Config{
		Scan: ScanConfig{
			MaxDepth:        256,
			SkipBadEntities: true,
			MaxDiagnostics:  100,
		},
		Cache: CacheConfig{Enabled: true},
		Log:   LogConfig{Level: "warn", Format: "console"},
		S3:    S3Config{Region: "us-east-1"},
	}
}

// Find walks up from startDir looking for stepscan.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path over the defaults. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("s3", "access_key_id") != meta.IsDefined("s3", "secret_access_key") {
		return Config{}, fmt.Errorf("%s: [s3].access_key_id and [s3].secret_access_key go together", path)
	}
	if meta.IsDefined("cache", "dir") && strings.TrimSpace(cfg.Cache.Dir) == "" {
		return Config{}, fmt.Errorf("%s: [cache].dir is empty", path)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover finds and loads stepscan.toml from startDir upward, or returns
// the defaults when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

func (c Config) Validate() error {
	if c.Scan.MaxDepth <= 0 {
		return fmt.Errorf("[scan].max_depth must be positive, got %d", c.Scan.MaxDepth)
	}
	if c.Scan.MaxDiagnostics < 0 {
		return fmt.Errorf("[scan].max_diagnostics must not be negative, got %d", c.Scan.MaxDiagnostics)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("[log].format must be json or console, got %q", c.Log.Format)
	}
	return nil
}
