package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// viper keys and the flags bound to them
var bindings = map[string]string{
	"scan.jobs":              "jobs",
	"scan.max_depth":         "max-depth",
	"scan.skip_bad_entities": "skip-bad-entities",
	"scan.max_diagnostics":   "max-diagnostics",
	"cache.enabled":          "cache",
	"cache.dir":              "cache-dir",
	"log.level":              "log-level",
	"log.format":             "log-format",
	"metrics.textfile":       "metrics-textfile",
	"s3.region":              "s3-region",
	"s3.endpoint":            "s3-endpoint",
	"s3.path_style":          "s3-path-style",
}

// NewViper returns a viper instance reading STEPSCAN_* variables
// (STEPSCAN_SCAN_JOBS, STEPSCAN_LOG_LEVEL, ...) and bound to those flags
// of flags that exist.
func NewViper(flags *pflag.FlagSet) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("STEPSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, name := range bindings {
		_ = v.BindEnv(key)
		if flags == nil {
			continue
		}
		if f := flags.Lookup(name); f != nil {
			_ = v.BindPFlag(key, f)
		}
	}
	return v
}

// Overlay applies every key v has an explicit value for, a changed flag or
// an environment variable, on top of cfg. Flag defaults never override
// the file.
func Overlay(cfg Config, v *viper.Viper) Config {
	setInt := func(dst *int, key string) {
		if v.IsSet(key) {
			*dst = v.GetInt(key)
		}
	}
	setBool := func(dst *bool, key string) {
		if v.IsSet(key) {
			*dst = v.GetBool(key)
		}
	}
	setString := func(dst *string, key string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setInt(&cfg.Scan.Jobs, "scan.jobs")
	setInt(&cfg.Scan.MaxDepth, "scan.max_depth")
	setBool(&cfg.Scan.SkipBadEntities, "scan.skip_bad_entities")
	setInt(&cfg.Scan.MaxDiagnostics, "scan.max_diagnostics")
	setBool(&cfg.Cache.Enabled, "cache.enabled")
	setString(&cfg.Cache.Dir, "cache.dir")
	setString(&cfg.Log.Level, "log.level")
	setString(&cfg.Log.Format, "log.format")
	setString(&cfg.Metrics.Textfile, "metrics.textfile")
	setString(&cfg.S3.Region, "s3.region")
	setString(&cfg.S3.Endpoint, "s3.endpoint")
	setBool(&cfg.S3.PathStyle, "s3.path_style")
	return cfg
}
