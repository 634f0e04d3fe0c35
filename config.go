package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
)

const ENV_PREFIX = "SKILLS_SH_"

var DEFAULT_OUTPUT_DIR = "data/skills-sh"
var DEFAULT_PUBLIC_DIRS = []string{"apps/web/public/data", "apps/console/public/data"}

type Config struct {
	ConfigFile       string        `koanf:"config"`
	OutputDir        string        `koanf:"output-dir"`
	PublicDirs       []string      `koanf:"public-dir"`
	SkipStars        bool          `koanf:"skip-stars"`
	SkipSummaries    bool          `koanf:"skip-summaries"`
	RefreshSummaries bool          `koanf:"refresh-summaries"`
	SkipPublic       bool          `koanf:"skip-public"`
	StarSleep        time.Duration `koanf:"star-sleep"`
	SummarySleep     time.Duration `koanf:"summary-sleep"`
	Timeout          time.Duration `koanf:"timeout"`
	Catalogue        string        `koanf:"catalogue"`
	HTTPCacheDir     string        `koanf:"http-cache-dir"`
	MetricsFile      string        `koanf:"metrics-file"`
	LogLevel         string        `koanf:"log-level"`
}

func new_flagset() *flag.FlagSet {
	flags := flag.NewFlagSet("skills-sh", flag.ContinueOnError)
	flags.String("config", "", "YAML config file (env: SKILLS_SH_CONFIG)")
	flags.String("output-dir", DEFAULT_OUTPUT_DIR, "output directory")
	flags.StringSlice("public-dir", DEFAULT_PUBLIC_DIRS, "public data directory receiving a copy of the core domains JSON, repeatable")
	flags.Bool("skip-stars", false, "skip GitHub stars fetch")
	flags.Bool("skip-summaries", false, "skip SKILL.md summary fetch")
	flags.Bool("refresh-summaries", false, "refresh cached SKILL.md summaries")
	flags.Bool("skip-public", false, "skip writing public JSON for the web/console apps")
	flags.Duration("star-sleep", 800*time.Millisecond, "delay between GitHub star fetches")
	flags.Duration("summary-sleep", 300*time.Millisecond, "delay between summary fetches")
	flags.Duration("timeout", 30*time.Second, "per-request timeout")
	flags.String("catalogue", "", "YAML catalogue replacing the embedded one")
	flags.String("http-cache-dir", "", "cache successful HTTP responses here (development only)")
	flags.String("metrics-file", "", "write run metrics here in the prometheus text format")
	flags.String("log-level", "info", "one of debug, info, warn, error")
	return flags
}

// builds a Config by layering, lowest to highest precedence:
// flag defaults, an optional YAML file, SKILLS_SH_* env vars, then flags set on the command line.
func load_config(args []string) (Config, error) {
	cfg := Config{}
	flags := new_flagset()
	err := flags.Parse(args)
	if err != nil {
		return cfg, err
	}

	k := koanf.New(".")

	config_file, _ := flags.GetString("config")
	if config_file == "" {
		config_file = os.Getenv(ENV_PREFIX + "CONFIG")
	}
	if config_file != "" {
		err = k.Load(file.Provider(config_file), yaml.Parser())
		if err != nil {
			return cfg, fmt.Errorf("failed to load config file '%s': %w", config_file, err)
		}
	}

	// SKILLS_SH_OUTPUT_DIR => output-dir, SKILLS_SH_PUBLIC_DIR=a,b => [a b]
	env_provider := env.ProviderWithValue(ENV_PREFIX, ".", func(key string, val string) (string, any) {
		key = strings.ToLower(strings.TrimPrefix(key, ENV_PREFIX))
		key = strings.ReplaceAll(key, "_", "-")
		if key == "public-dir" {
			return key, strings.Split(val, ",")
		}
		return key, val
	})
	err = k.Load(env_provider, nil)
	if err != nil {
		return cfg, fmt.Errorf("failed to load environment: %w", err)
	}

	// flag defaults only fill gaps, flags given explicitly override everything.
	err = k.Load(posflag.Provider(flags, ".", k), nil)
	if err != nil {
		return cfg, fmt.Errorf("failed to load flags: %w", err)
	}

	err = k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"})
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	cfg.ConfigFile = config_file

	if cfg.OutputDir == "" {
		return cfg, errors.New("output-dir must not be empty")
	}
	if cfg.Timeout <= 0 {
		return cfg, errors.New("timeout must be positive")
	}
	_, err = parse_log_level(cfg.LogLevel)
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parse_log_level(level string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(level))
	if err != nil {
		return l, fmt.Errorf("unknown log level '%s'", level)
	}
	return l, nil
}
