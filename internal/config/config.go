package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ckeyscan/ckeyscan/internal/report"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable, e.g. CKEYSCAN_MODE.
const EnvPrefix = "ckeyscan"

// FileConfig is the configuration shape shared by YAML files and the
// environment. Nil fields are unset and fall through to the next source.
type FileConfig struct {
	Mode           *string `yaml:"mode,omitempty" envconfig:"MODE"`
	SkipDegenerate *bool   `yaml:"skip_degenerate,omitempty" envconfig:"SKIP_DEGENERATE"`
	Include        *string `yaml:"include,omitempty" envconfig:"INCLUDE"`
	Exclude        *string `yaml:"exclude,omitempty" envconfig:"EXCLUDE"`
	MaxBytes       *int64  `yaml:"max_bytes,omitempty" envconfig:"MAX_BYTES"`
	Threads        *int    `yaml:"threads,omitempty" envconfig:"THREADS"`
	NoColor        *bool   `yaml:"no_color,omitempty" envconfig:"NO_COLOR"`
	FailOn         *string `yaml:"fail_on,omitempty" envconfig:"FAIL_ON"`
	LogLevel       *string `yaml:"log_level,omitempty" envconfig:"LOG_LEVEL"`

	// Backup archive scanning mirrors CLI flags
	Archives        *bool   `yaml:"archives,omitempty" envconfig:"ARCHIVES"`
	MaxArchiveBytes *int64  `yaml:"max_archive_bytes,omitempty" envconfig:"MAX_ARCHIVE_BYTES"`
	MaxEntries      *int    `yaml:"max_entries,omitempty" envconfig:"MAX_ENTRIES"`
	MaxDepth        *int    `yaml:"max_depth,omitempty" envconfig:"MAX_DEPTH"`
	ScanTimeBudget  *string `yaml:"scan_time_budget,omitempty" envconfig:"SCAN_TIME_BUDGET"`
}

// LocalNames are the file names LoadLocal looks for, in order.
var LocalNames = []string{".ckeyscan.yml", ".ckeyscan.yaml", "ckeyscan.yml", "ckeyscan.yaml"}

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadLocal searches for a config file in dir. When dir names a file, its
// parent directory is searched instead.
func LoadLocal(dir string) (FileConfig, error) {
	var cfg FileConfig
	if st, err := os.Stat(dir); err == nil && !st.IsDir() {
		dir = filepath.Dir(dir)
	}
	for _, name := range LocalNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, errors.New("no local config")
}

// GlobalPath returns $XDG_CONFIG_HOME/ckeyscan/config.yml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func GlobalPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return "", errors.New("no config dir")
	}
	return filepath.Join(base, "ckeyscan", "config.yml"), nil
}

// LoadGlobal loads the global config file.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	p, err := GlobalPath()
	if err != nil {
		return cfg, err
	}
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, errors.New("no global config")
}

// LoadEnv reads CKEYSCAN_* variables.
func LoadEnv() (FileConfig, error) {
	var cfg FileConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Validate checks values that have a closed set of forms.
func (fc FileConfig) Validate() error {
	if fc.Mode != nil {
		switch *fc.Mode {
		case "", "legacy", "structural":
		default:
			return fmt.Errorf("mode: unknown value %q", *fc.Mode)
		}
	}
	if fc.FailOn != nil {
		if err := report.ValidateFailOn(*fc.FailOn); err != nil {
			return fmt.Errorf("fail_on: %w", err)
		}
	}
	if fc.ScanTimeBudget != nil && *fc.ScanTimeBudget != "" {
		if _, err := time.ParseDuration(*fc.ScanTimeBudget); err != nil {
			return fmt.Errorf("scan_time_budget: %w", err)
		}
	}
	return nil
}

// Template is written by "config init".
const Template = `# ckeyscan configuration
# mode: legacy | structural
mode: legacy
skip_degenerate: true
# include: "**/*.dat"
# exclude: "**/backup-old/**"
max_bytes: 1073741824
threads: 0
archives: false
max_archive_bytes: 33554432
max_entries: 1000
max_depth: 2
scan_time_budget: 10s
no_color: false
# fail_on: any | none
fail_on: any
log_level: info
`
