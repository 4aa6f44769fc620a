package ckeyscan

import (
	"fmt"
	"os"
	"time"

	"github.com/ckeyscan/ckeyscan/internal/config"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// layers holds the configuration sources below the command line, highest
// precedence first: environment, local file, global file.
type layers []config.FileConfig

// loadLayers reads the environment and the config files that apply to
// target. Missing files are skipped. A malformed environment value is an
// error.
func loadLayers(target string) (layers, error) {
	env, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}
	ls := layers{env}
	if c, err := config.LoadLocal(target); err == nil {
		ls = append(ls, c)
	} else {
		log.Tracef("Local config: %v", err)
	}
	if c, err := config.LoadGlobal(); err == nil {
		ls = append(ls, c)
	} else {
		log.Tracef("Global config: %v", err)
	}
	for _, l := range ls {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return ls, nil
}

// prepare loads configuration for target and configures logging. Every
// command calls it first.
func prepare(cmd *cobra.Command, target string) (layers, error) {
	ls, err := loadLayers(target)
	if err != nil {
		return nil, err
	}
	level := pick(cmd, "log-level", flagLogLevel, ls, func(c config.FileConfig) *string { return c.LogLevel })
	if err := setupLoggers(level); err != nil {
		return nil, err
	}
	return ls, nil
}

// pick resolves one setting: an explicitly set flag wins, then the first
// layer that sets the field, then the flag default.
func pick[T any](cmd *cobra.Command, name string, cli T, ls layers, field func(config.FileConfig) *T) T {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return cli
	}
	for _, l := range ls {
		if v := field(l); v != nil {
			return *v
		}
	}
	return cli
}

func pickDuration(cmd *cobra.Command, name string, cli time.Duration, ls layers, field func(config.FileConfig) *string) time.Duration {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return cli
	}
	for _, l := range ls {
		if v := field(l); v != nil && *v != "" {
			if d, err := time.ParseDuration(*v); err == nil {
				return d
			}
		}
	}
	return cli
}

// noColor reports whether output to cmd should be plain: requested by flag
// or config, NO_COLOR is set, or stdout is not a terminal.
func noColor(cmd *cobra.Command, ls layers) bool {
	if pick(cmd, "no-color", flagNoColor, ls, func(c config.FileConfig) *bool { return c.NoColor }) {
		return true
	}
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	return !isTerminal(cmd.OutOrStdout())
}

func isTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
