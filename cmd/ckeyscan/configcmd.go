package ckeyscan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ckeyscan/ckeyscan/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	cfgOutput string
	cfgGlobal bool
	cfgForce  bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented .ckeyscan.yml with the default settings",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().StringVar(&cfgOutput, "output", ".ckeyscan.yml", "output file path")
	initCmd.Flags().BoolVar(&cfgGlobal, "global", false, "write the global config file instead")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	showCmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Print the configuration in effect for path as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runConfigShow,
	}
	cfgCmd.AddCommand(showCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	out := cfgOutput
	if cfgGlobal {
		p, err := config.GlobalPath()
		if err != nil {
			return err
		}
		out = p
	}
	if _, err := os.Stat(out); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", out)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(out, []byte(config.Template), 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", out)
	return nil
}

// runConfigShow flattens the configuration layers for path. Flags are not
// part of the output.
func runConfigShow(cmd *cobra.Command, args []string) error {
	abs, err := targetPath(args)
	if err != nil {
		return err
	}
	ls, err := prepare(cmd, abs)
	if err != nil {
		return err
	}
	var merged config.FileConfig
	// Lowest precedence first so higher layers overwrite.
	for i := len(ls) - 1; i >= 0; i-- {
		mergeInto(&merged, ls[i])
	}
	b, err := yaml.Marshal(&merged)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(b)
	return err
}

func mergeInto(dst *config.FileConfig, src config.FileConfig) {
	set(&dst.Mode, src.Mode)
	set(&dst.SkipDegenerate, src.SkipDegenerate)
	set(&dst.Include, src.Include)
	set(&dst.Exclude, src.Exclude)
	set(&dst.MaxBytes, src.MaxBytes)
	set(&dst.Threads, src.Threads)
	set(&dst.NoColor, src.NoColor)
	set(&dst.FailOn, src.FailOn)
	set(&dst.LogLevel, src.LogLevel)
	set(&dst.Archives, src.Archives)
	set(&dst.MaxArchiveBytes, src.MaxArchiveBytes)
	set(&dst.MaxEntries, src.MaxEntries)
	set(&dst.MaxDepth, src.MaxDepth)
	set(&dst.ScanTimeBudget, src.ScanTimeBudget)
}

func set[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
