package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/history"
	"github.com/fenilsonani/winsweep/internal/reporter"
	"github.com/fenilsonani/winsweep/internal/scanner"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past cleanups",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if !cfg.History.Enabled {
			fmt.Println("History is disabled in the config.")
		}

		path, err := cfg.HistoryPath()
		if err != nil {
			return err
		}
		store, err := history.NewStore(path)
		if err != nil {
			return err
		}

		records, err := store.List(limit)
		if err != nil {
			return err
		}
		totals, err := store.Totals()
		if err != nil {
			return err
		}

		reporter.WriteHistory(os.Stdout, records, totals)
		return nil
	},
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Manage custom folders swept by custom-sweep",
}

var pathsAddCmd = &cobra.Command{
	Use:   "add <dir>...",
	Short: "Add custom folders",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editConfig(func(cfg *config.Config) error {
			for _, arg := range args {
				abs, err := filepath.Abs(arg)
				if err != nil {
					return err
				}
				if info, err := os.Stat(abs); err != nil || !info.IsDir() {
					return fmt.Errorf("not a directory: %s", abs)
				}
				if err := cfg.AddCustomPath(abs); err != nil {
					return fmt.Errorf("cannot add %s: %w", abs, err)
				}
				fmt.Printf("Added %s\n", abs)
			}
			return nil
		})
	},
}

var pathsRemoveCmd = &cobra.Command{
	Use:     "remove <dir>...",
	Aliases: []string{"rm"},
	Short:   "Remove custom folders",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editConfig(func(cfg *config.Config) error {
			for _, arg := range args {
				path := arg
				if abs, err := filepath.Abs(arg); err == nil {
					path = abs
				}
				if cfg.RemoveCustomPath(path) || cfg.RemoveCustomPath(arg) {
					fmt.Printf("Removed %s\n", path)
				} else {
					fmt.Printf("Not configured: %s\n", arg)
				}
			}
			return nil
		})
	},
}

var pathsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List custom folders",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		listPaths(os.Stdout, cfg)
		return nil
	},
}

func listPaths(w io.Writer, cfg *config.Config) {
	if len(cfg.CustomPaths) == 0 {
		fmt.Fprintln(w, "No custom paths. Add one with 'winsweep paths add <dir>'.")
		return
	}
	for _, p := range cfg.CustomPaths {
		fmt.Fprintln(w, p)
	}
}

// editConfig loads the config, applies fn and saves it back.
func editConfig(fn func(cfg *config.Config) error) error {
	path, err := resolvedConfigPath()
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := fn(cfg); err != nil {
		return err
	}
	if err := config.Save(cfg, path); err != nil {
		return err
	}
	return nil
}

var (
	initConfig bool
	listModes  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display current configuration",
	Long:  `Shows which config file is used, and optionally writes the defaults to it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if listModes {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			printModes(os.Stdout, cfg)
			return nil
		}

		cfgPath, err := resolvedConfigPath()
		if err != nil {
			return err
		}

		if initConfig {
			if configPath == "" {
				cfgPath, err = config.EnsureConfigExists()
				if err != nil {
					return err
				}
			} else if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
				if err := config.Save(config.GetDefault(), cfgPath); err != nil {
					return err
				}
			}
		}

		fmt.Printf("Config file: %s\n", cfgPath)
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			fmt.Println("Config file does not exist. Using default configuration.")
			fmt.Println("\nTo create a config file:")
			fmt.Println("  winsweep config --init")
			return nil
		}

		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("config is invalid: %w", err)
		}
		fmt.Printf("Custom paths: %d\n", len(cfg.CustomPaths))
		fmt.Printf("History: %v\n", cfg.History.Enabled)
		if cfg.Daemon != nil {
			fmt.Printf("Daemon: enabled=%v, %d schedules\n", cfg.Daemon.Enabled, len(cfg.Daemon.Schedules))
		}
		return nil
	},
}

func printModes(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Modes:")
	for _, m := range scanner.Modes() {
		fmt.Fprintf(w, "  %s\n", m)
	}

	names := make([]string, 0, len(cfg.Presets))
	for n := range cfg.Presets {
		names = append(names, n)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "\nPresets:")
	for _, n := range names {
		fmt.Fprintf(w, "  %-12s %v\n", n, cfg.Presets[n])
	}
}

func init() {
	configCmd.Flags().BoolVar(&initConfig, "init", false, "write the default config if none exists")
	configCmd.Flags().BoolVar(&listModes, "modes", false, "list scan modes and presets")

	pathsCmd.AddCommand(pathsAddCmd)
	pathsCmd.AddCommand(pathsRemoveCmd)
	pathsCmd.AddCommand(pathsListCmd)
}
