package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/logging"
	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui/models"
)

var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// defaultPreset is scanned when neither --mode nor --preset is given.
const defaultPreset = "junk"

var (
	configPath string
	verbose    bool
	modeNames  []string
	preset     string
	outputFmt  string
	outputFile string
	detailed   bool
	plain      bool
	noSave     bool
	sessionID  string
	shred      bool
	dryRun     bool
	force      bool
	closeApps  bool
	limit      int
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "winsweep",
	Short: "Windows disk space reclaimer",
	Long: `winsweep finds reclaimable space on Windows: system junk, application
caches, chat account folders, old installers, large and duplicate files and
privacy traces. Scans never change anything; clean removes what you confirm.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose output")

	// Scan command flags
	addModeFlags(scanCmd)
	scanCmd.Flags().StringVar(&outputFmt, "output", "summary", "output format (summary, table, json, yaml)")
	scanCmd.Flags().BoolVar(&detailed, "detailed", false, "print every finding as a tree")
	scanCmd.Flags().BoolVar(&plain, "plain", false, "use a one-line progress display instead of the full view")
	scanCmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the scan for a later clean")

	// Clean command flags
	addModeFlags(cleanCmd)
	cleanCmd.Flags().StringVar(&sessionID, "session", "", "clean a saved scan by ID or prefix, or \"latest\"")
	cleanCmd.Flags().BoolVar(&shred, "shred", false, "overwrite the first clean.shred_bytes of each file before deleting (best effort, not a secure erase)")
	cleanCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be deleted without actually deleting")
	cleanCmd.Flags().BoolVar(&force, "force", false, "skip confirmation prompts")
	cleanCmd.Flags().BoolVar(&closeApps, "close-apps", false, "close chat clients before wiping their folders")
	cleanCmd.Flags().BoolVar(&plain, "plain", false, "use prompts instead of the interactive view")

	// Report command flags
	addModeFlags(reportCmd)
	reportCmd.Flags().StringVar(&outputFmt, "output", "summary", "output format (summary, table, json, yaml)")
	reportCmd.Flags().StringVar(&outputFile, "file", "", "save report to file")

	// History command flags
	historyCmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show (0 for all)")

	// Add commands
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(daemonCmd)
}

func addModeFlags(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&modeNames, "mode", nil, "scan mode, repeatable (see 'winsweep config --modes')")
	cmd.Flags().StringVar(&preset, "preset", "", "named mode list from the config file")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.Load(configPath)
	}

	cfgPath, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}

	return config.Load(cfgPath)
}

// resolvedConfigPath is where config edits are written.
func resolvedConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.GetConfigPath()
}

// setup loads the config and builds what every command needs. Callers
// close the returned logger.
func setup() (models.Deps, error) {
	cfg, err := loadConfig()
	if err != nil {
		return models.Deps{}, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.NewLogger(cfg.Log.File, logLevel(cfg))
	if err != nil {
		return models.Deps{}, err
	}

	return models.Deps{
		Config: cfg,
		Env:    platform.FromEnvironment().Merge(cfg.Paths),
		Sys:    platform.Native(),
		Logger: logger,
	}, nil
}

// logLevel keeps stderr quiet unless asked: progress output shares it.
func logLevel(cfg *config.Config) string {
	switch {
	case verbose:
		return "debug"
	case cfg.Log.File == "":
		return "warn"
	}
	return cfg.Log.Level
}

// resolveModes combines --preset and --mode. With neither, the default
// preset is used. Duplicates keep their first position.
func resolveModes(cfg *config.Config, presetName string, names []string) ([]scanner.Mode, error) {
	var all []string
	if presetName != "" {
		p, err := cfg.ResolveModes(presetName)
		if err != nil {
			return nil, err
		}
		all = append(all, p...)
	}
	all = append(all, names...)

	if len(all) == 0 {
		p, err := cfg.ResolveModes(defaultPreset)
		if err != nil {
			return nil, fmt.Errorf("no modes given and %w", err)
		}
		all = p
	}

	modes, err := scanner.ParseModes(all)
	if err != nil {
		return nil, err
	}

	seen := make(map[scanner.Mode]bool, len(modes))
	out := modes[:0]
	for _, m := range modes {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	return out, nil
}

// modeLabel names a run in history: the preset alone, else the modes.
func modeLabel(presetName string, names []string, modes []scanner.Mode) string {
	if presetName != "" && len(names) == 0 {
		return presetName
	}
	parts := make([]string, len(modes))
	for i, m := range modes {
		parts[i] = string(m)
	}
	return strings.Join(parts, ",")
}
