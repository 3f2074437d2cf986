package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/daemon"
	"github.com/fenilsonani/winsweep/internal/logging"
	"github.com/fenilsonani/winsweep/internal/reporter"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run scheduled sweeps",
	Long: `Runs the sweeps listed under daemon.schedules in the config file on their
cron schedules. Only one daemon runs at a time.`,
}

var daemonRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, logger, err := newDaemon()
		if err != nil {
			return err
		}
		defer logger.Close()

		if err := d.Start(); err != nil {
			if errors.Is(err, daemon.ErrAlreadyRunning) {
				return fmt.Errorf("daemon is already running")
			}
			return err
		}
		return nil
	},
}

var daemonListCmd = &cobra.Command{
	Use:   "list",
	Short: "List schedules and their next run",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return listSchedules(os.Stdout, cfg, time.Now())
	},
}

var daemonTriggerCmd = &cobra.Command{
	Use:   "trigger <schedule>",
	Short: "Run one schedule now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, logger, err := newDaemon()
		if err != nil {
			return err
		}
		defer logger.Close()

		cfg := d.Config()
		var job *daemon.Job
		for _, sch := range cfg.Daemon.Schedules {
			if sch.Name == args[0] {
				if job, err = daemon.ResolveJob(cfg, sch); err != nil {
					return err
				}
				break
			}
		}
		if job == nil {
			return fmt.Errorf("schedule %s not found", args[0])
		}

		result, err := d.RunJob(cmd.Context(), job)
		if result != nil {
			reporter.WriteCleanResult(os.Stdout, result)
		}
		return err
	},
}

var daemonCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the daemon configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := checkDaemonConfig(cfg); err != nil {
			return err
		}

		fmt.Println("Configuration is valid")
		fmt.Printf("Daemon enabled: %v\n", cfg.Daemon.Enabled)
		return listSchedules(os.Stdout, cfg, time.Now())
	},
}

// newDaemon builds a daemon logging to daemon.log_file when set.
func newDaemon() (*daemon.Daemon, *logging.Logger, error) {
	deps, err := setup()
	if err != nil {
		return nil, nil, err
	}
	if err := checkDaemonConfig(deps.Config); err != nil {
		deps.Logger.Close()
		return nil, nil, err
	}

	logger := deps.Logger
	if dc := deps.Config.Daemon; dc.LogFile != "" {
		l, err := logging.NewLogger(dc.LogFile, dc.LogLevel)
		if err != nil {
			deps.Logger.Close()
			return nil, nil, err
		}
		deps.Logger.Close()
		logger = l
	}

	d, err := daemon.New(deps.Config, deps.Env, deps.Sys, logger)
	if err != nil {
		logger.Close()
		return nil, nil, err
	}
	return d, logger, nil
}

func checkDaemonConfig(cfg *config.Config) error {
	if cfg.Daemon == nil || !cfg.Daemon.Enabled {
		return fmt.Errorf(`daemon not enabled in configuration; add to your config file:
daemon:
  enabled: true
  schedules:
    - name: weekly-junk
      schedule: "0 3 * * 0"
      preset: junk`)
	}
	if len(cfg.Daemon.Schedules) == 0 {
		return fmt.Errorf("no schedules configured, add at least one under daemon.schedules")
	}
	return nil
}

// listSchedules prints each schedule with its modes and next run. A
// schedule that does not resolve fails the listing.
func listSchedules(w io.Writer, cfg *config.Config, now time.Time) error {
	if cfg.Daemon == nil || len(cfg.Daemon.Schedules) == 0 {
		fmt.Fprintln(w, "No schedules configured.")
		return nil
	}

	fmt.Fprintf(w, "%-16s | %-14s | %-40s | %s\n", "Name", "Schedule", "Modes", "Next run")
	for _, sch := range cfg.Daemon.Schedules {
		job, err := daemon.ResolveJob(cfg, sch)
		if err != nil {
			return err
		}
		next, err := daemon.NextRun(sch.Schedule, now)
		if err != nil {
			return fmt.Errorf("schedule %s: %w", sch.Name, err)
		}

		modes := job.ModeLabel()
		if job.DryRun {
			modes += " (dry run)"
		}
		fmt.Fprintf(w, "%-16s | %-14s | %-40s | %s\n",
			sch.Name, sch.Schedule, modes, next.Format("2006-01-02 15:04"))
	}
	return nil
}

func init() {
	daemonCmd.AddCommand(daemonRunCmd)
	daemonCmd.AddCommand(daemonListCmd)
	daemonCmd.AddCommand(daemonTriggerCmd)
	daemonCmd.AddCommand(daemonCheckCmd)
}
