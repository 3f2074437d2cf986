package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/winsweep/internal/cleaner"
	"github.com/fenilsonani/winsweep/internal/history"
	"github.com/fenilsonani/winsweep/internal/procs"
	"github.com/fenilsonani/winsweep/internal/reporter"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui"
	"github.com/fenilsonani/winsweep/internal/ui/models"
	"github.com/fenilsonani/winsweep/pkg/utils"
)

// closeGrace is how long a chat client gets to exit before it is killed.
const closeGrace = 5 * time.Second

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove reclaimable files",
	Long: `Scans the selected modes and removes what you confirm. On a terminal an
interactive view lets you pick categories and items; with --force or
--plain the whole scan is cleaned after a single prompt. --session cleans
a saved scan instead of scanning again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := setup()
		if err != nil {
			return err
		}
		defer deps.Logger.Close()

		ctx := cmd.Context()
		opts := cleaner.Options{
			Shred:  shred,
			DryRun: dryRun || deps.Config.Clean.DryRun,
		}

		if sessionID != "" {
			return cleanSession(ctx, deps, sessionID, opts)
		}

		modes, err := resolveModes(deps.Config, preset, modeNames)
		if err != nil {
			return err
		}
		label := modeLabel(preset, modeNames, modes)

		if !plain && !force && ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout) {
			if closeApps && !opts.DryRun {
				closeRunningApps(ctx, deps, modes)
			}
			result, _, err := ui.RunInteractive(ctx, deps, modes, opts)
			if err != nil {
				return err
			}
			if result == nil {
				return nil
			}
			reporter.WriteCleanResult(os.Stdout, result)
			recordHistory(deps, label, result)
			return nil
		}

		findings, err := scanFindings(ctx, deps, modes, false)
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("scan interrupted: %w", ctx.Err())
		}
		return cleanFindings(ctx, deps, label, modes, findings, opts)
	},
}

// cleanSession cleans the findings of a saved scan. "latest" picks the
// newest one.
func cleanSession(ctx context.Context, deps models.Deps, id string, opts cleaner.Options) error {
	store, err := openSessions()
	if err != nil {
		return err
	}

	var sess *history.Session
	if strings.EqualFold(id, "latest") {
		sess, err = store.Latest()
	} else {
		sess, err = store.Load(id)
	}
	if err != nil {
		return fmt.Errorf("failed to load saved scan: %w", err)
	}

	modes, err := scanner.ParseModes(sess.Modes)
	if err != nil {
		return fmt.Errorf("saved scan %s: %w", shortID(sess.ID), err)
	}

	fmt.Printf("Using scan %s from %s\n", shortID(sess.ID), sess.CreatedAt.Format("2006-01-02 15:04"))
	return cleanFindings(ctx, deps, strings.Join(sess.Modes, ","), modes, sess.Findings, opts)
}

// cleanFindings shows what will go, asks once unless --force or a dry run,
// then cleans and records the run.
func cleanFindings(ctx context.Context, deps models.Deps, label string, modes []scanner.Mode, findings []scanner.Finding, opts cleaner.Options) error {
	if len(findings) == 0 {
		fmt.Println("\nNothing to clean.")
		return nil
	}

	if err := reporter.New(os.Stdout, reporter.FormatSummary).Report(findings); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	clnr := cleaner.New(deps.Config, deps.Env, deps.Sys, deps.Logger)

	perm := clnr.GetPermissionReport(findings)
	if n := len(perm.RequiresElevation); n > 0 {
		fmt.Printf("\n%d items (%s) need administrator rights and will be skipped.\n",
			n, utils.FormatBytes(perm.TotalElevatedSize))
	}

	if opts.DryRun {
		fmt.Println("\n[DRY RUN MODE] No files will be deleted.")
	} else if !force {
		prompt := "\nProceed with cleanup? (y/N): "
		if opts.Shred {
			prompt = "\n" + cleaner.ShredNotice(deps.Config.Clean.ShredBytes.Int64()) + " Proceed? (y/N): "
		}
		if !confirm(os.Stdin, os.Stdout, prompt) {
			fmt.Println("Cleanup cancelled")
			return nil
		}
	}

	if closeApps && !opts.DryRun {
		closeRunningApps(ctx, deps, modes)
	}

	if !opts.DryRun {
		fmt.Println("\nCleaning...")
	}

	pr := clnr.GetProgressReporter()
	updates := pr.Subscribe()
	followed := make(chan struct{})
	go func() {
		defer close(followed)
		ui.NewLiveProgress(os.Stderr).FollowClean(updates)
	}()

	result := clnr.CleanAll(ctx, findings, opts)
	pr.Unsubscribe(updates)
	<-followed

	reporter.WriteCleanResult(os.Stdout, result)
	recordHistory(deps, label, result)

	if ctx.Err() != nil {
		return fmt.Errorf("cleanup interrupted: %w", ctx.Err())
	}
	return nil
}

// confirm prints prompt and reports whether the answer was yes.
func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// closeRunningApps stops the configured chat clients when modes may wipe
// folders they hold open.
func closeRunningApps(ctx context.Context, deps models.Deps, modes []scanner.Mode) {
	if !touchesAccounts(modes) {
		return
	}

	var names []string
	for _, a := range deps.Config.Accounts {
		names = append(names, a.Processes...)
	}
	if len(names) == 0 {
		return
	}

	stopped, err := procs.New(deps.Logger).Close(ctx, names, closeGrace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	for _, p := range stopped {
		fmt.Printf("Closed %s (pid %d)\n", p.Name, p.PID)
	}
}

func touchesAccounts(modes []scanner.Mode) bool {
	for _, m := range modes {
		if m == scanner.ModeAccounts || m == scanner.ModePrivacy {
			return true
		}
	}
	return false
}

// recordHistory appends a finished run to the history log. Dry runs and
// disabled history are not recorded.
func recordHistory(deps models.Deps, label string, result *cleaner.BatchResult) {
	if result == nil || result.DryRun || !deps.Config.History.Enabled {
		return
	}

	path, err := deps.Config.HistoryPath()
	if err != nil {
		deps.Logger.Warn("history path: %v", err)
		return
	}
	store, err := history.NewStore(path)
	if err != nil {
		deps.Logger.Warn("open history: %v", err)
		return
	}

	rec := history.Record{
		Mode:       label,
		BytesFreed: result.BytesFreed,
		ItemCount:  result.Succeeded,
		Errors:     result.Errors,
		Shredded:   result.Shredded,
	}
	if _, err := store.Append(rec); err != nil {
		deps.Logger.Warn("record history: %v", err)
	}
}
