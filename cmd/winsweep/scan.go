package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/history"
	"github.com/fenilsonani/winsweep/internal/reporter"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui"
	"github.com/fenilsonani/winsweep/internal/ui/models"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for reclaimable space",
	Long: `Scans the selected modes and reports what can be cleaned without making
any changes. The findings are saved so 'winsweep clean --session latest'
can act on exactly this list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := setup()
		if err != nil {
			return err
		}
		defer deps.Logger.Close()

		modes, err := resolveModes(deps.Config, preset, modeNames)
		if err != nil {
			return err
		}
		format, err := reporter.ParseFormat(outputFmt)
		if err != nil {
			return err
		}

		findings, err := scanFindings(cmd.Context(), deps, modes, !plain)
		if err != nil {
			return err
		}
		if cmd.Context().Err() != nil {
			fmt.Fprintln(os.Stderr, "Scan interrupted, showing partial results.")
		}

		if detailed {
			ui.PrintTree(os.Stdout, findings, 0)
		} else if err := reporter.New(os.Stdout, format).Report(findings); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}

		if noSave || len(findings) == 0 {
			return nil
		}
		sess, err := saveSession(modes, findings)
		if err != nil {
			deps.Logger.Warn("could not save scan: %v", err)
			return nil
		}
		fmt.Fprintf(os.Stderr, "\nSaved scan %s. Run 'winsweep clean --session latest' to remove it.\n", shortID(sess.ID))
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a detailed report",
	Long:  `Scans the selected modes and writes a report to stdout or a file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, err := setup()
		if err != nil {
			return err
		}
		defer deps.Logger.Close()

		modes, err := resolveModes(deps.Config, preset, modeNames)
		if err != nil {
			return err
		}
		format, err := reporter.ParseFormat(outputFmt)
		if err != nil {
			return err
		}

		// stdout may be the report itself, so progress stays plain.
		findings, err := scanFindings(cmd.Context(), deps, modes, false)
		if err != nil {
			return err
		}

		if outputFile != "" {
			if err := reporter.SaveToFile(findings, outputFile, format); err != nil {
				return fmt.Errorf("failed to save report: %w", err)
			}
			fmt.Printf("Report saved to: %s\n", outputFile)
			return nil
		}

		if err := reporter.New(os.Stdout, format).Report(findings); err != nil {
			return fmt.Errorf("failed to generate report: %w", err)
		}
		return nil
	},
}

// scanFindings runs modes and returns what they found. Progress goes to
// stderr: the full view when live is set and stderr is a terminal,
// otherwise the one-line printer.
func scanFindings(ctx context.Context, deps models.Deps, modes []scanner.Mode, live bool) ([]scanner.Finding, error) {
	if d := deps.Config.Scan.Deadline; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	deps.Logger.Debug("scanning modes: %v", modes)
	sc := scanner.New(deps.Config, deps.Env, deps.Sys, deps.Logger)
	events := sc.ScanModes(ctx, modes)

	if live && ui.IsTerminal(os.Stderr) && ui.IsTerminal(os.Stdin) {
		return ui.RunScan(ctx, events, os.Stdin, os.Stderr)
	}
	return ui.NewLiveProgress(os.Stderr).Watch(events), nil
}

func openSessions() (*history.SessionStore, error) {
	dir, err := config.SessionsDir()
	if err != nil {
		return nil, err
	}
	return history.NewSessionStore(dir)
}

// keepSessions bounds how many saved scans stay on disk.
const keepSessions = 10

func saveSession(modes []scanner.Mode, findings []scanner.Finding) (*history.Session, error) {
	store, err := openSessions()
	if err != nil {
		return nil, err
	}
	sess, err := store.Save(modes, findings)
	if err != nil {
		return nil, err
	}
	if _, err := store.Prune(keepSessions); err != nil {
		return sess, err
	}
	return sess, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
