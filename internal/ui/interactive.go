package ui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/winsweep/internal/cleaner"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui/models"
)

// RunInteractive scans the given modes and walks the user through choosing
// and cleaning findings. It returns the scan findings and the clean result,
// which is nil when the user left before cleaning.
func RunInteractive(ctx context.Context, deps models.Deps, modes []scanner.Mode, opts cleaner.Options) (*cleaner.BatchResult, []scanner.Finding, error) {
	m := models.NewAppModel(ctx, deps, modes, opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return nil, nil, fmt.Errorf("error running interactive mode: %w", err)
	}

	app, ok := final.(*models.AppModel)
	if !ok || app == nil {
		return nil, m.Findings(), nil
	}
	return app.Result(), app.Findings(), nil
}
