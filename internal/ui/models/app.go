package models

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/winsweep/internal/cleaner"
	"github.com/fenilsonani/winsweep/internal/config"
	"github.com/fenilsonani/winsweep/internal/logging"
	"github.com/fenilsonani/winsweep/internal/platform"
	"github.com/fenilsonani/winsweep/internal/scanner"
	"github.com/fenilsonani/winsweep/internal/ui/styles"
)

// ViewState represents the current view in the app
type ViewState int

const (
	ViewScanning ViewState = iota
	ViewCategorySelection
	ViewFileBrowser
	ViewConfirmation
	ViewCleaning
	ViewSummary
	ViewHelp
)

// Deps are the collaborators the interactive flow scans and cleans with.
type Deps struct {
	Config *config.Config
	Env    *platform.Env
	Sys    platform.System
	Logger *logging.Logger
}

// AppModel is the root model for the interactive TUI
type AppModel struct {
	state         ViewState
	previousState ViewState

	ctx      context.Context
	cancel   context.CancelFunc
	deps     Deps
	modes    []scanner.Mode
	opts     cleaner.Options
	findings []scanner.Finding
	selected []scanner.Finding
	result   *cleaner.BatchResult

	scanView     *ScanViewModel
	categoryView *CategoryViewModel
	browserView  *BrowserViewModel
	confirmView  *ConfirmViewModel
	cleanupView  *CleanupViewModel
	summaryView  *SummaryViewModel

	width  int
	height int
}

// NewAppModel creates the interactive flow for the given scan modes.
func NewAppModel(ctx context.Context, deps Deps, modes []scanner.Mode, opts cleaner.Options) *AppModel {
	if deps.Logger == nil {
		deps.Logger = logging.Discard()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &AppModel{
		state:  ViewScanning,
		ctx:    ctx,
		cancel: cancel,
		deps:   deps,
		modes:  modes,
		opts:   opts,
	}
}

// Result returns the clean result, or nil when the user left before cleaning.
func (m *AppModel) Result() *cleaner.BatchResult {
	return m.result
}

// Findings returns everything the scan found.
func (m *AppModel) Findings() []scanner.Finding {
	return m.findings
}

// State returns the active view.
func (m *AppModel) State() ViewState {
	return m.state
}

// Init starts the scan.
func (m *AppModel) Init() tea.Cmd {
	sc := scanner.New(m.deps.Config, m.deps.Env, m.deps.Sys, m.deps.Logger)
	m.scanView = NewScanViewModel(sc.ScanModes(m.ctx, m.modes), m.width, m.height)
	return m.scanView.Init()
}

func (m *AppModel) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

// Update handles messages
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == ViewHelp {
			m.state = m.previousState
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c":
			// The clean stops at the next target; the summary still shows.
			if m.state == ViewCleaning {
				m.cancel()
				return m, nil
			}
			return m.quit()
		case "q":
			if m.state != ViewCleaning {
				return m.quit()
			}
		case "?":
			if m.state != ViewCleaning {
				m.previousState = m.state
				m.state = ViewHelp
				return m, nil
			}
		case "esc":
			if m.browserView != nil && m.browserView.InfoVisible() {
				break
			}
			switch m.state {
			case ViewFileBrowser:
				m.state = ViewCategorySelection
				return m, nil
			case ViewConfirmation:
				m.state = ViewFileBrowser
				return m, nil
			}
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ScanCompleteMsg:
		m.findings = msg.Findings
		m.categoryView = NewCategoryViewModel(m.findings, m.width, m.height)
		m.state = ViewCategorySelection
		return m, nil

	case CategoriesSelectedMsg:
		m.browserView = NewBrowserViewModel(m.findings, msg.Categories, m.width, m.height)
		m.state = ViewFileBrowser
		return m, nil

	case FindingsSelectedMsg:
		m.selected = msg.Findings
		clnr := cleaner.New(m.deps.Config, m.deps.Env, m.deps.Sys, m.deps.Logger)
		report := clnr.GetPermissionReport(m.selected)
		m.confirmView = NewConfirmViewModel(m.selected, len(report.RequiresElevation), m.opts, m.width, m.height)
		m.confirmView.SetShredBytes(m.deps.Config.Clean.ShredBytes.Int64())
		m.state = ViewConfirmation
		return m, nil

	case ReviewSelectionMsg:
		m.state = ViewFileBrowser
		return m, nil

	case CancelledMsg:
		return m.quit()

	case ConfirmedMsg:
		clnr := cleaner.New(m.deps.Config, m.deps.Env, m.deps.Sys, m.deps.Logger)
		m.cleanupView = NewCleanupViewModel(m.ctx, clnr, m.selected, m.opts)
		m.state = ViewCleaning
		return m, m.cleanupView.Init()

	case CleanupCompleteMsg:
		if m.cleanupView != nil {
			m.cleanupView.Close()
		}
		m.result = msg.Result
		m.summaryView = NewSummaryViewModel(msg.Result)
		m.state = ViewSummary
		return m, nil
	}

	return m.delegateUpdate(msg)
}

// delegateUpdate delegates the update to the current view
func (m *AppModel) delegateUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case ViewScanning:
		if m.scanView != nil {
			m.scanView, cmd = m.scanView.Update(msg)
		}
	case ViewCategorySelection:
		if m.categoryView != nil {
			m.categoryView, cmd = m.categoryView.Update(msg)
		}
	case ViewFileBrowser:
		if m.browserView != nil {
			m.browserView, cmd = m.browserView.Update(msg)
		}
	case ViewConfirmation:
		if m.confirmView != nil {
			m.confirmView, cmd = m.confirmView.Update(msg)
		}
	case ViewCleaning:
		if m.cleanupView != nil {
			m.cleanupView, cmd = m.cleanupView.Update(msg)
		}
	case ViewSummary:
		if m.summaryView != nil {
			m.summaryView, cmd = m.summaryView.Update(msg)
		}
	}

	return m, cmd
}

// View renders the current view
func (m *AppModel) View() string {
	switch m.state {
	case ViewScanning:
		if m.scanView != nil {
			return m.scanView.View()
		}
	case ViewCategorySelection:
		if m.categoryView != nil {
			return m.categoryView.View()
		}
	case ViewFileBrowser:
		if m.browserView != nil {
			return m.browserView.View()
		}
	case ViewConfirmation:
		if m.confirmView != nil {
			return m.confirmView.View()
		}
	case ViewCleaning:
		if m.cleanupView != nil {
			return m.cleanupView.View()
		}
	case ViewSummary:
		if m.summaryView != nil {
			return m.summaryView.View()
		}
	case ViewHelp:
		return m.renderHelp()
	}

	return "Loading..."
}

func (m *AppModel) renderHelp() string {
	var b strings.Builder

	viewName, content := "General", helpGeneral
	switch m.previousState {
	case ViewScanning:
		viewName, content = "Scan", helpScan
	case ViewCategorySelection:
		viewName, content = "Category Selection", helpCategory
	case ViewFileBrowser:
		viewName, content = "Findings", helpBrowser
	case ViewConfirmation:
		viewName, content = "Confirmation", helpConfirm
	case ViewSummary:
		viewName, content = "Summary", helpSummary
	}

	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Help - %s", viewName)))
	b.WriteString("\n\n")
	b.WriteString(content)
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("Press any key to close"))
	return b.String()
}

const helpScan = `Scanning for reclaimable space.

  ctrl+c, q   Cancel the scan and exit

Category selection opens when the scan finishes.`

const helpCategory = `Choose the categories to review.

  up/k, down/j   Move
  g, G           Top, bottom
  space          Toggle category
  x              Toggle and move down
  ctrl+a         Select all
  ctrl+d         Deselect all
  enter          Review findings
  q              Quit

Privacy and chat account data start unselected.`

const helpBrowser = `Pick the individual findings to remove.

  up/k, down/j   Move
  pgup, pgdown   Page
  space          Toggle finding
  ctrl+a         Select all
  ctrl+d         Deselect all
  i              Details for the finding under the cursor
  enter          Confirm
  esc            Back to categories

The copy marked "keep" in each duplicate group starts unselected.`

const helpConfirm = `Review what will be removed.

  left/h, right/l   Switch buttons
  y                 Proceed
  e                 Edit the selection
  n                 Cancel and exit
  esc               Back

Deleted data cannot be recovered. Shred only overwrites the start of each
file on a best-effort basis and is not a secure erase.`

const helpSummary = `The clean has finished.

  enter, q   Exit`

const helpGeneral = `winsweep interactive mode

  ?        Context help
  esc      Back
  q        Quit
  ctrl+c   Quit, or stop a running clean`

// ScanCompleteMsg carries the findings of a finished scan.
type ScanCompleteMsg struct {
	Findings []scanner.Finding
}

// CategoriesSelectedMsg moves from category selection to the finding list.
type CategoriesSelectedMsg struct {
	Categories []string
}

// FindingsSelectedMsg moves from the finding list to confirmation.
type FindingsSelectedMsg struct {
	Findings []scanner.Finding
}

type ConfirmedMsg struct{}

type ReviewSelectionMsg struct{}

type CancelledMsg struct{}

// CleanupCompleteMsg carries the finished batch.
type CleanupCompleteMsg struct {
	Result *cleaner.BatchResult
}
