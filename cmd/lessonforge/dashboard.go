package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"lessonforge/internal/loader"
	"lessonforge/internal/manifest"
)

// dashboardCmd runs a live view of the loader while it preloads every group.
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Watch the preload schedule and cache fill live",
	Long: `Starts the loader, kicks off a preload for every group in the manifest,
and shows cache fill and per-group preload status as the priority tiers fire.
When a manifest file is given it is hot-reloaded on change. Press q to quit.`,
	RunE: runDashboard,
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

var (
	dashTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dashStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	dashDoneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	dashHelpStyle   = lipgloss.NewStyle().Faint(true)
)

type dashboardModel struct {
	svc   *loader.Service
	table table.Model
	stats loader.Stats
}

func newDashboardModel(svc *loader.Service) dashboardModel {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Group", Width: 22},
			{Title: "Range", Width: 12},
			{Title: "Priority", Width: 10},
			{Title: "Status", Width: 12},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	return dashboardModel{svc: svc, table: t}
}

func (m dashboardModel) Init() tea.Cmd {
	return tick()
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case tickMsg:
		m.stats = m.svc.Stats()
		rows := make([]table.Row, 0)
		for _, g := range m.svc.Groups() {
			status := "pending"
			if m.svc.Preloaded(g.Name) {
				status = dashDoneStyle.Render("preloaded")
			}
			rows = append(rows, table.Row{
				g.Name,
				fmt.Sprintf("[%d,%d]", g.Lo, g.Hi),
				g.Priority.String(),
				status,
			})
		}
		m.table.SetRows(rows)
		return m, tick()
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m dashboardModel) View() string {
	return dashTitleStyle.Render("lessonforge loader") + "\n\n" +
		m.table.View() + "\n\n" +
		dashStatusStyle.Render(m.stats.String()) + "\n" +
		dashHelpStyle.Render("q: quit")
}

func runDashboard(cmd *cobra.Command, args []string) error {
	m, err := loadManifest()
	if err != nil {
		return err
	}
	svc, err := buildService(m)
	if err != nil {
		return err
	}
	defer svc.Close()

	// Hot reload only makes sense when the manifest lives on disk.
	if manifestPath != "" {
		watcher, err := manifest.NewWatcher(manifestPath, logger, func(reloaded *manifest.Manifest) {
			svc.Swap(reloaded.Catalog(), reloaded.Registry())
		})
		if err != nil {
			return fmt.Errorf("failed to watch manifest: %w", err)
		}
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("failed to watch manifest: %w", err)
		}
		defer watcher.Stop()
	}

	for _, g := range svc.Groups() {
		svc.PreloadGroup(context.Background(), g.Name)
	}

	program := tea.NewProgram(newDashboardModel(svc))
	_, err = program.Run()
	return err
}
