// Package tui provides an interactive browser over build records.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"versioning-backend/src/contracts"
	"versioning-backend/src/render"
)

// statusFilters is the cycle order of the "s" key. Empty means all.
var statusFilters = []contracts.BuildStatus{"", contracts.StatusStarted, contracts.StatusFailed, contracts.StatusPublished}

// Model is the Bubble Tea model for the build browser: a filterable
// build list on the left and the selected build's detail on the right.
type Model struct {
	builds        []contracts.CiBuild
	list          list.Model
	detail        viewport.Model
	palette       render.Palette
	filter        contracts.BuildStatus
	detailFocused bool
	width         int
	height        int
	ready         bool
}

// NewModel creates a browser over builds.
func NewModel(builds []contracts.CiBuild) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)

	m := Model{
		builds:  builds,
		list:    l,
		detail:  viewport.New(0, 0),
		palette: render.DefaultPalette(),
	}
	m.applyFilter()
	return m
}

// Start runs the browser until the user quits.
func Start(builds []contracts.CiBuild) error {
	_, err := tea.NewProgram(NewModel(builds), tea.WithAltScreen()).Run()
	return err
}

// Init initializes the model. Required by tea.Model interface.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tea.KeyMsg:
		// While typing a search query every key belongs to the list
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab", "enter":
			m.detailFocused = !m.detailFocused
			return m, nil
		case "esc":
			if m.detailFocused {
				m.detailFocused = false
				return m, nil
			}
		case "s":
			m.cycleFilter()
			return m, nil
		}

		if m.detailFocused {
			var cmd tea.Cmd
			m.detail, cmd = m.detail.Update(msg)
			return m, cmd
		}
	}

	previous := m.selectedID()
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if m.selectedID() != previous {
		m.refreshDetail()
	}
	return m, cmd
}

// View renders the two-panel layout.
func (m Model) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := lipgloss.NewStyle().Foreground(m.palette.Header).Bold(true).Render(fmt.Sprintf("Builds • filter: %s • %d shown", m.filterLabel(), len(m.list.Items())))

	border := lipgloss.NewStyle().Border(lipgloss.RoundedBorder())
	listBorder, detailBorder := border, border
	if m.detailFocused {
		detailBorder = detailBorder.BorderForeground(m.palette.Header)
	} else {
		listBorder = listBorder.BorderForeground(m.palette.Header)
	}

	var listView string
	if len(m.list.Items()) == 0 {
		listView = lipgloss.NewStyle().Width(m.list.Width()).Height(m.list.Height()).Render("No builds match the filter.")
	} else {
		listView = m.list.View()
	}

	panels := lipgloss.JoinHorizontal(lipgloss.Top,
		listBorder.Render(listView),
		detailBorder.Render(m.detail.View()),
	)

	help := lipgloss.NewStyle().Foreground(m.palette.Secondary).Render("j/k: Nav • /: Search • s: Status filter • Tab: Detail • q: Quit")
	return lipgloss.JoinVertical(lipgloss.Left, header, panels, help)
}

func (m *Model) cycleFilter() {
	for i, status := range statusFilters {
		if status == m.filter {
			m.filter = statusFilters[(i+1)%len(statusFilters)]
			break
		}
	}
	m.applyFilter()
}

func (m *Model) applyFilter() {
	var items []list.Item
	for _, build := range m.builds {
		if m.filter == "" || build.Status == m.filter {
			items = append(items, Item{Build: build})
		}
	}
	m.list.SetItems(items)
	m.list.ResetSelected()
	m.refreshDetail()
}

func (m Model) filterLabel() string {
	if m.filter == "" {
		return "all"
	}
	return string(m.filter)
}

func (m Model) selectedID() string {
	if item, ok := m.list.SelectedItem().(Item); ok {
		return item.Build.BuildID
	}
	return ""
}

func (m *Model) refreshDetail() {
	item, ok := m.list.SelectedItem().(Item)
	if !ok {
		m.detail.SetContent("")
		return
	}
	m.detail.SetContent(render.Detail(item.Build, m.palette))
	m.detail.GotoTop()
}

// resize splits the terminal 40/60 between list and detail. Two lines go
// to the header and help, two more to each panel's border.
func (m *Model) resize() {
	panelHeight := max(m.height-4, 3)
	listWidth := int(float64(m.width) * 0.4)
	detailWidth := m.width - listWidth

	m.list.SetSize(max(listWidth-2, 10), panelHeight)
	m.detail.Width = max(detailWidth-2, 10)
	m.detail.Height = panelHeight
	m.refreshDetail()
}
