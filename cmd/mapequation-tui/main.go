// Command mapequation-tui is an interactive terminal viewer for map equation
// runs on one graph. Type a strategy, press enter to run it, and browse the
// resulting communities.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dd0wney/cluso-mapequation/pkg/algorithms"
	"github.com/dd0wney/cluso-mapequation/pkg/algorithms/mapequation"
	"github.com/dd0wney/cluso-mapequation/pkg/graph"
	"github.com/dd0wney/cluso-mapequation/pkg/metrics"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	graphView view = iota
	runsView
	communitiesView
	viewCount
)

var viewNames = []string{"Graph", "Runs", "Communities"}

type keyMap struct {
	Tab          key.Binding
	ShiftTab     key.Binding
	Enter        key.Binding
	Hierarchical key.Binding
	Quit         key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "run strategy"),
	),
	Hierarchical: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "toggle hierarchy"),
	),
	Quit: key.NewBinding(
		key.WithKeys("esc", "ctrl+c"),
		key.WithHelp("esc", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Hierarchical, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab},
		{k.Enter, k.Hierarchical},
		{k.Quit},
	}
}

// runFinishedMsg carries the outcome of one optimizer run
type runFinishedMsg struct {
	name         string
	hierarchical bool
	result       *algorithms.CommunityDetectionResult
	stats        mapequation.RunStats
	duration     time.Duration
	err          error
}

type model struct {
	graph        *graph.Graph
	registry     *metrics.Registry
	workers      int
	hierarchical bool

	currentView    view
	strategyInput  textinput.Model
	runTable       table.Model
	communityTable table.Model
	spinner        spinner.Model
	help           help.Model
	keys           keyMap
	width          int
	clustering     float64

	running        bool
	runs           int
	lastCodelength float64
	message        string
	messageErr     bool
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	t.SetStyles(s)
	return t
}

func initialModel(g *graph.Graph, workers int) model {
	ti := textinput.New()
	ti.Placeholder = strings.Join(mapequation.StrategyNames, " | ")
	ti.CharLimit = 32
	ti.Width = 40
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		graph:         g,
		clustering:    algorithms.AverageClusteringCoefficient(g),
		registry:      metrics.NewRegistry(),
		workers:       workers,
		strategyInput: ti,
		runTable: newTable([]table.Column{
			{Title: "#", Width: 4},
			{Title: "Strategy", Width: 12},
			{Title: "Hier.", Width: 6},
			{Title: "Clusters", Width: 9},
			{Title: "Levels", Width: 7},
			{Title: "Codelength", Width: 11},
			{Title: "Modularity", Width: 11},
			{Title: "Time", Width: 12},
		}),
		communityTable: newTable([]table.Column{
			{Title: "ID", Width: 6},
			{Title: "Size", Width: 8},
			{Title: "Volume", Width: 10},
			{Title: "Cut", Width: 10},
			{Title: "Density", Width: 9},
			{Title: "Members", Width: 40},
		}),
		spinner: sp,
		help:    help.New(),
		keys:    keys,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// runCmd runs the optimizer off the UI goroutine
func (m model) runCmd(token string) tea.Cmd {
	g, registry, workers, hierarchical := m.graph, m.registry, m.workers, m.hierarchical
	return func() tea.Msg {
		msg := runFinishedMsg{name: token, hierarchical: hierarchical}

		optimizer, err := mapequation.New(g,
			mapequation.WithStrategy(token),
			mapequation.WithHierarchical(hierarchical),
			mapequation.WithWorkers(workers),
			mapequation.WithMetrics(registry),
		)
		if err != nil {
			msg.err = err
			return msg
		}

		start := time.Now()
		msg.result, msg.err = algorithms.Detect(context.Background(), optimizer, g)
		msg.duration = time.Since(start)
		if msg.err == nil {
			msg.stats, msg.err = optimizer.Result()
		}
		return msg
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case runFinishedMsg:
		m.running = false
		m.recordRun(msg)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount

		case key.Matches(msg, m.keys.ShiftTab):
			m.currentView = (m.currentView + viewCount - 1) % viewCount

		case key.Matches(msg, m.keys.Hierarchical):
			m.hierarchical = !m.hierarchical
			m.message = fmt.Sprintf("Hierarchical refinement: %t", m.hierarchical)
			m.messageErr = false

		case key.Matches(msg, m.keys.Enter):
			if m.running {
				break
			}
			token := strings.TrimSpace(m.strategyInput.Value())
			if token == "" {
				token = mapequation.DefaultStrategy.String()
			}
			m.running = true
			m.message = ""
			return m, m.runCmd(token)
		}
	}

	switch m.currentView {
	case graphView:
		m.strategyInput, cmd = m.strategyInput.Update(msg)
	case runsView:
		m.runTable, cmd = m.runTable.Update(msg)
	case communitiesView:
		m.communityTable, cmd = m.communityTable.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) recordRun(msg runFinishedMsg) {
	if msg.err != nil {
		m.message = fmt.Sprintf("Run of %s failed: %v", msg.name, msg.err)
		m.messageErr = true
		return
	}

	m.runs++
	rows := append(m.runTable.Rows(), table.Row{
		fmt.Sprintf("%d", m.runs),
		msg.stats.Strategy.String(),
		fmt.Sprintf("%t", msg.hierarchical),
		fmt.Sprintf("%d", len(msg.result.Communities)),
		fmt.Sprintf("%d", len(msg.stats.Levels)),
		fmt.Sprintf("%.4f", msg.result.MapEquation),
		fmt.Sprintf("%.4f", msg.result.Modularity),
		msg.duration.Round(time.Microsecond).String(),
	})
	m.runTable.SetRows(rows)

	communities := make([]table.Row, 0, len(msg.result.Communities))
	for _, c := range msg.result.Communities {
		communities = append(communities, table.Row{
			fmt.Sprintf("%d", c.ID),
			fmt.Sprintf("%d", c.Size),
			fmt.Sprintf("%.2f", c.Volume),
			fmt.Sprintf("%.2f", c.Cut),
			fmt.Sprintf("%.3f", c.Density),
			formatMembers(c.Nodes),
		})
	}
	m.communityTable.SetRows(communities)

	m.lastCodelength = msg.result.MapEquation
	m.message = fmt.Sprintf("%s found %d communities in %s",
		msg.stats.Strategy, len(msg.result.Communities), msg.duration.Round(time.Microsecond))
	m.messageErr = false
}

func formatMembers(nodes []uint64) string {
	parts := make([]string, 0, 9)
	for i, u := range nodes {
		if i == 8 {
			parts = append(parts, "...")
			break
		}
		parts = append(parts, fmt.Sprintf("%d", u))
	}
	return strings.Join(parts, ", ")
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Map Equation Explorer"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case graphView:
		s.WriteString(m.renderGraph())
	case runsView:
		s.WriteString(m.runTable.View())
	case communitiesView:
		s.WriteString(m.communityTable.View())
	}

	if m.running {
		s.WriteString("\n\n")
		s.WriteString(m.spinner.View() + " running...")
	} else if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	var rendered []string
	for i, name := range viewNames {
		if view(i) == m.currentView {
			rendered = append(rendered, activeTabStyle.Render(name))
		} else {
			rendered = append(rendered, inactiveTabStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m model) renderGraph() string {
	stats := fmt.Sprintf(`Nodes:        %d
Edges:        %d
Total weight: %.2f
Clustering:   %.4f
Hierarchical: %t
Workers:      %d
Runs:         %d
Codelength:   %.4f`,
		m.graph.NumberOfNodes(),
		m.graph.NumberOfEdges(),
		m.graph.TotalEdgeWeight(),
		m.clustering,
		m.hierarchical,
		m.workers,
		m.runs,
		m.lastCodelength,
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		statsBoxStyle.Render(stats),
		"",
		"Strategy: "+m.strategyInput.View(),
	)
}

func main() {
	input := flag.String("input", "", "Edge list to load (.sz for snappy compressed)")
	groups := flag.Int("groups", 6, "Planted groups when generating")
	groupSize := flag.Int("group-size", 20, "Nodes per planted group when generating")
	pIn := flag.Float64("p-in", 0.4, "Edge probability inside a group")
	pOut := flag.Float64("p-out", 0.02, "Edge probability across groups")
	seed := flag.Int64("seed", 1, "Random seed of the generator")
	workers := flag.Int("workers", 0, "Workers of the parallel strategies (0 = GOMAXPROCS)")
	flag.Parse()

	var (
		g   *graph.Graph
		err error
	)
	if *input != "" {
		g, err = graph.LoadFile(*input)
	} else {
		g, _, err = graph.PlantedPartition(*groups, *groupSize, *pIn, *pOut, *seed)
	}
	if err != nil {
		log.Fatalf("Failed to prepare graph: %v", err)
	}

	p := tea.NewProgram(initialModel(g, *workers), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
