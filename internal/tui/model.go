// Package tui renders the live usage dashboard: headline status, one row per
// metric, a sparkline of recent headline percentages, and key hints.
package tui

import (
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"github.com/janekbaraniewski/tokenmeter/internal/config"
	"github.com/janekbaraniewski/tokenmeter/internal/core"
	"github.com/janekbaraniewski/tokenmeter/internal/render"
)

// StateMsg carries the engine's latest state into the Update loop.
type StateMsg core.State

// IntervalMsg reports an interval change applied outside the TUI, e.g. a
// config file edit picked up by the watcher.
type IntervalMsg int

type tickMsg time.Time

// tick keeps the countdown and "last checked" lines moving between fetches.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

const (
	defaultWidth    = 64
	sparklineHeight = 4
)

// Hooks connect key presses back to the engine. Nil hooks are ignored.
type Hooks struct {
	OnRefresh        func()
	OnIntervalChange func(seconds int)
}

type Model struct {
	metrics         []core.MetricSpec
	policy          core.Policy
	state           core.State
	intervalSeconds int
	hooks           Hooks

	spark    sparkline.Model
	hasSpark bool

	width  int
	height int
}

// NewModel seeds the dashboard. headlines preloads the sparkline with values
// recorded by earlier runs, oldest first.
func NewModel(metrics []core.MetricSpec, policy core.Policy, intervalSeconds int, headlines []float64, hooks Hooks) Model {
	spark := sparkline.New(defaultWidth, sparklineHeight,
		sparkline.WithMaxValue(100),
		sparkline.WithStyle(barStyle),
	)
	for _, v := range headlines {
		spark.Push(v)
	}

	return Model{
		metrics:         metrics,
		policy:          policy,
		intervalSeconds: config.NormalizeInterval(intervalSeconds),
		hooks:           hooks,
		spark:           spark,
		hasSpark:        len(headlines) > 0,
		width:           defaultWidth,
	}
}

func (m Model) Init() tea.Cmd { return tickCmd() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.spark.Resize(min(msg.Width, defaultWidth), sparklineHeight)
		return m, nil

	case StateMsg:
		m.state = core.State(msg)
		if m.state.Snapshot != nil {
			if agg := core.Aggregate(*m.state.Snapshot, m.policy); agg.HeadlinePercent >= 0 {
				m.spark.Push(agg.HeadlinePercent)
				m.hasSpark = true
			}
		}
		return m, nil

	case IntervalMsg:
		m.intervalSeconds = config.NormalizeInterval(int(msg))
		return m, nil

	case tickMsg:
		return m, tickCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		if m.hooks.OnRefresh != nil {
			m.hooks.OnRefresh()
		}
		return m, nil
	case "i":
		m.intervalSeconds = config.NextInterval(m.intervalSeconds)
		if m.hooks.OnIntervalChange != nil {
			m.hooks.OnIntervalChange(m.intervalSeconds)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	p := render.Build(render.Input{
		Metrics: m.metrics,
		Policy:  m.policy,
		State:   m.state,
		Now:     time.Now(),
	})

	var b strings.Builder
	write := func(line string) {
		b.WriteString(ansi.Cut(line, 0, max(m.width, 1)))
		b.WriteString("\n")
	}

	write(titleStyle.Render(p.Title))
	write(statusStyle.Foreground(tierColor(p.Tier)).Render(p.StatusLine))
	write("")

	for _, row := range p.Rows {
		write(metricStyle.Render(row.Text))
		if row.Bar != "" {
			write(barStyle.Render(row.Bar))
		}
	}

	write("")
	write(footerStyle.Render(p.ResetLine))
	write(footerStyle.Render(p.CheckedLine))

	if m.hasSpark {
		m.spark.Draw()
		write("")
		b.WriteString(m.spark.View())
		b.WriteString("\n")
	}

	write("")
	write(m.footer())
	return b.String()
}

func (m Model) footer() string {
	sep := footerStyle.Render(" · ")
	hint := func(key, label string) string {
		return footerKeyStyle.Render(key) + footerStyle.Render(" "+label)
	}
	return hint("r", "refresh") + sep +
		hint("i", "interval: "+config.IntervalLabel(m.intervalSeconds)) + sep +
		hint("q", "quit")
}
