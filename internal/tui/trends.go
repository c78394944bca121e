package tui

import (
	"fmt"

	"runlab/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// TrendsModel is the metric trends screen model
type TrendsModel struct {
	queryService *service.QueryService
	data         *service.TrendData
	vo2          *service.VO2maxSeries
	days         int
	loading      bool
	err          error
}

// NewTrendsModel creates a new trends model
func NewTrendsModel(qs *service.QueryService) TrendsModel {
	return TrendsModel{
		queryService: qs,
		days:         90,
		loading:      true,
	}
}

// Init initializes the trends screen
func (m TrendsModel) Init() tea.Cmd {
	return m.loadData
}

type trendsLoadedMsg struct {
	data *service.TrendData
	vo2  *service.VO2maxSeries
	err  error
}

func (m TrendsModel) loadData() tea.Msg {
	data, err := m.queryService.GetTrendData(m.days)
	if err != nil {
		return trendsLoadedMsg{err: err}
	}
	vo2, err := m.queryService.GetVO2maxSeries()
	if err != nil {
		return trendsLoadedMsg{err: err}
	}
	return trendsLoadedMsg{data: data, vo2: vo2}
}

// Update handles messages
func (m TrendsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case trendsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		m.vo2 = msg.vo2

	case tea.KeyMsg:
		switch msg.String() {
		case "w":
			return m.withRange(30)
		case "m":
			return m.withRange(90)
		case "a":
			return m.withRange(0) // full stored window
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

func (m TrendsModel) withRange(days int) (tea.Model, tea.Cmd) {
	if m.days == days {
		return m, nil
	}
	m.days = days
	m.loading = true
	return m, m.loadData
}

// View renders the trends screen
func (m TrendsModel) View() string {
	if m.loading {
		return "\n  Loading trends..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || len(m.data.Dates) < 2 {
		return "\n  Not enough history to chart yet. Press 's' to sync with Strava."
	}

	var sections []string
	sections = append(sections, m.renderRangeLabel())
	sections = append(sections, m.renderLoadChart())
	sections = append(sections, m.renderACWRChart())
	if m.vo2 != nil && len(m.vo2.Points) >= 2 {
		sections = append(sections, m.renderVO2maxChart())
	}

	help := statusStyle.Render("w: 30 days  m: 90 days  a: all  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m TrendsModel) renderRangeLabel() string {
	label := "full history"
	if m.days > 0 {
		label = fmt.Sprintf("last %d days", m.days)
	}
	return statusStyle.Render(fmt.Sprintf("  %s through %s (%s)",
		m.data.Dates[0], m.data.Dates[len(m.data.Dates)-1], label))
}

func (m TrendsModel) renderLoadChart() string {
	title := cardTitleStyle.Render("Fitness / Fatigue / Form")

	graph := asciigraph.PlotMany([][]float64{m.data.CTL, m.data.ATL, m.data.TSB},
		asciigraph.Height(10),
		asciigraph.Width(70),
		asciigraph.Precision(0),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Red, asciigraph.Blue),
		asciigraph.SeriesLegends("CTL", "ATL", "TSB"),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m TrendsModel) renderACWRChart() string {
	title := cardTitleStyle.Render("Acute:Chronic Workload Ratio")

	graph := asciigraph.Plot(m.data.ACWR,
		asciigraph.Height(7),
		asciigraph.Width(70),
		asciigraph.Precision(2),
	)

	note := statusStyle.Render("  0.8-1.3 optimal, above 1.5 high risk")
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph, note))
}

func (m TrendsModel) renderVO2maxChart() string {
	title := cardTitleStyle.Render("VO2max (30-day rolling)")

	series := make([]float64, len(m.vo2.Points))
	for i, p := range m.vo2.Points {
		series[i] = p.Rolling
	}

	graph := asciigraph.Plot(series,
		asciigraph.Height(7),
		asciigraph.Width(70),
		asciigraph.Precision(1),
	)

	trend := m.vo2.Trend
	var note string
	if trend.Confidence > 0 {
		note = statusStyle.Render(fmt.Sprintf("  %s (%+.1f/month)  ",
			trend.Value.Direction, trend.Value.SlopePerMonth)) + RenderConfidence(trend.Confidence)
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph, note))
}
