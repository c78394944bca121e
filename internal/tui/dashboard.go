package tui

import (
	"fmt"
	"strings"

	"runlab/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	units        Units
	data         *service.DashboardData
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, units Units) DashboardModel {
	return DashboardModel{
		queryService: qs,
		units:        units,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.GetDashboardData()
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{data: data}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil {
		return "\n  No data available. Press 's' to sync with Strava."
	}

	var sections []string

	// Top row: form and risk side by side
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderFormCard(), "  ", m.renderRiskCard())
	sections = append(sections, topRow)

	// Second row: VO2max trend and this week
	secondRow := lipgloss.JoinHorizontal(lipgloss.Top, m.renderVO2maxCard(), "  ", m.renderWeekCard())
	sections = append(sections, secondRow)

	sections = append(sections, m.renderRecentActivities())

	help := statusStyle.Render("Press 'r' to refresh, 's' to sync, '2' trends, '3' risk detail")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderFormCard() string {
	title := cardTitleStyle.Render("Form")
	fitness := m.data.Fitness

	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.0f", fitness.Value.CTL), ""),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.0f", fitness.Value.ATL), ""),
		RenderMetric("Form (TSB)", fmt.Sprintf("%+.0f", fitness.Value.TSB), ""),
		RenderMetric("Status", fitness.Value.Status.String(), ""),
		"",
		helpDescStyle.Render(wrap(fitness.Value.Recommendation, 32)),
		"",
		RenderConfidence(fitness.Confidence),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderRiskCard() string {
	title := cardTitleStyle.Render("Injury Risk")
	risk := m.data.Risk

	acwr := "-"
	if risk.Confidence > 0 {
		acwr = fmt.Sprintf("%.2f (%s)", risk.Value.ACWR.Ratio, risk.Value.ACWR.Band)
	}

	lines := []string{
		RenderMetric("Overall", fmt.Sprintf("%.0f/100", risk.Value.OverallScore), ""),
		"",
		RenderScoreBar(risk.Value.OverallScore, 24),
		"",
		metricLabelStyle.Render("Level") + RenderSeverity(risk.Value.Level.String()),
		RenderMetric("ACWR", acwr, ""),
		RenderMetric("Overreaching", risk.Value.Overreaching.String(), ""),
		"",
		RenderConfidence(risk.Confidence),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderVO2maxCard() string {
	title := cardTitleStyle.Render("VO2max")
	trend := m.data.VO2maxTrend

	if trend.Confidence == 0 {
		content := helpDescStyle.Render("Not enough qualifying runs yet.\nSteady efforts over 20 minutes\nwith heart rate feed this estimate.")
		return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
	}

	slope := fmt.Sprintf("%+.1f/month", trend.Value.SlopePerMonth)
	lines := []string{
		RenderMetric("Current", fmt.Sprintf("%.1f ml/kg/min", trend.Value.Current), ""),
		RenderMetric("Trend", trend.Value.Direction.String(), slope),
		"",
		RenderConfidence(trend.Confidence),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderWeekCard() string {
	title := cardTitleStyle.Render("This Week")

	lines := []string{
		RenderMetric("Runs", fmt.Sprintf("%d", m.data.WeekRunCount), ""),
		RenderMetric("Distance", m.units.FormatDistance(m.data.WeekDistance), ""),
		RenderMetric("Time", formatDuration(m.data.WeekTime), ""),
		RenderMetric("Load (TRIMP)", fmt.Sprintf("%.0f", m.data.WeekTRIMP), ""),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderRecentActivities() string {
	title := cardTitleStyle.Render("Recent Activities")

	if len(m.data.RecentActivities) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No activities yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-24s  %9s  %7s  %6s",
		"Date", "Name", "Distance", "Pace", "HR"))

	rows := []string{header}
	for i, a := range m.data.RecentActivities {
		if i >= 5 {
			break
		}

		hr := "-"
		if a.AverageHeartrate != nil {
			hr = fmt.Sprintf("%.0f", *a.AverageHeartrate)
		}

		row := tableRowStyle.Render(fmt.Sprintf("%-10s  %-24s  %9s  %7s  %6s",
			a.StartDateLocal.Format("Jan 02"),
			truncateName(a.Name, 24),
			m.units.FormatDistance(a.Distance),
			m.units.FormatPace(a.MovingTime, a.Distance),
			hr,
		))
		rows = append(rows, row)
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// wrap breaks a sentence at word boundaries to fit inside a card
func wrap(s string, width int) string {
	if len(s) <= width {
		return s
	}
	out := ""
	line := 0
	for _, word := range strings.Fields(s) {
		if line > 0 && line+1+len(word) > width {
			out += "\n"
			line = 0
		} else if line > 0 {
			out += " "
			line++
		}
		out += word
		line += len(word)
	}
	return out
}
