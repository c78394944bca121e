package tui

import (
	"fmt"
	"strings"

	"runlab/internal/engine"
	"runlab/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RiskModel is the injury risk report screen model
type RiskModel struct {
	queryService *service.QueryService
	report       engine.Result[engine.InjuryAssessment]
	loaded       bool
	loading      bool
	err          error
}

// NewRiskModel creates a new risk model
func NewRiskModel(qs *service.QueryService) RiskModel {
	return RiskModel{
		queryService: qs,
		loading:      true,
	}
}

// Init initializes the risk screen
func (m RiskModel) Init() tea.Cmd {
	return m.loadReport
}

type riskReportMsg struct {
	report engine.Result[engine.InjuryAssessment]
	err    error
}

func (m RiskModel) loadReport() tea.Msg {
	report, err := m.queryService.GetRiskReport()
	return riskReportMsg{report: report, err: err}
}

// Update handles messages
func (m RiskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case riskReportMsg:
		m.loading = false
		m.err = msg.err
		m.report = msg.report
		m.loaded = true

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadReport
		}
	}
	return m, nil
}

// View renders the risk report
func (m RiskModel) View() string {
	if m.loading {
		return "\n  Assessing injury risk..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.loaded {
		return "\n  No data available."
	}

	var sections []string
	sections = append(sections, m.renderOverall())
	sections = append(sections, m.renderACWR())
	sections = append(sections, m.renderFactors())
	if len(m.report.Warnings) > 0 {
		sections = append(sections, m.renderWarnings())
	}

	help := statusStyle.Render("r: refresh  2: trends")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RiskModel) renderOverall() string {
	title := cardTitleStyle.Render("Overall Risk")
	v := m.report.Value

	lines := []string{
		RenderMetric("Score", fmt.Sprintf("%.0f/100", v.OverallScore), ""),
		"",
		RenderScoreBar(v.OverallScore, 40),
		"",
		metricLabelStyle.Render("Level") + RenderSeverity(v.Level.String()),
		RenderMetric("Overreaching", v.Overreaching.String(), ""),
		"",
		RenderConfidence(m.report.Confidence),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(56).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m RiskModel) renderACWR() string {
	title := cardTitleStyle.Render("Workload Ratio")
	acwr := m.report.Value.ACWR

	lines := []string{
		RenderMetric("Acute (7d)", fmt.Sprintf("%.0f TRIMP/day", acwr.Acute), ""),
		RenderMetric("Chronic (28d)", fmt.Sprintf("%.0f TRIMP/day", acwr.Chronic), ""),
		RenderMetric("Ratio", fmt.Sprintf("%.2f", acwr.Ratio), ""),
		metricLabelStyle.Render("Band") + bandStyle(acwr.Band).Render(acwr.Band.String()),
		"",
		helpDescStyle.Render("0.8-1.3 keeps load adaptation and risk in balance."),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(56).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func bandStyle(b engine.ACWRBand) lipgloss.Style {
	switch b {
	case engine.ACWROptimal:
		return successStyle
	case engine.ACWRCaution:
		return warningStyle
	case engine.ACWRHighRisk:
		return errorStyle
	default:
		return trendFlatStyle
	}
}

func (m RiskModel) renderFactors() string {
	title := cardTitleStyle.Render("Risk Factors")
	factors := m.report.Value.Factors

	if len(factors) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No factors scored yet"))
	}

	var rows []string
	for _, f := range factors {
		name := strings.ReplaceAll(f.Kind.String(), "-", " ")
		if !f.HasData {
			rows = append(rows, fmt.Sprintf("  %-22s %s", name, helpDescStyle.Render("no data")))
			continue
		}

		row := fmt.Sprintf("  %-22s %s %3.0f  %s",
			name,
			RenderScoreBar(f.Score, 20),
			f.Score,
			RenderSeverity(f.Severity.String()))
		rows = append(rows, row)
		if f.Detail != "" {
			rows = append(rows, helpDescStyle.Render("    "+f.Detail))
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m RiskModel) renderWarnings() string {
	var lines []string
	for _, w := range m.report.Warnings {
		lines = append(lines, warningStyle.Render("  ! "+w))
	}
	return strings.Join(lines, "\n")
}
