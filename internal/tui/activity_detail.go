package tui

import (
	"fmt"
	"sort"
	"strings"

	"runlab/internal/engine"
	"runlab/internal/service"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// ActivityDetailModel renders the full per-activity analysis in a scrollable
// viewport.
type ActivityDetailModel struct {
	queryService *service.QueryService
	units        Units
	activityID   int64
	report       *service.ActivityAnalysis
	viewport     viewport.Model
	loading      bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewActivityDetailModel creates a new activity detail model
func NewActivityDetailModel(qs *service.QueryService, units Units, activityID int64, width, height int) ActivityDetailModel {
	m := ActivityDetailModel{
		queryService: qs,
		units:        units,
		activityID:   activityID,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // Reserve space for header/footer
		m.ready = true
	}

	return m
}

// Init initializes the activity detail screen
func (m ActivityDetailModel) Init() tea.Cmd {
	return m.loadReport
}

type activityReportMsg struct {
	report *service.ActivityAnalysis
	err    error
}

func (m ActivityDetailModel) loadReport() tea.Msg {
	report, err := m.queryService.GetActivityAnalysis(m.activityID)
	if err != nil {
		return activityReportMsg{err: err}
	}
	return activityReportMsg{report: report}
}

// Update handles messages
func (m ActivityDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activityReportMsg:
		m.loading = false
		m.err = msg.err
		m.report = msg.report
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.report != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadReport
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the activity detail screen
func (m ActivityDetailModel) View() string {
	if m.loading {
		return "\n  Analyzing activity..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m ActivityDetailModel) renderContent() string {
	if m.report == nil {
		return "No data"
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, m.renderLoadSection())
	sections = append(sections, m.renderPaceSection())
	sections = append(sections, m.renderDecouplingSection())
	if len(m.report.Splits) > 1 {
		sections = append(sections, m.renderSplits())
	}
	sections = append(sections, m.renderQuality())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func sectionTitle(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(s)
}

func (m ActivityDetailModel) renderHeader() string {
	a := m.report.Activity
	title := cardTitleStyle.Render(a.Name)

	date := a.StartDateLocal.Format("Monday, January 2, 2006 at 3:04 PM")
	subtitle := lipgloss.NewStyle().Foreground(mutedColor).Render(date)

	stats := fmt.Sprintf("%s  |  %s  |  %s",
		m.units.FormatDistance(a.Distance),
		formatDuration(a.MovingTime),
		m.units.FormatPaceWithUnit(a.MovingTime, a.Distance))
	statsLine := lipgloss.NewStyle().Foreground(textColor).Bold(true).Render(stats)

	return lipgloss.JoinVertical(lipgloss.Left, "", title, subtitle, statsLine, "")
}

func (m ActivityDetailModel) renderLoadSection() string {
	var lines []string
	lines = append(lines, sectionTitle("Training Load"))

	trimp := m.report.TRIMP
	lines = append(lines, fmt.Sprintf("  Internal load (TRIMP):  %.0f  via %s", trimp.Value, trimp.Method))
	lines = append(lines, "  "+RenderConfidence(trimp.Confidence))

	lines = append(lines, "")
	vo2 := m.report.VO2max
	if vo2.Confidence > 0 {
		lines = append(lines, fmt.Sprintf("  VO2max estimate:        %.1f ml/kg/min  via %s", vo2.Value, vo2.Method))
		lines = append(lines, "  "+RenderConfidence(vo2.Confidence))
	} else {
		lines = append(lines, helpDescStyle.Render("  VO2max: no usable estimate from this run"))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m ActivityDetailModel) renderPaceSection() string {
	var lines []string
	lines = append(lines, sectionTitle("Environmental Normalization"))

	pace := m.report.Pace
	if pace.Confidence == 0 {
		lines = append(lines, helpDescStyle.Render("  No weather data recorded; pace shown as observed."))
		lines = append(lines, "")
		return strings.Join(lines, "\n")
	}

	adj := pace.Value
	lines = append(lines, fmt.Sprintf("  Observed pace:    %s", m.units.FormatPaceSeconds(adj.ObservedPace)))
	lines = append(lines, fmt.Sprintf("  Normalized pace:  %s", m.units.FormatPaceSeconds(adj.NormalizedPace)))

	components := []struct {
		label string
		cost  float64
	}{
		{"Heat", adj.Temperature},
		{"Humidity", adj.Humidity},
		{"Wind", adj.Wind},
		{"Elevation", adj.Elevation},
	}
	for _, c := range components {
		if c.cost == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("    %-10s %+.0f sec/km", c.label, c.cost))
	}

	lines = append(lines, "  "+RenderConfidence(pace.Confidence))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m ActivityDetailModel) renderDecouplingSection() string {
	var lines []string
	lines = append(lines, sectionTitle("Aerobic Decoupling"))

	dec := m.report.Decoupling
	if dec.Confidence == 0 {
		lines = append(lines, helpDescStyle.Render("  Not computed: needs an hour-plus run with kilometer splits."))
		lines = append(lines, "")
		return strings.Join(lines, "\n")
	}

	d := dec.Value
	basis := "pace only"
	if d.UsedHeartRate {
		basis = "pace:HR"
	}
	lines = append(lines, fmt.Sprintf("  Drift:      %.1f%% (%s)  grade: %s", d.Percent, basis, d.Grade))
	if d.AdjustedPercent != d.Percent {
		lines = append(lines, fmt.Sprintf("  Adjusted:   %.1f%% after environmental allowance", d.AdjustedPercent))
	}
	lines = append(lines, fmt.Sprintf("  First half:   %s at %.0f bpm", m.units.FormatPaceSeconds(d.FirstHalfPace), d.FirstHalfHR))
	lines = append(lines, fmt.Sprintf("  Second half:  %s at %.0f bpm", m.units.FormatPaceSeconds(d.SecondHalfPace), d.SecondHalfHR))
	lines = append(lines, "  "+RenderConfidence(dec.Confidence))
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m ActivityDetailModel) renderSplits() string {
	var lines []string
	lines = append(lines, sectionTitle("Splits"))

	header := fmt.Sprintf("  %-5s  %8s  %6s", "Km", "Pace", "HR")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	// Fastest split gets highlighted
	fastest := 0
	for _, s := range m.report.Splits {
		if s.MovingTime > 0 && (fastest == 0 || s.MovingTime < fastest) {
			fastest = s.MovingTime
		}
	}

	var paces []float64
	for _, s := range m.report.Splits {
		hrStr := "-"
		if s.AverageHeartrate != nil {
			hrStr = fmt.Sprintf("%.0f", *s.AverageHeartrate)
		}

		pace := "-"
		if s.Distance > 0 && s.MovingTime > 0 {
			secPerKm := float64(s.MovingTime) / (s.Distance / 1000)
			pace = m.units.FormatPaceSeconds(secPerKm)
			paces = append(paces, secPerKm/60)
		}

		row := fmt.Sprintf("  %-5d  %8s  %6s", s.SplitIndex, pace, hrStr)
		if s.MovingTime == fastest {
			lines = append(lines, lipgloss.NewStyle().Foreground(secondaryColor).Bold(true).Render(row))
		} else {
			lines = append(lines, row)
		}
	}

	if len(paces) > 5 {
		lines = append(lines, "")
		lines = append(lines, helpDescStyle.Render("  Pace per split (min/km)"))
		chart := asciigraph.Plot(paces,
			asciigraph.Height(6),
			asciigraph.Width(50),
			asciigraph.Precision(1),
		)
		lines = append(lines, chart)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// renderQuality aggregates the flags and warnings from every computation
func (m ActivityDetailModel) renderQuality() string {
	flags := map[string]bool{}
	var warnings []string

	collect := func(q engine.Quality, warns []string) {
		for _, f := range q.Flags {
			flags[string(f)] = true
		}
		warnings = append(warnings, warns...)
	}
	collect(m.report.TRIMP.Quality, m.report.TRIMP.Warnings)
	collect(m.report.VO2max.Quality, m.report.VO2max.Warnings)
	collect(m.report.Pace.Quality, m.report.Pace.Warnings)
	collect(m.report.Decoupling.Quality, m.report.Decoupling.Warnings)

	if len(flags) == 0 && len(warnings) == 0 {
		return ""
	}

	names := make([]string, 0, len(flags))
	for f := range flags {
		names = append(names, f)
	}
	sort.Strings(names)

	var lines []string
	lines = append(lines, sectionTitle("Data Quality"))
	for _, f := range names {
		lines = append(lines, warningStyle.Render("  ! "+strings.ReplaceAll(f, "_", " ")))
	}
	for _, w := range warnings {
		lines = append(lines, helpDescStyle.Render("    "+w))
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}
