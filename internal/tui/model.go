// Package tui is the terminal front-end: a Bubble Tea model with the search
// input, the suggestion list and the weather card.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"

	"github.com/i474232898/city-weather/internal/autocomplete"
	"github.com/i474232898/city-weather/internal/display"
	"github.com/i474232898/city-weather/internal/i18n"
	"github.com/i474232898/city-weather/internal/logger"
	"github.com/i474232898/city-weather/internal/selection"
	"github.com/i474232898/city-weather/internal/weather"
)

// Model is the root Bubble Tea model. It holds no weather state of its own
// beyond what the controllers last reported through messages.
type Model struct {
	ctx     context.Context
	ac      *autocomplete.Controller
	disp    *display.Controller
	sel     *selection.Selection
	printer *message.Printer

	input       textinput.Model
	spinner     spinner.Model
	suggestions autocomplete.Snapshot

	loading    bool
	showResult bool
	busy       bool
	busyLabel  string
	card       *display.Card
	errCity    string
	errCond    string
	theme      weather.Theme
	announce   string

	width int
}

// NewModel wires a model to its controllers.
func NewModel(ctx context.Context, ac *autocomplete.Controller, disp *display.Controller, sel *selection.Selection, p *message.Printer) Model {
	snap := ac.Snapshot()

	ti := textinput.New()
	ti.Placeholder = snap.Placeholder
	ti.CharLimit = 100
	ti.Width = 40
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(colorSpinner)

	return Model{
		ctx:         ctx,
		ac:          ac,
		disp:        disp,
		sel:         sel,
		printer:     p,
		input:       ti,
		spinner:     s,
		suggestions: snap,
		busyLabel:   p.Sprintf(i18n.MsgSubmit),
	}
}

// Init starts the cursor blink and the bootstrap fetch.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.bootstrap)
}

func (m Model) bootstrap() tea.Msg {
	if err := m.disp.Bootstrap(m.ctx); err != nil {
		logger.L().Warn("bootstrap_failed", "err", err)
	}
	return nil
}

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if !m.spinning() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case suggestionsMsg:
		m = m.applySuggestions(autocomplete.Snapshot(msg))
		return m, nil

	case loadingMsg:
		was := m.spinning()
		m.loading = bool(msg)
		if m.loading {
			m.showResult = false
		}
		return m, m.startSpinner(was)

	case resultMsg:
		m.showResult = true
		return m, nil

	case busyMsg:
		was := m.spinning()
		m.busy = msg.busy
		m.busyLabel = msg.label
		return m, m.startSpinner(was)

	case cardMsg:
		card := display.Card(msg)
		m.card = &card
		m.errCity, m.errCond = "", ""
		m.showResult = true
		return m, nil

	case errorMsg:
		m.errCity, m.errCond = msg.city, msg.condition
		m.showResult = true
		return m, nil

	case themeMsg:
		m.theme = weather.Theme(msg)
		return m, nil

	case announceMsg:
		m.announce = string(msg)
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.ac.Escape()
	case tea.KeyUp:
		m.ac.MoveUp()
	case tea.KeyDown:
		m.ac.MoveDown()
	case tea.KeyTab:
		m.ac.Blur()
	case tea.KeyCtrlX:
		m.disp.ClearCache()
	case tea.KeyEnter:
		if !m.ac.Enter() && !m.busy {
			m.disp.Submit(m.ctx, m.sel)
		}
	default:
		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if after := m.input.Value(); after != before {
			m.ac.Input(after)
		}
		m = m.applySuggestions(m.ac.Snapshot())
		return m, cmd
	}

	m = m.applySuggestions(m.ac.Snapshot())
	return m, nil
}

// applySuggestions takes s unless a newer snapshot was already applied.
func (m Model) applySuggestions(s autocomplete.Snapshot) Model {
	if s.Version <= m.suggestions.Version {
		return m
	}
	m.suggestions = s
	m.input.Placeholder = s.Placeholder
	if s.Input != m.input.Value() {
		m.input.SetValue(s.Input)
	}
	return m
}

func (m Model) spinning() bool {
	return m.loading || m.busy
}

func (m Model) startSpinner(was bool) tea.Cmd {
	if !was && m.spinning() {
		return m.spinner.Tick
	}
	return nil
}

// View renders the screen.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("city-weather"))
	b.WriteString("\n")
	b.WriteString(InputStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(m.renderSuggestions())

	if m.busy {
		b.WriteString(m.spinner.View() + " " + MutedStyle.Render(m.busyLabel) + "\n")
	}

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " " + m.printer.Sprintf(i18n.MsgLoading) + "\n")
	case m.showResult:
		b.WriteString(m.renderCard())
		b.WriteString("\n")
	}

	if m.announce != "" {
		b.WriteString(AnnounceStyle.Render(m.announce))
		b.WriteString("\n")
	}
	b.WriteString(HelpStyle.Render(m.printer.Sprintf(i18n.MsgKeyHelp)))
	return b.String()
}

func (m Model) renderSuggestions() string {
	if !m.suggestions.Open {
		return ""
	}
	var b strings.Builder
	for _, e := range m.suggestions.Entries {
		switch {
		case !e.Selectable:
			b.WriteString(EmptySuggestionStyle.Render(e.Label))
		case e.Selected:
			b.WriteString(SelectedSuggestionStyle.Render("> " + e.Label))
		default:
			b.WriteString(SuggestionStyle.Render(e.Label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderCard() string {
	style := cardStyle(m.theme)
	failed := m.errCity != ""
	if m.card == nil {
		if failed {
			return style.Render(ErrorStyle.Render(m.errCity) + "\n" + m.errCond)
		}
		return ""
	}

	// A failed request overwrites only the city and condition of the last card.
	c := m.card
	condition, location := c.Condition, c.Location
	if failed {
		condition, location = m.errCond, ErrorStyle.Render(m.errCity)
	}
	lines := []string{
		c.Glyph + "  " + TempStyle.Render(c.Temperature) + "  " + condition,
		m.printer.Sprintf(i18n.MsgFeelsLike, c.FeelsLike),
		location,
		m.printer.Sprintf(i18n.MsgHumidity) + " " + c.Humidity + "   " + m.printer.Sprintf(i18n.MsgWind) + " " + c.Wind,
	}
	if !c.PostalHidden {
		postal := m.printer.Sprintf(i18n.MsgPostalCode) + " " + c.PostalText
		if c.PostalTitle != c.PostalText {
			postal += " " + MutedStyle.Render("("+c.PostalTitle+")")
		}
		lines = append(lines, postal)
	}
	return style.Render(strings.Join(lines, "\n"))
}
