// Package ui provides the interactive converter.
package ui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/convertpro/internal/convert"
	"github.com/charmbracelet/convertpro/internal/speech"
	"github.com/charmbracelet/convertpro/internal/units"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/wordwrap"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	speechPollInterval   = time.Millisecond * 500
	ellipsis             = "…"
)

// Dispatcher runs conversions on behalf of the UI.
type Dispatcher interface {
	Dispatch(ctx context.Context, req convert.Request) convert.Result
	Listen(ctx context.Context) (string, convert.Request, convert.Result)
	SetSpeak(on bool)
	Speaking() bool
}

// SpeechMonitor reports the state of the speech queue.
type SpeechMonitor interface {
	Stats() speech.Stats
}

// NewProgram returns a new Tea program. monitor may be nil.
func NewProgram(ctx context.Context, cfg Config, d Dispatcher, monitor SpeechMonitor) *tea.Program {
	log.Debug(
		"Starting convertpro",
		"glamour",
		cfg.GlamourEnabled,
		"speak",
		d.Speaking(),
	)

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(newModel(ctx, cfg, d, monitor), opts...)
}

// section is one tab of the converter.
type section int

const (
	unitSection section = iota
	currencySection
	askSection
)

var sectionNames = [...]string{"Unit", "Currency", "Ask AI"}

func (s section) String() string {
	return sectionNames[s]
}

func parseSection(s string) section {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "currency":
		return currencySection
	case "ask", "ai", "advisor":
		return askSection
	default:
		return unitSection
	}
}

type (
	resultMsg struct {
		heard string
		req   convert.Request
		res   convert.Result
	}
	renderedMsg struct {
		id  int
		out string
	}
	statusMessageTimeoutMsg struct{ id int }
	speechTickMsg           struct{}
)

type model struct {
	ctx        context.Context
	cfg        Config
	dispatcher Dispatcher
	monitor    SpeechMonitor

	width  int
	height int

	section  section
	forms    [len(sectionNames)]form
	category int
	keys     keyMap
	help     help.Model
	spinner  spinner.Model

	busy      bool
	listening bool
	heard     string

	// Last result, the request that produced it and its rendered form. The
	// id discards renders that finished after a newer result arrived.
	result   *convert.Result
	request  convert.Request
	rendered string
	resultID int

	statusMessage string
	statusID      int
}

func newModel(ctx context.Context, cfg Config, d Dispatcher, monitor SpeechMonitor) model {
	if cfg.GlamourStyle == "" || cfg.GlamourStyle == styles.AutoStyle {
		if lipgloss.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	m := model{
		ctx:        ctx,
		cfg:        cfg,
		dispatcher: d,
		monitor:    monitor,
		keys:       newKeyMap(),
		help:       help.New(),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(fuchsia)),
		),
		forms: [...]form{
			newForm(newField("Value", "1"), newField("From", "kilometer"), newField("To", "mile")),
			newForm(newField("Amount", "1"), newField("From", "USD"), newField("To", "EUR")),
			newForm(newField("Ask", "How many teaspoons are in a cup?")),
		},
	}
	if len(m.cfg.UnitCategories) == 0 {
		m.cfg.UnitCategories = units.Categories()
	}
	m.selectCategory(0)
	m.focusSection(parseSection(cfg.StartSection))
	return m
}

// selectCategory switches the unit form to category i. Typed units are
// cleared; the category's first two units become the defaults.
func (m *model) selectCategory(i int) {
	n := len(m.cfg.UnitCategories)
	m.category = ((i % n) + n) % n
	cat := m.cfg.UnitCategories[m.category]

	f := &m.forms[unitSection]
	f.setValue(1, "")
	f.setValue(2, "")
	f.setPlaceholder(1, cat.Units[0])
	f.setPlaceholder(2, cat.Units[min(1, len(cat.Units)-1)])
}

// categoryOf returns the index of the category listing unit, or -1.
func (m model) categoryOf(unit string) int {
	for i, cat := range m.cfg.UnitCategories {
		for _, u := range cat.Units {
			if strings.EqualFold(u, unit) {
				return i
			}
		}
	}
	return -1
}

func (m *model) focusSection(s section) {
	for i := range m.forms {
		m.forms[i].blur()
	}
	m.section = s
	m.forms[s].setFocus(m.forms[s].focus)
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.speechTick())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		n := section(len(sectionNames))

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil

		case key.Matches(msg, m.keys.NextSection):
			m.focusSection((m.section + 1) % n)
			return m, nil

		case key.Matches(msg, m.keys.PrevSection):
			m.focusSection((m.section + n - 1) % n)
			return m, nil

		case key.Matches(msg, m.keys.NextField):
			m.forms[m.section].next()
			return m, nil

		case key.Matches(msg, m.keys.PrevField):
			m.forms[m.section].prev()
			return m, nil

		case key.Matches(msg, m.keys.NextCategory) && m.section == unitSection:
			m.selectCategory(m.category + 1)
			return m, nil

		case key.Matches(msg, m.keys.PrevCategory) && m.section == unitSection:
			m.selectCategory(m.category - 1)
			return m, nil

		case key.Matches(msg, m.keys.ToggleSpeak):
			want := !m.dispatcher.Speaking()
			m.dispatcher.SetSpeak(want)
			switch {
			case m.dispatcher.Speaking() != want:
				return m, m.showStatusMessage("Speech output is not available")
			case want:
				return m, m.showStatusMessage("Speech on")
			default:
				return m, m.showStatusMessage("Speech off")
			}

		case key.Matches(msg, m.keys.Copy):
			if m.result == nil || !m.result.OK() {
				return m, m.showStatusMessage("Nothing to copy")
			}
			if err := clipboard.WriteAll(m.result.Display()); err != nil {
				log.Warn("unable to copy result", "error", err)
				return m, m.showStatusMessage("Could not copy result")
			}
			return m, m.showStatusMessage("Copied result")

		case key.Matches(msg, m.keys.Listen):
			if m.busy {
				return m, nil
			}
			m.busy, m.listening, m.heard = true, true, ""
			return m, tea.Batch(m.spinner.Tick, listenCmd(m.ctx, m.dispatcher))

		case key.Matches(msg, m.keys.Submit):
			if m.busy {
				return m, nil
			}
			req, failure := m.formRequest()
			if failure != nil {
				m.heard = ""
				return m, m.setResult(nil, convert.Failed(failure))
			}
			if req == nil {
				return m, m.showStatusMessage("Type a question first")
			}
			m.busy, m.listening, m.heard = true, false, ""
			return m, tea.Batch(m.spinner.Tick, dispatchCmd(m.ctx, m.dispatcher, req))
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		for i := range m.forms {
			m.forms[i].setWidth(max(10, msg.Width-12))
		}
		if m.result != nil && m.result.IsText() && m.cfg.GlamourEnabled {
			return m, renderAnswer(m.resultID, m.result.Text, m.cfg, m.answerWidth())
		}
		return m, nil

	case resultMsg:
		m.busy, m.listening = false, false
		m.heard = msg.heard
		if msg.req != nil {
			m.fillForm(msg.req)
		}
		return m, m.setResult(msg.req, msg.res)

	case renderedMsg:
		if msg.id == m.resultID {
			m.rendered = msg.out
		}
		return m, nil

	case statusMessageTimeoutMsg:
		if msg.id == m.statusID {
			m.statusMessage = ""
		}
		return m, nil

	case speechTickMsg:
		return m, m.speechTick()

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.forms[m.section], cmd = m.forms[m.section].update(msg)
	return m, cmd
}

// formRequest builds a request from the active form. It returns nil, nil
// when there is nothing to ask.
func (m model) formRequest() (convert.Request, *convert.Failure) {
	f := m.forms[m.section]

	switch m.section {
	case unitSection:
		v, failure := parseNumber(f.value(0))
		if failure != nil {
			return nil, failure
		}
		return convert.UnitRequest{Value: v, From: f.valueOrPlaceholder(1), To: f.valueOrPlaceholder(2)}, nil

	case currencySection:
		v, failure := parseNumber(f.value(0))
		if failure != nil {
			return nil, failure
		}
		return convert.CurrencyRequest{
			Amount: v,
			From:   strings.ToUpper(f.value(1)),
			To:     strings.ToUpper(f.value(2)),
		}, nil

	default:
		q := f.value(0)
		if q == "" {
			return nil, nil
		}
		return convert.FreeTextRequest{Query: q}, nil
	}
}

// parseNumber reads a typed amount. An empty field means one.
func parseNumber(s string) (float64, *convert.Failure) {
	if s == "" {
		return 1, nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, convert.NewFailure(convert.KindNumericParseError, "Please enter a valid number.", err)
	}
	return v, nil
}

// fillForm shows a spoken request in the form it belongs to.
func (m *model) fillForm(req convert.Request) {
	num := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

	switch r := req.(type) {
	case convert.UnitRequest:
		m.focusSection(unitSection)
		if i := m.categoryOf(r.From); i >= 0 {
			m.selectCategory(i)
		}
		f := &m.forms[unitSection]
		f.setValue(0, num(r.Value))
		f.setValue(1, r.From)
		f.setValue(2, r.To)
	case convert.CurrencyRequest:
		m.focusSection(currencySection)
		f := &m.forms[currencySection]
		f.setValue(0, num(r.Amount))
		f.setValue(1, r.From)
		f.setValue(2, r.To)
	case convert.FreeTextRequest:
		m.focusSection(askSection)
		m.forms[askSection].setValue(0, r.Query)
	}
}

func (m *model) setResult(req convert.Request, res convert.Result) tea.Cmd {
	m.resultID++
	m.result = &res
	m.request = req
	m.rendered = resultView(req, res)

	if res.IsText() && m.cfg.GlamourEnabled {
		return renderAnswer(m.resultID, res.Text, m.cfg, m.answerWidth())
	}
	return nil
}

func (m *model) showStatusMessage(msg string) tea.Cmd {
	m.statusID++
	m.statusMessage = msg
	id := m.statusID
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg{id: id}
	})
}

func (m model) speechTick() tea.Cmd {
	if m.monitor == nil {
		return nil
	}
	return tea.Tick(speechPollInterval, func(time.Time) tea.Msg {
		return speechTickMsg{}
	})
}

func (m model) answerWidth() int {
	w := m.width - 4
	if m.cfg.GlamourMaxWidth > 0 {
		w = min(w, int(m.cfg.GlamourMaxWidth)) //nolint:gosec
	}
	return max(0, w)
}

func (m model) View() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n  %s  %s\n\n", logoView(), m.tabsView())
	if m.section == unitSection {
		b.WriteString(indent(m.categoryView(), 2))
	}
	b.WriteString(indent(m.forms[m.section].view(), 2))
	switch {
	case m.section == unitSection:
		b.WriteString(indent(m.hintView(strings.Join(m.cfg.UnitCategories[m.category].Units, ", ")), 2+8))
	case m.section == currencySection && len(m.cfg.Currencies) > 0:
		b.WriteString(indent(m.hintView(strings.Join(m.cfg.Currencies, " ")), 2+8))
	}
	b.WriteRune('\n')

	switch {
	case m.busy && m.listening:
		fmt.Fprintf(&b, "  %s Listening%s\n", m.spinner.View(), ellipsis)
	case m.busy:
		fmt.Fprintf(&b, "  %s Working%s\n", m.spinner.View(), ellipsis)
	default:
		if m.heard != "" {
			b.WriteString(indent(subtleStyle("You said: "+m.heard), 2))
		}
		if m.result != nil {
			b.WriteString(indent(m.rendered, 2))
		}
	}

	footer := m.statusBarView()
	helpView := m.help.View(m.keys)

	// Push the status bar to the bottom of the screen.
	body := b.String()
	if gap := m.height - lipgloss.Height(body) - lipgloss.Height(helpView) - 1; gap > 0 {
		body += strings.Repeat("\n", gap)
	}
	return body + footer + "\n" + indent(helpView, 1)
}

func (m model) categoryView() string {
	cat := m.cfg.UnitCategories[m.category]
	return fmt.Sprintf("%s%s %s %s\n",
		labelStyle("Type"),
		subtleStyle("‹"),
		activeTabStyle(cat.Name),
		subtleStyle(fmt.Sprintf("› %d/%d", m.category+1, len(m.cfg.UnitCategories))),
	)
}

// hintView wraps a list of choices to the form width.
func (m model) hintView(s string) string {
	if m.width > 0 {
		s = wordwrap.String(s, max(20, m.width-12))
	}
	return subtleStyle(s)
}

func (m model) tabsView() string {
	tabs := make([]string, len(sectionNames))
	for i := range sectionNames {
		name := section(i).String()
		if section(i) == m.section {
			tabs[i] = activeTabStyle(name)
		} else {
			tabs[i] = tabStyle(name)
		}
	}
	return strings.Join(tabs, subtleStyle(" • "))
}

// COMMANDS

func dispatchCmd(ctx context.Context, d Dispatcher, req convert.Request) tea.Cmd {
	return func() tea.Msg {
		return resultMsg{req: req, res: d.Dispatch(ctx, req)}
	}
}

func listenCmd(ctx context.Context, d Dispatcher) tea.Cmd {
	return func() tea.Msg {
		heard, req, res := d.Listen(ctx)
		return resultMsg{heard: heard, req: req, res: res}
	}
}

// ETC

// Lightweight version of reflow's indent function.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	l := strings.Split(strings.TrimRight(s, "\n"), "\n")
	b := strings.Builder{}
	i := strings.Repeat(" ", n)
	for _, v := range l {
		fmt.Fprintf(&b, "%s%s\n", i, v)
	}
	return b.String()
}
