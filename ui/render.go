package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/convertpro/internal/convert"
	"github.com/charmbracelet/convertpro/utils"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var moneyPrinter = message.NewPrinter(language.English)

func logoView() string {
	return logoStyle(" ConvertPro ")
}

// resultView renders a result without glamour. Answers are shown as typed
// until the rendered version arrives.
func resultView(req convert.Request, res convert.Result) string {
	switch {
	case !res.OK():
		return errorTitleStyle("ERROR") + " " + failureStyle(res.Failure.Message)
	case res.IsText():
		return res.Text
	}

	if r, ok := req.(convert.CurrencyRequest); ok {
		return fmt.Sprintf("%s %s = %s",
			subtleStyle(formatMoney(r.Amount, r.From)),
			subtleStyle("→"),
			resultStyle(formatMoney(res.Value, res.Label)),
		)
	}
	if r, ok := req.(convert.UnitRequest); ok {
		return fmt.Sprintf("%s %s %s",
			subtleStyle(convert.FormatValue(r.Value, true)+" "+r.From),
			subtleStyle("→"),
			resultStyle(res.Display()),
		)
	}
	return resultStyle(res.Display())
}

// formatMoney formats an amount with its currency symbol, falling back to
// the bare code for codes the symbol tables do not know.
func formatMoney(amount float64, code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return humanize.CommafWithDigits(amount, 2) + " " + code
	}
	return moneyPrinter.Sprintf("%v", currency.Symbol(unit.Amount(amount))) + " " + code
}

func renderAnswer(id int, md string, cfg Config, width int) tea.Cmd {
	return func() tea.Msg {
		out, err := glamourRender(md, cfg, width)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return renderedMsg{id: id, out: md}
		}
		return renderedMsg{id: id, out: out}
	}
}

func glamourRender(md string, cfg Config, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		utils.GlamourStyle(cfg.GlamourStyle),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("error creating glamour renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("error rendering markdown: %w", err)
	}
	return strings.Trim(out, "\n"), nil
}

func (m model) speechNote() string {
	if !m.dispatcher.Speaking() {
		return " speech off "
	}
	if m.monitor == nil {
		return " speech on "
	}

	st := m.monitor.Stats()
	switch {
	case st.Speaking && st.Pending > 0:
		return fmt.Sprintf(" speaking, %d queued ", st.Pending)
	case st.Speaking:
		return " speaking "
	default:
		return " speech on "
	}
}

func (m model) statusBarView() string {
	logo := logoView()
	speechNote := statusBarSpeechStyle(m.speechNote())

	showStatusMessage := m.statusMessage != ""

	note := m.statusMessage
	if !showStatusMessage {
		note = m.section.String()
		if m.request != nil {
			note += ": " + m.request.Describe()
		}
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(speechNote),
	)), ellipsis)
	if showStatusMessage {
		note = statusBarMessageStyle(note)
	} else {
		note = statusBarNoteStyle(note)
	}

	// Empty space
	padding := max(0,
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(speechNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showStatusMessage {
		emptySpace = statusBarMessageStyle(emptySpace)
	} else {
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	return logo + note + emptySpace + speechNote
}
