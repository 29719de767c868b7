package ui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/convertpro/internal/convert"
	"github.com/charmbracelet/convertpro/internal/speech"
	"github.com/charmbracelet/convertpro/internal/units"
	"github.com/muesli/reflow/ansi"
)

type fakeDispatcher struct {
	speak     bool
	canSpeak  bool
	requests  []convert.Request
	heard     string
	listenReq convert.Request
	listenRes convert.Result
}

func (f *fakeDispatcher) Dispatch(_ context.Context, req convert.Request) convert.Result {
	f.requests = append(f.requests, req)
	return convert.Numeric(42, "mile")
}

func (f *fakeDispatcher) Listen(context.Context) (string, convert.Request, convert.Result) {
	return f.heard, f.listenReq, f.listenRes
}

func (f *fakeDispatcher) SetSpeak(on bool) { f.speak = on && f.canSpeak }
func (f *fakeDispatcher) Speaking() bool   { return f.speak }

type fakeMonitor struct{ stats speech.Stats }

func (f fakeMonitor) Stats() speech.Stats { return f.stats }

func testModel(d *fakeDispatcher) model {
	cfg := Config{GlamourStyle: "dark", Currencies: []string{"USD", "EUR"}}
	return newModel(context.Background(), cfg, d, nil)
}

func update(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	mm, ok := next.(model)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return mm, cmd
}

func typeText(t *testing.T, m model, s string) model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	return m
}

// TestSectionNavigation tests switching tabs in both directions.
func TestSectionNavigation(t *testing.T) {
	m := testModel(&fakeDispatcher{})
	if m.section != unitSection {
		t.Fatalf("start section = %v, want %v", m.section, unitSection)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.section != currencySection {
		t.Errorf("after ctrl+n section = %v, want %v", m.section, currencySection)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlP})
	if m.section != askSection {
		t.Errorf("after wrap section = %v, want %v", m.section, askSection)
	}
}

// TestStartSection tests the configured start tab.
func TestStartSection(t *testing.T) {
	tests := map[string]section{
		"":         unitSection,
		"unit":     unitSection,
		"Currency": currencySection,
		"ask":      askSection,
		"ai":       askSection,
		"bogus":    unitSection,
	}
	for in, want := range tests {
		if got := parseSection(in); got != want {
			t.Errorf("parseSection(%q) = %v, want %v", in, got, want)
		}
	}
}

// TestFormRequest tests building requests from typed input.
func TestFormRequest(t *testing.T) {
	m := testModel(&fakeDispatcher{})

	m = typeText(t, m, "1,500")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "meter")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "foot")

	req, failure := m.formRequest()
	if failure != nil {
		t.Fatalf("formRequest() failure = %v", failure)
	}
	want := convert.UnitRequest{Value: 1500, From: "meter", To: "foot"}
	if req != want {
		t.Errorf("formRequest() = %#v, want %#v", req, want)
	}

	m.focusSection(currencySection)
	m.forms[currencySection].setValue(1, "usd")
	m.forms[currencySection].setValue(2, "eur")
	req, _ = m.formRequest()
	wantCur := convert.CurrencyRequest{Amount: 1, From: "USD", To: "EUR"}
	if req != wantCur {
		t.Errorf("formRequest() = %#v, want %#v", req, wantCur)
	}
}

// TestUnitCategories tests cycling the unit categories with the arrow keys.
func TestUnitCategories(t *testing.T) {
	cats := units.Categories()
	m := testModel(&fakeDispatcher{})
	if len(m.cfg.UnitCategories) != len(cats) {
		t.Fatalf("categories = %d, want %d", len(m.cfg.UnitCategories), len(cats))
	}

	placeholders := func(m model) (string, string) {
		f := m.forms[unitSection]
		return f.fields[1].input.Placeholder, f.fields[2].input.Placeholder
	}
	if from, to := placeholders(m); from != "meter" || to != "kilometer" {
		t.Errorf("placeholders = %q %q, want meter kilometer", from, to)
	}

	m.forms[unitSection].setValue(1, "inch")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.category != 1 {
		t.Fatalf("category = %d, want 1", m.category)
	}
	if m.forms[unitSection].value(1) != "" {
		t.Error("typed unit survived a category change")
	}
	if from, to := placeholders(m); from != cats[1].Units[0] || to != cats[1].Units[1] {
		t.Errorf("placeholders = %q %q", from, to)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if want := len(cats) - 1; m.category != want {
		t.Errorf("category after wrap = %d, want %d", m.category, want)
	}

	view := m.View()
	last := cats[len(cats)-1]
	if !strings.Contains(view, last.Name) {
		t.Errorf("view lacks category %q", last.Name)
	}
	for _, u := range last.Units {
		if !strings.Contains(view, u) {
			t.Errorf("view lacks unit %q", u)
		}
	}
}

// TestUnitCategoriesOnlyInUnitTab tests that the arrow keys leave the
// other tabs alone.
func TestUnitCategoriesOnlyInUnitTab(t *testing.T) {
	m := testModel(&fakeDispatcher{})
	m.focusSection(currencySection)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.category != 0 {
		t.Errorf("category = %d in the currency tab", m.category)
	}
	if strings.Contains(m.View(), "nautical mile") {
		t.Error("currency tab shows the unit list")
	}
}

// TestFormRequestDefaults tests that empty unit fields use the category
// defaults.
func TestFormRequestDefaults(t *testing.T) {
	m := testModel(&fakeDispatcher{})
	for range 4 {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	}
	m = typeText(t, m, "100")

	req, failure := m.formRequest()
	if failure != nil {
		t.Fatalf("formRequest() failure = %v", failure)
	}
	want := convert.UnitRequest{Value: 100, From: "celsius", To: "fahrenheit"}
	if req != want {
		t.Errorf("formRequest() = %#v, want %#v", req, want)
	}
}

// TestFillFormSelectsCategory tests that a spoken unit request switches to
// its category.
func TestFillFormSelectsCategory(t *testing.T) {
	m := testModel(&fakeDispatcher{})
	m.fillForm(convert.UnitRequest{Value: 2, From: "Horsepower", To: "kilowatt"})

	if got := m.cfg.UnitCategories[m.category].Name; got != "Power" {
		t.Errorf("category = %q, want Power", got)
	}
	f := m.forms[unitSection]
	if f.value(1) != "Horsepower" || f.value(2) != "kilowatt" {
		t.Errorf("form = %q %q", f.value(1), f.value(2))
	}

	m.fillForm(convert.UnitRequest{Value: 2, From: "furlong", To: "meter"})
	if got := m.cfg.UnitCategories[m.category].Name; got != "Power" {
		t.Errorf("unknown unit changed category to %q", got)
	}
}

// TestSubmitInvalidNumber tests that a bad amount fails without dispatching.
func TestSubmitInvalidNumber(t *testing.T) {
	d := &fakeDispatcher{}
	m := testModel(d)
	m = typeText(t, m, "abc")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.busy {
		t.Error("model busy after invalid input")
	}
	if m.result == nil || !errors.Is(m.result.Err(), convert.ErrNumericParse) {
		t.Fatalf("result = %+v, want numeric parse failure", m.result)
	}
	if len(d.requests) != 0 {
		t.Errorf("dispatched %d requests, want 0", len(d.requests))
	}
}

// TestSubmitEmptyQuestion tests that an empty question shows a hint.
func TestSubmitEmptyQuestion(t *testing.T) {
	m := testModel(&fakeDispatcher{})
	m.focusSection(askSection)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.busy || cmd == nil {
		t.Fatalf("busy = %v, cmd = %v", m.busy, cmd)
	}
	if m.statusMessage == "" {
		t.Error("expected a status message")
	}
}

// TestSubmitDispatches tests the full submit round trip.
func TestSubmitDispatches(t *testing.T) {
	d := &fakeDispatcher{}
	m := testModel(d)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.busy || cmd == nil {
		t.Fatalf("busy = %v, cmd = %v", m.busy, cmd)
	}

	req, _ := m.formRequest()
	msg := dispatchCmd(context.Background(), d, req)()
	m, _ = update(t, m, msg)

	if m.busy {
		t.Error("still busy after result")
	}
	if m.result == nil || m.result.Value != 42 {
		t.Fatalf("result = %+v", m.result)
	}
	if !strings.Contains(m.rendered, "42 mile") {
		t.Errorf("rendered = %q", m.rendered)
	}

	// A second enter while busy must not dispatch again.
	m.busy = true
	if _, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("submit while busy returned a command")
	}
}

// TestListenFillsForm tests that a spoken request lands in its tab.
func TestListenFillsForm(t *testing.T) {
	d := &fakeDispatcher{
		heard:     "convert 5 gbp to usd",
		listenReq: convert.CurrencyRequest{Amount: 5, From: "GBP", To: "USD"},
		listenRes: convert.Numeric(6.35, "USD"),
	}
	m := testModel(d)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})
	if !m.busy || !m.listening || cmd == nil {
		t.Fatalf("busy = %v, listening = %v", m.busy, m.listening)
	}

	m, _ = update(t, m, listenCmd(context.Background(), d)())
	if m.section != currencySection {
		t.Errorf("section = %v, want %v", m.section, currencySection)
	}
	f := m.forms[currencySection]
	if f.value(0) != "5" || f.value(1) != "GBP" || f.value(2) != "USD" {
		t.Errorf("form = %q %q %q", f.value(0), f.value(1), f.value(2))
	}
	if m.heard != d.heard {
		t.Errorf("heard = %q", m.heard)
	}
	if !strings.Contains(m.View(), "You said: convert 5 gbp to usd") {
		t.Error("view does not echo the utterance")
	}
}

// TestListenFailure tests a recognition failure.
func TestListenFailure(t *testing.T) {
	d := &fakeDispatcher{
		listenRes: convert.Fail(convert.KindSpeechRecognitionFailed, "Could not understand audio.", nil),
	}
	m := testModel(d)

	m, _ = update(t, m, listenCmd(context.Background(), d)())
	if m.section != unitSection {
		t.Errorf("section changed to %v", m.section)
	}
	if !strings.Contains(m.rendered, "Could not understand audio.") {
		t.Errorf("rendered = %q", m.rendered)
	}
}

// TestToggleSpeech tests the speech toggle and its status messages.
func TestToggleSpeech(t *testing.T) {
	d := &fakeDispatcher{canSpeak: true}
	m := testModel(d)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !d.Speaking() || m.statusMessage != "Speech on" {
		t.Errorf("speaking = %v, status = %q", d.Speaking(), m.statusMessage)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if d.Speaking() || m.statusMessage != "Speech off" {
		t.Errorf("speaking = %v, status = %q", d.Speaking(), m.statusMessage)
	}

	d.canSpeak = false
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if m.statusMessage != "Speech output is not available" {
		t.Errorf("status = %q", m.statusMessage)
	}
}

// TestStatusMessageTimeout tests that only the latest message is cleared.
func TestStatusMessageTimeout(t *testing.T) {
	m := testModel(&fakeDispatcher{})
	m.showStatusMessage("first")
	m.showStatusMessage("second")

	m, _ = update(t, m, statusMessageTimeoutMsg{id: 1})
	if m.statusMessage != "second" {
		t.Errorf("status = %q, stale timeout cleared it", m.statusMessage)
	}
	m, _ = update(t, m, statusMessageTimeoutMsg{id: 2})
	if m.statusMessage != "" {
		t.Errorf("status = %q, want empty", m.statusMessage)
	}
}

// TestStaleRender tests that a slow render of an old answer is ignored.
func TestStaleRender(t *testing.T) {
	m := testModel(&fakeDispatcher{})
	m.setResult(convert.FreeTextRequest{Query: "a"}, convert.Answer("old"))
	m.setResult(convert.FreeTextRequest{Query: "b"}, convert.Answer("new"))

	m, _ = update(t, m, renderedMsg{id: 1, out: "old rendered"})
	if m.rendered != "new" {
		t.Errorf("rendered = %q", m.rendered)
	}
	m, _ = update(t, m, renderedMsg{id: 2, out: "new rendered"})
	if m.rendered != "new rendered" {
		t.Errorf("rendered = %q", m.rendered)
	}
}

// TestStatusBarWidth tests that the status bar fills the window exactly.
func TestStatusBarWidth(t *testing.T) {
	for _, width := range []int{60, 120} {
		d := &fakeDispatcher{canSpeak: true, speak: true}
		m := newModel(context.Background(), Config{GlamourStyle: "dark"}, d, fakeMonitor{
			stats: speech.Stats{Speaking: true, Pending: 3},
		})
		m, _ = update(t, m, tea.WindowSizeMsg{Width: width, Height: 20})
		m.request = convert.FreeTextRequest{Query: strings.Repeat("very long question ", 10)}

		bar := m.statusBarView()
		if got := ansi.PrintableRuneWidth(bar); got != width {
			t.Errorf("width %d: status bar is %d wide", width, got)
		}
		if !strings.Contains(bar, "speaking, 3 queued") {
			t.Errorf("status bar %q lacks the queue state", bar)
		}
	}
}

// TestFormatMoney tests currency formatting.
func TestFormatMoney(t *testing.T) {
	got := formatMoney(1234.5, "USD")
	if !strings.Contains(got, "$") || !strings.Contains(got, "234") || !strings.HasSuffix(got, "USD") {
		t.Errorf("formatMoney(USD) = %q", got)
	}

	got = formatMoney(3, "ZZZZ")
	if got != "3 ZZZZ" {
		t.Errorf("formatMoney(ZZZZ) = %q", got)
	}
}
