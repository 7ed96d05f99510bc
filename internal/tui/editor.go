// Package tui is an interactive terminal editor over a preset session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/pam/internal/apply"
	"github.com/san-kum/pam/internal/lifecycle"
	"github.com/san-kum/pam/internal/preset"
)

type state int

const (
	stateMenu state = iota
	stateEdit
	stateName
	stateConfirm
)

// Gate is the session confirmer used by the editor. A closed gate declines
// and records the prompt so the editor can ask in its own view first.
type Gate struct {
	open   bool
	prompt string
}

func (g *Gate) Confirm(prompt string) bool {
	g.prompt = prompt
	return g.open
}

// action runs a session operation against the model it was started from.
type action func(m *model) error

type model struct {
	ctx     context.Context
	sess    *lifecycle.Session
	gate    *Gate
	targets []string

	state  state
	names  []string
	cursor int

	live        preset.Snapshot
	fields      []preset.Field
	fieldCursor int
	editing     bool
	editBuf     string
	nameBuf     string

	prompt  string
	pending action
	back    state

	status string
	err    error

	width, height int
}

func newModel(ctx context.Context, sess *lifecycle.Session, gate *Gate, targets []string) model {
	m := model{
		ctx:     ctx,
		sess:    sess,
		gate:    gate,
		targets: targets,
		fields:  preset.Fields(),
		live:    preset.SnapshotOf(sess.Editor().Original()),
		width:   80, height: 24,
	}
	m.refresh()
	return m
}

// Run shows the editor until the user quits. sess must have been opened
// with gate as its confirmer.
func Run(ctx context.Context, sess *lifecycle.Session, gate *Gate, targets []string) error {
	_, err := tea.NewProgram(newModel(ctx, sess, gate, targets), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.state {
	case stateMenu:
		return m.menuKey(msg)
	case stateEdit:
		return m.editKey(msg)
	case stateName:
		return m.nameKey(msg)
	case stateConfirm:
		return m.confirmKey(msg)
	}
	return m, nil
}

func (m model) menuKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.names)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.names) == 0 {
			break
		}
		m.clearStatus()
		p, err := m.sess.Select(m.names[m.cursor])
		if err != nil {
			m.err = err
			break
		}
		m.live = preset.SnapshotOf(p)
		m.state, m.fieldCursor = stateEdit, 0
	case "d":
		if len(m.names) > 0 {
			m.try(deleteAction(m.names[m.cursor]))
		}
	}
	return m, nil
}

func (m model) editKey(msg tea.KeyMsg) (model, tea.Cmd) {
	f := m.fields[m.fieldCursor]
	if m.editing {
		switch msg.String() {
		case "enter":
			v, err := strconv.ParseFloat(strings.TrimSpace(m.editBuf), 64)
			if err != nil {
				m.err = fmt.Errorf("%s: %q is not a number", f.Label, m.editBuf)
			} else {
				m.setField(f, v)
			}
			m.editing, m.editBuf = false, ""
		case "esc":
			m.editing, m.editBuf = false, ""
		case "backspace":
			if len(m.editBuf) > 0 {
				m.editBuf = m.editBuf[:len(m.editBuf)-1]
			}
		default:
			if len(msg.String()) == 1 {
				c := msg.String()[0]
				if (c >= '0' && c <= '9') || c == '.' || c == '-' {
					m.editBuf += string(c)
				}
			}
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "esc":
		m.clearStatus()
		m.state = stateMenu
		m.refresh()
	case "up", "k":
		if m.fieldCursor > 0 {
			m.fieldCursor--
		}
	case "down", "j":
		if m.fieldCursor < len(m.fields)-1 {
			m.fieldCursor++
		}
	case "left", "h":
		m.setField(f, onGrid(f, f.Get(m.live.Params)-f.Step))
	case "right", "l":
		m.setField(f, onGrid(f, f.Get(m.live.Params)+f.Step))
	case "enter", " ":
		if f.Kind == preset.KindEnum {
			next := f.Get(m.live.Params) + 1
			if next > f.Max {
				next = f.Min
			}
			m.setField(f, next)
			break
		}
		m.clearStatus()
		m.editing, m.editBuf = true, ""
	case "s":
		m.clearStatus()
		m.state, m.nameBuf = stateName, ""
	case "d":
		m.try(deleteAction(m.sess.Editor().Original().Name()))
	case "r":
		m.clearStatus()
		m.sess.Editor().Reset()
		m.live = preset.SnapshotOf(m.sess.Editor().Original())
		m.status = "reset to " + preset.NameCustom
	case "a":
		if len(m.targets) == 0 {
			m.err = apply.ErrNoTargets
			break
		}
		m.try(applyAction)
	case "c":
		if len(m.targets) == 0 {
			m.err = apply.ErrNoTargets
			break
		}
		m.try(collideAction)
	}
	return m, nil
}

func (m model) nameKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.try(saveAction(m.nameBuf))
	case tea.KeyEsc:
		m.clearStatus()
		m.state, m.nameBuf = stateEdit, ""
	case tea.KeyBackspace:
		if r := []rune(m.nameBuf); len(r) > 0 {
			m.nameBuf = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.nameBuf += " "
	case tea.KeyRunes:
		m.nameBuf += string(msg.Runes)
	}
	return m, nil
}

func (m model) confirmKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		run := m.pending
		m.state, m.pending, m.prompt = m.back, nil, ""
		m.gate.open = true
		err := run(&m)
		m.gate.open = false
		if err != nil {
			m.err = err
		}
	case "n", "N", "esc", "q":
		m.state, m.pending, m.prompt = m.back, nil, ""
		m.status = "canceled"
	}
	return m, nil
}

// try runs a with the gate closed. When the session asked for confirmation
// the editor switches to its prompt and runs a again on approval.
func (m *model) try(a action) {
	m.clearStatus()
	m.gate.prompt = ""
	err := a(m)
	if errors.Is(err, lifecycle.ErrCanceled) && m.gate.prompt != "" {
		m.back, m.state = m.state, stateConfirm
		m.prompt, m.pending = m.gate.prompt, a
		return
	}
	m.err = err
}

func saveAction(name string) action {
	return func(m *model) error {
		snap := m.live
		snap.Name = name
		p, err := m.sess.Save(snap)
		if err != nil {
			return err
		}
		m.live = preset.SnapshotOf(p)
		m.state, m.nameBuf = stateEdit, ""
		m.status = "saved " + p.Name()
		m.refresh()
		return nil
	}
}

func deleteAction(name string) action {
	return func(m *model) error {
		if err := m.sess.Delete(name); err != nil {
			return err
		}
		m.live = preset.SnapshotOf(m.sess.Editor().Original())
		m.status = "deleted " + strings.TrimSpace(name)
		m.refresh()
		return nil
	}
}

func applyAction(m *model) error {
	p, err := m.sess.Apply(m.ctx, m.live, m.targets)
	if err != nil {
		return err
	}
	m.status = fmt.Sprintf("applied %s to %s", p.Name(), strings.Join(m.targets, ", "))
	return nil
}

func collideAction(m *model) error {
	if err := m.sess.Collide(m.ctx, m.targets); err != nil {
		return err
	}
	m.status = "passive collider on " + strings.Join(m.targets, ", ")
	return nil
}

// onGrid moves v onto the step grid of f.
func onGrid(f preset.Field, v float64) float64 {
	if f.Step <= 0 {
		return v
	}
	return math.Round(v/f.Step) * f.Step
}

// setField clamps v to the slider range of f and updates the displayed name.
func (m *model) setField(f preset.Field, v float64) {
	next, err := m.live.Set(f.Key, f.Clamp(v))
	if err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.live = next
	m.live.Name = m.sess.Editor().DisplayName(m.live)
}

func (m *model) refresh() {
	m.names = m.sess.Catalog().Selectable()
	if m.cursor >= len(m.names) {
		m.cursor = len(m.names) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *model) clearStatus() {
	m.status, m.err = "", nil
}

func (m model) View() string {
	var body string
	switch m.state {
	case stateMenu:
		body = m.viewMenu()
	case stateEdit:
		body = m.viewEdit()
	case stateName:
		body = m.viewEdit() + "\n    " + title.Render("save as ") + active.Render(m.nameBuf+"_") + "\n"
	case stateConfirm:
		body = m.viewEdit() + "\n    " + panel.Render(changed.Render(m.prompt)+"  "+hints("y", "yes", "n", "no")) + "\n"
	}
	return body + m.viewStatus()
}

func (m model) viewMenu() string {
	var b strings.Builder
	b.WriteString("\n\n    " + title.Render("PAM") + "\n    " + sub.Render("nCloth preset manager") + "\n    " + separator(25) + "\n\n")
	for i, name := range m.names {
		desc := ""
		if p, ok := m.sess.Catalog().Get(name); ok {
			desc = p.Description()
		}
		if len(desc) > 40 {
			desc = desc[:37] + "..."
		}
		if i == m.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", pointer.Render("▸"), active.Render(fmt.Sprintf("%-16s", name)), value.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", muted.Render(fmt.Sprintf("  %-16s", name)), dimmer.Render(desc)))
		}
	}
	b.WriteString("\n    " + hints("j/k", "navigate", "enter", "edit", "d", "delete", "q", "quit") + "\n")
	return b.String()
}

func (m model) viewEdit() string {
	var b strings.Builder
	ed := m.sess.Editor()
	name := title.Render(m.live.Name)
	if ed.Changed(m.live) {
		name = changed.Render(m.live.Name)
	}
	b.WriteString("\n\n    " + name + "\n    " + sub.Render(truncate(m.live.Description, 60)) + "\n    " + separator(25) + "\n\n")

	base := ed.Baseline().Params
	for i, f := range m.fields {
		val := f.Format(m.live.Params)
		if m.editing && i == m.fieldCursor {
			val = m.editBuf + "_"
		}
		mark := " "
		if f.Get(m.live.Params) != f.Get(base) {
			mark = changed.Render("•")
		}
		bar := sliderBar(f.Get(m.live.Params), f.Min, f.Max, 16)
		if i == m.fieldCursor {
			b.WriteString(fmt.Sprintf("    %s%s %s %s %s\n", pointer.Render("▸"), mark, active.Render(fmt.Sprintf("%-24s", f.Label)), value.Render(fmt.Sprintf("%22s", val)), bar))
		} else {
			b.WriteString(fmt.Sprintf("     %s %s %s %s\n", mark, muted.Render(fmt.Sprintf("%-24s", f.Label)), dimmer.Render(fmt.Sprintf("%22s", val)), bar))
		}
	}

	if n := len(ed.Changes(m.live)); n > 0 {
		b.WriteString("\n    " + changed.Render(fmt.Sprintf("%d changed from %s", n, ed.Original().Name())) + "\n")
	}
	b.WriteString("\n    " + hints("j/k", "select", "h/l", "adjust", "enter", "edit", "s", "save", "d", "delete", "r", "reset", "a", "apply", "c", "collider", "esc", "back") + "\n")
	return b.String()
}

func (m model) viewStatus() string {
	switch {
	case m.err != nil:
		return "\n    " + bad.Render(m.err.Error()) + "\n"
	case m.status != "":
		return "\n    " + good.Render(m.status) + "\n"
	}
	return ""
}

// truncate shortens s to at most n runes, ending in an ellipsis when cut.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
