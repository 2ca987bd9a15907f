package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type modelState int

const (
	stateInput modelState = iota
	stateShowTrace
)

type interactiveModel struct {
	err   error
	trace *trace
	input textinput.Model
	width int
	guest bool
	state modelState
}

type traceMsg struct {
	err   error
	trace *trace
}

func newInteractiveModel(initial []string, guest bool) *interactiveModel {
	ti := textinput.New()
	ti.Placeholder = "red green red blue"
	ti.Prompt = "words: "
	ti.Width = 60
	ti.SetValue(strings.Join(initial, " "))
	ti.Focus()
	return &interactiveModel{
		input: ti,
		width: terminalWidth(),
		guest: guest,
		state: stateInput,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *interactiveModel) run() tea.Msg {
	words := strings.Fields(m.input.Value())
	t, err := roundTrip(context.Background(), words, m.guest)
	return traceMsg{trace: t, err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state == stateShowTrace {
				return m, tea.Quit
			}

		case "ctrl+g":
			m.guest = !m.guest

		case "enter":
			switch m.state {
			case stateInput:
				return m, m.run
			case stateShowTrace:
				m.state = stateInput
				m.trace = nil
				m.err = nil
				m.input.Focus()
				return m, textinput.Blink
			}

		case "esc":
			if m.state == stateShowTrace {
				m.state = stateInput
				m.trace = nil
				m.err = nil
				m.input.Focus()
				return m, textinput.Blink
			}
			m.input.SetValue("")
		}

	case traceMsg:
		m.trace = msg.trace
		m.err = msg.err
		m.state = stateShowTrace
		m.input.Blur()
		return m, nil
	}

	if m.state == stateInput {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	switch m.state {
	case stateInput:
		b.WriteString(titleStyle.Render("Attachment trace"))
		carrier := "host buffer"
		if m.guest {
			carrier = "guest memory"
		}
		b.WriteString(" " + carrier + "\n\n")
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter run • ctrl+g toggle guest memory • esc clear • ctrl+c quit"))

	case stateShowTrace:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(renderTrace(m.trace, m.width))
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter edit • q quit"))
	}

	return b.String()
}

func runInteractive(initial []string, guest bool) error {
	p := tea.NewProgram(newInteractiveModel(initial, guest), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
