package view

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
)

// Timeframe is one entry of the picker menu.
type Timeframe int

const (
	TimeframeToday Timeframe = iota
	TimeframeThisWeek
	TimeframeThisMonth
	TimeframeAll
	TimeframeDate
	TimeframeCustom
)

func (t Timeframe) String() string {
	switch t {
	case TimeframeToday:
		return "Today"
	case TimeframeThisWeek:
		return "This Week"
	case TimeframeThisMonth:
		return "This Month"
	case TimeframeAll:
		return "All Time"
	case TimeframeDate:
		return "Specific Day"
	case TimeframeCustom:
		return "Custom Range"
	}

	return "Unknown"
}

// Filter returns the filter of a fixed timeframe. Date and custom
// timeframes need input and yield all time here.
func (t Timeframe) Filter() datefilter.Filter {
	switch t {
	case TimeframeToday:
		return datefilter.ForPeriod(datefilter.PeriodToday)
	case TimeframeThisWeek:
		return datefilter.ForPeriod(datefilter.PeriodThisWeek)
	case TimeframeThisMonth:
		return datefilter.ForPeriod(datefilter.PeriodThisMonth)
	}

	return datefilter.AllTime()
}

// TimeframeSelectedMsg is emitted when the user has picked a date filter.
type TimeframeSelectedMsg struct {
	Filter datefilter.Filter
	Label  string
}

type timeframeState int

const (
	timeframeStateSelect timeframeState = iota
	timeframeStateInput
)

// TimeframePicker is a reusable component for choosing a date filter.
type TimeframePicker struct {
	state    timeframeState
	selected Timeframe

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewTimeframePicker(initial Timeframe) TimeframePicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 10
	si.Width = 12
	si.Prompt = "Start Date: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 10
	ei.Width = 12
	ei.Prompt = "End Date:   "

	return TimeframePicker{
		state:      timeframeStateSelect,
		selected:   initial,
		startInput: si,
		endInput:   ei,
	}
}

func (m TimeframePicker) Init() tea.Cmd {
	return nil
}

func (m TimeframePicker) Update(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case timeframeStateSelect:
			return m.updateSelect(keyMsg)
		case timeframeStateInput:
			return m.updateInput(keyMsg)
		}
	}

	if m.state == timeframeStateInput {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m TimeframePicker) updateSelect(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > TimeframeToday {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < TimeframeCustom {
			m.selected++
		}
	case tea.KeyEnter:
		if m.selected == TimeframeDate || m.selected == TimeframeCustom {
			m.state = timeframeStateInput
			m.focusIndex = 0
			m.endInput.Blur()
			m.startInput.Prompt = "Start Date: "
			if m.selected == TimeframeDate {
				m.startInput.Prompt = "Day: "
			}

			m.startInput.Focus()

			return m, textinput.Blink
		}

		return m, selected(m.selected.Filter(), m.selected.String())
	}

	return m, nil
}

func (m TimeframePicker) updateInput(msg tea.KeyMsg) (TimeframePicker, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab":
		if m.selected == TimeframeDate {
			return m, nil
		}

		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
			return m, textinput.Blink
		}

		m.endInput.Focus()

		return m, textinput.Blink

	case "enter":
		f, label, err := m.inputFilter()
		if err != nil {
			m.err = err
			return m, nil
		}

		m.err = nil

		return m, selected(f, label)

	case "esc":
		m.state = timeframeStateSelect
		m.err = nil

		return m, nil
	}

	return m.updateInputs(msg)
}

func (m TimeframePicker) inputFilter() (datefilter.Filter, string, error) {
	start, err := datefilter.ParseDay(m.startInput.Value())
	if err != nil {
		return datefilter.Filter{}, "", errors.New("invalid date (YYYY-MM-DD)")
	}

	if m.selected == TimeframeDate {
		return datefilter.ForDate(start), FormatDate(start), nil
	}

	end, err := datefilter.ParseDay(m.endInput.Value())
	if err != nil {
		return datefilter.Filter{}, "", errors.New("invalid end date (YYYY-MM-DD)")
	}

	if end.Before(start) {
		return datefilter.Filter{}, "", errors.New("end date is before start date")
	}

	return datefilter.ForRange(start, end), FormatDate(start) + " to " + FormatDate(end), nil
}

func selected(f datefilter.Filter, label string) tea.Cmd {
	return func() tea.Msg {
		return TimeframeSelectedMsg{Filter: f, Label: label}
	}
}

func (m TimeframePicker) updateInputs(msg tea.Msg) (TimeframePicker, tea.Cmd) {
	var cmds []tea.Cmd
	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m TimeframePicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle.Render(fmt.Sprintf("\n\nError: %v", m.err))
	}

	if m.state == timeframeStateInput {
		inputs := m.startInput.View()
		if m.selected == TimeframeCustom {
			inputs += "\n" + m.endInput.View()
		}

		return fmt.Sprintf("%s:\n\n%s\n\n(Enter to confirm, Tab to switch, Esc to back)%s", m.selected, inputs, errStr)
	}

	var b strings.Builder

	b.WriteString("Select Timeframe:\n\n")

	for i := TimeframeToday; i <= TimeframeCustom; i++ {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		fmt.Fprintf(&b, "%s %s\n", cursor, i)
	}

	b.WriteString("\n(Enter to select, Esc to back)")

	return b.String() + errStr
}

// IsSelecting reports whether the picker shows the menu rather than date inputs.
func (m TimeframePicker) IsSelecting() bool {
	return m.state == timeframeStateSelect
}

func (m *TimeframePicker) Reset() {
	m.state = timeframeStateSelect
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
