package view

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/biztrack/internal/datefilter"
)

func press(t *testing.T, p TimeframePicker, keys ...tea.KeyMsg) (TimeframePicker, tea.Msg) {
	t.Helper()

	var cmd tea.Cmd
	for _, k := range keys {
		p, cmd = p.Update(k)
	}

	if cmd == nil {
		return p, nil
	}

	return p, cmd()
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	down  = tea.KeyMsg{Type: tea.KeyDown}
	up    = tea.KeyMsg{Type: tea.KeyUp}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

func TestTimeframePicker_Fixed(t *testing.T) {
	type args struct {
		keys []tea.KeyMsg
	}

	type testCase struct {
		name string
		args args
		want TimeframeSelectedMsg
	}

	tests := []testCase{
		{
			name: "Initial selection",
			args: args{keys: []tea.KeyMsg{enter}},
			want: TimeframeSelectedMsg{Filter: datefilter.ForPeriod(datefilter.PeriodThisMonth), Label: "This Month"},
		},
		{
			name: "Move up to this week",
			args: args{keys: []tea.KeyMsg{up, enter}},
			want: TimeframeSelectedMsg{Filter: datefilter.ForPeriod(datefilter.PeriodThisWeek), Label: "This Week"},
		},
		{
			name: "Up stops at today",
			args: args{keys: []tea.KeyMsg{up, up, up, up, enter}},
			want: TimeframeSelectedMsg{Filter: datefilter.ForPeriod(datefilter.PeriodToday), Label: "Today"},
		},
		{
			name: "All time",
			args: args{keys: []tea.KeyMsg{down, enter}},
			want: TimeframeSelectedMsg{Filter: datefilter.AllTime(), Label: "All Time"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, msg := press(t, NewTimeframePicker(TimeframeThisMonth), tt.args.keys...)
			assert.Equal(t, tt.want, msg)
		})
	}
}

func TestTimeframePicker_SpecificDay(t *testing.T) {
	p, _ := press(t, NewTimeframePicker(TimeframeDate), enter)
	require.False(t, p.IsSelecting())

	_, msg := press(t, p, runes("2024-06-03"), enter)

	day := time.Date(2024, time.June, 3, 0, 0, 0, 0, time.Local)
	assert.Equal(t, TimeframeSelectedMsg{Filter: datefilter.ForDate(day), Label: "2024-06-03"}, msg)
}

func TestTimeframePicker_CustomRange(t *testing.T) {
	p, _ := press(t, NewTimeframePicker(TimeframeCustom), enter)

	p, msg := press(t, p, runes("2024-06-10"), tab, runes("2024-06-01"), enter)
	assert.Nil(t, msg, "end before start is rejected")
	assert.Contains(t, p.View(), "end date is before start date")

	p.Reset()
	p, _ = press(t, p, enter)

	_, msg = press(t, p, runes("2024-06-01"), tab, runes("2024-06-10"), enter)

	start := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.Local)
	end := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.Local)
	assert.Equal(t, TimeframeSelectedMsg{Filter: datefilter.ForRange(start, end), Label: "2024-06-01 to 2024-06-10"}, msg)
}

func TestTimeframePicker_InvalidDate(t *testing.T) {
	p, _ := press(t, NewTimeframePicker(TimeframeDate), enter)

	p, msg := press(t, p, runes("06/03/2024"), enter)
	assert.Nil(t, msg)
	assert.Contains(t, p.View(), "invalid date")
}
