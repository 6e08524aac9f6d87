package tui

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/photo-timestamper/internal/batch"
	"github.com/handiism/photo-timestamper/internal/config"
	"github.com/handiism/photo-timestamper/internal/model"
	"github.com/handiism/photo-timestamper/internal/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, styles ...string) Model {
	t.Helper()

	dir := t.TempDir()
	for _, name := range styles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".yml"), []byte("font: {}\n"), 0644))
	}

	settings := config.DefaultSettings()
	settings.UI.LastStyle = "SONY"
	return NewModel(Options{
		Settings: settings,
		Styles:   style.NewManager(dir, "", nil),
	})
}

func press(m Model, key tea.KeyType) Model {
	next, _ := m.Update(tea.KeyMsg{Type: key})
	return next.(Model)
}

func TestModel_StyleCycling(t *testing.T) {
	m := newTestModel(t, "CANON", "SONY", "custom")
	assert.Equal(t, "SONY", m.Style())

	m = press(m, tea.KeyTab)
	assert.Equal(t, "custom", m.Style())
	m = press(m, tea.KeyTab)
	assert.Equal(t, "CANON", m.Style())
	m = press(m, tea.KeyShiftTab)
	assert.Equal(t, "custom", m.Style())
}

func TestModel_NoStyles(t *testing.T) {
	m := newTestModel(t)
	assert.Empty(t, m.Style())

	m.textInput.SetValue("/photos")
	m = press(m, tea.KeyEnter)
	assert.Equal(t, StateError, m.state)
	assert.Error(t, m.err)
}

func TestModel_InputPaths(t *testing.T) {
	m := newTestModel(t, "CANON")
	m.session = []string{"/last/a.jpg"}

	assert.Equal(t, []string{"/last/a.jpg"}, m.inputPaths())

	m.textInput.SetValue(" /a , /b.jpg,, ")
	assert.Equal(t, []string{"/a", "/b.jpg"}, m.inputPaths())
}

func TestModel_Toggles(t *testing.T) {
	m := newTestModel(t, "CANON")

	m = press(m, tea.KeyCtrlR)
	m = press(m, tea.KeyCtrlO)
	m = press(m, tea.KeyCtrlL)
	assert.True(t, m.recursive)
	assert.True(t, m.overwrite)
	assert.True(t, m.verbose)
}

func TestModel_BatchMessages(t *testing.T) {
	m := newTestModel(t, "CANON")
	m.state = StateStamping

	next, _ := m.Update(EventMsg{Event: batch.Event{Kind: batch.EventMessage, Message: batch.Message{Text: "hidden", Level: batch.LevelVerbose}}})
	m = next.(Model)
	assert.Empty(t, m.logs)

	next, _ = m.Update(EventMsg{Event: batch.Event{Kind: batch.EventProgress, Current: 2, Total: 4, Path: "/p/b.jpg"}})
	m = next.(Model)
	assert.Equal(t, 2, m.current)
	assert.Equal(t, 4, m.total)

	next, _ = m.Update(BatchDoneMsg{Result: model.BatchResult{SuccessCount: 4}})
	m = next.(Model)
	assert.Equal(t, StateComplete, m.state)
	assert.Contains(t, m.View(), "Stamped: 4")
}

func TestAppendLog_KeepsTail(t *testing.T) {
	var logs []LogEntry
	for i := 0; i < maxLogs+5; i++ {
		logs = appendLog(logs, LogEntry{Message: string(rune('a' + i))})
	}
	assert.Len(t, logs, maxLogs)
	assert.Equal(t, string(rune('a'+5)), logs[0].Message)
}

func TestModel_FirstRunHint(t *testing.T) {
	m := newTestModel(t, "CANON")
	cfg := filepath.Join(t.TempDir(), "settings.json")
	m.opts.ConfigPath = cfg
	require.True(t, m.opts.Settings.General.FirstRun)
	assert.Contains(t, m.View(), "Welcome!")

	m.state = StateStamping
	next, _ := m.Update(BatchDoneMsg{Result: model.BatchResult{SuccessCount: 1}})
	m = next.(Model)
	assert.False(t, m.opts.Settings.General.FirstRun)

	saved, err := config.Load(cfg)
	require.NoError(t, err)
	assert.False(t, saved.General.FirstRun)
	assert.Equal(t, "CANON", saved.UI.LastStyle)

	m.state = StateInput
	assert.NotContains(t, m.View(), "Welcome!")
}
