package cli

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	mio "github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/masonry"
)

func newTestViewModel(src itemSource) *viewModel {
	return newViewModel(src, masonry.Options{Width: 300}, 20, log.New(io.Discard))
}

// frames delivers n frame messages.
func frames(m *viewModel, n int) {
	for range n {
		m.Update(frameMsg{})
	}
}

func TestViewMountsOnFirstResize(t *testing.T) {
	m := newTestViewModel(sliceSource(mio.Sample(0, 100)))
	if got := m.View(); !strings.Contains(got, "measuring") {
		t.Errorf("View() before sizing = %q", got)
	}

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	frames(m, 300)

	if got := m.wall.ColumnCount(); got != 2 {
		t.Errorf("ColumnCount() = %d, want 2", got)
	}
	if len(m.items) != 20 {
		t.Errorf("revealed %d items before scrolling, want 20", len(m.items))
	}
	if got := m.wall.Cursor(); got != 20 {
		t.Errorf("Cursor() = %d, want 20", got)
	}
	if !strings.Contains(m.View(), "Item 1") {
		t.Error("View() should show the first item")
	}
}

func TestViewAppendsOnScrollToBottom(t *testing.T) {
	m := newTestViewModel(sliceSource(mio.Sample(0, 100)))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	frames(m, 300)

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	frames(m, 300)

	if len(m.items) <= 20 {
		t.Fatalf("revealed %d items after scrolling, want more than 20", len(m.items))
	}
	if got := m.wall.Cursor(); got != len(m.items) {
		t.Errorf("Cursor() = %d, want every revealed item placed (%d)", got, len(m.items))
	}
}

func TestViewStopsWhenSourceIsExhausted(t *testing.T) {
	m := newTestViewModel(sliceSource(mio.Sample(0, 25)))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	frames(m, 300)

	for range 5 {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
		frames(m, 300)
	}

	if len(m.items) != 25 {
		t.Errorf("revealed %d items, want 25", len(m.items))
	}
	if got := m.wall.Cursor(); got != 25 {
		t.Errorf("Cursor() = %d, want 25", got)
	}
	if !m.done {
		t.Error("model should mark the source exhausted")
	}
}

func TestViewResizeChangesColumns(t *testing.T) {
	m := newTestViewModel(sliceSource(mio.Sample(0, 40)))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	frames(m, 300)

	m.Update(tea.WindowSizeMsg{Width: 160, Height: 30})
	frames(m, 300)

	if got := m.wall.ColumnCount(); got != 4 {
		t.Errorf("ColumnCount() after widening = %d, want 4", got)
	}
	if got := m.wall.Cursor(); got != len(m.items) {
		t.Errorf("Cursor() = %d, want %d", got, len(m.items))
	}
}

func TestViewQuit(t *testing.T) {
	m := newTestViewModel(sliceSource(mio.Sample(0, 10)))
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("quit key should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit key should return tea.Quit")
	}
	if m.wall.State() != masonry.StateDestroyed {
		t.Errorf("State() = %v, want destroyed", m.wall.State())
	}
}

func TestVisibleLines(t *testing.T) {
	text := "a\nb\nc\nd\ne"
	tests := []struct {
		name      string
		scrollTop float64
		rows      int
		want      string
	}{
		{"top", 0, 2, "a\nb"},
		{"middle", 40, 2, "c\nd"},
		{"clamped", 100, 2, "d\ne"},
		{"padded", 0, 7, "a\nb\nc\nd\ne\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := visibleLines(text, tt.scrollTop, 100, tt.rows); got != tt.want {
				t.Errorf("visibleLines() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestViewSourceSamples(t *testing.T) {
	src, err := viewSource(nil, 30)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(src(0, 20)); got != 20 {
		t.Errorf("first page = %d items, want 20", got)
	}
	if got := len(src(20, 20)); got != 10 {
		t.Errorf("second page = %d items, want 10", got)
	}
	if got := len(src(30, 20)); got != 0 {
		t.Errorf("past the end = %d items, want 0", got)
	}
}
