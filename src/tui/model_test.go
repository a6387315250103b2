package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"versioning-backend/src/contracts"
)

func testBuilds() []contracts.CiBuild {
	return []contracts.CiBuild{
		{BuildID: "base-ubuntu-1", JobID: "job-1", Status: contracts.StatusStarted, ImageType: contracts.ImageBase},
		{BuildID: "hub-ubuntu-1", JobID: "job-2", Status: contracts.StatusFailed, ImageType: contracts.ImageHub,
			Failure: &contracts.BuildFailure{Reason: "disk full"}, Meta: contracts.BuildMeta{FailureCount: 2}},
		{BuildID: "editor-ubuntu-1", JobID: "job-3", Status: contracts.StatusPublished, ImageType: contracts.ImageEditor,
			DockerInfo: &contracts.DockerInfo{ImageRepo: "org", ImageName: "editor", SpecificTag: "1", Hash: "abc"}},
	}
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func key(m Model, k string) Model {
	var msg tea.KeyMsg
	switch k {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func TestModel_Initializing(t *testing.T) {
	m := NewModel(testBuilds())
	if !strings.Contains(m.View(), "Initializing") {
		t.Errorf("expected initializing view before the first resize")
	}
}

func TestModel_StatusFilterCycle(t *testing.T) {
	m := sized(t, NewModel(testBuilds()))
	if got := len(m.list.Items()); got != 3 {
		t.Fatalf("expected 3 items, got %d", got)
	}

	want := []struct {
		filter contracts.BuildStatus
		count  int
	}{
		{contracts.StatusStarted, 1},
		{contracts.StatusFailed, 1},
		{contracts.StatusPublished, 1},
		{"", 3},
	}
	for _, w := range want {
		m = key(m, "s")
		if m.filter != w.filter {
			t.Errorf("filter = %q, want %q", m.filter, w.filter)
		}
		if got := len(m.list.Items()); got != w.count {
			t.Errorf("filter %q: %d items, want %d", w.filter, got, w.count)
		}
	}
}

func TestModel_DetailFollowsSelection(t *testing.T) {
	m := sized(t, NewModel(testBuilds()))
	if m.selectedID() != "base-ubuntu-1" {
		t.Fatalf("selected = %q", m.selectedID())
	}

	m = key(m, "j")
	if m.selectedID() != "hub-ubuntu-1" {
		t.Errorf("selected after j = %q", m.selectedID())
	}
	if !strings.Contains(m.detail.View(), "disk full") {
		t.Errorf("detail panel should show the failure reason")
	}
}

func TestModel_FocusToggle(t *testing.T) {
	m := sized(t, NewModel(testBuilds()))
	m = key(m, "tab")
	if !m.detailFocused {
		t.Fatal("expected detail focus after tab")
	}

	// j scrolls the detail instead of moving the selection
	m = key(m, "j")
	if m.selectedID() != "base-ubuntu-1" {
		t.Errorf("selection moved while detail focused: %q", m.selectedID())
	}
}

func TestModel_EmptyFilter(t *testing.T) {
	m := sized(t, NewModel(testBuilds()[:1]))
	m = key(m, "s") // started
	m = key(m, "s") // failed
	if !strings.Contains(m.View(), "No builds match the filter.") {
		t.Errorf("expected the empty filter message")
	}
}

func TestModel_Quit(t *testing.T) {
	m := sized(t, NewModel(testBuilds()))
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}
