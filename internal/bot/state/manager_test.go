package state

import "testing"

func TestManager_StateLifecycle(t *testing.T) {
	m := NewManager()

	if got := m.State(1); got != None {
		t.Errorf("fresh state = %q, want %q", got, None)
	}

	m.SetState(1, WaitingForCSVSource)
	if got := m.State(1); got != WaitingForCSVSource {
		t.Errorf("state = %q", got)
	}
	if got := m.State(2); got != None {
		t.Errorf("other user state = %q, want %q", got, None)
	}

	m.ClearState(1)
	if got := m.State(1); got != None {
		t.Errorf("cleared state = %q, want %q", got, None)
	}
}

func TestManager_CSVStash(t *testing.T) {
	m := NewManager()

	m.StashCSV(1, "Type,Product,Started Date\n")
	if got := m.TakeCSV(1); got != "Type,Product,Started Date\n" {
		t.Errorf("take = %q", got)
	}
	if got := m.TakeCSV(1); got != "" {
		t.Errorf("second take = %q, want empty", got)
	}
}

func TestManager_ClearDropsStash(t *testing.T) {
	m := NewManager()

	m.StashCSV(1, "content")
	m.SetState(1, WaitingForCSVSource)
	m.ClearState(1)
	if got := m.TakeCSV(1); got != "" {
		t.Errorf("stash after clear = %q, want empty", got)
	}
}
