// Package state tracks short-lived conversational state, currently just the
// CSV-source clarification flow: when a statement upload can't be identified
// as Revolut or AIB, the file is stashed until the user names the bank.
package state

import "sync"

// Conversation states
const (
	None                = "none"
	WaitingForCSVSource = "waiting_for_csv_source"
)

// Manager is the in-memory state store, the default when Redis is not
// configured. Fine for a single-instance bot; state is lost on restart.
type Manager struct {
	states     map[int64]string
	stashedCSV map[int64]string
	mu         sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		states:     make(map[int64]string),
		stashedCSV: make(map[int64]string),
	}
}

func (m *Manager) SetState(userID int64, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = state
}

func (m *Manager) State(userID int64) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.states[userID]
	if !ok {
		return None
	}
	return state
}

func (m *Manager) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
	delete(m.stashedCSV, userID)
}

// StashCSV holds an unidentified CSV upload while the user is asked which
// bank it came from.
func (m *Manager) StashCSV(userID int64, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stashedCSV[userID] = content
}

// TakeCSV returns and removes the stashed CSV, empty if none.
func (m *Manager) TakeCSV(userID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	content := m.stashedCSV[userID]
	delete(m.stashedCSV, userID)
	return content
}
