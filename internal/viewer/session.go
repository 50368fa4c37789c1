package viewer

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	sessionObject   = "viewer"
	sessionProperty = "session"
)

// SessionState is what the viewer remembers between runs
type SessionState struct {
	Progress float64 `yaml:"progress"`
	Scenario string  `yaml:"scenario,omitempty"`
}

// Session persists the viewer state. Without a storage manager it keeps the
// state in memory only.
type Session struct {
	manager *gdata.Manager
	state   SessionState
}

// OpenSession opens app storage, falling back to an in-memory session
func OpenSession(appName string) *Session {
	m, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[!] Хранилище сессии недоступно: %v", err)
		m = nil
	}
	s := NewSession(m)
	if err := s.Load(); err != nil {
		log.Printf("[!] Сессия не загружена: %v", err)
	}
	return s
}

func NewSession(m *gdata.Manager) *Session {
	return &Session{manager: m}
}

// Load reads the saved state. A missing record is not an error.
func (s *Session) Load() error {
	if s.manager == nil || !s.manager.ObjectPropExists(sessionObject, sessionProperty) {
		return nil
	}

	data, err := s.manager.LoadObjectProp(sessionObject, sessionProperty)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}

	var state SessionState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("unmarshal session: %w", err)
	}
	s.state = state
	return nil
}

// Save writes the current state
func (s *Session) Save() error {
	if s.manager == nil {
		return nil
	}

	data, err := yaml.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.manager.SaveObjectProp(sessionObject, sessionProperty, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Session) State() SessionState {
	return s.state
}

// Restore returns the saved progress if it belongs to scenario
func (s *Session) Restore(scenario string) (float64, bool) {
	if s.state.Scenario != scenario {
		return 0, false
	}
	return s.state.Progress, true
}

func (s *Session) Remember(scenario string, progress float64) {
	s.state = SessionState{Progress: progress, Scenario: scenario}
}
