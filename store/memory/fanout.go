package memory

import (
	"context"
	"sync"

	"github.com/dialwise/evalpipe/core"
)

// NotificationStore is a volatile core.NotificationStore.
type NotificationStore struct {
	mu            sync.RWMutex
	notifications []*core.Notification
}

var _ core.NotificationStore = (*NotificationStore)(nil)

// NewNotificationStore constructs an empty in-memory notification store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

// Insert appends a copy of the notification.
func (s *NotificationStore) Insert(_ context.Context, n *core.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *n
	s.notifications = append(s.notifications, &clone)
	return nil
}

// All returns a snapshot of every stored notification, for tests.
func (s *NotificationStore) All() []*core.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// CalendarStore is a volatile core.CalendarStore keyed by session id.
type CalendarStore struct {
	mu      sync.RWMutex
	entries map[string]*core.CalendarEntry // sessionID -> entry
}

var _ core.CalendarStore = (*CalendarStore)(nil)

// NewCalendarStore constructs an empty in-memory calendar store.
func NewCalendarStore() *CalendarStore {
	return &CalendarStore{entries: make(map[string]*core.CalendarEntry)}
}

// Seed inserts a calendar entry directly, for tests and examples.
func (s *CalendarStore) Seed(entry *core.CalendarEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *entry
	s.entries[entry.SessionID] = &clone
}

// CompleteBySession marks the entry linked to the session as completed and
// attaches the evaluation id. A missing entry is reported as (false, nil).
func (s *CalendarStore) CompleteBySession(_ context.Context, sessionID, evaluationID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return false, nil
	}
	entry.BotStatus = core.BotStatusCompleted
	entry.EvaluationID = evaluationID
	return true, nil
}

// Entry returns a copy of the entry for the session, for tests.
func (s *CalendarStore) Entry(sessionID string) (*core.CalendarEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[sessionID]
	if !ok {
		return nil, false
	}
	clone := *entry
	return &clone, true
}

// ScenarioStore is a volatile core.ScenarioStore.
type ScenarioStore struct {
	mu        sync.RWMutex
	scenarios []*core.PracticeScenario
}

var _ core.ScenarioStore = (*ScenarioStore)(nil)

// NewScenarioStore constructs an empty in-memory scenario store.
func NewScenarioStore() *ScenarioStore {
	return &ScenarioStore{}
}

// Insert appends a copy of the scenario.
func (s *ScenarioStore) Insert(_ context.Context, sc *core.PracticeScenario) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *sc
	clone.Config = append([]byte(nil), sc.Config...)
	s.scenarios = append(s.scenarios, &clone)
	return nil
}

// All returns a snapshot of every stored scenario, for tests.
func (s *ScenarioStore) All() []*core.PracticeScenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*core.PracticeScenario, len(s.scenarios))
	copy(out, s.scenarios)
	return out
}

// OrgConfigStore is a volatile core.OrgConfigStore.
type OrgConfigStore struct {
	mu       sync.RWMutex
	contexts map[string]*core.OrgContext
}

var _ core.OrgConfigStore = (*OrgConfigStore)(nil)

// NewOrgConfigStore constructs an empty in-memory org config store.
func NewOrgConfigStore() *OrgConfigStore {
	return &OrgConfigStore{contexts: make(map[string]*core.OrgContext)}
}

// Seed inserts an organization context directly.
func (s *OrgConfigStore) Seed(org *core.OrgContext) {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *org
	clone.CustomPrompts = append([]string(nil), org.CustomPrompts...)
	s.contexts[org.OrgID] = &clone
}

// OrgContext returns the stored context for the org, or an empty context
// carrying just the org id when none was configured.
func (s *OrgConfigStore) OrgContext(_ context.Context, orgID string) (*core.OrgContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	org, ok := s.contexts[orgID]
	if !ok {
		return &core.OrgContext{OrgID: orgID}, nil
	}
	clone := *org
	clone.CustomPrompts = append([]string(nil), org.CustomPrompts...)
	return &clone, nil
}
