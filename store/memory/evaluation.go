package memory

import (
	"context"
	"sync"

	"github.com/dialwise/evalpipe/core"
)

// EvaluationStore is a volatile core.EvaluationStore enforcing the one
// evaluation per session invariant under its own lock.
type EvaluationStore struct {
	mu        sync.RWMutex
	bySession map[string]*core.Evaluation
}

var _ core.EvaluationStore = (*EvaluationStore)(nil)

// NewEvaluationStore constructs an empty in-memory evaluation store.
func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{bySession: make(map[string]*core.Evaluation)}
}

// InsertOrExisting inserts eval unless an evaluation for the same session
// already exists, in which case the existing record wins and is returned with
// created=false. The check and insert are atomic under the store lock.
func (s *EvaluationStore) InsertOrExisting(_ context.Context, eval *core.Evaluation) (*core.Evaluation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.bySession[eval.SessionID]; ok {
		return cloneEvaluation(existing), false, nil
	}
	s.bySession[eval.SessionID] = cloneEvaluation(eval)
	return cloneEvaluation(eval), true, nil
}

// GetBySession returns the evaluation for the session, or (nil, nil) when
// none exists.
func (s *EvaluationStore) GetBySession(_ context.Context, sessionID string) (*core.Evaluation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	existing, ok := s.bySession[sessionID]
	if !ok {
		return nil, nil
	}
	return cloneEvaluation(existing), nil
}

func cloneEvaluation(e *core.Evaluation) *core.Evaluation {
	clone := *e
	clone.ObjectionScores = make(map[string]float64, len(e.ObjectionScores))
	for k, v := range e.ObjectionScores {
		clone.ObjectionScores[k] = v
	}
	clone.Strengths = append([]string(nil), e.Strengths...)
	clone.Gaps = append([]string(nil), e.Gaps...)
	clone.PriorityActions = append([]string(nil), e.PriorityActions...)
	if e.Notes != nil {
		notes := *e.Notes
		clone.Notes = &notes
	}
	return &clone
}
