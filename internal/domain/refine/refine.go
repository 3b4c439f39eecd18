// Package refine rewrites queries before retrieval to improve recall.
// Refinement is rule-based and deterministic; each rewrite is recorded
// as a session for status reporting.
package refine

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session records one refinement pass.
type Session struct {
	ID            string    `json:"id"`
	OriginalQuery string    `json:"original_query"`
	RefinedQuery  string    `json:"refined_query"`
	Applied       []string  `json:"applied"`
	CreatedAt     time.Time `json:"created_at"`
}

// Refiner applies deterministic refinement rules to queries.
type Refiner struct {
	mu       sync.Mutex
	sessions []Session
}

// NewRefiner creates a query refiner.
func NewRefiner() *Refiner {
	return &Refiner{}
}

// Refine rewrites the query for better recall and records a session.
// The rules mirror interactive refinement heuristics: vague queries are
// broadened, comparative queries are made explicit, and explanatory
// questions ask for mechanism rather than a bare topic.
func (r *Refiner) Refine(query string) (string, Session) {
	trimmed := strings.TrimRight(strings.TrimSpace(query), "?!. ")
	lower := strings.ToLower(trimmed)
	words := strings.Fields(trimmed)

	refined := trimmed
	var applied []string

	switch {
	case len(words) <= 2:
		refined = trimmed + " overview key details"
		applied = append(applied, "broadened vague query")
	case strings.Contains(lower, " vs ") || strings.Contains(lower, " versus "):
		refined = "comparison of " + trimmed
		applied = append(applied, "made comparison explicit")
	case strings.HasPrefix(lower, "how ") || strings.HasPrefix(lower, "why "):
		refined = trimmed + " explanation mechanism"
		applied = append(applied, "requested mechanism for explanatory question")
	}

	session := Session{
		ID:            uuid.New().String(),
		OriginalQuery: query,
		RefinedQuery:  refined,
		Applied:       applied,
		CreatedAt:     time.Now(),
	}

	r.mu.Lock()
	r.sessions = append(r.sessions, session)
	r.mu.Unlock()

	return refined, session
}

// ActiveSessions returns the number of refinement sessions recorded.
func (r *Refiner) ActiveSessions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sessions returns a copy of the recorded sessions.
func (r *Refiner) Sessions() []Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}
