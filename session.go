package skeptic

import "sync"

// ──────────────────────────────────────────────
// Session State Store — per-session mutable record
// ──────────────────────────────────────────────

// Role labels for dialogue turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one entry of the append-only dialogue history.
type Turn struct {
	Role  string `json:"role"`
	Text  string `json:"content"`
	Stage Stage  `json:"stage,omitempty"`
}

// EvidenceRecord tracks one canonical evidence key within a session.
// Created on first mention, updated on repeats, never deleted.
type EvidenceRecord struct {
	Count         int                    `json:"count"`
	FirstSeenTurn int                    `json:"first_seen_turn"`
	LastSeenTurn  int                    `json:"last_seen_turn"`
	Details       map[string]interface{} `json:"details,omitempty"`
}

// SessionState is the per-session mutable record. All mutation goes
// through the engine, which serializes turns per session id.
type SessionState struct {
	Evidence      map[string]*EvidenceRecord `json:"evidence"`
	Facts         DemandFacts                `json:"facts"`
	LastReply     string                     `json:"last_reply"`
	LastObjection string                     `json:"last_objection"`
	Turn          int                        `json:"turn"`

	// Evidence keys not yet acknowledged to the user. An override reply
	// (fast path, objection, commitment) defers the ack, never drops it.
	PendingAcks []string `json:"pending_acks,omitempty"`

	// Phrase-repetition ledger, keyed by normalized sentence.
	PhraseLastUsed map[string]int `json:"phrase_last_used"`
	PhraseUseCount map[string]int `json:"phrase_use_count"`

	// Commitment is permanent: once set, the purchase model is never
	// evaluated again for this session.
	Committed        bool   `json:"committed"`
	CommittedUnits   int    `json:"committed_units"`
	CommittedChannel string `json:"committed_channel"`
}

// NewSessionState returns an empty, initialized state.
func NewSessionState() *SessionState {
	return &SessionState{
		Evidence:       make(map[string]*EvidenceRecord),
		PhraseLastUsed: make(map[string]int),
		PhraseUseCount: make(map[string]int),
	}
}

// NextTurn advances the monotonic turn counter and returns its value.
func (s *SessionState) NextTurn() int {
	s.Turn++
	return s.Turn
}

// BumpEvidence increments the count for key, merging details. Returns
// true when the key is new to this session (first-seen semantics drive
// the one-time acknowledgment side effects).
func (s *SessionState) BumpEvidence(key string, details map[string]interface{}) bool {
	if key == "" {
		return false
	}
	if s.Evidence == nil {
		s.Evidence = make(map[string]*EvidenceRecord)
	}
	rec, ok := s.Evidence[key]
	if !ok {
		rec = &EvidenceRecord{FirstSeenTurn: s.Turn}
		s.Evidence[key] = rec
	}
	rec.Count++
	rec.LastSeenTurn = s.Turn
	if len(details) > 0 {
		if rec.Details == nil {
			rec.Details = make(map[string]interface{}, len(details))
		}
		for k, v := range details {
			rec.Details[k] = v
		}
	}
	return !ok
}

// HasEvidence reports whether key was ever submitted in this session.
func (s *SessionState) HasEvidence(key string) bool {
	_, ok := s.Evidence[key]
	return ok
}

// UniqueEvidenceCount returns the number of distinct evidence keys.
func (s *SessionState) UniqueEvidenceCount() int {
	return len(s.Evidence)
}

// AccumulatedSet builds the EvidenceSet over everything the session has
// ever received, for scoring against the full record.
func (s *SessionState) AccumulatedSet() EvidenceSet {
	keys := make([]string, 0, len(s.Evidence))
	for k := range s.Evidence {
		keys = append(keys, k)
	}
	return Classify(keys)
}

// PhraseUsed stamps a normalized phrase into the ledger at the current
// turn.
func (s *SessionState) PhraseUsed(norm string) {
	if s.PhraseLastUsed == nil {
		s.PhraseLastUsed = make(map[string]int)
	}
	if s.PhraseUseCount == nil {
		s.PhraseUseCount = make(map[string]int)
	}
	s.PhraseLastUsed[norm] = s.Turn
	s.PhraseUseCount[norm]++
}

// SessionStore is the pluggable persistence backend for session state.
// Load creates the state lazily on first request for a session id.
type SessionStore interface {
	Load(sessionID string) (*SessionState, error)
	Save(sessionID string, state *SessionState) error
}

// MemorySessionStore is a thread-safe in-memory SessionStore. State
// lives for the process lifetime; there is no eviction. Deployments
// that need TTL semantics should use the Redis backend in store/.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionState
}

// NewMemorySessionStore creates an empty in-memory store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*SessionState)}
}

// Load returns the live state for sessionID, creating it if absent.
func (m *MemorySessionStore) Load(sessionID string) (*SessionState, error) {
	m.mu.RLock()
	st, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if ok {
		return st, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok = m.sessions[sessionID]; ok {
		return st, nil
	}
	st = NewSessionState()
	m.sessions[sessionID] = st
	return st, nil
}

// Save is a no-op for the in-memory store: Load hands out live
// pointers, so mutations are already visible.
func (m *MemorySessionStore) Save(sessionID string, state *SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sessionID] = state
	return nil
}

// Len returns the number of tracked sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
