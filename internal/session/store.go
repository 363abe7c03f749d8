package session

import (
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/skiff-ai/skiff/internal/llm"
)

// Settings holds the per-session sampling parameters forwarded to the model
// on every call.
type Settings struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// DefaultSettings returns the settings a fresh session starts with.
func DefaultSettings() Settings {
	return Settings{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	}
}

// Session is the conversation state behind one opaque session ID: the
// message history, tool enablement preferences, and sampling settings.
//
// Sessions are owned by a Store and must only be accessed through it; the
// Store's lock is what makes cross-session concurrent access safe. A single
// session is assumed to have one writer at a time (one front-end per chat).
type Session struct {
	ID       string
	History  []llm.Message
	Prefs    map[string]bool
	Settings Settings
}

// Store keeps every live session in process memory.
//
// Sessions exist only for the lifetime of the server; there is no
// persistence layer. An unknown session ID is never an error — the session
// is created on first reference with empty history and default settings.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	defaults Settings
	logger   *slog.Logger
}

// NewStore creates an empty Store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		defaults: DefaultSettings(),
		logger:   logger,
	}
}

// SetDefaults replaces the settings new sessions start with. Existing
// sessions are unaffected. Call during startup wiring, before traffic.
func (s *Store) SetDefaults(settings Settings) error {
	if err := ValidateSettings(settings); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaults = settings
	return nil
}

// GetOrCreate returns the session for id, creating it if this is the first
// reference. Returns ErrEmptySessionID for an empty id.
//
// The returned snapshot is a copy; mutations go through the Store methods.
func (s *Store) GetOrCreate(id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(id)
	return snapshot(sess), nil
}

// getOrCreateLocked returns the live session for id. Caller holds s.mu.
func (s *Store) getOrCreateLocked(id string) *Session {
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{
			ID:       id,
			Prefs:    make(map[string]bool),
			Settings: s.defaults,
		}
		s.sessions[id] = sess
		s.logger.Debug("created session", "session_id", id)
	}
	return sess
}

// History returns a copy of the session's conversation history.
func (s *Store) History(id string) ([]llm.Message, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(id)
	return slices.Clone(sess.History), nil
}

// AppendMessages appends msgs to the session's history in order.
func (s *Store) AppendMessages(id string, msgs ...llm.Message) error {
	if id == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(id)
	sess.History = append(sess.History, msgs...)
	return nil
}

// Reset clears the session's conversation history and restores default tool
// preferences. Sampling settings survive a reset: clearing a conversation
// should not silently undo deliberate tuning.
//
// Resetting an unknown session is a no-op that leaves a fresh session
// behind, matching the create-on-first-reference contract.
func (s *Store) Reset(id string) error {
	if id == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(id)
	sess.History = nil
	sess.Prefs = make(map[string]bool)
	s.logger.Debug("reset session", "session_id", id)
	return nil
}

// Preferences returns a copy of the session's tool enablement map. Names
// absent from the map are enabled by default; the map only records explicit
// choices.
func (s *Store) Preferences(id string) (map[string]bool, error) {
	if id == "" {
		return nil, ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(id)
	return maps.Clone(sess.Prefs), nil
}

// SetPreference records an explicit enable/disable choice for one tool
// name. Unknown names are accepted and stored: the registry composition can
// change between requests, and a stale preference is harmless.
func (s *Store) SetPreference(id, tool string, enabled bool) error {
	if id == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(id)
	sess.Prefs[tool] = enabled
	return nil
}

// SetPreferences records a batch of enablement choices in one lock
// acquisition.
func (s *Store) SetPreferences(id string, prefs map[string]bool) error {
	if id == "" {
		return ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(id)
	for name, enabled := range prefs {
		sess.Prefs[name] = enabled
	}
	return nil
}

// Settings returns the session's sampling settings.
func (s *Store) Settings(id string) (Settings, error) {
	if id == "" {
		return Settings{}, ErrEmptySessionID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(id)
	return sess.Settings, nil
}

// UpdateSettings replaces the session's sampling settings after validating
// bounds. Partial updates are the caller's concern: read, modify, write.
func (s *Store) UpdateSettings(id string, settings Settings) error {
	if id == "" {
		return ErrEmptySessionID
	}
	if err := ValidateSettings(settings); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(id)
	sess.Settings = settings
	s.logger.Debug("updated settings",
		"session_id", id,
		"temperature", settings.Temperature,
		"max_tokens", settings.MaxTokens)
	return nil
}

// snapshot copies a session so callers cannot mutate store state through
// the returned pointer.
func snapshot(sess *Session) *Session {
	return &Session{
		ID:       sess.ID,
		History:  slices.Clone(sess.History),
		Prefs:    maps.Clone(sess.Prefs),
		Settings: sess.Settings,
	}
}
