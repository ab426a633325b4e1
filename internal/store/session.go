package store

import "encoding/json"

// sessionKey is the fixed key the scrobble session is stored under.
const sessionKey = "lastfm_session"

// Session is the persisted scrobble-service session.
type Session struct {
	SessionKey string `json:"sessionKey"`
	Username   string `json:"displayName"`
}

// LastfmSession returns the stored session, or nil when not linked.
// Missing or corrupt entries are treated as absent, not as errors.
func (m *Manager) LastfmSession() (*Session, error) {
	raw, err := m.get(sessionKey)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil //nolint:nilnil // nil session means not linked
	}
	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil || s.SessionKey == "" {
		// Unreadable entry: treat as not linked.
		return nil, nil //nolint:nilnil
	}
	return &s, nil
}

// SaveLastfmSession stores the session after a successful auth
// exchange.
func (m *Manager) SaveLastfmSession(s Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return m.set(sessionKey, string(raw))
}

// DeleteLastfmSession removes the stored session (disconnect).
func (m *Manager) DeleteLastfmSession() error {
	return m.delete(sessionKey)
}
