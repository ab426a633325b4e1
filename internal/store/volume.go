package store

import "strconv"

const volumeKey = "player_volume"

// Volume returns the saved volume in [0,1], or the fallback when
// nothing (or garbage) is stored.
func (m *Manager) Volume(fallback float64) float64 {
	raw, err := m.get(volumeKey)
	if err != nil || raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		return fallback
	}
	return v
}

// SaveVolume stores the volume for the next session.
func (m *Manager) SaveVolume(v float64) error {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return m.set(volumeKey, strconv.FormatFloat(v, 'f', 4, 64))
}
