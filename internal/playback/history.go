package playback

import "github.com/ArtistGrid/player/internal/catalog"

// History is the append-only record of playback order. It is distinct
// from the queue: the queue holds what will play, history what did.
type History struct {
	tracks []catalog.Track
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{tracks: make([]catalog.Track, 0)}
}

// Append records a played track.
func (h *History) Append(t catalog.Track) {
	h.tracks = append(h.tracks, t)
}

// Previous returns the entry before the current one (index len-2).
// Reading it does not mutate the history.
func (h *History) Previous() (catalog.Track, bool) {
	if len(h.tracks) < 2 {
		return catalog.Track{}, false
	}
	return h.tracks[len(h.tracks)-2], true
}

// Clear empties the history.
func (h *History) Clear() {
	h.tracks = h.tracks[:0]
}

// Tracks returns a copy of the history in playback order.
func (h *History) Tracks() []catalog.Track {
	result := make([]catalog.Track, len(h.tracks))
	copy(result, h.tracks)
	return result
}

// Len returns the number of recorded plays.
func (h *History) Len() int {
	return len(h.tracks)
}
