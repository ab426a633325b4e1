package playback

import (
	"time"

	"github.com/ArtistGrid/player/internal/catalog"
)

// TrackChange is emitted when the current track changes, including
// the transition to idle (Current == nil).
type TrackChange struct {
	Previous *catalog.Track
	Current  *catalog.Track
}

// StateChange is emitted when playback starts or stops.
type StateChange struct {
	Playing bool
}

// PositionChange is emitted at the output's position cadence and
// whenever the known duration changes.
type PositionChange struct {
	Position time.Duration
	Duration time.Duration
}

// QueueChange is emitted when the queue contents change.
type QueueChange struct {
	Tracks []catalog.Track
}

// VolumeChange is emitted when the volume changes.
type VolumeChange struct {
	Volume float64
}
