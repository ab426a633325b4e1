package playback

import (
	"time"

	"github.com/ArtistGrid/player/internal/catalog"
)

// State is a point-in-time snapshot of the player session. It is
// created with all-empty defaults and mutated exclusively through
// Engine operations.
type State struct {
	CurrentTrack *catalog.Track
	Queue        []catalog.Track
	IsPlaying    bool
	Position     time.Duration
	Duration     time.Duration
	Volume       float64
}
