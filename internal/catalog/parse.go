package catalog

import (
	"errors"
	"strings"
)

// ErrInvalidEntry is returned when a raw catalog row cannot become a track.
var ErrInvalidEntry = errors.New("invalid catalog entry")

// RawEntry is a tracker catalog row as delivered by the viewer: an
// untrusted shape where every field may be missing or blank.
type RawEntry struct {
	Name        string `json:"name"`
	Extra       string `json:"extra"`
	Link        string `json:"link"`
	Quality     string `json:"quality"`
	TrackLength string `json:"trackLength"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// EraContext carries the grouping info the viewer knows about the
// entry's surrounding era.
type EraContext struct {
	ArtistName string
	EraName    string
	EraImage   string
}

// ParseEntry validates a raw catalog row and produces a Track.
// The track is not yet playable; callers resolve Link separately and
// fill PlayableURL before handing it to the engine.
func ParseEntry(e RawEntry, era EraContext) (Track, error) {
	name := strings.TrimSpace(e.Name)
	link := strings.TrimSpace(e.Link)
	if name == "" {
		return Track{}, ErrInvalidEntry
	}
	if link == "" || (!strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://")) {
		return Track{}, ErrInvalidEntry
	}

	return Track{
		ID:          TrackID(link),
		Name:        name,
		Extra:       strings.TrimSpace(e.Extra),
		SourceURL:   link,
		Quality:     strings.TrimSpace(e.Quality),
		TrackLength: strings.TrimSpace(e.TrackLength),
		Type:        strings.TrimSpace(e.Type),
		Description: strings.TrimSpace(e.Description),
		ArtistName:  era.ArtistName,
		EraName:     era.EraName,
		EraImage:    era.EraImage,
		Source:      SourceUnknown,
	}, nil
}
