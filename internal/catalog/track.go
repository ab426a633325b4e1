// Package catalog models tracker catalog entries as playable tracks.
package catalog

import (
	"fmt"
	"hash/fnv"
)

// Source identifies the hosting provider a track link points at.
type Source string

const (
	SourcePillowcase  Source = "pillowcase"
	SourceFroste      Source = "froste"
	SourceKrakenfiles Source = "krakenfiles"
	SourceOnlyfiles   Source = "onlyfiles"
	SourceSugarwillow Source = "sugarwillow"
	SourceSoundcloud  Source = "soundcloud"
	SourceDirect      Source = "direct"
	SourceUnknown     Source = "unknown"
)

// Track is a single resolved (or resolvable) catalog entry.
type Track struct {
	ID          string // derived from SourceURL, stable across sessions
	Name        string
	Extra       string
	SourceURL   string
	PlayableURL string // empty until resolved
	Source      Source

	Quality     string
	TrackLength string
	Type        string
	Description string

	// Display metadata, also used for scrobble attribution.
	EraImage   string
	EraName    string
	ArtistName string
}

// Playable reports whether the track has a resolved stream URL.
func (t *Track) Playable() bool {
	return t.PlayableURL != ""
}

// Artist returns the name to attribute playback to: the explicit
// artist name, else the era name, else "Unknown Artist".
func (t *Track) Artist() string {
	if t.ArtistName != "" {
		return t.ArtistName
	}
	if t.EraName != "" {
		return t.EraName
	}
	return "Unknown Artist"
}

// TrackID derives a stable identifier from a track's source URL.
// fnv-64a keeps ids short and deterministic; collisions are tolerable
// because ids are only used for queue lookups and D-Bus object paths.
func TrackID(sourceURL string) string {
	h := fnv.New64a()
	h.Write([]byte(sourceURL))
	return fmt.Sprintf("%x", h.Sum64())
}
