// Package output owns the single audio output resource. The engine is
// the only consumer; no other component touches source, volume or
// position directly.
package output

import "time"

// State is the output device state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// EventKind discriminates output events.
type EventKind int

const (
	// EventLoaded fires when a source's metadata is available;
	// Duration is set.
	EventLoaded EventKind = iota
	// EventPlaying fires on transitions into playback.
	EventPlaying
	// EventPaused fires on transitions into pause.
	EventPaused
	// EventTimeUpdate fires at the output's natural position cadence;
	// Position is set.
	EventTimeUpdate
	// EventFinished fires when the current source ends naturally.
	EventFinished
)

// Event is a single output notification.
type Event struct {
	Kind     EventKind
	Duration time.Duration
	Position time.Duration
}

// Interface is the output contract for dependency injection and
// testing.
type Interface interface {
	// Load replaces the current source with url and starts playback.
	Load(url string) error
	Pause()
	Resume()
	Toggle()
	// Stop halts playback and clears the source.
	Stop()
	SeekTo(pos time.Duration)
	// SetVolume takes a value in [0,1].
	SetVolume(v float64)
	Volume() float64
	State() State
	Position() time.Duration
	Duration() time.Duration
	// Events delivers output notifications in emission order. The
	// channel closes when the output is destroyed.
	Events() <-chan Event
	Close()
}
