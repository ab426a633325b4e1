package scrobble

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ArtistGrid/player/internal/catalog"
)

// callTimeout bounds the fire-and-forget API calls made off the
// engine's loop.
const callTimeout = 15 * time.Second

// Scrobbler ties the client and the delayed trigger to playback
// events. Every call is best-effort: failures are logged and
// swallowed, never retried, and never reach the engine.
type Scrobbler struct {
	client *Client
	timer  Timer
	log    *logrus.Entry

	mu        sync.Mutex
	current   catalog.Track
	startedAt time.Time
	scrobbled bool // at-most-once guard per track load
}

// NewScrobbler wraps a client for use by the playback engine.
func NewScrobbler(client *Client) *Scrobbler {
	return &Scrobbler{
		client: client,
		log:    logrus.WithField("component", "scrobble"),
	}
}

// Client exposes the underlying API client (auth flows).
func (s *Scrobbler) Client() *Client {
	return s.client
}

// TrackChanged cancels any pending trigger and resets the once flag
// for the newly loaded track.
func (s *Scrobbler) TrackChanged(track catalog.Track) {
	s.timer.Cancel()
	s.mu.Lock()
	s.current = track
	s.startedAt = time.Now()
	s.scrobbled = false
	s.mu.Unlock()
}

// NowPlaying sends the now-playing notification asynchronously.
func (s *Scrobbler) NowPlaying(track catalog.Track, duration time.Duration) {
	if !s.client.IsAuthenticated() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		if err := s.client.UpdateNowPlaying(ctx, track, duration); err != nil {
			s.log.WithError(err).Warn("now playing update failed")
		}
	}()
}

// TrackLoaded arms the delayed scrobble once the track's duration is
// known. Tracks of 30 seconds or less are never scrobbled.
func (s *Scrobbler) TrackLoaded(track catalog.Track, duration time.Duration) {
	if !s.client.IsAuthenticated() {
		return
	}
	delay, ok := ScrobbleDelay(duration)
	if !ok {
		return
	}
	s.timer.Arm(delay, func() {
		s.fire(track, duration)
	})
}

// PlaybackPaused cancels the pending trigger and resets the flag.
func (s *Scrobbler) PlaybackPaused() {
	s.timer.Cancel()
	s.mu.Lock()
	s.scrobbled = false
	s.mu.Unlock()
}

// PlaybackEnded cancels the pending trigger.
func (s *Scrobbler) PlaybackEnded() {
	s.timer.Cancel()
}

// Disconnect cancels the pending trigger and clears the session.
func (s *Scrobbler) Disconnect() error {
	s.timer.Cancel()
	s.mu.Lock()
	s.scrobbled = false
	s.mu.Unlock()
	return s.client.Disconnect()
}

func (s *Scrobbler) fire(track catalog.Track, duration time.Duration) {
	s.mu.Lock()
	if s.scrobbled || s.current.ID != track.ID {
		s.mu.Unlock()
		return
	}
	s.scrobbled = true
	startedAt := s.startedAt
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()
	if err := s.client.Scrobble(ctx, track, duration, startedAt); err != nil {
		s.log.WithError(err).WithField("track", track.Name).Warn("scrobble failed")
	}
}
