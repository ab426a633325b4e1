// Package playback implements the player session: the single audio
// output, the queue/history state machine, and the orchestration of
// link resolution side effects, media controls and scrobbling.
package playback

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ArtistGrid/player/internal/catalog"
	"github.com/ArtistGrid/player/internal/output"
)

// Scrobbler is the listening-history hook the engine drives. All
// methods are best-effort; implementations must never block the
// caller on network I/O.
type Scrobbler interface {
	// TrackChanged cancels any pending scrobble and resets the
	// at-most-once flag for the new track.
	TrackChanged(catalog.Track)
	// TrackLoaded arms the delayed scrobble once duration is known.
	TrackLoaded(catalog.Track, time.Duration)
	// NowPlaying sends the now-playing notification asynchronously.
	NowPlaying(catalog.Track, time.Duration)
	// PlaybackPaused cancels the pending scrobble.
	PlaybackPaused()
	// PlaybackEnded cancels the pending scrobble.
	PlaybackEnded()
}

// Engine owns the player session. All state mutations run
// sequentially on a single goroutine: public operations and output
// events are funneled into one loop and execute run-to-completion, so
// no event can observe a half-applied transition.
type Engine struct {
	out   output.Interface
	scrob Scrobbler // may be nil
	log   *logrus.Entry

	// Mutated only on the run loop.
	queue    *Queue
	history  *History
	current  *catalog.Track
	playing  bool
	position time.Duration
	duration time.Duration
	volume   float64

	cmds chan func()
	done chan struct{}

	subs      []*Subscription
	subsMu    sync.RWMutex
	closeOnce sync.Once
}

// New creates an engine owning the given output. scrob may be nil
// when scrobbling is not configured.
func New(out output.Interface, scrob Scrobbler) *Engine {
	e := &Engine{
		out:     out,
		scrob:   scrob,
		log:     logrus.WithField("component", "engine"),
		queue:   NewQueue(),
		history: NewHistory(),
		volume:  out.Volume(),
		cmds:    make(chan func()),
		done:    make(chan struct{}),
	}
	go e.run()
	return e
}

func (e *Engine) run() {
	events := e.out.Events()
	for {
		select {
		case <-e.done:
			return
		case fn := <-e.cmds:
			fn()
		case ev, ok := <-events:
			if !ok {
				return
			}
			e.handleOutputEvent(ev)
		}
	}
}

// do executes fn on the run loop and waits for it to complete.
func (e *Engine) do(fn func()) {
	doneCh := make(chan struct{})
	select {
	case e.cmds <- func() {
		fn()
		close(doneCh)
	}:
		<-doneCh
	case <-e.done:
	}
}

// --- Playback operations ---

// PlayTrack starts playback of a resolved track. A track without a
// playable URL is ignored (logged); the session state is untouched.
// The queue is NOT cleared: callers wanting replacement semantics
// clear it explicitly first.
func (e *Engine) PlayTrack(track catalog.Track) {
	e.do(func() {
		e.loadTrack(track, true)
	})
}

// TogglePlayPause toggles the output between play and pause. State
// bookkeeping happens in response to output events, so external
// triggers (OS media controls) and this call are interchangeable.
func (e *Engine) TogglePlayPause() {
	e.do(func() {
		e.out.Toggle()
	})
}

// SeekTo moves the playback position. No clamping beyond what the
// output itself enforces.
func (e *Engine) SeekTo(pos time.Duration) {
	e.do(func() {
		e.out.SeekTo(pos)
	})
}

// SetVolume sets the output volume and mirrors it into the session
// state. v is clamped to [0,1].
func (e *Engine) SetVolume(v float64) {
	e.do(func() {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		e.out.SetVolume(v)
		e.volume = v
		e.broadcast(func(s *Subscription) { s.sendVolume(VolumeChange{Volume: v}) })
	})
}

// PlayNext advances to the queue head. The head is popped
// unconditionally and then checked: a head without a playable URL is
// dropped and playback state is left unchanged.
func (e *Engine) PlayNext() {
	e.do(func() {
		e.advance()
	})
}

// PlayPrevious plays the history entry before the current one. A
// history shorter than two entries makes this a no-op. Neither the
// history nor the queue is mutated.
func (e *Engine) PlayPrevious() {
	e.do(func() {
		prev, ok := e.history.Previous()
		if !ok {
			return
		}
		e.loadTrack(prev, false)
	})
}

// ClosePlayer tears the session down to its defaults: output stopped
// and cleared, pending scrobble canceled, queue and history cleared.
func (e *Engine) ClosePlayer() {
	e.do(func() {
		if e.scrob != nil {
			e.scrob.PlaybackEnded()
		}
		e.out.Stop()
		prev := e.current
		e.current = nil
		e.playing = false
		e.position = 0
		e.duration = 0
		e.queue.Clear()
		e.history.Clear()
		e.broadcast(func(s *Subscription) {
			s.sendTrack(TrackChange{Previous: prev, Current: nil})
			s.sendState(StateChange{Playing: false})
			s.sendQueue(QueueChange{Tracks: nil})
		})
	})
}

// --- Queue operations ---

// AddToQueue appends a track to the pending-playback list.
func (e *Engine) AddToQueue(track catalog.Track) {
	e.do(func() {
		e.queue.Append(track)
		e.emitQueue()
	})
}

// RemoveFromQueue removes the queued track at index.
func (e *Engine) RemoveFromQueue(index int) {
	e.do(func() {
		if e.queue.RemoveAt(index) {
			e.emitQueue()
		}
	})
}

// RemoveFromQueueByID removes the first queued track with the id.
func (e *Engine) RemoveFromQueueByID(id string) {
	e.do(func() {
		if e.queue.RemoveByID(id) {
			e.emitQueue()
		}
	})
}

// ReorderQueue moves the track at from to position to (a move in
// place, not a swap).
func (e *Engine) ReorderQueue(from, to int) {
	e.do(func() {
		if e.queue.Move(from, to) {
			e.emitQueue()
		}
	})
}

// ClearQueue empties the pending-playback list.
func (e *Engine) ClearQueue() {
	e.do(func() {
		e.queue.Clear()
		e.emitQueue()
	})
}

// --- Queries ---

// Snapshot returns a copy of the session state.
func (e *Engine) Snapshot() State {
	var st State
	e.do(func() {
		st = State{
			Queue:     e.queue.Tracks(),
			IsPlaying: e.playing,
			Position:  e.position,
			Duration:  e.duration,
			Volume:    e.volume,
		}
		if e.current != nil {
			t := *e.current
			st.CurrentTrack = &t
		}
	})
	return st
}

// CurrentTrack returns a copy of the current track, or nil when idle.
func (e *Engine) CurrentTrack() *catalog.Track {
	return e.Snapshot().CurrentTrack
}

// IsPlaying reports whether playback is running.
func (e *Engine) IsPlaying() bool {
	return e.Snapshot().IsPlaying
}

// QueueTracks returns a copy of the queue contents.
func (e *Engine) QueueTracks() []catalog.Track {
	return e.Snapshot().Queue
}

// HistoryTracks returns a copy of the playback history.
func (e *Engine) HistoryTracks() []catalog.Track {
	var tracks []catalog.Track
	e.do(func() {
		tracks = e.history.Tracks()
	})
	return tracks
}

// Position returns the current playback position.
func (e *Engine) Position() time.Duration {
	return e.Snapshot().Position
}

// Duration returns the current track duration.
func (e *Engine) Duration() time.Duration {
	return e.Snapshot().Duration
}

// Volume returns the session volume in [0,1].
func (e *Engine) Volume() float64 {
	return e.Snapshot().Volume
}

// --- Lifecycle ---

// Subscribe creates a new event subscription.
func (e *Engine) Subscribe() *Subscription {
	e.subsMu.Lock()
	defer e.subsMu.Unlock()
	sub := newSubscription()
	e.subs = append(e.subs, sub)
	return sub
}

// Close stops the engine loop and closes all subscriptions. The
// output is left for its owner to destroy.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		close(e.done)
		e.subsMu.Lock()
		for _, sub := range e.subs {
			sub.close()
		}
		e.subs = nil
		e.subsMu.Unlock()
	})
	return nil
}

// --- Internals (run loop only) ---

// loadTrack performs the track-change transition. Side effects run in
// a fixed order: scrobble cancel, output swap, history append,
// async now-playing, subscriber notification.
func (e *Engine) loadTrack(track catalog.Track, appendHistory bool) {
	if !track.Playable() {
		e.log.WithFields(logrus.Fields{
			"track":  track.Name,
			"source": track.SourceURL,
		}).Warn("track has no playable url")
		return
	}

	if e.scrob != nil {
		e.scrob.TrackChanged(track)
	}

	if err := e.out.Load(track.PlayableURL); err != nil {
		e.log.WithError(err).WithField("track", track.Name).Error("output load failed")
		return
	}

	if appendHistory {
		e.history.Append(track)
	}

	if e.scrob != nil {
		e.scrob.NowPlaying(track, 0)
	}

	prev := e.current
	t := track
	e.current = &t
	e.playing = true
	e.position = 0
	e.duration = 0

	e.broadcast(func(s *Subscription) {
		s.sendTrack(TrackChange{Previous: prev, Current: e.current})
		s.sendState(StateChange{Playing: true})
	})
}

// advance pops the queue head and plays it. The pop happens before
// the playable check, so an unplayable head is dropped rather than
// retried; this mirrors the established advance policy.
func (e *Engine) advance() {
	head, ok := e.queue.PopFront()
	if !ok {
		return
	}
	e.emitQueue()
	if !head.Playable() {
		e.log.WithField("track", head.Name).Warn("dropping unplayable queue head")
		return
	}
	e.loadTrack(head, true)
}

func (e *Engine) handleOutputEvent(ev output.Event) {
	switch ev.Kind {
	case output.EventPlaying:
		if !e.playing {
			e.playing = true
			e.broadcast(func(s *Subscription) { s.sendState(StateChange{Playing: true}) })
		}
	case output.EventPaused:
		if e.playing {
			e.playing = false
			if e.scrob != nil {
				e.scrob.PlaybackPaused()
			}
			e.broadcast(func(s *Subscription) { s.sendState(StateChange{Playing: false}) })
		}
	case output.EventLoaded:
		e.duration = ev.Duration
		if e.scrob != nil && e.current != nil {
			e.scrob.TrackLoaded(*e.current, ev.Duration)
		}
		e.emitPosition()
	case output.EventTimeUpdate:
		e.position = ev.Position
		e.emitPosition()
	case output.EventFinished:
		e.handleTrackFinished()
	}
}

// handleTrackFinished advances to the next queued track, or goes idle
// when the queue is empty.
func (e *Engine) handleTrackFinished() {
	if e.scrob != nil {
		e.scrob.PlaybackEnded()
	}
	if e.queue.IsEmpty() {
		e.goIdle()
		return
	}
	before := e.current
	e.advance()
	if e.current == before {
		// Head was dropped or failed to load; the finished track stays
		// current but nothing is playing anymore.
		e.playing = false
		e.broadcast(func(s *Subscription) { s.sendState(StateChange{Playing: false}) })
	}
}

func (e *Engine) goIdle() {
	prev := e.current
	e.current = nil
	e.playing = false
	e.position = 0
	e.duration = 0
	e.broadcast(func(s *Subscription) {
		s.sendTrack(TrackChange{Previous: prev, Current: nil})
		s.sendState(StateChange{Playing: false})
	})
}

func (e *Engine) emitQueue() {
	tracks := e.queue.Tracks()
	e.broadcast(func(s *Subscription) { s.sendQueue(QueueChange{Tracks: tracks}) })
}

func (e *Engine) emitPosition() {
	pos, dur := e.position, e.duration
	e.broadcast(func(s *Subscription) {
		s.sendPosition(PositionChange{Position: pos, Duration: dur})
	})
}

func (e *Engine) broadcast(send func(*Subscription)) {
	e.subsMu.RLock()
	defer e.subsMu.RUnlock()
	for _, sub := range e.subs {
		send(sub)
	}
}
