package scrobble

import (
	"sync"
	"time"
)

const (
	// minScrobbleDuration gates which tracks are scrobbled at all.
	minScrobbleDuration = 30 * time.Second
	// maxScrobbleDelay caps the delay before the scrobble fires.
	maxScrobbleDelay = 240 * time.Second
)

// ScrobbleDelay returns when the scrobble should fire for a track of
// the given duration: half the duration, capped at four minutes.
// Returns false when the track is too short to scrobble.
func ScrobbleDelay(duration time.Duration) (time.Duration, bool) {
	if duration <= minScrobbleDuration {
		return 0, false
	}
	delay := duration / 2
	if delay > maxScrobbleDelay {
		delay = maxScrobbleDelay
	}
	return delay, true
}

// Timer is the single-shot delayed scrobble trigger. One timer exists
// per loaded track; rearming replaces any pending one, and Cancel is
// idempotent.
type Timer struct {
	mu    sync.Mutex
	timer *time.Timer
	fired bool
}

// Arm schedules fn after delay, replacing any pending trigger. fn
// runs at most once per arm; the per-load once guard lives in the
// Scrobbler's flag, reset on track change.
func (t *Timer) Arm(delay time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.fired = false
	t.timer = time.AfterFunc(delay, func() {
		t.mu.Lock()
		t.fired = true
		t.mu.Unlock()
		fn()
	})
}

// Cancel stops any pending trigger. Canceling an already-fired or
// already-canceled timer is a no-op.
func (t *Timer) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Fired reports whether the last armed trigger has run.
func (t *Timer) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}
