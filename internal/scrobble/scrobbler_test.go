package scrobble

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ArtistGrid/player/internal/catalog"
	"github.com/ArtistGrid/player/internal/store"
)

func newTestScrobbler(t *testing.T, scrobbleCalls *atomic.Int32) *Scrobbler {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("method") == "track.scrobble" {
			scrobbleCalls.Add(1)
		}
		fmt.Fprint(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	st := &fakeStore{session: &store.Session{SessionKey: "sk-1", Username: "alice"}}
	client := NewClient(Config{
		APIKey:    "k",
		APISecret: "s",
		APIBase:   srv.URL,
	}, st)
	return NewScrobbler(client)
}

func waitForCalls(t *testing.T, calls *atomic.Int32, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if calls.Load() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("scrobble calls = %d, want %d", calls.Load(), want)
}

func TestScrobbler_FiresOncePerLoad(t *testing.T) {
	var calls atomic.Int32
	s := newTestScrobbler(t, &calls)
	track := catalog.Track{ID: "t1", Name: "Track"}

	s.TrackChanged(track)
	s.fire(track, 60*time.Second)
	s.fire(track, 60*time.Second)
	s.fire(track, 60*time.Second)

	waitForCalls(t, &calls, 1)
}

func TestScrobbler_FireForStaleTrackIgnored(t *testing.T) {
	var calls atomic.Int32
	s := newTestScrobbler(t, &calls)
	old := catalog.Track{ID: "t1", Name: "Old"}
	current := catalog.Track{ID: "t2", Name: "Current"}

	s.TrackChanged(old)
	s.TrackChanged(current)
	s.fire(old, 60*time.Second)

	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("stale fire scrobbled %d times, want 0", calls.Load())
	}
}

func TestScrobbler_PauseResetsOnceFlag(t *testing.T) {
	var calls atomic.Int32
	s := newTestScrobbler(t, &calls)
	track := catalog.Track{ID: "t1", Name: "Track"}

	s.TrackChanged(track)
	s.fire(track, 60*time.Second)
	waitForCalls(t, &calls, 1)

	// Pause cancels the timer and resets the flag, so a rearmed timer
	// can scrobble the same load again.
	s.PlaybackPaused()
	s.fire(track, 60*time.Second)
	waitForCalls(t, &calls, 2)
}

func TestScrobbler_TrackLoaded_ShortTrackNotArmed(t *testing.T) {
	var calls atomic.Int32
	s := newTestScrobbler(t, &calls)
	track := catalog.Track{ID: "t1", Name: "Track"}

	s.TrackChanged(track)
	s.TrackLoaded(track, 20*time.Second)

	if s.timer.Fired() {
		t.Error("timer should not be armed for a short track")
	}
	time.Sleep(30 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("short track scrobbled %d times, want 0", calls.Load())
	}
}

func TestScrobbler_UnauthenticatedIsNoop(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unauthenticated scrobbler reached the network")
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "k", APISecret: "s", APIBase: srv.URL}, nil)
	s := NewScrobbler(client)
	track := catalog.Track{ID: "t1", Name: "Track"}

	s.TrackChanged(track)
	s.NowPlaying(track, 60*time.Second)
	s.TrackLoaded(track, 60*time.Second)
	time.Sleep(30 * time.Millisecond)
}

func TestScrobbler_Disconnect(t *testing.T) {
	var calls atomic.Int32
	s := newTestScrobbler(t, &calls)

	if err := s.Disconnect(); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if s.Client().IsAuthenticated() {
		t.Error("client still authenticated after Disconnect")
	}
}
