package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Manager {
	t.Helper()
	m, err := OpenPath(filepath.Join(t.TempDir(), "player.db"))
	if err != nil {
		t.Fatalf("OpenPath() error = %v", err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestSession_RoundTrip(t *testing.T) {
	m := openTestStore(t)

	s, err := m.LastfmSession()
	if err != nil {
		t.Fatalf("LastfmSession() error = %v", err)
	}
	if s != nil {
		t.Fatalf("fresh store returned session %+v", s)
	}

	want := Session{SessionKey: "sk-1", Username: "alice"}
	if err := m.SaveLastfmSession(want); err != nil {
		t.Fatalf("SaveLastfmSession() error = %v", err)
	}

	s, err = m.LastfmSession()
	if err != nil {
		t.Fatalf("LastfmSession() error = %v", err)
	}
	if s == nil {
		t.Fatal("saved session not found")
	}
	if *s != want {
		t.Errorf("session = %+v, want %+v", *s, want)
	}
}

func TestSession_Delete(t *testing.T) {
	m := openTestStore(t)

	if err := m.SaveLastfmSession(Session{SessionKey: "sk-1"}); err != nil {
		t.Fatalf("SaveLastfmSession() error = %v", err)
	}
	if err := m.DeleteLastfmSession(); err != nil {
		t.Fatalf("DeleteLastfmSession() error = %v", err)
	}

	s, err := m.LastfmSession()
	if err != nil {
		t.Fatalf("LastfmSession() error = %v", err)
	}
	if s != nil {
		t.Errorf("session still present after delete: %+v", s)
	}
}

func TestSession_CorruptRowReadsAsAbsent(t *testing.T) {
	m := openTestStore(t)

	tests := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: "{{{not json"},
		{name: "empty session key", raw: `{"sessionKey":"","displayName":"alice"}`},
		{name: "empty value", raw: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.set(sessionKey, tt.raw); err != nil {
				t.Fatalf("set() error = %v", err)
			}
			s, err := m.LastfmSession()
			if err != nil {
				t.Fatalf("LastfmSession() error = %v", err)
			}
			if s != nil {
				t.Errorf("corrupt row read as session %+v, want nil", s)
			}
		})
	}
}

func TestSession_SaveOverwrites(t *testing.T) {
	m := openTestStore(t)

	if err := m.SaveLastfmSession(Session{SessionKey: "sk-1", Username: "alice"}); err != nil {
		t.Fatalf("SaveLastfmSession() error = %v", err)
	}
	if err := m.SaveLastfmSession(Session{SessionKey: "sk-2", Username: "bob"}); err != nil {
		t.Fatalf("SaveLastfmSession() error = %v", err)
	}

	s, err := m.LastfmSession()
	if err != nil {
		t.Fatalf("LastfmSession() error = %v", err)
	}
	if s == nil || s.SessionKey != "sk-2" || s.Username != "bob" {
		t.Errorf("session = %+v, want sk-2/bob", s)
	}
}

func TestVolume_RoundTrip(t *testing.T) {
	m := openTestStore(t)

	if got := m.Volume(0.7); got != 0.7 {
		t.Errorf("Volume() on fresh store = %f, want fallback 0.7", got)
	}

	if err := m.SaveVolume(0.45); err != nil {
		t.Fatalf("SaveVolume() error = %v", err)
	}
	if got := m.Volume(1.0); got != 0.45 {
		t.Errorf("Volume() = %f, want 0.45", got)
	}
}

func TestVolume_ClampsOnSave(t *testing.T) {
	m := openTestStore(t)

	if err := m.SaveVolume(1.8); err != nil {
		t.Fatalf("SaveVolume() error = %v", err)
	}
	if got := m.Volume(0.5); got != 1.0 {
		t.Errorf("Volume() = %f, want clamped 1.0", got)
	}

	if err := m.SaveVolume(-0.3); err != nil {
		t.Fatalf("SaveVolume() error = %v", err)
	}
	if got := m.Volume(0.5); got != 0.0 {
		t.Errorf("Volume() = %f, want clamped 0.0", got)
	}
}

func TestVolume_GarbageReadsAsFallback(t *testing.T) {
	m := openTestStore(t)

	if err := m.set(volumeKey, "not-a-number"); err != nil {
		t.Fatalf("set() error = %v", err)
	}
	if got := m.Volume(0.6); got != 0.6 {
		t.Errorf("Volume() = %f, want fallback 0.6", got)
	}

	if err := m.set(volumeKey, "5.0"); err != nil {
		t.Fatalf("set() error = %v", err)
	}
	if got := m.Volume(0.6); got != 0.6 {
		t.Errorf("Volume() out of range = %f, want fallback 0.6", got)
	}
}
