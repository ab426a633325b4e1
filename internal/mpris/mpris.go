//go:build linux

// Package mpris exposes the player session as an MPRIS media player
// over D-Bus, so desktop media keys and applets control playback.
package mpris

import (
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/sirupsen/logrus"

	"github.com/ArtistGrid/player/internal/catalog"
	"github.com/ArtistGrid/player/internal/playback"
)

const trackIDPrefix = "/org/mpris/MediaPlayer2/Track/"

// Adapter connects the playback engine to MPRIS over D-Bus.
type Adapter struct {
	engine *playback.Engine
	server *server.Server
	evt    *events.EventHandler
	sub    *playback.Subscription
	log    *logrus.Entry
}

// New creates and starts an MPRIS adapter for the engine.
func New(engine *playback.Engine) (*Adapter, error) {
	a := &Adapter{
		engine: engine,
		log:    logrus.WithField("component", "mpris"),
	}

	rootAdapter := &rootAdapter{}
	playerAdapter := &playerAdapter{engine: engine}

	a.server = server.NewServer("artistgrid", rootAdapter, playerAdapter)
	a.evt = events.NewEventHandler(a.server)
	a.sub = engine.Subscribe()

	go func() {
		if err := a.server.Listen(); err != nil {
			a.log.WithError(err).Warn("dbus listen failed; media keys unavailable")
		}
	}()
	go a.forward()

	return a, nil
}

// forward pushes engine events out as MPRIS property-change signals.
func (a *Adapter) forward() {
	for {
		select {
		case <-a.sub.Done:
			return
		case <-a.sub.TrackChanged:
			a.evt.Player.OnTitle()
		case <-a.sub.StateChanged:
			a.evt.Player.OnPlayPause()
		case <-a.sub.VolumeChanged:
			a.evt.Player.OnVolume()
		case <-a.sub.PositionChanged:
			// Clients poll Position; no signal for normal progress.
		case <-a.sub.QueueChanged:
		}
	}
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil // No window to raise
}

func (r *rootAdapter) Quit() error {
	return nil // Lifecycle is owned by the process
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "ArtistGrid Player", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp4", "audio/flac"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter.
type playerAdapter struct {
	engine *playback.Engine
}

func (p *playerAdapter) Next() error {
	p.engine.PlayNext()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.engine.PlayPrevious()
	return nil
}

func (p *playerAdapter) Pause() error {
	if p.engine.IsPlaying() {
		p.engine.TogglePlayPause()
	}
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.engine.TogglePlayPause()
	return nil
}

func (p *playerAdapter) Stop() error {
	p.engine.ClosePlayer()
	return nil
}

func (p *playerAdapter) Play() error {
	if !p.engine.IsPlaying() {
		p.engine.TogglePlayPause()
	}
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	p.engine.SeekTo(p.engine.Position() + time.Duration(offset)*time.Microsecond)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	p.engine.SeekTo(time.Duration(position) * time.Microsecond)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil // Not supported
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	st := p.engine.Snapshot()
	switch {
	case st.IsPlaying:
		return types.PlaybackStatusPlaying, nil
	case st.CurrentTrack != nil:
		return types.PlaybackStatusPaused, nil
	default:
		return types.PlaybackStatusStopped, nil
	}
}

func (p *playerAdapter) Rate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetRate(_ float64) error {
	return nil // Not supported
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	st := p.engine.Snapshot()
	track := st.CurrentTrack
	if track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(trackIDPrefix + catalog.TrackID(track.SourceURL)),
		Length:  types.Microseconds(st.Duration.Microseconds()),
		Title:   track.Name,
		Artist:  []string{track.Artist()},
		Album:   track.EraName,
	}
	if track.EraImage != "" {
		meta.ArtUrl = track.EraImage
	}

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return p.engine.Volume(), nil
}

func (p *playerAdapter) SetVolume(v float64) error {
	p.engine.SetVolume(v)
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.engine.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	return len(p.engine.QueueTracks()) > 0, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return len(p.engine.HistoryTracks()) >= 2, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return p.engine.CurrentTrack() != nil, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return true, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}
