package output

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/supersonic-app/go-mpv"
)

// ErrUninitialized is returned by Load before Init has been called.
var ErrUninitialized = errors.New("mpv output uninitialized")

const (
	timePosUserdata = 1
	eventBufferSize = 32
)

// Player is the libmpv-backed output. One instance exists per process
// and is never recreated; Init starts its event loop.
type Player struct {
	mpv         *mpv.Mpv
	initialized bool
	log         *logrus.Entry

	mu       sync.Mutex
	state    State
	vol      float64
	position time.Duration
	duration time.Duration
	loaded   bool

	events chan Event
	cancel context.CancelFunc
}

var _ Interface = (*Player)(nil)

// NewPlayer returns an output backed by libmpv. Call Init before use.
func NewPlayer() *Player {
	return &Player{
		vol:    1.0,
		events: make(chan Event, eventBufferSize),
		log:    logrus.WithField("component", "output"),
	}
}

// Init creates and configures the mpv instance. cacheMB bounds the
// demuxer's in-memory cache for remote streams.
func (p *Player) Init(cacheMB int) error {
	if p.initialized {
		return nil
	}
	m := mpv.Create()

	m.SetOptionString("idle", "yes")
	m.SetOptionString("video", "no")
	m.SetOptionString("audio-display", "no")
	m.SetOptionString("force-seekable", "yes")
	m.SetOptionString("terminal", "no")
	m.SetOptionString("audio-client-name", "artistgrid-player")

	if cacheMB > 0 {
		maxBackMB := cacheMB / 3
		m.SetOptionString("demuxer-max-bytes", fmt.Sprintf("%dMiB", cacheMB-maxBackMB))
		m.SetOptionString("demuxer-max-back-bytes", fmt.Sprintf("%dMiB", maxBackMB))
	}

	m.SetOption("volume", mpv.FORMAT_INT64, int64(p.vol*100))
	m.ObserveProperty(timePosUserdata, "time-pos", mpv.FORMAT_DOUBLE)

	if err := m.Initialize(); err != nil {
		return fmt.Errorf("initialize mpv: %w", err)
	}
	p.mpv = m

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	go p.eventLoop(ctx)
	p.initialized = true
	return nil
}

// Load replaces the current source and starts playback.
func (p *Player) Load(url string) error {
	if !p.initialized {
		return ErrUninitialized
	}
	if err := p.mpv.Command([]string{"loadfile", url, "replace"}); err != nil {
		return err
	}
	p.mpv.SetProperty("pause", mpv.FORMAT_FLAG, false)
	p.mu.Lock()
	p.loaded = true
	p.position = 0
	p.duration = 0
	p.mu.Unlock()
	p.setState(Playing)
	return nil
}

func (p *Player) Pause() {
	if !p.initialized || p.State() != Playing {
		return
	}
	if err := p.mpv.SetProperty("pause", mpv.FORMAT_FLAG, true); err == nil {
		p.setState(Paused)
	}
}

func (p *Player) Resume() {
	if !p.initialized || p.State() != Paused {
		return
	}
	if err := p.mpv.SetProperty("pause", mpv.FORMAT_FLAG, false); err == nil {
		p.setState(Playing)
	}
}

func (p *Player) Toggle() {
	switch p.State() {
	case Playing:
		p.Pause()
	case Paused:
		p.Resume()
	case Stopped:
	}
}

// Stop halts playback and clears the source.
func (p *Player) Stop() {
	if !p.initialized {
		return
	}
	p.mpv.Command([]string{"stop"})
	p.mpv.SetProperty("pause", mpv.FORMAT_FLAG, false)
	p.mu.Lock()
	p.loaded = false
	p.position = 0
	p.duration = 0
	p.mu.Unlock()
	p.setState(Stopped)
}

func (p *Player) SeekTo(pos time.Duration) {
	if !p.initialized {
		return
	}
	target := fmt.Sprintf("%0.1f", pos.Seconds())
	p.mpv.Command([]string{"seek", target, "absolute"})
}

func (p *Player) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	p.mu.Lock()
	p.vol = v
	p.mu.Unlock()
	if p.initialized {
		p.mpv.SetProperty("volume", mpv.FORMAT_INT64, int64(v*100))
	}
}

func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vol
}

func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func (p *Player) Events() <-chan Event {
	return p.events
}

// Close tears down the mpv instance and closes the event channel.
func (p *Player) Close() {
	if p.cancel != nil {
		p.cancel()
	}
	if p.initialized {
		p.mpv.Command([]string{"stop"})
		p.mpv.TerminateDestroy()
		p.initialized = false
	}
}

func (p *Player) setState(s State) {
	p.mu.Lock()
	prev := p.state
	p.state = s
	p.mu.Unlock()
	if prev == s {
		return
	}
	switch s {
	case Playing:
		p.emit(Event{Kind: EventPlaying})
	case Paused:
		p.emit(Event{Kind: EventPaused})
	case Stopped:
	}
}

// emit sends without blocking; a full buffer drops the event, which
// only ever loses position updates in practice.
func (p *Player) emit(e Event) {
	select {
	case p.events <- e:
	default:
	}
}

func (p *Player) eventLoop(ctx context.Context) {
	defer close(p.events)
	for {
		select {
		case <-ctx.Done():
			return
		default:
			e := p.mpv.WaitEvent(1 /*timeout seconds*/)
			switch e.Event_Id {
			case mpv.EVENT_FILE_LOADED:
				p.handleFileLoaded()
			case mpv.EVENT_IDLE:
				p.handleIdle()
			case mpv.EVENT_PROPERTY_CHANGE:
				if e.Reply_Userdata == timePosUserdata {
					p.handleTimePos()
				}
			case mpv.EVENT_SHUTDOWN:
				return
			}
		}
	}
}

func (p *Player) handleFileLoaded() {
	var dur time.Duration
	if v, err := p.mpv.GetProperty("duration", mpv.FORMAT_DOUBLE); err == nil && v != nil {
		dur = time.Duration(v.(float64) * float64(time.Second))
	}
	p.mu.Lock()
	p.duration = dur
	p.mu.Unlock()
	p.emit(Event{Kind: EventLoaded, Duration: dur})
}

// handleIdle marks a natural end of media: mpv goes idle when the
// loaded file finishes and nothing else is queued.
func (p *Player) handleIdle() {
	p.mu.Lock()
	wasLoaded := p.loaded
	p.loaded = false
	p.position = 0
	p.duration = 0
	p.mu.Unlock()
	if wasLoaded && p.State() != Stopped {
		p.setState(Stopped)
		p.emit(Event{Kind: EventFinished})
	}
}

func (p *Player) handleTimePos() {
	v, err := p.mpv.GetProperty("time-pos", mpv.FORMAT_DOUBLE)
	if err != nil || v == nil {
		return
	}
	pos := time.Duration(v.(float64) * float64(time.Second))
	if pos < 0 {
		pos = 0
	}
	p.mu.Lock()
	p.position = pos
	p.mu.Unlock()
	p.emit(Event{Kind: EventTimeUpdate, Position: pos})
}
