package output

import (
	"sync"
	"time"
)

// Mock is a test double for the output device. Event injection
// helpers simulate the device-side notifications the engine reacts
// to.
type Mock struct {
	mu        sync.Mutex
	state     State
	vol       float64
	position  time.Duration
	duration  time.Duration
	loadErr   error
	loadCalls []string
	seekCalls []time.Duration

	events chan Event
	closed bool
}

var _ Interface = (*Mock)(nil)

// NewMock creates a mock output.
func NewMock() *Mock {
	return &Mock{
		vol:    1.0,
		events: make(chan Event, eventBufferSize),
	}
}

func (m *Mock) Load(url string) error {
	m.mu.Lock()
	m.loadCalls = append(m.loadCalls, url)
	if m.loadErr != nil {
		err := m.loadErr
		m.mu.Unlock()
		return err
	}
	m.state = Playing
	m.position = 0
	m.mu.Unlock()
	m.emit(Event{Kind: EventPlaying})
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	if m.state != Playing {
		m.mu.Unlock()
		return
	}
	m.state = Paused
	m.mu.Unlock()
	m.emit(Event{Kind: EventPaused})
}

func (m *Mock) Resume() {
	m.mu.Lock()
	if m.state != Paused {
		m.mu.Unlock()
		return
	}
	m.state = Playing
	m.mu.Unlock()
	m.emit(Event{Kind: EventPlaying})
}

func (m *Mock) Toggle() {
	m.mu.Lock()
	state := m.state
	m.mu.Unlock()
	switch state {
	case Playing:
		m.Pause()
	case Paused:
		m.Resume()
	case Stopped:
	}
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Stopped
	m.position = 0
	m.duration = 0
}

func (m *Mock) SeekTo(pos time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seekCalls = append(m.seekCalls, pos)
	m.position = pos
}

func (m *Mock) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vol = v
}

func (m *Mock) Volume() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vol
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Events() <-chan Event {
	return m.events
}

func (m *Mock) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.events)
	}
}

// emit matches the real device: a full buffer drops the event rather
// than blocking a caller that may be on the consumer's goroutine.
func (m *Mock) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
	}
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

// EmitLoaded simulates the device reporting the source's metadata.
func (m *Mock) EmitLoaded(duration time.Duration) {
	m.mu.Lock()
	m.duration = duration
	m.mu.Unlock()
	m.events <- Event{Kind: EventLoaded, Duration: duration}
}

// EmitFinished simulates a natural end of media.
func (m *Mock) EmitFinished() {
	m.mu.Lock()
	m.state = Stopped
	m.mu.Unlock()
	m.events <- Event{Kind: EventFinished}
}

// EmitTimeUpdate simulates a position update.
func (m *Mock) EmitTimeUpdate(pos time.Duration) {
	m.mu.Lock()
	m.position = pos
	m.mu.Unlock()
	m.events <- Event{Kind: EventTimeUpdate, Position: pos}
}

// EmitPlaying and EmitPaused simulate device-driven state changes
// (e.g. an external pause).

func (m *Mock) EmitPlaying() {
	m.mu.Lock()
	m.state = Playing
	m.mu.Unlock()
	m.events <- Event{Kind: EventPlaying}
}

func (m *Mock) EmitPaused() {
	m.mu.Lock()
	m.state = Paused
	m.mu.Unlock()
	m.events <- Event{Kind: EventPaused}
}
