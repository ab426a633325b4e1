package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubscription_Delivery(t *testing.T) {
	s := newSubscription()

	track := tr("a")
	s.sendTrack(TrackChange{Current: &track})
	s.sendState(StateChange{Playing: true})
	s.sendVolume(VolumeChange{Volume: 0.5})

	ev := <-s.TrackChanged
	assert.NotNil(t, ev.Current)
	assert.Equal(t, "a", ev.Current.ID)
	assert.Nil(t, ev.Previous)

	st := <-s.StateChanged
	assert.True(t, st.Playing)

	vol := <-s.VolumeChanged
	assert.Equal(t, 0.5, vol.Volume)
}

func TestSubscription_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	s := newSubscription()

	// Overfill the state channel; sends past the buffer must not block.
	for i := 0; i < eventBufferSize*2; i++ {
		s.sendState(StateChange{Playing: i%2 == 0})
	}

	assert.Equal(t, eventBufferSize, len(s.stateCh))
}

func TestSubscription_Close(t *testing.T) {
	s := newSubscription()
	s.close()

	select {
	case <-s.Done:
	default:
		t.Fatal("Done not closed")
	}
}
