package playback

import "github.com/ArtistGrid/player/internal/catalog"

// Queue is the ordered pending-playback list. Insertion order is play
// order; the head is consumed on every advance.
type Queue struct {
	tracks []catalog.Track
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{tracks: make([]catalog.Track, 0)}
}

// Append adds tracks to the end of the queue.
func (q *Queue) Append(tracks ...catalog.Track) {
	q.tracks = append(q.tracks, tracks...)
}

// PopFront removes and returns the head of the queue.
func (q *Queue) PopFront() (catalog.Track, bool) {
	if len(q.tracks) == 0 {
		return catalog.Track{}, false
	}
	head := q.tracks[0]
	q.tracks = q.tracks[1:]
	return head, true
}

// RemoveAt removes the track at the given index.
// Returns false if index is out of bounds.
func (q *Queue) RemoveAt(index int) bool {
	if index < 0 || index >= len(q.tracks) {
		return false
	}
	q.tracks = append(q.tracks[:index], q.tracks[index+1:]...)
	return true
}

// RemoveByID removes the first track with the given id.
func (q *Queue) RemoveByID(id string) bool {
	for i := range q.tracks {
		if q.tracks[i].ID == id {
			return q.RemoveAt(i)
		}
	}
	return false
}

// Move moves the track at from to position to: remove then insert,
// not a swap.
func (q *Queue) Move(from, to int) bool {
	if from < 0 || from >= len(q.tracks) {
		return false
	}
	if to < 0 || to >= len(q.tracks) {
		return false
	}
	if from == to {
		return true
	}
	track := q.tracks[from]
	q.tracks = append(q.tracks[:from], q.tracks[from+1:]...)
	q.tracks = append(q.tracks[:to], append([]catalog.Track{track}, q.tracks[to:]...)...)
	return true
}

// Clear removes all tracks.
func (q *Queue) Clear() {
	q.tracks = q.tracks[:0]
}

// Tracks returns a copy of the queue contents.
func (q *Queue) Tracks() []catalog.Track {
	result := make([]catalog.Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Len returns the number of queued tracks.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// IsEmpty reports whether the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return len(q.tracks) == 0
}
