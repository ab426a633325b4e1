package catalog

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Track links are shared as "{name}\n{sourceURL}" encoded with the
// URL-safe base64 alphabet so they survive query strings unescaped.

const linkSeparator = "\n"

// EncodeTrackLink encodes a track's name and source URL into a
// URL-safe opaque string.
func EncodeTrackLink(t Track) string {
	payload := t.Name + linkSeparator + t.SourceURL
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// DecodeTrackLink reverses EncodeTrackLink. The returned track has
// only Name, SourceURL, ID and Source set; resolution happens later.
func DecodeTrackLink(s string) (Track, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return Track{}, fmt.Errorf("decode track link: %w", err)
	}
	name, url, ok := strings.Cut(string(raw), linkSeparator)
	if !ok || name == "" || url == "" {
		return Track{}, ErrInvalidEntry
	}
	return Track{
		ID:        TrackID(url),
		Name:      name,
		SourceURL: url,
		Source:    SourceUnknown,
	}, nil
}
