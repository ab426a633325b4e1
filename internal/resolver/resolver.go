// Package resolver maps third-party hosting links to direct-stream URLs.
package resolver

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/ArtistGrid/player/internal/catalog"
)

// batchSize bounds concurrent outbound lookups in ResolveMany.
const batchSize = 10

// Config holds the proxy endpoints for providers that need a remote
// lookup or stream rewrite.
type Config struct {
	KrakenfilesProxy string // GET {proxy}?id={id} -> {success, url}
	OnlyfilesProxy   string // GET {proxy}?id={id} -> {success, directUrl}
	SoundcloudProxy  string // template with {user} and {track} placeholders
}

// Resolver classifies hosting URLs and produces playable stream URLs.
type Resolver struct {
	cfg    Config
	lookup *lookupClient
	log    *logrus.Entry
}

// New creates a resolver using the given proxy configuration.
func New(cfg Config) *Resolver {
	return &Resolver{
		cfg:    cfg,
		lookup: newLookupClient(),
		log:    logrus.WithField("component", "resolver"),
	}
}

// Classify reports which hosting provider a URL belongs to.
func Classify(rawURL string) catalog.Source {
	u, err := url.Parse(normalizeHost(rawURL))
	if err != nil {
		return catalog.SourceUnknown
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch {
	case host == "pillows.su" || host == "api.pillows.su":
		return catalog.SourcePillowcase
	case host == "music.froste.lol":
		return catalog.SourceFroste
	case host == "krakenfiles.com":
		return catalog.SourceKrakenfiles
	case host == "onlyfiles.cc":
		return catalog.SourceOnlyfiles
	case host == "sugarwillow.com":
		return catalog.SourceSugarwillow
	case host == "soundcloud.com" || host == "on.soundcloud.com":
		return catalog.SourceSoundcloud
	case host == "files.catbox.moe" || hasAudioExtension(u.Path):
		return catalog.SourceDirect
	default:
		return catalog.SourceUnknown
	}
}

// Resolve maps a hosting URL to a directly playable audio URL.
// It never fails; any error (unknown pattern, network, lookup refusal)
// yields "" and the caller treats the track as not playable.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) string {
	norm := normalizeHost(rawURL)

	switch Classify(norm) {
	case catalog.SourcePillowcase:
		return rewritePillowcase(norm)
	case catalog.SourceFroste:
		return rewriteFroste(norm)
	case catalog.SourceKrakenfiles:
		return r.lookupKrakenfiles(ctx, norm)
	case catalog.SourceOnlyfiles:
		return r.lookupOnlyfiles(ctx, norm)
	case catalog.SourceSugarwillow:
		return constructSugarwillow(norm)
	case catalog.SourceSoundcloud:
		return r.rewriteSoundcloud(norm)
	case catalog.SourceDirect:
		return norm
	default:
		r.log.WithField("url", rawURL).Debug("unknown hosting pattern")
		return ""
	}
}

// ResolveMany resolves a set of URLs in batches of ten: full
// parallelism within a batch, batches run sequentially. The result
// contains every input exactly once, failed resolutions as "".
func (r *Resolver) ResolveMany(ctx context.Context, urls []string) map[string]string {
	results := make(map[string]string, len(urls))
	var mu sync.Mutex

	for start := 0; start < len(urls); start += batchSize {
		end := min(start+batchSize, len(urls))

		var wg sync.WaitGroup
		for _, u := range urls[start:end] {
			mu.Lock()
			if _, seen := results[u]; seen {
				mu.Unlock()
				continue
			}
			results[u] = ""
			mu.Unlock()

			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				resolved := r.Resolve(ctx, u)
				mu.Lock()
				results[u] = resolved
				mu.Unlock()
			}(u)
		}
		wg.Wait()
	}

	return results
}

// normalizeHost rewrites known alias domains to the canonical host
// before classification.
func normalizeHost(rawURL string) string {
	replacer := strings.NewReplacer(
		"pillowcase.su/", "pillows.su/",
		"plwcse.top/", "pillows.su/",
	)
	return replacer.Replace(rawURL)
}

func hasAudioExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".mp3", ".m4a", ".wav", ".flac", ".ogg", ".opus", ".aac"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
