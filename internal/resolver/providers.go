package resolver

import (
	"context"
	"regexp"
	"strings"
)

// Fixed path patterns per provider. Resolution for the rewrite and
// construction kinds is a pure string transform with no network I/O.
var (
	pillowcaseRe  = regexp.MustCompile(`pillows\.su/f/([A-Za-z0-9]+)`)
	frosteRe      = regexp.MustCompile(`music\.froste\.lol/song/([A-Za-z0-9]+)`)
	krakenRe      = regexp.MustCompile(`krakenfiles\.com/view/([A-Za-z0-9]+)`)
	onlyfilesRe   = regexp.MustCompile(`onlyfiles\.cc/f/([A-Za-z0-9]+)`)
	sugarwillowRe = regexp.MustCompile(`sugarwillow\.com/file/([A-Za-z0-9-]+)`)
	soundcloudRe  = regexp.MustCompile(`soundcloud\.com/([A-Za-z0-9_-]+)/([A-Za-z0-9_-]+)`)
)

func rewritePillowcase(u string) string {
	m := pillowcaseRe.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return "https://api.pillows.su/api/download/" + m[1]
}

func rewriteFroste(u string) string {
	m := frosteRe.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return "https://music.froste.lol/song/" + m[1] + "/file"
}

func constructSugarwillow(u string) string {
	m := sugarwillowRe.FindStringSubmatch(u)
	if m == nil {
		return ""
	}
	return "https://sugarwillow.com/api/download/" + m[1]
}

func (r *Resolver) lookupKrakenfiles(ctx context.Context, u string) string {
	m := krakenRe.FindStringSubmatch(u)
	if m == nil || r.cfg.KrakenfilesProxy == "" {
		return ""
	}
	return r.lookup.fetch(ctx, r.cfg.KrakenfilesProxy, m[1], "url")
}

func (r *Resolver) lookupOnlyfiles(ctx context.Context, u string) string {
	m := onlyfilesRe.FindStringSubmatch(u)
	if m == nil || r.cfg.OnlyfilesProxy == "" {
		return ""
	}
	return r.lookup.fetch(ctx, r.cfg.OnlyfilesProxy, m[1], "directUrl")
}

// rewriteSoundcloud substitutes the {user}/{track} path segment into
// the configured stream proxy template.
func (r *Resolver) rewriteSoundcloud(u string) string {
	m := soundcloudRe.FindStringSubmatch(u)
	if m == nil || r.cfg.SoundcloudProxy == "" {
		return ""
	}
	out := strings.ReplaceAll(r.cfg.SoundcloudProxy, "{user}", m[1])
	return strings.ReplaceAll(out, "{track}", m[2])
}
