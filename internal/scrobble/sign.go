package scrobble

import (
	"crypto/md5"
	"encoding/hex"
	"sort"
	"strings"
)

// Signature computes the api_sig for a Last.fm style request: the
// parameter keys sorted lexicographically, concatenated as key+value,
// the shared secret appended, md5-hashed and hex-encoded lowercase.
// Transport-only fields (format, callback) are excluded.
func Signature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "format" || k == "callback" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sig strings.Builder
	for _, k := range keys {
		sig.WriteString(k)
		sig.WriteString(params[k])
	}
	sig.WriteString(secret)

	hash := md5.Sum([]byte(sig.String()))
	return hex.EncodeToString(hash[:])
}
