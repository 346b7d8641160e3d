package content

import (
	"hash/fnv"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify lowercases s, folds accented Latin letters to their base letter and
// collapses every run of characters outside [a-z0-9] into a single hyphen.
// Scripts without a Latin base (Hangul, Kana) are dropped.
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	hyphen := false
	for _, r := range strings.ToLower(folded) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			hyphen = false
			continue
		}
		if !hyphen && b.Len() > 0 {
			b.WriteByte('-')
			hyphen = true
		}
	}

	return strings.TrimRight(b.String(), "-")
}

// PostSlug builds the slug of a generated post: the slugified "artist song"
// (or "post" when nothing survives) plus a base36 timestamp suffix.
func PostSlug(artist, song string, now time.Time) string {
	base := Slugify(artist + " " + song)
	if base == "" {
		base = "post"
	}
	return base + "-" + strconv.FormatInt(now.UnixNano(), 36)
}

// TagSlug is Slugify(name), or a stable "tag-<hash>" for names with no
// Latin characters so that the same name always maps to the same slug.
func TagSlug(name string) string {
	if s := Slugify(name); s != "" {
		return s
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(name))))
	return "tag-" + strconv.FormatUint(uint64(h.Sum32()), 36)
}
