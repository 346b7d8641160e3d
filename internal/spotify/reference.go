package spotify

import (
	"regexp"
	"strings"
)

// Kind is the kind of entity a subject refers to
type Kind string

const (
	KindArtist Kind = "artist"
	KindTrack  Kind = "track"
	KindAlbum  Kind = "album"
	KindSearch Kind = "search"
)

var (
	uriPattern  = regexp.MustCompile(`^spotify:(artist|track|album):([A-Za-z0-9]{22})$`)
	linkPattern = regexp.MustCompile(`open\.spotify\.com/(?:intl-[A-Za-z-]+/)?(artist|track|album)/([A-Za-z0-9]{22})`)
	idPattern   = regexp.MustCompile(`^[A-Za-z0-9]{22}$`)
)

// Reference is a parsed resolver subject
type Reference struct {
	Kind  Kind
	ID    string
	Query string
}

// ParseReference recognises spotify: URIs, open.spotify.com links and bare
// artist ids. Anything else becomes a search query.
func ParseReference(subject string) Reference {
	subject = strings.TrimSpace(subject)

	if m := uriPattern.FindStringSubmatch(subject); m != nil {
		return Reference{Kind: Kind(m[1]), ID: m[2]}
	}
	if m := linkPattern.FindStringSubmatch(subject); m != nil {
		return Reference{Kind: Kind(m[1]), ID: m[2]}
	}
	if idPattern.MatchString(subject) {
		return Reference{Kind: KindArtist, ID: subject}
	}
	return Reference{Kind: KindSearch, Query: subject}
}
