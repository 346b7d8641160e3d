package spotify

import "strings"

// DemoArtistName is the artist served when the API cannot be used
const DemoArtistName = "NewJeans"

// IsDemoSubject reports whether subject mentions the demo artist, ignoring case
func IsDemoSubject(subject string) bool {
	return strings.Contains(strings.ToLower(subject), strings.ToLower(DemoArtistName))
}

// DemoArtist returns a fresh copy of the hardcoded demo record
func DemoArtist() *Artist {
	return &Artist{
		ID:          "6HvZYsbFfjnjFrWF950C9d",
		Name:        DemoArtistName,
		Followers:   9800000,
		Genres:      []string{"k-pop", "k-pop girl group"},
		ImageURL:    "https://i.scdn.co/image/ab6761610000e5eb5da361915b1fa48895d4f23f",
		Popularity:  80,
		ExternalURL: "https://open.spotify.com/artist/6HvZYsbFfjnjFrWF950C9d",
		URI:         "spotify:artist:6HvZYsbFfjnjFrWF950C9d",
		Releases: []Release{
			{Name: "How Sweet", ReleaseDate: "2024-05-24", Type: "single", URL: "https://open.spotify.com/album/0EhZEM4RRz0yioTgucDhJq"},
			{Name: "Supernatural", ReleaseDate: "2024-06-21", Type: "single", URL: "https://open.spotify.com/album/1mhgMu6ufF6FBRlgyMmkXu"},
			{Name: "Get Up", ReleaseDate: "2023-07-21", Type: "album", URL: "https://open.spotify.com/album/4N1fROq2oeyLGAlQ1C1j18"},
		},
		Demo: true,
	}
}
