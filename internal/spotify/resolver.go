package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Release is a recent album or single
type Release struct {
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	Type        string `json:"type"`
	URL         string `json:"url"`
}

// Artist is the resolved artist profile
type Artist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Followers   int       `json:"followers"`
	Genres      []string  `json:"genres"`
	ImageURL    string    `json:"image_url,omitempty"`
	Popularity  int       `json:"popularity"`
	ExternalURL string    `json:"external_url"`
	URI         string    `json:"uri"`
	Releases    []Release `json:"releases"`
	Demo        bool      `json:"demo,omitempty"`
}

// Lookup is the resolver result. Exactly one of Artist and Error is set.
type Lookup struct {
	Artist *Artist `json:"artist,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// OK reports whether an artist was resolved
func (l Lookup) OK() bool {
	return l.Artist != nil
}

// Config holds client credentials and endpoints
type Config struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	APIBaseURL   string
	Timeout      time.Duration
}

// Resolver resolves artist profiles. It never caches tokens or results.
type Resolver struct {
	cfg    Config
	client *http.Client
	log    zerolog.Logger
}

// NewResolver creates a resolver
func NewResolver(cfg Config, log zerolog.Logger) *Resolver {
	if cfg.TokenURL == "" {
		cfg.TokenURL = "https://accounts.spotify.com/api/token"
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://api.spotify.com/v1"
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Resolver{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With().Str("component", "spotify").Logger(),
	}
}

// Resolve returns the artist for subject: an artist id, a spotify: URI, an
// open.spotify.com link or free text. Failures come back in Lookup.Error,
// or as the demo record when subject names the demo artist.
func (r *Resolver) Resolve(ctx context.Context, subject string) Lookup {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return Lookup{Error: "subject is required"}
	}

	if r.cfg.ClientID == "" || r.cfg.ClientSecret == "" {
		return r.fallback(subject, errors.New("spotify credentials are not configured"))
	}

	token, err := r.token(ctx)
	if err != nil {
		return r.fallback(subject, fmt.Errorf("spotify token exchange failed: %w", err))
	}

	ref := ParseReference(subject)
	artistID, err := r.artistID(ctx, token, ref)
	if err != nil {
		return r.fallback(subject, err)
	}

	artist, err := r.fetchArtist(ctx, token, artistID)
	if err != nil {
		return r.fallback(subject, err)
	}

	releases, err := r.fetchReleases(ctx, token, artistID)
	if err != nil {
		r.log.Warn().Err(err).Str("artist_id", artistID).Msg("Failed to fetch releases")
	}
	artist.Releases = releases

	return Lookup{Artist: artist}
}

func (r *Resolver) fallback(subject string, cause error) Lookup {
	if IsDemoSubject(subject) {
		r.log.Info().Err(cause).Str("subject", subject).Msg("Serving demo artist record")
		return Lookup{Artist: DemoArtist()}
	}
	r.log.Warn().Err(cause).Str("subject", subject).Msg("Artist lookup failed")
	return Lookup{Error: cause.Error()}
}

// token exchanges client credentials on every call
func (r *Resolver) token(ctx context.Context) (string, error) {
	cc := clientcredentials.Config{
		ClientID:     r.cfg.ClientID,
		ClientSecret: r.cfg.ClientSecret,
		TokenURL:     r.cfg.TokenURL,
	}
	tok, err := cc.Token(context.WithValue(ctx, oauth2.HTTPClient, r.client))
	if err != nil {
		return "", err
	}
	return tok.AccessToken, nil
}

func (r *Resolver) artistID(ctx context.Context, token string, ref Reference) (string, error) {
	switch ref.Kind {
	case KindArtist:
		return ref.ID, nil
	case KindTrack:
		var track struct {
			Artists []struct {
				ID string `json:"id"`
			} `json:"artists"`
		}
		if err := r.get(ctx, token, "/tracks/"+ref.ID, nil, &track); err != nil {
			return "", err
		}
		if len(track.Artists) == 0 {
			return "", fmt.Errorf("track %s has no artists", ref.ID)
		}
		return track.Artists[0].ID, nil
	case KindAlbum:
		var album struct {
			Artists []struct {
				ID string `json:"id"`
			} `json:"artists"`
		}
		if err := r.get(ctx, token, "/albums/"+ref.ID, nil, &album); err != nil {
			return "", err
		}
		if len(album.Artists) == 0 {
			return "", fmt.Errorf("album %s has no artists", ref.ID)
		}
		return album.Artists[0].ID, nil
	default:
		return r.search(ctx, token, ref.Query)
	}
}

// search tries a track search first so "artist song" subjects land on the
// performing artist, then an artist search.
func (r *Resolver) search(ctx context.Context, token, query string) (string, error) {
	var tracks struct {
		Tracks struct {
			Items []struct {
				Artists []struct {
					ID string `json:"id"`
				} `json:"artists"`
			} `json:"items"`
		} `json:"tracks"`
	}
	params := url.Values{"q": {query}, "type": {"track"}, "limit": {"1"}}
	if err := r.get(ctx, token, "/search", params, &tracks); err != nil {
		return "", err
	}
	if items := tracks.Tracks.Items; len(items) > 0 && len(items[0].Artists) > 0 {
		return items[0].Artists[0].ID, nil
	}

	var artists struct {
		Artists struct {
			Items []struct {
				ID string `json:"id"`
			} `json:"items"`
		} `json:"artists"`
	}
	params.Set("type", "artist")
	if err := r.get(ctx, token, "/search", params, &artists); err != nil {
		return "", err
	}
	if len(artists.Artists.Items) == 0 {
		return "", fmt.Errorf("no artist found for %q", query)
	}
	return artists.Artists.Items[0].ID, nil
}

type apiImage struct {
	URL string `json:"url"`
}

type apiExternalURLs struct {
	Spotify string `json:"spotify"`
}

func (r *Resolver) fetchArtist(ctx context.Context, token, id string) (*Artist, error) {
	var raw struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Followers struct {
			Total int `json:"total"`
		} `json:"followers"`
		Genres       []string        `json:"genres"`
		Images       []apiImage      `json:"images"`
		Popularity   int             `json:"popularity"`
		ExternalURLs apiExternalURLs `json:"external_urls"`
		URI          string          `json:"uri"`
	}
	if err := r.get(ctx, token, "/artists/"+id, nil, &raw); err != nil {
		return nil, err
	}

	artist := &Artist{
		ID:          raw.ID,
		Name:        raw.Name,
		Followers:   raw.Followers.Total,
		Genres:      raw.Genres,
		Popularity:  raw.Popularity,
		ExternalURL: raw.ExternalURLs.Spotify,
		URI:         raw.URI,
	}
	if artist.Genres == nil {
		artist.Genres = []string{}
	}
	if len(raw.Images) > 0 {
		artist.ImageURL = raw.Images[0].URL
	}
	return artist, nil
}

func (r *Resolver) fetchReleases(ctx context.Context, token, id string) ([]Release, error) {
	var raw struct {
		Items []struct {
			Name         string          `json:"name"`
			ReleaseDate  string          `json:"release_date"`
			AlbumType    string          `json:"album_type"`
			ExternalURLs apiExternalURLs `json:"external_urls"`
		} `json:"items"`
	}
	params := url.Values{"include_groups": {"album,single"}, "limit": {"5"}}
	if err := r.get(ctx, token, "/artists/"+id+"/albums", params, &raw); err != nil {
		return []Release{}, err
	}

	releases := make([]Release, 0, len(raw.Items))
	for _, item := range raw.Items {
		releases = append(releases, Release{
			Name:        item.Name,
			ReleaseDate: item.ReleaseDate,
			Type:        item.AlbumType,
			URL:         item.ExternalURLs.Spotify,
		})
	}
	return releases, nil
}

func (r *Resolver) get(ctx context.Context, token, path string, params url.Values, out interface{}) error {
	endpoint := r.cfg.APIBaseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("spotify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("spotify %s returned status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode spotify response: %w", err)
	}
	return nil
}
