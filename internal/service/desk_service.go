package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/voxo-cms/internal/pipeline"
	"github.com/voxo-cms/internal/spotify"
)

// deskService runs the AI auto desk and exposes the artist resolver to editors
type deskService struct {
	generator *pipeline.Generator
	artists   pipeline.ArtistResolver
	log       zerolog.Logger
}

func newDeskService(generator *pipeline.Generator, artists pipeline.ArtistResolver, log zerolog.Logger) *deskService {
	return &deskService{
		generator: generator,
		artists:   artists,
		log:       log.With().Str("service", "desk").Logger(),
	}
}

// Generate runs one generation and reports progress to em
func (s *deskService) Generate(ctx context.Context, req pipeline.Request, em pipeline.Emitter) (string, error) {
	s.log.Info().Str("artist", req.ArtistName).Str("song", req.SongTitle).Msg("Generation requested")
	return s.generator.Run(ctx, req, em)
}

func (s *deskService) LookupArtist(ctx context.Context, subject string) spotify.Lookup {
	if s.artists == nil {
		return spotify.Lookup{Error: "artist lookup is not configured"}
	}
	return s.artists.Resolve(ctx, subject)
}
