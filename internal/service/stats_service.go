package service

import (
	"context"
	"fmt"

	"github.com/voxo-cms/internal/repository"
)

type counter interface {
	Count(ctx context.Context) (int, error)
}

type statsService struct {
	counters map[string]counter
}

func newStatsService(repos *repository.Repositories) *statsService {
	return &statsService{counters: map[string]counter{
		"posts":       repos.Post,
		"categories":  repos.Category,
		"tags":        repos.Tag,
		"subscribers": repos.Subscriber,
	}}
}

// Counts returns the row count of every counted table
func (s *statsService) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(s.counters))
	for name, c := range s.counters {
		n, err := c.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}
