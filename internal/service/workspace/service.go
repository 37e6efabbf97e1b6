package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/rush-skills/plane/internal/repository"
	"github.com/rush-skills/plane/pkg/metrics"
)

const defaultCacheTTL = 10 * time.Minute

// Resolver maps a workspace slug to its id.
// Unknown slugs return repository.ErrNotFound.
type Resolver interface {
	ResolveID(ctx context.Context, slug string) (uuid.UUID, error)
}

// Service resolves slugs through the repository and caches hits.
// Misses are not cached so a newly created workspace is visible immediately.
type Service struct {
	repo    repository.WorkspaceRepository
	cache   *cache.Cache
	metrics *metrics.Metrics
}

func NewService(repo repository.WorkspaceRepository, ttl time.Duration, m *metrics.Metrics) *Service {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Service{
		repo:    repo,
		cache:   cache.New(ttl, 2*ttl),
		metrics: m,
	}
}

func (s *Service) ResolveID(ctx context.Context, slug string) (uuid.UUID, error) {
	if cached, found := s.cache.Get(slug); found {
		s.observe("hit")
		return cached.(uuid.UUID), nil
	}
	s.observe("miss")

	id, err := s.repo.GetIDBySlug(ctx, slug)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to resolve workspace %q: %w", slug, err)
	}

	s.cache.Set(slug, id, cache.DefaultExpiration)
	return id, nil
}

func (s *Service) observe(result string) {
	if s.metrics != nil {
		s.metrics.WorkspaceCache.WithLabelValues(result).Inc()
	}
}
