package app

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"hoteldir/internal/domain"
	"hoteldir/internal/textnorm"
)

const catalogCacheKey = "catalog:eligible"

// CatalogService narrows the eligible (approved and paid) listings by
// category and location.
type CatalogService struct {
	repo     domain.ListingRepository
	cache    domain.Cache
	match    domain.MatchService
	cacheTTL time.Duration
	shuffle  func([]domain.Listing)
}

func NewCatalogService(r domain.ListingRepository, c domain.Cache, m domain.MatchService, ttl time.Duration) *CatalogService {
	return &CatalogService{repo: r, cache: c, match: m, cacheTTL: ttl, shuffle: shuffle}
}

// WithShuffle replaces the result shuffler; tests use it to pin the order.
func (s *CatalogService) WithShuffle(f func([]domain.Listing)) *CatalogService {
	s.shuffle = f
	return s
}

// Search never fails: store trouble yields an empty result.
func (s *CatalogService) Search(ctx context.Context, q domain.SearchQuery) []domain.Listing {
	eligible, err := s.Eligible(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("catalog: load eligible listings failed")
		return []domain.Listing{}
	}

	candidates := filterTypes(eligible, q.Types)
	if len(candidates) == 0 {
		return []domain.Listing{}
	}

	out := candidates
	if phrase := strings.TrimSpace(q.Location); phrase != "" {
		ids := s.match.Match(ctx, phrase, candidates)
		out = intersect(candidates, ids)
	}
	s.shuffle(out)
	return out
}

// Eligible returns approved and paid listings, read through the cache.
func (s *CatalogService) Eligible(ctx context.Context) ([]domain.Listing, error) {
	var cached []domain.Listing
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, catalogCacheKey, &cached); ok {
			return keepEligible(cached), nil
		}
	}
	ls, err := s.repo.ListEligible(ctx)
	if err != nil {
		return nil, err
	}
	ls = keepEligible(ls)
	if s.cache != nil {
		if err := s.cache.Set(ctx, catalogCacheKey, ls, int(s.cacheTTL.Seconds())); err != nil {
			log.Debug().Err(err).Msg("catalog: cache set failed")
		}
	}
	return ls, nil
}

// keepEligible copies so callers may reorder without touching the source.
func keepEligible(in []domain.Listing) []domain.Listing {
	out := make([]domain.Listing, 0, len(in))
	for _, l := range in {
		if l.Eligible() {
			out = append(out, l)
		}
	}
	return out
}

func filterTypes(in []domain.Listing, types []string) []domain.Listing {
	var want []string
	for _, t := range types {
		if strings.TrimSpace(t) != "" {
			want = append(want, t)
		}
	}
	if len(want) == 0 {
		return in
	}
	out := make([]domain.Listing, 0, len(in))
	for _, l := range in {
		for _, t := range want {
			if textnorm.EqualFold(l.Type, t) {
				out = append(out, l)
				break
			}
		}
	}
	return out
}

// intersect keeps candidates whose ID is in ids, in candidate order.
func intersect(candidates []domain.Listing, ids []string) []domain.Listing {
	if len(ids) == 0 {
		return []domain.Listing{}
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	out := make([]domain.Listing, 0, len(ids))
	for _, l := range candidates {
		if _, ok := set[l.ID]; ok {
			out = append(out, l)
		}
	}
	return out
}

func shuffle(ls []domain.Listing) {
	rand.Shuffle(len(ls), func(i, j int) { ls[i], ls[j] = ls[j], ls[i] })
}
