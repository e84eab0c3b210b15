// internal/search/service.go
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobtrail/internal/common/config"
	"jobtrail/internal/common/errors"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/common/metrics"
	"jobtrail/internal/embeddings"
	"jobtrail/internal/listings"
	"jobtrail/internal/models"
)

// Service orchestrates one similarity search: embed the query, run the
// pipeline over stored listings, and on a thin result set fall back to the
// external source before re-querying.
type Service struct {
	embedder     embeddings.Provider
	store        Store
	source       listings.Source
	storeTimeout time.Duration
	freshness    time.Duration
	now          func() time.Time
	logger       logger.Logger
}

// NewService wires the search orchestration. cfg supplies the per-call store
// timeout and the freshness window; the embedding and listing clients carry
// their own transport timeouts.
func NewService(embedder embeddings.Provider, store Store, source listings.Source, cfg config.SearchConfig, log logger.Logger) *Service {
	storeTimeout := cfg.RequestTimeout()
	if storeTimeout <= 0 {
		storeTimeout = 10 * time.Second
	}
	freshness := time.Duration(cfg.FreshnessHours) * time.Hour
	if freshness <= 0 {
		freshness = 24 * time.Hour
	}
	return &Service{
		embedder:     embedder,
		store:        store,
		source:       source,
		storeTimeout: storeTimeout,
		freshness:    freshness,
		now:          time.Now,
		logger:       log,
	}
}

// Search runs the full query path and returns ranked listings, best first.
// An empty query is legal: it embeds to a generic vector and the filters
// carry the selectivity.
func (s *Service) Search(ctx context.Context, query string, filters models.SearchFilters) ([]models.RankedListing, error) {
	query = strings.TrimSpace(query)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, errors.NewEmbeddingProviderError(err)
	}

	now := s.now()
	pipeline := BuildPipeline(vector, filters, now, s.freshness)

	cached, err := s.runBounded(ctx, overfetch(pipeline))
	if err != nil {
		return nil, err
	}

	// Over-fetching by one makes "more results stored than requested"
	// observable; enough cached listings means the index is warm for this
	// query and the external source is skipped entirely.
	if len(cached) > pipeline.Limit {
		metrics.SearchCacheHits.Inc()
		s.logger.Debug("serving search from stored listings", map[string]interface{}{
			"query": query,
			"count": pipeline.Limit,
		})
		return cached[:pipeline.Limit], nil
	}

	inserted, err := s.refresh(ctx, query, filters, now)
	if err != nil {
		return nil, err
	}
	if inserted == 0 {
		return cached, nil
	}

	return s.runBounded(ctx, pipeline)
}

// Refresh pulls the external source for a query and stores whatever is new.
// Used by the periodic warm-up job; returns the number of listings added.
func (s *Service) Refresh(ctx context.Context, query string, filters models.SearchFilters) (int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, errors.NewValidationError("refresh query is required")
	}
	return s.refresh(ctx, query, filters, s.now())
}

func (s *Service) refresh(ctx context.Context, query string, filters models.SearchFilters, now time.Time) (int, error) {
	metrics.SearchFallbackFetches.Inc()

	raw := filters.RawValues()
	raw["keyword"] = query

	fetched, err := s.source.Query(ctx, raw)
	if err != nil {
		return 0, errors.NewListingSourceError(err)
	}
	if len(fetched) == 0 {
		return 0, nil
	}

	urls := make([]string, 0, len(fetched))
	for _, listing := range fetched {
		if listing.JobURL != "" {
			urls = append(urls, listing.JobURL)
		}
	}
	existing, err := s.existingBounded(ctx, urls)
	if err != nil {
		return 0, err
	}

	fresh := make([]models.JobListing, 0, len(fetched))
	for _, listing := range fetched {
		if listing.JobURL == "" || existing[listing.JobURL] {
			continue
		}
		existing[listing.JobURL] = true // also dedupes within the batch
		listing.ScrapeDate = now
		listing.FetchedWith = raw
		listing.JobVector = s.embedListing(ctx, listing)
		fresh = append(fresh, listing)
	}
	if len(fresh) == 0 {
		s.logger.Debug("external source returned only known listings", map[string]interface{}{
			"query":   query,
			"fetched": len(fetched),
		})
		return 0, nil
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	inserted, err := s.store.Insert(storeCtx, fresh)
	if err != nil {
		return 0, err
	}
	metrics.ListingsInserted.Add(float64(inserted))
	return inserted, nil
}

// embedListing computes the similarity vector for a fetched listing. A
// provider failure here is logged and the listing stored without a vector
// rather than failing the whole refresh; it simply will not rank until
// re-embedded.
func (s *Service) embedListing(ctx context.Context, listing models.JobListing) []float32 {
	text := strings.TrimSpace(fmt.Sprintf("%s %s %s", listing.Position, listing.Company, listing.Location))
	if text == "" {
		return nil
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("failed to embed fetched listing", map[string]interface{}{
			"jobUrl": listing.JobURL,
			"error":  err.Error(),
		})
		return nil
	}
	return vector
}

func (s *Service) runBounded(ctx context.Context, pipeline *Pipeline) ([]models.RankedListing, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.Run(ctx, pipeline)
}

func (s *Service) existingBounded(ctx context.Context, urls []string) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.ExistingURLs(ctx, urls)
}

// overfetch widens a pipeline by one result so the cache-hit check can tell
// "exactly limit" from "more than limit" apart.
func overfetch(p *Pipeline) *Pipeline {
	wide := *p
	wide.Limit = p.Limit + 1
	wide.KNN.K = p.KNN.K + 1
	return &wide
}
