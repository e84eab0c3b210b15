// internal/search/store.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtrail/internal/common/database"
	"jobtrail/internal/common/errors"
	"jobtrail/internal/common/logger"
	"jobtrail/internal/models"
)

// Store is the listing document store behind the search pipeline.
type Store interface {
	Run(ctx context.Context, pipeline *Pipeline) ([]models.RankedListing, error)
	ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error)
	Insert(ctx context.Context, listings []models.JobListing) (int, error)
}

// ESStore executes pipelines against an Elasticsearch listings index.
type ESStore struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

// NewESStore creates a store bound to one index.
func NewESStore(es *database.ElasticsearchClient, index string, log logger.Logger) *ESStore {
	return &ESStore{
		es:     es,
		index:  index,
		logger: log,
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64           `json:"_score"`
			Source models.JobListing `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Run executes the pipeline and returns hits ordered by descending score.
func (s *ESStore) Run(ctx context.Context, pipeline *Pipeline) ([]models.RankedListing, error) {
	body, err := json.Marshal(pipeline.Body())
	if err != nil {
		return nil, errors.NewSearchQueryError(fmt.Errorf("failed to encode search body: %v", err))
	}

	res, err := s.es.Client.Search(
		s.es.Client.Search.WithContext(ctx),
		s.es.Client.Search.WithIndex(s.index),
		s.es.Client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, errors.NewSearchQueryError(fmt.Errorf("search request failed: %v", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		s.logger.Error("Search query rejected", map[string]interface{}{
			"status": res.Status(),
			"detail": string(detail),
		})
		return nil, errors.NewSearchQueryError(fmt.Errorf("search returned %s", res.Status()))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryError(fmt.Errorf("failed to decode search response: %v", err))
	}

	ranked := make([]models.RankedListing, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		ranked = append(ranked, models.RankedListing{
			JobListing: hit.Source,
			Score:      hit.Score,
		})
	}
	return ranked, nil
}

type urlLookupResponse struct {
	Hits struct {
		Hits []struct {
			Source struct {
				JobURL string `json:"jobUrl"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// ExistingURLs reports which of the given job URLs are already stored, used
// to deduplicate freshly fetched listings before insertion. The lookup is
// scoped to the candidate batch, so it stays exact no matter how many
// listings the index holds.
func (s *ESStore) ExistingURLs(ctx context.Context, urls []string) (map[string]bool, error) {
	if len(urls) == 0 {
		return map[string]bool{}, nil
	}

	body := map[string]interface{}{
		"size": len(urls),
		"query": map[string]interface{}{
			"terms": map[string]interface{}{"jobUrl": urls},
		},
		"_source": []string{"jobUrl"},
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Errorf("failed to encode url lookup: %v", err))
	}

	res, err := s.es.Client.Search(
		s.es.Client.Search.WithContext(ctx),
		s.es.Client.Search.WithIndex(s.index),
		s.es.Client.Search.WithBody(bytes.NewReader(encoded)),
	)
	if err != nil {
		return nil, errors.NewStorageError(fmt.Errorf("url lookup failed: %v", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, errors.NewStorageError(fmt.Errorf("url lookup returned %s", res.Status()))
	}

	var parsed urlLookupResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewStorageError(fmt.Errorf("failed to decode url lookup response: %v", err))
	}

	known := make(map[string]bool, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		known[hit.Source.JobURL] = true
	}
	return known, nil
}

// DocumentID derives the stable index id for a listing from its job URL, so
// re-inserting the same posting overwrites the stored document instead of
// creating a duplicate.
func DocumentID(jobURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(jobURL)).String()
}

// Insert bulk-indexes listings under URL-derived document ids, so a
// concurrent re-scrape of the same posting overwrites rather than
// duplicates. Returns how many documents were accepted; the index refresh is
// forced so a follow-up query sees the new documents.
func (s *ESStore) Insert(ctx context.Context, listings []models.JobListing) (int, error) {
	if len(listings) == 0 {
		return 0, nil
	}

	var buf bytes.Buffer
	for _, listing := range listings {
		action := map[string]interface{}{}
		if listing.JobURL != "" {
			action["_id"] = DocumentID(listing.JobURL)
		}
		meta := map[string]interface{}{"index": action}
		metaLine, err := json.Marshal(meta)
		if err != nil {
			return 0, errors.NewStorageError(fmt.Errorf("failed to encode bulk action: %v", err))
		}
		docLine, err := json.Marshal(listing)
		if err != nil {
			return 0, errors.NewStorageError(fmt.Errorf("failed to encode listing: %v", err))
		}
		buf.Write(metaLine)
		buf.WriteByte('\n')
		buf.Write(docLine)
		buf.WriteByte('\n')
	}

	res, err := s.es.Client.Bulk(
		strings.NewReader(buf.String()),
		s.es.Client.Bulk.WithContext(ctx),
		s.es.Client.Bulk.WithIndex(s.index),
		s.es.Client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return 0, errors.NewStorageError(fmt.Errorf("bulk insert failed: %v", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		s.logger.Error("Bulk insert rejected", map[string]interface{}{
			"status": res.Status(),
			"detail": string(detail),
		})
		return 0, errors.NewStorageError(fmt.Errorf("bulk insert returned %s", res.Status()))
	}

	var bulkRes struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&bulkRes); err != nil {
		return 0, errors.NewStorageError(fmt.Errorf("failed to decode bulk response: %v", err))
	}

	inserted := 0
	for _, item := range bulkRes.Items {
		for _, op := range item {
			if op.Status >= 200 && op.Status < 300 {
				inserted++
			}
		}
	}
	if bulkRes.Errors {
		s.logger.Warn("Bulk insert partially failed", map[string]interface{}{
			"attempted": len(listings),
			"inserted":  inserted,
		})
	}

	s.logger.Info("Listings indexed", map[string]interface{}{
		"count":      inserted,
		"index":      s.index,
		"indexed_at": time.Now().UTC().Format(time.RFC3339),
	})
	return inserted, nil
}
