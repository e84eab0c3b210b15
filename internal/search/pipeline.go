// internal/search/pipeline.go
package search

import (
	"time"

	"jobtrail/internal/models"
)

// VectorField is the document field holding listing embeddings.
const VectorField = "jobVector"

// ProjectedFields is the fixed subset returned to clients; the relevance
// score rides alongside as the hit score.
var ProjectedFields = []string{
	"jobId", "position", "company", "companyLogo", "location",
	"salary", "jobUrl", "postDate",
}

// Pipeline is the ordered stage list for one similarity search: a kNN stage
// with its filter conjunction, a redundant size cap, and a source projection.
type Pipeline struct {
	KNN        KNNStage
	Limit      int
	Projection []string
}

// KNNStage is the vector-similarity stage. Must holds the filter
// conjunction; every clause has to match for a candidate to rank.
type KNNStage struct {
	Field  string
	Vector []float32
	K      int
	Must   []map[string]interface{}
}

// BuildPipeline assembles the search pipeline for a query vector and filter
// set. Pure and deterministic: all thresholds derive from the supplied now
// and freshness window (24h when non-positive). The caller guarantees the
// vector matches the stored dimensionality.
func BuildPipeline(queryVector []float32, filters models.SearchFilters, now time.Time, freshness time.Duration) *Pipeline {
	if freshness <= 0 {
		freshness = 24 * time.Hour
	}
	limit := filters.Limit
	if limit <= 0 {
		limit = models.DefaultSearchLimit
	}

	must := make([]map[string]interface{}, 0, 7)

	if filters.Location != nil {
		must = append(must, map[string]interface{}{
			"match": map[string]interface{}{"location": *filters.Location},
		})
	}
	if len(filters.JobTypes) > 0 {
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{"jobType": filters.JobTypes},
		})
	}
	if len(filters.RemoteFilters) > 0 {
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{"remoteFilter": filters.RemoteFilters},
		})
	}
	// Salary stays an exact-match predicate to mirror the source system's
	// behavior, even though a floor comparison would make more sense.
	if filters.Salary != nil {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"salary": *filters.Salary},
		})
	}
	if len(filters.ExperienceLevels) > 0 {
		must = append(must, map[string]interface{}{
			"terms": map[string]interface{}{"experienceLevel": filters.ExperienceLevels},
		})
	}

	// Freshness floor: only listings scraped within the window rank.
	must = append(must, map[string]interface{}{
		"range": map[string]interface{}{
			"scrapeDate": map[string]interface{}{
				"gte": now.Add(-freshness).Format(time.RFC3339),
			},
		},
	})

	if filters.PostedSince != nil {
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{
				"postDate": map[string]interface{}{
					"gte": filters.PostedSince.Threshold(now).Format(time.RFC3339),
				},
			},
		})
	}

	return &Pipeline{
		KNN: KNNStage{
			Field:  VectorField,
			Vector: queryVector,
			K:      limit,
			Must:   must,
		},
		Limit:      limit,
		Projection: ProjectedFields,
	}
}

// Body renders the pipeline as an Elasticsearch search request body.
func (p *Pipeline) Body() map[string]interface{} {
	knn := map[string]interface{}{
		"field":          p.KNN.Field,
		"query_vector":   p.KNN.Vector,
		"k":              p.KNN.K,
		"num_candidates": p.KNN.K * 4,
	}
	if len(p.KNN.Must) > 0 {
		knn["filter"] = map[string]interface{}{
			"bool": map[string]interface{}{"must": p.KNN.Must},
		}
	}

	return map[string]interface{}{
		"knn":     knn,
		"size":    p.Limit,
		"_source": p.Projection,
	}
}
