package search

import (
	"testing"
	"time"

	"jobtrail/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func mustClauses(p *Pipeline) []map[string]interface{} {
	return p.KNN.Must
}

// rangeClause digs the gte value out of a range clause on field, if present.
func rangeClause(t *testing.T, p *Pipeline, field string) (string, bool) {
	t.Helper()
	for _, clause := range mustClauses(p) {
		if r, ok := clause["range"].(map[string]interface{}); ok {
			if bounds, ok := r[field].(map[string]interface{}); ok {
				return bounds["gte"].(string), true
			}
		}
	}
	return "", false
}

func TestBuildPipeline_NoFilters_OnlyFreshnessPredicate(t *testing.T) {
	p := BuildPipeline([]float32{0.1, 0.2}, models.SearchFilters{}, testNow, 24*time.Hour)

	require.Len(t, mustClauses(p), 1)

	gte, ok := rangeClause(t, p, "scrapeDate")
	require.True(t, ok)
	assert.Equal(t, testNow.AddDate(0, 0, -1).Format(time.RFC3339), gte)

	_, hasPostDate := rangeClause(t, p, "postDate")
	assert.False(t, hasPostDate)
}

func TestBuildPipeline_PostedSinceThresholds(t *testing.T) {
	tests := []struct {
		window models.PostedWindow
		want   time.Time
	}{
		{models.PostedPastDay, testNow.AddDate(0, 0, -1)},
		{models.PostedPastWeek, testNow.AddDate(0, 0, -7)},
		{models.PostedPastMonth, testNow.AddDate(0, -1, 0)},
	}

	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			w := tt.window
			p := BuildPipeline([]float32{0.1}, models.SearchFilters{PostedSince: &w}, testNow, 24*time.Hour)

			gte, ok := rangeClause(t, p, "postDate")
			require.True(t, ok)

			got, err := time.Parse(time.RFC3339, gte)
			require.NoError(t, err)
			assert.WithinDuration(t, tt.want, got, time.Second)
		})
	}
}

func TestBuildPipeline_PresentFiltersEmitOnePredicateEach(t *testing.T) {
	loc := "Berlin"
	salary := 90000.0
	window := models.PostedPastWeek

	p := BuildPipeline([]float32{0.1}, models.SearchFilters{
		Location:         &loc,
		PostedSince:      &window,
		JobTypes:         []string{"full time", "part time"},
		RemoteFilters:    []string{"remote"},
		Salary:           &salary,
		ExperienceLevels: []string{"senior"},
		Limit:            25,
	}, testNow, 24*time.Hour)

	// five explicit predicates + freshness + postDate
	assert.Len(t, mustClauses(p), 7)
	assert.Equal(t, 25, p.KNN.K)
	assert.Equal(t, 25, p.Limit)
}

func TestBuildPipeline_AbsentFieldsEmitNoPredicate(t *testing.T) {
	p := BuildPipeline([]float32{0.1}, models.SearchFilters{
		JobTypes: []string{"full time"},
	}, testNow, 24*time.Hour)

	// jobType terms + freshness only; absence is not match-nothing
	assert.Len(t, mustClauses(p), 2)
}

func TestBuildPipeline_FreshnessWindowConfigurable(t *testing.T) {
	p := BuildPipeline([]float32{0.1}, models.SearchFilters{}, testNow, 72*time.Hour)

	gte, ok := rangeClause(t, p, "scrapeDate")
	require.True(t, ok)
	assert.Equal(t, testNow.Add(-72*time.Hour).Format(time.RFC3339), gte)

	// Non-positive windows fall back to the 24h floor.
	p = BuildPipeline([]float32{0.1}, models.SearchFilters{}, testNow, 0)
	gte, ok = rangeClause(t, p, "scrapeDate")
	require.True(t, ok)
	assert.Equal(t, testNow.Add(-24*time.Hour).Format(time.RFC3339), gte)
}

func TestBuildPipeline_DefaultLimit(t *testing.T) {
	p := BuildPipeline([]float32{0.1}, models.SearchFilters{}, testNow, 24*time.Hour)

	assert.Equal(t, models.DefaultSearchLimit, p.KNN.K)
	assert.Equal(t, models.DefaultSearchLimit, p.Limit)
}

func TestBuildPipeline_Deterministic(t *testing.T) {
	f := models.SearchFilters{JobTypes: []string{"full time"}, Limit: 10}

	a := BuildPipeline([]float32{0.3, 0.4}, f, testNow, 24*time.Hour)
	b := BuildPipeline([]float32{0.3, 0.4}, f, testNow, 24*time.Hour)

	assert.Equal(t, a, b)
}

func TestPipeline_Body_StageOrderAndProjection(t *testing.T) {
	p := BuildPipeline([]float32{0.1}, models.SearchFilters{Limit: 10}, testNow, 24*time.Hour)
	body := p.Body()

	knn, ok := body["knn"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, VectorField, knn["field"])
	assert.Equal(t, 10, knn["k"])

	assert.Equal(t, 10, body["size"])
	assert.Equal(t, ProjectedFields, body["_source"])
}
