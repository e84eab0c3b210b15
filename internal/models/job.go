// internal/models/job.go
package models

import "time"

// VectorDimensions is the embedding length stored on every listing
// (text-embedding-ada-002).
const VectorDimensions = 1536

// JobListing is a scraped job posting as stored in the listing index.
// Documents are upserted by JobURL on re-scrape and never deleted here.
type JobListing struct {
	SourceID        string    `json:"jobId,omitempty"`
	Position        string    `json:"position"`
	Company         string    `json:"company"`
	CompanyLogo     string    `json:"companyLogo,omitempty"`
	Location        string    `json:"location"`
	Salary          *float64  `json:"salary"`
	JobType         string    `json:"jobType,omitempty"`
	RemoteFilter    string    `json:"remoteFilter,omitempty"`
	ExperienceLevel string    `json:"experienceLevel,omitempty"`
	JobURL          string    `json:"jobUrl"`
	PostDate        time.Time `json:"postDate"`
	ScrapeDate      time.Time `json:"scrapeDate"`
	JobVector       []float32 `json:"jobVector,omitempty"`

	// Filter values the record was fetched with, kept for re-scrape audits.
	FetchedWith map[string]string `json:"fetchedWith,omitempty"`
}

// RankedListing is a listing plus the relevance score assigned by the
// similarity search.
type RankedListing struct {
	JobListing
	Score float64 `json:"score"`
}
