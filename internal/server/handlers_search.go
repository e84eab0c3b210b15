// internal/server/handlers_search.go
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrail/internal/models"
)

// handleSearch runs the similarity search. The query string carries the
// search phrase plus the optional filter fields; absent parameters simply
// emit no predicate.
func (s *Server) handleSearch(c *gin.Context) {
	query := c.Query("query")
	filters := models.ParseSearchFilters(c.Request.URL.Query())

	results, err := s.search.Search(c.Request.Context(), query, filters)
	if err != nil {
		s.respond.Write(c, err)
		return
	}

	// Always an array, never null.
	if results == nil {
		results = []models.RankedListing{}
	}
	c.JSON(http.StatusOK, results)
}
