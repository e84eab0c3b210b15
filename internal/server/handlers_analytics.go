// internal/server/handlers_analytics.go
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobtrail/internal/models"
	"jobtrail/internal/stats"
)

// dashboardResponse bundles everything the dashboard renders in one call.
type dashboardResponse struct {
	TotalApplications int                   `json:"totalApplications"`
	Buckets           models.JobBuckets     `json:"buckets"`
	SuccessRate       stats.Metric          `json:"successRate"`
	InterviewRate     stats.Metric          `json:"interviewRate"`
	OfferRate         stats.Metric          `json:"offerRate"`
	DailyVelocity     stats.Metric          `json:"dailyVelocity"`
	WeeklyVelocity    stats.Metric          `json:"weeklyVelocity"`
	MonthlyChange     stats.MonthlyChange   `json:"monthlyChange"`
	StageDurations    []stats.StageDuration `json:"stageDurations"`
}

func (s *Server) handleDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString(ctxUserID)

	buckets, err := s.tracker.Buckets(ctx, userID)
	if err != nil {
		s.respond.Write(c, err)
		return
	}
	apps, err := s.apps.List(ctx, userID)
	if err != nil {
		s.respond.Write(c, err)
		return
	}

	now := time.Now()
	resp := dashboardResponse{
		TotalApplications: buckets.TotalApplications(),
		Buckets:           buckets,
		SuccessRate:       stats.SuccessRate(buckets),
		InterviewRate:     stats.InterviewRate(buckets),
		OfferRate:         stats.OfferRate(buckets),
		DailyVelocity:     stats.DailyVelocity(apps, now),
		WeeklyVelocity:    stats.WeeklyVelocity(apps, now),
		MonthlyChange:     stats.MonthlyApplications(apps, now),
		StageDurations:    stats.StageDurations(apps),
	}
	if resp.StageDurations == nil {
		resp.StageDurations = []stats.StageDuration{}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCompanyStats(c *gin.Context) {
	apps, err := s.apps.List(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		s.respond.Write(c, err)
		return
	}

	company := c.Param("company")
	c.JSON(http.StatusOK, gin.H{
		"company":     company,
		"successRate": stats.CompanySuccessRate(apps, company),
	})
}
