// internal/server/handlers_applications.go
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrail/internal/common/errors"
	"jobtrail/internal/models"
)

type trackApplicationRequest struct {
	JobID   string `json:"jobId"`
	Company string `json:"company"`
}

func (s *Server) handleTrackApplication(c *gin.Context) {
	var req trackApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respond.Write(c, errors.NewValidationError("invalid request body"))
		return
	}

	app, err := s.apps.Track(c.Request.Context(), c.GetString(ctxUserID), req.JobID, req.Company)
	if err != nil {
		s.respond.Write(c, err)
		return
	}
	c.JSON(http.StatusCreated, app)
}

func (s *Server) handleListApplications(c *gin.Context) {
	apps, err := s.apps.List(c.Request.Context(), c.GetString(ctxUserID))
	if err != nil {
		s.respond.Write(c, err)
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	c.JSON(http.StatusOK, apps)
}

type stageChangeRequest struct {
	Stage string `json:"stage"`
}

func (s *Server) handleAdvanceApplication(c *gin.Context) {
	var req stageChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respond.Write(c, errors.NewValidationError("invalid request body"))
		return
	}

	app, err := s.apps.Advance(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"), models.Stage(req.Stage))
	if err != nil {
		s.respond.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}

type outcomeRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleFinalizeApplication(c *gin.Context) {
	var req outcomeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respond.Write(c, errors.NewValidationError("invalid request body"))
		return
	}

	app, err := s.apps.Finalize(c.Request.Context(), c.GetString(ctxUserID), c.Param("id"), models.Stage(req.Status))
	if err != nil {
		s.respond.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, app)
}
