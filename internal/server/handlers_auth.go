// internal/server/handlers_auth.go
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtrail/internal/auth"
	"jobtrail/internal/common/errors"
)

func (s *Server) handleRegister(c *gin.Context) {
	var in auth.RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.respond.Write(c, errors.NewValidationError("invalid request body"))
		return
	}

	user, err := s.auth.Register(c.Request.Context(), in)
	if err != nil {
		s.respond.Write(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleLogin(c *gin.Context) {
	var in auth.LoginInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.respond.Write(c, errors.NewValidationError("invalid request body"))
		return
	}

	user, token, err := s.auth.Login(c.Request.Context(), in)
	if err != nil {
		s.respond.Write(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":  user,
		"token": token,
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	token := c.GetString(ctxSessionID)
	if err := s.auth.Logout(c.Request.Context(), token); err != nil {
		s.respond.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (s *Server) handleCurrentUser(c *gin.Context) {
	user, err := s.auth.CurrentUser(c.Request.Context(), c.GetString(ctxSessionID))
	if err != nil {
		s.respond.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleVerify(c *gin.Context) {
	if err := s.auth.Verify(c.Request.Context(), c.Param("id")); err != nil {
		s.respond.Write(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "verified"})
}
