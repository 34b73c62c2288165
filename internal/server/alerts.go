package server

import (
	"net/http"
	"strings"

	alertdomain "github.com/copperline/crm/internal/alert/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) RunQuotaCron(c *gin.Context) {
	report, err := s.alertSvc.RunQuota(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) RunActivityCron(c *gin.Context) {
	report, err := s.alertSvc.RunActivity(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) RunTasksCron(c *gin.Context) {
	report, err := s.alertSvc.RunTasks(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) RunMarketingCron(c *gin.Context) {
	cadence := alertdomain.Cadence(strings.TrimSpace(c.Query("cadence")))
	if cadence == "" {
		cadence = alertdomain.CadenceWeekly
	}

	report, err := s.alertSvc.RunMarketing(c.Request.Context(), cadence)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": report})
}

func (s *Server) CreateExclusion(c *gin.Context) {
	var req alertdomain.CreateExclusionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.alertSvc.CreateExclusion(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListExclusions(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	resp, err := s.alertSvc.ListExclusions(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteExclusion(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.alertSvc.DeleteExclusion(c.Request.Context(), id); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
