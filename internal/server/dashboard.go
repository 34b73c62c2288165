package server

import (
	"net/http"

	"github.com/copperline/crm/internal/alert/classify"
	"github.com/copperline/crm/internal/alert/period"
	dealdomain "github.com/copperline/crm/internal/deal/domain"
	"github.com/gin-gonic/gin"
)

type DashboardResponse struct {
	Period   string                       `json:"period"`
	Quota    []QuotaAttainment            `json:"quota"`
	Pipeline []dealdomain.PipelineSummary `json:"pipeline"`
}

type QuotaAttainment struct {
	UserID string  `json:"user_id"`
	Name   string  `json:"name"`
	Role   string  `json:"role"`
	Actual int64   `json:"actual"`
	Target int64   `json:"target"`
	Ratio  float64 `json:"ratio"`
}

// GetDashboard reports current-month quota attainment for every
// monitored user plus the open pipeline per stage.
func (s *Server) GetDashboard(c *gin.Context) {
	ctx := c.Request.Context()
	now := s.clock.Now()
	from, to := period.MonthWindow(now)

	users, err := s.userSvc.ListMonitored(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	quota := make([]QuotaAttainment, 0, len(users))
	for _, user := range users {
		actual, err := s.source.SumWonRevenue(ctx, user.ID, from, to)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		quota = append(quota, QuotaAttainment{
			UserID: user.ID.String(),
			Name:   user.Name,
			Role:   user.Role,
			Actual: actual,
			Target: user.MonthlyQuota,
			Ratio:  classify.Ratio(actual, user.MonthlyQuota),
		})
	}

	pipeline, err := s.dealSvc.Pipeline(ctx)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": DashboardResponse{
		Period:   period.Monthly(now),
		Quota:    quota,
		Pipeline: pipeline,
	}})
}
