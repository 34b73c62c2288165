package server

import (
	"net/http"
	"strings"

	dealdomain "github.com/copperline/crm/internal/deal/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateDeal(c *gin.Context) {
	var req dealdomain.CreateDealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dealSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListDeals(c *gin.Context) {
	var query dealdomain.ListDealRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dealSvc.List(c.Request.Context(), query)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetDealByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.dealSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SetDealStage(c *gin.Context) {
	var req dealdomain.SetStageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.dealSvc.SetStage(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) WinDeal(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.dealSvc.Win(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) LoseDeal(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.dealSvc.Lose(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPipeline(c *gin.Context) {
	resp, err := s.dealSvc.Pipeline(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
