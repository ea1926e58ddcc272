package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rewards-system/internal/model"
	"rewards-system/internal/service"
)

// createCampaignHandler handles POST /api/campaigns
func createCampaignHandler(svc *service.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateCampaignRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		campaign, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create campaign"})
			return
		}

		c.JSON(http.StatusCreated, campaign)
	}
}

// listCampaignsHandler handles GET /api/campaigns
func listCampaignsHandler(svc *service.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaigns, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list campaigns"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
	}
}

// getCampaignHandler handles GET /api/campaigns/:id
func getCampaignHandler(svc *service.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		campaign, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			switch err {
			case service.ErrCampaignNotFound:
				c.JSON(http.StatusNotFound, gin.H{"error": "campaign not found"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get campaign"})
			}
			return
		}

		c.JSON(http.StatusOK, campaign)
	}
}

// updateCampaignStatusHandler handles PUT /api/campaigns/:id/status
func updateCampaignStatusHandler(svc *service.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updated, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update campaign status"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": updated})
	}
}

// deleteCampaignHandler handles DELETE /api/campaigns/:id
func deleteCampaignHandler(svc *service.CampaignService) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete campaign"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": deleted})
	}
}
