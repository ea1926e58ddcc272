package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rewards-system/internal/model"
	"rewards-system/internal/service"
)

// createReferralHandler handles POST /api/referrals
func createReferralHandler(svc *service.ReferralService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateReferralRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		referral, err := svc.Create(c.Request.Context(), &req)
		if err != nil {
			switch err {
			case service.ErrAlreadyReferred:
				c.JSON(http.StatusConflict, gin.H{"error": "referee was already referred"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create referral"})
			}
			return
		}

		c.JSON(http.StatusCreated, referral)
	}
}

// listReferralsHandler handles GET /api/referrals
func listReferralsHandler(svc *service.ReferralService) gin.HandlerFunc {
	return func(c *gin.Context) {
		referrals, err := svc.List(c.Request.Context(), c.Query("referrer"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list referrals"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"referrals": referrals})
	}
}

// updateReferralStatusHandler handles PUT /api/referral/:id/status
func updateReferralStatusHandler(svc *service.ReferralService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updated, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update referral status"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": updated})
	}
}

// listRewardsHandler handles GET /api/referral-rewards
func listRewardsHandler(svc *service.ReferralService) gin.HandlerFunc {
	return func(c *gin.Context) {
		rewards, err := svc.ListRewards(c.Request.Context(), c.Query("username"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rewards"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"rewards": rewards})
	}
}

// claimRewardHandler handles PUT /api/referral-reward/:id/claim
func claimRewardHandler(svc *service.ReferralService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimed, err := svc.ClaimReward(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to claim reward"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": claimed})
	}
}
