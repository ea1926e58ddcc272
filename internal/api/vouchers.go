package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rewards-system/internal/model"
	"rewards-system/internal/repository"
	"rewards-system/internal/service"
)

// requestVoucherHandler handles POST /api/vouchers
func requestVoucherHandler(svc *service.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.CreateVoucherRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		voucher, err := svc.Request(c.Request.Context(), &req)
		if err != nil {
			switch err {
			case service.ErrOutOfStock:
				c.JSON(http.StatusBadRequest, gin.H{"error": "Out of stock"})
			case service.ErrCampaignNotFound:
				c.JSON(http.StatusBadRequest, gin.H{"error": "Campaign not found"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue voucher"})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "voucher": voucher})
	}
}

// listVouchersHandler handles GET /api/vouchers
func listVouchersHandler(svc *service.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := repository.VoucherFilter{
			Username: c.Query("username"),
			Status:   c.Query("status"),
		}

		vouchers, err := svc.List(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list vouchers"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"vouchers": vouchers})
	}
}

// countVouchersHandler handles GET /api/vouchers/count
func countVouchersHandler(svc *service.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := svc.CountForCampaign(c.Request.Context(), c.Query("campaignId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count vouchers"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"count": count})
	}
}

// updateVoucherStatusHandler handles PUT /api/voucher/:id/status
func updateVoucherStatusHandler(svc *service.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		updated, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update voucher status"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": updated})
	}
}

// deleteVoucherHandler handles DELETE /api/voucher/:id
func deleteVoucherHandler(svc *service.VoucherService) gin.HandlerFunc {
	return func(c *gin.Context) {
		deleted, err := svc.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete voucher"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": deleted})
	}
}
