// Package api wires the HTTP surface: gin handlers over the service layer.
package api

import (
	"context"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rewards-system/internal/service"
)

// Pinger is the slice of the store the database health check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the router serves.
type Deps struct {
	Vouchers  *service.VoucherService
	Campaigns *service.CampaignService
	Referrals *service.ReferralService
	Wheel     *service.WheelService
	Store     Pinger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	// Set Gin mode
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Health check endpoints
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/health/db", dbHealthHandler(deps.Store))

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API routes
	api := router.Group("/api")
	{
		api.POST("/vouchers", requestVoucherHandler(deps.Vouchers))
		api.GET("/vouchers", listVouchersHandler(deps.Vouchers))
		api.GET("/vouchers/count", countVouchersHandler(deps.Vouchers))
		api.PUT("/voucher/:id/status", updateVoucherStatusHandler(deps.Vouchers))
		api.DELETE("/voucher/:id", deleteVoucherHandler(deps.Vouchers))

		api.POST("/campaigns", createCampaignHandler(deps.Campaigns))
		api.GET("/campaigns", listCampaignsHandler(deps.Campaigns))
		api.GET("/campaigns/:id", getCampaignHandler(deps.Campaigns))
		api.PUT("/campaigns/:id/status", updateCampaignStatusHandler(deps.Campaigns))
		api.DELETE("/campaigns/:id", deleteCampaignHandler(deps.Campaigns))

		api.POST("/referrals", createReferralHandler(deps.Referrals))
		api.GET("/referrals", listReferralsHandler(deps.Referrals))
		api.PUT("/referral/:id/status", updateReferralStatusHandler(deps.Referrals))
		api.GET("/referral-rewards", listRewardsHandler(deps.Referrals))
		api.PUT("/referral-reward/:id/claim", claimRewardHandler(deps.Referrals))

		api.GET("/wheel", getWheelHandler(deps.Wheel))
		api.PUT("/wheel", replaceWheelHandler(deps.Wheel))
		api.POST("/wheel/spin", spinWheelHandler(deps.Wheel))
	}

	return router
}

// dbHealthHandler handles GET /health/db
func dbHealthHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
