package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rewards-system/internal/model"
	"rewards-system/internal/service"
)

// getWheelHandler handles GET /api/wheel
func getWheelHandler(svc *service.WheelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		segments, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list wheel segments"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"segments": segments})
	}
}

// replaceWheelHandler handles PUT /api/wheel
func replaceWheelHandler(svc *service.WheelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.ReplaceWheelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		segments, err := svc.Replace(c.Request.Context(), &req)
		if err != nil {
			// The validation sentinel arrives wrapped with the offending
			// segment index, so match on the chain.
			if errors.Is(err, service.ErrInvalidSegment) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to replace wheel"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true, "segments": len(segments)})
	}
}

// spinWheelHandler handles POST /api/wheel/spin
func spinWheelHandler(svc *service.WheelService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req model.SpinWheelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		result, err := svc.Spin(c.Request.Context(), req.Username)
		if err != nil {
			switch err {
			case service.ErrWheelExhausted:
				c.JSON(http.StatusConflict, gin.H{"error": "Out of stock"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to spin wheel"})
			}
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
