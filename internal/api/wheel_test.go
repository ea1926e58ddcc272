package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards-system/internal/model"
	"rewards-system/internal/service"
)

func TestWheelEndpoints(t *testing.T) {
	env := newTestEnv(t, service.ModeStrict, nil)

	t.Run("empty wheel lists no segments", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/wheel", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"segments":[]}`, w.Body.String())
	})

	t.Run("replace installs the wheel", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/wheel", gin.H{
			"segments": []gin.H{
				{"label": "Sticker", "prize": "sticker", "weight": 5},
				{"label": "Gift card", "prize": "25USD", "weight": 1},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true,"segments":2}`, w.Body.String())

		var resp struct {
			Segments []model.WheelSegment `json:"segments"`
		}
		lw := env.do(t, http.MethodGet, "/api/wheel", nil)
		require.Equal(t, http.StatusOK, lw.Code)
		decode(t, lw, &resp)
		require.Len(t, resp.Segments, 2)
		assert.Equal(t, "Sticker", resp.Segments[0].Label)
		assert.True(t, resp.Segments[0].Active)
	})

	t.Run("replace rejects a non-positive weight", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/wheel", gin.H{
			"segments": []gin.H{{"label": "Broken", "weight": -1}},
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("replace rejects an empty wheel", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/wheel", gin.H{"segments": []gin.H{}})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
	})
}

func TestSpinWheelEndpoint(t *testing.T) {
	env := newTestEnv(t, service.ModeStrict, nil)

	w := env.do(t, http.MethodPut, "/api/wheel", gin.H{
		"segments": []gin.H{{"label": "Sticker", "prize": "sticker", "weight": 1}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("winning spin returns segment and voucher", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/wheel/spin", gin.H{"username": "alice"})
		require.Equal(t, http.StatusOK, w.Code)

		var result model.SpinResult
		decode(t, w, &result)
		assert.Equal(t, "Sticker", result.Segment.Label)
		require.NotNil(t, result.Voucher)
		assert.Equal(t, "alice", result.Voucher.Username)
		assert.Equal(t, "sticker", result.Voucher.Value)
		assert.Equal(t, model.VoucherStatusPending, result.Voucher.Status)
	})

	t.Run("missing username", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/wheel/spin", gin.H{})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
	})
}

func TestSpinWheelExhaustedEndpoint(t *testing.T) {
	env := newTestEnv(t, service.ModeStrict, nil)
	campaign := createCampaign(t, env, "50USD", 0)

	w := env.do(t, http.MethodPut, "/api/wheel", gin.H{
		"segments": []gin.H{{"label": "Jackpot", "prize": "50USD", "weight": 1, "campaignId": campaign.ID}},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/wheel/spin", gin.H{"username": "alice"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Out of stock"}`, w.Body.String())
}
