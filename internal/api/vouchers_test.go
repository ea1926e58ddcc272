package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rewards-system/internal/model"
	"rewards-system/internal/service"
)

type voucherResponse struct {
	Success bool          `json:"success"`
	Voucher model.Voucher `json:"voucher"`
}

func TestRequestVoucherEndpoint(t *testing.T) {
	env := newTestEnv(t, service.ModeStrict, nil)
	campaign := createCampaign(t, env, "10USD", 1)

	t.Run("campaign-less voucher", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/vouchers", gin.H{"username": "alice", "value": "5USD"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp voucherResponse
		decode(t, w, &resp)
		assert.True(t, resp.Success)
		assert.NotEmpty(t, resp.Voucher.ID)
		assert.Equal(t, "5USD", resp.Voucher.Value)
		assert.Equal(t, model.VoucherStatusPending, resp.Voucher.Status)
	})

	t.Run("campaign voucher takes the campaign content", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/vouchers", gin.H{
			"username":   "alice",
			"value":      "ignored",
			"campaignId": campaign.ID,
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp voucherResponse
		decode(t, w, &resp)
		assert.Equal(t, "10USD", resp.Voucher.Value)
	})

	t.Run("stock exhausted", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/vouchers", gin.H{
			"username":   "bob",
			"value":      "ignored",
			"campaignId": campaign.ID,
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Out of stock"}`, w.Body.String())
	})

	t.Run("unknown campaign", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/vouchers", gin.H{
			"username":   "bob",
			"value":      "ignored",
			"campaignId": "nope",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"Campaign not found"}`, w.Body.String())
	})

	t.Run("missing value", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/vouchers", gin.H{"username": "bob"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"invalid request body"}`, w.Body.String())
	})
}

func TestVoucherCountEndpoint(t *testing.T) {
	env := newTestEnv(t, service.ModeStrict, nil)
	campaign := createCampaign(t, env, "10USD", 5)

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodPost, "/api/vouchers", gin.H{
			"username":   fmt.Sprintf("user-%d", i),
			"value":      "x",
			"campaignId": campaign.ID,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	cases := []struct {
		name  string
		query string
		want  string
	}{
		{"known campaign", "?campaignId=" + campaign.ID, `{"count":3}`},
		{"missing parameter", "", `{"count":0}`},
		{"unknown campaign", "?campaignId=nope", `{"count":0}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/vouchers/count"+tc.query, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, tc.want, w.Body.String())
		})
	}
}

func TestListVouchersEndpoint(t *testing.T) {
	env := newTestEnv(t, service.ModeStrict, nil)

	for _, req := range []gin.H{
		{"username": "alice", "value": "5USD"},
		{"username": "alice", "value": "10USD", "status": "Issued"},
		{"username": "bob", "value": "5USD"},
	} {
		w := env.do(t, http.MethodPost, "/api/vouchers", req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	var resp struct {
		Vouchers []model.Voucher `json:"vouchers"`
	}

	w := env.do(t, http.MethodGet, "/api/vouchers", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Len(t, resp.Vouchers, 3)

	w = env.do(t, http.MethodGet, "/api/vouchers?username=alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Len(t, resp.Vouchers, 2)

	w = env.do(t, http.MethodGet, "/api/vouchers?username=alice&status=Issued", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	require.Len(t, resp.Vouchers, 1)
	assert.Equal(t, "10USD", resp.Vouchers[0].Value)
}

func TestVoucherStatusEndpoint(t *testing.T) {
	env := newTestEnv(t, service.ModeStrict, nil)

	w := env.do(t, http.MethodPost, "/api/vouchers", gin.H{"username": "alice", "value": "5USD"})
	require.Equal(t, http.StatusOK, w.Code)
	var created voucherResponse
	decode(t, w, &created)

	t.Run("issuing stamps the claim time", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/voucher/"+created.Voucher.ID+"/status", gin.H{"status": "Issued"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":true}`, w.Body.String())

		var resp struct {
			Vouchers []model.Voucher `json:"vouchers"`
		}
		lw := env.do(t, http.MethodGet, "/api/vouchers?username=alice", nil)
		decode(t, lw, &resp)
		require.Len(t, resp.Vouchers, 1)
		assert.Equal(t, model.VoucherStatusIssued, resp.Vouchers[0].Status)
		assert.NotNil(t, resp.Vouchers[0].ClaimedAt)
	})

	t.Run("missing voucher", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/voucher/nope/status", gin.H{"status": "Issued"})
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success":false}`, w.Body.String())
	})

	t.Run("missing status field", func(t *testing.T) {
		w := env.do(t, http.MethodPut, "/api/voucher/"+created.Voucher.ID+"/status", gin.H{})
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeleteVoucherEndpoint(t *testing.T) {
	env := newTestEnv(t, service.ModeStrict, nil)

	w := env.do(t, http.MethodPost, "/api/vouchers", gin.H{"username": "alice", "value": "5USD"})
	require.Equal(t, http.StatusOK, w.Code)
	var created voucherResponse
	decode(t, w, &created)

	w = env.do(t, http.MethodDelete, "/api/voucher/"+created.Voucher.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = env.do(t, http.MethodDelete, "/api/voucher/"+created.Voucher.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":false}`, w.Body.String())
}
