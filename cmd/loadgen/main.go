// Command loadgen hammers the voucher issuance endpoint against one
// campaign and verifies afterwards that the stored voucher count matches
// the number of accepted requests. Run it against a strict-mode server to
// confirm the cap holds, or against a besteffort server to watch it break.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// PerfResult gathers aggregated counters for the run. Atomic counters avoid
// lock contention on the hot path; latencies are in nanoseconds.
type PerfResult struct {
	TotalRequests int64
	SuccessCount  int64
	OutOfStock    int64
	ErrorCount    int64
	LatencySum    int64
	P95Latency    int64
}

const (
	baseURL        = "http://localhost:8080"
	fixedWorkers   = 50
	fixedRPSTarget = 700
	fixedDuration  = 30 * time.Second
	defaultTimeout = 30 * time.Second
	fixedStock     = 10000
)

func main() {
	// HTTP client tuned for many concurrent keep-alive connections
	transport := &http.Transport{
		MaxIdleConns:        fixedWorkers * 4,
		MaxIdleConnsPerHost: fixedWorkers * 4,
		IdleConnTimeout:     90 * time.Second,
	}
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   defaultTimeout,
	}

	campaignID, err := createCampaign(httpClient, fixedStock)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create campaign: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ Campaign created: %s (%d vouchers)\n", campaignID, fixedStock)

	fmt.Println("==========================================")
	fmt.Println("🚀 Voucher issuance load test")
	fmt.Println("==========================================")
	fmt.Printf("Campaign ID : %s\n", campaignID)
	fmt.Printf("Target RPS  : %d\n", fixedRPSTarget)
	fmt.Printf("Duration    : %v\n", fixedDuration)
	fmt.Printf("Workers     : %d\n", fixedWorkers)
	fmt.Println("==========================================")

	burst := fixedRPSTarget / fixedWorkers
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(fixedRPSTarget), burst)

	ctx, cancel := context.WithTimeout(context.Background(), fixedDuration)
	defer cancel()

	var result PerfResult
	var wg sync.WaitGroup

	latencyChan := make(chan time.Duration, 4096)
	go trackP95(latencyChan, &result)

	for i := 0; i < fixedWorkers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			username := fmt.Sprintf("shopper-%d", worker)
			for {
				if err := limiter.Wait(ctx); err != nil { // context cancelled
					return
				}
				doRequest(httpClient, campaignID, username, &result, latencyChan)
			}
		}(i)
	}

	start := time.Now()
	<-ctx.Done()

	wg.Wait()
	close(latencyChan)

	totalDur := time.Since(start)

	fmt.Println("==========================================")
	fmt.Println("📊 Results")
	fmt.Println("==========================================")
	fmt.Printf("Elapsed          : %.2fs\n", totalDur.Seconds())
	fmt.Printf("Total requests   : %d\n", result.TotalRequests)
	fmt.Printf("Accepted         : %d\n", result.SuccessCount)
	fmt.Printf("Out of stock     : %d\n", result.OutOfStock)
	fmt.Printf("Errors           : %d\n", result.ErrorCount)

	actualRPS := float64(result.TotalRequests) / totalDur.Seconds()
	var avgLatency time.Duration
	if result.SuccessCount > 0 {
		avgLatency = time.Duration(result.LatencySum / result.SuccessCount)
	}

	fmt.Printf("Actual RPS       : %.2f\n", actualRPS)
	fmt.Printf("Average latency  : %v\n", avgLatency)
	fmt.Printf("P95 latency      : %v\n", time.Duration(atomic.LoadInt64(&result.P95Latency)))
	fmt.Println("==========================================")

	fmt.Println("🔍 Consistency check")
	if err := verifyConsistency(httpClient, campaignID, result.SuccessCount); err != nil {
		fmt.Printf("❌ Consistency check failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Voucher count matches accepted requests")
}

// createCampaign provisions the campaign the workers will drain.
func createCampaign(httpClient *http.Client, stock int64) (string, error) {
	body, _ := json.Marshal(map[string]any{
		"content":  fmt.Sprintf("LOAD-%d", time.Now().Unix()),
		"quantity": stock,
	})

	resp, err := httpClient.Post(baseURL+"/api/campaigns", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}

	var campaign struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&campaign); err != nil {
		return "", err
	}
	if campaign.ID == "" {
		return "", fmt.Errorf("campaign response carried no id")
	}
	return campaign.ID, nil
}

// doRequest performs a single issuance request and classifies the outcome.
func doRequest(httpClient *http.Client, campaignID, username string, result *PerfResult, latencyChan chan<- time.Duration) {
	body, _ := json.Marshal(map[string]any{
		"username":   username,
		"value":      "overwritten by the campaign",
		"campaignId": campaignID,
	})

	start := time.Now()
	atomic.AddInt64(&result.TotalRequests, 1)

	resp, err := httpClient.Post(baseURL+"/api/vouchers", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		atomic.AddInt64(&result.ErrorCount, 1)
		return
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var issued struct {
			Success bool `json:"success"`
			Voucher struct {
				ID string `json:"id"`
			} `json:"voucher"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&issued); err != nil || !issued.Success || issued.Voucher.ID == "" {
			atomic.AddInt64(&result.ErrorCount, 1)
			return
		}
		atomic.AddInt64(&result.SuccessCount, 1)
		atomic.AddInt64(&result.LatencySum, latency.Nanoseconds())
		select {
		case latencyChan <- latency:
		default:
		}
	case http.StatusBadRequest:
		var failure struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&failure); err == nil && failure.Error == "Out of stock" {
			atomic.AddInt64(&result.OutOfStock, 1)
			return
		}
		atomic.AddInt64(&result.ErrorCount, 1)
	default:
		io.Copy(io.Discard, resp.Body)
		atomic.AddInt64(&result.ErrorCount, 1)
	}
}

// trackP95 maintains a best-effort rolling P95 latency estimation over a
// small reservoir sample.
func trackP95(latencies <-chan time.Duration, result *PerfResult) {
	const size = 1000
	buf := make([]int64, 0, size)

	for lat := range latencies {
		if len(buf) < size {
			buf = append(buf, lat.Nanoseconds())
		} else if idx := time.Now().UnixNano() % int64(size); idx < int64(size/10) {
			buf[idx] = lat.Nanoseconds()
		}

		if len(buf) >= 100 && len(buf)%100 == 0 {
			sample := make([]int64, len(buf))
			copy(sample, buf)
			sort.Slice(sample, func(i, j int) bool { return sample[i] < sample[j] })
			p95Index := int(float64(len(sample)) * 0.95)
			if p95Index >= len(sample) {
				p95Index = len(sample) - 1
			}
			atomic.StoreInt64(&result.P95Latency, sample[p95Index])
		}
	}
}

// verifyConsistency compares the server-side voucher count against the
// number of requests this run saw accepted.
func verifyConsistency(httpClient *http.Client, campaignID string, accepted int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/vouchers/count?campaignId="+campaignID, nil)
	if err != nil {
		return err
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch voucher count: %w", err)
	}
	defer resp.Body.Close()

	var count struct {
		Count int64 `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return err
	}

	fmt.Printf("Vouchers stored  : %d\n", count.Count)
	fmt.Printf("Accepted requests: %d\n", accepted)

	if count.Count != accepted {
		return fmt.Errorf("mismatch: stored=%d accepted=%d diff=%d",
			count.Count, accepted, count.Count-accepted)
	}
	if count.Count > fixedStock {
		return fmt.Errorf("over-issuance: stored=%d cap=%d", count.Count, fixedStock)
	}
	return nil
}
