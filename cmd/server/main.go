package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"rewards-system/internal/api"
	"rewards-system/internal/config"
	"rewards-system/internal/repository"
	"rewards-system/internal/repository/memstore"
	"rewards-system/internal/repository/mongostore"
	"rewards-system/internal/repository/sqlstore"
	"rewards-system/internal/service"
)

// stores bundles the repositories of whichever backend the config selected.
type stores struct {
	campaigns repository.CampaignRepository
	vouchers  repository.VoucherRepository
	referrals repository.ReferralRepository
	rewards   repository.RewardRepository
	wheel     repository.WheelRepository
	pinger    api.Pinger
	close     func()
}

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	log.Printf("Starting rewards service in %s mode", cfg.App.Environment)

	st, err := openStores(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Database.Driver, err)
	}
	defer st.close()

	log.Printf("✅ Connected to %s store", cfg.Database.Driver)

	// Initialize services
	voucherSvc := service.NewVoucherService(st.vouchers, st.campaigns, cfg.Issuance.Mode)
	log.Printf("Issuance mode: %s", voucherSvc.Mode())

	// Setup Gin router
	router := api.NewRouter(api.Deps{
		Vouchers:  voucherSvc,
		Campaigns: service.NewCampaignService(st.campaigns),
		Referrals: service.NewReferralService(st.referrals, st.rewards, cfg.Referral.Milestones),
		Wheel:     service.NewWheelService(st.wheel, voucherSvc),
		Store:     st.pinger,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
		// Use h2c so we can serve HTTP/2 without TLS
		Handler: h2c.NewHandler(router, &http2.Server{}),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("🚀 Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// openStores connects the backend named by DB_DRIVER and adapts it to the
// shared repository contract.
func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		st, err := sqlstore.Open(sqlstore.Config{
			Driver:  sqlstore.DriverSQLite,
			DSN:     cfg.Database.SQLitePath,
			Timeout: cfg.Database.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return sqlStores(st), nil

	case "postgres":
		st, err := sqlstore.Open(sqlstore.Config{
			Driver:  sqlstore.DriverPostgres,
			DSN:     cfg.Database.PostgresDSN(),
			Timeout: cfg.Database.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return sqlStores(st), nil

	case "mongodb":
		st, err := mongostore.Connect(ctx, mongostore.Config{
			URI:     cfg.Database.MongoURI,
			DBName:  cfg.Database.MongoName,
			Timeout: cfg.Database.Timeout,
		})
		if err != nil {
			return nil, err
		}
		return &stores{
			campaigns: st.Campaigns,
			vouchers:  st.Vouchers,
			referrals: st.Referrals,
			rewards:   st.Rewards,
			wheel:     st.Wheel,
			pinger:    st,
			close: func() {
				if err := st.Close(context.Background()); err != nil {
					log.Printf("Error disconnecting from MongoDB: %v", err)
				}
			},
		}, nil

	case "memory":
		st := memstore.New()
		return &stores{
			campaigns: st.Campaigns,
			vouchers:  st.Vouchers,
			referrals: st.Referrals,
			rewards:   st.Rewards,
			wheel:     st.Wheel,
			pinger:    st,
			close:     func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}

func sqlStores(st *sqlstore.Store) *stores {
	return &stores{
		campaigns: st.Campaigns,
		vouchers:  st.Vouchers,
		referrals: st.Referrals,
		rewards:   st.Rewards,
		wheel:     st.Wheel,
		pinger:    st,
		close: func() {
			if err := st.Close(); err != nil {
				log.Printf("Error closing store: %v", err)
			}
		},
	}
}
