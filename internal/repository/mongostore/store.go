// Package mongostore implements the repository interfaces using MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rewards-system/internal/repository"
)

// Config carries what Connect needs to reach MongoDB.
type Config struct {
	URI     string
	DBName  string
	Timeout time.Duration
}

// Store wraps the MongoDB client and hands out one repository per entity.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration

	Campaigns repository.CampaignRepository
	Vouchers  repository.VoucherRepository
	Referrals repository.ReferralRepository
	Rewards   repository.RewardRepository
	Wheel     repository.WheelRepository
}

// Connect establishes a connection to MongoDB, verifies it and creates the
// indexes the repositories rely on.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	clientOptions := options.Client().ApplyURI(cfg.URI)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	s := &Store{
		client:  client,
		db:      client.Database(cfg.DBName),
		timeout: timeout,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	s.Campaigns = newCampaignRepo(s)
	s.Vouchers = newVoucherRepo(s)
	s.Referrals = newReferralRepo(s)
	s.Rewards = newRewardRepo(s)
	s.Wheel = newWheelRepo(s)
	return s, nil
}

// ensureIndexes creates all necessary indexes for the application.
func (s *Store) ensureIndexes(ctx context.Context) error {
	// Vouchers are counted by value constantly, so that lookup gets an index.
	vouchers := s.db.Collection("vouchers")
	valueIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "value", Value: 1}},
		Options: options.Index().SetName("voucher_value_index"),
	}
	if _, err := vouchers.Indexes().CreateOne(ctx, valueIndex); err != nil {
		return fmt.Errorf("failed to create voucher value index: %w", err)
	}
	usernameIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetName("voucher_username_index"),
	}
	if _, err := vouchers.Indexes().CreateOne(ctx, usernameIndex); err != nil {
		return fmt.Errorf("failed to create voucher username index: %w", err)
	}

	// A referee can only ever be referred once.
	referrals := s.db.Collection("referrals")
	refereeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "referee", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("referral_referee_unique"),
	}
	if _, err := referrals.Indexes().CreateOne(ctx, refereeIndex); err != nil {
		return fmt.Errorf("failed to create referee unique index: %w", err)
	}
	referrerIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "referrer", Value: 1},
			{Key: "status", Value: 1},
		},
		Options: options.Index().SetName("referral_referrer_index"),
	}
	if _, err := referrals.Indexes().CreateOne(ctx, referrerIndex); err != nil {
		return fmt.Errorf("failed to create referrer index: %w", err)
	}

	// One reward per user and milestone, enforced by the database so
	// concurrent confirmations cannot double-mint.
	rewards := s.db.Collection("referral_rewards")
	milestoneIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "username", Value: 1},
			{Key: "milestone", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("reward_user_milestone_unique"),
	}
	if _, err := rewards.Indexes().CreateOne(ctx, milestoneIndex); err != nil {
		return fmt.Errorf("failed to create reward milestone index: %w", err)
	}

	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// opCtx bounds a single store operation.
func (s *Store) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// withTxn executes a function within a MongoDB transaction. If the function
// returns an error, the transaction is aborted.
func (s *Store) withTxn(ctx context.Context, fn func(mongo.SessionContext) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}
