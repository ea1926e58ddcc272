package mongostore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rewards-system/internal/model"
	"rewards-system/internal/repository"
)

// referralRepo implements ReferralRepository using MongoDB.
type referralRepo struct {
	s          *Store
	collection *mongo.Collection
}

func newReferralRepo(s *Store) repository.ReferralRepository {
	return &referralRepo{s: s, collection: s.db.Collection("referrals")}
}

func (r *referralRepo) Create(ctx context.Context, ref *model.Referral) error {
	if ref.ID == "" {
		ref.ID = uuid.New().String()
	}
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, ref)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *referralRepo) GetByID(ctx context.Context, id string) (*model.Referral, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var ref model.Referral
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&ref)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &ref, nil
}

func (r *referralRepo) List(ctx context.Context, referrer string) ([]*model.Referral, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	filter := bson.M{}
	if referrer != "" {
		filter["referrer"] = referrer
	}

	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	referrals := []*model.Referral{}
	if err := cursor.All(ctx, &referrals); err != nil {
		return nil, err
	}
	return referrals, nil
}

func (r *referralRepo) UpdateStatus(ctx context.Context, id, status string) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *referralRepo) CountConfirmedByReferrer(ctx context.Context, referrer string) (int64, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{
		"referrer": referrer,
		"status":   model.ReferralStatusConfirmed,
	})
}
