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

// rewardRepo implements RewardRepository using MongoDB.
type rewardRepo struct {
	s          *Store
	collection *mongo.Collection
}

func newRewardRepo(s *Store) repository.RewardRepository {
	return &rewardRepo{s: s, collection: s.db.Collection("referral_rewards")}
}

func (r *rewardRepo) Create(ctx context.Context, rw *model.ReferralReward) error {
	if rw.ID == "" {
		rw.ID = uuid.New().String()
	}
	if rw.CreatedAt.IsZero() {
		rw.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, rw)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *rewardRepo) GetByID(ctx context.Context, id string) (*model.ReferralReward, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var rw model.ReferralReward
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rw)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rw, nil
}

func (r *rewardRepo) List(ctx context.Context, username string) ([]*model.ReferralReward, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	filter := bson.M{}
	if username != "" {
		filter["username"] = username
	}

	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "milestone", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rewards := []*model.ReferralReward{}
	if err := cursor.All(ctx, &rewards); err != nil {
		return nil, err
	}
	return rewards, nil
}

// MarkClaimed flips an unclaimed reward to claimed in one document
// operation, so a double claim loses the race instead of resetting the
// claim time.
func (r *rewardRepo) MarkClaimed(ctx context.Context, id string) (bool, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	res := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "claimed": false},
		bson.M{"$set": bson.M{"claimed": true, "claimed_at": now}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	if res.Err() != nil {
		if res.Err() == mongo.ErrNoDocuments {
			// No match: missing reward or one that was already claimed.
			err := r.collection.FindOne(ctx, bson.M{"_id": id}).Err()
			if err == mongo.ErrNoDocuments {
				return false, repository.ErrNotFound
			}
			if err != nil {
				return false, err
			}
			return false, nil
		}
		return false, res.Err()
	}
	return true, nil
}

func (r *rewardRepo) ExistsMilestone(ctx context.Context, username string, milestone int64) (bool, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{
		"username":  username,
		"milestone": milestone,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
