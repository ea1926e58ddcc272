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

// campaignRepo implements CampaignRepository using MongoDB.
type campaignRepo struct {
	s          *Store
	collection *mongo.Collection
}

func newCampaignRepo(s *Store) repository.CampaignRepository {
	return &campaignRepo{s: s, collection: s.db.Collection("campaigns")}
}

func (r *campaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *campaignRepo) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var c model.Campaign
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *campaignRepo) List(ctx context.Context) ([]*model.Campaign, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	campaigns := []*model.Campaign{}
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (r *campaignRepo) UpdateStatus(ctx context.Context, id, status string) error {
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

func (r *campaignRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ReserveStock atomically increments issued while it is still below
// quantity. The filter and the increment run as one document operation, so
// racing requests cannot push a campaign past its stock.
func (r *campaignRepo) ReserveStock(ctx context.Context, id string) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	res := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"_id":   id,
			"$expr": bson.M{"$lt": bson.A{"$issued", "$quantity"}},
		},
		bson.M{"$inc": bson.M{"issued": 1}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetUpsert(false),
	)
	if res.Err() != nil {
		if res.Err() == mongo.ErrNoDocuments {
			// No match: the campaign is either missing or sold out.
			err := r.collection.FindOne(ctx, bson.M{"_id": id}).Err()
			if err == mongo.ErrNoDocuments {
				return repository.ErrNotFound
			}
			if err != nil {
				return err
			}
			return repository.ErrStockExhausted
		}
		return res.Err()
	}
	return nil
}

// ReleaseStock undoes one reservation. The guard keeps the counter from
// dipping below zero and a missing campaign is not an error here.
func (r *campaignRepo) ReleaseStock(ctx context.Context, id string) error {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "issued": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"issued": -1}},
	)
	return err
}
