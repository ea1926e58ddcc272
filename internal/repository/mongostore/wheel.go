package mongostore

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rewards-system/internal/model"
	"rewards-system/internal/repository"
)

// wheelRepo implements WheelRepository using MongoDB.
type wheelRepo struct {
	s          *Store
	collection *mongo.Collection
}

func newWheelRepo(s *Store) repository.WheelRepository {
	return &wheelRepo{s: s, collection: s.db.Collection("wheel_segments")}
}

func (r *wheelRepo) ListSegments(ctx context.Context) ([]*model.WheelSegment, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "position", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	segments := []*model.WheelSegment{}
	if err := cursor.All(ctx, &segments); err != nil {
		return nil, err
	}
	return segments, nil
}

// ReplaceSegments swaps the whole wheel inside a transaction so spins never
// observe a half-built wheel.
func (r *wheelRepo) ReplaceSegments(ctx context.Context, segments []*model.WheelSegment) error {
	docs := make([]interface{}, len(segments))
	for i, seg := range segments {
		if seg.ID == "" {
			seg.ID = uuid.New().String()
		}
		docs[i] = seg
	}

	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	return r.s.withTxn(ctx, func(sc mongo.SessionContext) error {
		if _, err := r.collection.DeleteMany(sc, bson.M{}); err != nil {
			return err
		}
		if len(docs) == 0 {
			return nil
		}
		_, err := r.collection.InsertMany(sc, docs)
		return err
	})
}

func (r *wheelRepo) GetSegment(ctx context.Context, id string) (*model.WheelSegment, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var seg model.WheelSegment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&seg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &seg, nil
}
