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

// voucherRepo implements VoucherRepository using MongoDB.
type voucherRepo struct {
	s          *Store
	collection *mongo.Collection
}

func newVoucherRepo(s *Store) repository.VoucherRepository {
	return &voucherRepo{s: s, collection: s.db.Collection("vouchers")}
}

func (r *voucherRepo) Insert(ctx context.Context, v *model.Voucher) error {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, v)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *voucherRepo) GetByID(ctx context.Context, id string) (*model.Voucher, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	var v model.Voucher
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&v)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (r *voucherRepo) List(ctx context.Context, f repository.VoucherFilter) ([]*model.Voucher, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	filter := bson.M{}
	if f.Username != "" {
		filter["username"] = f.Username
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	vouchers := []*model.Voucher{}
	if err := cursor.All(ctx, &vouchers); err != nil {
		return nil, err
	}
	return vouchers, nil
}

func (r *voucherRepo) CountByValue(ctx context.Context, value string) (int64, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	return r.collection.CountDocuments(ctx, bson.M{"value": value})
}

func (r *voucherRepo) UpdateStatus(ctx context.Context, id, status string, claimedAt *time.Time, setClaimed bool) (bool, error) {
	ctx, cancel := r.s.opCtx(ctx)
	defer cancel()

	set := bson.M{"status": status}
	if setClaimed {
		set["claimed_at"] = claimedAt
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *voucherRepo) Delete(ctx context.Context, id string) error {
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
