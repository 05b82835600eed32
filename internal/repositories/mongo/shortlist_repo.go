package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"joblink/api/internal/models"
	"joblink/api/internal/repositories"
)

// ShortlistRepo wraps the shortlists collection.
type ShortlistRepo struct{ col *mongo.Collection }

// NewShortlistRepo ensures one shortlist per user via a unique index.
func NewShortlistRepo(c *Client) (*ShortlistRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	col := db.Collection("shortlists")

	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &ShortlistRepo{col: col}, nil
}

// GetOrCreate returns the user's shortlist, creating an empty one on
// first access.
func (r *ShortlistRepo) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Shortlist, error) {
	var s models.Shortlist
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$setOnInsert": bson.M{"userId": userID, "jobIds": []primitive.ObjectID{}}},
		opts,
	).Decode(&s)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// AddJob appends a job id; repositories.ErrDuplicate when already present.
func (r *ShortlistRepo) AddJob(ctx context.Context, userID, jobID primitive.ObjectID) (*models.Shortlist, error) {
	s, err := r.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.Contains(jobID) {
		return nil, repositories.ErrDuplicate
	}

	var updated models.Shortlist
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$addToSet": bson.M{"jobIds": jobID}},
		opts,
	).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// RemoveJob drops a job id; repositories.ErrNotFound when the shortlist
// does not exist or the job is not on it.
func (r *ShortlistRepo) RemoveJob(ctx context.Context, userID, jobID primitive.ObjectID) (*models.Shortlist, error) {
	var s models.Shortlist
	err := r.col.FindOne(ctx, bson.M{"userId": userID}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !s.Contains(jobID) {
		return nil, repositories.ErrNotFound
	}

	var updated models.Shortlist
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"userId": userID},
		bson.M{"$pull": bson.M{"jobIds": jobID}},
		opts,
	).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
