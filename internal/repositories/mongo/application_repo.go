package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"joblink/api/internal/lifecycle"
	"joblink/api/internal/models"
	"joblink/api/internal/repositories"
)

// ApplicationRepo wraps the applications collection.
type ApplicationRepo struct{ col *mongo.Collection }

// NewApplicationRepo ensures the unique (jobId, applicantId) index that
// blocks duplicate applications.
func NewApplicationRepo(c *Client) (*ApplicationRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	col := db.Collection("applications")

	_, _ = col.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "jobId", Value: 1}, {Key: "applicantId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &ApplicationRepo{col: col}, nil
}

func (r *ApplicationRepo) Create(ctx context.Context, a *models.Application) (*models.Application, error) {
	now := time.Now().UTC()
	a.CreatedAt, a.UpdatedAt = now, now
	a.Status = lifecycle.StatusApplying
	res, err := r.col.InsertOne(ctx, a)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, repositories.ErrDuplicate
		}
		return nil, err
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return a, nil
}

func (r *ApplicationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Application, error) {
	var a models.Application
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepo) ListByApplicant(ctx context.Context, applicantID primitive.ObjectID) ([]models.Application, error) {
	cur, err := r.col.Find(ctx, bson.M{"applicantId": applicantID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Application
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ApplicationRepo) ListByJob(ctx context.Context, jobID primitive.ObjectID) ([]models.Application, error) {
	cur, err := r.col.Find(ctx, bson.M{"jobId": jobID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Application
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Patch merge-patches mutable fields and stamps updatedAt.
func (r *ApplicationRepo) Patch(ctx context.Context, id primitive.ObjectID, patch bson.M) (*models.Application, error) {
	patch["updatedAt"] = time.Now().UTC()

	var updated models.Application
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patch}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetStatus moves the application to a new status, recording the
// submission time on the draft -> submitted transition.
func (r *ApplicationRepo) SetStatus(ctx context.Context, id primitive.ObjectID, status lifecycle.Status) (*models.Application, error) {
	patch := bson.M{"status": status}
	if status == lifecycle.StatusSubmitted {
		patch["submittedAt"] = time.Now().UTC()
	}
	return r.Patch(ctx, id, patch)
}

func (r *ApplicationRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// CountByStatus groups applications across the given jobs by status.
func (r *ApplicationRepo) CountByStatus(ctx context.Context, jobIDs []primitive.ObjectID) ([]models.StatusCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "jobId", Value: bson.D{{Key: "$in", Value: jobIDs}}}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.StatusCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SubmissionSeries buckets submitted applications per day per job for the
// employer dashboard chart. Drafts carry no submittedAt and drop out of
// the match stage.
func (r *ApplicationRepo) SubmissionSeries(ctx context.Context, jobIDs []primitive.ObjectID) ([]models.DailyJobCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "jobId", Value: bson.D{{Key: "$in", Value: jobIDs}}},
			{Key: "submittedAt", Value: bson.D{{Key: "$ne", Value: nil}}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "day", Value: bson.D{{Key: "$dateToString", Value: bson.D{
					{Key: "format", Value: "%Y-%m-%d"},
					{Key: "date", Value: "$submittedAt"},
				}}}},
				{Key: "jobId", Value: "$jobId"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "day", Value: "$_id.day"},
			{Key: "jobId", Value: "$_id.jobId"},
			{Key: "count", Value: 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "day", Value: 1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.DailyJobCount
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
