package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"joblink/api/internal/models"
	"joblink/api/internal/repositories"
)

// JobRepo wraps the jobs collection.
type JobRepo struct{ col *mongo.Collection }

func NewJobRepo(c *Client) (*JobRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	col := db.Collection("jobs")

	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "postedBy", Value: 1}}},
		{Keys: bson.D{{Key: "deadline", Value: 1}}},
	})

	return &JobRepo{col: col}, nil
}

func (r *JobRepo) Create(ctx context.Context, j *models.Job) (*models.Job, error) {
	now := time.Now().UTC()
	j.CreatedAt, j.UpdatedAt = now, now
	res, err := r.col.InsertOne(ctx, j)
	if err != nil {
		return nil, err
	}
	j.ID = res.InsertedID.(primitive.ObjectID)
	return j, nil
}

// List returns jobs, restricted to unexpired deadlines when deadlineValid
// is set.
func (r *JobRepo) List(ctx context.Context, deadlineValid bool) ([]models.Job, error) {
	filter := bson.M{}
	if deadlineValid {
		filter["deadline"] = bson.M{"$gte": time.Now().UTC()}
	}
	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Job
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPage returns one page of jobs plus the total match count.
func (r *JobRepo) ListPage(ctx context.Context, deadlineValid bool, p models.PaginationParams) ([]models.Job, int, error) {
	filter := bson.M{}
	if deadlineValid {
		filter["deadline"] = bson.M{"$gte": time.Now().UTC()}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((p.Page - 1) * p.Limit)).
		SetLimit(int64(p.Limit))
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []models.Job
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, int(total), nil
}

func (r *JobRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	var j models.Job
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&j)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// Update merge-patches the job and stamps updatedAt.
func (r *JobRepo) Update(ctx context.Context, id primitive.ObjectID, patch bson.M) (*models.Job, error) {
	delete(patch, "postedBy")
	patch["updatedAt"] = time.Now().UTC()

	var updated models.Job
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

func (r *JobRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (r *JobRepo) ListByEmployer(ctx context.Context, employerID primitive.ObjectID) ([]models.Job, error) {
	cur, err := r.col.Find(ctx, bson.M{"postedBy": employerID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Job
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByEmploymentType unwinds the employmentType tags and counts jobs
// per tag.
func (r *JobRepo) CountByEmploymentType(ctx context.Context) (map[string]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$employmentType"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$employmentType"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []struct {
		Type  string `bson:"_id"`
		Count int    `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

// Distinct enumerates the values of a facet field across all jobs.
func (r *JobRepo) Distinct(ctx context.Context, field models.FacetField) ([]string, error) {
	raw, err := r.col.Distinct(ctx, string(field), bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// Search applies the composite filter. Every clause is an "is one of"
// match; results always exclude expired jobs.
func (r *JobRepo) Search(ctx context.Context, f models.JobFilter) ([]models.Job, error) {
	filter := bson.M{"deadline": bson.M{"$gte": time.Now().UTC()}}
	if len(f.Types) > 0 {
		filter["employmentType"] = bson.M{"$in": f.Types}
	}
	if len(f.Locations) > 0 {
		filter["location"] = bson.M{"$in": f.Locations}
	}
	if len(f.Roles) > 0 {
		filter["title"] = bson.M{"$in": f.Roles}
	}
	if len(f.Companies) > 0 {
		filter["company"] = bson.M{"$in": f.Companies}
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Job
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCandidates returns up to limit unexpired jobs excluding the given
// ids, for the match scorer.
func (r *JobRepo) ListCandidates(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.Job, error) {
	filter := bson.M{"deadline": bson.M{"$gte": time.Now().UTC()}}
	if len(exclude) > 0 {
		filter["_id"] = bson.M{"$nin": exclude}
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Job
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
