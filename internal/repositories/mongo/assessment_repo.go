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

// AssessmentRepo wraps the assessments and submissions collections.
type AssessmentRepo struct {
	assessments *mongo.Collection
	submissions *mongo.Collection
}

// NewAssessmentRepo ensures the unique (applicationId, assessmentId)
// index backing the best-score-wins submission invariant.
func NewAssessmentRepo(c *Client) (*AssessmentRepo, error) {
	db, err := c.DB()
	if err != nil {
		return nil, err
	}
	subs := db.Collection("submissions")

	_, _ = subs.Indexes().CreateOne(context.Background(), mongo.IndexModel{
		Keys:    bson.D{{Key: "applicationId", Value: 1}, {Key: "assessmentId", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	return &AssessmentRepo{
		assessments: db.Collection("assessments"),
		submissions: subs,
	}, nil
}

func (r *AssessmentRepo) Create(ctx context.Context, a *models.CodeAssessment) (*models.CodeAssessment, error) {
	a.CreatedAt = time.Now().UTC()
	res, err := r.assessments.InsertOne(ctx, a)
	if err != nil {
		return nil, err
	}
	a.ID = res.InsertedID.(primitive.ObjectID)
	return a, nil
}

func (r *AssessmentRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.CodeAssessment, error) {
	var a models.CodeAssessment
	err := r.assessments.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssessmentRepo) List(ctx context.Context) ([]models.CodeAssessment, error) {
	cur, err := r.assessments.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CodeAssessment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AssessmentRepo) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.CodeAssessment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := r.assessments.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.CodeAssessment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSubmission fetches the stored best attempt for a pair, or
// repositories.ErrNotFound when nothing was submitted yet.
func (r *AssessmentRepo) GetSubmission(ctx context.Context, appID, assessmentID primitive.ObjectID) (*models.CodeSubmission, error) {
	var s models.CodeSubmission
	err := r.submissions.FindOne(ctx, bson.M{
		"applicationId": appID,
		"assessmentId":  assessmentID,
	}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// outranks reports whether the stored submission beats a new attempt.
// Ties count: solutionCode and submittedAt only ever move to a strictly
// higher-scoring attempt.
func outranks(existing, attempt *models.CodeSubmission) bool {
	return attempt.Score <= existing.Score
}

// UpsertSubmission inserts the first attempt for a pair, or replaces the
// stored one when the new score is strictly higher. Returns the row now
// on record and whether the new attempt was kept.
func (r *AssessmentRepo) UpsertSubmission(ctx context.Context, s *models.CodeSubmission) (*models.CodeSubmission, bool, error) {
	existing, err := r.GetSubmission(ctx, s.ApplicationID, s.AssessmentID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	if existing == nil {
		s.SubmittedAt = time.Now().UTC()
		res, err := r.submissions.InsertOne(ctx, s)
		if err != nil {
			return nil, false, err
		}
		s.ID = res.InsertedID.(primitive.ObjectID)
		return s, true, nil
	}

	if outranks(existing, s) {
		return existing, false, nil
	}

	patch := bson.M{
		"solutionCode": s.SolutionCode,
		"language":     s.Language,
		"score":        s.Score,
		"submittedAt":  time.Now().UTC(),
	}
	var updated models.CodeSubmission
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = r.submissions.FindOneAndUpdate(ctx, bson.M{"_id": existing.ID}, bson.M{"$set": patch}, opts).Decode(&updated)
	if err != nil {
		return nil, false, err
	}
	return &updated, true, nil
}
