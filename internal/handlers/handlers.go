// Package handlers implements the HTTP surface. Each handler depends on
// narrow store interfaces so tests can swap in fakes.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"joblink/api/internal/lifecycle"
	"joblink/api/internal/middleware"
	"joblink/api/internal/models"
	"joblink/api/internal/repositories"
	"joblink/api/internal/utils"
)

type UserStore interface {
	Create(ctx context.Context, u *models.User) (*models.User, error)
	GetByUID(ctx context.Context, uid string) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, uid string, patch bson.M) (*models.User, error)
	Delete(ctx context.Context, uid string) error
}

type JobStore interface {
	Create(ctx context.Context, j *models.Job) (*models.Job, error)
	List(ctx context.Context, deadlineValid bool) ([]models.Job, error)
	ListPage(ctx context.Context, deadlineValid bool, p models.PaginationParams) ([]models.Job, int, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	Update(ctx context.Context, id primitive.ObjectID, patch bson.M) (*models.Job, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByEmployer(ctx context.Context, employerID primitive.ObjectID) ([]models.Job, error)
	CountByEmploymentType(ctx context.Context) (map[string]int, error)
	Distinct(ctx context.Context, field models.FacetField) ([]string, error)
	Search(ctx context.Context, f models.JobFilter) ([]models.Job, error)
	ListCandidates(ctx context.Context, exclude []primitive.ObjectID, limit int64) ([]models.Job, error)
}

type ApplicationStore interface {
	Create(ctx context.Context, a *models.Application) (*models.Application, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Application, error)
	ListByApplicant(ctx context.Context, applicantID primitive.ObjectID) ([]models.Application, error)
	ListByJob(ctx context.Context, jobID primitive.ObjectID) ([]models.Application, error)
	Patch(ctx context.Context, id primitive.ObjectID, patch bson.M) (*models.Application, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status lifecycle.Status) (*models.Application, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByStatus(ctx context.Context, jobIDs []primitive.ObjectID) ([]models.StatusCount, error)
	SubmissionSeries(ctx context.Context, jobIDs []primitive.ObjectID) ([]models.DailyJobCount, error)
}

type AssessmentStore interface {
	Create(ctx context.Context, a *models.CodeAssessment) (*models.CodeAssessment, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.CodeAssessment, error)
	List(ctx context.Context) ([]models.CodeAssessment, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.CodeAssessment, error)
	GetSubmission(ctx context.Context, appID, assessmentID primitive.ObjectID) (*models.CodeSubmission, error)
	UpsertSubmission(ctx context.Context, s *models.CodeSubmission) (*models.CodeSubmission, bool, error)
}

type ShortlistStore interface {
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Shortlist, error)
	AddJob(ctx context.Context, userID, jobID primitive.ObjectID) (*models.Shortlist, error)
	RemoveJob(ctx context.Context, userID, jobID primitive.ObjectID) (*models.Shortlist, error)
}

// currentUser resolves the gate's subject id back to the User document.
func currentUser(r *http.Request, users UserStore) (*models.User, error) {
	uid, ok := middleware.SubjectUID(r)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return users.GetByUID(r.Context(), uid)
}

// storeError maps repository sentinels onto the normalized status codes.
// Raw storage errors never reach the client body.
func storeError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		utils.Error(w, http.StatusNotFound, "not_found", notFoundMsg)
	case errors.Is(err, repositories.ErrDuplicate):
		utils.Error(w, http.StatusConflict, "duplicate", "Resource already exists")
	default:
		utils.Error(w, http.StatusInternalServerError, "internal_error", "Something went wrong")
	}
}

// parseObjectID parses a hex id, writing the 400 itself on failure.
func parseObjectID(w http.ResponseWriter, raw, field string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_id", "Invalid "+field)
		return primitive.NilObjectID, false
	}
	return id, true
}
