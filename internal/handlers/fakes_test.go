package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"joblink/api/internal/lifecycle"
	"joblink/api/internal/middleware"
	"joblink/api/internal/models"
	"joblink/api/internal/repositories"
)

// fake stores in the style of the repo interfaces: a struct of func
// fields, each falling back to ErrNotImplemented.

type fakeUsers struct {
	createFn   func(*models.User) (*models.User, error)
	getByUIDFn func(string) (*models.User, error)
	getByIDFn  func(primitive.ObjectID) (*models.User, error)
	updateFn   func(string, bson.M) (*models.User, error)
	deleteFn   func(string) error
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createFn != nil {
		return f.createFn(u)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeUsers) GetByUID(_ context.Context, uid string) (*models.User, error) {
	if f.getByUIDFn != nil {
		return f.getByUIDFn(uid)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(id)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeUsers) Update(_ context.Context, uid string, patch bson.M) (*models.User, error) {
	if f.updateFn != nil {
		return f.updateFn(uid, patch)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeUsers) Delete(_ context.Context, uid string) error {
	if f.deleteFn != nil {
		return f.deleteFn(uid)
	}
	return repositories.ErrNotImplemented
}

type fakeJobs struct {
	createFn         func(*models.Job) (*models.Job, error)
	listFn           func(bool) ([]models.Job, error)
	listPageFn       func(bool, models.PaginationParams) ([]models.Job, int, error)
	getByIDFn        func(primitive.ObjectID) (*models.Job, error)
	updateFn         func(primitive.ObjectID, bson.M) (*models.Job, error)
	deleteFn         func(primitive.ObjectID) error
	listByEmployerFn func(primitive.ObjectID) ([]models.Job, error)
	countByTypeFn    func() (map[string]int, error)
	distinctFn       func(models.FacetField) ([]string, error)
	searchFn         func(models.JobFilter) ([]models.Job, error)
	candidatesFn     func([]primitive.ObjectID, int64) ([]models.Job, error)
}

func (f *fakeJobs) Create(_ context.Context, j *models.Job) (*models.Job, error) {
	if f.createFn != nil {
		return f.createFn(j)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeJobs) List(_ context.Context, deadlineValid bool) ([]models.Job, error) {
	if f.listFn != nil {
		return f.listFn(deadlineValid)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeJobs) ListPage(_ context.Context, deadlineValid bool, p models.PaginationParams) ([]models.Job, int, error) {
	if f.listPageFn != nil {
		return f.listPageFn(deadlineValid, p)
	}
	return nil, 0, repositories.ErrNotImplemented
}
func (f *fakeJobs) GetByID(_ context.Context, id primitive.ObjectID) (*models.Job, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(id)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeJobs) Update(_ context.Context, id primitive.ObjectID, patch bson.M) (*models.Job, error) {
	if f.updateFn != nil {
		return f.updateFn(id, patch)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeJobs) Delete(_ context.Context, id primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(id)
	}
	return repositories.ErrNotImplemented
}
func (f *fakeJobs) ListByEmployer(_ context.Context, id primitive.ObjectID) ([]models.Job, error) {
	if f.listByEmployerFn != nil {
		return f.listByEmployerFn(id)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeJobs) CountByEmploymentType(_ context.Context) (map[string]int, error) {
	if f.countByTypeFn != nil {
		return f.countByTypeFn()
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeJobs) Distinct(_ context.Context, field models.FacetField) ([]string, error) {
	if f.distinctFn != nil {
		return f.distinctFn(field)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeJobs) Search(_ context.Context, filter models.JobFilter) ([]models.Job, error) {
	if f.searchFn != nil {
		return f.searchFn(filter)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeJobs) ListCandidates(_ context.Context, exclude []primitive.ObjectID, limit int64) ([]models.Job, error) {
	if f.candidatesFn != nil {
		return f.candidatesFn(exclude, limit)
	}
	return nil, repositories.ErrNotImplemented
}

type fakeApplications struct {
	createFn          func(*models.Application) (*models.Application, error)
	getByIDFn         func(primitive.ObjectID) (*models.Application, error)
	listByApplicantFn func(primitive.ObjectID) ([]models.Application, error)
	listByJobFn       func(primitive.ObjectID) ([]models.Application, error)
	patchFn           func(primitive.ObjectID, bson.M) (*models.Application, error)
	setStatusFn       func(primitive.ObjectID, lifecycle.Status) (*models.Application, error)
	deleteFn          func(primitive.ObjectID) error
	countByStatusFn   func([]primitive.ObjectID) ([]models.StatusCount, error)
	seriesFn          func([]primitive.ObjectID) ([]models.DailyJobCount, error)
}

func (f *fakeApplications) Create(_ context.Context, a *models.Application) (*models.Application, error) {
	if f.createFn != nil {
		return f.createFn(a)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeApplications) GetByID(_ context.Context, id primitive.ObjectID) (*models.Application, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(id)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeApplications) ListByApplicant(_ context.Context, id primitive.ObjectID) ([]models.Application, error) {
	if f.listByApplicantFn != nil {
		return f.listByApplicantFn(id)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeApplications) ListByJob(_ context.Context, id primitive.ObjectID) ([]models.Application, error) {
	if f.listByJobFn != nil {
		return f.listByJobFn(id)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeApplications) Patch(_ context.Context, id primitive.ObjectID, patch bson.M) (*models.Application, error) {
	if f.patchFn != nil {
		return f.patchFn(id, patch)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeApplications) SetStatus(_ context.Context, id primitive.ObjectID, s lifecycle.Status) (*models.Application, error) {
	if f.setStatusFn != nil {
		return f.setStatusFn(id, s)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeApplications) Delete(_ context.Context, id primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(id)
	}
	return repositories.ErrNotImplemented
}
func (f *fakeApplications) CountByStatus(_ context.Context, ids []primitive.ObjectID) ([]models.StatusCount, error) {
	if f.countByStatusFn != nil {
		return f.countByStatusFn(ids)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeApplications) SubmissionSeries(_ context.Context, ids []primitive.ObjectID) ([]models.DailyJobCount, error) {
	if f.seriesFn != nil {
		return f.seriesFn(ids)
	}
	return nil, repositories.ErrNotImplemented
}

type fakeAssessments struct {
	createFn        func(*models.CodeAssessment) (*models.CodeAssessment, error)
	getByIDFn       func(primitive.ObjectID) (*models.CodeAssessment, error)
	listFn          func() ([]models.CodeAssessment, error)
	listByIDsFn     func([]primitive.ObjectID) ([]models.CodeAssessment, error)
	getSubmissionFn func(primitive.ObjectID, primitive.ObjectID) (*models.CodeSubmission, error)
	upsertFn        func(*models.CodeSubmission) (*models.CodeSubmission, bool, error)
}

func (f *fakeAssessments) Create(_ context.Context, a *models.CodeAssessment) (*models.CodeAssessment, error) {
	if f.createFn != nil {
		return f.createFn(a)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeAssessments) GetByID(_ context.Context, id primitive.ObjectID) (*models.CodeAssessment, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(id)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeAssessments) List(_ context.Context) ([]models.CodeAssessment, error) {
	if f.listFn != nil {
		return f.listFn()
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeAssessments) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.CodeAssessment, error) {
	if f.listByIDsFn != nil {
		return f.listByIDsFn(ids)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeAssessments) GetSubmission(_ context.Context, appID, assessmentID primitive.ObjectID) (*models.CodeSubmission, error) {
	if f.getSubmissionFn != nil {
		return f.getSubmissionFn(appID, assessmentID)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeAssessments) UpsertSubmission(_ context.Context, s *models.CodeSubmission) (*models.CodeSubmission, bool, error) {
	if f.upsertFn != nil {
		return f.upsertFn(s)
	}
	return nil, false, repositories.ErrNotImplemented
}

type fakeShortlists struct {
	getOrCreateFn func(primitive.ObjectID) (*models.Shortlist, error)
	addFn         func(primitive.ObjectID, primitive.ObjectID) (*models.Shortlist, error)
	removeFn      func(primitive.ObjectID, primitive.ObjectID) (*models.Shortlist, error)
}

func (f *fakeShortlists) GetOrCreate(_ context.Context, userID primitive.ObjectID) (*models.Shortlist, error) {
	if f.getOrCreateFn != nil {
		return f.getOrCreateFn(userID)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeShortlists) AddJob(_ context.Context, userID, jobID primitive.ObjectID) (*models.Shortlist, error) {
	if f.addFn != nil {
		return f.addFn(userID, jobID)
	}
	return nil, repositories.ErrNotImplemented
}
func (f *fakeShortlists) RemoveJob(_ context.Context, userID, jobID primitive.ObjectID) (*models.Shortlist, error) {
	if f.removeFn != nil {
		return f.removeFn(userID, jobID)
	}
	return nil, repositories.ErrNotImplemented
}

// asUser attaches a verified subject id, as the gate would.
func asUser(req *http.Request, uid string) *http.Request {
	return req.WithContext(middleware.WithSubject(req.Context(), uid))
}

func addURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return req
}

// decodeEnvelope unpacks the response body for assertions on message
// and code.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) models.Envelope {
	t.Helper()
	var env models.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return env
}

// resolverFor returns a users fake that serves the given fixtures by uid.
func resolverFor(users ...*models.User) *fakeUsers {
	byUID := make(map[string]*models.User, len(users))
	for _, u := range users {
		byUID[u.UID] = u
	}
	return &fakeUsers{getByUIDFn: func(uid string) (*models.User, error) {
		u, ok := byUID[uid]
		if !ok {
			return nil, repositories.ErrNotFound
		}
		return u, nil
	}}
}

// seeker and employer are fixture users shared across tests.
func fixtureSeeker() *models.User {
	return &models.User{
		ID:   primitive.NewObjectID(),
		UID:  "seeker-1",
		Role: models.RoleJobSeeker,
		JobSeeker: &models.JobSeekerProfile{
			Resume: "Seasoned backend engineer with Go and distributed systems experience.",
		},
	}
}

func fixtureEmployer() *models.User {
	return &models.User{
		ID:       primitive.NewObjectID(),
		UID:      "employer-1",
		Role:     models.RoleEmployer,
		Employer: &models.EmployerProfile{CompanyName: "Acme"},
	}
}

func fixtureJob(owner *models.User) *models.Job {
	return &models.Job{
		ID:          primitive.NewObjectID(),
		Title:       "Backend Engineer",
		Company:     "Acme",
		Location:    "Remote",
		Description: "Build services.",
		PostedBy:    owner.ID,
		Deadline:    time.Now().Add(30 * 24 * time.Hour),
	}
}
