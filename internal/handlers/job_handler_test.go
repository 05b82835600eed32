package handlers_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"joblink/api/internal/handlers"
	"joblink/api/internal/models"
	"joblink/api/internal/repositories"
)

type fakeFacets struct {
	getFn func(models.FacetField) ([]string, error)
}

func (f *fakeFacets) Get(_ context.Context, field models.FacetField) ([]string, error) {
	if f.getFn != nil {
		return f.getFn(field)
	}
	return nil, repositories.ErrNotImplemented
}

func TestCreateJobMissingFields(t *testing.T) {
	employer := fixtureEmployer()
	h := handlers.NewJobHandler(&fakeJobs{}, resolverFor(employer), &fakeAssessments{}, &fakeFacets{})

	body := `{"title":"Backend Engineer","company":"Acme"}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/job/create", bytes.NewBufferString(body)), employer.UID)
	rec := httptest.NewRecorder()
	h.CreateJobHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Code != "missing_fields" {
		t.Fatalf("expected missing_fields code, got %q", env.Code)
	}
	for _, field := range []string{"location", "description"} {
		if !strings.Contains(env.Message, field) {
			t.Fatalf("expected %q in message %q", field, env.Message)
		}
	}
}

func TestCreateJobSetsOwner(t *testing.T) {
	employer := fixtureEmployer()
	var created *models.Job
	jobs := &fakeJobs{createFn: func(j *models.Job) (*models.Job, error) {
		j.ID = primitive.NewObjectID()
		created = j
		return j, nil
	}}
	h := handlers.NewJobHandler(jobs, resolverFor(employer), &fakeAssessments{}, &fakeFacets{})

	body := `{"title":"Backend Engineer","company":"Acme","location":"Remote","description":"Build services.","employmentType":["full-time"]}`
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/job/create", bytes.NewBufferString(body)), employer.UID)
	rec := httptest.NewRecorder()
	h.CreateJobHandler(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if created == nil || created.PostedBy != employer.ID {
		t.Fatalf("expected job owned by employer, got %+v", created)
	}
}

func TestListJobsDeadlineFilter(t *testing.T) {
	var gotValid []bool
	jobs := &fakeJobs{listFn: func(valid bool) ([]models.Job, error) {
		gotValid = append(gotValid, valid)
		return nil, nil
	}}
	h := handlers.NewJobHandler(jobs, &fakeUsers{}, &fakeAssessments{}, &fakeFacets{})

	rec := httptest.NewRecorder()
	h.ListJobsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/job", nil))
	rec = httptest.NewRecorder()
	h.ListJobsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/job?deadlineValid=false", nil))

	if want := []bool{true, false}; !reflect.DeepEqual(gotValid, want) {
		t.Fatalf("expected %v, got %v", want, gotValid)
	}
}

func TestGetJobIncludesAssessments(t *testing.T) {
	employer := fixtureEmployer()
	job := fixtureJob(employer)
	assessment := models.CodeAssessment{ID: primitive.NewObjectID(), Title: "FizzBuzz"}
	job.Assessments = []primitive.ObjectID{assessment.ID}

	jobs := &fakeJobs{getByIDFn: func(primitive.ObjectID) (*models.Job, error) { return job, nil }}
	assessments := &fakeAssessments{listByIDsFn: func(ids []primitive.ObjectID) ([]models.CodeAssessment, error) {
		if len(ids) != 1 || ids[0] != assessment.ID {
			t.Fatalf("expected the job's assessment ids, got %v", ids)
		}
		return []models.CodeAssessment{assessment}, nil
	}}
	h := handlers.NewJobHandler(jobs, &fakeUsers{}, assessments, &fakeFacets{})

	req := addURLParam(httptest.NewRequest(http.MethodGet, "/api/job/"+job.ID.Hex(), nil), "id", job.ID.Hex())
	rec := httptest.NewRecorder()
	h.GetJobHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "FizzBuzz") {
		t.Fatalf("expected assessment details in body: %s", rec.Body.String())
	}
}

func TestUpdateJobOwnershipAndPatch(t *testing.T) {
	employer := fixtureEmployer()
	intruder := &models.User{ID: primitive.NewObjectID(), UID: "employer-2", Role: models.RoleEmployer}
	job := fixtureJob(employer)

	var gotPatch bson.M
	jobs := &fakeJobs{
		getByIDFn: func(primitive.ObjectID) (*models.Job, error) { return job, nil },
		updateFn: func(_ primitive.ObjectID, patch bson.M) (*models.Job, error) {
			gotPatch = patch
			return job, nil
		},
	}
	h := handlers.NewJobHandler(jobs, resolverFor(employer, intruder), &fakeAssessments{}, &fakeFacets{})

	body := `{"title":"Senior Backend Engineer","_id":"tampered","createdAt":"2020-01-01"}`
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/job/"+job.ID.Hex(), bytes.NewBufferString(body)), intruder.UID)
	req = addURLParam(req, "id", job.ID.Hex())
	rec := httptest.NewRecorder()
	h.UpdateJobHandler(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rec.Code)
	}

	req = asUser(httptest.NewRequest(http.MethodPut, "/api/job/"+job.ID.Hex(), bytes.NewBufferString(body)), employer.UID)
	req = addURLParam(req, "id", job.ID.Hex())
	rec = httptest.NewRecorder()
	h.UpdateJobHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotPatch["title"] != "Senior Backend Engineer" {
		t.Fatalf("expected title in patch, got %v", gotPatch)
	}
	for _, k := range []string{"_id", "id", "createdAt"} {
		if _, ok := gotPatch[k]; ok {
			t.Fatalf("expected %s to be stripped from patch, got %v", k, gotPatch)
		}
	}
}

func TestUpdateJobKeepsDeadlineTyped(t *testing.T) {
	employer := fixtureEmployer()
	job := fixtureJob(employer)

	var gotPatch bson.M
	jobs := &fakeJobs{
		getByIDFn: func(primitive.ObjectID) (*models.Job, error) { return job, nil },
		updateFn: func(_ primitive.ObjectID, patch bson.M) (*models.Job, error) {
			gotPatch = patch
			return job, nil
		},
	}
	h := handlers.NewJobHandler(jobs, resolverFor(employer), &fakeAssessments{}, &fakeFacets{})

	body := `{"deadline":"2026-12-31T00:00:00Z"}`
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/job/"+job.ID.Hex(), bytes.NewBufferString(body)), employer.UID)
	req = addURLParam(req, "id", job.ID.Hex())
	rec := httptest.NewRecorder()
	h.UpdateJobHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	deadline, ok := gotPatch["deadline"].(time.Time)
	if !ok {
		t.Fatalf("expected deadline stored as time.Time, got %T", gotPatch["deadline"])
	}
	if want := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC); !deadline.Equal(want) {
		t.Fatalf("expected %v, got %v", want, deadline)
	}
}

func TestUpdateJobRejectsEmptyPatch(t *testing.T) {
	employer := fixtureEmployer()
	job := fixtureJob(employer)
	jobs := &fakeJobs{getByIDFn: func(primitive.ObjectID) (*models.Job, error) { return job, nil }}
	h := handlers.NewJobHandler(jobs, resolverFor(employer), &fakeAssessments{}, &fakeFacets{})

	body := `{"salaryRange":"not-a-field"}`
	req := asUser(httptest.NewRequest(http.MethodPut, "/api/job/"+job.ID.Hex(), bytes.NewBufferString(body)), employer.UID)
	req = addURLParam(req, "id", job.ID.Hex())
	rec := httptest.NewRecorder()
	h.UpdateJobHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec); env.Code != "empty_patch" {
		t.Fatalf("expected empty_patch code, got %q", env.Code)
	}
}

func TestListJobsPagination(t *testing.T) {
	var gotParams models.PaginationParams
	jobs := &fakeJobs{listPageFn: func(valid bool, p models.PaginationParams) ([]models.Job, int, error) {
		if !valid {
			t.Fatal("expected the deadline filter to default on")
		}
		gotParams = p
		return []models.Job{{Title: "Backend Engineer"}}, 5, nil
	}}
	h := handlers.NewJobHandler(jobs, &fakeUsers{}, &fakeAssessments{}, &fakeFacets{})

	rec := httptest.NewRecorder()
	h.ListJobsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/job?page=2&limit=2", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotParams.Page != 2 || gotParams.Limit != 2 {
		t.Fatalf("expected page 2 limit 2, got %+v", gotParams)
	}
	data, ok := decodeEnvelope(t, rec).Data.(map[string]any)
	if !ok {
		t.Fatal("expected an object payload")
	}
	if data["total"] != float64(5) || data["totalPages"] != float64(3) {
		t.Fatalf("expected total 5 over 3 pages, got %v", data)
	}
	if data["hasNext"] != true || data["hasPrev"] != true {
		t.Fatalf("expected a middle page, got %v", data)
	}
}

func TestListJobsPaginationValidation(t *testing.T) {
	h := handlers.NewJobHandler(&fakeJobs{}, &fakeUsers{}, &fakeAssessments{}, &fakeFacets{})

	cases := []struct {
		query string
		code  string
	}{
		{"?page=0&limit=10", "invalid_page"},
		{"?page=abc", "invalid_page"},
		{"?page=1&limit=0", "invalid_limit"},
		{"?page=1&limit=101", "invalid_limit"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.ListJobsHandler(rec, httptest.NewRequest(http.MethodGet, "/api/job"+tc.query, nil))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", tc.query, rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Code != tc.code {
			t.Fatalf("%s: expected %s code, got %q", tc.query, tc.code, env.Code)
		}
	}
}

func TestFacetsHandler(t *testing.T) {
	facets := &fakeFacets{getFn: func(field models.FacetField) ([]string, error) {
		if field != models.FacetLocation {
			t.Fatalf("expected location facet, got %s", field)
		}
		return []string{"Remote", "Singapore"}, nil
	}}
	h := handlers.NewJobHandler(&fakeJobs{}, &fakeUsers{}, &fakeAssessments{}, facets)

	req := addURLParam(httptest.NewRequest(http.MethodGet, "/api/job/facets/location", nil), "field", "location")
	rec := httptest.NewRecorder()
	h.FacetsHandler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	req = addURLParam(httptest.NewRequest(http.MethodGet, "/api/job/facets/salary", nil), "field", "salary")
	rec = httptest.NewRecorder()
	h.FacetsHandler(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown facet, got %d", rec.Code)
	}
}

func TestSearchSplitsParams(t *testing.T) {
	var gotFilter models.JobFilter
	jobs := &fakeJobs{searchFn: func(f models.JobFilter) ([]models.Job, error) {
		gotFilter = f
		return nil, nil
	}}
	h := handlers.NewJobHandler(jobs, &fakeUsers{}, &fakeAssessments{}, &fakeFacets{})

	req := httptest.NewRequest(http.MethodGet, "/api/job/search?jobType=full-time,part-time&location=Remote&location=Singapore", nil)
	rec := httptest.NewRecorder()
	h.SearchHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if want := []string{"full-time", "part-time"}; !reflect.DeepEqual(gotFilter.Types, want) {
		t.Fatalf("expected types %v, got %v", want, gotFilter.Types)
	}
	if want := []string{"Remote", "Singapore"}; !reflect.DeepEqual(gotFilter.Locations, want) {
		t.Fatalf("expected locations %v, got %v", want, gotFilter.Locations)
	}
}
