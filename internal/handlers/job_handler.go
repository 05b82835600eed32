package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"joblink/api/internal/models"
	"joblink/api/internal/utils"
)

// FacetSource serves distinct field values, normally through the Redis
// facet cache.
type FacetSource interface {
	Get(ctx context.Context, field models.FacetField) ([]string, error)
}

// JobHandler manages the job catalog endpoints.
type JobHandler struct {
	jobs        JobStore
	users       UserStore
	assessments AssessmentStore
	facets      FacetSource
}

func NewJobHandler(jobs JobStore, users UserStore, assessments AssessmentStore, facets FacetSource) *JobHandler {
	return &JobHandler{jobs: jobs, users: users, assessments: assessments, facets: facets}
}

type createJobRequest struct {
	Title           string             `json:"title"`
	Company         string             `json:"company"`
	Location        string             `json:"location"`
	Description     string             `json:"description"`
	Salary          models.SalaryRange `json:"salary"`
	EmploymentType  []string           `json:"employmentType"`
	Requirements    []string           `json:"requirements"`
	ExperienceLevel string             `json:"experienceLevel"`
	Questions       []string           `json:"questions"`
	Assessments     []string           `json:"assessments"`
	Deadline        time.Time          `json:"deadline"`
}

func (h *JobHandler) CreateJobHandler(w http.ResponseWriter, r *http.Request) {
	employer, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}

	var req createJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}

	var missing []string
	for field, value := range map[string]string{
		"title":       req.Title,
		"company":     req.Company,
		"location":    req.Location,
		"description": req.Description,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		utils.Error(w, http.StatusBadRequest, "missing_fields",
			"Missing required fields: "+strings.Join(missing, ", "))
		return
	}

	job := &models.Job{
		Title:           req.Title,
		Company:         req.Company,
		Location:        req.Location,
		Description:     req.Description,
		Salary:          req.Salary,
		EmploymentType:  req.EmploymentType,
		Requirements:    req.Requirements,
		ExperienceLevel: req.ExperienceLevel,
		Questions:       req.Questions,
		PostedBy:        employer.ID,
		Deadline:        req.Deadline,
	}
	for _, raw := range req.Assessments {
		id, ok := parseObjectID(w, raw, "assessment id")
		if !ok {
			return
		}
		job.Assessments = append(job.Assessments, id)
	}

	created, err := h.jobs.Create(r.Context(), job)
	if err != nil {
		storeError(w, err, "Job not found")
		return
	}
	utils.OK(w, http.StatusCreated, "Job created", created)
}

// ListJobsHandler lists jobs. By default only jobs whose deadline has
// not passed are returned; deadlineValid=false includes expired ones.
// Without page/limit parameters the full catalog is returned; with
// them the response carries pagination metadata.
func (h *JobHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	deadlineValid := q.Get("deadlineValid") != "false"

	pageStr := q.Get("page")
	limitStr := q.Get("limit")
	if pageStr == "" && limitStr == "" {
		jobs, err := h.jobs.List(r.Context(), deadlineValid)
		if err != nil {
			storeError(w, err, "Jobs not found")
			return
		}
		utils.OK(w, http.StatusOK, "Jobs fetched", models.PagedJobs{
			Total: len(jobs), Items: jobs,
			Page: 1, Limit: len(jobs), TotalPages: 1,
		})
		return
	}

	params := models.PaginationParams{Page: 1, Limit: 10}
	if pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			utils.Error(w, http.StatusBadRequest, "invalid_page", "page must be a positive integer")
			return
		}
		params.Page = page
	}
	if limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > 100 {
			utils.Error(w, http.StatusBadRequest, "invalid_limit",
				"limit must be a positive integer between 1 and 100")
			return
		}
		params.Limit = limit
	}

	jobs, total, err := h.jobs.ListPage(r.Context(), deadlineValid, params)
	if err != nil {
		storeError(w, err, "Jobs not found")
		return
	}

	totalPages, hasNext, hasPrev := models.CalculatePaginationMeta(params.Page, params.Limit, total)
	utils.OK(w, http.StatusOK, "Jobs fetched", models.PagedJobs{
		Total: total, Items: jobs,
		Page: params.Page, Limit: params.Limit,
		TotalPages: totalPages, HasNext: hasNext, HasPrev: hasPrev,
	})
}

type jobDetail struct {
	models.Job
	AssessmentDetails []models.CodeAssessment `json:"assessmentDetails,omitempty"`
}

func (h *JobHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, chi.URLParam(r, "id"), "job id")
	if !ok {
		return
	}

	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Job not found")
		return
	}

	detail := jobDetail{Job: *job}
	if len(job.Assessments) > 0 {
		related, err := h.assessments.ListByIDs(r.Context(), job.Assessments)
		if err != nil {
			storeError(w, err, "Assessments not found")
			return
		}
		detail.AssessmentDetails = related
	}
	utils.OK(w, http.StatusOK, "Job fetched", detail)
}

// ownJob loads the job and checks the caller posted it.
func (h *JobHandler) ownJob(w http.ResponseWriter, r *http.Request) (*models.Job, bool) {
	id, ok := parseObjectID(w, chi.URLParam(r, "id"), "job id")
	if !ok {
		return nil, false
	}
	employer, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return nil, false
	}
	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Job not found")
		return nil, false
	}
	if job.PostedBy != employer.ID {
		utils.Error(w, http.StatusForbidden, "forbidden", "You do not own this job")
		return nil, false
	}
	return job, true
}

// updateJobRequest is a merge patch: only fields present in the body
// are updated. Decoding into typed fields keeps dates as dates in the
// store, so deadline filters keep matching after an edit.
type updateJobRequest struct {
	Title           *string             `json:"title"`
	Company         *string             `json:"company"`
	Location        *string             `json:"location"`
	Description     *string             `json:"description"`
	Salary          *models.SalaryRange `json:"salary"`
	EmploymentType  *[]string           `json:"employmentType"`
	Requirements    *[]string           `json:"requirements"`
	ExperienceLevel *string             `json:"experienceLevel"`
	Questions       *[]string           `json:"questions"`
	Assessments     *[]string           `json:"assessments"`
	Deadline        *time.Time          `json:"deadline"`
}

func (req *updateJobRequest) patch(w http.ResponseWriter) (bson.M, bool) {
	patch := bson.M{}
	if req.Title != nil {
		patch["title"] = *req.Title
	}
	if req.Company != nil {
		patch["company"] = *req.Company
	}
	if req.Location != nil {
		patch["location"] = *req.Location
	}
	if req.Description != nil {
		patch["description"] = *req.Description
	}
	if req.Salary != nil {
		patch["salary"] = *req.Salary
	}
	if req.EmploymentType != nil {
		patch["employmentType"] = *req.EmploymentType
	}
	if req.Requirements != nil {
		patch["requirements"] = *req.Requirements
	}
	if req.ExperienceLevel != nil {
		patch["experienceLevel"] = *req.ExperienceLevel
	}
	if req.Questions != nil {
		patch["questions"] = *req.Questions
	}
	if req.Assessments != nil {
		ids := make([]primitive.ObjectID, 0, len(*req.Assessments))
		for _, raw := range *req.Assessments {
			id, ok := parseObjectID(w, raw, "assessment id")
			if !ok {
				return nil, false
			}
			ids = append(ids, id)
		}
		patch["assessments"] = ids
	}
	if req.Deadline != nil {
		patch["deadline"] = *req.Deadline
	}
	return patch, true
}

func (h *JobHandler) UpdateJobHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := h.ownJob(w, r)
	if !ok {
		return
	}

	var req updateJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	patch, ok := req.patch(w)
	if !ok {
		return
	}
	if len(patch) == 0 {
		utils.Error(w, http.StatusBadRequest, "empty_patch", "No updatable fields in request")
		return
	}

	updated, err := h.jobs.Update(r.Context(), job.ID, patch)
	if err != nil {
		storeError(w, err, "Job not found")
		return
	}
	utils.OK(w, http.StatusOK, "Job updated", updated)
}

func (h *JobHandler) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := h.ownJob(w, r)
	if !ok {
		return
	}
	if err := h.jobs.Delete(r.Context(), job.ID); err != nil {
		storeError(w, err, "Job not found")
		return
	}
	utils.OK(w, http.StatusOK, "Job deleted", nil)
}

func (h *JobHandler) ListMyJobsHandler(w http.ResponseWriter, r *http.Request) {
	employer, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	jobs, err := h.jobs.ListByEmployer(r.Context(), employer.ID)
	if err != nil {
		storeError(w, err, "Jobs not found")
		return
	}
	utils.OK(w, http.StatusOK, "Jobs fetched", jobs)
}

func (h *JobHandler) CountByTypeHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := h.jobs.CountByEmploymentType(r.Context())
	if err != nil {
		storeError(w, err, "Jobs not found")
		return
	}
	utils.OK(w, http.StatusOK, "Counts fetched", counts)
}

// FacetsHandler enumerates distinct values for one facet field.
func (h *JobHandler) FacetsHandler(w http.ResponseWriter, r *http.Request) {
	field, ok := models.ParseFacetField(chi.URLParam(r, "field"))
	if !ok {
		utils.Error(w, http.StatusBadRequest, "invalid_field",
			"field must be one of: title, location, employmentType, company")
		return
	}
	values, err := h.facets.Get(r.Context(), field)
	if err != nil {
		storeError(w, err, "Facets not found")
		return
	}
	utils.OK(w, http.StatusOK, "Facets fetched", values)
}

// SearchHandler runs the composite filtered search. Each parameter
// accepts repeated values or a single comma-separated value; either way
// a non-empty set means "is one of".
func (h *JobHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.JobFilter{
		Types:     splitParam(q["jobType"]),
		Locations: splitParam(q["location"]),
		Roles:     splitParam(q["role"]),
		Companies: splitParam(q["company"]),
	}

	jobs, err := h.jobs.Search(r.Context(), filter)
	if err != nil {
		storeError(w, err, "Jobs not found")
		return
	}
	utils.OK(w, http.StatusOK, "Jobs fetched", jobs)
}

func (h *JobHandler) QuestionsHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, chi.URLParam(r, "id"), "job id")
	if !ok {
		return
	}
	job, err := h.jobs.GetByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Job not found")
		return
	}
	utils.OK(w, http.StatusOK, "Questions fetched", job.Questions)
}

func splitParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
