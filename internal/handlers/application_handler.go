package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"joblink/api/internal/lifecycle"
	"joblink/api/internal/models"
	"joblink/api/internal/utils"
)

// ApplicationHandler owns the application lifecycle endpoints.
type ApplicationHandler struct {
	applications ApplicationStore
	jobs         JobStore
	users        UserStore
}

func NewApplicationHandler(applications ApplicationStore, jobs JobStore, users UserStore) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, jobs: jobs, users: users}
}

type applyRequest struct {
	JobID       string          `json:"jobId"`
	CoverLetter string          `json:"coverLetter"`
	Answers     []models.Answer `json:"answers,omitempty"`
}

// ApplyHandler creates a new application in the draft state.
func (h *ApplicationHandler) ApplyHandler(w http.ResponseWriter, r *http.Request) {
	applicant, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	if req.JobID == "" {
		utils.Error(w, http.StatusBadRequest, "missing_field", "jobId is required")
		return
	}
	jobID, ok := parseObjectID(w, req.JobID, "job id")
	if !ok {
		return
	}
	if _, err := h.jobs.GetByID(r.Context(), jobID); err != nil {
		storeError(w, err, "Job not found")
		return
	}

	created, err := h.applications.Create(r.Context(), &models.Application{
		JobID:       jobID,
		ApplicantID: applicant.ID,
		CoverLetter: req.CoverLetter,
		Answers:     req.Answers,
	})
	if err != nil {
		storeError(w, err, "Application not found")
		return
	}
	utils.OK(w, http.StatusCreated, "Application created", created)
}

// ownApplication loads the application and checks the caller is the
// applicant.
func (h *ApplicationHandler) ownApplication(w http.ResponseWriter, r *http.Request, rawID string) (*models.Application, *models.User, bool) {
	id, ok := parseObjectID(w, rawID, "application id")
	if !ok {
		return nil, nil, false
	}
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return nil, nil, false
	}
	app, err := h.applications.GetByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Application not found")
		return nil, nil, false
	}
	if app.ApplicantID != user.ID {
		utils.Error(w, http.StatusForbidden, "forbidden", "Not your application")
		return nil, nil, false
	}
	return app, user, true
}

type savePatchRequest struct {
	ApplicationID string           `json:"applicationId"`
	CoverLetter   *string          `json:"coverLetter,omitempty"`
	Answers       *[]models.Answer `json:"answers,omitempty"`
}

// SaveHandler merge-patches a draft. Anything past the draft state is
// locked.
func (h *ApplicationHandler) SaveHandler(w http.ResponseWriter, r *http.Request) {
	var req savePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	app, _, ok := h.ownApplication(w, r, req.ApplicationID)
	if !ok {
		return
	}
	if !lifecycle.IsDraft(app.Status) {
		utils.Error(w, http.StatusBadRequest, "not_draft", "Cannot save a submitted application")
		return
	}

	patch := bson.M{}
	if req.CoverLetter != nil {
		patch["coverLetter"] = *req.CoverLetter
	}
	if req.Answers != nil {
		patch["answers"] = *req.Answers
	}
	if len(patch) == 0 {
		utils.Error(w, http.StatusBadRequest, "empty_patch", "Nothing to save")
		return
	}

	updated, err := h.applications.Patch(r.Context(), app.ID, patch)
	if err != nil {
		storeError(w, err, "Application not found")
		return
	}
	utils.OK(w, http.StatusOK, "Application saved", updated)
}

type submitRequest struct {
	ApplicationID string `json:"applicationId"`
}

// SubmitHandler locks a draft. Re-submitting is rejected rather than
// silently repeated.
func (h *ApplicationHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	app, _, ok := h.ownApplication(w, r, req.ApplicationID)
	if !ok {
		return
	}
	if !lifecycle.IsDraft(app.Status) {
		utils.Error(w, http.StatusBadRequest, "already_submitted", "Application already submitted")
		return
	}

	updated, err := h.applications.SetStatus(r.Context(), app.ID, lifecycle.StatusSubmitted)
	if err != nil {
		storeError(w, err, "Application not found")
		return
	}
	utils.OK(w, http.StatusOK, "Application submitted", updated)
}

func (h *ApplicationHandler) WithdrawHandler(w http.ResponseWriter, r *http.Request) {
	app, _, ok := h.ownApplication(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	if err := h.applications.Delete(r.Context(), app.ID); err != nil {
		storeError(w, err, "Application not found")
		return
	}
	utils.OK(w, http.StatusOK, "Application withdrawn", nil)
}

// GetOneHandler serves a single application to its applicant or to the
// employer owning the job.
func (h *ApplicationHandler) GetOneHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, chi.URLParam(r, "id"), "application id")
	if !ok {
		return
	}
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	app, err := h.applications.GetByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Application not found")
		return
	}

	if app.ApplicantID != user.ID {
		job, err := h.jobs.GetByID(r.Context(), app.JobID)
		if err != nil || job.PostedBy != user.ID {
			utils.Error(w, http.StatusForbidden, "forbidden", "Forbidden")
			return
		}
	}
	utils.OK(w, http.StatusOK, "Application fetched", app)
}

func (h *ApplicationHandler) GetMineHandler(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	apps, err := h.applications.ListByApplicant(r.Context(), user.ID)
	if err != nil {
		storeError(w, err, "Applications not found")
		return
	}
	utils.OK(w, http.StatusOK, "Applications fetched", apps)
}

// GetApplicantsHandler lists a job's applications for its owner.
func (h *ApplicationHandler) GetApplicantsHandler(w http.ResponseWriter, r *http.Request) {
	jobID, ok := parseObjectID(w, chi.URLParam(r, "jobId"), "job id")
	if !ok {
		return
	}
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	job, err := h.jobs.GetByID(r.Context(), jobID)
	if err != nil {
		storeError(w, err, "Job not found")
		return
	}
	if job.PostedBy != user.ID {
		utils.Error(w, http.StatusForbidden, "forbidden", "You do not own this job")
		return
	}

	apps, err := h.applications.ListByJob(r.Context(), jobID)
	if err != nil {
		storeError(w, err, "Applications not found")
		return
	}
	utils.OK(w, http.StatusOK, "Applicants fetched", apps)
}

type statusUpdateRequest struct {
	ApplicationID string `json:"applicationId"`
	Action        string `json:"action"`
}

// UpdateStatusHandler drives the state machine. Employers progress,
// accept or reject applications on their own jobs; applicants may only
// complete the code-challenge step of their own application.
func (h *ApplicationHandler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var req statusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	id, ok := parseObjectID(w, req.ApplicationID, "application id")
	if !ok {
		return
	}
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	app, err := h.applications.GetByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Application not found")
		return
	}
	job, err := h.jobs.GetByID(r.Context(), app.JobID)
	if err != nil {
		storeError(w, err, "Job not found")
		return
	}

	var actor lifecycle.Actor
	switch user.Role {
	case models.RoleEmployer:
		if job.PostedBy != user.ID {
			utils.Error(w, http.StatusForbidden, "forbidden", "You do not own this job")
			return
		}
		actor = lifecycle.ActorEmployer
	case models.RoleJobSeeker:
		if app.ApplicantID != user.ID {
			utils.Error(w, http.StatusForbidden, "forbidden", "Not your application")
			return
		}
		actor = lifecycle.ActorApplicant
	default:
		utils.Error(w, http.StatusForbidden, "forbidden", "Forbidden")
		return
	}

	var next lifecycle.Status
	switch req.Action {
	case "accept":
		next, err = lifecycle.Accept(app.Status, actor)
	case string(lifecycle.ActionProgress), string(lifecycle.ActionReject):
		next, err = lifecycle.Next(app.Status, actor, lifecycle.Action(req.Action), len(job.Assessments) > 0)
	default:
		utils.Error(w, http.StatusBadRequest, "invalid_action", "action must be one of: progress, accept, reject")
		return
	}
	var terr *lifecycle.TransitionError
	if errors.As(err, &terr) {
		utils.Error(w, http.StatusBadRequest, "invalid_transition", terr.Error())
		return
	}
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_transition", err.Error())
		return
	}

	updated, err := h.applications.SetStatus(r.Context(), app.ID, next)
	if err != nil {
		storeError(w, err, "Application not found")
		return
	}
	utils.OK(w, http.StatusOK, "Status updated", updated)
}

func (h *ApplicationHandler) GetDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, chi.URLParam(r, "id"), "application id")
	if !ok {
		return
	}
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	app, err := h.applications.GetByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Application not found")
		return
	}
	if app.ApplicantID != user.ID {
		job, err := h.jobs.GetByID(r.Context(), app.JobID)
		if err != nil || job.PostedBy != user.ID {
			utils.Error(w, http.StatusForbidden, "forbidden", "Forbidden")
			return
		}
	}
	utils.OK(w, http.StatusOK, "Deadline fetched", app.AssessmentDeadline)
}

type deadlineRequest struct {
	ApplicationID string    `json:"applicationId"`
	Deadline      time.Time `json:"deadline"`
}

// SetDeadlineHandler stamps the advisory assessment deadline. Only the
// employer owning the job may set it; nothing enforces it automatically.
func (h *ApplicationHandler) SetDeadlineHandler(w http.ResponseWriter, r *http.Request) {
	var req deadlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	id, ok := parseObjectID(w, req.ApplicationID, "application id")
	if !ok {
		return
	}
	if req.Deadline.IsZero() {
		utils.Error(w, http.StatusBadRequest, "missing_field", "deadline is required")
		return
	}
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	app, err := h.applications.GetByID(r.Context(), id)
	if err != nil {
		storeError(w, err, "Application not found")
		return
	}
	job, err := h.jobs.GetByID(r.Context(), app.JobID)
	if err != nil {
		storeError(w, err, "Job not found")
		return
	}
	if job.PostedBy != user.ID {
		utils.Error(w, http.StatusForbidden, "forbidden", "You do not own this job")
		return
	}

	updated, err := h.applications.Patch(r.Context(), app.ID, bson.M{"assessmentDeadline": req.Deadline})
	if err != nil {
		storeError(w, err, "Application not found")
		return
	}
	utils.OK(w, http.StatusOK, "Deadline set", updated)
}

type dashboardResponse struct {
	StatusCounts []models.StatusCount   `json:"statusCounts"`
	DailySeries  []models.DailyJobCount `json:"dailySeries"`
}

// DashboardHandler aggregates applications across the employer's jobs:
// counts per status and a per-day-per-job submission time series.
func (h *ApplicationHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
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

	jobIDs := make([]primitive.ObjectID, len(jobs))
	for i, j := range jobs {
		jobIDs[i] = j.ID
	}

	counts, err := h.applications.CountByStatus(r.Context(), jobIDs)
	if err != nil {
		storeError(w, err, "Applications not found")
		return
	}
	series, err := h.applications.SubmissionSeries(r.Context(), jobIDs)
	if err != nil {
		storeError(w, err, "Applications not found")
		return
	}
	utils.OK(w, http.StatusOK, "Dashboard fetched", dashboardResponse{
		StatusCounts: counts,
		DailySeries:  series,
	})
}
