package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"joblink/api/internal/models"
	"joblink/api/internal/repositories"
	"joblink/api/internal/sandbox"
	"joblink/api/internal/utils"
)

// SandboxRunner is the slice of the sandbox client the handler needs.
type SandboxRunner interface {
	CreateRun(ctx context.Context, source, language, input string) (*sandbox.Run, error)
	GetStatus(ctx context.Context, runID string) (*sandbox.Run, error)
}

// AssessmentHandler manages coding assessments and submissions.
type AssessmentHandler struct {
	assessments  AssessmentStore
	applications ApplicationStore
	jobs         JobStore
	users        UserStore
	runner       SandboxRunner
}

func NewAssessmentHandler(assessments AssessmentStore, applications ApplicationStore, jobs JobStore, users UserStore, runner SandboxRunner) *AssessmentHandler {
	return &AssessmentHandler{
		assessments:  assessments,
		applications: applications,
		jobs:         jobs,
		users:        users,
		runner:       runner,
	}
}

type sendCodeRequest struct {
	SourceCode string `json:"sourceCode"`
	Language   string `json:"language"`
	Input      string `json:"input"`
}

// SendHandler relays source code to the sandbox and returns the run.
// Scoring still happens on the caller's side from the run output.
func (h *AssessmentHandler) SendHandler(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	if req.SourceCode == "" {
		utils.Error(w, http.StatusBadRequest, "missing_field", "sourceCode is required")
		return
	}
	if _, ok := models.ParseLanguage(req.Language); !ok {
		utils.Error(w, http.StatusBadRequest, "invalid_language", "language must be one of: python, cpp, javascript")
		return
	}

	run, err := h.runner.CreateRun(r.Context(), req.SourceCode, req.Language, req.Input)
	if err != nil {
		utils.Error(w, http.StatusBadGateway, "sandbox_error", "Code execution service failed")
		return
	}
	utils.OK(w, http.StatusOK, "Run created", run)
}

func (h *AssessmentHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("runId")
	if runID == "" {
		utils.Error(w, http.StatusBadRequest, "missing_field", "runId is required")
		return
	}
	run, err := h.runner.GetStatus(r.Context(), runID)
	if err != nil {
		utils.Error(w, http.StatusBadGateway, "sandbox_error", "Code execution service failed")
		return
	}
	utils.OK(w, http.StatusOK, "Run status fetched", run)
}

// taskAccess loads the application, verifies the caller owns it, and
// verifies the assessment belongs to the application's job.
func (h *AssessmentHandler) taskAccess(w http.ResponseWriter, r *http.Request, rawAppID, rawTaskID string) (*models.Application, *models.CodeAssessment, bool) {
	appID, ok := parseObjectID(w, rawAppID, "application id")
	if !ok {
		return nil, nil, false
	}
	taskID, ok := parseObjectID(w, rawTaskID, "assessment id")
	if !ok {
		return nil, nil, false
	}
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return nil, nil, false
	}
	app, err := h.applications.GetByID(r.Context(), appID)
	if err != nil {
		storeError(w, err, "Application not found")
		return nil, nil, false
	}
	if app.ApplicantID != user.ID {
		utils.Error(w, http.StatusForbidden, "forbidden", "Not your application")
		return nil, nil, false
	}
	job, err := h.jobs.GetByID(r.Context(), app.JobID)
	if err != nil {
		storeError(w, err, "Job not found")
		return nil, nil, false
	}
	listed := false
	for _, id := range job.Assessments {
		if id == taskID {
			listed = true
			break
		}
	}
	if !listed {
		utils.Error(w, http.StatusNotFound, "not_found", "Assessment is not part of this job")
		return nil, nil, false
	}
	task, err := h.assessments.GetByID(r.Context(), taskID)
	if err != nil {
		storeError(w, err, "Assessment not found")
		return nil, nil, false
	}
	return app, task, true
}

type taskResponse struct {
	Assessment *models.CodeAssessment `json:"assessment"`
	Submission *models.CodeSubmission `json:"submission,omitempty"`
}

func (h *AssessmentHandler) GetTaskHandler(w http.ResponseWriter, r *http.Request) {
	app, task, ok := h.taskAccess(w, r, chi.URLParam(r, "applicationId"), chi.URLParam(r, "taskId"))
	if !ok {
		return
	}

	sub, err := h.assessments.GetSubmission(r.Context(), app.ID, task.ID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		storeError(w, err, "Submission not found")
		return
	}
	utils.OK(w, http.StatusOK, "Task fetched", taskResponse{Assessment: task, Submission: sub})
}

type taskStatusEntry struct {
	Assessment models.CodeAssessment `json:"assessment"`
	Status     models.TaskStatus     `json:"status"`
	Score      int                   `json:"score"`
	MaxScore   int                   `json:"maxScore"`
}

// GetTaskStatusesHandler reports one derived status per assessment the
// application's job requires.
func (h *AssessmentHandler) GetTaskStatusesHandler(w http.ResponseWriter, r *http.Request) {
	appID, ok := parseObjectID(w, chi.URLParam(r, "applicationId"), "application id")
	if !ok {
		return
	}
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	app, err := h.applications.GetByID(r.Context(), appID)
	if err != nil {
		storeError(w, err, "Application not found")
		return
	}
	if app.ApplicantID != user.ID {
		utils.Error(w, http.StatusForbidden, "forbidden", "Not your application")
		return
	}
	job, err := h.jobs.GetByID(r.Context(), app.JobID)
	if err != nil {
		storeError(w, err, "Job not found")
		return
	}
	tasks, err := h.assessments.ListByIDs(r.Context(), job.Assessments)
	if err != nil {
		storeError(w, err, "Assessments not found")
		return
	}

	entries := make([]taskStatusEntry, 0, len(tasks))
	for _, task := range tasks {
		sub, err := h.assessments.GetSubmission(r.Context(), app.ID, task.ID)
		if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			storeError(w, err, "Submission not found")
			return
		}
		entry := taskStatusEntry{
			Assessment: task,
			MaxScore:   len(task.TestCases),
			Status:     models.DeriveTaskStatus(sub, len(task.TestCases)),
		}
		if sub != nil {
			entry.Score = sub.Score
		}
		entries = append(entries, entry)
	}
	utils.OK(w, http.StatusOK, "Task statuses fetched", entries)
}

type submitSolutionRequest struct {
	ApplicationID string `json:"applicationId"`
	AssessmentID  string `json:"assessmentId"`
	SolutionCode  string `json:"solutionCode"`
	Language      string `json:"language"`
	TestsPassed   int    `json:"testsPassed"`
}

// SubmitSolutionHandler records a solution, keeping whichever attempt
// scored highest for the (application, assessment) pair.
func (h *AssessmentHandler) SubmitSolutionHandler(w http.ResponseWriter, r *http.Request) {
	var req submitSolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	lang, ok := models.ParseLanguage(req.Language)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "invalid_language", "language must be one of: python, cpp, javascript")
		return
	}
	if req.TestsPassed < 0 {
		utils.Error(w, http.StatusBadRequest, "invalid_score", "testsPassed cannot be negative")
		return
	}
	app, task, ok := h.taskAccess(w, r, req.ApplicationID, req.AssessmentID)
	if !ok {
		return
	}

	stored, kept, err := h.assessments.UpsertSubmission(r.Context(), &models.CodeSubmission{
		ApplicationID: app.ID,
		AssessmentID:  task.ID,
		SolutionCode:  req.SolutionCode,
		Language:      lang,
		Score:         req.TestsPassed,
	})
	if err != nil {
		storeError(w, err, "Submission not found")
		return
	}

	if !kept {
		utils.OK(w, http.StatusOK,
			fmt.Sprintf("Not saved, highest score: %d", stored.Score), stored)
		return
	}
	utils.OK(w, http.StatusOK, "Submission saved", stored)
}

type createAssessmentRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Difficulty  string            `json:"difficulty"`
	TestCases   []models.TestCase `json:"testCases"`
}

// CreateAssessmentHandler inserts a new assessment. Routing restricts
// this to employers and admins.
func (h *AssessmentHandler) CreateAssessmentHandler(w http.ResponseWriter, r *http.Request) {
	var req createAssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	if req.Title == "" || req.Description == "" {
		utils.Error(w, http.StatusBadRequest, "missing_fields", "title and description are required")
		return
	}
	difficulty, ok := models.ParseDifficulty(req.Difficulty)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "invalid_difficulty", "difficulty must be one of: easy, medium, hard")
		return
	}

	created, err := h.assessments.Create(r.Context(), &models.CodeAssessment{
		Title:       req.Title,
		Description: req.Description,
		Difficulty:  difficulty,
		TestCases:   req.TestCases,
	})
	if err != nil {
		storeError(w, err, "Assessment not found")
		return
	}
	utils.OK(w, http.StatusCreated, "Assessment created", created)
}

func (h *AssessmentHandler) ListAssessmentsHandler(w http.ResponseWriter, r *http.Request) {
	assessments, err := h.assessments.List(r.Context())
	if err != nil {
		storeError(w, err, "Assessments not found")
		return
	}
	utils.OK(w, http.StatusOK, "Assessments fetched", assessments)
}
