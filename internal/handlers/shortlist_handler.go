package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"joblink/api/internal/models"
	"joblink/api/internal/repositories"
	"joblink/api/internal/utils"
)

// ShortlistHandler manages the per-user saved-jobs list.
type ShortlistHandler struct {
	shortlists ShortlistStore
	jobs       JobStore
	users      UserStore
}

func NewShortlistHandler(shortlists ShortlistStore, jobs JobStore, users UserStore) *ShortlistHandler {
	return &ShortlistHandler{shortlists: shortlists, jobs: jobs, users: users}
}

// GetHandler returns the caller's shortlist with resolved jobs,
// creating an empty one on first read.
func (h *ShortlistHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	list, err := h.shortlists.GetOrCreate(r.Context(), user.ID)
	if err != nil {
		storeError(w, err, "Shortlist not found")
		return
	}

	jobs := make([]models.Job, 0, len(list.JobIDs))
	for _, id := range list.JobIDs {
		job, err := h.jobs.GetByID(r.Context(), id)
		if errors.Is(err, repositories.ErrNotFound) {
			// the job was deleted since it was saved; skip it
			continue
		}
		if err != nil {
			storeError(w, err, "Job not found")
			return
		}
		jobs = append(jobs, *job)
	}
	utils.OK(w, http.StatusOK, "Shortlist fetched", jobs)
}

type shortlistJobRequest struct {
	JobID string `json:"jobId"`
}

func (h *ShortlistHandler) AddJobHandler(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}

	var req shortlistJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
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

	list, err := h.shortlists.AddJob(r.Context(), user.ID, jobID)
	if errors.Is(err, repositories.ErrDuplicate) {
		utils.Error(w, http.StatusBadRequest, "already_shortlisted", "Job already in shortlist")
		return
	}
	if err != nil {
		storeError(w, err, "Shortlist not found")
		return
	}
	utils.OK(w, http.StatusOK, "Job added to shortlist", list)
}

func (h *ShortlistHandler) RemoveJobHandler(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}

	var req shortlistJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	jobID, ok := parseObjectID(w, req.JobID, "job id")
	if !ok {
		return
	}

	list, err := h.shortlists.RemoveJob(r.Context(), user.ID, jobID)
	if err != nil {
		storeError(w, err, "Job is not in the shortlist")
		return
	}
	utils.OK(w, http.StatusOK, "Job removed from shortlist", list)
}
