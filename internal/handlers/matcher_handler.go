package handlers

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"joblink/api/internal/matcher"
	"joblink/api/internal/models"
	"joblink/api/internal/utils"
)

// candidateLimit caps how many jobs are scored per recommendation.
const candidateLimit = 30

// JobRanker scores candidates against a resume.
type JobRanker interface {
	Rank(ctx context.Context, resume string, candidates []models.Job) ([]matcher.ScoredJob, error)
}

// MatcherHandler serves job recommendations for job seekers.
type MatcherHandler struct {
	users        UserStore
	jobs         JobStore
	applications ApplicationStore
	ranker       JobRanker
}

func NewMatcherHandler(users UserStore, jobs JobStore, applications ApplicationStore, ranker JobRanker) *MatcherHandler {
	return &MatcherHandler{users: users, jobs: jobs, applications: applications, ranker: ranker}
}

// RecommendHandler ranks unapplied jobs against the caller's resume and
// returns the top matches. Jobs already applied to and any ids in the
// exclude parameter are left out of the candidate set.
func (h *MatcherHandler) RecommendHandler(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "Job seeker not found")
		return
	}
	if user.JobSeeker == nil || strings.TrimSpace(user.JobSeeker.Resume) == "" {
		utils.Error(w, http.StatusBadRequest, "missing_resume", "Add a resume to your profile to get recommendations")
		return
	}

	exclude := make(map[primitive.ObjectID]bool)
	for _, raw := range splitParam(r.URL.Query()["exclude"]) {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			utils.Error(w, http.StatusBadRequest, "invalid_id", "Invalid exclude id")
			return
		}
		exclude[id] = true
	}

	applied, err := h.applications.ListByApplicant(r.Context(), user.ID)
	if err != nil {
		storeError(w, err, "Applications not found")
		return
	}
	for _, app := range applied {
		exclude[app.JobID] = true
	}

	excludeIDs := make([]primitive.ObjectID, 0, len(exclude))
	for id := range exclude {
		excludeIDs = append(excludeIDs, id)
	}

	candidates, err := h.jobs.ListCandidates(r.Context(), excludeIDs, candidateLimit)
	if err != nil {
		storeError(w, err, "Jobs not found")
		return
	}

	ranked, err := h.ranker.Rank(r.Context(), user.JobSeeker.Resume, candidates)
	if err != nil {
		utils.Error(w, http.StatusBadGateway, "matcher_error", "Similarity service failed")
		return
	}
	utils.OK(w, http.StatusOK, "Recommendations fetched", ranked)
}
