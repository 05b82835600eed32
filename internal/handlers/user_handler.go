package handlers

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"

	"joblink/api/internal/middleware"
	"joblink/api/internal/models"
	"joblink/api/internal/utils"
)

// UserHandler manages account endpoints.
type UserHandler struct {
	users UserStore
}

func NewUserHandler(users UserStore) *UserHandler {
	return &UserHandler{users: users}
}

type signupRequest struct {
	Email     string                   `json:"email"`
	Name      string                   `json:"name"`
	Role      string                   `json:"role"`
	JobSeeker *models.JobSeekerProfile `json:"jobSeeker,omitempty"`
	Employer  *models.EmployerProfile  `json:"employer,omitempty"`
}

// CompleteSignupHandler creates the local User record for a verified
// identity. The role is fixed here and can never change afterwards.
func (h *UserHandler) CompleteSignupHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.SubjectUID(r)
	if !ok {
		utils.Error(w, http.StatusForbidden, "forbidden", "Forbidden")
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	if req.Email == "" {
		utils.Error(w, http.StatusBadRequest, "missing_field", "email is required")
		return
	}
	role, ok := models.ParseRole(req.Role)
	if !ok {
		utils.Error(w, http.StatusBadRequest, "invalid_role", "role must be one of: jobSeeker, employer, admin")
		return
	}

	user := &models.User{
		UID:   uid,
		Email: req.Email,
		Name:  req.Name,
		Role:  role,
	}
	switch role {
	case models.RoleJobSeeker:
		user.JobSeeker = req.JobSeeker
		if user.JobSeeker == nil {
			user.JobSeeker = &models.JobSeekerProfile{}
		}
	case models.RoleEmployer:
		user.Employer = req.Employer
		if user.Employer == nil {
			user.Employer = &models.EmployerProfile{}
		}
	}

	created, err := h.users.Create(r.Context(), user)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	utils.OK(w, http.StatusCreated, "Account created", created)
}

func (h *UserHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	utils.OK(w, http.StatusOK, "Profile fetched", user)
}

type profilePatchRequest struct {
	Name      *string                  `json:"name,omitempty"`
	JobSeeker *models.JobSeekerProfile `json:"jobSeeker,omitempty"`
	Employer  *models.EmployerProfile  `json:"employer,omitempty"`
}

// UpdateProfileHandler merge-patches the caller's profile. Fields for
// the other role are ignored rather than rejected.
func (h *UserHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.users)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}

	var req profilePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}

	patch := bson.M{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if user.Role == models.RoleJobSeeker && req.JobSeeker != nil {
		patch["jobSeeker"] = req.JobSeeker
	}
	if user.Role == models.RoleEmployer && req.Employer != nil {
		patch["employer"] = req.Employer
	}
	if len(patch) == 0 {
		utils.Error(w, http.StatusBadRequest, "empty_patch", "Nothing to update")
		return
	}

	updated, err := h.users.Update(r.Context(), user.UID, patch)
	if err != nil {
		storeError(w, err, "User not found")
		return
	}
	utils.OK(w, http.StatusOK, "Profile updated", updated)
}

func (h *UserHandler) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	uid, ok := middleware.SubjectUID(r)
	if !ok {
		utils.Error(w, http.StatusForbidden, "forbidden", "Forbidden")
		return
	}
	if err := h.users.Delete(r.Context(), uid); err != nil {
		storeError(w, err, "User not found")
		return
	}
	utils.OK(w, http.StatusOK, "Account deleted", nil)
}
