package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"joblink/api/internal/llm"
	"joblink/api/internal/utils"
)

// ResumeHandler forwards resume text to the completion provider and
// relays the validated structured output.
type ResumeHandler struct {
	provider llm.Provider
}

func NewResumeHandler(provider llm.Provider) *ResumeHandler {
	return &ResumeHandler{provider: provider}
}

type parseResumeRequest struct {
	Text string `json:"text"`
}

func (h *ResumeHandler) ParseHandler(w http.ResponseWriter, r *http.Request) {
	var req parseResumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "invalid_request", "Invalid request payload")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		utils.Error(w, http.StatusBadRequest, "missing_field", "text is required")
		return
	}

	requestID := uuid.NewString()
	parsed, err := h.provider.ParseResume(r.Context(), req.Text, requestID)
	if err != nil {
		utils.Error(w, http.StatusBadGateway, "completion_error", "Resume parsing service failed")
		return
	}

	// forward the validated JSON as-is inside the envelope
	utils.OK(w, http.StatusOK, "Resume parsed", map[string]any{
		"requestId": parsed.RequestID,
		"provider":  parsed.Provider,
		"model":     parsed.Model,
		"resume":    json.RawMessage(parsed.Raw),
	})
}
