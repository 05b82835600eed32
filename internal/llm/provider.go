package llm

import "context"

// Provider is the completion backend used by the resume-parsing gateway.
type Provider interface {
	ParseResume(ctx context.Context, resumeText string, requestID string) (*ParsedResume, error)
	GetProviderName() string
}

// ParsedResume carries the structured output the gateway promises. Raw is
// the validated JSON text from the model.
type ParsedResume struct {
	Raw       string `json:"raw"`
	RequestID string `json:"requestId"`
	Provider  string `json:"provider"`
	Model     string `json:"model"`
}

// represents an error from an LLM provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

// Common error codes
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeRateLimit    = "rate_limit_exceeded"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeInvalidInput = "invalid_input"
	ErrCodeTimeout      = "timeout"
)
