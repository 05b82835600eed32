package models

// Envelope is the uniform response body for every endpoint.
// Errors carry a machine-readable Code alongside the human Message.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// PaginationParams is a validated page request: Page starts at 1.
type PaginationParams struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// PagedJobs is the job-listing payload with pagination metadata.
type PagedJobs struct {
	Total      int   `json:"total"`
	Items      []Job `json:"items"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// CalculatePaginationMeta derives page metadata from a result total.
func CalculatePaginationMeta(page, limit, total int) (totalPages int, hasNext, hasPrev bool) {
	if limit <= 0 {
		limit = 1 // avoid division by zero
	}
	totalPages = (total + limit - 1) / limit // ceiling division
	hasNext = page < totalPages
	hasPrev = page > 1
	return
}
