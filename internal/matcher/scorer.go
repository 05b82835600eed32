// Package matcher ranks unapplied jobs for a job seeker by resume /
// description similarity. Scoring is delegated to the external embedding
// service; calls fan out under a fixed concurrency limit and results are
// cached in Redis.
package matcher

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"joblink/api/internal/models"
)

const (
	// maxConcurrent bounds in-flight embedding calls per request.
	maxConcurrent = 5
	// scoreTTL keeps cached similarity scores for a day; resumes and
	// descriptions change rarely enough for that to be safe.
	scoreTTL = 24 * time.Hour
	// TopN is how many ranked jobs a recommendation returns.
	TopN = 5
)

// ProviderError reports an embedding-service failure.
type ProviderError struct {
	Message string
	Err     error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return "embedding service: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return "embedding service: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ScoredJob pairs a candidate job with its similarity score.
type ScoredJob struct {
	Job   models.Job `json:"job"`
	Score float64    `json:"score"`
}

// Scorer fans similarity calls out to the embedding service.
type Scorer struct {
	baseURL string
	apiKey  string
	http    *http.Client
	rdb     *redis.Client
}

func NewScorer(baseURL, apiKey string, rdb *redis.Client) *Scorer {
	return &Scorer{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
		rdb:     rdb,
	}
}

// Rank scores every candidate against the resume and returns the top
// matches sorted descending. The whole fan-out shares one deadline.
func (s *Scorer) Rank(ctx context.Context, resume string, candidates []models.Job) ([]ScoredJob, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	scored := make([]ScoredJob, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrent)

	for i, job := range candidates {
		g.Go(func() error {
			score, err := s.score(gctx, resume, job)
			if err != nil {
				return err
			}
			scored[i] = ScoredJob{Job: job, Score: score}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > TopN {
		scored = scored[:TopN]
	}
	return scored, nil
}

// score returns the cached similarity when present, calling the service
// otherwise.
func (s *Scorer) score(ctx context.Context, resume string, job models.Job) (float64, error) {
	key := cacheKey(resume, job)
	if s.rdb != nil {
		if v, err := s.rdb.Get(ctx, key).Result(); err == nil {
			if score, err := strconv.ParseFloat(v, 64); err == nil {
				return score, nil
			}
		}
	}

	score, err := s.call(ctx, resume, job.Description)
	if err != nil {
		return 0, err
	}

	if s.rdb != nil {
		_ = s.rdb.Set(ctx, key, strconv.FormatFloat(score, 'f', -1, 64), scoreTTL).Err()
	}
	return score, nil
}

// cacheKey hashes the resume so a profile edit naturally invalidates
// stale scores.
func cacheKey(resume string, job models.Job) string {
	sum := sha256.Sum256([]byte(resume))
	return "match:" + job.ID.Hex() + ":" + hex.EncodeToString(sum[:8])
}

type similarityRequest struct {
	Text1 string `json:"text1"`
	Text2 string `json:"text2"`
}

type similarityResponse struct {
	Similarity *float64 `json:"similarity"`
}

func (s *Scorer) call(ctx context.Context, resume, description string) (float64, error) {
	body, err := json.Marshal(similarityRequest{Text1: resume, Text2: description})
	if err != nil {
		return 0, &ProviderError{Message: "encoding request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/similarity", bytes.NewReader(body))
	if err != nil {
		return 0, &ProviderError{Message: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return 0, &ProviderError{Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &ProviderError{Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	var out similarityResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, &ProviderError{Message: "malformed response body", Err: err}
	}
	if out.Similarity == nil {
		return 0, &ProviderError{Message: "response missing similarity field"}
	}
	return *out.Similarity, nil
}
