// Package client is the learner side of an attempt: an HTTP client for the
// learner routes, a countdown that triggers the forced submit, and a Session
// that ties both to the local answer map.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"assessment_backend/internal/apperr"
	"assessment_backend/internal/model"
)

// API is the learner subset of the assessment service.
type API interface {
	StartAttempt(ctx context.Context, assessmentID uint) (*model.StartAttemptResult, error)
	GetAttempt(ctx context.Context, attemptID string) (*model.LearnerAttempt, error)
	SaveDraft(ctx context.Context, attemptID string, answers model.Answers) error
	// SubmitAttempt returns the stored attempt together with
	// apperr.ErrAlreadySubmitted when the attempt was already finished.
	SubmitAttempt(ctx context.Context, attemptID string, req model.SubmitAttemptRequest) (*model.LearnerAttempt, error)
}

type Config struct {
	BaseURL string
	Token   string
	// Timeout bounds every single request.
	Timeout time.Duration
}

type httpAPI struct {
	cfg        Config
	httpClient *http.Client
}

func NewHTTPAPI(cfg Config, httpClient *http.Client) (API, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("client: base url required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &httpAPI{cfg: cfg, httpClient: httpClient}, nil
}

// envelope mirrors util.Response with the payload left raw.
type envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
	Data    json.RawMessage   `json:"data"`
}

func (c *httpAPI) StartAttempt(ctx context.Context, assessmentID uint) (*model.StartAttemptResult, error) {
	var out model.StartAttemptResult
	path := fmt.Sprintf("/api/assessments/%d/attempts", assessmentID)
	if err := c.do(ctx, http.MethodPost, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpAPI) GetAttempt(ctx context.Context, attemptID string) (*model.LearnerAttempt, error) {
	var out model.LearnerAttempt
	if err := c.do(ctx, http.MethodGet, "/api/attempts/"+attemptID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpAPI) SaveDraft(ctx context.Context, attemptID string, answers model.Answers) error {
	return c.do(ctx, http.MethodPut, "/api/attempts/"+attemptID+"/answers", model.SaveDraftRequest{Answers: answers}, nil)
}

func (c *httpAPI) SubmitAttempt(ctx context.Context, attemptID string, req model.SubmitAttemptRequest) (*model.LearnerAttempt, error) {
	var out model.LearnerAttempt
	err := c.do(ctx, http.MethodPost, "/api/attempts/"+attemptID+"/submit", req, &out)
	if err != nil && !errors.Is(err, apperr.ErrAlreadySubmitted) {
		return nil, err
	}
	if out.ID == "" {
		return nil, err
	}
	return &out, err
}

// do sends one request. Transport failures become ErrNetwork or ErrTimeout;
// error envelopes become *apperr.Error. On a conflict that carries data the
// payload is decoded into out as well.
func (c *httpAPI) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(ctx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(ctx, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return apperr.FromCode(resp.StatusCode, "", strings.TrimSpace(string(raw)))
		}
		return fmt.Errorf("%w: malformed response: %v", apperr.ErrNetwork, err)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("%w: malformed payload: %v", apperr.ErrNetwork, err)
		}
	}

	if resp.StatusCode >= 400 {
		e := apperr.FromCode(resp.StatusCode, env.Error, env.Message)
		e.Details = env.Details
		return e
	}
	return nil
}

func transportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", apperr.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", apperr.ErrNetwork, err)
}
