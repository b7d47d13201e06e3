package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"jandoedu/internal/models"
)

// ResultResponse is one per-question answer in a game submission
type ResultResponse struct {
	Question      string `json:"question"`
	StudentAnswer string `json:"studentAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
}

// ResultPayload is one finished game posted to the gateway
type ResultPayload struct {
	Code           string           `json:"code"`
	Game           string           `json:"game"`
	Sheet          string           `json:"sheet,omitempty"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions,omitempty"`
	Responses      []ResultResponse `json:"responses,omitempty"`
	Reward         string           `json:"reward,omitempty"`
}

// ProgressPayload is one step completion posted to the gateway
type ProgressPayload struct {
	Action      string `json:"action"`
	StudentCode string `json:"studentCode"`
	ModuleID    string `json:"moduleId"`
	StepNumber  int    `json:"stepNumber"`
	TotalSteps  int    `json:"totalSteps"`
	StepName    string `json:"stepName,omitempty"`
}

// QuizAck is the gateway's acknowledgement of a saved quiz
type QuizAck struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	Score          int    `json:"score"`
	TotalQuestions int    `json:"totalQuestions"`
	Percentage     int    `json:"percentage"`
}

// Client talks the gateway's query-string protocol. Errors from blocking
// calls are classified into the session sentinel errors so callers can map
// them to user messages.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client for the given endpoint URL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Login looks up a student code. The gateway answers with the literal
// "Invalid", a JSON identity record, or (from older deployments) a bare
// name string.
func (c *Client) Login(ctx context.Context, code string) (*Identity, error) {
	body, err := c.get(ctx, url.Values{"code": {code}})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(string(body))
	if text == models.ResponseInvalid {
		return nil, ErrInvalidCode
	}

	var id Identity
	if err := json.Unmarshal(body, &id); err != nil {
		// Old deployments answer with just the student name
		return &Identity{Name: text, Code: code}, nil
	}
	return &id, nil
}

// Rewards fetches the current rewards string for a code. The gateway may
// answer with JSON or with the bare rewards string.
func (c *Client) Rewards(ctx context.Context, code string) (string, error) {
	body, err := c.get(ctx, url.Values{"rewards": {code}})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(string(body))
	if text == models.ResponseInvalid {
		return "", nil
	}
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		var parsed struct {
			Rewards string `json:"rewards"`
		}
		// A decodable record answers with its rewards field, empty or not;
		// raw JSON must never leak out as a reward string
		if err := json.Unmarshal(body, &parsed); err == nil {
			return parsed.Rewards, nil
		}
	}
	return text, nil
}

// Progress fetches all progress records for a code
func (c *Client) Progress(ctx context.Context, code string) ([]models.ModuleProgress, error) {
	body, err := c.get(ctx, url.Values{"progress": {"true"}, "code": {code}})
	if err != nil {
		return nil, err
	}

	var records []models.ModuleProgress
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("failed to parse progress response: %w", err)
	}
	return records, nil
}

// Modules fetches the active learning modules for a year level
func (c *Client) Modules(ctx context.Context, year string) ([]models.LearningModule, error) {
	body, err := c.get(ctx, url.Values{"modules": {"true"}, "year": {year}})
	if err != nil {
		return nil, err
	}

	var modules []models.LearningModule
	if err := json.Unmarshal(body, &modules); err != nil {
		return nil, fmt.Errorf("failed to parse modules response: %w", err)
	}
	return modules, nil
}

// GameSheets fetches the names of all game sheets
func (c *Client) GameSheets(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, url.Values{"games": {"list"}})
	if err != nil {
		return nil, err
	}

	var sheets []string
	if err := json.Unmarshal(body, &sheets); err != nil {
		return nil, fmt.Errorf("failed to parse sheet list: %w", err)
	}
	return sheets, nil
}

// SubmitResult posts one finished game
func (c *Client) SubmitResult(ctx context.Context, payload ResultPayload) error {
	body, err := c.send(ctx, http.MethodPost, payload)
	if err != nil {
		return err
	}
	if text := strings.TrimSpace(string(body)); text != models.ResponseSuccess {
		return fmt.Errorf("gateway rejected result: %s", text)
	}
	return nil
}

// UpdateProgress posts one step completion
func (c *Client) UpdateProgress(ctx context.Context, payload ProgressPayload) error {
	payload.Action = "updateProgress"
	body, err := c.send(ctx, http.MethodPost, payload)
	if err != nil {
		return err
	}
	if text := strings.TrimSpace(string(body)); text != models.ResponseProgressUpdated {
		return fmt.Errorf("gateway rejected progress update: %s", text)
	}
	return nil
}

// SaveQuiz saves a quiz result through the GET branch
func (c *Client) SaveQuiz(ctx context.Context, code, moduleID string, score, totalQuestions int, responses []ResultResponse) (*QuizAck, error) {
	q := url.Values{
		"action":         {"saveQuiz"},
		"code":           {code},
		"moduleId":       {moduleID},
		"score":          {strconv.Itoa(score)},
		"totalQuestions": {strconv.Itoa(totalQuestions)},
	}
	if len(responses) > 0 {
		encoded, err := json.Marshal(responses)
		if err != nil {
			return nil, fmt.Errorf("failed to encode responses: %w", err)
		}
		q.Set("responses", string(encoded))
	}

	body, err := c.get(ctx, q)
	if err != nil {
		return nil, err
	}

	var ack QuizAck
	if err := json.Unmarshal(body, &ack); err != nil {
		return nil, fmt.Errorf("failed to parse quiz response: %w", err)
	}
	return &ack, nil
}

// UpdateScore patches one score cell via the PUT endpoint
func (c *Client) UpdateScore(ctx context.Context, sheet string, row int, newScore string) error {
	payload := struct {
		Sheet    string `json:"sheet"`
		Row      int    `json:"row"`
		NewScore string `json:"newScore"`
	}{sheet, row, newScore}

	body, err := c.send(ctx, http.MethodPut, payload)
	if err != nil {
		return err
	}
	if text := strings.TrimSpace(string(body)); text != models.ResponseUpdated {
		return fmt.Errorf("gateway rejected score update: %s", text)
	}
	return nil
}

func (c *Client) get(ctx context.Context, q url.Values) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req)
}

func (c *Client) send(ctx context.Context, method string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(req.Context(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrServer, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError(req.Context(), err)
	}
	return body, nil
}

func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
