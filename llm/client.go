package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quizforge/apierr"
	"quizforge/logger"
)

// Question kinds understood by the feedback endpoint.
const (
	KindDescriptive = 1
	KindNumerical   = 2
)

// GenerateRequest is the question-generation call contract.
type GenerateRequest struct {
	PDFURLs      []string `json:"pdf_urls"`
	FolderName   string   `json:"folder_name,omitempty"`
	UserID       string   `json:"user_id,omitempty"`
	QuestionType string   `json:"question_type"`
	EasyCount    int      `json:"easy_questions"`
	MediumCount  int      `json:"medium_questions"`
	HardCount    int      `json:"hard_questions"`
}

// GeneratedQuestion mirrors the wire shape of the generation service.
type GeneratedQuestion struct {
	Question    string   `json:"Questions"`
	Answer      string   `json:"Answer"`
	Explanation string   `json:"Explanation"`
	Options     []string `json:"Options,omitempty"`
	Difficulty  string   `json:"Difficulty"`
}

// GenerateResponse keeps Questions as a pointer so an absent field can be
// told apart from an empty list.
type GenerateResponse struct {
	Questions *[]GeneratedQuestion `json:"questions"`
}

type FeedbackRequest struct {
	Question      string `json:"question"`
	CorrectAnswer string `json:"correct_answer"`
	UserAnswer    string `json:"user_answer"`
	QuestionKind  int    `json:"question_type"`
	Difficulty    string `json:"difficulty"`
}

type FeedbackResponse struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Client is the external generation/judging service surface used by the
// services layer. Tests substitute a fake.
type Client interface {
	GenerateQuestions(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	ScoreAnswer(ctx context.Context, req FeedbackRequest) (*FeedbackResponse, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     *logger.Logger
}

func NewHTTPClient(baseURL string, log *logger.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Minute},
		log:     log,
	}
}

func (c *HTTPClient) GenerateQuestions(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	var resp GenerateResponse
	if err := c.post(ctx, "/create-quiz", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ScoreAnswer(ctx context.Context, req FeedbackRequest) (*FeedbackResponse, error) {
	var resp FeedbackResponse
	if err := c.post(ctx, "/feedback", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// errorBody is the shape the service uses for error responses.
type errorBody struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}

func (c *HTTPClient) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return apierr.Dependency(fmt.Errorf("encode request for %s: %w", path, err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return apierr.Dependency(fmt.Errorf("build request for %s: %w", path, err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return apierr.Dependency(fmt.Errorf("call %s: %w", path, err))
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return apierr.Dependency(fmt.Errorf("read response from %s: %w", path, err))
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Detail
		}
		if msg == "" {
			msg = http.StatusText(httpResp.StatusCode)
		}
		c.log.Error("llm service returned error", "path", path, "status", httpResp.StatusCode, "message", msg)
		return apierr.Dependency(fmt.Errorf("llm service %s: status %d: %s", path, httpResp.StatusCode, msg))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return apierr.MalformedResponse(fmt.Errorf("decode response from %s: %w", path, err))
	}
	return nil
}
