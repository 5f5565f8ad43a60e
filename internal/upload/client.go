package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Question is one entry of a quiz-content file.
type Question struct {
	Question string   `json:"question"`
	Category string   `json:"category"`
	Options  []string `json:"options"`
	Answers  []int    `json:"answers"`
}

// ParseQuizFile deserializes and sanity-checks a quiz-content file before
// it is handed to the upload service. The authoritative validation lives
// server-side; this catches the obvious problems early.
func ParseQuizFile(data []byte) ([]Question, error) {
	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("deserialize quiz file: %w", err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("quiz file contains no questions")
	}
	for i, q := range questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("question %d: empty question text", i)
		}
		if len(q.Options) < 2 {
			return nil, fmt.Errorf("question %d: needs at least two options", i)
		}
		if len(q.Answers) == 0 {
			return nil, fmt.Errorf("question %d: no answers marked", i)
		}
		for _, a := range q.Answers {
			if a < 0 || a >= len(q.Options) {
				return nil, fmt.Errorf("question %d: answer index %d out of range", i, a)
			}
		}
	}
	return questions, nil
}

// ValidationError carries the upload service's rejection message. The
// client surfaces the string as-is and never retries.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Client uploads quiz-content files to the external validation pipeline.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger
}

// NewClient creates an upload client for the service at baseURL.
func NewClient(baseURL string, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// UploadQuiz submits a quiz file under the host credential. A rejected
// file comes back as a *ValidationError holding the service's message.
func (c *Client) UploadQuiz(ctx context.Context, filename string, content io.Reader, credential string) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("build upload form: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("copy quiz file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("finalize upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload/quiz", &body)
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn().Int("status", resp.StatusCode).Msg("quiz upload rejected")
		return &ValidationError{Message: strings.TrimSpace(string(msg))}
	}
	return nil
}
