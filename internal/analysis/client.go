// Package analysis provides connectivity to the document analysis service.
// Uploaded project documents are sent there for classification and
// summarization; the service is optional and the client degrades to nil
// when it is not configured.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/noscite/crm-api/internal/config"
	"github.com/noscite/crm-api/internal/domain"
	"go.uber.org/zap"
)

const defaultHealthCheckTimeout = 5 * time.Second

// Classification is the analysis service's verdict on a document
type Classification struct {
	Category string `json:"category"`
	Summary  string `json:"summary"`
}

// HealthStatus represents the health check result for the analysis service
type HealthStatus struct {
	Status  string        `json:"status"`
	Latency time.Duration `json:"latency_ms"`
	Error   string        `json:"error,omitempty"`
}

// Client calls the document analysis HTTP API.
type Client struct {
	httpClient *http.Client
	config     *config.AnalysisConfig
	logger     *zap.Logger
}

// NewClient creates a new analysis client with the given configuration.
// Returns nil if the analysis service is not enabled or not configured.
func NewClient(cfg *config.AnalysisConfig, logger *zap.Logger) *Client {
	if cfg == nil || !cfg.Enabled {
		logger.Info("Document analysis service disabled")
		return nil
	}
	if cfg.BaseURL == "" {
		logger.Warn("Document analysis enabled but base URL missing, skipping")
		return nil
	}

	logger.Info("Initializing document analysis client",
		zap.String("base_url", cfg.BaseURL),
		zap.Int("request_timeout_seconds", cfg.RequestTimeout),
	)

	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeoutDuration()},
		config:     cfg,
		logger:     logger,
	}
}

// IsEnabled returns true if the client is initialized and ready for requests.
func (c *Client) IsEnabled() bool {
	return c != nil && c.httpClient != nil
}

// Classify submits a document for classification. The content reader is
// streamed as multipart form data.
func (c *Client) Classify(ctx context.Context, filename, contentType string, content io.Reader) (*Classification, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("analysis client not initialized")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read document content: %w", err)
	}
	if err := writer.WriteField("contentType", contentType); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/classify", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.config.APIKey != "" {
		req.Header.Set("x-api-key", c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Document analysis request failed",
			zap.String("filename", filename),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Document analysis returned non-OK status",
			zap.String("filename", filename),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("analysis service returned status %d", resp.StatusCode)
	}

	var result Classification
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}

	c.logger.Debug("Document classified",
		zap.String("filename", filename),
		zap.String("category", result.Category),
		zap.Duration("duration", time.Since(start)),
	)

	return &result, nil
}

// Analyze asks the analysis service to extract a project skeleton (name,
// task tree, milestones) from a planning document. Unlike Classify this is
// never best-effort: callers surface the failure instead of degrading.
func (c *Client) Analyze(ctx context.Context, filename, contentType string, content io.Reader, hint string) (*domain.ProjectSkeleton, error) {
	if !c.IsEnabled() {
		return nil, fmt.Errorf("analysis client not initialized")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("failed to read document content: %w", err)
	}
	if err := writer.WriteField("contentType", contentType); err != nil {
		return nil, fmt.Errorf("failed to build multipart request: %w", err)
	}
	if hint != "" {
		if err := writer.WriteField("hint", hint); err != nil {
			return nil, fmt.Errorf("failed to build multipart request: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.config.APIKey != "" {
		req.Header.Set("x-api-key", c.config.APIKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Document analysis request failed",
			zap.String("filename", filename),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("Document analysis returned non-OK status",
			zap.String("filename", filename),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("analysis service returned status %d", resp.StatusCode)
	}

	var skeleton domain.ProjectSkeleton
	if err := json.NewDecoder(resp.Body).Decode(&skeleton); err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}
	if skeleton.Name == "" {
		return nil, fmt.Errorf("analysis service returned a skeleton without a name")
	}

	c.logger.Debug("Document analyzed",
		zap.String("filename", filename),
		zap.Int("tasks", len(skeleton.Tasks)),
		zap.Int("milestones", len(skeleton.Milestones)),
		zap.Duration("duration", time.Since(start)),
	)

	return &skeleton, nil
}

// HealthCheck pings the analysis service health endpoint.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	if !c.IsEnabled() {
		return &HealthStatus{Status: "disabled"}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultHealthCheckTimeout)
		defer cancel()
	}

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/healthz", nil)
	if err != nil {
		return &HealthStatus{Status: "unhealthy", Error: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	status := &HealthStatus{Latency: latency}

	if err != nil {
		status.Status = "unhealthy"
		status.Error = err.Error()
		return status
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		status.Status = "unhealthy"
		status.Error = fmt.Sprintf("status %d", resp.StatusCode)
		return status
	}

	status.Status = "healthy"
	return status
}
