package ai

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

	"github.com/andresuchdata/retail-inventory/backend-go/internal/config"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/domain"
)

const (
	defaultTimeout  = 5 * time.Second
	maxResponseBody = 32 << 20
)

// ServiceError is any failure talking to the AI service: transport errors,
// timeouts, non-2xx answers and undecodable bodies. It matches
// domain.ErrRemoteUnavailable under errors.Is.
type ServiceError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ai service %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("ai service %s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

func (e *ServiceError) Is(target error) bool { return target == domain.ErrRemoteUnavailable }

// Client calls the external AI service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(cfg config.AIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.ServiceURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL is the configured service root.
func (c *Client) BaseURL() string { return c.baseURL }

type predictRequest struct {
	InventoryData []domain.InventoryRecord `json:"inventory_data"`
}

// remotePrediction is one entry of the service's "predictions" array.
// Pointers tell an absent field from a zero value.
type remotePrediction struct {
	ProductID              string `json:"productId"`
	StockStatus            string `json:"stockStatus"`
	ExpectedDemandIncrease *bool  `json:"expectedDemandIncrease"`
	Recommendation         string `json:"recommendation"`
}

type predictResponse struct {
	Predictions []remotePrediction `json:"predictions"`
	Status      string             `json:"status"`
	Message     string             `json:"message"`
}

func (c *Client) predict(ctx context.Context, records []domain.InventoryRecord) (*predictResponse, error) {
	var out predictResponse
	if err := c.do(ctx, "predict", http.MethodPost, "/predict", predictRequest{InventoryData: records}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Optimize forwards the records with the optimization target and
// constraints, returning the service's JSON object untouched. A nil map
// means the service answered with an empty body.
func (c *Client) Optimize(ctx context.Context, records []domain.InventoryRecord, target string, constraints map[string]interface{}) (map[string]interface{}, error) {
	body := map[string]interface{}{
		"inventory_data":      records,
		"optimization_target": target,
		"constraints":         constraints,
	}
	var out map[string]interface{}
	if err := c.do(ctx, "optimize", http.MethodPost, "/optimize", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health returns the body of GET /health.
func (c *Client) Health(ctx context.Context) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := c.do(ctx, "health", http.MethodGet, "/health", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &ServiceError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ai service %s: %w", op, ctxErr)
		}
		return &ServiceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected response: %s", truncate(string(raw), 200))}
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &ServiceError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var errMalformedPredictions = errors.New("malformed predictions")
