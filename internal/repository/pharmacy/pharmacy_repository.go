package pharmacy

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

	"myPharmacyStore/pkg/metrics"
)

const maxErrorBody = 2048

type PharmacyConfig struct {
	BaseURL string
	Timeout time.Duration
}

// PharmacyRepository talks to the pharmacy backend that owns drugs, orders
// and branch requests.
type PharmacyRepository struct {
	baseURL string
	client  *http.Client
}

func NewPharmacyRepository(cfg PharmacyConfig) *PharmacyRepository {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &PharmacyRepository{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// StatusError is returned when the backend answers outside the 2xx range.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("pharmacy backend returned status %d: %s", e.StatusCode, e.Body)
}

var ErrEmptyResponse = errors.New("pharmacy backend returned no data")

type envelope struct {
	Data json.RawMessage `json:"data"`
}

func (r *PharmacyRepository) do(ctx context.Context, operation, method, path, token string, payload, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveBackendCall(operation, err, time.Since(start))
	}()

	var body io.Reader
	if payload != nil {
		payloadByte, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal json payload: %w", err)
		}
		body = bytes.NewReader(payloadByte)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Add("Accept", "application/json")
	if payload != nil {
		req.Header.Add("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Add("token", token)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return &StatusError{StatusCode: res.StatusCode, Body: string(bodyBytes)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	var env envelope
	if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return ErrEmptyResponse
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to decode %s data: %w", operation, err)
	}

	return nil
}
