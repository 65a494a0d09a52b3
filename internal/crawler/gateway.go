package crawler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/guanghao479/golden/internal/config"
	"github.com/guanghao479/golden/internal/domain"
)

// JobPhase is the provider-reported state of an asynchronous extraction job.
type JobPhase string

const (
	JobPhaseProcessing JobPhase = "processing"
	JobPhaseCompleted  JobPhase = "completed"
	JobPhaseFailed     JobPhase = "failed"
)

// JobState is one poll result for an asynchronous extraction job. Records is
// populated only when Phase is completed; Reason only when Phase is failed.
type JobState struct {
	Phase   JobPhase
	Records []map[string]interface{}
	Reason  string
}

// Gateway wraps calls to the external structured-content-extraction service.
// It holds no state between calls, applies a bounded timeout per call, and
// never retries; retry policy belongs entirely to the caller. Every outcome
// falls into exactly one of four classes: TransportError (no response),
// StatusError (non-2xx), ProviderError (success=false in the body), or a
// payload.
type Gateway struct {
	client  *resty.Client
	baseURL string
	apiKey  string
}

// NewGateway creates a gateway from the firecrawl section of the config.
// Parameters:
//   - cfg: extraction service credentials, endpoint, and timeout.
// Returns:
//   - *Gateway: initialized gateway client.
func NewGateway(cfg *config.FirecrawlConfig) *Gateway {
	client := resty.New()
	client.SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client.SetTimeout(timeout)

	return &Gateway{
		client:  client,
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// Configured reports whether the extraction credential is present. Callers
// must short-circuit to a failed state without calling the service when this
// is false.
func (g *Gateway) Configured() bool {
	return g.apiKey != ""
}

type extractRequest struct {
	URL    string      `json:"url"`
	Schema interface{} `json:"schema"`
}

type extractResponse struct {
	Success bool            `json:"success"`
	Error   string          `json:"error"`
	ID      string          `json:"id"`
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
}

// Extract submits a page synchronously and returns the raw extracted records
// for the given category.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - url: page to extract from.
//   - crawlType: category schema to request.
// Returns:
//   - []map[string]interface{}: loosely-typed records, one map per item.
//   - error: TransportError, StatusError, ProviderError, or ErrNotConfigured.
func (g *Gateway) Extract(ctx context.Context, url string, crawlType domain.CrawlType) ([]map[string]interface{}, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := g.post(ctx, g.baseURL+"/extract", extractRequest{
		URL:    url,
		Schema: schemaFor(crawlType),
	})
	if err != nil {
		return nil, err
	}

	return decodeRecords(body.Data, crawlType)
}

// StartExtract submits a page asynchronously and returns the provider-assigned
// job ID. The caller is responsible for persisting the handle and polling.
func (g *Gateway) StartExtract(ctx context.Context, url string, crawlType domain.CrawlType) (string, error) {
	if !g.Configured() {
		return "", ErrNotConfigured
	}

	body, err := g.post(ctx, g.baseURL+"/extract", extractRequest{
		URL:    url,
		Schema: schemaFor(crawlType),
	})
	if err != nil {
		return "", err
	}

	if body.ID == "" {
		return "", &ProviderError{Reason: "response carried no job id"}
	}
	return body.ID, nil
}

// PollExtract fetches the current state of an asynchronous extraction job.
// A processing job yields JobPhaseProcessing with no records or reason.
func (g *Gateway) PollExtract(ctx context.Context, externalJobID string, crawlType domain.CrawlType) (*JobState, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	resp, err := g.client.R().
		SetContext(ctx).
		Get(g.baseURL + "/extract/" + externalJobID)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	var body extractResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &ProviderError{Reason: fmt.Sprintf("malformed response body: %v", err)}
	}

	switch body.Status {
	case "processing", "pending":
		return &JobState{Phase: JobPhaseProcessing}, nil
	case "completed":
		records, err := decodeRecords(body.Data, crawlType)
		if err != nil {
			return nil, err
		}
		return &JobState{Phase: JobPhaseCompleted, Records: records}, nil
	case "failed":
		reason := body.Error
		if reason == "" {
			reason = "provider reported failure without a reason"
		}
		return &JobState{Phase: JobPhaseFailed, Reason: reason}, nil
	default:
		if !body.Success {
			return &JobState{Phase: JobPhaseFailed, Reason: body.Error}, nil
		}
		return nil, &ProviderError{Reason: fmt.Sprintf("unknown job status %q", body.Status)}
	}
}

// post issues one extraction request and applies the outcome classification.
func (g *Gateway) post(ctx context.Context, url string, payload extractRequest) (*extractResponse, error) {
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post(url)
	if err != nil {
		// resty surfaces timeouts and connection failures the same way,
		// which matches the transport-failure class.
		return nil, &TransportError{Err: err}
	}

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	var body extractResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, &ProviderError{Reason: fmt.Sprintf("malformed response body: %v", err)}
	}

	if !body.Success {
		reason := body.Error
		if reason == "" {
			reason = "provider reported failure without a reason"
		}
		return nil, &ProviderError{Reason: reason}
	}

	return &body, nil
}

// decodeRecords pulls the category's record list out of the extraction data
// object. A payload without the category key yields an empty list.
func decodeRecords(data json.RawMessage, crawlType domain.CrawlType) ([]map[string]interface{}, error) {
	if len(data) == 0 {
		return []map[string]interface{}{}, nil
	}

	var payload map[string][]map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &ProviderError{Reason: fmt.Sprintf("malformed extraction payload: %v", err)}
	}

	records := payload[string(crawlType)]
	if records == nil {
		records = []map[string]interface{}{}
	}
	return records, nil
}

// schemaFor builds the JSON schema sent to the extraction service for the
// given category.
func schemaFor(crawlType domain.CrawlType) map[string]interface{} {
	if crawlType == domain.CrawlTypePlaces {
		return objectSchema("places", map[string]interface{}{
			"name":            map[string]string{"type": "string"},
			"description":     map[string]string{"type": "string"},
			"category":        map[string]string{"type": "string"},
			"address":         map[string]string{"type": "string"},
			"website":         map[string]string{"type": "string"},
			"family_friendly": map[string]string{"type": "boolean"},
			"tags":            map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
		})
	}
	return objectSchema("events", map[string]interface{}{
		"title":         map[string]string{"type": "string"},
		"description":   map[string]string{"type": "string"},
		"start_time":    map[string]string{"type": "string"},
		"end_time":      map[string]string{"type": "string"},
		"location_name": map[string]string{"type": "string"},
		"address":       map[string]string{"type": "string"},
		"website":       map[string]string{"type": "string"},
		"tags":          map[string]interface{}{"type": "array", "items": map[string]string{"type": "string"}},
	})
}

func objectSchema(key string, properties map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			key: map[string]interface{}{
				"type": "array",
				"items": map[string]interface{}{
					"type":       "object",
					"properties": properties,
				},
			},
		},
	}
}
