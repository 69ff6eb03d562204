// Package client provides HTTP clients for external collaborators.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/fizzlab/salesintel/internal/domain"
	"github.com/fizzlab/salesintel/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// InsightClient calls the remote model endpoint that turns entity and
// aggregation snapshots into natural-language insights.
type InsightClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewInsightClient creates a new InsightClient.
func NewInsightClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *InsightClient {
	return &InsightClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// Call invokes the model with a JSON snapshot and returns its response.
// The answer text is opaque; the structured fields are validated by the
// caller before anything is persisted.
func (c *InsightClient) Call(ctx context.Context, req *domain.InsightRequest) (*domain.InsightResponse, error) {
	ctx, span := tracer.Start(ctx, "InsightClient.Call")
	defer span.End()
	span.SetAttributes(attribute.String("insight.task", req.Task))

	var insightResp domain.InsightResponse

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(req)
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/v1/insights/generate", c.baseURL)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("model endpoint returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&insightResp)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &insightResp, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, &domain.ErrCircuitOpen{Service: "insight-model"}
		}
		return nil, &domain.ErrExternalService{Service: "insight-model", Err: err}
	}

	return result.(*domain.InsightResponse), nil
}
