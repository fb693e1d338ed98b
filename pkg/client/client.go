// Package client provides a Go API for driving a herdsim server: a fluent
// builder for run configurations and an HTTP client for the run lifecycle.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/daniacca/herdsim/internal/herd"
)

// RunBuilder provides a fluent API for building run configurations.
type RunBuilder struct {
	cfg herd.RunConfig
}

// NewRun creates a run builder with the given grid dimensions.
func NewRun(width, height int) *RunBuilder {
	return &RunBuilder{cfg: herd.RunConfig{Width: width, Height: height}}
}

// Infection sets the per-contact infection probability.
func (rb *RunBuilder) Infection(p float64) *RunBuilder {
	rb.cfg.InfectionProbability = p
	return rb
}

// Duration sets the infectious duration in ticks.
func (rb *RunBuilder) Duration(ticks int) *RunBuilder {
	rb.cfg.InfectiousDuration = ticks
	return rb
}

// Mortality sets the probability of death when the infection expires.
func (rb *RunBuilder) Mortality(p float64) *RunBuilder {
	rb.cfg.MortalityProbability = p
	return rb
}

// Vaccinated sets the initial vaccination coverage.
func (rb *RunBuilder) Vaccinated(fraction float64) *RunBuilder {
	rb.cfg.VaccinatedFraction = fraction
	return rb
}

// Neighborhood sets the contact connectivity: "moore" or "von-neumann".
func (rb *RunBuilder) Neighborhood(name string) *RunBuilder {
	rb.cfg.Neighborhood = name
	return rb
}

// Seed fixes the random seed for a reproducible run.
func (rb *RunBuilder) Seed(seed int64) *RunBuilder {
	rb.cfg.Seed = seed
	return rb
}

// Build returns the run configuration.
func (rb *RunBuilder) Build() herd.RunConfig {
	return rb.cfg
}

// Client talks to a herdsim server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{},
	}
}

// CreateRunResponse is the server's reply to a run creation.
type CreateRunResponse struct {
	ID     string      `json:"id"`
	Counts herd.Counts `json:"counts"`
}

// CreateRun submits a run configuration and returns the assigned run ID
// together with the initial counts.
func (c *Client) CreateRun(ctx context.Context, builder *RunBuilder) (CreateRunResponse, error) {
	var out CreateRunResponse
	err := c.do(ctx, http.MethodPost, []string{"run"}, builder.Build(), &out)
	return out, err
}

// Tick advances the run by n ticks (n < 1 means 1) and returns the counts.
func (c *Client) Tick(ctx context.Context, runID string, n int) (herd.Counts, error) {
	if n < 1 {
		n = 1
	}
	var out herd.Counts
	err := c.do(ctx, http.MethodPost, []string{"run", runID, "tick"}, nil, &out,
		query{"n": fmt.Sprintf("%d", n)})
	return out, err
}

// CountsResponse is the server's reply to a counts query.
type CountsResponse struct {
	Counts herd.Counts `json:"counts"`
	Tick   uint64      `json:"tick"`
	Over   bool        `json:"over"`
}

// Counts fetches the current aggregate counts of a run.
func (c *Client) Counts(ctx context.Context, runID string) (CountsResponse, error) {
	var out CountsResponse
	err := c.do(ctx, http.MethodGet, []string{"run", runID, "counts"}, nil, &out)
	return out, err
}

// Snapshot fetches the full grid snapshot for rendering.
func (c *Client) Snapshot(ctx context.Context, runID string) (herd.Snapshot, error) {
	var out herd.Snapshot
	if err := c.do(ctx, http.MethodGet, []string{"run", runID, "snapshot"}, nil, &out); err != nil {
		return herd.Snapshot{}, err
	}
	if err := herd.ValidateSnapshot(out); err != nil {
		return herd.Snapshot{}, fmt.Errorf("server returned invalid snapshot: %w", err)
	}
	return out, nil
}

// History fetches the per-tick counts series of a run.
func (c *Client) History(ctx context.Context, runID string) ([]herd.Counts, error) {
	var out struct {
		History []herd.Counts `json:"history"`
	}
	err := c.do(ctx, http.MethodGet, []string{"run", runID, "history"}, nil, &out)
	return out.History, err
}

// ListRuns fetches the IDs of all runs on the server.
func (c *Client) ListRuns(ctx context.Context) ([]string, error) {
	var out struct {
		Runs []string `json:"runs"`
	}
	err := c.do(ctx, http.MethodGet, []string{"runs"}, nil, &out)
	return out.Runs, err
}

// DeleteRun stops and removes a run.
func (c *Client) DeleteRun(ctx context.Context, runID string) error {
	return c.do(ctx, http.MethodDelete, []string{"run", runID}, nil, nil)
}

// Start begins auto-ticking the run at the given interval in milliseconds;
// pass 0 to use the server's default interval.
func (c *Client) Start(ctx context.Context, runID string, intervalMS int) error {
	path := []string{"run", runID, "start"}
	if intervalMS > 0 {
		return c.do(ctx, http.MethodPost, path, nil, nil,
			query{"interval-ms": fmt.Sprintf("%d", intervalMS)})
	}
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// Stop halts auto-ticking.
func (c *Client) Stop(ctx context.Context, runID string) error {
	return c.do(ctx, http.MethodPost, []string{"run", runID, "stop"}, nil, nil)
}

// SetModel swaps the epidemic model of a running simulation. Only the
// parameter fields of the builder matter; dimensions and seed are ignored.
func (c *Client) SetModel(ctx context.Context, runID string, builder *RunBuilder) error {
	return c.do(ctx, http.MethodPut, []string{"run", runID, "model"}, builder.Build(), nil)
}

type query map[string]string

// do performs one request, encoding body as JSON when non-nil and decoding
// the response into out when non-nil.
func (c *Client) do(ctx context.Context, method string, pathParts []string, body, out any, queries ...query) error {
	u, err := url.JoinPath(c.baseURL, pathParts...)
	if err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}
	if len(queries) > 0 {
		values := url.Values{}
		for _, q := range queries {
			for k, v := range q {
				values.Set(k, v)
			}
		}
		u += "?" + values.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
