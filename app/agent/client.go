// SPDX-FileCopyrightText: Copyright (c) 2016-2025, CloudZero, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	config "github.com/helios-io/helios/app/config/agent"
	"github.com/helios-io/helios/app/types"
)

// IngestRequest, Commands, and IngestResponse are the wire types shared with
// the server side; aliased here so agent call sites read naturally.
type (
	IngestRequest  = types.IngestRequest
	Commands       = types.Commands
	IngestResponse = types.IngestResponse
)

// Client posts ingest batches with the linear backoff retry contract from
// spec §4.1: up to retry_attempts attempts, delay = retry_delay * attempt,
// 401 never retries, 429 honors Retry-After (default 2*retry_delay), other
// errors retry with backoff.
type Client struct {
	httpClient    *http.Client
	endpoint      config.Endpoint
	agentVersion  string
}

// NewClient builds a Client bound to the given endpoint config.
func NewClient(endpoint config.Endpoint, agentVersion string) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: endpoint.Timeout},
		endpoint:     endpoint,
		agentVersion: agentVersion,
	}
}

// Close releases the client's idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Ingest POSTs one batch, retrying per the contract above.
func (c *Client) Ingest(ctx context.Context, batch []types.MetricSample) (*IngestResponse, error) {
	body, err := json.Marshal(IngestRequest{
		Metrics:      batch,
		AgentVersion: c.agentVersion,
		SentAt:       time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("agent: marshal ingest request: %w", err)
	}

	attempts := c.endpoint.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}
	delayUnit := c.endpoint.RetryDelay

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, err := c.doOnce(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if errors.Is(err, ErrUnauthorized) {
			return nil, err
		}

		sleep := delayUnit * time.Duration(attempt)
		var rae *retryAfterError
		if errors.As(err, &rae) {
			if rae.after > 0 {
				sleep = rae.after
			} else {
				sleep = 2 * delayUnit
			}
		}

		if attempt == attempts {
			break
		}

		log.Ctx(ctx).Warn().Err(err).Int("attempt", attempt).Dur("sleep", sleep).Msg("ingest attempt failed, retrying")
		select {
		case <-time.After(sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrFlushFailed, lastErr)
}

// Probe performs a lightweight GET against the server's health endpoint,
// used by the agent's health_check() (spec §4.1) and by run()'s startup
// probe.
func (c *Client) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint.URL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health probe returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) doOnce(ctx context.Context, body []byte) (*IngestResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint.URL+"/api/v1/ingest", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "helios-agent/"+c.agentVersion)
	if c.endpoint.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.endpoint.APIKey)
		req.Header.Set("X-API-Key", c.endpoint.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var out IngestResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode ingest response: %w", err)
		}
		return &out, nil

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized

	case resp.StatusCode == http.StatusTooManyRequests:
		after := parseRetryAfter(resp.Header.Get("Retry-After"))
		return nil, &retryAfterError{after: after}

	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

type retryAfterError struct {
	after time.Duration
}

func (e *retryAfterError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.after)
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
