package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/semaphore"

	"github.com/vaultrag-api/errs"
)

const (
	defaultTimeout        = 30 * time.Second
	defaultMaxAttempts    = 3
	defaultMaxConcurrency = 8
	defaultEmbedBatchSize = 64
	defaultRetryInitial   = 2 * time.Second
	defaultRetryMax       = 10 * time.Second
)

// ClientConfig configures the OpenAI-compatible provider client.
type ClientConfig struct {
	BaseURL            string
	APIKey             string
	EmbeddingModel     string
	EmbeddingDimension int
	ChatModel          string
	Timeout            time.Duration
	MaxAttempts        int
	MaxConcurrency     int64
	EmbedBatchSize     int

	// Retry pacing; overridable so tests don't sleep for seconds.
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
}

// Client talks to an OpenAI-compatible HTTP endpoint. One client serves both
// the embedding and the chat-completion capability; in-flight requests are
// bounded by a shared semaphore.
type Client struct {
	cfg        ClientConfig
	httpClient *http.Client
	sem        *semaphore.Weighted
}

func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = defaultEmbedBatchSize
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = defaultRetryInitial
	}
	if cfg.RetryMaxInterval <= 0 {
		cfg.RetryMaxInterval = defaultRetryMax
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		sem: semaphore.NewWeighted(cfg.MaxConcurrency),
	}
}

// postJSON issues one POST with the retry policy applied: up to MaxAttempts
// attempts on transient failures (timeouts, 429, 5xx) with exponential
// backoff and jitter, stopping early when the context deadline would be
// exceeded. Exhausted retries surface as ProviderUnavailable.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return errs.Internal(fmt.Errorf("marshal provider request: %w", err))
	}

	operation := func() error {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return backoff.Permanent(err)
		}
		defer c.sem.Release(1)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(jsonData))
		if err != nil {
			return backoff.Permanent(errs.Internal(fmt.Errorf("build provider request: %w", err)))
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return errs.ProviderTransient(err)
		}
		defer resp.Body.Close()

		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return errs.ProviderTransient(fmt.Errorf("read provider response: %w", readErr))
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.Unmarshal(body, out); err != nil {
				return backoff.Permanent(errs.ProviderPermanent(fmt.Errorf("decode provider response: %w", err)))
			}
			return nil
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return errs.ProviderTransient(fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncateBody(body)))
		default:
			return backoff.Permanent(errs.ProviderPermanent(fmt.Errorf("provider returned status %d: %s", resp.StatusCode, truncateBody(body))))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.RetryInitialInterval
	bo.MaxInterval = c.cfg.RetryMaxInterval
	bo.MaxElapsedTime = 0

	err = backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.cfg.MaxAttempts-1)), ctx))
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Timeout("provider call aborted: %v", err)
	}

	var provErr *errs.Error
	if errors.As(err, &provErr) {
		if provErr.Kind == errs.KindProviderTransient {
			return errs.ProviderUnavailable(provErr)
		}
		return provErr
	}

	return errs.ProviderUnavailable(err)
}

func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
