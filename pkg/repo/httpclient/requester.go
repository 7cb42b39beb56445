// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/united-manufacturing-hub/aas-sync/pkg/logger"
	"github.com/united-manufacturing-hub/aas-sync/pkg/repo/syncerr"
	"go.uber.org/zap"
)

// DefaultTimeout bounds a single GET including reading the body.
const DefaultTimeout = 30 * time.Second

// Response is a completely read response.
type Response struct {
	Body        []byte
	StatusCode  int
	ContentType string
}

// Client performs GET requests against a repository. The zero value is
// usable: no retries, DefaultTimeout, verified TLS.
type Client struct {
	Timeout time.Duration
	// RetryMax is the number of retries on connection errors. HTTP status
	// codes are never retried.
	RetryMax    int
	InsecureTLS bool
	Decorators  []RequestDecorator
	Logger      *zap.SugaredLogger
}

// Get fetches uri. Connection failures and non-2xx responses are returned as
// syncerr transport errors; the response body is read completely.
func (c *Client) Get(ctx context.Context, uri string) (*Response, error) {
	log := logger.OrNop(c.Logger)

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = GetClient(c.InsecureTLS)
	retryClient.RetryMax = c.RetryMax
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = &zapRetryLogger{logger: log}
	retryClient.CheckRetry = checkRetry(log)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, syncerr.NewConfigurationError(fmt.Errorf("invalid request URI %q: %w", uri, err))
	}

	req.Header.Set("Accept", "application/json")

	for _, d := range c.Decorators {
		if err := d.Decorate(req.Request); err != nil {
			return nil, syncerr.NewConfigurationError(fmt.Errorf("decorate request: %w", err))
		}
	}

	var (
		requestStart time.Time
		t            timings
	)

	req = req.WithContext(httptrace.WithClientTrace(req.Context(), setupClientTrace(&requestStart, &t)))

	requestStart = time.Now()

	response, err := retryClient.Do(req)
	if err != nil {
		return nil, syncerr.NewTransportError(uri, 0, enhanceConnectionError(err))
	}

	defer func() {
		if err := response.Body.Close(); err != nil {
			log.Debugw("Error closing response body", "url", uri, "error", err)
		}
	}()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, syncerr.NewTransportError(uri, response.StatusCode, fmt.Errorf("read body: %w", err))
	}

	recordLatencies(t, time.Since(requestStart))

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, syncerr.NewTransportError(uri, response.StatusCode,
			fmt.Errorf("error response code: %s", response.Status))
	}

	return &Response{
		Body:        body,
		StatusCode:  response.StatusCode,
		ContentType: response.Header.Get("Content-Type"),
	}, nil
}

// checkRetry only retries connection errors, not HTTP status codes.
func checkRetry(log *zap.SugaredLogger) retryablehttp.CheckRetry {
	return func(ctx context.Context, _ *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		if err == nil {
			return false, nil
		}

		if isConnectionError(err) {
			log.Debugf("Retrying due to connection error: %v", err)

			return true, nil
		}

		return false, nil
	}
}

func isConnectionError(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}

	errStr := err.Error()

	return strings.Contains(errStr, "EOF") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "network is unreachable")
}

// enhanceConnectionError adds context to common connection errors.
func enhanceConnectionError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case strings.Contains(err.Error(), "EOF"):
		return fmt.Errorf("connection closed unexpectedly before receiving response: %w", err)
	case strings.Contains(err.Error(), "timeout") || strings.Contains(err.Error(), "deadline exceeded"):
		return fmt.Errorf("request timed out: %w", err)
	case strings.Contains(err.Error(), "connection refused"):
		return fmt.Errorf("connection refused: %w", err)
	default:
		return fmt.Errorf("connection error: %w", err)
	}
}

// zapRetryLogger adapts zap.SugaredLogger to retryablehttp.LeveledLogger interface.
// Failed attempts are logged as warnings: the caller owns the error and logs
// it once.
type zapRetryLogger struct {
	logger *zap.SugaredLogger
}

func (z *zapRetryLogger) Error(msg string, keysAndValues ...interface{}) {
	z.logger.Warnw(msg, keysAndValues...)
}

func (z *zapRetryLogger) Info(msg string, keysAndValues ...interface{}) {
	z.logger.Infow(msg, keysAndValues...)
}

func (z *zapRetryLogger) Debug(msg string, keysAndValues ...interface{}) {
	z.logger.Debugw(msg, keysAndValues...)
}

func (z *zapRetryLogger) Warn(msg string, keysAndValues ...interface{}) {
	z.logger.Warnw(msg, keysAndValues...)
}
