// Copyright (c) 2022. Alvin Baena.
// SPDX-License-Identifier: MIT

package hibp

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"
)

const (
	DefaultBaseURL = "https://api.pwnedpasswords.com"

	userAgent = "pwd-analyzer/1.0"
)

type HTTPOptions struct {
	BaseURL string
	Timeout time.Duration
	// RetryMax is the number of retries after the first attempt. Zero means a
	// single attempt.
	RetryMax int
	// Padding asks the service to pad responses with zero count entries so the
	// response size does not leak the prefix.
	Padding bool
}

// HTTPRanges queries the Pwned Passwords range API.
type HTTPRanges struct {
	baseURL string
	padding bool
	http    *retryablehttp.Client
}

func NewHTTPRanges(opts HTTPOptions) *HTTPRanges {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	return &HTTPRanges{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		padding: opts.Padding,
		http:    initHttpClient(opts.Timeout, opts.RetryMax),
	}
}

func initHttpClient(timeout time.Duration, retryMax int) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	// The default logger prints every request URL.
	client.Logger = nil
	client.RetryMax = max(retryMax, 0)
	// Hand back the last response so the status can be reported.
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client.HTTPClient = &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			DialContext: (&net.Dialer{
				Timeout:   timeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   timeout,
			ExpectContinueTimeout: 1 * time.Second,
			// HTTP/2 multiplexes on a single connection, which was slower than
			// several HTTP/1.1 connections when mirroring ranges.
			ForceAttemptHTTP2:   false,
			MaxIdleConnsPerHost: runtime.GOMAXPROCS(0) + 1,
		},
	}

	return client
}

func (h *HTTPRanges) rangeRequest(ctx context.Context, prefix string) (*retryablehttp.Request, error) {
	req, err := retryablehttp.NewRequestWithContext(
		ctx,
		http.MethodGet,
		fmt.Sprintf("%s/range/%s", h.baseURL, prefix),
		nil,
	)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", userAgent)
	if h.padding {
		req.Header.Set("Add-Padding", "true")
	}
	return req, nil
}

// Range fetches the range for prefix. Any transport error or non 2xx status is
// returned as an error.
func (h *HTTPRanges) Range(ctx context.Context, prefix string) ([]byte, error) {
	if !ValidPrefix(prefix) {
		return nil, fmt.Errorf("invalid range prefix %q", prefix)
	}

	req, err := h.rangeRequest(ctx, prefix)
	if err != nil {
		return nil, err
	}

	res, err := h.http.Do(req)
	if err != nil {
		return nil, err
	}

	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Warn().Err(err).Msgf("error closing body for range %s", prefix)
		}
	}(res.Body)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("request for range [%s] failed with status [%d] %s", prefix, res.StatusCode, res.Status)
	}

	return io.ReadAll(res.Body)
}
