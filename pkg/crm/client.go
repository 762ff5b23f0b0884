// Package crm looks callers up in an external CRM over HTTP.
package crm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/troikatech/care-voice/pkg/client"
	"github.com/troikatech/care-voice/pkg/logger"
	"github.com/troikatech/care-voice/pkg/otel"
	"github.com/troikatech/care-voice/pkg/retry"
)

var (
	ErrNotConfigured  = errors.New("crm not configured")
	ErrNotFound       = errors.New("crm profile not found")
	ErrUpstream       = errors.New("crm upstream unavailable")
	ErrInvalidPayload = errors.New("crm payload invalid")
)

const serviceName = "crm"

// Fetcher is the lookup the call pipeline depends on.
type Fetcher interface {
	FetchProfile(ctx context.Context, phone string) (*ExternalProfile, error)
}

// Client queries a CRM endpoint. BaseURL may contain a {phone} placeholder;
// otherwise the number is sent as the "phone" query parameter.
type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *client.HTTPClient
	logger  *zap.Logger
}

// NewClient builds a CRM client. The timeout bounds the whole lookup, retries included.
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger, opts ...client.Option) *Client {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 2
	retryCfg.InitialDelay = 50 * time.Millisecond

	opts = append([]client.Option{client.WithRetry(retryCfg)}, opts...)
	return &Client{
		baseURL: strings.TrimSpace(baseURL),
		token:   token,
		timeout: timeout,
		http:    client.NewHTTPClient(serviceName, timeout, opts...),
		logger:  logger,
	}
}

// Configured reports whether a base URL is set.
func (c *Client) Configured() bool {
	return c != nil && c.baseURL != ""
}

func (c *Client) lookupURL(phone string) (string, error) {
	if strings.Contains(c.baseURL, "{phone}") {
		return strings.ReplaceAll(c.baseURL, "{phone}", url.QueryEscape(phone)), nil
	}

	u, err := url.Parse(strings.TrimRight(c.baseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid crm base url: %w", err)
	}
	q := u.Query()
	q.Set("phone", phone)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FetchProfile returns the CRM record for phone. Every failure comes back as one
// of the package sentinels so callers can treat them uniformly.
func (c *Client) FetchProfile(ctx context.Context, phone string) (*ExternalProfile, error) {
	if !c.Configured() || phone == "" {
		return nil, ErrNotConfigured
	}

	target, err := c.lookupURL(phone)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	headers := map[string]string{"Accept": "application/json"}
	if c.token != "" {
		headers["Authorization"] = "Bearer " + c.token
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result *ExternalProfile
	err = otel.ClientSpan(ctx, serviceName, "fetch_profile", func(ctx context.Context) error {
		resp, err := c.http.Get(ctx, target, headers)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrUpstream, err)
		}

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return ErrNotFound
		case resp.StatusCode >= 400:
			return fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
		}

		result, err = decodeProfile(resp.Body)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.logger.Debug("CRM has no profile", logger.MaskPhone("phone", phone))
		} else {
			c.logger.Warn("CRM lookup failed", logger.MaskPhone("phone", phone), zap.Error(err))
		}
		return nil, err
	}
	return result, nil
}
