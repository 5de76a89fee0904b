// Package external provides the signed transport to the OpenBGE platform and
// the normalization of its responses.
package external

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/openbge-client/internal/domain"
	"github.com/openbge-client/pkg/signature"
)

// Platform endpoints
const (
	PathSamples         = "/openbge/samples"
	PathSurveyResponses = "/openbge/survey/responses"
	PathSMS             = "/openbge/sms/send"
	PathVariants        = "/openbge/variants"
	PathSearch          = "/openbge/search"
	PathNotFound        = "/openbge/404"
)

// DefaultTimeout applies when the configuration sets none
const DefaultTimeout = 30 * time.Second

const defaultUserAgent = "openbge-client/1.0"

// HostPattern is the accepted shape of the platform host
var HostPattern = regexp.MustCompile(`^((ht|f)tps?://)?[\w-]+(\.[\w-]+)+(:\d{1,5})?/?$`)

// Gateway sends one signed call and returns the normalized outcome
type Gateway interface {
	Call(ctx context.Context, method, path string, params signature.Params) Envelope
}

// Client handles signed interactions with the OpenBGE platform
type Client struct {
	baseURL            string
	httpClient         *http.Client
	signer             *signature.Signer
	signBusinessParams bool
	userAgent          string
	rateLimit          *rate.Limiter
	circuitBreaker     *gobreaker.CircuitBreaker
	logger             *logrus.Logger

	signerOpts []signature.Option
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSignerOptions passes options (fixed clock, fixed nonce) to the signer
func WithSignerOptions(opts ...signature.Option) ClientOption {
	return func(c *Client) {
		c.signerOpts = append(c.signerOpts, opts...)
	}
}

// NewClient creates a new platform client
func NewClient(config domain.PlatformConfig, logger *logrus.Logger, opts ...ClientOption) (*Client, error) {
	if !HostPattern.MatchString(config.Host) {
		return nil, &domain.ConfigError{Key: "platform.host", Reason: fmt.Sprintf("%q is not a valid host", config.Host)}
	}
	if config.Key == "" {
		return nil, &domain.ConfigError{Key: "platform.key", Reason: "is required"}
	}
	if config.Secret == "" {
		return nil, &domain.ConfigError{Key: "platform.secret", Reason: "is required"}
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}
	if logger == nil {
		logger = logrus.New()
	}

	c := &Client{
		baseURL: BaseURL(config.Host),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		signBusinessParams: config.SignBusinessParams,
		userAgent:          config.UserAgent,
		circuitBreaker:     newCircuitBreaker(config.CircuitBreaker, logger),
		logger:             logger,
	}
	if config.RateLimit > 0 {
		c.rateLimit = rate.NewLimiter(rate.Limit(config.RateLimit), 1)
	}

	for _, opt := range opts {
		opt(c)
	}
	c.signer = signature.NewSigner(config.Key, config.Secret, c.signerOpts...)
	return c, nil
}

// BaseURL normalizes a configured host into a URL prefix. Hosts without a
// scheme are assumed to be https.
func BaseURL(host string) string {
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return strings.TrimRight(host, "/")
}

// Call signs params, sends them and normalizes the outcome
func (c *Client) Call(ctx context.Context, method, path string, params signature.Params) Envelope {
	return Normalize(c.Do(ctx, method, path, params))
}

// Do performs one signed request. A response is returned for any HTTP status;
// err is set only when no response was obtained.
func (c *Client) Do(ctx context.Context, method, path string, params signature.Params) (*RawResponse, error) {
	requestID := uuid.New().String()
	logger := c.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})

	// Rate limiting
	if c.rateLimit != nil {
		if err := c.rateLimit.Wait(ctx); err != nil {
			logger.WithError(err).Warn("Rate limit wait failed")
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}
	}

	start := time.Now()
	resp, err := guard(c.circuitBreaker, func() (*RawResponse, error) {
		return c.send(ctx, method, path, params, requestID)
	})
	duration := time.Since(start)

	if err != nil {
		logger.WithFields(logrus.Fields{
			"duration_ms": duration.Milliseconds(),
			"error":       err.Error(),
		}).Warn("Platform request failed")
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"status":      resp.StatusCode,
		"duration_ms": duration.Milliseconds(),
	}).Debug("Platform request completed")
	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, params signature.Params, requestID string) (*RawResponse, error) {
	var signed signature.Signed
	if c.signBusinessParams {
		signed = c.signer.Sign(params)
	} else {
		signed = c.signer.Sign(nil)
	}
	form := signed.Merge(params)

	var (
		req *http.Request
		err error
	)
	if method == http.MethodGet {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+form.Encode(), nil)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, strings.NewReader(form.Encode()))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	if method != http.MethodGet {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &RawResponse{StatusCode: resp.StatusCode, Body: body}, nil
}
