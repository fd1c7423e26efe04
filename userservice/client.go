package userservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-catalog/catalog"
)

const (
	usersPath        = "/api/users/"
	maxErrorBodySize = 512

	logMsgRequestFailed = "userservice: request failed"
	logAttrUserID       = "user_id"
	logAttrStatus       = "status"
	logAttrError        = "error"
	logAttrDurationMS   = "duration_ms"
)

var (
	// ErrEmptyBaseURL is returned by NewClient if no base URL is given.
	ErrEmptyBaseURL = errors.New("user-service base url must not be empty")

	// ErrNilHTTPClient is returned by WithHTTPClient for a nil client.
	ErrNilHTTPClient = errors.New("http client must not be nil")

	json = jsoniter.ConfigCompatibleWithStandardLibrary
)

// Client fetches users from the user-service.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	contextualLogger catalog.ContextualLogger
	timeout          time.Duration
	timeoutSet       bool
}

// Option defines a functional option for configuring a Client.
type Option func(*Client) error

// WithTimeout bounds each request. Zero means no timeout.
// It applies to a copy of the http.Client, whatever the option order.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.timeout = timeout
		c.timeoutSet = true

		return nil
	}
}

// WithHTTPClient replaces the underlying http.Client, e.g. to add tracing transports in tests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) error {
		if httpClient == nil {
			return ErrNilHTTPClient
		}

		c.httpClient = httpClient

		return nil
	}
}

// WithContextualLogger sets the logger for failed requests.
func WithContextualLogger(logger catalog.ContextualLogger) Option {
	return func(c *Client) error {
		c.contextualLogger = logger
		return nil
	}
}

// NewClient creates a Client for the service at baseURL, e.g. "http://localhost:5041".
func NewClient(baseURL string, options ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, ErrEmptyBaseURL
	}

	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}

	for _, option := range options {
		if err := option(client); err != nil {
			return nil, err
		}
	}

	if client.timeoutSet {
		httpClient := *client.httpClient
		httpClient.Timeout = client.timeout
		client.httpClient = &httpClient
	}

	return client, nil
}

// GetUserByID requests GET {baseURL}/api/users/{id}.
// A 404 answer yields a catalog.KindNotFound error, every other failure wraps catalog.ErrUserServiceFailed.
func (c *Client) GetUserByID(ctx context.Context, id int64) (User, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+usersPath+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return User{}, errors.Join(catalog.ErrUserServiceFailed, err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logFailure(ctx, id, 0, err, time.Since(start))
		return User{}, errors.Join(catalog.ErrUserServiceFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if statusErr := checkStatus(resp); statusErr != nil {
		c.logFailure(ctx, id, resp.StatusCode, statusErr, time.Since(start))
		return User{}, statusErr
	}

	var user User
	if decodeErr := json.NewDecoder(resp.Body).Decode(&user); decodeErr != nil {
		c.logFailure(ctx, id, resp.StatusCode, decodeErr, time.Since(start))
		return User{}, errors.Join(catalog.ErrUserServiceFailed, decodeErr)
	}

	return user, nil
}

// checkStatus returns a typed error for non-2xx responses.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return catalog.NotFound("User not found")
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return errors.Join(
			catalog.ErrUserServiceFailed,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		)
	}
}

func (c *Client) logFailure(ctx context.Context, id int64, status int, err error, duration time.Duration) {
	if c.contextualLogger == nil {
		return
	}

	c.contextualLogger.WarnContext(
		ctx,
		logMsgRequestFailed,
		logAttrUserID, id,
		logAttrStatus, status,
		logAttrError, err.Error(),
		logAttrDurationMS, duration.Milliseconds(),
	)
}
