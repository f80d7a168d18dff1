package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/nfcmusik/internal/models"
	"github.com/desertthunder/nfcmusik/internal/shared"
	"golang.org/x/time/rate"
)

const (
	PathMusicFiles  = "json/musicfiles"
	PathReadNFC     = "json/readnfc"
	PathWlanTimeout = "json/wlantimeout"
	PathWriteNFC    = "actions/writenfc"
	PathDeleteFile  = "actions/deletefile"
)

// Device is the contract the dashboard needs from a music box.
type Device interface {
	MusicFiles(ctx context.Context) ([]models.MusicFile, error)
	ReadNFC(ctx context.Context) (*models.NfcStatus, error)
	WlanTimeout(ctx context.Context) (*models.WlanTimeoutStatus, error)
	WriteNFC(ctx context.Context, hash string) (*models.ActionResult, error)
	DeleteFile(ctx context.Context, hash string) (*models.ActionResult, error)
}

var _ Device = (*Client)(nil)

// Options configures a [Client].
type Options struct {
	HTTPClient        *http.Client
	Timeout           time.Duration // per request; zero means no extra deadline
	RequestsPerSecond float64       // zero disables limiting
}

// Client talks to one music box over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewClient creates a client for the device at baseURL.
func NewClient(baseURL string, opts Options) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("%w: device url is empty", shared.ErrInvalidInput)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: device url: %v", shared.ErrInvalidInput, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: device url must be http(s), got %q", shared.ErrInvalidInput, baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	c := &Client{
		baseURL:    u,
		httpClient: opts.HTTPClient,
		timeout:    opts.Timeout,
	}
	if opts.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}

	return c, nil
}

// BaseURL returns the device root URL (the page the device serves its own UI on).
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// MusicFiles fetches the list of music files on the device.
func (c *Client) MusicFiles(ctx context.Context) ([]models.MusicFile, error) {
	var files []models.MusicFile
	if err := c.getJSON(ctx, PathMusicFiles, nil, &files); err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.MusicFile{}
	}
	return files, nil
}

// ReadNFC fetches the current tag status.
func (c *Client) ReadNFC(ctx context.Context) (*models.NfcStatus, error) {
	var status models.NfcStatus
	if err := c.getJSON(ctx, PathReadNFC, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// WlanTimeout fetches the remaining WLAN fallback countdown.
func (c *Client) WlanTimeout(ctx context.Context) (*models.WlanTimeoutStatus, error) {
	var status models.WlanTimeoutStatus
	if err := c.getJSON(ctx, PathWlanTimeout, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// WriteNFC asks the device to write hash onto the tag currently on the reader.
func (c *Client) WriteNFC(ctx context.Context, hash string) (*models.ActionResult, error) {
	return c.action(ctx, PathWriteNFC, hash)
}

// DeleteFile asks the device to delete the music file identified by hash.
func (c *Client) DeleteFile(ctx context.Context, hash string) (*models.ActionResult, error) {
	return c.action(ctx, PathDeleteFile, hash)
}

// Home loads the device home page, which resets its WLAN shutdown countdown.
func (c *Client) Home(ctx context.Context) error {
	resp, err := c.get(ctx, "", nil)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: GET / returned %d", shared.ErrAPIRequest, resp.StatusCode)
	}
	return nil
}

func (c *Client) action(ctx context.Context, path, hash string) (*models.ActionResult, error) {
	if strings.TrimSpace(hash) == "" {
		return nil, fmt.Errorf("%w: hash", shared.ErrMissingArgument)
	}

	var result models.ActionResult
	if err := c.getJSON(ctx, path, url.Values{"data": {hash}}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Response is a raw device response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, v any) error {
	resp, err := c.get(ctx, path, query)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: GET %s returned %d", shared.ErrAPIRequest, path, resp.StatusCode)
	}

	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("%w: failed to decode %s: %v", shared.ErrAPIRequest, path, err)
	}

	return nil
}

// get performs a GET on path relative to the device root and reads the whole body.
func (c *Client) get(ctx context.Context, path string, query url.Values) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", shared.ErrDeviceUnavailable, err)
		}
	}

	target := c.baseURL.ResolveReference(&url.URL{Path: path})
	if query != nil {
		target.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w: %v", shared.ErrDeviceUnavailable, shared.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrDeviceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// ActionError converts a device-reported failure into an error wrapping [shared.ErrActionFailed].
//
// Returns nil for successful results.
func ActionError(result *models.ActionResult) error {
	if result == nil {
		return fmt.Errorf("%w: empty response", shared.ErrActionFailed)
	}
	if result.Success {
		return nil
	}
	return fmt.Errorf("%w: %s", shared.ErrActionFailed, result.Message)
}
