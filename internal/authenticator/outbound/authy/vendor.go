// Package authy speaks the private device protocol of the Authy API.
//
// Every method is a single HTTP round trip. Non-2xx answers become
// *entity.APIError, or entity.ErrDamagedToken for the vendor damaged-token
// code, and transport failures wrap entity.ErrTransport.
package authy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/authbite/internal/authenticator/entity"
	"github.com/shandysiswandi/authbite/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://api.authy.com/json"
	DefaultLocale  = "en-US"
	DefaultTimeout = 30 * time.Second

	// deviceApp is the app name the vendor expects for soft-token devices.
	deviceApp = "authy"
	// projectURL is advertised in the User-Agent header.
	projectURL = "https://github.com/shandysiswandi/authbite"

	maxBodyBytes = 64 * 1024
)

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	Locale  string
	Version string
	Timeout time.Duration
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client
}

// Client is the vendor HTTP client. It is safe for concurrent use.
type Client struct {
	baseURL   string
	apiKey    string
	locale    string
	userAgent string
	xAgent    string
	http      *http.Client
	ins       instrument.Instrumentation
	requests  metric.Int64Counter
}

func New(cfg Config, ins instrument.Instrumentation) (*Client, error) {
	if ins == nil {
		ins = instrument.NewNoop()
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("vendor: invalid base url %q: %w", base, err)
	}

	locale := cfg.Locale
	if locale == "" {
		locale = DefaultLocale
	}

	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	requests, err := ins.Meter("authbite.vendor").Int64Counter("authbite.vendor.requests",
		metric.WithDescription("Number of requests sent to the vendor API"))
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:   base,
		apiKey:    cfg.APIKey,
		locale:    locale,
		userAgent: fmt.Sprintf("authbite/%s (+%s)", version, projectURL),
		xAgent:    "authbite v" + version,
		http:      hc,
		ins:       ins,
		requests:  requests,
	}, nil
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("authenticator.outbound.vendor").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// baseQuery returns the api_key and locale pair sent with most calls.
func (c *Client) baseQuery() url.Values {
	return url.Values{
		"api_key": {c.apiKey},
		"locale":  {c.locale},
	}
}

// authQuery returns the query of calls signed by the device.
func (c *Client) authQuery(deviceID uint64, dc entity.DeviceCodes) url.Values {
	return url.Values{
		"api_key":   {c.apiKey},
		"device_id": {strconv.FormatUint(deviceID, 10)},
		"otp1":      {dc.OTP1},
		"otp2":      {dc.OTP2},
		"otp3":      {dc.OTP3},
	}
}

type call struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	form     url.Values
}

// do sends the call and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	var body io.Reader
	if cl.form != nil {
		body = strings.NewReader(cl.form.Encode())
	}

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-User-Agent", c.xAgent)
	if cl.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.count(ctx, cl.endpoint, 0)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %w", entity.ErrTransport, err)
	}
	defer resp.Body.Close()

	c.count(ctx, cl.endpoint, resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &entity.APIError{StatusCode: resp.StatusCode, Body: string(raw), Err: err}
	}

	return nil
}

func (c *Client) count(ctx context.Context, endpoint string, status int) {
	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.Int("status", status),
	))
}

// apiError translates a non-2xx body.
func apiError(status int, raw []byte) error {
	var e errorResponse
	if err := json.Unmarshal(raw, &e); err == nil && string(e.ErrorCode) == entity.DamagedTokenCode {
		return fmt.Errorf("%w: %s", entity.ErrDamagedToken, e.Message)
	}

	return &entity.APIError{StatusCode: status, Body: string(raw)}
}
