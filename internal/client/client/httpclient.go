package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/siteauth/internal/client/models"
	"github.com/dmitrijs2005/siteauth/internal/common"
	"github.com/dmitrijs2005/siteauth/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName      = "github.com/dmitrijs2005/siteauth/internal/client/client"
	maxResponseSize = 1 << 20
)

// HTTPClient talks JSON over HTTP to the Authentication Service.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	logger  logging.Logger
	tracer  trace.Tracer
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// New builds a client for the service rooted at baseURL. timeout bounds each
// request; zero means no client-side limit.
func New(baseURL string, timeout time.Duration, logger logging.Logger, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "authclient"),
		tracer:  otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(c)
	}
	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, creds models.Credentials) (*models.Envelope[models.AuthData], error) {
	return c.authCall(ctx, PathLogin, creds)
}

func (c *HTTPClient) Register(ctx context.Context, data models.RegisterData) (*models.Envelope[models.AuthData], error) {
	return c.authCall(ctx, PathRegister, data)
}

func (c *HTTPClient) authCall(ctx context.Context, path string, body any) (*models.Envelope[models.AuthData], error) {
	msg, raw, err := c.do(ctx, http.MethodPost, path, path, "", body)
	if err != nil {
		return nil, err
	}

	env := &models.Envelope[models.AuthData]{Success: true, Message: msg}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env.Data); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return env, nil
}

// Profile fetches the authoritative profile. The service may wrap the user
// as data.user or put the user fields directly in data; both are accepted.
func (c *HTTPClient) Profile(ctx context.Context, token string) (*models.UserProfile, error) {
	_, raw, err := c.do(ctx, http.MethodGet, PathProfile, PathProfile, token, nil)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty profile", ErrMalformedResponse)
	}

	var wrapped struct {
		User *models.UserProfile `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.User != nil && wrapped.User.ID != "" {
		return wrapped.User, nil
	}

	var u models.UserProfile
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("%w: profile without id", ErrMalformedResponse)
	}
	return &u, nil
}

// ExchangeToken trades a one-time handle for the token. The request carries
// no Authorization header; the handle is the proof.
func (c *HTTPClient) ExchangeToken(ctx context.Context, tokenID string) (string, error) {
	_, raw, err := c.do(ctx, http.MethodGet, PathToken+url.PathEscape(tokenID), PathToken+"{tokenId}", "", nil)
	if err != nil {
		return "", err
	}

	var td models.TokenData
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &td); err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
	}
	return td.Token, nil
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, token, userID string) (string, error) {
	return c.messageCall(ctx, PathVerifyEmail, models.VerifyEmailRequest{Token: token, UserID: userID})
}

func (c *HTTPClient) ResendVerification(ctx context.Context, email string) (string, error) {
	return c.messageCall(ctx, PathResendVerification, models.EmailRequest{Email: email})
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return c.messageCall(ctx, PathRequestPasswordReset, models.EmailRequest{Email: email})
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, userID, password string) (string, error) {
	return c.messageCall(ctx, PathResetPassword, models.ResetPasswordRequest{Token: token, UserID: userID, Password: password})
}

func (c *HTTPClient) messageCall(ctx context.Context, path string, body any) (string, error) {
	msg, _, err := c.do(ctx, http.MethodPost, path, path, "", body)
	return msg, err
}

// Ping reports whether the service host answers HTTP at all. Any status
// code counts as reachable.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}

type rawEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do performs one request and unwraps the response envelope. route is the
// path template used for tracing and logs; it never contains secrets.
func (c *HTTPClient) do(ctx context.Context, method, path, route, token string, body any) (string, json.RawMessage, error) {
	ctx, span := c.tracer.Start(ctx, method+" "+route, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	requestID := uuid.NewString()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.template", route),
		attribute.String("request.id", requestID),
	)

	msg, raw, status, err := c.roundTrip(ctx, method, path, token, requestID, body)
	if status != 0 {
		span.SetAttributes(attribute.Int("http.response.status_code", status))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug(ctx, "auth service call failed", "route", route, "request_id", requestID, "status", status, "error", err)
		return "", nil, err
	}

	c.logger.Debug(ctx, "auth service call", "route", route, "request_id", requestID, "status", status)
	return msg, raw, nil
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path, token, requestID string, body any) (string, json.RawMessage, int, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return "", nil, 0, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return "", nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeaderName, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", nil, 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", nil, resp.StatusCode, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	switch resp.StatusCode {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return "", nil, resp.StatusCode, fmt.Errorf("%w: %s", ErrUnavailable, resp.Status)
	}

	var env rawEnvelope
	decodeErr := json.Unmarshal(data, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", nil, resp.StatusCode, rejected(resp.StatusCode, env.Message)
	}
	if decodeErr != nil {
		return "", nil, resp.StatusCode, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}
	if !env.Success {
		return "", nil, resp.StatusCode, rejected(resp.StatusCode, env.Message)
	}
	if bytes.Equal(env.Data, []byte("null")) {
		env.Data = nil
	}
	return env.Message, env.Data, resp.StatusCode, nil
}

// IsUnavailable reports whether err means the service could not be reached.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
