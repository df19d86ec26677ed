package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"brecimport/internal/catalog"
	"brecimport/internal/logging"
	"brecimport/internal/recording"
	"brecimport/internal/services"
)

const (
	defaultCheckTimeout   = 10 * time.Second
	defaultCreateTimeout  = 30 * time.Second
	defaultVerifyAttempts = 3
	defaultVerifyDelay    = time.Second
	defaultSettleDelay    = 500 * time.Millisecond
	maxResponseBytes      = 32 << 20
)

// ErrNotVerified reports an accepted import that never became visible.
var ErrNotVerified = errors.New("import accepted but part not found in catalog")

// Config captures the runtime settings required to talk to the catalog server.
type Config struct {
	BaseURL           string
	User              string
	Password          string
	CheckTimeout      time.Duration
	CreateTimeout     time.Duration
	VerifyAttempts    int
	VerifyDelay       time.Duration
	SettleDelay       time.Duration
	RequestsPerSecond float64
}

// HTTPDoer is the subset of *http.Client the adapter needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the catalog port backed by the HTTP API.
type Client struct {
	cfg        Config
	httpClient HTTPDoer
	limiter    *rate.Limiter
	sleeper    func(context.Context, time.Duration) error
	newID      func() string
	logger     *slog.Logger
}

var (
	_ catalog.Backend   = (*Client)(nil)
	_ catalog.SelfTimed = (*Client)(nil)
)

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client HTTPDoer) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithSleeper overrides how verification waits are performed (useful for tests).
func WithSleeper(sleeper func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if sleeper != nil {
			c.sleeper = sleeper
		}
	}
}

// WithLogger attaches a logger for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient validates cfg and constructs a client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, services.Wrap(services.ErrSetup, "connect", "catalog url", fmt.Sprintf("invalid url %q", cfg.BaseURL), err)
	}
	if strings.TrimSpace(cfg.User) == "" || cfg.Password == "" {
		return nil, services.Wrap(services.ErrSetup, "connect", "catalog credentials", "user and password are required", nil)
	}

	cfg.BaseURL = base
	if cfg.CheckTimeout <= 0 {
		cfg.CheckTimeout = defaultCheckTimeout
	}
	if cfg.CreateTimeout <= 0 {
		cfg.CreateTimeout = defaultCreateTimeout
	}
	if cfg.VerifyAttempts <= 0 {
		cfg.VerifyAttempts = defaultVerifyAttempts
	}
	if cfg.VerifyDelay < 0 {
		cfg.VerifyDelay = defaultVerifyDelay
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = defaultSettleDelay
	}

	client := &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		sleeper:    sleepContext,
		newID:      uuid.NewString,
	}
	if cfg.RequestsPerSecond > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "remote")
	return client, nil
}

// Close is a no-op; the HTTP client holds no per-run resources.
func (c *Client) Close() error {
	return nil
}

// BoundsOwnCalls reports that every request carries its own check or create
// timeout. A dedup check lists all sessions and then each session's parts.
func (c *Client) BoundsOwnCalls() bool {
	return true
}

// RoomExists lists configured rooms and looks for roomID.
func (c *Client) RoomExists(ctx context.Context, roomID string) (bool, error) {
	body, err := c.post(ctx, c.cfg.CheckTimeout, "/rooms", struct{}{})
	if err != nil {
		return false, fmt.Errorf("list rooms: %w", err)
	}
	rooms, err := decodeList[roomEntry](body)
	if err != nil {
		return false, fmt.Errorf("list rooms: %w", err)
	}
	for _, room := range rooms {
		if room.id() == roomID {
			return true, nil
		}
	}
	return false, nil
}

// PartExists scans every session's parts for containerPath.
func (c *Client) PartExists(ctx context.Context, containerPath string) (bool, error) {
	sessions, err := c.listSessions(ctx)
	if err != nil {
		return false, err
	}
	for _, session := range sessions {
		if session.ID == "" {
			continue
		}
		parts, err := c.listParts(ctx, session.ID.String())
		if err != nil {
			return false, err
		}
		for _, part := range parts {
			if part.FilePath == containerPath {
				return true, nil
			}
		}
	}
	return false, nil
}

// ResolveOrCreateSession returns the existing session for the candidate's key
// or a pending ref. The server creates pending sessions when it ingests their
// first part, keeping the first writer's descriptive fields.
func (c *Client) ResolveOrCreateSession(ctx context.Context, candidate recording.Candidate) (catalog.SessionRef, error) {
	sessions, err := c.listSessions(ctx)
	if err != nil {
		return catalog.SessionRef{}, err
	}
	for _, session := range sessions {
		if session.SessionID == candidate.SessionKey {
			return catalog.SessionRef{ID: session.ID.Int64(), Key: candidate.SessionKey}, nil
		}
	}
	return catalog.SessionRef{Key: candidate.SessionKey, Pending: true}, nil
}

// CreatePart submits a FileClosed event and waits until the part is visible.
func (c *Client) CreatePart(ctx context.Context, session catalog.SessionRef, candidate recording.Candidate) error {
	key := session.Key
	if key == "" {
		key = candidate.SessionKey
	}
	correlationID := c.newID()
	ctx = services.WithRequestID(ctx, correlationID)
	event := newFileEvent(correlationID, key, candidate)

	if _, err := c.post(ctx, c.cfg.CreateTimeout, "/sessions", event); err != nil {
		return fmt.Errorf("submit %s: %w", candidate.ContainerPath, err)
	}
	logging.WithContext(ctx, c.logger).Debug("import accepted",
		logging.String("path", candidate.ContainerPath),
		logging.Bool("new_session", session.Pending),
	)
	return c.verify(ctx, candidate.ContainerPath)
}

// verify polls PartExists after an accepted create. Lookup errors count as
// not yet visible.
func (c *Client) verify(ctx context.Context, containerPath string) error {
	if err := c.sleeper(ctx, c.cfg.SettleDelay); err != nil {
		return err
	}
	logger := logging.WithContext(ctx, c.logger)
	for attempt := 0; attempt < c.cfg.VerifyAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleeper(ctx, c.cfg.VerifyDelay); err != nil {
				return err
			}
		}
		found, err := c.PartExists(ctx, containerPath)
		if err != nil {
			logger.Debug("verification lookup failed",
				logging.Int("attempt", attempt+1),
				logging.Error(err),
			)
			continue
		}
		if found {
			return nil
		}
	}
	return fmt.Errorf("%s after %d checks: %w", containerPath, c.cfg.VerifyAttempts, ErrNotVerified)
}

func (c *Client) listSessions(ctx context.Context) ([]sessionEntry, error) {
	body, err := c.post(ctx, c.cfg.CheckTimeout, "/history/list", struct{}{})
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	sessions, err := decodeList[sessionEntry](body)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (c *Client) listParts(ctx context.Context, sessionID string) ([]partEntry, error) {
	body, err := c.post(ctx, c.cfg.CheckTimeout, "/history/"+url.PathEscape(sessionID)+"/parts", struct{}{})
	if err != nil {
		return nil, fmt.Errorf("list parts of session %s: %w", sessionID, err)
	}
	parts, err := decodeList[partEntry](body)
	if err != nil {
		return nil, fmt.Errorf("list parts of session %s: %w", sessionID, err)
	}
	return parts, nil
}

type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

func (c *Client) post(ctx context.Context, timeout time.Duration, path string, payload any) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.User, c.cfg.Password)
	if id, ok := services.RequestIDFromContext(ctx); ok {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
