package janus

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/pickemhq/pickem-backend/internal/domain/user"
	"github.com/pickemhq/pickem-backend/internal/platform/resilience"
	"github.com/pickemhq/pickem-backend/internal/usecase"
)

const (
	maxIntrospectBody = 1 << 20
	defaultCacheTTL   = 30 * time.Second
)

var errJanusTransient = errors.New("janus transient failure")

// Client verifies access tokens against the janus introspection endpoint.
// Successful verdicts are cached briefly so a burst of requests from one
// user does not hammer the account service.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	adminKey      string
	logger        *slog.Logger

	breaker *resilience.CircuitBreaker
	flight  resilience.SingleFlight

	cacheTTL time.Duration
	cacheMu  sync.Mutex
	cache    map[string]cachedPrincipal

	now func() time.Time
}

type cachedPrincipal struct {
	principal user.Principal
	expiresAt time.Time
}

func NewClient(httpClient *http.Client, baseURL, introspectPath, adminKey string, breakerCfg resilience.CircuitBreakerConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}

	var breaker *resilience.CircuitBreaker
	if breakerCfg.Enabled {
		breakerCfg = resilience.NormalizeCircuitBreakerConfig(breakerCfg)
		breaker = resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq)
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: buildURL(baseURL, introspectPath),
		adminKey:      adminKey,
		logger:        logger,
		breaker:       breaker,
		cacheTTL:      defaultCacheTTL,
		cache:         make(map[string]cachedPrincipal),
		now:           time.Now,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	key := hashToken(token)
	if principal, ok := c.cachedVerdict(key); ok {
		return principal, nil
	}

	result, err, _ := c.flight.Do(key, func() (any, error) {
		return c.introspect(ctx, token)
	})
	if err != nil {
		return user.Principal{}, err
	}

	principal := result.(user.Principal)
	c.storeVerdict(key, principal)

	return principal, nil
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			return user.Principal{}, fmt.Errorf("%w: janus circuit open", usecase.ErrDependencyUnavailable)
		}
	}

	principal, err := c.introspectOnce(ctx, token)
	if c.breaker != nil {
		if errors.Is(err, errJanusTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}

	return principal, err
}

func (c *Client) introspectOnce(ctx context.Context, token string) (user.Principal, error) {
	encoded, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, fmt.Errorf("marshal introspect request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.introspectURL, bytes.NewReader(encoded))
	if err != nil {
		return user.Principal{}, fmt.Errorf("create introspect request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-admin-key", c.adminKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: request introspection to janus: %v", errJanusTransient, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxIntrospectBody))
	if err != nil {
		return user.Principal{}, fmt.Errorf("read introspect response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case resp.StatusCode == http.StatusForbidden:
		// A forbidden verdict means our admin key was rejected, which is a
		// deployment problem rather than a caller problem.
		return user.Principal{}, fmt.Errorf("%w: janus rejected admin credentials", usecase.ErrDependencyUnavailable)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.WarnContext(ctx, "janus introspection server error",
			"status_code", resp.StatusCode,
		)
		return user.Principal{}, fmt.Errorf("%w: janus introspection status %d", errJanusTransient, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return user.Principal{}, fmt.Errorf("janus introspection failed with status %d", resp.StatusCode)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, fmt.Errorf("unmarshal introspect response: %w", err)
	}

	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, errors.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		ID:         decoded.UserID,
		Name:       decoded.Name,
		Email:      decoded.Email,
		PictureURL: decoded.PictureURL,
	}, nil
}

func (c *Client) cachedVerdict(key string) (user.Principal, bool) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	entry, ok := c.cache[key]
	if !ok || c.now().After(entry.expiresAt) {
		delete(c.cache, key)
		return user.Principal{}, false
	}
	return entry.principal, true
}

func (c *Client) storeVerdict(key string, principal user.Principal) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache[key] = cachedPrincipal{
		principal: principal,
		expiresAt: c.now().Add(c.cacheTTL),
	}
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active     bool   `json:"active"`
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	PictureURL string `json:"picture_url"`
}
