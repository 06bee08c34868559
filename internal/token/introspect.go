package token

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

	"github.com/TwigBush/roleguard/internal/authz"
	"github.com/TwigBush/roleguard/internal/types"
	"github.com/TwigBush/roleguard/internal/version"
)

// ErrIntrospection means the introspection endpoint could not give an answer.
var ErrIntrospection = errors.New("token introspection failed")

// IntrospectorConfig configures an RFC 7662 introspection client.
type IntrospectorConfig struct {
	URL          string
	ClientID     string // credentials roleguard presents to the endpoint
	ClientSecret string
	Timeout      time.Duration
	RoleClientID string // namespace for unqualified role names
	HTTPClient   *http.Client
}

// Introspector asks the authorization server which roles a token carries.
type Introspector struct {
	url          string
	clientID     string
	clientSecret string
	timeout      time.Duration
	roleClientID string
	hc           *http.Client
}

func NewIntrospector(cfg IntrospectorConfig) (*Introspector, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("introspect_url: invalid %q", cfg.URL)
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Introspector{
		url:          u.String(),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		timeout:      cfg.Timeout,
		roleClientID: cfg.RoleClientID,
		hc:           hc,
	}, nil
}

func (i *Introspector) Grant(ctx context.Context, raw string) (*Grant, error) {
	reqCtx := ctx
	if i.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	form := url.Values{
		"token":           {raw},
		"token_type_hint": {"access_token"},
	}
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, i.url, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("introspect_request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if i.clientID != "" {
		req.SetBasicAuth(url.QueryEscape(i.clientID), url.QueryEscape(i.clientSecret))
	}

	resp, err := i.hc.Do(req)
	if err != nil {
		// Our own timeout is a backend failure; the caller's is an abort.
		if ctx.Err() == nil && reqCtx.Err() != nil {
			return nil, fmt.Errorf("%w: no answer within %s", ErrIntrospection, i.timeout)
		}
		return nil, fmt.Errorf("introspect_request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: status %d", ErrIntrospection, resp.StatusCode)
	}

	var res types.IntrospectionResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrIntrospection, err)
	}
	if !res.Active {
		return nil, fmt.Errorf("%w: inactive", authz.ErrTokenRejected)
	}
	return newGrant(res.Sub, i.roleClientID, res.RealmAccess.Roles, res.Roles, res.ResourceAccess, res.Exp), nil
}
