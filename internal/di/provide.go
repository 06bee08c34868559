// Package di wires a roleguard instance together from its config.
package di

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/TwigBush/roleguard/internal/authz"
	"github.com/TwigBush/roleguard/internal/config"
	"github.com/TwigBush/roleguard/internal/metrics"
	"github.com/TwigBush/roleguard/internal/policy"
	"github.com/TwigBush/roleguard/internal/token"
)

type Deps struct {
	Table   *policy.Table
	Grants  token.Grants
	Guard   *authz.Guard
	Metrics *metrics.Metrics

	closers []func() error
}

func (d *Deps) Close() error {
	var errs []error
	for _, c := range d.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// Provide builds the policy table, the grant backend and the guard.
func Provide(cfg *config.Config, logger *slog.Logger) (*Deps, error) {
	if logger == nil {
		logger = slog.Default()
	}
	table, err := policy.Load(cfg.Operations)
	if err != nil {
		return nil, err
	}

	d := &Deps{Table: table, Metrics: metrics.New()}
	grants, closer, err := ProvideGrants(cfg, logger)
	if err != nil {
		return nil, err
	}
	if closer != nil {
		d.closers = append(d.closers, closer)
	}
	d.Grants = grants

	d.Guard, err = authz.NewGuard(authz.Options{
		Requirements: table,
		Tokens:       token.Provider{Grants: grants},
		Sink:         authz.SlogSink{Logger: logger},
		Recorder:     d.Metrics,
	})
	if err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

// ProvideGrants picks the backend named by grants.backend and, when a Redis
// address is set, puts the cache in front of it.
func ProvideGrants(cfg *config.Config, logger *slog.Logger) (token.Grants, func() error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	claims := token.NewClaims(cfg.ClientID)

	var g token.Grants
	switch cfg.Grants.Backend {
	case "", config.BackendClaims:
		g = claims
	case config.BackendIntrospect:
		in, err := token.NewIntrospector(token.IntrospectorConfig{
			URL:          cfg.Grants.Introspect.URL,
			ClientID:     cfg.Grants.Introspect.ClientID,
			ClientSecret: cfg.Grants.Introspect.ClientSecret,
			Timeout:      cfg.Grants.Introspect.Timeout,
			RoleClientID: cfg.ClientID,
		})
		if err != nil {
			return nil, nil, err
		}
		g = in
	case config.BackendFGA:
		f, err := token.NewFGA(token.FGAConfig{
			APIURL:   cfg.Grants.FGA.APIURL,
			StoreID:  cfg.Grants.FGA.StoreID,
			APIToken: cfg.Grants.FGA.APIToken,
			ModelID:  cfg.Grants.FGA.ModelID,
			UserType: cfg.Grants.FGA.UserType,
			RoleType: cfg.Grants.FGA.RoleType,
			Relation: cfg.Grants.FGA.Relation,
		}, claims)
		if err != nil {
			return nil, nil, err
		}
		g = f
	default:
		return nil, nil, fmt.Errorf("unknown_grants_backend: %q", cfg.Grants.Backend)
	}

	if cfg.Grants.Cache.RedisAddr == "" {
		return g, nil, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Grants.Cache.RedisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// the cache falls through on Redis errors, so a cold Redis is not fatal
		logger.Warn("grant_cache_unreachable", "addr", cfg.Grants.Cache.RedisAddr, "err", err)
	}
	return token.NewCache(g, rdb, cfg.Grants.Cache.TTL, logger), rdb.Close, nil
}
