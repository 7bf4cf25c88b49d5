package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/SiriusScan/redis-tools/internal/endpoint"
)

// ErrNoDefaultURI is returned by Provider.Default when no default address is configured.
var ErrNoDefaultURI = errors.New("no default store address configured")

// DialFunc opens a live Store for an endpoint.
type DialFunc func(ctx context.Context, cfg Config, ep endpoint.Endpoint) (Store, error)

// Dial creates a client for ep with the configured driver and checks it with a PING.
func Dial(ctx context.Context, cfg Config, ep endpoint.Endpoint) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case DriverValkey, "":
		st, err = newValkeyStore(cfg, ep)
	case DriverGoRedis:
		st, err = newGoRedisStore(cfg, ep)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := checkAlive(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// checkAlive pings st and closes it when the ping fails.
func checkAlive(ctx context.Context, st Store) error {
	err := st.Ping(ctx)
	if err == nil {
		return nil
	}
	if cerr := st.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("failed to close store: %w", cerr))
	}
	return err
}

// Provider hands out one long-lived Store per normalized address. Stores are
// opened on first use and kept until Close.
type Provider struct {
	cfg    Config
	logger *zap.Logger
	dial   DialFunc
	conns  map[string]Store
}

// NewProvider creates a Provider that dials with Dial.
func NewProvider(cfg Config, logger *zap.Logger) *Provider {
	return &Provider{
		cfg:    cfg,
		logger: logger,
		dial:   Dial,
		conns:  make(map[string]Store),
	}
}

// SetDialer replaces the function used to open new stores.
func (p *Provider) SetDialer(dial DialFunc) {
	p.dial = dial
}

// Open returns the Store for ep, dialing it if this is the first request.
func (p *Provider) Open(ctx context.Context, ep endpoint.Endpoint) (Store, error) {
	uri := ep.URI()
	if st, ok := p.conns[uri]; ok {
		return st, nil
	}

	st, err := p.dial(ctx, p.cfg, ep)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Store connection opened",
		zap.String("addr", ep.Addr()),
		zap.Int("db", ep.DB),
		zap.String("driver", p.cfg.Driver))
	p.conns[uri] = st
	return st, nil
}

// Default returns the Store and endpoint of the configured default address.
func (p *Provider) Default(ctx context.Context) (Store, endpoint.Endpoint, error) {
	if p.cfg.URI == "" {
		return nil, endpoint.Endpoint{}, ErrNoDefaultURI
	}
	ep, err := endpoint.Parse(p.cfg.URI)
	if err != nil {
		return nil, endpoint.Endpoint{}, err
	}
	st, err := p.Open(ctx, ep)
	if err != nil {
		return nil, endpoint.Endpoint{}, err
	}
	return st, ep, nil
}

// Close closes every store opened so far.
func (p *Provider) Close() error {
	var errs []error
	for uri, st := range p.conns {
		if err := st.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", uri, err))
		}
		delete(p.conns, uri)
	}
	return errors.Join(errs...)
}
