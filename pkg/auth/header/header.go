package header

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/netip"
	"net/mail"
	"strings"

	"github.com/adrianliechti/ingester/pkg/auth"
)

var _ auth.Provider = (*Provider)(nil)

var ErrUntrusted = errors.New("identity headers from untrusted address")

// Provider trusts the identity headers set by an authenticating reverse proxy.
type Provider struct {
	userHeader  string
	emailHeader string

	// empty trusts every peer
	trusted []netip.Prefix
}

type Option func(*Provider)

func WithUserHeader(val string) Option {
	return func(p *Provider) {
		p.userHeader = val
	}
}

func WithEmailHeader(val string) Option {
	return func(p *Provider) {
		p.emailHeader = val
	}
}

// WithTrustedNetworks accepts the headers only from peers in one of the networks.
func WithTrustedNetworks(networks ...netip.Prefix) Option {
	return func(p *Provider) {
		p.trusted = append(p.trusted, networks...)
	}
}

func New(opts ...Option) (*Provider, error) {
	p := &Provider{
		userHeader:  "X-Forwarded-User",
		emailHeader: "X-Forwarded-Email",
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

func (p *Provider) Authenticate(ctx context.Context, r *http.Request) (context.Context, error) {
	if !p.trustedPeer(r.RemoteAddr) {
		return ctx, ErrUntrusted
	}

	user := strings.TrimSpace(r.Header.Get(p.userHeader))
	email := strings.TrimSpace(r.Header.Get(p.emailHeader))

	if user == "" && email == "" {
		return ctx, errors.New("no user information found in headers")
	}

	if email == "" && isEmail(user) {
		email = user
	}

	if user != "" {
		ctx = context.WithValue(ctx, auth.UserContextKey, user)
	}

	if email != "" {
		ctx = context.WithValue(ctx, auth.EmailContextKey, email)
	}

	return ctx, nil
}

func (p *Provider) trustedPeer(remoteAddr string) bool {
	if len(p.trusted) == 0 {
		return true
	}

	host, _, err := net.SplitHostPort(remoteAddr)

	if err != nil {
		host = remoteAddr
	}

	addr, err := netip.ParseAddr(host)

	if err != nil {
		return false
	}

	addr = addr.Unmap()

	for _, prefix := range p.trusted {
		if prefix.Contains(addr) {
			return true
		}
	}

	return false
}

func isEmail(val string) bool {
	addr, err := mail.ParseAddress(val)
	return err == nil && addr.Address == val && strings.Contains(val, "@")
}
