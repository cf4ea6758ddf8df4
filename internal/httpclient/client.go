// Package httpclient builds the HTTP client used to download remote
// fixtures. Unless told otherwise it refuses loopback, private, link-local
// and reserved destinations, checking the URL, every redirect and every
// address the resolver returns.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teranos/uritemplates/errors"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 10
)

// ErrBlocked marks requests refused because of their destination.
var ErrBlocked = errors.New("destination blocked")

// Options configures New. Zero values select the defaults.
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	AllowPrivate bool // Permit loopback and private networks (local mirrors, tests)
}

// Client is an http.Client that validates destinations.
type Client struct {
	*http.Client
	maxRedirects int
	allowPrivate bool
}

// New returns a Client configured by opts.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	c := &Client{
		Client:       &http.Client{Timeout: opts.Timeout},
		maxRedirects: opts.MaxRedirects,
		allowPrivate: opts.AllowPrivate,
	}

	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= c.maxRedirects {
			return errors.Newf("stopped after %d redirects", c.maxRedirects)
		}
		if err := c.check(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	if !c.allowPrivate {
		dialer := &net.Dialer{Timeout: opts.Timeout, KeepAlive: 30 * time.Second}
		c.Transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, errors.Wrapf(err, "invalid address %q", addr)
				}
				ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
				if err != nil {
					return nil, errors.Wrapf(err, "failed to resolve host %q", host)
				}
				for _, ip := range ips {
					if isPrivateIP(ip) {
						return nil, errors.Wrapf(ErrBlocked, "%s resolves to private address %s", host, ip)
					}
				}
				// dial the checked address so a second lookup cannot change it
				return dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].String(), port))
			},
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		}
	}
	return c
}

// Check parses raw and reports whether the client would fetch it.
func (c *Client) Check(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid URL %q", raw)
	}
	if err := c.check(u); err != nil {
		return nil, err
	}
	return u, nil
}

func (c *Client) check(u *url.URL) error {
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return errors.Wrapf(ErrBlocked, "scheme %q not allowed", u.Scheme)
	}
	if u.User != nil {
		return errors.Wrap(ErrBlocked, "URL carries credentials")
	}
	host := u.Hostname()
	if host == "" {
		return errors.Newf("URL %q has no host", u.String())
	}
	if c.allowPrivate {
		return nil
	}
	if isLocalhost(host) {
		return errors.Wrapf(ErrBlocked, "localhost access blocked: %s", host)
	}
	if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
		return errors.Wrapf(ErrBlocked, "private address blocked: %s", host)
	}
	return nil
}

// Get checks raw and fetches it.
func (c *Client) Get(ctx context.Context, raw string) (*http.Response, error) {
	u, err := c.Check(raw)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errors.Wrapf(err, "build request for %s", raw)
	}
	return c.Do(req)
}

// Do checks the request URL before sending it.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.check(req.URL); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

var blockedV4 = []*net.IPNet{
	cidr("0.0.0.0/8"),
	cidr("10.0.0.0/8"),
	cidr("100.64.0.0/10"), // carrier-grade NAT
	cidr("127.0.0.0/8"),
	cidr("169.254.0.0/16"),
	cidr("172.16.0.0/12"),
	cidr("192.168.0.0/16"),
	cidr("224.0.0.0/4"),
	cidr("240.0.0.0/4"),
}

var blockedV6 = []*net.IPNet{
	cidr("fc00::/7"),
	cidr("fec0::/10"),
	cidr("2001:db8::/32"),
}

func cidr(s string) *net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return n
}

func isPrivateIP(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		for _, n := range blockedV4 {
			if n.Contains(ip4) {
				return true
			}
		}
		return false
	}
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, n := range blockedV6 {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func isLocalhost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == "localhost" || host == "localhost.localdomain" || strings.HasSuffix(host, ".localhost")
}
