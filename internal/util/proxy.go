package util

import (
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
)

// ProxySettings are explicit proxy overrides; all empty means use the environment
type ProxySettings struct {
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewProxyFunc creates a proxy function based on configuration.
// If no proxy URLs are provided, falls back to HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
func NewProxyFunc(p ProxySettings) func(*http.Request) (*url.URL, error) {
	if p.HTTPProxy == "" && p.HTTPSProxy == "" {
		return http.ProxyFromEnvironment
	}

	cfg := httpproxy.Config{
		HTTPProxy:  p.HTTPProxy,
		HTTPSProxy: p.HTTPSProxy,
		NoProxy:    p.NoProxy,
	}
	if cfg.HTTPSProxy == "" {
		cfg.HTTPSProxy = cfg.HTTPProxy
	}
	proxyURL := cfg.ProxyFunc()

	return func(req *http.Request) (*url.URL, error) {
		return proxyURL(req.URL)
	}
}

// NewHTTPClient returns a client with its own transport, the given overall
// timeout and proxy settings. A zero timeout leaves the client unbounded.
func NewHTTPClient(timeout time.Duration, p ProxySettings) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = NewProxyFunc(p)
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
