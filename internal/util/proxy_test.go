package util

import (
	"net/http"
	"testing"
	"time"
)

func TestNewProxyFunc_Explicit(t *testing.T) {
	proxy := NewProxyFunc(ProxySettings{
		HTTPProxy: "http://proxy.internal:3128",
		NoProxy:   "localhost,.corp.example",
	})

	tests := []struct {
		url  string
		want string
	}{
		{"http://api.example.com/x", "http://proxy.internal:3128"},
		{"https://api.example.com/x", "http://proxy.internal:3128"},
		{"https://svc.corp.example/x", ""},
		{"http://localhost:11434/api/tags", ""},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, tt.url, nil)
			got, err := proxy(req)
			if err != nil {
				t.Fatalf("proxy(%s) error: %v", tt.url, err)
			}
			if tt.want == "" {
				if got != nil {
					t.Errorf("Expected no proxy for %s, got %s", tt.url, got)
				}
				return
			}
			if got == nil || got.String() != tt.want {
				t.Errorf("proxy(%s) = %v, want %s", tt.url, got, tt.want)
			}
		})
	}
}

func TestNewProxyFunc_HTTPSOverride(t *testing.T) {
	proxy := NewProxyFunc(ProxySettings{
		HTTPProxy:  "http://plain:3128",
		HTTPSProxy: "http://secure:3129",
	})

	req, _ := http.NewRequest(http.MethodGet, "https://api.openai.com/v1/models", nil)
	got, err := proxy(req)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got == nil || got.Host != "secure:3129" {
		t.Errorf("Expected HTTPS proxy, got %v", got)
	}
}

func TestNewHTTPClient(t *testing.T) {
	c := NewHTTPClient(3*time.Second, ProxySettings{})
	if c.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", c.Timeout)
	}
	if _, ok := c.Transport.(*http.Transport); !ok {
		t.Errorf("Expected *http.Transport, got %T", c.Transport)
	}
}
