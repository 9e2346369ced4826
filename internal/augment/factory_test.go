package augment

import (
	"testing"

	"github.com/ppiankov/symptriage/internal/llm"
	"github.com/ppiankov/symptriage/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_DisabledWithoutCredential(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Augment.APIKey = ""

	a, err := New(cfg, Deps{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := a.(NullAugmenter); !ok {
		t.Errorf("Expected NullAugmenter, got %T", a)
	}
}

func TestNew_NoProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Augment.Provider = ""
	cfg.Augment.APIKey = "secret"

	a, err := New(cfg, Deps{Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := a.(NullAugmenter); !ok {
		t.Errorf("Expected NullAugmenter, got %T", a)
	}
}

func TestNew_ConfiguredProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Augment.Provider = "hf"
	cfg.Augment.APIKey = "hf_test"

	a, err := New(cfg, Deps{Logger: quietLogger(), Labels: []string{"fever"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	remote, ok := a.(*RemoteAugmenter)
	if !ok {
		t.Fatalf("Expected *RemoteAugmenter, got %T", a)
	}
	if remote.provider.Name() != "huggingface" {
		t.Errorf("Expected huggingface provider, got %s", remote.provider.Name())
	}
	if remote.cache == nil {
		t.Error("Expected default memory cache when caching is enabled")
	}
	if remote.limiter == nil {
		t.Error("Expected default limiter")
	}
	if remote.opts.Threshold != cfg.Augment.Threshold || remote.opts.Timeout != cfg.Augment.Timeout {
		t.Errorf("Options not taken from config: %+v", remote.opts)
	}
}

func TestNew_InjectedProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Augment.Provider = ""
	cfg.Cache.Enabled = false

	a, err := New(cfg, Deps{Provider: &stubProvider{resp: &llm.ScoreResponse{}}, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	remote, ok := a.(*RemoteAugmenter)
	if !ok {
		t.Fatalf("Expected *RemoteAugmenter, got %T", a)
	}
	if remote.cache != nil {
		t.Error("Expected no cache when caching is disabled")
	}
}

func TestMetrics_Hooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()

	hooks.OnCall("stub", 0.2, false, nil)
	hooks.OnCall("stub", 0, true, nil)
	hooks.OnOutcome("stub", OutcomeUpgraded)
	hooks.OnOutcome("stub", OutcomeUpgraded)

	if got := testutil.ToFloat64(m.CallsTotal.WithLabelValues("stub", "success")); got != 1 {
		t.Errorf("success calls = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CallsTotal.WithLabelValues("stub", "cache_hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.OutcomesTotal.WithLabelValues("stub", string(OutcomeUpgraded))); got != 2 {
		t.Errorf("upgraded outcomes = %v, want 2", got)
	}
}
