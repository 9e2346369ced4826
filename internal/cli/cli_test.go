package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/ppiankov/symptriage/internal/model"
	"github.com/ppiankov/symptriage/internal/worker"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("HF_TOKEN", "")

	v := viper.New()
	if err := configureViper(v, ""); err != nil {
		t.Fatalf("configureViper error: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}

	want := model.DefaultConfig()
	if cfg.Augment.Timeout != want.Augment.Timeout || cfg.Augment.Threshold != want.Augment.Threshold {
		t.Errorf("augment defaults not applied: %+v", cfg.Augment)
	}
	if cfg.Server.Addr != want.Server.Addr {
		t.Errorf("server.addr = %q, want %q", cfg.Server.Addr, want.Server.Addr)
	}
	if cfg.Augment.Configured() {
		t.Error("Expected augmentation to be off without a credential")
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf_test")
	t.Setenv("SYMPTRIAGE_AUGMENT_THRESHOLD", "0.8")

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `augment:
  provider: hf
  timeout: 3s
  threshold: 0.5
concurrency:
  workers: 2
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	v := viper.New()
	if err := configureViper(v, path); err != nil {
		t.Fatalf("configureViper error: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}

	if cfg.Augment.Timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s from file", cfg.Augment.Timeout)
	}
	if cfg.Augment.Threshold != 0.8 {
		t.Errorf("threshold = %v, want 0.8 from env", cfg.Augment.Threshold)
	}
	if cfg.Concurrency.Workers != 2 {
		t.Errorf("workers = %d, want 2", cfg.Concurrency.Workers)
	}
	if cfg.Augment.APIKey != "hf_test" || !cfg.Augment.Configured() {
		t.Errorf("Expected HF_TOKEN to enable augmentation, got %+v", cfg.Augment)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("augment:\n  timeout: 2m\n  threshold: 3\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	v := viper.New()
	if err := configureViper(v, path); err != nil {
		t.Fatalf("configureViper error: %v", err)
	}
	_, err := loadConfig(v)
	if err == nil {
		t.Fatal("Expected validation error")
	}
	for _, want := range []string{"augment.timeout", "augment.threshold"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Expected error to mention %s, got %v", want, err)
		}
	}
}

func TestConfigureViper_MissingExplicitFile(t *testing.T) {
	v := viper.New()
	if err := configureViper(v, filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing explicit config file")
	}
}

func TestReadDescription(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		stdin string
		want  string
	}{
		{"args joined", []string{"severe", "headache"}, "", "severe headache"},
		{"stdin", nil, "mild sore throat\n", "mild sore throat\n"},
		{"dash reads stdin", []string{"-"}, "cough", "cough"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readDescription(tt.args, strings.NewReader(tt.stdin))
			if err != nil {
				t.Fatalf("readDescription error: %v", err)
			}
			if got != tt.want {
				t.Errorf("readDescription = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWriteBatch(t *testing.T) {
	outcomes := []*worker.TriageOutcome{
		{Index: 0, Text: "cough", Result: &model.TriageResult{Urgency: model.UrgencyRoutine, Source: model.SourceRuleBased}},
		{Index: 1, Text: "chest pain", Result: &model.TriageResult{Urgency: model.UrgencyUrgent, Source: model.SourceRuleBased}},
		{Index: 2, Text: "fever", Error: errors.New("context deadline exceeded")},
	}

	var buf bytes.Buffer
	counts, failures, err := writeBatch(&buf, outcomes)
	if err != nil {
		t.Fatalf("writeBatch error: %v", err)
	}
	if failures != 1 || counts[model.UrgencyUrgent] != 1 || counts[model.UrgencyRoutine] != 1 {
		t.Errorf("counts = %v, failures = %d", counts, failures)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 JSON lines, got %d", len(lines))
	}
	var rec struct {
		Index  int    `json:"index"`
		Error  string `json:"error"`
		Result *struct {
			Urgency string `json:"urgency"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("line 2 is not JSON: %v", err)
	}
	if rec.Index != 2 || rec.Result == nil || rec.Result.Urgency != "URGENT" {
		t.Errorf("unexpected record %+v", rec)
	}
	if !strings.Contains(lines[2], `"error":"context deadline exceeded"`) {
		t.Errorf("Expected error record, got %s", lines[2])
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig error: %v", err)
	}
	if err := writeDefaultConfig(path); err == nil {
		t.Error("Expected error when config already exists")
	}

	// The written file must load back to the defaults
	v := viper.New()
	if err := configureViper(v, path); err != nil {
		t.Fatalf("configureViper error: %v", err)
	}
	cfg, err := loadConfig(v)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Augment.Timeout != model.DefaultConfig().Augment.Timeout {
		t.Errorf("round-tripped timeout = %v", cfg.Augment.Timeout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if strings.Contains(string(data), "api_key") {
		t.Error("Default config must not contain an api_key field")
	}
}
