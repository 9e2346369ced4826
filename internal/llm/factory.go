package llm

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/ppiankov/symptriage/internal/model"
	"github.com/ppiankov/symptriage/internal/util"
)

// maxResponseBytes bounds how much of a provider response is read
const maxResponseBytes = 1 << 20

// NewProvider creates a new provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch NormalizeName(config.Provider) {
	case "huggingface":
		return NewHuggingFaceProvider(config)

	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - augmentation disabled
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: huggingface, openai, anthropic, ollama)", config.Provider)
	}
}

// NormalizeName folds provider aliases to their canonical name
func NormalizeName(provider string) string {
	switch p := strings.ToLower(strings.TrimSpace(provider)); p {
	case "hf":
		return "huggingface"
	case "claude":
		return "anthropic"
	default:
		return p
	}
}

// CredentialEnv returns the environment variable holding the provider credential
func CredentialEnv(provider string) string {
	switch NormalizeName(provider) {
	case "huggingface":
		return "HF_TOKEN"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// ApplyEnv fills the API key and Ollama base URL from the environment when unset
func ApplyEnv(cfg *model.AugmentConfig) {
	if cfg.APIKey == "" {
		if env := CredentialEnv(cfg.Provider); env != "" {
			cfg.APIKey = os.Getenv(env)
		}
	}
	if NormalizeName(cfg.Provider) == "ollama" && cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
}

// ConfigFromModel converts the runtime configuration to llm.Config
func ConfigFromModel(aug model.AugmentConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:  NormalizeName(aug.Provider),
		Model:     aug.Model,
		APIKey:    aug.APIKey,
		BaseURL:   aug.BaseURL,
		Timeout:   aug.Timeout,
		MaxTokens: aug.MaxTokens,
		UserAgent: httpCfg.UserAgent,
		Proxy: util.ProxySettings{
			HTTPProxy:  httpCfg.HTTPProxy,
			HTTPSProxy: httpCfg.HTTPSProxy,
			NoProxy:    httpCfg.NoProxy,
		},
	}
}

func newHTTPClient(config Config) *http.Client {
	return util.NewHTTPClient(config.timeout(DefaultConfig().Timeout), config.Proxy)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
