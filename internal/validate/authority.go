package validate

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ppiankov/symptriage/internal/model"
)

// AuthorityClassifier classifies resource-link hosts into authority tiers
type AuthorityClassifier struct {
	config       *model.AuthorityConfig
	primaryMap   map[string]bool
	secondaryMap map[string]bool
}

// NewAuthorityClassifier creates a new authority classifier
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	classifier := &AuthorityClassifier{
		config:       config,
		primaryMap:   make(map[string]bool),
		secondaryMap: make(map[string]bool),
	}

	for _, domain := range config.PrimaryDomains {
		classifier.primaryMap[strings.ToLower(domain)] = true
	}

	for _, domain := range config.SecondaryDomains {
		classifier.secondaryMap[strings.ToLower(domain)] = true
	}

	return classifier
}

// Classify classifies a URL into an authority tier
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return model.TierTertiary
	}

	host := strings.ToLower(parsed.Hostname())

	// Explicit mappings win
	if a.config.DomainMap != nil {
		if tierStr, ok := a.config.DomainMap[host]; ok {
			return model.ParseTier(tierStr)
		}
	}

	if matchesDomain(host, a.primaryMap) {
		return model.TierPrimary
	}

	if matchesDomain(host, a.secondaryMap) {
		return model.TierSecondary
	}

	// Government and academic hosts
	if strings.HasSuffix(host, ".gov") || strings.HasSuffix(host, ".edu") || strings.HasSuffix(host, ".ac.uk") {
		return model.TierPrimary
	}

	return model.TierTertiary
}

// matchesDomain reports whether host is one of domains or a subdomain of one
func matchesDomain(host string, domains map[string]bool) bool {
	if domains[host] {
		return true
	}
	for domain := range domains {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// LinkFilter returns a load-time check for resource links. Links that are not
// absolute http(s) URLs are errors; links whose host ranks below minTier are
// dropped with a warning.
func (a *AuthorityClassifier) LinkFilter(minTier model.AuthorityTier, logger *slog.Logger) func(symptom string, link model.ResourceLink) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return func(symptom string, link model.ResourceLink) (bool, error) {
		if err := CheckLinkURL(link.URL); err != nil {
			return false, err
		}
		tier := a.Classify(link.URL)
		if minTier != model.TierUnknown && tier > minTier {
			logger.Warn("dropping resource link below minimum authority",
				"symptom", symptom, "url", link.URL, "tier", tier.String(), "min", minTier.String())
			return false, nil
		}
		return true, nil
	}
}

// CheckLinkURL rejects anything but absolute http(s) URLs with a host
func CheckLinkURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid link %q: %w", rawURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid link %q: scheme must be http or https", rawURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid link %q: missing host", rawURL)
	}
	return nil
}
