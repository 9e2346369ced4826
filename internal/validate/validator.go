package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/symptriage/internal/model"
	"github.com/ppiankov/symptriage/internal/util"
	"github.com/ppiankov/symptriage/internal/worker"
)

const checkMaxRetries = 3

// checkSleepFunc is the sleep function used between retries (injectable for tests)
var checkSleepFunc = func(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// LinkChecker verifies that lexicon resource links are reachable
type LinkChecker struct {
	httpClient *http.Client
	maxWorkers int
	userAgent  string
	authority  *AuthorityClassifier
	limiter    *worker.Limiter
	rps        float64
	robots     *util.RobotsChecker // nil when robots.txt is ignored
	paced      sync.Map            // hosts already slowed to their Crawl-delay
}

// NewLinkChecker creates a new link checker from the runtime configuration
func NewLinkChecker(cfg *model.Config) *LinkChecker {
	maxWorkers := cfg.Concurrency.Workers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	client := util.NewHTTPClient(cfg.HTTP.Timeout, util.ProxySettings{
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	})
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= 3 {
			return fmt.Errorf("stopped after 3 redirects")
		}
		return nil
	}

	c := &LinkChecker{
		httpClient: client,
		maxWorkers: maxWorkers,
		userAgent:  cfg.HTTP.UserAgent,
		authority:  NewAuthorityClassifier(&cfg.Authority),
		limiter:    worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		rps:        cfg.RateLimiting.RequestsPerSecond,
	}
	if cfg.HTTP.RespectRobots {
		c.robots = util.NewRobotsChecker(client, cfg.HTTP.UserAgent)
	}
	return c
}

type linkRef struct {
	symptom string
	url     string
}

// Check checks every link of every entry concurrently. Results follow table order.
func (c *LinkChecker) Check(ctx context.Context, entries []model.SymptomEntry) []model.LinkCheckResult {
	var refs []linkRef
	for _, e := range entries {
		for _, l := range e.Links {
			refs = append(refs, linkRef{symptom: e.Name, url: l.URL})
		}
	}
	if len(refs) == 0 {
		return []model.LinkCheckResult{}
	}

	results := make([]model.LinkCheckResult, len(refs))
	var wg sync.WaitGroup

	semaphore := make(chan struct{}, c.maxWorkers)

	for i, ref := range refs {
		wg.Add(1)
		go func(idx int, r linkRef) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				results[idx] = model.LinkCheckResult{
					Symptom:   r.symptom,
					URL:       r.url,
					Authority: c.authority.Classify(r.url),
					Error:     "context cancelled",
				}
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			results[idx] = c.checkWithRetry(ctx, r)
		}(i, ref)
	}

	wg.Wait()

	return results
}

// checkSingle checks one link with HEAD, falling back to GET when HEAD is refused
func (c *LinkChecker) checkSingle(ctx context.Context, ref linkRef) model.LinkCheckResult {
	result := model.LinkCheckResult{
		Symptom:   ref.symptom,
		URL:       ref.url,
		Authority: c.authority.Classify(ref.url),
	}

	if err := CheckLinkURL(ref.url); err != nil {
		result.Error = err.Error()
		result.IsDead = true
		return result
	}

	host, hostErr := worker.HostKey(ref.url)

	if c.robots != nil {
		allowed, delay, err := c.robots.Allowed(ctx, ref.url)
		if err == nil && !allowed {
			result.Error = "disallowed by robots.txt"
			return result
		}
		if hostErr == nil {
			c.applyCrawlDelay(host, delay)
		}
	}

	if hostErr == nil {
		if err := c.limiter.Wait(ctx, host); err != nil {
			result.Error = fmt.Sprintf("rate limit: %v", err)
			return result
		}
	}

	resp, err := c.do(ctx, http.MethodHead, ref.url)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		_ = resp.Body.Close()
		resp, err = c.do(ctx, http.MethodGet, ref.url)
	}
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.IsDead = ctx.Err() == nil
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.IsAccessible = true
	} else if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		result.IsDead = true
	}

	if final := resp.Request.URL.String(); final != ref.url {
		result.RedirectURL = final
	}

	return result
}

// applyCrawlDelay slows host to one request per delay. It only ever lowers
// the configured rate and runs once per host.
func (c *LinkChecker) applyCrawlDelay(host string, delay time.Duration) {
	if delay <= 0 {
		return
	}
	rps := 1 / delay.Seconds()
	if rps >= c.rps {
		return
	}
	if _, done := c.paced.LoadOrStore(host, struct{}{}); done {
		return
	}
	c.limiter.SetRate(host, rps, 1)
}

func (c *LinkChecker) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}

// checkWithRetry retries transient failures with exponential backoff
func (c *LinkChecker) checkWithRetry(ctx context.Context, ref linkRef) model.LinkCheckResult {
	var result model.LinkCheckResult
	for attempt := 0; attempt < checkMaxRetries; attempt++ {
		result = c.checkSingle(ctx, ref)
		if !isRetryable(result) || ctx.Err() != nil {
			return result
		}
		if attempt < checkMaxRetries-1 {
			checkSleepFunc(ctx, time.Duration(1<<uint(attempt))*time.Second)
		}
	}
	return result
}

// isRetryable returns true for results that indicate transient failures
func isRetryable(result model.LinkCheckResult) bool {
	if result.StatusCode >= 500 && result.StatusCode < 600 {
		return true
	}
	if result.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if result.Error != "" {
		s := strings.ToLower(result.Error)
		return strings.Contains(s, "timeout") ||
			strings.Contains(s, "connection refused") ||
			strings.Contains(s, "connection reset")
	}
	return false
}
