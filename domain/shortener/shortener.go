package shortener

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/prasetyowira/qrlink/constant"
	"github.com/prasetyowira/qrlink/domain/payload"
	"github.com/prasetyowira/qrlink/infrastructure/logger"
	"github.com/prasetyowira/qrlink/infrastructure/metrics"
)

// Link is a long URL and the short URL the provider issued for it
type Link struct {
	ID        uint      `json:"-"`
	LongURL   string    `json:"long_url"`
	ShortURL  string    `json:"short_url"`
	Requests  uint      `json:"requests"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ErrLinkNotFound is returned by a Repository with no history for a long URL
var ErrLinkNotFound = errors.New("link not found")

// Client calls the shortening provider
type Client interface {
	Shorten(ctx context.Context, longURL string) (string, error)
}

// Repository defines the interface for link history persistence
type Repository interface {
	Record(ctx context.Context, link *Link) error
	FindByLongURL(ctx context.Context, longURL string) (*Link, error)
	ListRecent(ctx context.Context, limit int) ([]*Link, error)
}

// UpstreamError is a failure reported by the shortening provider, either as
// a non-2xx status or as an "Error:" body.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("shortening provider returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("shortening provider returned status %d: %s", e.StatusCode, e.Body)
}

// Options tunes outbound calls and short URL reuse
type Options struct {
	// Rate is outbound calls per second; zero or less disables limiting.
	Rate    float64
	Burst   int
	// TTL is how long a short URL is reused without calling the provider.
	// Zero or less disables reuse.
	TTL     time.Duration
	// Timeout bounds the rate limiter wait plus the provider call. Zero
	// means no bound beyond the client's own.
	Timeout time.Duration
}

// Service represents the domain service for URL shortening
type Service struct {
	client  Client
	repo    Repository
	limiter *rate.Limiter
	group   singleflight.Group
	ttl     time.Duration
	timeout time.Duration
	// links is nil when reuse is disabled
	links   *ttlcache.Cache[string, string]
	metrics *metrics.Metrics
}

type fetchResult struct {
	link   *Link
	// reused is set when the link came from history instead of the provider
	reused bool
}

// NewService creates a new shortener service. Close stops the cache janitor.
func NewService(client Client, repo Repository, m *metrics.Metrics, opts Options) *Service {
	limit := rate.Limit(opts.Rate)
	if opts.Rate <= 0 {
		limit = rate.Inf
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	var links *ttlcache.Cache[string, string]
	if opts.TTL > 0 {
		links = ttlcache.New(
			ttlcache.WithTTL[string, string](opts.TTL),
		)
		go links.Start()
	}

	logger.Debug("Creating shortener service", logger.LoggerInfo{
		ContextFunction: constant.CtxDomain,
		Data: map[string]interface{}{
			constant.DataService:   "shortener",
			constant.DataRateLimit: opts.Rate,
			constant.DataTTL:       opts.TTL.String(),
		},
	})

	return &Service{
		client:  client,
		repo:    repo,
		limiter: rate.NewLimiter(limit, burst),
		ttl:     opts.TTL,
		timeout: opts.Timeout,
		links:   links,
		metrics: m,
	}
}

// Shorten returns the short URL for longURL, calling the provider at most
// once per long URL within the TTL. Every request is counted in the
// history, whether or not it reached the provider.
func (s *Service) Shorten(ctx context.Context, longURL string) (*Link, error) {
	longURL = strings.TrimSpace(longURL)

	if err := payload.ValidateURL("url", longURL); err != nil {
		s.metrics.ShortenRequests.WithLabelValues(metrics.OutcomeInvalid).Inc()
		logger.CtxWarn(ctx, "Invalid long URL", logger.LoggerInfo{
			ContextFunction: constant.CtxShorten,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeInvalidLongURL,
				Message: err.Error(),
				Type:    constant.ErrTypeValidation,
			},
		})
		return nil, err
	}

	if link, ok := s.cached(ctx, longURL); ok {
		s.metrics.ShortenRequests.WithLabelValues(metrics.OutcomeCached).Inc()
		return link, nil
	}

	// The shared call outlives any single caller; each caller still gives
	// up when its own context ends.
	ch := s.group.DoChan(longURL, func() (interface{}, error) {
		return s.fetch(context.WithoutCancel(ctx), longURL)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		s.metrics.ShortenRequests.WithLabelValues(metrics.OutcomeError).Inc()
		logger.CtxWarn(ctx, "Shorten abandoned by caller", logger.LoggerInfo{
			ContextFunction: constant.CtxShorten,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeCallerGone,
				Message: ctx.Err().Error(),
				Type:    constant.ErrTypeUpstream,
			},
			Data: map[string]interface{}{
				constant.DataLongURL: longURL,
			},
		})
		return nil, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		var upstream *UpstreamError
		if errors.As(res.Err, &upstream) {
			s.metrics.ShortenRequests.WithLabelValues(metrics.OutcomeUpstreamError).Inc()
		} else {
			s.metrics.ShortenRequests.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return nil, res.Err
	}

	fr := res.Val.(*fetchResult)
	link := *fr.link
	outcome := metrics.OutcomeOK
	if fr.reused {
		outcome = metrics.OutcomeCached
	}
	s.metrics.ShortenRequests.WithLabelValues(outcome).Inc()
	logger.CtxInfo(ctx, "URL successfully shortened", logger.LoggerInfo{
		ContextFunction: constant.CtxShorten,
		Data: map[string]interface{}{
			constant.DataLongURL:  link.LongURL,
			constant.DataShortURL: link.ShortURL,
			constant.DataShared:   res.Shared,
			constant.DataCacheHit: fr.reused,
		},
	})

	return &link, nil
}

// cached serves longURL from the in-memory cache and counts the request
func (s *Service) cached(ctx context.Context, longURL string) (*Link, bool) {
	if s.links == nil {
		return nil, false
	}
	item := s.links.Get(longURL)
	if item == nil || item.IsExpired() {
		return nil, false
	}

	link := &Link{LongURL: longURL, ShortURL: item.Value()}
	s.record(ctx, link)

	logger.CtxInfo(ctx, "Short URL served from cache", logger.LoggerInfo{
		ContextFunction: constant.CtxShorten,
		Data: map[string]interface{}{
			constant.DataLongURL:  longURL,
			constant.DataShortURL: link.ShortURL,
			constant.DataRequests: link.Requests,
			constant.DataCacheHit: true,
		},
	})
	return link, true
}

// fromHistory reuses a short URL recorded within the TTL, e.g. before a
// restart emptied the in-memory cache.
func (s *Service) fromHistory(ctx context.Context, longURL string) (*Link, bool) {
	if s.links == nil {
		return nil, false
	}

	link, err := s.repo.FindByLongURL(ctx, longURL)
	if err != nil {
		if !errors.Is(err, ErrLinkNotFound) {
			logger.CtxWarn(ctx, "Link history lookup failed", logger.LoggerInfo{
				ContextFunction: constant.CtxShorten,
				Error: &logger.CustomError{
					Code:    constant.ErrCodeFindLink,
					Message: err.Error(),
					Type:    constant.ErrTypeStorage,
				},
				Data: map[string]interface{}{
					constant.DataLongURL: longURL,
				},
			})
		}
		return nil, false
	}
	if time.Since(link.UpdatedAt) >= s.ttl {
		return nil, false
	}

	s.links.Set(longURL, link.ShortURL, ttlcache.DefaultTTL)
	s.record(ctx, link)
	return link, true
}

// fetch performs the single outbound call for longURL and records it
func (s *Service) fetch(ctx context.Context, longURL string) (*fetchResult, error) {
	if link, ok := s.fromHistory(ctx, longURL); ok {
		return &fetchResult{link: link, reused: true}, nil
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := s.limiter.Wait(ctx); err != nil {
		logger.CtxWarn(ctx, "Rate limit wait aborted", logger.LoggerInfo{
			ContextFunction: constant.CtxShorten,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeRateLimitWait,
				Message: err.Error(),
				Type:    constant.ErrTypeUpstream,
			},
		})
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	start := time.Now()
	shortURL, err := s.client.Shorten(ctx, longURL)
	s.metrics.UpstreamLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		code := constant.ErrCodeUpstreamCall
		data := map[string]interface{}{
			constant.DataLongURL: longURL,
		}
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			code = constant.ErrCodeUpstreamStatus
			if strings.HasPrefix(upstream.Body, "Error:") {
				code = constant.ErrCodeUpstreamBody
			}
			data[constant.DataStatus] = upstream.StatusCode
			data[constant.DataBody] = upstream.Body
		}
		logger.CtxError(ctx, "Shortening provider call failed", logger.LoggerInfo{
			ContextFunction: constant.CtxShorten,
			Error: &logger.CustomError{
				Code:    code,
				Message: err.Error(),
				Type:    constant.ErrTypeUpstream,
			},
			Data: data,
		})
		return nil, err
	}

	if s.links != nil {
		s.links.Set(longURL, shortURL, ttlcache.DefaultTTL)
	}

	link := &Link{LongURL: longURL, ShortURL: shortURL}
	s.record(ctx, link)
	return &fetchResult{link: link}, nil
}

// record bumps the request count for link. History is best effort; the
// short URL is still valid when it fails.
func (s *Service) record(ctx context.Context, link *Link) {
	if err := s.repo.Record(ctx, link); err != nil {
		logger.CtxError(ctx, "Failed to record link", logger.LoggerInfo{
			ContextFunction: constant.CtxShorten,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeRecordLink,
				Message: err.Error(),
				Type:    constant.ErrTypeStorage,
			},
			Data: map[string]interface{}{
				constant.DataLongURL: link.LongURL,
			},
		})
	}
}

// RecentLinks returns the most recently shortened links
func (s *Service) RecentLinks(ctx context.Context, limit int) ([]*Link, error) {
	if limit <= 0 {
		limit = constant.DefaultLinksLimit
	}
	if limit > constant.MaxLinksLimit {
		limit = constant.MaxLinksLimit
	}

	links, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		logger.CtxError(ctx, "Failed to list links", logger.LoggerInfo{
			ContextFunction: constant.CtxRecentLinks,
			Error: &logger.CustomError{
				Code:    constant.ErrCodeListLinks,
				Message: err.Error(),
				Type:    constant.ErrTypeStorage,
			},
			Data: map[string]interface{}{
				constant.DataLimit: limit,
			},
		})
		return nil, err
	}

	logger.CtxDebug(ctx, "Listed recent links", logger.LoggerInfo{
		ContextFunction: constant.CtxRecentLinks,
		Data: map[string]interface{}{
			constant.DataLimit: limit,
			constant.DataCount: len(links),
		},
	})

	return links, nil
}

// Close stops the short URL cache
func (s *Service) Close() {
	if s.links != nil {
		s.links.Stop()
	}
}

// UserMessage maps a shorten failure to the text shown to end users
func UserMessage(err error) string {
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		return constant.MsgShortenProviderError
	}
	return constant.MsgShortenFailed
}
