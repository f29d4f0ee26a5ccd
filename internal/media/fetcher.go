package media

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
)

// ErrUnavailable is returned when a key is neither cached nor downloadable.
var ErrUnavailable = errors.New("audio unavailable")

type statusError struct {
	statusCode int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status code: %d", e.statusCode)
}

// Fetcher downloads <base_url>/<key><extension>. Server errors and rate
// limiting are retried with backoff, other statuses are not.
type Fetcher struct {
	client           *resty.Client
	extension        string
	maxRetryAttempts uint
	retryDelay       time.Duration
}

func NewFetcher(baseURL, extension string, timeout time.Duration, maxRetryAttempts uint) *Fetcher {
	client := resty.New().SetBaseURL(baseURL)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &Fetcher{
		client:           client,
		extension:        normalizeExtension(extension),
		maxRetryAttempts: maxRetryAttempts,
		retryDelay:       100 * time.Millisecond,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	var body []byte
	if err := retry.Do(
		func() error {
			contents, err := f.fetch(ctx, key)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				slog.Default().Debug("retrying audio download",
					slog.String("key", key),
					slog.Any("error", err),
				)
				return err
			}
			body = contents
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(f.maxRetryAttempts+1),
		retry.Delay(f.retryDelay),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) fetch(ctx context.Context, key string) ([]byte, error) {
	res, err := f.client.R().
		SetContext(ctx).
		Get("/" + url.PathEscape(key) + f.extension)
	if err != nil {
		return nil, fmt.Errorf("client.R.Get > %w", err)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, &statusError{statusCode: res.StatusCode()}
	}
	return res.Body(), nil
}

func isRetryableError(err error) bool {
	var statusErr *statusError
	if errors.As(err, &statusErr) {
		return statusErr.statusCode >= http.StatusInternalServerError ||
			statusErr.statusCode == http.StatusTooManyRequests
	}
	// transport errors
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Library serves audio files from the cache and downloads missing ones.
type Library struct {
	cache      *FileCache
	downloader Downloader
}

// NewLibrary accepts a nil downloader for offline use.
func NewLibrary(cache *FileCache, downloader Downloader) *Library {
	return &Library{
		cache:      cache,
		downloader: downloader,
	}
}

// Path returns the local path of the audio file of key.
func (l *Library) Path(ctx context.Context, key string) (string, error) {
	return l.cache.Cache(key, func() ([]byte, error) {
		if l.downloader == nil {
			return nil, ErrUnavailable
		}
		return l.downloader.Fetch(ctx, key)
	})
}

func (l *Library) Cached(key string) bool {
	return l.cache.Has(key)
}
