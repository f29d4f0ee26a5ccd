package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_media "github.com/at-ishikawa/flashdeck/internal/mocks/media"
)

type audioServer struct {
	server *httptest.Server

	mu       sync.Mutex
	requests map[string]int
	failures map[string][]int
}

func newAudioServer(t *testing.T) *audioServer {
	t.Helper()
	s := &audioServer{
		requests: make(map[string]int),
		failures: make(map[string][]int),
	}
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests[r.URL.Path]++
		var status int
		if queue := s.failures[r.URL.Path]; len(queue) > 0 {
			status = queue[0]
			s.failures[r.URL.Path] = queue[1:]
		}
		s.mu.Unlock()

		if status != 0 {
			w.WriteHeader(status)
			return
		}
		_, _ = w.Write([]byte("audio:" + r.URL.Path))
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *audioServer) fail(path string, statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = append(s.failures[path], statuses...)
}

func (s *audioServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[path]
}

func newTestFetcher(baseURL string, attempts uint) *Fetcher {
	fetcher := NewFetcher(baseURL, ".mp3", 5*time.Second, attempts)
	fetcher.retryDelay = time.Millisecond
	return fetcher
}

func TestFetcher_Fetch(t *testing.T) {
	testCases := []struct {
		name         string
		key          string
		failures     []int
		attempts     uint
		wantBody     string
		wantErr      bool
		wantRequests int
	}{
		{
			name:         "ok",
			key:          "a",
			attempts:     2,
			wantBody:     "audio:/a.mp3",
			wantRequests: 1,
		},
		{
			name:         "server error is retried",
			key:          "ka",
			failures:     []int{http.StatusInternalServerError, http.StatusServiceUnavailable},
			attempts:     2,
			wantBody:     "audio:/ka.mp3",
			wantRequests: 3,
		},
		{
			name:         "rate limit is retried",
			key:          "sa",
			failures:     []int{http.StatusTooManyRequests},
			attempts:     1,
			wantBody:     "audio:/sa.mp3",
			wantRequests: 2,
		},
		{
			name:         "not found is not retried",
			key:          "ta",
			failures:     []int{http.StatusNotFound},
			attempts:     3,
			wantErr:      true,
			wantRequests: 1,
		},
		{
			name:         "retries are exhausted",
			key:          "na",
			failures:     []int{http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway},
			attempts:     1,
			wantErr:      true,
			wantRequests: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			server := newAudioServer(t)
			path := "/" + tc.key + ".mp3"
			server.fail(path, tc.failures...)

			got, err := newTestFetcher(server.server.URL, tc.attempts).Fetch(context.Background(), tc.key)
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.wantBody, string(got))
			}
			assert.Equal(t, tc.wantRequests, server.count(path))
		})
	}
}

func TestFileCache_Cache(t *testing.T) {
	dir := t.TempDir()
	cache := NewFileCache(dir, "mp3")

	calls := 0
	fill := func() ([]byte, error) {
		calls++
		return []byte("contents"), nil
	}

	assert.False(t, cache.Has("a"))
	path, err := cache.Cache("a", fill)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.mp3"), path)
	assert.True(t, cache.Has("a"))

	path, err = cache.Cache("a", fill)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "contents", string(contents))

	_, err = cache.Cache("b", func() ([]byte, error) {
		return nil, errors.New("offline")
	})
	assert.Error(t, err)
	assert.False(t, cache.Has("b"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileCache_InvalidKey(t *testing.T) {
	cache := NewFileCache(t.TempDir(), ".mp3")
	for _, key := range []string{"", "../secret", "a/b", ".hidden"} {
		t.Run(key, func(t *testing.T) {
			_, err := cache.Cache(key, func() ([]byte, error) {
				t.Fatal("must not be called")
				return nil, nil
			})
			assert.Error(t, err)
			assert.False(t, cache.Has(key))
		})
	}
}

func TestLibrary_Path(t *testing.T) {
	server := newAudioServer(t)
	library := NewLibrary(NewFileCache(t.TempDir(), ".mp3"), newTestFetcher(server.server.URL, 0))

	first, err := library.Path(context.Background(), "ki")
	require.NoError(t, err)
	second, err := library.Path(context.Background(), "ki")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, server.count("/ki.mp3"))
	assert.True(t, library.Cached("ki"))

	offline := NewLibrary(NewFileCache(t.TempDir(), ".mp3"), nil)
	_, err = offline.Path(context.Background(), "ki")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestLibrary_PathWithDownloader(t *testing.T) {
	testCases := []struct {
		name      string
		fetchErr  error
		wantErr   bool
		wantCache bool
	}{
		{name: "downloaded once", wantCache: true},
		{name: "download error", fetchErr: errors.New("boom"), wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			downloader := mock_media.NewMockDownloader(ctrl)
			downloader.EXPECT().
				Fetch(gomock.Any(), "re").
				Return([]byte("re"), tc.fetchErr).
				Times(1)

			library := NewLibrary(NewFileCache(t.TempDir(), ".mp3"), downloader)
			_, err := library.Path(context.Background(), "re")
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				_, err = library.Path(context.Background(), "re")
				require.NoError(t, err)
			}
			assert.Equal(t, tc.wantCache, library.Cached("re"))
		})
	}
}

func TestAudioPreloader_Preload(t *testing.T) {
	server := newAudioServer(t)
	server.fail("/broken.mp3", http.StatusNotFound)
	library := NewLibrary(NewFileCache(t.TempDir(), ".mp3"), newTestFetcher(server.server.URL, 0))
	preloader := NewAudioPreloader(context.Background(), library, 2)

	for i := 0; i < 5; i++ {
		preloader.Preload("u")
	}
	preloader.Preload("e")
	preloader.Preload("broken")
	preloader.Preload("")
	preloader.Wait()

	assert.True(t, library.Cached("u"))
	assert.True(t, library.Cached("e"))
	assert.False(t, library.Cached("broken"))
	assert.LessOrEqual(t, server.count("/u.mp3"), 5)
	assert.GreaterOrEqual(t, server.count("/u.mp3"), 1)

	// cached keys do not hit the server again
	before := server.count("/u.mp3")
	preloader.Preload("u")
	preloader.Wait()
	assert.Equal(t, before, server.count("/u.mp3"))
}

func TestWarmer_Warm(t *testing.T) {
	server := newAudioServer(t)
	server.fail("/missing.mp3", http.StatusNotFound)
	library := NewLibrary(NewFileCache(t.TempDir(), ".mp3"), newTestFetcher(server.server.URL, 0))

	var calls atomic.Int32
	var lastDone, lastTotal int
	result, err := NewWarmer(library, 3).Warm(context.Background(),
		[]string{"a", "i", "u", "a", "", "missing"},
		func(done, total int, key string, err error) {
			calls.Add(1)
			lastDone, lastTotal = done, total
		},
	)
	require.NoError(t, err)
	assert.Equal(t, WarmResult{Cached: 3, Failed: 1}, result)
	assert.Equal(t, int32(4), calls.Load())
	assert.Equal(t, 4, lastDone)
	assert.Equal(t, 4, lastTotal)
	assert.Equal(t, 1, server.count("/a.mp3"))
}

func TestWarmer_Canceled(t *testing.T) {
	library := NewLibrary(NewFileCache(t.TempDir(), ".mp3"), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWarmer(library, 1).Warm(ctx, []string{"a", "i", "u"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCommandPlayer_Play(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "o.mp3"), []byte("x"), 0644))
	library := NewLibrary(NewFileCache(dir, ".mp3"), nil)

	testCases := []struct {
		name    string
		command []string
		key     string
		wantErr bool
	}{
		{name: "plays a cached file", command: []string{"true"}, key: "o"},
		{name: "no command", key: "o"},
		{name: "player fails", command: []string{"false"}, key: "o", wantErr: true},
		{name: "audio unavailable", command: []string{"true"}, key: "missing", wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := NewCommandPlayer(library, tc.command).Play(context.Background(), tc.key)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}
