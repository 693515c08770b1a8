package exporter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdsexport/pkg/mds"
	"mdsexport/pkg/resumefile"
	"mdsexport/pkg/tokenstore"
)

// scriptedServer serves a fixed sequence of extract pages. The first request
// must hit the extract endpoint; follow-ups are served by page number from
// the next_url issued in the previous response.
type scriptedServer struct {
	server     *httptest.Server
	pages      []string
	callCount  int32
	failAtPage int // 1-based; 0 disables
}

func newScriptedServer(t *testing.T, pages ...string) *scriptedServer {
	t.Helper()
	s := &scriptedServer{pages: pages}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/extract", func(w http.ResponseWriter, r *http.Request) {
		s.serve(w, r, 1)
	})
	mux.HandleFunc("/pages/", func(w http.ResponseWriter, r *http.Request) {
		var n int
		fmt.Sscanf(r.URL.Path, "/pages/%d", &n)
		s.serve(w, r, n)
	})

	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

func (s *scriptedServer) serve(w http.ResponseWriter, _ *http.Request, page int) {
	atomic.AddInt32(&s.callCount, 1)
	if s.failAtPage == page {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if page < 1 || page > len(s.pages) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	body := strings.ReplaceAll(s.pages[page-1], "{{base}}", s.server.URL)
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func (s *scriptedServer) calls() int {
	return int(atomic.LoadInt32(&s.callCount))
}

// recordingUpdater captures cursor updates for assertions.
type recordingUpdater struct {
	tokens    []string
	remaining []int
}

func (u *recordingUpdater) UpdateCursor(token string, remaining int) error {
	u.tokens = append(u.tokens, token)
	u.remaining = append(u.remaining, remaining)
	return nil
}

func newDriver(t *testing.T, baseURL string) *Driver {
	t.Helper()
	return New(mds.NewClient(baseURL, 5*time.Second, nil), nil)
}

const (
	pageOne = `{
		"data": [{"id": 1}],
		"stats": {"total": 2, "remaining": 1},
		"resume": "c1",
		"has_next": true,
		"next_url": "{{base}}/pages/2"
	}`
	pageTwo = `{
		"data": [{"id": 2}],
		"stats": {"total": 2, "remaining": 0},
		"has_next": false
	}`
)

func TestRunMissingToken(t *testing.T) {
	srv := newScriptedServer(t, pageOne, pageTwo)
	driver := newDriver(t, srv.server.URL)

	_, err := driver.Run(context.Background(), Options{
		OutputPath: filepath.Join(t.TempDir(), "out.jsonl"),
	})
	require.ErrorIs(t, err, ErrMissingToken)
	assert.Equal(t, 0, srv.calls(), "no network call should happen without a token")
}

func TestRunTwoPages(t *testing.T) {
	srv := newScriptedServer(t, pageOne, pageTwo)
	driver := newDriver(t, srv.server.URL)
	updater := &recordingUpdater{}

	outPath := filepath.Join(t.TempDir(), "out.jsonl")
	summary, err := driver.Run(context.Background(), Options{
		Token:      "start",
		OutputPath: outPath,
		Updater:    updater,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, int64(2), summary.Records)

	data, err := os.ReadFile(summary.Output)
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":1}\n{\"id\":2}\n", string(data))

	// Only page 1 carries a resume cursor; page 2's lower remaining count
	// is dropped because no cursor accompanies it.
	assert.Equal(t, []string{"c1"}, updater.tokens)
	assert.Equal(t, []int{1}, updater.remaining)
}

func TestRunAgainstTokenStore(t *testing.T) {
	srv := newScriptedServer(t, pageOne, pageTwo)
	driver := newDriver(t, srv.server.URL)

	store, err := tokenstore.Open(filepath.Join(t.TempDir(), "tokens.db"))
	require.NoError(t, err)
	defer store.Close()

	name, err := store.Create("start", "my-export")
	require.NoError(t, err)

	_, err = driver.Run(context.Background(), Options{
		Token:      "start",
		OutputPath: filepath.Join(t.TempDir(), "out.jsonl"),
		Updater:    StoreUpdater{Store: store, Name: name},
	})
	require.NoError(t, err)

	last, err := store.Resolve("my-export:last")
	require.NoError(t, err)
	assert.Equal(t, "c1", last)

	latest, err := store.Resolve("my-export:latest")
	require.NoError(t, err)
	assert.Equal(t, "c1", latest)

	tokens, err := store.List()
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, float64(1), tokens[0].LeastRemaining)
	assert.Equal(t, "start", tokens[0].Base)
}

func TestRunWithResumeFile(t *testing.T) {
	srv := newScriptedServer(t, pageOne, pageTwo)
	driver := newDriver(t, srv.server.URL)

	rf := resumefile.New(filepath.Join(t.TempDir(), "resume.txt"))
	_, err := driver.Run(context.Background(), Options{
		Token:      "start",
		OutputPath: filepath.Join(t.TempDir(), "out.jsonl"),
		Updater:    FileUpdater{File: rf},
	})
	require.NoError(t, err)

	token, err := rf.Load()
	require.NoError(t, err)
	assert.Equal(t, "c1", token)
}

func TestRerunAppendsDuplicates(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	for i := 0; i < 2; i++ {
		srv := newScriptedServer(t, pageOne, pageTwo)
		driver := newDriver(t, srv.server.URL)
		_, err := driver.Run(context.Background(), Options{
			Token:      "start",
			OutputPath: outPath,
		})
		require.NoError(t, err)
	}

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(data), "\n"),
		"second run must append duplicates, not deduplicate")
}

func TestRunAbortsOnFetchFailure(t *testing.T) {
	srv := newScriptedServer(t, pageOne, pageTwo)
	srv.failAtPage = 2
	driver := newDriver(t, srv.server.URL)
	updater := &recordingUpdater{}

	outPath := filepath.Join(t.TempDir(), "out.jsonl")
	_, err := driver.Run(context.Background(), Options{
		Token:      "start",
		OutputPath: outPath,
		Updater:    updater,
	})
	require.Error(t, err)
	assert.True(t, mds.IsFetchFailed(err))

	// Page 1 was durably written and its cursor persisted before the abort.
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "{\"id\":1}\n", string(data))
	assert.Equal(t, []string{"c1"}, updater.tokens)

	// No retry: the failing page was fetched exactly once.
	assert.Equal(t, 2, srv.calls())
}

func TestRunAbortsOnProtocolError(t *testing.T) {
	srv := newScriptedServer(t, pageOne, `{"stats": {}, "has_next": false}`)
	driver := newDriver(t, srv.server.URL)

	_, err := driver.Run(context.Background(), Options{
		Token:      "start",
		OutputPath: filepath.Join(t.TempDir(), "out.jsonl"),
	})
	require.Error(t, err)
	assert.True(t, mds.IsProtocolError(err))
}

func TestRunEmptyPageContinuesOnHasNext(t *testing.T) {
	empty := `{
		"data": [],
		"stats": {"total": 1, "remaining": 1},
		"has_next": true,
		"next_url": "{{base}}/pages/2"
	}`
	final := `{
		"data": [{"id": 9}],
		"stats": {"total": 1, "remaining": 0},
		"has_next": false
	}`
	srv := newScriptedServer(t, empty, final)
	driver := newDriver(t, srv.server.URL)

	summary, err := driver.Run(context.Background(), Options{
		Token:      "start",
		OutputPath: filepath.Join(t.TempDir(), "out.jsonl"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Pages)
	assert.Equal(t, int64(1), summary.Records)
}

func TestRunStopsOnHasNextFalseDespiteRemaining(t *testing.T) {
	// remaining is still positive, but has_next is false: the loop must
	// stop. The two counters are not guaranteed consistent.
	only := `{
		"data": [{"id": 1}],
		"stats": {"total": 10, "remaining": 9},
		"has_next": false
	}`
	srv := newScriptedServer(t, only)
	driver := newDriver(t, srv.server.URL)

	summary, err := driver.Run(context.Background(), Options{
		Token:      "start",
		OutputPath: filepath.Join(t.TempDir(), "out.jsonl"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Pages)
	assert.Equal(t, 1, srv.calls())
}

func TestRunCompressed(t *testing.T) {
	srv := newScriptedServer(t, pageOne, pageTwo)
	driver := newDriver(t, srv.server.URL)

	summary, err := driver.Run(context.Background(), Options{
		Token:      "start",
		OutputPath: filepath.Join(t.TempDir(), "out.jsonl"),
		Compress:   true,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(summary.Output, ".zstd"))
	assert.Equal(t, int64(2), summary.Records)
}
