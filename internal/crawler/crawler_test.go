package crawler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mediadex/mediadex/internal/fetch"
)

func testServer(t *testing.T, pages map[string]string, status map[string]int) *httptest.Server {
	t.Helper()
	var hits int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&hits, 1)
		if code, ok := status[r.URL.Path]; ok {
			w.WriteHeader(code)
			return
		}
		page, ok := pages[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(page))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fastOpts() Options {
	return Options{Throttle: time.Millisecond, Client: fetch.New(fetch.Config{})}
}

func TestCrawl_discoversNestedFiles(t *testing.T) {
	srv := testServer(t, map[string]string{
		"/media/": `<a href="../">Parent</a>
			<a href="Season%201/">Season 1/</a>
			<a href="Movie.Title.2020.720p.mp4">Movie.Title.2020.720p.mp4</a>
			<a href="notes.txt">notes.txt</a>`,
		// r.URL.Path arrives percent-decoded
		"/media/Season 1/": `<a href="Show.Name.S01E01.mkv">Show.Name.S01E01.mkv</a>`,
	}, nil)

	var dirs, fileEvents int
	opts := fastOpts()
	opts.OnDiscover = func(ev Event) {
		switch ev.Type {
		case EventDir:
			dirs++
		case EventFile:
			fileEvents++
		}
	}
	files, err := Crawl(context.Background(), srv.URL+"/media/", opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %+v; want 2", files)
	}
	if files[0].Name != "Movie.Title.2020.720p.mp4" || files[0].Depth != 0 {
		t.Errorf("files[0] = %+v", files[0])
	}
	if files[1].Name != "Show.Name.S01E01.mkv" || files[1].Depth != 1 {
		t.Errorf("files[1] = %+v", files[1])
	}
	if files[1].Path != "Season 1/Show.Name.S01E01.mkv" {
		t.Errorf("files[1].Path = %q", files[1].Path)
	}
	if dirs != 1 || fileEvents != 2 {
		t.Errorf("callback saw %d dirs, %d files; want 1, 2", dirs, fileEvents)
	}
}

func TestCrawl_neverVisitsSameFetchURLTwice(t *testing.T) {
	// Both subdirectories link back to the same child; it must be fetched once.
	visits := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		visits[r.URL.Path]++
		switch r.URL.Path {
		case "/":
			w.Write([]byte(`<a href="a/">a/</a><a href="b/">b/</a>`))
		case "/a/", "/b/":
			w.Write([]byte(`<a href="/shared/">shared/</a>`))
		case "/shared/":
			w.Write([]byte(`<a href="file.mkv">file.mkv</a>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	files, err := Crawl(context.Background(), srv.URL+"/", fastOpts())
	if err != nil {
		t.Fatal(err)
	}
	if visits["/shared/"] != 1 {
		t.Errorf("/shared/ fetched %d times; want 1", visits["/shared/"])
	}
	if len(files) != 1 {
		t.Errorf("files = %+v", files)
	}
}

func TestCrawl_maxDepthBound(t *testing.T) {
	srv := testServer(t, map[string]string{
		"/":       `<a href="d1/">d1/</a>`,
		"/d1/":    `<a href="d2/">d2/</a>`,
		"/d1/d2/": `<a href="deep.mkv">deep.mkv</a>`,
	}, nil)

	var dirs int
	opts := fastOpts()
	opts.MaxDepth = 1
	opts.OnDiscover = func(ev Event) {
		if ev.Type == EventDir {
			dirs++
		}
	}
	files, err := Crawl(context.Background(), srv.URL+"/", opts)
	if err != nil {
		t.Fatal(err)
	}
	// d2 sits beyond the depth bound: never entered, never reported.
	if len(files) != 0 {
		t.Errorf("files = %+v; want none at MaxDepth=1", files)
	}
	if dirs != 1 {
		t.Errorf("dir events = %d; want just d1", dirs)
	}
}

func TestCrawl_dirEventOncePerDirectory(t *testing.T) {
	// shared/ is linked from both a/ and b/; only the first link may report it.
	srv := testServer(t, map[string]string{
		"/":        `<a href="a/">a/</a><a href="b/">b/</a>`,
		"/a/":      `<a href="/shared/">shared/</a>`,
		"/b/":      `<a href="/shared/">shared/</a>`,
		"/shared/": `<a href="file.mkv">file.mkv</a>`,
	}, nil)

	dirEvents := map[string]int{}
	opts := fastOpts()
	opts.OnDiscover = func(ev Event) {
		if ev.Type == EventDir {
			dirEvents[ev.URL]++
		}
	}
	if _, err := Crawl(context.Background(), srv.URL+"/", opts); err != nil {
		t.Fatal(err)
	}
	if n := dirEvents[srv.URL+"/shared/"]; n != 1 {
		t.Errorf("shared/ reported %d times; want 1", n)
	}
	if len(dirEvents) != 3 {
		t.Errorf("dir events = %v; want a/, b/ and shared/ once each", dirEvents)
	}
}

func TestCrawl_branchErrorNonFatal(t *testing.T) {
	srv := testServer(t, map[string]string{
		"/":     `<a href="bad/">bad/</a><a href="good/">good/</a>`,
		"/good/": `<a href="ok.mkv">ok.mkv</a>`,
	}, map[string]int{"/bad/": http.StatusForbidden})

	files, err := Crawl(context.Background(), srv.URL+"/", fastOpts())
	if err != nil {
		t.Fatalf("branch error must not be fatal: %v", err)
	}
	if len(files) != 1 || files[0].Name != "ok.mkv" {
		t.Errorf("files = %+v", files)
	}
}

func TestCrawl_rootErrorFatal(t *testing.T) {
	srv := testServer(t, nil, map[string]int{"/": http.StatusForbidden})
	if _, err := Crawl(context.Background(), srv.URL+"/", fastOpts()); err == nil {
		t.Fatal("want error for root failure")
	}
}

func TestCrawl_429AbortsAtAnyDepth(t *testing.T) {
	srv := testServer(t, map[string]string{
		"/":     `<a href="sub/">sub/</a><a href="more/">more/</a>`,
		"/more/": `<a href="x.mkv">x.mkv</a>`,
	}, map[string]int{"/sub/": http.StatusTooManyRequests})

	_, err := Crawl(context.Background(), srv.URL+"/", fastOpts())
	if !fetch.IsRateLimited(err) {
		t.Fatalf("err = %v; want rate-limited abort", err)
	}
}

func TestCrawl_cancellationReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := testServer(t, map[string]string{
		"/":     `<a href="one.mkv">one.mkv</a><a href="sub/">sub/</a>`,
		"/sub/": `<a href="two.mkv">two.mkv</a>`,
	}, nil)

	opts := fastOpts()
	opts.OnDiscover = func(ev Event) {
		if ev.Type == EventFile && ev.Name == "one.mkv" {
			cancel() // stop before the queued subdirectory is processed
		}
	}
	files, err := Crawl(ctx, srv.URL+"/", opts)
	if err != nil {
		t.Fatalf("cancellation must not be an error: %v", err)
	}
	if len(files) != 1 || files[0].Name != "one.mkv" {
		t.Errorf("files = %+v; want just the pre-cancel file", files)
	}
}
