package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	c := &Client{UserAgent: "goarticle-test", MaxAttempts: 2, PerRequestTimeout: 2 * time.Second}
	body, finalURL, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) == "" {
		t.Fatal("expected body")
	}
	if !strings.HasPrefix(finalURL, srv.URL) {
		t.Fatalf("final URL = %q", finalURL)
	}
}

func TestGet_RetryOn5xx(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(502)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := &Client{UserAgent: "goarticle-test", MaxAttempts: 2, PerRequestTimeout: 2 * time.Second}
	if _, _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestGet_ReportsFinalURLAfterRedirect(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, srvURL+"/new", http.StatusMovedPermanently)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>moved here</html>"))
	}))
	defer srv.Close()
	srvURL = srv.URL

	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second}
	body, finalURL, err := c.Get(context.Background(), srv.URL+"/old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if finalURL != srv.URL+"/new" {
		t.Fatalf("final URL = %q, want %q", finalURL, srv.URL+"/new")
	}
	if !strings.Contains(string(body), "moved here") {
		t.Fatalf("body = %q", body)
	}
}

func TestGet_RejectsNonHTMLContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second}
	if _, _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected content-type error")
	}
}

func TestGet_RejectsNonHTTPScheme(t *testing.T) {
	c := &Client{MaxAttempts: 1}
	if _, _, err := c.Get(context.Background(), "ftp://example.com/file"); err == nil {
		t.Fatal("expected scheme error")
	}
}

func TestGet_TooManyRedirects(t *testing.T) {
	var srvURL string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, srvURL+"/loop", http.StatusFound)
	}))
	defer srv.Close()
	srvURL = srv.URL

	c := &Client{MaxAttempts: 1, RedirectMaxHops: 3, PerRequestTimeout: 2 * time.Second}
	if _, _, err := c.Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected redirect loop error")
	}
}

func TestGet_MaxConcurrent(t *testing.T) {
	var inFlight int64
	var maxObserved int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cur := atomic.AddInt64(&inFlight, 1)
		for {
			prev := atomic.LoadInt64(&maxObserved)
			if cur <= prev || atomic.CompareAndSwapInt64(&maxObserved, prev, cur) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := &Client{MaxAttempts: 1, PerRequestTimeout: 2 * time.Second, MaxConcurrent: 2}
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, _, _ = c.Get(context.Background(), srv.URL)
		}()
	}
	close(start)
	wg.Wait()

	if atomic.LoadInt64(&maxObserved) > 2 {
		t.Fatalf("expected max concurrency <= 2, got %d", maxObserved)
	}
}
