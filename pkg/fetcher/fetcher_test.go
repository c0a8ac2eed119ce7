// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>AI in Healthcare</title><style>body { color: red; }</style></head>
<body>
<script>console.log("tracking");</script>
<article>
<h1>AI in Healthcare</h1>
<p>Machine learning models now assist radiologists with image triage and
report drafting across several hospital networks. Early deployments have
reduced turnaround time for routine scans.</p>
<p>Regulators continue to debate how adaptive models should be certified,
since a model that retrains on new data may drift from its approved
behavior.</p>
</article>
</body>
</html>`

func TestFetcher_HTMLPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "webrecap/") {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(articleHTML))
	}))
	defer server.Close()

	f := New(Options{})
	page := f.Fetch(context.Background(), server.URL)

	if page.FetchError != "" {
		t.Fatalf("unexpected fetch error: %s", page.FetchError)
	}
	if page.URL != server.URL {
		t.Errorf("URL = %q, want %q", page.URL, server.URL)
	}
	if !strings.Contains(page.Text, "radiologists") {
		t.Errorf("expected extracted text to contain article body, got %q", page.Text)
	}
	if strings.Contains(page.Text, "console.log") {
		t.Errorf("extracted text should not contain script content: %q", page.Text)
	}
}

func TestFetcher_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("  plain body\n"))
	}))
	defer server.Close()

	f := New(Options{})
	page := f.Fetch(context.Background(), server.URL)
	if page.FetchError != "" {
		t.Fatalf("unexpected fetch error: %s", page.FetchError)
	}
	if page.Text != "plain body" {
		t.Errorf("Text = %q, want 'plain body'", page.Text)
	}
}

func TestFetcher_Non200Status(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := New(Options{})
	page := f.Fetch(context.Background(), server.URL)
	if page.FetchError == "" {
		t.Fatal("expected fetch error for 404")
	}
	if !strings.Contains(page.FetchError, "404") {
		t.Errorf("FetchError = %q, want mention of status 404", page.FetchError)
	}
	if page.Text != "" {
		t.Errorf("Text should be empty on failure, got %q", page.Text)
	}
}

func TestFetcher_UnsupportedContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte{0x89, 'P', 'N', 'G'})
	}))
	defer server.Close()

	f := New(Options{})
	page := f.Fetch(context.Background(), server.URL)
	if !strings.Contains(page.FetchError, "unsupported content type") {
		t.Errorf("FetchError = %q, want unsupported content type", page.FetchError)
	}
}

func TestFetcher_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	f := New(Options{Timeout: 20 * time.Millisecond})
	page := f.Fetch(context.Background(), server.URL)
	if page.FetchError == "" {
		t.Fatal("expected fetch error on timeout")
	}
}

func TestFetcher_InvalidURL(t *testing.T) {
	f := New(Options{})

	page := f.Fetch(context.Background(), "ftp://example.com/file")
	if page.FetchError == "" {
		t.Error("expected fetch error for non-http scheme")
	}

	page = f.Fetch(context.Background(), "://broken")
	if page.FetchError == "" {
		t.Error("expected fetch error for unparsable URL")
	}
}

func TestFetcher_BodyLimit(t *testing.T) {
	big := strings.Repeat("a", 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte(big))
	}))
	defer server.Close()

	f := New(Options{MaxBodyBytes: 100})
	page := f.Fetch(context.Background(), server.URL)
	if page.FetchError != "" {
		t.Fatalf("unexpected fetch error: %s", page.FetchError)
	}
	if len(page.Text) > 100 {
		t.Errorf("expected body capped at 100 bytes, got %d", len(page.Text))
	}
}

func TestFetcher_MissingContentTypeTreatedAsHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header()["Content-Type"] = nil // suppress implicit detection header
		w.Write([]byte("<html><body><p>bare page</p></body></html>"))
	}))
	defer server.Close()

	f := New(Options{})
	page := f.Fetch(context.Background(), server.URL)
	if page.FetchError != "" {
		t.Fatalf("unexpected fetch error: %s", page.FetchError)
	}
	if !strings.Contains(page.Text, "bare page") {
		t.Errorf("Text = %q, want 'bare page'", page.Text)
	}
}
