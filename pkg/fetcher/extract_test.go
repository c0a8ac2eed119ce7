// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"net/url"
	"strings"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestExtractHTMLText(t *testing.T) {
	input := []byte(`<html><head><style>p{}</style></head><body>
		<script>var x = 1;</script>
		<h1>Title</h1>
		<p>First paragraph.</p>
		<noscript>enable js</noscript>
	</body></html>`)

	text := extractHTMLText(input)
	if !strings.Contains(text, "Title") || !strings.Contains(text, "First paragraph.") {
		t.Errorf("missing visible text: %q", text)
	}
	if strings.Contains(text, "var x") || strings.Contains(text, "enable js") || strings.Contains(text, "p{}") {
		t.Errorf("script/style/noscript content leaked: %q", text)
	}
}

func TestExtractHTMLText_Malformed(t *testing.T) {
	// html.Parse is extremely tolerant, so even nonsense yields a document;
	// the result must still be non-panicking plain text.
	text := extractHTMLText([]byte("<<<not html>>>"))
	if text == "" {
		t.Error("expected some text for malformed input")
	}
}

func TestExtractArticle_FallbackOnThinPages(t *testing.T) {
	// Too little content for readability to isolate an article; the tag
	// stripper must still recover the visible text.
	input := []byte("<html><body><p>tiny</p></body></html>")
	text := extractArticle(input, mustParseURL(t, "https://example.com/tiny"))
	if !strings.Contains(text, "tiny") {
		t.Errorf("fallback text = %q, want 'tiny'", text)
	}
}

func TestExtractReadable_Dispatch(t *testing.T) {
	u := mustParseURL(t, "https://example.com")

	text, err := extractReadable("text/plain", []byte(" raw \n"), u)
	if err != nil || text != "raw" {
		t.Errorf("text/plain: got (%q, %v)", text, err)
	}

	text, err = extractReadable("text/html", []byte("<p>hello</p>"), u)
	if err != nil || !strings.Contains(text, "hello") {
		t.Errorf("text/html: got (%q, %v)", text, err)
	}

	if _, err := extractReadable("application/octet-stream", []byte{0x0}, u); err == nil {
		t.Error("expected error for unsupported media type")
	}

	if _, err := extractReadable("application/pdf", []byte("not a pdf"), u); err == nil {
		t.Error("expected error for corrupt PDF")
	}
}
