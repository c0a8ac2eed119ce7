// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

// extractReadable converts a response body into plain text based on its
// media type.
func extractReadable(mediaType string, body []byte, pageURL *url.URL) (string, error) {
	switch {
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		return extractArticle(body, pageURL), nil
	case mediaType == "application/pdf":
		return extractPDF(body)
	case strings.HasPrefix(mediaType, "text/"):
		return strings.TrimSpace(string(body)), nil
	default:
		return "", fmt.Errorf("unsupported content type %q", mediaType)
	}
}

// extractArticle runs readability article extraction, falling back to a
// plain tag-stripping walk when no article can be isolated (index pages,
// boilerplate-free documents).
func extractArticle(body []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return text
		}
	}
	return extractHTMLText(body)
}

// extractHTMLText strips HTML tags and returns the visible text content.
// Script and style elements are skipped entirely.
func extractHTMLText(content []byte) string {
	doc, err := html.Parse(bytes.NewReader(content))
	if err != nil {
		// Fall back to raw text if HTML is malformed
		return strings.TrimSpace(string(content))
	}

	var sb strings.Builder
	extractTextFromNode(doc, &sb)
	return strings.TrimSpace(sb.String())
}

func extractTextFromNode(n *html.Node, sb *strings.Builder) {
	if n.Type == html.ElementNode {
		switch n.Data {
		case "script", "style", "noscript":
			return
		}
	}

	if n.Type == html.TextNode {
		text := strings.TrimSpace(n.Data)
		if text != "" {
			if sb.Len() > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(text)
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		extractTextFromNode(c, sb)
	}
}

// extractPDF extracts text content from a PDF document.
func extractPDF(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}

	return sb.String(), nil
}
