// Copyright Webrecap Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import "unicode/utf8"

// DefaultMaxInputChars caps the page text sent to the AI backend in one
// call, roughly 3k tokens at a ~4:1 chars-per-token ratio.
const DefaultMaxInputChars = 12000

// TokensToChars converts a token count to an approximate character count
// using a ~4:1 ratio (chars per token).
func TokensToChars(tokens int) int {
	return tokens * 4
}

// truncateText cuts text to at most max bytes without splitting a UTF-8
// sequence. max <= 0 means no limit.
func truncateText(text string, max int) string {
	if max <= 0 || len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
