// Package extract pulls candidate prospect names out of raw text using a
// coarse capitalization heuristic. It is deliberately not a named-entity
// model: false positives and negatives are expected here, and downstream
// scoring is the quality gate.
package extract

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MinNameTokens is the minimum run of capitalized tokens that counts as a
// candidate name.
const MinNameTokens = 2

// Names returns the deduplicated candidate names found in text, in first
// occurrence order. A name is any run of two or more consecutive tokens
// whose first letter is uppercase (locale-naive).
func Names(text string) []string {
	tokens := strings.Fields(norm.NFC.String(text))

	var (
		names []string
		seen  = make(map[string]struct{})
		run   []string
	)

	flush := func() {
		if len(run) >= MinNameTokens {
			name := strings.Join(run, " ")
			if _, dup := seen[name]; !dup {
				seen[name] = struct{}{}
				names = append(names, name)
			}
		}
		run = run[:0]
	}

	for _, tok := range tokens {
		word := trimEdges(tok)
		if word != "" && isCapitalized(word) {
			run = append(run, word)
			// Trailing punctuation ends the run even when the token
			// itself was capitalized ("...with Maria Santos.").
			if word != tok && endsClause(tok) {
				flush()
			}
			continue
		}
		flush()
	}
	flush()

	return names
}

// Snippet returns the first sentence of text that contains name, trimmed.
// It falls back to the empty string when the name never appears.
func Snippet(text, name string) string {
	for _, s := range sentences(text) {
		if strings.Contains(s, name) {
			return s
		}
	}
	return ""
}

// Mentions returns every sentence of text that contains name, in order.
// The result doubles as the prospect's message history for overlay scoring.
func Mentions(text, name string) []string {
	var out []string
	for _, s := range sentences(text) {
		if strings.Contains(s, name) {
			out = append(out, s)
		}
	}
	return out
}

func sentences(text string) []string {
	text = norm.NFC.String(text)
	var out []string
	start := 0
	for i, r := range text {
		if r == '.' || r == '!' || r == '?' || r == '\n' {
			if s := strings.TrimSpace(text[start:i]); s != "" {
				out = append(out, s)
			}
			start = i + 1
		}
	}
	if s := strings.TrimSpace(text[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

func isCapitalized(word string) bool {
	for _, r := range word {
		return unicode.IsUpper(r)
	}
	return false
}

// trimEdges strips leading and trailing punctuation from a token.
func trimEdges(tok string) string {
	return strings.TrimFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// endsClause reports whether the raw token carries sentence-ending
// punctuation after its word part.
func endsClause(tok string) bool {
	trimmed := strings.TrimRightFunc(tok, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	return len(trimmed) < len(tok)
}
