package services

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// span is a half-open byte range [start, end) into a string.
type span struct {
	start, end int
}

// abbreviations never end a sentence even when followed by a capital.
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"inc": true, "ltd": true, "llc": true, "co": true, "corp": true,
	"no": true, "nos": true, "art": true, "sec": true, "para": true,
	"e.g": true, "i.e": true, "etc": true, "vs": true, "cf": true,
	"u.s": true, "u.k": true, "st": true, "jr": true, "sr": true,
}

// sentenceSpans splits text at sentence terminators (. ! ?) that are
// followed by whitespace and then an upper-case letter, digit, quote or
// opening bracket. Each span is trimmed of surrounding whitespace.
func sentenceSpans(text string) []span {
	var spans []span
	start := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '.' && c != '!' && c != '?' {
			continue
		}
		end := i + 1
		for end < len(text) && (text[end] == '.' || text[end] == '!' || text[end] == '?' ||
			text[end] == '"' || text[end] == '\'' || text[end] == ')') {
			end++
		}
		if !isSentenceBreak(text, start, i, end) {
			continue
		}
		if s, ok := trimSpan(text, span{start, end}); ok {
			spans = append(spans, s)
		}
		start = end
		i = end - 1
	}
	if s, ok := trimSpan(text, span{start, len(text)}); ok {
		spans = append(spans, s)
	}
	return spans
}

func isSentenceBreak(text string, sentenceStart, punct, after int) bool {
	if after < len(text) {
		r, _ := utf8.DecodeRuneInString(text[after:])
		if !unicode.IsSpace(r) {
			return false
		}
	}
	if text[punct] == '.' {
		before := strings.TrimSpace(text[sentenceStart:punct])
		if isListMarker(before) || isAbbreviation(before) {
			return false
		}
	}
	next := after
	for next < len(text) {
		r, size := utf8.DecodeRuneInString(text[next:])
		if !unicode.IsSpace(r) {
			return unicode.IsUpper(r) || unicode.IsDigit(r) || strings.ContainsRune("\"'([", r)
		}
		next += size
	}
	return true
}

// listMarker matches enumerators like "1", "2.1", "iv" or "(a)".
var listMarker = regexp.MustCompile(`^\(?(?:\d+(?:\.\d+)*|[A-Za-z]|[ivxlIVXL]+)\)?$`)

// isListMarker reports whether the text before a period is only an
// enumerator rather than a sentence of its own.
func isListMarker(before string) bool {
	return listMarker.MatchString(before)
}

func isAbbreviation(before string) bool {
	idx := strings.LastIndexFunc(before, unicode.IsSpace)
	word := strings.ToLower(strings.TrimLeft(before[idx+1:], "(\"'"))
	if word == "" {
		return false
	}
	if abbreviations[word] {
		return true
	}
	// Single-letter initials such as "J." in "J. Smith".
	r, size := utf8.DecodeRuneInString(word)
	return size == len(word) && unicode.IsLetter(r)
}

// trimSpan shrinks s to exclude leading and trailing whitespace.
func trimSpan(text string, s span) (span, bool) {
	for s.start < s.end {
		r, size := utf8.DecodeRuneInString(text[s.start:])
		if !unicode.IsSpace(r) {
			break
		}
		s.start += size
	}
	for s.end > s.start {
		r, size := utf8.DecodeLastRuneInString(text[:s.end])
		if !unicode.IsSpace(r) {
			break
		}
		s.end -= size
	}
	return s, s.end > s.start
}

// truncateAtSentence shortens text to at most max bytes without cutting
// a sentence. When even the first sentence exceeds max it is cut at the
// last word boundary and ends with an ellipsis.
func truncateAtSentence(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 || len(text) <= max {
		return text
	}
	spans := sentenceSpans(text)
	if len(spans) == 0 || spans[0].end > max {
		return truncateAtWord(text, max)
	}
	cut := spans[0].end
	for _, s := range spans[1:] {
		if s.end > max {
			break
		}
		cut = s.end
	}
	return strings.TrimSpace(text[:cut])
}

const ellipsis = "..."

// truncateAtWord cuts text at the last whitespace that leaves room for an
// ellipsis within max bytes. A single word longer than that is cut at a
// rune boundary.
func truncateAtWord(text string, max int) string {
	if len(text) <= max {
		return text
	}
	limit := max - len(ellipsis)
	if limit <= 0 {
		return text[:runeBoundary(text, max)]
	}
	cut := strings.LastIndexFunc(text[:runeBoundary(text, limit+1)], unicode.IsSpace)
	if cut <= 0 {
		cut = runeBoundary(text, limit)
	}
	head := strings.TrimRightFunc(text[:cut], func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(",;:-", r)
	})
	if head == "" {
		head = text[:runeBoundary(text, limit)]
	}
	return head + ellipsis
}

// runeBoundary returns the largest index <= n that starts a rune.
func runeBoundary(text string, n int) int {
	if n >= len(text) {
		return len(text)
	}
	for n > 0 && !utf8.RuneStart(text[n]) {
		n--
	}
	return n
}

// pseudoSentenceWords is the window used when a span has no separators.
const pseudoSentenceWords = 30

// pseudoSentenceSpans splits s, which has no usable sentence terminators,
// at newlines, semicolons and colons. Pieces longer than
// pseudoSentenceWords words are split into word windows.
func pseudoSentenceSpans(text string, s span) []span {
	var out []span
	start := s.start
	flush := func(end int) {
		if piece, ok := trimSpan(text, span{start, end}); ok {
			out = append(out, wordWindows(text, piece)...)
		}
	}
	for i := s.start; i < s.end; i++ {
		switch text[i] {
		case '\n', ';', ':':
			flush(i + 1)
			start = i + 1
		}
	}
	flush(s.end)
	return out
}

func wordWindows(text string, s span) []span {
	var out []span
	start, words, inWord := s.start, 0, false
	for i := s.start; i < s.end; {
		r, size := utf8.DecodeRuneInString(text[i:s.end])
		switch {
		case !unicode.IsSpace(r):
			inWord = true
		case inWord:
			inWord = false
			words++
			if words == pseudoSentenceWords {
				if w, ok := trimSpan(text, span{start, i}); ok {
					out = append(out, w)
				}
				start, words = i+size, 0
			}
		}
		i += size
	}
	if w, ok := trimSpan(text, span{start, s.end}); ok {
		out = append(out, w)
	}
	return out
}

// normalizeSpace collapses runs of whitespace into single spaces.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "can": true, "do": true, "does": true, "for": true,
	"from": true, "how": true, "i": true, "if": true, "in": true, "is": true,
	"it": true, "me": true, "my": true, "of": true, "on": true, "or": true,
	"the": true, "this": true, "that": true, "there": true, "to": true,
	"was": true, "what": true, "when": true, "where": true, "which": true,
	"who": true, "why": true, "will": true, "with": true, "you": true,
	"your": true, "we": true, "our": true, "any": true, "about": true,
	"should": true, "would": true, "could": true, "have": true, "has": true,
	"am": true, "tell": true, "explain": true, "document": true,
}

// stemLen truncates tokens so that inflections share a key
// ("terminate", "terminated", "termination" all become "termin").
const stemLen = 6

// tokens returns the distinct content-word stems of s.
func tokens(s string) map[string]bool {
	set := make(map[string]bool)
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if utf8.RuneCountInString(w) < 2 || stopwords[w] {
			continue
		}
		if r := []rune(w); len(r) > stemLen {
			w = string(r[:stemLen])
		}
		set[w] = true
	}
	return set
}
