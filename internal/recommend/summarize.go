package recommend

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	summaryTruncateAt  = 300
	shortDescMax       = 220
	shortDescSentence  = 100
	shortDescLastSpace = 180
)

var (
	markupRe   = regexp.MustCompile(`<[^>]*>`)
	spaceRe    = regexp.MustCompile(`\s+`)
	sentenceRe = regexp.MustCompile(`([.?!])\s+`)
)

// cleanText strips markup tags and collapses all whitespace runs to a
// single space.
func cleanText(text string) string {
	text = markupRe.ReplaceAllString(text, " ")
	text = spaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// SummarizeTwoSentences reduces free text to at most two sentences.
// Single-sentence input is split into two clauses on ';' or ',' when
// possible; failing that, overlong text is truncated at a word boundary.
// Empty input yields empty output.
func SummarizeTwoSentences(text string) string {
	text = cleanText(text)
	if text == "" {
		return ""
	}

	sentences := splitSentences(text)
	if len(sentences) >= 2 {
		return sentences[0] + " " + sentences[1]
	}

	if clauses := splitClauses(sentences[0]); clauses != "" {
		return clauses
	}

	if utf8.RuneCountInString(text) > summaryTruncateAt {
		return truncateAtWord(text, summaryTruncateAt) + "…"
	}
	return text
}

// splitSentences splits on '.', '?' or '!' followed by whitespace,
// keeping the terminal punctuation with each sentence.
func splitSentences(text string) []string {
	marked := sentenceRe.ReplaceAllString(text, "$1\x00")
	parts := strings.Split(marked, "\x00")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitClauses turns one sentence into two punctuated clauses when it
// contains a ';' or ',' separator. Returns "" when no split is possible.
func splitClauses(sentence string) string {
	idx := strings.IndexAny(sentence, ";,")
	if idx <= 0 || idx >= len(sentence)-1 {
		return ""
	}

	first := strings.TrimSpace(sentence[:idx])
	second := strings.TrimSpace(sentence[idx+1:])
	if first == "" || second == "" {
		return ""
	}
	return punctuate(first) + " " + punctuate(second)
}

func punctuate(clause string) string {
	if strings.HasSuffix(clause, ".") || strings.HasSuffix(clause, "?") || strings.HasSuffix(clause, "!") {
		return clause
	}
	return clause + "."
}

// truncateAtWord cuts text to at most limit characters, backing up to
// the last space when one exists. Limits count runes, not bytes, so
// multibyte text is never sliced mid-character.
func truncateAtWord(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	head := runes[:limit]
	if cut := lastRuneAny(head, " "); cut > 0 {
		head = head[:cut]
	}
	return strings.TrimSpace(string(head))
}

// ShortDescFromText produces the longer-form description used on
// external candidates: up to 220 characters, preferring a sentence
// boundary, falling back to a late word boundary with an ellipsis.
func ShortDescFromText(text string) string {
	text = cleanText(text)
	runes := []rune(text)
	if len(runes) <= shortDescMax {
		return text
	}

	head := runes[:shortDescMax]
	if cut := lastRuneAny(head, ".?!"); cut > shortDescSentence {
		return strings.TrimSpace(string(head[:cut+1]))
	}

	cut := lastRuneAny(head, " ")
	if cut < shortDescLastSpace {
		cut = shortDescMax
	}
	return strings.TrimSpace(string(head[:cut])) + "…"
}

// lastRuneAny is strings.LastIndexAny over a rune slice, so the
// returned position counts characters rather than bytes.
func lastRuneAny(rs []rune, chars string) int {
	for i := len(rs) - 1; i >= 0; i-- {
		if strings.ContainsRune(chars, rs[i]) {
			return i
		}
	}
	return -1
}

// FallbackMeta synthesizes a short generic description when no real one
// could be fetched, so every item ends up with some text.
func FallbackMeta(title, author string) string {
	var line string
	if author != "" {
		line = fmt.Sprintf("%s by %s; a reader favorite we could not fetch details for just yet.", title, author)
	} else {
		line = fmt.Sprintf("%s; a reader favorite we could not fetch details for just yet.", title)
	}
	return SummarizeTwoSentences(line)
}
