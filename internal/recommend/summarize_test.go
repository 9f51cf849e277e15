package recommend

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeTwoSentences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "short single sentence unchanged",
			in:   "Hello world.",
			want: "Hello world.",
		},
		{
			name: "keeps first two sentences",
			in:   "First one. Second one! Third one?",
			want: "First one. Second one!",
		},
		{
			name: "strips markup and collapses whitespace",
			in:   "<p>A  tale of   sand.</p> <b>And of spice.</b> More.",
			want: "A tale of sand. And of spice.",
		},
		{
			name: "single sentence split on comma",
			in:   "A sweeping epic of politics, an unforgettable desert world",
			want: "A sweeping epic of politics. an unforgettable desert world.",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, SummarizeTwoSentences(tc.in))
		})
	}
}

func TestSummarizeTruncatesLongSingleSentence(t *testing.T) {
	long := strings.Repeat("wordy ", 80) // ~480 chars, no clause separators
	got := SummarizeTwoSentences(long)

	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len(got), summaryTruncateAt+len("…"))
	// cut lands on a word boundary, so no half word before the ellipsis
	assert.NotContains(t, strings.TrimSuffix(got, "…"), "wordy wordy  ")
}

func TestShortDescFromText(t *testing.T) {
	short := "Fits fine."
	assert.Equal(t, short, ShortDescFromText(short))

	// sentence boundary past char 100 is preferred, no ellipsis
	twoSentences := strings.Repeat("a", 150) + ". " + strings.Repeat("b", 150)
	got := ShortDescFromText(twoSentences)
	assert.Equal(t, strings.Repeat("a", 150)+".", got)

	// no usable sentence boundary: word cut plus ellipsis
	words := strings.Repeat("abcdefghi ", 40)
	got = ShortDescFromText(words)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.LessOrEqual(t, len(got), shortDescMax+len("…"))
}

func TestShortDescCountsCharactersNotBytes(t *testing.T) {
	// 100 characters but 300 bytes; must come back untouched
	within := strings.Repeat("あ", 100)
	assert.Equal(t, within, ShortDescFromText(within))

	// no spaces and no sentence boundary: hard cut at the character
	// limit, never through the middle of a rune
	long := strings.Repeat("あ", 300)
	got := ShortDescFromText(long)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("あ", shortDescMax)+"…", got)
}

func TestSummarizeTruncatesMultibyteAtCharacterLimit(t *testing.T) {
	got := SummarizeTwoSentences(strings.Repeat("本", 400))

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, summaryTruncateAt, utf8.RuneCountInString(strings.TrimSuffix(got, "…")))
}

func TestFallbackMetaAlwaysYieldsText(t *testing.T) {
	withAuthor := FallbackMeta("Dune", "Frank Herbert")
	assert.Contains(t, withAuthor, "Dune")
	assert.Contains(t, withAuthor, "Frank Herbert")

	withoutAuthor := FallbackMeta("Dune", "")
	assert.Contains(t, withoutAuthor, "Dune")
	assert.NotEmpty(t, withoutAuthor)
}
