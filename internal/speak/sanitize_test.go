package speak

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "markdown emphasis",
			in:   "The answer is **42**, which is _quite_ famous.",
			want: "The answer is 42, which is quite famous.",
		},
		{
			name: "inline code",
			in:   "Run `go build` to compile.",
			want: "Run go build to compile.",
		},
		{
			name: "code block dropped",
			in:   "Like this:\n```go\nfmt.Println(1)\n```\nDone.",
			want: "Like this: Done.",
		},
		{
			name: "urls become the word link",
			in:   "See https://example.com/a?b=c for details.",
			want: "See link for details.",
		},
		{
			name: "headings and bullets",
			in:   "# Plan\n- first\n- second",
			want: "Plan first second",
		},
		{
			name: "whitespace collapsed",
			in:   "too   many\n\n\nspaces",
			want: "too many spaces",
		},
		{
			name: "identity statements removed",
			in:   "As an AI, I cannot do that, Sir.",
			want: ", I cannot do that, Sir.",
		},
		{
			name: "non-substantial remainder becomes empty",
			in:   "```\nonly code\n```",
			want: "",
		},
		{
			name: "single character is not substantial",
			in:   "!k!",
			want: "",
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if got := Sanitize(c.in); got != c.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestChunksSplitsAtSentences(t *testing.T) {
	t.Parallel()

	chunks := Chunks("First sentence. Second one! Third? Trailing")
	want := []string{"First sentence.", "Second one!", "Third?", "Trailing"}
	if len(chunks) != len(want) {
		t.Fatalf("chunks = %q", chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunks[%d] = %q, want %q", i, chunks[i], want[i])
		}
	}
}

func TestChunksEmptyInput(t *testing.T) {
	t.Parallel()

	if got := Chunks("   "); got != nil {
		t.Fatalf("want nil, got %q", got)
	}
}

func TestChunksBoundsLongSentences(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("word ", 200)
	for i, chunk := range Chunks(long) {
		if n := len([]rune(chunk)); n > maxChunkRunes {
			t.Fatalf("chunk %d has %d runes, exceeds bound", i, n)
		}
	}
}

func TestChunksSplitLongSentencesByRunes(t *testing.T) {
	t.Parallel()

	// Two-byte runes: splitting by bytes would cut chunks at roughly half
	// the rune bound.
	long := strings.TrimSpace(strings.Repeat("ΩΩΩΩ ", 200))
	chunks := Chunks(long)
	if len(chunks) < 2 {
		t.Fatalf("expected a split, got %d chunk(s)", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > maxChunkRunes {
			t.Fatalf("chunk %d has %d runes, exceeds bound", i, n)
		}
	}
	// 48 words of 4 runes plus separators fit the 240-rune bound exactly;
	// byte-based packing stops near 129.
	if n := len([]rune(chunks[0])); n != 239 {
		t.Fatalf("first chunk has %d runes, want 239", n)
	}
}
