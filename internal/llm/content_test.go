package llm

import (
	"strings"
	"testing"
)

func TestTruncateForPrompt(t *testing.T) {
	short := "short content"
	if got := truncateForPrompt(short, 100); got != short {
		t.Errorf("truncateForPrompt(short) = %q, want unchanged", got)
	}

	long := strings.Repeat("a", 60) + strings.Repeat("b", 60)
	got := truncateForPrompt(long, 100)
	if !strings.Contains(got, "\n...\n") {
		t.Errorf("truncateForPrompt(long) = %q, want ellipsis between halves", got)
	}
	if !strings.HasPrefix(got, "aaa") || !strings.HasSuffix(got, "bbb") {
		t.Errorf("truncateForPrompt(long) = %q, want first and last halves kept", got)
	}
}

func TestCleanMarkdownWrapper(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tc := range cases {
		if got := cleanMarkdownWrapper(tc.in); got != tc.want {
			t.Errorf("cleanMarkdownWrapper(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractExcerptFromText(t *testing.T) {
	text := "Here is my answer.\nExcerpt: A short summary of the post.\nTags: [One, Two]"
	got := extractExcerptFromText(text)
	if got != "A short summary of the post." {
		t.Errorf("extractExcerptFromText() = %q, want the excerpt line", got)
	}

	multiline := "Summary:\nThe content on the next line.\n"
	if got := extractExcerptFromText(multiline); got != "The content on the next line." {
		t.Errorf("extractExcerptFromText(multiline) = %q", got)
	}

	if got := extractExcerptFromText("no markers here"); got != "" {
		t.Errorf("extractExcerptFromText(no markers) = %q, want empty", got)
	}
}

func TestExtractTagsFromText(t *testing.T) {
	got := extractTagsFromText(`Some preamble ["Go", "Web Development", "APIs"] trailing`)
	want := []string{"Go", "Web Development", "APIs"}
	if len(got) != len(want) {
		t.Fatalf("extractTagsFromText() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tag[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if got := extractTagsFromText("no brackets"); len(got) != 0 {
		t.Errorf("extractTagsFromText(no brackets) = %v, want empty", got)
	}

	// never more than the cap
	many := extractTagsFromText("[a, b, c, d, e, f, g]")
	if len(many) != defaultMaxTags {
		t.Errorf("len(tags) = %d, want %d", len(many), defaultMaxTags)
	}
}

func TestFallbackExcerpt(t *testing.T) {
	if got := fallbackExcerpt("First sentence. Second sentence."); got != "First sentence" {
		t.Errorf("fallbackExcerpt() = %q, want first sentence", got)
	}

	long := strings.Repeat("x", 200)
	got := fallbackExcerpt(long)
	if len(got) != 150 || !strings.HasSuffix(got, "...") {
		t.Errorf("fallbackExcerpt(long) = %d chars ending %q, want 150 chars ending ...", len(got), got[len(got)-3:])
	}
}
