package awsprisma

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestShorten(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits unchanged", in: "Open Port - i-123", width: 150, want: "Open Port - i-123"},
		{name: "exactly at the limit", in: "abcd efgh", width: 9, want: "abcd efgh"},
		{name: "whitespace collapsed", in: "  S3   bucket\tis\npublic  ", width: 150, want: "S3 bucket is public"},
		{name: "drops whole words", in: "one two three four five", width: 16, want: "one two [...]"},
		{name: "first word too long", in: "supercalifragilistic word", width: 12, want: "[...]"},
		{name: "counts characters not bytes", in: "größe größe größe", width: 17, want: "größe größe größe"},
		{name: "empty", in: "", width: 10, want: ""},
		{name: "breaks after a hyphen between letters", in: "alpha-beta-gamma-delta", width: 18, want: "alpha-beta- [...]"},
		{name: "keeps hyphens next to digits", in: "Open Port - i-1234567890abcdef0 sg-0abc-def", width: 30, want: "Open Port - [...]"},
		{
			name:  "hyphenated slug",
			in:    strings.Repeat("AWS-Security-Group-allows-all-traffic-on-all-ports-", 4) + " - i-123",
			width: 150,
			want: strings.Repeat("AWS-Security-Group-allows-all-traffic-on-all-ports-", 2) +
				"AWS-Security-Group-allows-all-traffic-on- [...]",
		},
		{
			name:  "arn",
			in:    "IAM role too permissive - arn:aws:iam::123456789012:role/service-role/" + strings.Repeat("admin-access-", 10),
			width: 150,
			want: "IAM role too permissive - arn:aws:iam::123456789012:role/service-role/" +
				strings.Repeat("admin-access-", 5) + "admin- [...]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Shorten(tt.in, tt.width)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), tt.width)
		})
	}
}

func TestShorten_NeverBreaksAWord(t *testing.T) {
	words := strings.Fields(strings.Repeat("Ensure that CloudTrail log file validation is enabled for all regions ", 5))
	in := strings.Join(words, " ")

	out := Shorten(in, 150)
	assert.LessOrEqual(t, utf8.RuneCountInString(out), 150)
	assert.True(t, strings.HasSuffix(out, truncationMarker))

	known := make(map[string]bool, len(words))
	for _, w := range words {
		known[w] = true
	}
	for _, w := range strings.Fields(strings.TrimSuffix(out, truncationMarker)) {
		assert.True(t, known[w], "word %q was cut", w)
	}
}
