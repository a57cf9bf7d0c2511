package awsprisma

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const truncationMarker = " [...]"

// chunk is a piece of a title that Shorten keeps or drops as a unit.
type chunk struct {
	text  string
	space bool // preceded by a space
}

// Shorten collapses runs of whitespace and, if the result is longer than
// width characters, drops chunks from the end until the rest plus " [...]"
// fits. A chunk is a word, or the part of a hyphenated word up to and
// including a hyphen between letters ("Security-" in "AWS-Security-Group").
// When not even the first chunk fits the result is "[...]".
func Shorten(s string, width int) string {
	words := strings.Fields(s)
	joined := strings.Join(words, " ")
	if utf8.RuneCountInString(joined) <= width {
		return joined
	}

	budget := width - utf8.RuneCountInString(truncationMarker)
	var b strings.Builder
	length := 0
	for _, c := range splitChunks(words) {
		next := length + utf8.RuneCountInString(c.text)
		if c.space && length > 0 {
			next++
		}
		if next > budget {
			break
		}
		if c.space && length > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.text)
		length = next
	}

	if length == 0 {
		return strings.TrimSpace(truncationMarker)
	}
	return b.String() + truncationMarker
}

func splitChunks(words []string) []chunk {
	chunks := make([]chunk, 0, len(words))
	for _, w := range words {
		r := []rune(w)
		start := 0
		for i := range r {
			if r[i] == '-' && hyphenBreak(r, i) {
				chunks = append(chunks, chunk{text: string(r[start : i+1]), space: start == 0})
				start = i + 1
			}
		}
		chunks = append(chunks, chunk{text: string(r[start:]), space: start == 0})
	}
	return chunks
}

// hyphenBreak reports whether a word may break after the hyphen at i. The
// hyphen needs two letters (or letter-hyphen-letter) before it and a letter,
// an optional hyphen and another letter after it, so "i-123" and "sg-0abc"
// stay whole.
func hyphenBreak(r []rune, i int) bool {
	at := func(j int) rune {
		if j < 0 || j >= len(r) {
			return 0
		}
		return r[j]
	}
	before := isWordLetter(at(i-1)) &&
		(isWordLetter(at(i-2)) || (at(i-2) == '-' && isWordLetter(at(i-3))))
	after := isWordLetter(at(i+1)) &&
		(isWordLetter(at(i+2)) || (at(i+2) == '-' && isWordLetter(at(i+3))))
	return before && after
}

func isWordLetter(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}
