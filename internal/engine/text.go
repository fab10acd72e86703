package engine

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText converts file content to a UTF-8 string. A byte order mark
// selects UTF-8 or UTF-16 decoding; content without one is taken as UTF-8.
// Bytes that are not valid UTF-8 are dropped.
func decodeText(b []byte) string {
	dec := unicode.BOMOverride(encoding.Nop.NewDecoder())
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		out = b
	}
	if utf8.Valid(out) {
		return string(out)
	}
	return strings.ToValidUTF8(string(out), "")
}

// looksBinary reports content that should not be scanned as text: a NUL byte
// in the leading bytes, or a known media, archive or font signature on a head
// that is not valid UTF-8. Text formats such as RTF and PostScript, and plain
// text that happens to begin with "MZ", share signatures with binary types
// and are scanned. UTF-16 text carries NULs and is recognised by its byte
// order mark first.
func looksBinary(b []byte) bool {
	if bytes.HasPrefix(b, bomUTF16LE) || bytes.HasPrefix(b, bomUTF16BE) {
		return false
	}
	const sniff = 8000
	head := b
	truncated := false
	if len(head) > sniff {
		head = head[:sniff]
		truncated = true
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return true
	}
	if validUTF8Head(head, truncated) {
		return false
	}
	return filetype.IsImage(head) || filetype.IsVideo(head) || filetype.IsAudio(head) ||
		filetype.IsArchive(head) || filetype.IsFont(head)
}

// validUTF8Head is utf8.Valid, tolerating a rune cut off at the end of a
// truncated head.
func validUTF8Head(head []byte, truncated bool) bool {
	if utf8.Valid(head) {
		return true
	}
	if !truncated {
		return false
	}
	for i := 1; i < utf8.UTFMax && i <= len(head); i++ {
		if utf8.RuneStart(head[len(head)-i]) {
			return utf8.Valid(head[:len(head)-i])
		}
	}
	return false
}

// lineStarts returns the byte offset of the first character of every line.
func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// columnOf returns the 1-based character column of off within the line
// starting at lineStart.
func columnOf(text string, lineStart, off int) int {
	return utf8.RuneCountInString(text[lineStart:off]) + 1
}
