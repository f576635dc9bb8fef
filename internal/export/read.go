package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// TruncatedSuffix is appended to content cut at the size cap.
const TruncatedSuffix = "\n... [TRUNCATED]"

// Encoding names the decoder that produced a file's text.
type Encoding string

const (
	EncodingUTF8    Encoding = "utf-8"
	EncodingWin1252 Encoding = "windows-1252"
	EncodingLossy   Encoding = "utf-8 (lossy)"
)

// Content is one file's decoded text.
type Content struct {
	Text      string
	Encoding  Encoding
	Truncated bool
	// Bytes is the number of source bytes represented by Text.
	Bytes int64
}

// ReadContent reads at most limit bytes of path. One extra byte is requested
// to detect truncation; a truncated read is cut back to a character
// boundary and marked with TruncatedSuffix.
func ReadContent(path string, limit int64) (Content, error) {
	f, err := os.Open(path)
	if err != nil {
		return Content{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return Content{}, fmt.Errorf("read %s: %w", path, err)
	}

	truncated := int64(len(data)) > limit
	if truncated {
		data = trimPartialRune(data[:limit])
	}

	c := decode(data)
	c.Bytes = int64(len(data))
	if truncated {
		c.Truncated = true
		c.Text += TruncatedSuffix
	}
	return c, nil
}

// decode tries UTF-8, then Windows-1252, then UTF-8 with replacement
// characters. It never fails.
func decode(data []byte) Content {
	if utf8.Valid(data) {
		return Content{Text: string(data), Encoding: EncodingUTF8}
	}
	if out, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		return Content{Text: string(out), Encoding: EncodingWin1252}
	}
	return Content{Text: strings.ToValidUTF8(string(data), "�"), Encoding: EncodingLossy}
}

// trimPartialRune drops an incomplete UTF-8 sequence left at the end of a
// cut. Input that is not UTF-8 anyway is returned unchanged.
func trimPartialRune(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}
	for cut := 1; cut < utf8.UTFMax && cut <= len(data); cut++ {
		if utf8.Valid(data[:len(data)-cut]) {
			return data[:len(data)-cut]
		}
	}
	return data
}

// HasMarker reports whether the file at path starts with the generated-file
// marker. Unreadable files report false.
func HasMarker(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, len(Marker))
	n, _ := io.ReadFull(f, head)
	return bytes.Equal(head[:n], []byte(Marker))
}

// fenceFor returns a backtick fence longer than any backtick run in text.
func fenceFor(text string) string {
	longest, run := 0, 0
	for i := 0; i < len(text); i++ {
		if text[i] == '`' {
			run++
			longest = max(longest, run)
			continue
		}
		run = 0
	}
	return strings.Repeat("`", max(3, longest+1))
}
