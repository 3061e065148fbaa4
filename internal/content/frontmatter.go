package content

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the calendar date format used in listings.
const DateLayout = "2006-01-02"

var delimiter = []byte("---")

// FrontMatter is the optional YAML header of a post.
type FrontMatter struct {
	Title   string `yaml:"title"`
	Date    string `yaml:"date"`
	Excerpt string `yaml:"excerpt"`
}

// ParseFrontMatter splits a leading "---" delimited YAML block from the body.
// Content without a header is returned unchanged with empty metadata.
func ParseFrontMatter(raw []byte) (FrontMatter, []byte, error) {
	var meta FrontMatter

	src := bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if !bytes.HasPrefix(src, delimiter) {
		return meta, raw, nil
	}

	rest := src[len(delimiter):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		// "---" must be alone on the first line.
		return meta, raw, nil
	}
	rest = rest[nl+1:]

	header, body, found := cutClosing(rest)
	if !found {
		return meta, raw, fmt.Errorf("front matter is not terminated")
	}

	if err := yaml.Unmarshal(header, &meta); err != nil {
		return FrontMatter{}, raw, fmt.Errorf("parse front matter: %w", err)
	}
	meta.Date = normalizeDate(meta.Date)
	return meta, body, nil
}

// cutClosing finds a line consisting solely of "---".
func cutClosing(b []byte) (header, body []byte, found bool) {
	offset := 0
	for offset <= len(b) {
		line := b[offset:]
		end := bytes.IndexByte(line, '\n')
		if end >= 0 {
			line = line[:end]
		}
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), delimiter) {
			header = b[:offset]
			if end < 0 {
				return header, nil, true
			}
			return header, b[offset+end+1:], true
		}
		if end < 0 {
			break
		}
		offset += end + 1
	}
	return nil, nil, false
}

// normalizeDate reduces timestamps to a calendar date. Unparseable values are kept as written.
func normalizeDate(v string) string {
	if v == "" {
		return v
	}
	for _, layout := range []string{DateLayout, time.RFC3339, time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(DateLayout)
		}
	}
	return v
}
