// Package textx turns markup-bearing note content into plain text for
// analysis and matching.
package textx

import (
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// PlainText strips every <...> tag, turns &nbsp; into a space and trims the
// result. No other entity is decoded. PlainText is idempotent.
func PlainText(content string) string {
	if content == "" {
		return ""
	}
	s := tagRe.ReplaceAllString(content, "")
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return strings.TrimSpace(s)
}
