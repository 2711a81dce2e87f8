package prompt

import (
	"regexp"
	"strings"
	"time"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Markdown returns content as UTF-8 bytes prefixed with a byte order mark so
// spreadsheet and text tools on Windows pick the right encoding.
func Markdown(content string) []byte {
	out := make([]byte, 0, len(utf8BOM)+len(content))
	out = append(out, utf8BOM...)
	return append(out, content...)
}

var unsafeFilename = regexp.MustCompile(`[\\/:*?"<>|\s]+`)

// Filename is the download name for a runner's plan generated on day.
func Filename(name string, day time.Time) string {
	name = strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(name), "_"), "_")
	if name == "" {
		name = "runner"
	}
	return "training_plan_" + name + "_" + day.Format("20060102") + ".md"
}

var htmlLine = regexp.MustCompile(`(?i)</?(hr|h[1-6]|p|strong|em|div|span|br|ul|ol|li|a|table|tr|td|th)\b[^>]*>`)

// Sanitize drops every line of generated text that carries an HTML tag so
// only Markdown remains.
func Sanitize(content string) string {
	if content == "" {
		return ""
	}
	lines := strings.Split(content, "\n")
	kept := lines[:0]
	for _, l := range lines {
		if htmlLine.MatchString(l) {
			continue
		}
		kept = append(kept, l)
	}
	return strings.Join(kept, "\n")
}
