package text

import (
	"regexp"
	"strings"
)

var (
	paragraphBreak = regexp.MustCompile(`\n[ \t\f\v]*\n\s*`)
	lineBreak      = regexp.MustCompile(`[ \t\f\v]*\n[ \t\f\v]*`)
)

// Normalize cleans the text of a shape. Paragraph breaks survive as a single blank line, line breaks
// as a newline, and every other run of whitespace becomes one space.
func Normalize(text string) string {
	text = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\v", "\n", "\u00a0", " ").Replace(text)

	paragraphs := paragraphBreak.Split(strings.TrimSpace(text), -1)

	for i, p := range paragraphs {
		lines := strings.Split(lineBreak.ReplaceAllString(p, "\n"), "\n")

		for j, line := range lines {
			lines[j] = Collapse(line)
		}

		paragraphs[i] = strings.Join(lines, "\n")
	}

	return strings.TrimSpace(strings.Join(paragraphs, "\n\n"))
}

// Collapse joins the words of text with single spaces, dropping all line structure.
func Collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
