package text

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var tableMarkdown = goldmark.New(goldmark.WithExtensions(extension.Table))

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", " ", "\n", " ")

// MarkdownTable renders rows as a GFM table. The first row becomes the header.
func MarkdownTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	var sb strings.Builder

	writeRow := func(row []string) {
		sb.WriteString("|")

		for _, cell := range row {
			sb.WriteString(" ")
			sb.WriteString(cellEscaper.Replace(cell))
			sb.WriteString(" |")
		}

		sb.WriteString("\n")
	}

	writeRow(rows[0])

	sb.WriteString("|")

	for range rows[0] {
		sb.WriteString(" --- |")
	}

	sb.WriteString("\n")

	for _, row := range rows[1:] {
		writeRow(row)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// ParseTables returns every GFM table found in markdown, header row first.
func ParseTables(markdown string) [][][]string {
	source := []byte(markdown)
	doc := tableMarkdown.Parser().Parse(text.NewReader(source))

	var tables [][][]string

	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != east.KindTable {
			return ast.WalkContinue, nil
		}

		var rows [][]string

		for row := n.FirstChild(); row != nil; row = row.NextSibling() {
			if row.Kind() != east.KindTableHeader && row.Kind() != east.KindTableRow {
				continue
			}

			var cells []string

			for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
				cells = append(cells, strings.TrimSpace(inlineText(cell, source)))
			}

			rows = append(rows, cells)
		}

		if len(rows) > 0 {
			tables = append(tables, rows)
		}

		return ast.WalkSkipChildren, nil
	})

	return tables
}

func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))

			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteString(" ")
			}

		case *ast.String:
			sb.Write(v.Value)

		default:
			sb.WriteString(inlineText(c, source))
		}
	}

	return sb.String()
}
