package unstructured

import (
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/ingester"
)

func (h *Handler) handlePartition(w http.ResponseWriter, r *http.Request) {
	if h.Ingester == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("ingester not configured"))
		return
	}

	file, header, err := r.FormFile("files")

	if err != nil {
		file, header, err = r.FormFile("file")
	}

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	defer file.Close()

	dir, err := os.MkdirTemp("", "ingester-")

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	defer os.RemoveAll(dir)

	name := filepath.Base(header.Filename)
	path := filepath.Join(dir, name)

	if err := writeFile(path, file); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	pages, err := h.Ingester.Process(r.Context(), path, nil)

	if errors.Is(err, ingester.ErrUnsupported) {
		writeError(w, http.StatusUnsupportedMediaType, err)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	result := []Partition{}

	for _, page := range pages {
		for _, e := range page.Elements {
			if p, ok := partition(name, page.Number, e); ok {
				result = append(result, p)
			}
		}
	}

	writeJson(w, result)
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)

	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// partition converts an element. Failed elements and elements without text are skipped.
func partition(filename string, page int, e element.Element) (Partition, bool) {
	p := Partition{
		ID:   e.ID,
		Type: partitionType(e.Type),

		Metadata: PartitionMetadata{
			FileName:   filename,
			PageNumber: page,
		},
	}

	switch content := e.Content.(type) {
	case string:
		// error markers are no document text
		if e.Error != "" {
			return p, false
		}

		p.Text = content

	case *element.Table:
		p.Text = content.Markdown
		p.Metadata.TextAsHTML = tableHTML(content.Grid)

	case *element.Formula:
		p.Text = content.Text()

	case nil:
	default:
		p.Text = fmt.Sprint(content)
	}

	if p.Text == "" || p.Text == element.Placeholder {
		return p, false
	}

	return p, true
}

func partitionType(t element.Type) string {
	switch t {
	case element.TypeTitle:
		return "Title"

	case element.TypeText:
		return "NarrativeText"

	case element.TypeCaption:
		return "FigureCaption"

	case element.TypeTable:
		return "Table"

	case element.TypeFormula:
		return "Formula"

	case element.TypeImage, element.TypeChart:
		return "Image"
	}

	return "UncategorizedText"
}

func tableHTML(grid [][]string) string {
	if len(grid) == 0 {
		return ""
	}

	var b strings.Builder

	b.WriteString("<table>")

	for _, row := range grid {
		b.WriteString("<tr>")

		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(cell))
			b.WriteString("</td>")
		}

		b.WriteString("</tr>")
	}

	b.WriteString("</table>")

	return b.String()
}
