package element

import (
	"github.com/adrianliechti/ingester/pkg/geometry"
)

type Type string

const (
	TypeText    Type = "text"
	TypeTitle   Type = "title"
	TypeCaption Type = "caption"
	TypeTable   Type = "table"
	TypeFormula Type = "formula"
	TypeImage   Type = "image"
	TypeChart   Type = "chart"
	TypeGroup   Type = "group"
	TypeUnknown Type = "unknown"
)

// Placeholder is the content of elements no handler can extract.
const Placeholder = "<UNHANDLED_ELEMENT>"

// Element is one classified, content-bearing unit of a page or slide.
type Element struct {
	ID   string `json:"id"`
	Type Type   `json:"type"`

	Label string `json:"label,omitempty"`

	Box  geometry.Box   `json:"box"`
	Size *geometry.Size `json:"size,omitempty"`

	Confidence float64 `json:"confidence,omitempty"`

	Content any    `json:"content"`
	Error   string `json:"error,omitempty"`
}

type Page struct {
	Number int `json:"number"`

	Elements []Element `json:"elements"`
}

// Table is the normalized content of a table element.
type Table struct {
	Rows    int `json:"rowCount"`
	Columns int `json:"columnCount"`

	Grid     [][]string `json:"grid"`
	Markdown string     `json:"markdown"`

	Title     string `json:"title,omitempty"`
	Footnotes string `json:"footnotes,omitempty"`

	Source string `json:"source"`
	Error  string `json:"error,omitempty"`
}

// Formula is the content of a formula element. LaTeX is nil when no layer produced any.
type Formula struct {
	LaTeX  *string `json:"latex"`
	MathML string  `json:"mathml,omitempty"`

	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`

	Error string `json:"error,omitempty"`
}

func (f *Formula) Text() string {
	if f == nil || f.LaTeX == nil {
		return ""
	}

	return *f.LaTeX
}
