package classifier

import (
	"strings"

	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/element"
	"github.com/adrianliechti/ingester/pkg/omml"
)

// DefaultIgnore lists detector labels that never become elements.
var DefaultIgnore = []string{"abandon"}

var labels = map[string]element.Type{
	"title": element.TypeTitle,

	"text":       element.TypeText,
	"plain text": element.TypeText,
	"plain_text": element.TypeText,

	"figure": element.TypeImage,
	"image":  element.TypeImage,
	"photo":  element.TypeImage,

	"figure_caption":  element.TypeCaption,
	"table_caption":   element.TypeCaption,
	"table_footnote":  element.TypeCaption,
	"formula_caption": element.TypeCaption,

	"table": element.TypeTable,

	"isolate_formula": element.TypeFormula,
	"formula":         element.TypeFormula,
	"equation":        element.TypeFormula,

	"chart": element.TypeChart,
}

type Labels struct {
	ignore map[string]bool
}

func NewLabels(ignore ...string) *Labels {
	if len(ignore) == 0 {
		ignore = DefaultIgnore
	}

	l := &Labels{
		ignore: make(map[string]bool),
	}

	for _, label := range ignore {
		l.ignore[normalize(label)] = true
	}

	return l
}

// Classify maps a detector label into the element taxonomy. It returns false for ignored labels.
func (l *Labels) Classify(label string) (element.Type, bool) {
	key := normalize(label)

	if l.ignore[key] {
		return "", false
	}

	if t, ok := labels[key]; ok {
		return t, true
	}

	return element.TypeUnknown, true
}

// Shape classifies a native slide shape. Math markup always wins over plain text.
func Shape(s document.Shape) element.Type {
	switch s.Kind {
	case document.ShapePicture:
		return element.TypeImage

	case document.ShapeTable:
		return element.TypeTable

	case document.ShapeChart:
		return element.TypeChart

	case document.ShapeObject:
		return element.TypeFormula
	}

	if omml.Contains(s.Markup) {
		return element.TypeFormula
	}

	switch s.Kind {
	case document.ShapeGroup:
		if hasEquation(s.Children) {
			return element.TypeFormula
		}

		return element.TypeGroup

	case document.ShapePlaceholder:
		if s.Image != nil && len(s.Image.Content) > 0 {
			return element.TypeImage
		}

		if strings.TrimSpace(s.Text) != "" {
			return element.TypeText
		}

		return element.TypeUnknown
	}

	if strings.TrimSpace(s.Text) != "" {
		return element.TypeText
	}

	return element.TypeUnknown
}

func hasEquation(children []document.Shape) bool {
	for _, c := range children {
		if c.Kind == document.ShapeObject || omml.Contains(c.Markup) || strings.Contains(c.Markup, "oleObj") {
			return true
		}

		if hasEquation(c.Children) {
			return true
		}
	}

	return false
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}
