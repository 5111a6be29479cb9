package omml

import (
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

var ErrNoMath = errors.New("no math markup")

// Equation is one converted oMath block.
type Equation struct {
	LaTeX  string
	MathML string
}

// Contains reports whether markup carries Office Math structures.
func Contains(markup string) bool {
	return strings.Contains(markup, "oMath")
}

// Convert finds every top-level oMath block in markup and converts it. Markup may be a fragment
// with undeclared namespace prefixes.
func Convert(markup string) ([]Equation, error) {
	if !Contains(markup) {
		return nil, ErrNoMath
	}

	root, err := parse(markup)

	if err != nil {
		return nil, err
	}

	var result []Equation

	for _, m := range root.find("oMath") {
		latex := normalizeSpace(toLaTeX(m))

		if latex == "" && len(m.children) == 0 {
			continue
		}

		result = append(result, Equation{
			LaTeX:  latex,
			MathML: `<math xmlns="http://www.w3.org/1998/Math/MathML">` + mrow(m) + `</math>`,
		})
	}

	if len(result) == 0 {
		return nil, ErrNoMath
	}

	return result, nil
}

// Join concatenates the LaTeX and MathML of several equations.
func Join(equations []Equation) (string, string) {
	var latex, mathml []string

	for _, e := range equations {
		if e.LaTeX != "" {
			latex = append(latex, e.LaTeX)
		}

		if e.MathML != "" {
			mathml = append(mathml, e.MathML)
		}
	}

	return strings.Join(latex, ` \\ `), strings.Join(mathml, "\n")
}

type node struct {
	name  string
	attrs map[string]string

	text     string
	children []*node
}

func parse(markup string) (*node, error) {
	decoder := xml.NewDecoder(strings.NewReader(markup))
	decoder.Strict = false

	root := &node{name: "#document"}
	stack := []*node{root}

	for {
		token, err := decoder.Token()

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			n := &node{
				name:  t.Name.Local,
				attrs: make(map[string]string),
			}

			for _, a := range t.Attr {
				n.attrs[a.Name.Local] = a.Value
			}

			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)

			stack = append(stack, n)

		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}

		case xml.CharData:
			current := stack[len(stack)-1]

			if current.name == "t" {
				current.text += string(t)
			}
		}
	}

	return root, nil
}

// find returns matching descendants without descending into matches.
func (n *node) find(name string) []*node {
	var result []*node

	for _, c := range n.children {
		if c.name == name {
			result = append(result, c)
			continue
		}

		result = append(result, c.find(name)...)
	}

	return result
}

func (n *node) child(name string) *node {
	if n == nil {
		return nil
	}

	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}

	return nil
}

func (n *node) all(name string) []*node {
	var result []*node

	for _, c := range n.children {
		if c.name == name {
			result = append(result, c)
		}
	}

	return result
}

// prop reads the val attribute of a property element, e.g. naryPr/chr.
func (n *node) prop(props, name string) (string, bool) {
	p := n.child(props).child(name)

	if p == nil {
		return "", false
	}

	val, ok := p.attrs["val"]
	return val, ok
}

func (n *node) plain() string {
	if n == nil {
		return ""
	}

	if n.name == "t" {
		return n.text
	}

	var sb strings.Builder

	for _, c := range n.children {
		sb.WriteString(c.plain())
	}

	return sb.String()
}

func (n *node) empty() bool {
	return strings.TrimSpace(n.plain()) == ""
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func isProperty(name string) bool {
	return strings.HasSuffix(name, "Pr")
}
