package pptx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"
)

const (
	nsMath = "http://schemas.openxmlformats.org/officeDocument/2006/math"
	nsRels = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// node is an element of a parsed part. Markup keeps the raw bytes of the element.
type node struct {
	name  xml.Name
	attrs []xml.Attr

	children []*node
	text     string

	markup []byte
}

func parse(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false

	root := &node{}
	stack := []*node{root}
	starts := []int64{0}

	for {
		offset := dec.InputOffset()
		tok, err := dec.Token()

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, err
		}

		parent := stack[len(stack)-1]

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{
				name:  t.Name,
				attrs: t.Attr,
			}

			parent.children = append(parent.children, n)

			stack = append(stack, n)
			starts = append(starts, offset)

		case xml.EndElement:
			if len(stack) == 1 {
				continue
			}

			start := starts[len(starts)-1]
			parent.markup = data[start:dec.InputOffset()]

			stack = stack[:len(stack)-1]
			starts = starts[:len(starts)-1]

		case xml.CharData:
			parent.text += string(t)
		}
	}

	return root, nil
}

func (n *node) is(local string) bool {
	return n != nil && n.name.Local == local
}

func (n *node) attr(local string) string {
	if n == nil {
		return ""
	}

	for _, a := range n.attrs {
		if a.Name.Local == local {
			return a.Value
		}
	}

	return ""
}

// relation returns the value of an r: relationship attribute.
func (n *node) relation(local string) string {
	if n == nil {
		return ""
	}

	for _, a := range n.attrs {
		if a.Name.Local == local && (a.Name.Space == nsRels || a.Name.Space == "r") {
			return a.Value
		}
	}

	return ""
}

func (n *node) int(local string) int64 {
	v, _ := strconv.ParseInt(n.attr(local), 10, 64)
	return v
}

func (n *node) child(local string) *node {
	if n == nil {
		return nil
	}

	for _, c := range n.children {
		if c.name.Local == local {
			return c
		}
	}

	return nil
}

// path follows a chain of direct children.
func (n *node) path(locals ...string) *node {
	for _, local := range locals {
		n = n.child(local)
	}

	return n
}

// find returns the first descendant named local, depth first.
func (n *node) find(local string) *node {
	if n == nil {
		return nil
	}

	for _, c := range n.children {
		if c.name.Local == local {
			return c
		}

		if found := c.find(local); found != nil {
			return found
		}
	}

	return nil
}

func (n *node) all(local string) []*node {
	if n == nil {
		return nil
	}

	var result []*node

	for _, c := range n.children {
		if c.name.Local == local {
			result = append(result, c)
		}

		result = append(result, c.all(local)...)
	}

	return result
}

// paragraphs returns the text of every a:p below n, skipping math runs.
func (n *node) paragraphs() []string {
	var result []string

	for _, p := range n.all("p") {
		if p.name.Space == nsMath {
			continue
		}

		var sb strings.Builder
		p.collect(&sb)

		result = append(result, sb.String())
	}

	return result
}

func (n *node) collect(sb *strings.Builder) {
	for _, c := range n.children {
		switch {
		case c.name.Space == nsMath:
			continue
		case c.is("t"):
			sb.WriteString(c.text)
		case c.is("br"):
			sb.WriteString("\n")
		case c.is("tab"):
			sb.WriteString("\t")
		default:
			c.collect(sb)
		}
	}
}
