package pptx

import (
	"mime"
	"path"
	"strings"

	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/geometry"
)

// transform maps a box from a child coordinate space into slide space.
type transform func(geometry.Box) geometry.Box

func identity(b geometry.Box) geometry.Box {
	return b
}

type reader struct {
	doc  *Document
	rels map[string]string
}

func (r *reader) shapes(tree *node, t transform) []document.Shape {
	var result []document.Shape

	for _, n := range tree.children {
		if s, ok := r.shape(n, t); ok {
			result = append(result, s)
		}
	}

	return result
}

func (r *reader) shape(n *node, t transform) (document.Shape, bool) {
	switch n.name.Local {
	case "sp":
		return r.text(n, t), true

	case "pic":
		return r.picture(n, t), true

	case "graphicFrame":
		return r.frame(n, t), true

	case "grpSp":
		return r.group(n, t), true

	case "cxnSp":
		s := r.common(n, n.path("nvCxnSpPr", "cNvPr"), n.path("spPr", "xfrm"), t)
		s.Kind = document.ShapeOther

		return s, true

	case "AlternateContent":
		return r.alternate(n, t)
	}

	return document.Shape{}, false
}

func (r *reader) common(n, props, xfrm *node, t transform) document.Shape {
	return document.Shape{
		ID:   props.attr("id"),
		Name: props.attr("name"),

		Box:    t(position(xfrm)),
		Markup: string(n.markup),
	}
}

func (r *reader) text(n *node, t transform) document.Shape {
	s := r.common(n, n.path("nvSpPr", "cNvPr"), n.path("spPr", "xfrm"), t)
	s.Kind = document.ShapeText

	if body := n.child("txBody"); body != nil {
		s.Text = strings.Join(body.paragraphs(), "\n")
	} else {
		s.Kind = document.ShapeOther
	}

	if n.path("nvSpPr", "nvPr", "ph") != nil {
		s.Kind = document.ShapePlaceholder
	}

	return s
}

func (r *reader) picture(n *node, t transform) document.Shape {
	s := r.common(n, n.path("nvPicPr", "cNvPr"), n.path("spPr", "xfrm"), t)
	s.Kind = document.ShapePicture

	s.Image = r.image(n.child("blipFill").find("blip"))

	if n.path("nvPicPr", "nvPr", "ph") != nil {
		s.Kind = document.ShapePlaceholder
	}

	return s
}

func (r *reader) frame(n *node, t transform) document.Shape {
	s := r.common(n, n.path("nvGraphicFramePr", "cNvPr"), n.child("xfrm"), t)
	s.Kind = document.ShapeOther

	data := n.path("graphic", "graphicData")
	uri := data.attr("uri")

	switch {
	case strings.HasSuffix(uri, "/table"):
		s.Kind = document.ShapeTable
		s.Table = table(data.child("tbl"))

	case strings.HasSuffix(uri, "/chart"):
		s.Kind = document.ShapeChart

	case strings.HasSuffix(uri, "/ole"):
		s.Kind = document.ShapeObject

		// the preview picture of the embedded object
		s.Image = r.image(data.find("blip"))

	default:
		s.Text = strings.Join(data.paragraphs(), "\n")
	}

	return s
}

func (r *reader) group(n *node, t transform) document.Shape {
	xfrm := n.path("grpSpPr", "xfrm")

	s := r.common(n, n.path("nvGrpSpPr", "cNvPr"), xfrm, t)
	s.Kind = document.ShapeGroup

	s.Children = r.shapes(n, nested(xfrm, t))

	var texts []string

	for _, c := range s.Children {
		if text := strings.TrimSpace(c.Text); text != "" {
			texts = append(texts, text)
		}
	}

	s.Text = strings.Join(texts, "\n")

	return s
}

// alternate reads a markup compatibility block. The richer choice is preferred, the picture of the
// fallback is kept for shapes that carry no image of their own (equations render to one).
func (r *reader) alternate(n *node, t transform) (document.Shape, bool) {
	var choice, fallback *document.Shape

	for _, branch := range n.children {
		for _, c := range branch.children {
			s, ok := r.shape(c, t)

			if !ok {
				continue
			}

			if branch.is("Choice") && choice == nil {
				choice = &s
			}

			if branch.is("Fallback") && fallback == nil {
				fallback = &s
			}
		}
	}

	if choice == nil {
		choice = fallback
	}

	if choice == nil {
		return document.Shape{}, false
	}

	s := *choice
	s.Markup = string(n.markup)

	if s.Image == nil && fallback != nil {
		s.Image = fallback.Image
	}

	return s, true
}

func (r *reader) image(blip *node) *document.Image {
	id := blip.relation("embed")

	if id == "" {
		return nil
	}

	target, ok := r.rels[id]

	if !ok {
		return nil
	}

	data, err := r.doc.read(target)

	if err != nil || len(data) == 0 {
		return nil
	}

	contentType := mime.TypeByExtension(path.Ext(target))

	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return &document.Image{
		Content:     data,
		ContentType: contentType,
	}
}

func position(xfrm *node) geometry.Box {
	off := xfrm.child("off")
	ext := xfrm.child("ext")

	x := float64(off.int("x"))
	y := float64(off.int("y"))

	return geometry.NewBox(x, y, x+float64(ext.int("cx")), y+float64(ext.int("cy")))
}

// nested builds the transform for the children of a group from its child offset and extent.
func nested(xfrm *node, parent transform) transform {
	outer := position(xfrm)

	chOff := xfrm.child("chOff")
	chExt := xfrm.child("chExt")

	cx := float64(chOff.int("x"))
	cy := float64(chOff.int("y"))

	sx, sy := 1.0, 1.0

	if w := float64(chExt.int("cx")); w > 0 {
		sx = outer.Width() / w
	}

	if h := float64(chExt.int("cy")); h > 0 {
		sy = outer.Height() / h
	}

	return func(b geometry.Box) geometry.Box {
		return parent(geometry.NewBox(
			outer.XMin+(b.XMin-cx)*sx,
			outer.YMin+(b.YMin-cy)*sy,
			outer.XMin+(b.XMax-cx)*sx,
			outer.YMin+(b.YMax-cy)*sy,
		))
	}
}

func table(tbl *node) [][]string {
	var rows [][]string

	for _, tr := range tbl.all("tr") {
		var row []string

		for _, tc := range tr.children {
			if !tc.is("tc") {
				continue
			}

			if tc.attr("hMerge") == "1" || tc.attr("vMerge") == "1" {
				row = append(row, "")
				continue
			}

			row = append(row, strings.TrimSpace(strings.Join(tc.paragraphs(), "\n")))
		}

		rows = append(rows, row)
	}

	return rows
}
