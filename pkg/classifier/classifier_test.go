package classifier_test

import (
	"testing"

	"github.com/adrianliechti/ingester/pkg/classifier"
	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/element"

	"github.com/stretchr/testify/assert"
)

const math = `<p:sp><a:p><a14:m><m:oMathPara><m:oMath><m:r><m:t>x</m:t></m:r></m:oMath></m:oMathPara></a14:m></a:p></p:sp>`

func TestClassify(t *testing.T) {
	labels := classifier.NewLabels()

	tests := []struct {
		label string
		want  element.Type
	}{
		{"title", element.TypeTitle},
		{"plain text", element.TypeText},
		{"Text", element.TypeText},
		{"figure", element.TypeImage},
		{"figure_caption", element.TypeCaption},
		{"table_footnote", element.TypeCaption},
		{"table", element.TypeTable},
		{"isolate_formula", element.TypeFormula},
		{"equation", element.TypeFormula},
		{"chart", element.TypeChart},
		{"stamp", element.TypeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, ok := labels.Classify(tt.label)

			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyIgnore(t *testing.T) {
	_, ok := classifier.NewLabels().Classify("abandon")
	assert.False(t, ok)

	labels := classifier.NewLabels("header", "footer")

	_, ok = labels.Classify(" Footer ")
	assert.False(t, ok)

	got, ok := labels.Classify("abandon")
	assert.True(t, ok, "custom ignore sets replace the default")
	assert.Equal(t, element.TypeUnknown, got)
}

func TestShape(t *testing.T) {
	picture := &document.Image{Content: []byte("png"), ContentType: "image/png"}

	tests := []struct {
		name  string
		shape document.Shape
		want  element.Type
	}{
		{
			name:  "picture",
			shape: document.Shape{Kind: document.ShapePicture, Markup: math},
			want:  element.TypeImage,
		},
		{
			name:  "table",
			shape: document.Shape{Kind: document.ShapeTable, Text: "a b"},
			want:  element.TypeTable,
		},
		{
			name:  "chart",
			shape: document.Shape{Kind: document.ShapeChart},
			want:  element.TypeChart,
		},
		{
			name:  "embedded object",
			shape: document.Shape{Kind: document.ShapeObject},
			want:  element.TypeFormula,
		},
		{
			name:  "math markup wins over text",
			shape: document.Shape{Kind: document.ShapeText, Markup: math, Text: "x"},
			want:  element.TypeFormula,
		},
		{
			name: "group with nested math",
			shape: document.Shape{
				Kind: document.ShapeGroup,
				Children: []document.Shape{
					{Kind: document.ShapeText, Text: "label"},
					{Kind: document.ShapeGroup, Children: []document.Shape{{Kind: document.ShapeText, Markup: math}}},
				},
			},
			want: element.TypeFormula,
		},
		{
			name: "group with embedded object",
			shape: document.Shape{
				Kind:     document.ShapeGroup,
				Children: []document.Shape{{Kind: document.ShapeObject}},
			},
			want: element.TypeFormula,
		},
		{
			name: "plain group",
			shape: document.Shape{
				Kind:     document.ShapeGroup,
				Children: []document.Shape{{Kind: document.ShapeText, Text: "a"}, {Kind: document.ShapePicture}},
			},
			want: element.TypeGroup,
		},
		{
			name:  "placeholder with image",
			shape: document.Shape{Kind: document.ShapePlaceholder, Image: picture, Text: "caption"},
			want:  element.TypeImage,
		},
		{
			name:  "placeholder with math",
			shape: document.Shape{Kind: document.ShapePlaceholder, Markup: math, Text: "x"},
			want:  element.TypeFormula,
		},
		{
			name:  "placeholder with text",
			shape: document.Shape{Kind: document.ShapePlaceholder, Text: "Agenda"},
			want:  element.TypeText,
		},
		{
			name:  "empty placeholder",
			shape: document.Shape{Kind: document.ShapePlaceholder, Text: "  "},
			want:  element.TypeUnknown,
		},
		{
			name:  "text",
			shape: document.Shape{Kind: document.ShapeText, Text: "Hello"},
			want:  element.TypeText,
		},
		{
			name:  "other with text",
			shape: document.Shape{Kind: document.ShapeOther, Text: "Arrow label"},
			want:  element.TypeText,
		},
		{
			name:  "empty shape",
			shape: document.Shape{Kind: document.ShapeOther},
			want:  element.TypeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.Shape(tt.shape))
		})
	}
}
