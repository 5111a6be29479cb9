package pdf

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/adrianliechti/ingester/pkg/document"
	"github.com/adrianliechti/ingester/pkg/geometry"

	"github.com/ledongthuc/pdf"
)

const (
	// glyphs on one line have baselines closer than this, relative to the font size
	lineTolerance = 0.5

	// a horizontal gap wider than this, relative to the font size, starts a new word
	wordGap = 0.25
)

// Words merges positioned glyphs into words and converts their boxes from PDF user space into
// top-left page coordinates relative to media.
func Words(texts []pdf.Text, media geometry.Box) []document.Word {
	glyphs := slices.Clone(texts)

	// top of the page first
	slices.SortStableFunc(glyphs, func(a, b pdf.Text) int {
		return cmp.Compare(b.Y, a.Y)
	})

	var lines [][]pdf.Text

	for _, g := range glyphs {
		if g.S == "" {
			continue
		}

		if n := len(lines); n > 0 {
			last := lines[n-1][0]

			if math.Abs(last.Y-g.Y) <= lineTolerance*max(last.FontSize, g.FontSize, 1) {
				lines[n-1] = append(lines[n-1], g)
				continue
			}
		}

		lines = append(lines, []pdf.Text{g})
	}

	var result []document.Word

	for _, line := range lines {
		slices.SortStableFunc(line, func(a, b pdf.Text) int {
			return cmp.Compare(a.X, b.X)
		})

		var current *document.Word
		var end float64

		flush := func() {
			if current != nil && strings.TrimSpace(current.Text) != "" {
				result = append(result, *current)
			}

			current = nil
		}

		for _, g := range line {
			if strings.TrimSpace(g.S) == "" {
				flush()
				continue
			}

			box := glyphBox(g, media)

			if current != nil && g.X-end > wordGap*max(g.FontSize, 1) {
				flush()
			}

			if current == nil {
				current = &document.Word{
					Box:      box,
					FontSize: g.FontSize,
				}
			}

			current.Text += g.S

			current.Box.XMax = max(current.Box.XMax, box.XMax)
			current.Box.YMin = min(current.Box.YMin, box.YMin)
			current.Box.YMax = max(current.Box.YMax, box.YMax)

			end = g.X + g.W
		}

		flush()
	}

	return result
}

func glyphBox(g pdf.Text, media geometry.Box) geometry.Box {
	size := max(g.FontSize, 1)

	x := g.X - media.XMin
	baseline := media.YMax - g.Y

	return geometry.NewBox(x, baseline-size, x+max(g.W, 0), baseline+size*0.2)
}

func sameLine(a, b document.Word) bool {
	_, ay := a.Box.Center()
	_, by := b.Box.Center()

	return math.Abs(ay-by) <= lineTolerance*max(a.Box.Height(), b.Box.Height())
}
