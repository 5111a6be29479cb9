package tabular

import (
	"slices"
	"strings"

	"github.com/adrianliechti/ingester/pkg/document"
)

// Parser finds tables in positioned words. Each table is a list of rows of cell strings.
type Parser interface {
	Parse(words []document.Word) [][][]string
}

var _ Parser = (*Layout)(nil)

// Layout detects a table from word geometry alone: words are bucketed into rows by their vertical
// center, split into cells at wide horizontal gaps, and cells are aligned to column spans shared
// across rows.
type Layout struct {
	// RowTolerance is the maximum center distance of words on one row, relative to the median word height.
	RowTolerance float64

	// ColumnGap is the minimum gap between two cells, relative to the median word height.
	ColumnGap float64

	MinRows    int
	MinColumns int
}

func New() *Layout {
	return &Layout{
		RowTolerance: 0.5,
		ColumnGap:    1.0,

		MinRows:    2,
		MinColumns: 2,
	}
}

type cell struct {
	xMin float64
	xMax float64

	text string
}

type span struct {
	xMin float64
	xMax float64
}

func (l *Layout) Parse(words []document.Word) [][][]string {
	var filtered []document.Word

	for _, w := range words {
		if strings.TrimSpace(w.Text) != "" {
			filtered = append(filtered, w)
		}
	}

	if len(filtered) == 0 {
		return nil
	}

	height := medianHeight(filtered)

	rows := groupRows(filtered, height*l.RowTolerance)

	var cells [][]cell
	multi := 0

	for _, row := range rows {
		c := splitCells(row, height*l.ColumnGap)
		cells = append(cells, c)

		if len(c) >= l.MinColumns {
			multi++
		}
	}

	if multi < l.MinRows {
		return nil
	}

	spans := columnSpans(cells, l.MinColumns)

	if len(spans) < l.MinColumns {
		return nil
	}

	var grid [][]string

	for _, row := range cells {
		values := make([]string, len(spans))

		for _, c := range row {
			i := nearestSpan(spans, (c.xMin+c.xMax)/2)

			if values[i] != "" {
				values[i] += " "
			}

			values[i] += c.text
		}

		grid = append(grid, values)
	}

	return [][][]string{grid}
}

func medianHeight(words []document.Word) float64 {
	var heights []float64

	for _, w := range words {
		h := w.Box.Height()

		if h <= 0 {
			h = w.FontSize
		}

		if h > 0 {
			heights = append(heights, h)
		}
	}

	if len(heights) == 0 {
		return 10
	}

	slices.Sort(heights)
	return heights[len(heights)/2]
}

func groupRows(words []document.Word, tolerance float64) [][]document.Word {
	sorted := slices.Clone(words)

	slices.SortStableFunc(sorted, func(a, b document.Word) int {
		_, ay := a.Box.Center()
		_, by := b.Box.Center()

		switch {
		case ay < by:
			return -1
		case ay > by:
			return 1
		default:
			return 0
		}
	})

	var rows [][]document.Word
	var center float64

	for _, w := range sorted {
		_, y := w.Box.Center()

		if len(rows) > 0 && y-center <= tolerance {
			rows[len(rows)-1] = append(rows[len(rows)-1], w)
			continue
		}

		rows = append(rows, []document.Word{w})
		center = y
	}

	for _, row := range rows {
		slices.SortStableFunc(row, func(a, b document.Word) int {
			switch {
			case a.Box.XMin < b.Box.XMin:
				return -1
			case a.Box.XMin > b.Box.XMin:
				return 1
			default:
				return 0
			}
		})
	}

	return rows
}

func splitCells(row []document.Word, gap float64) []cell {
	var result []cell

	for _, w := range row {
		if len(result) > 0 {
			last := &result[len(result)-1]

			if w.Box.XMin-last.xMax < gap {
				last.text += " " + strings.TrimSpace(w.Text)
				last.xMax = max(last.xMax, w.Box.XMax)

				continue
			}
		}

		result = append(result, cell{
			xMin: w.Box.XMin,
			xMax: w.Box.XMax,

			text: strings.TrimSpace(w.Text),
		})
	}

	return result
}

// columnSpans merges the horizontal extents of cells from multi-cell rows into column spans.
func columnSpans(rows [][]cell, minColumns int) []span {
	var intervals []span

	for _, row := range rows {
		if len(row) < minColumns {
			continue
		}

		for _, c := range row {
			intervals = append(intervals, span{c.xMin, c.xMax})
		}
	}

	slices.SortFunc(intervals, func(a, b span) int {
		switch {
		case a.xMin < b.xMin:
			return -1
		case a.xMin > b.xMin:
			return 1
		default:
			return 0
		}
	})

	var spans []span

	for _, i := range intervals {
		if len(spans) > 0 && i.xMin <= spans[len(spans)-1].xMax {
			spans[len(spans)-1].xMax = max(spans[len(spans)-1].xMax, i.xMax)
			continue
		}

		spans = append(spans, i)
	}

	return spans
}

func nearestSpan(spans []span, x float64) int {
	best := 0
	distance := -1.0

	for i, s := range spans {
		if x >= s.xMin && x <= s.xMax {
			return i
		}

		d := min(abs(x-s.xMin), abs(x-s.xMax))

		if distance < 0 || d < distance {
			best = i
			distance = d
		}
	}

	return best
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}

	return v
}
