package pdf

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/adrianliechti/ingester/pkg/geometry"
)

const pointsPerInch = 72

// RenderRegion renders box (points, top-left origin) of a page to PNG at dpi.
func (d *Document) RenderRegion(ctx context.Context, page int, box geometry.Box, dpi int) ([]byte, error) {
	size, err := d.PageSize(page)

	if err != nil {
		return nil, err
	}

	box = box.Intersect(geometry.FromSize(0, 0, size))

	if box.Empty() {
		return nil, errors.New("render region is empty")
	}

	data, err := d.runner.Run(ctx, d.renderer, RenderArgs(d.path, page, box, dpi)...)

	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, errors.New("renderer produced no image")
	}

	return data, nil
}

// RenderArgs builds the pdftoppm arguments that crop box out of page and write a PNG to stdout.
func RenderArgs(path string, page int, box geometry.Box, dpi int) []string {
	scale := float64(dpi) / pointsPerInch

	px := func(v float64) string {
		return strconv.Itoa(int(math.Round(v * scale)))
	}

	number := strconv.Itoa(page + 1)

	return []string{
		"-f", number,
		"-l", number,
		"-r", strconv.Itoa(dpi),
		"-x", px(box.XMin),
		"-y", px(box.YMin),
		"-W", px(box.Width()),
		"-H", px(box.Height()),
		"-png",
		"-singlefile",
		path,
	}
}

// ToPoints converts a box in pixels of a page rendered at dpi into points.
func ToPoints(box geometry.Box, dpi int) geometry.Box {
	return box.Scale(pointsPerInch / float64(dpi))
}
