package wheel

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
)

// RenderSVG draws the wheel face rotated clockwise by faceRotation degrees,
// with the fixed pointer at the top.
func RenderSVG(w io.Writer, entries []model.PrizeEntry, l Layout, faceRotation float64) {
	size := int(l.Size)
	c := int(l.center())

	canvas := svg.New(w)
	canvas.Start(size, size, fmt.Sprintf(`viewBox="0 0 %d %d"`, size, size))

	canvas.Gtransform(fmt.Sprintf("rotate(%s %d %d)", num(faceRotation), c, c))
	if len(entries) == 1 {
		canvas.Circle(c, c, int(l.Radius), "fill:"+entries[0].Color+";stroke:#fff;stroke-width:2")
	}
	for _, wd := range Wedges(entries, l) {
		if len(entries) > 1 {
			canvas.Path(wd.Path, "fill:"+wd.Entry.Color+";stroke:#fff;stroke-width:2")
		}
		canvas.Gtransform(fmt.Sprintf("translate(%s,%s) rotate(%s)", num(wd.LabelX), num(wd.LabelY), num(wd.LabelRotation)))
		canvas.Text(0, -5, wd.Entry.Code, "text-anchor:middle;fill:white;font-size:10px;font-weight:bold")
		canvas.Text(0, 8, wd.Entry.DiscountLabel, "text-anchor:middle;fill:white;font-size:8px")
		canvas.Gend()
	}
	canvas.Circle(c, c, int(l.HubRadius), "fill:#d97706;stroke:#fff;stroke-width:4")
	canvas.Gend()

	// pointer
	top := c - int(l.Radius)
	canvas.Polygon([]int{c - 10, c + 10, c}, []int{top - 18, top - 18, top + 6}, "fill:#dc2626")
	canvas.End()
}
