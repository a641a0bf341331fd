package wheel

import (
	"fmt"
	"math"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
)

// PointerAngle is where the pointer sits, in SVG degrees (0 = +x, clockwise).
// Wedge 0 starts here.
const PointerAngle = -90.0

// SegmentAngle is the angular width of one wedge on an n-wedge wheel.
func SegmentAngle(n int) float64 {
	return 360 / float64(n)
}

// TargetCenter is the centre angle of wedge i.
func TargetCenter(i, n int) float64 {
	seg := SegmentAngle(n)
	return float64(i)*seg + seg/2 + PointerAngle
}

// FinalRotation is the absolute rotation for a spin that lands on wedge i
// after extra full turns.
func FinalRotation(extra float64, i, n int) float64 {
	return extra*360 + TargetCenter(i, n)
}

// FaceRotation returns the smallest clockwise face rotation >= from that
// puts the centre of wedge i directly under the pointer.
func FaceRotation(from float64, i, n int) float64 {
	seg := SegmentAngle(n)
	landing := -(float64(i)*seg + seg/2)
	return from + mod360(landing-from)
}

// PointerIndex returns the wedge under the pointer once the face has been
// rotated clockwise by faceRotation degrees.
func PointerIndex(faceRotation float64, n int) int {
	idx := int(math.Floor(mod360(-faceRotation) / SegmentAngle(n)))
	if idx >= n {
		idx = n - 1
	}
	return idx
}

func mod360(a float64) float64 {
	m := math.Mod(a, 360)
	if m < 0 {
		m += 360
	}
	return m
}

// Layout sizes the rendered wheel face.
type Layout struct {
	Size        float64
	Radius      float64
	LabelRadius float64
	HubRadius   float64
}

// DefaultLayout is a 320px face with a 140px wheel.
var DefaultLayout = Layout{Size: 320, Radius: 140, LabelRadius: 80, HubRadius: 25}

func (l Layout) center() float64 { return l.Size / 2 }

// Wedge is the drawn geometry of one catalog entry.
type Wedge struct {
	Index         int
	Entry         model.PrizeEntry
	StartAngle    float64
	EndAngle      float64
	CenterAngle   float64
	Path          string
	LabelX        float64
	LabelY        float64
	LabelRotation float64
}

// Wedges lays the catalog out clockwise from the pointer.
func Wedges(entries []model.PrizeEntry, l Layout) []Wedge {
	n := len(entries)
	if n == 0 {
		return nil
	}
	seg := SegmentAngle(n)
	c := l.center()

	wedges := make([]Wedge, 0, n)
	for i, e := range entries {
		start := float64(i)*seg + PointerAngle
		end := start + seg
		mid := start + seg/2

		x1, y1 := polar(c, l.Radius, start)
		x2, y2 := polar(c, l.Radius, end)
		largeArc := 0
		if seg > 180 {
			largeArc = 1
		}
		lx, ly := polar(c, l.LabelRadius, mid)

		wedges = append(wedges, Wedge{
			Index:       i,
			Entry:       e,
			StartAngle:  start,
			EndAngle:    end,
			CenterAngle: mid,
			Path: fmt.Sprintf("M %s %s L %s %s A %s %s 0 %d 1 %s %s Z",
				num(c), num(c), num(x1), num(y1), num(l.Radius), num(l.Radius), largeArc, num(x2), num(y2)),
			LabelX:        lx,
			LabelY:        ly,
			LabelRotation: mid + 90,
		})
	}
	return wedges
}

func polar(c, r, deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return c + r*math.Cos(rad), c + r*math.Sin(rad)
}

func num(v float64) string {
	return fmt.Sprintf("%.3f", v)
}
