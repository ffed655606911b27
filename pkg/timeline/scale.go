package timeline

import (
	"math"
	"slices"
)

// Range is a pixel interval on the x axis.
type Range struct {
	Min float64 `json:"min" bson:"min"`
	Max float64 `json:"max" bson:"max"`
}

// Canvas geometry shared by every surface.
const (
	RowPitch  = 50.0  // vertical distance between rows
	BarHeight = 20.0  // height of a span bar
	TopOffset = 100.0 // y of row 0
	AxisY     = 50.0  // y of the tick labels
	Chrome    = 200.0 // space above and below the rows
)

// Scale maps t linearly from d onto r. A zero-length domain maps every t to
// r.Min. Times outside d are extrapolated, not clamped.
func Scale(t int64, d Domain, r Range) float64 {
	if d.End == d.Start {
		return r.Min
	}
	return r.Min + diff(t, d.Start)/diff(d.End, d.Start)*(r.Max-r.Min)
}

// diff returns a-b, falling back to float arithmetic when the int64
// subtraction overflows.
func diff(a, b int64) float64 {
	d := a - b
	if (a >= b) == (d >= 0) {
		return float64(d)
	}
	return float64(a) - float64(b)
}

// Extent returns the x offset and width of s's bar. Spans ending before they
// start get zero width.
func Extent(s PositionedSpan, d Domain, r Range) (x, width float64) {
	x = Scale(s.StartTime, d, r)
	width = max(0, Scale(s.EndTime, d, r)-x)
	return x, width
}

// RowY returns the top of the bar in the given row.
func RowY(row int) float64 { return TopOffset + float64(row)*RowPitch }

// Height returns the canvas height needed for rowCount rows.
func Height(rowCount int) float64 { return float64(rowCount)*RowPitch + Chrome }

// Ticks returns roughly count evenly spaced grid values inside d. The step is
// 1, 2 or 5 times a power of ten nanoseconds. For count <= 0 or a zero-length
// domain the only tick is d.Start. At most count*maxTicksPerCount values are
// returned.
func Ticks(d Domain, count int) []int64 {
	lo, hi := d.Start, d.End
	if hi < lo {
		lo, hi = hi, lo
	}
	if count <= 0 || lo == hi {
		return []int64{d.Start}
	}

	step := tickStep(uint64(hi)-uint64(lo), count)
	t := lo / step * step
	if t < lo {
		if t > math.MaxInt64-step {
			return nil
		}
		t += step
	}
	if t > hi {
		return nil
	}

	limit := count * maxTicksPerCount
	var ticks []int64
	for len(ticks) < limit {
		ticks = append(ticks, t)
		if uint64(hi)-uint64(t) < uint64(step) {
			break
		}
		t += step
	}
	if d.End < d.Start {
		slices.Reverse(ticks)
	}
	return ticks
}

const (
	maxTicksPerCount = 10
	// maxTickStep is the largest 1/2/5 step that fits in an int64.
	maxTickStep = 5_000_000_000_000_000_000
)

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

func tickStep(span uint64, count int) int64 {
	raw := float64(span) / float64(count)
	base := math.Pow(10, math.Floor(math.Log10(raw)))
	factor := 1.0
	switch e := raw / base; {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	step := factor * base
	if step >= maxTickStep {
		return maxTickStep
	}
	return max(1, int64(step))
}
