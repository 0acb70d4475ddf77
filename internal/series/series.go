// Package series holds the numeric primitives for meal-window analysis:
// resampling irregular sensor samples onto a uniform grid, least-squares
// slope estimation, trapezoidal integration, and the order statistics the
// feature extractors are built on. All functions are pure and total; an
// input that cannot support a statistic produces an Unknown value rather
// than an error.
package series

import (
	"math"
	"sort"
)

// Sample is one raw reading positioned in minutes relative to an anchor
// (negative before it). Either field may be NaN for readings the source
// could not fill in; such samples are ignored by every function here.
type Sample struct {
	Minute float64
	Value  float64
}

// GridPoint is one point of a uniform resampling grid.
type GridPoint struct {
	Minute float64
	Value  Value
}

// gridEpsilon keeps the final grid point at exactly the window end despite
// float accumulation in (end-start)/step.
const gridEpsilon = 1e-4

// minSlopePoints is the fewest finite pairs a least-squares fit will
// accept. Two points always fit a line exactly, so anything under three
// says nothing about trend.
const minSlopePoints = 3

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Resample interpolates irregular samples onto a uniform grid over
// [start, end] with the given step. The grid always includes the point at
// end. Non-finite samples are dropped first; if fewer than two remain,
// every grid point is unknown. Grid points outside the span of the
// remaining samples are unknown; the series is never extrapolated.
func Resample(samples []Sample, step, start, end float64) []GridPoint {
	n := int(math.Floor((end-start+gridEpsilon)/step)) + 1
	grid := make([]GridPoint, n)
	for i := range grid {
		grid[i] = GridPoint{Minute: start + float64(i)*step, Value: Unknown()}
	}

	clean := make([]Sample, 0, len(samples))
	for _, s := range samples {
		if finite(s.Minute) && finite(s.Value) {
			clean = append(clean, s)
		}
	}
	if len(clean) < 2 {
		return grid
	}
	sort.Slice(clean, func(i, j int) bool { return clean[i].Minute < clean[j].Minute })

	for i := range grid {
		t := grid[i].Minute
		if t < clean[0].Minute || t > clean[len(clean)-1].Minute {
			continue
		}
		grid[i].Value = Known(interpolate(clean, t))
	}
	return grid
}

// interpolate assumes clean is sorted by minute and t lies within its span.
func interpolate(clean []Sample, t float64) float64 {
	j := sort.Search(len(clean), func(i int) bool { return clean[i].Minute >= t })
	if j < len(clean) && clean[j].Minute == t {
		return clean[j].Value
	}
	lo, hi := clean[j-1], clean[j]
	if hi.Minute == lo.Minute {
		return lo.Value
	}
	frac := (t - lo.Minute) / (hi.Minute - lo.Minute)
	return lo.Value + frac*(hi.Value-lo.Value)
}

// LinearSlope returns the ordinary least-squares slope of y against x over
// the pairs where both coordinates are finite. Unknown with fewer than
// three such pairs, or when every x is identical.
func LinearSlope(x, y []float64) Value {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	var count int
	var sumX, sumY float64
	for i := 0; i < n; i++ {
		if finite(x[i]) && finite(y[i]) {
			count++
			sumX += x[i]
			sumY += y[i]
		}
	}
	if count < minSlopePoints {
		return Unknown()
	}
	meanX := sumX / float64(count)
	meanY := sumY / float64(count)
	var sxx, sxy float64
	for i := 0; i < n; i++ {
		if finite(x[i]) && finite(y[i]) {
			dx := x[i] - meanX
			sxx += dx * dx
			sxy += dx * (y[i] - meanY)
		}
	}
	if sxx == 0 {
		return Unknown()
	}
	return Known(sxy / sxx)
}

// TrapezoidIntegral integrates y over a uniform grid with the given step
// using the trapezoidal rule. Unknown points contribute zero rather than
// being excluded, which under-counts when coverage is sparse; that bias is
// deliberate, since shrinking the integration span would overstate dense
// regions instead. Returns 0 when there are fewer than two points or no
// known point at all.
func TrapezoidIntegral(y []Value, step float64) float64 {
	if len(y) < 2 {
		return 0
	}
	any := false
	for _, v := range y {
		if v.IsKnown() {
			any = true
			break
		}
	}
	if !any {
		return 0
	}
	var total float64
	for i := 1; i < len(y); i++ {
		a := y[i-1].Or(0)
		b := y[i].Or(0)
		total += (a + b) / 2 * step
	}
	return total
}

// Median returns the median of the finite entries of vals, unknown when
// none are finite.
func Median(vals []float64) Value {
	clean := make([]float64, 0, len(vals))
	for _, v := range vals {
		if finite(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return Unknown()
	}
	sort.Float64s(clean)
	mid := len(clean) / 2
	if len(clean)%2 == 1 {
		return Known(clean[mid])
	}
	return Known((clean[mid-1] + clean[mid]) / 2)
}

// MeanStd returns the mean and population standard deviation of the finite
// entries of vals, both unknown when none are finite.
func MeanStd(vals []float64) (Value, Value) {
	var count int
	var sum float64
	for _, v := range vals {
		if finite(v) {
			count++
			sum += v
		}
	}
	if count == 0 {
		return Unknown(), Unknown()
	}
	mean := sum / float64(count)
	var ss float64
	for _, v := range vals {
		if finite(v) {
			d := v - mean
			ss += d * d
		}
	}
	return Known(mean), Known(math.Sqrt(ss / float64(count)))
}

// CountFinite reports how many entries of vals are finite.
func CountFinite(vals []float64) int {
	n := 0
	for _, v := range vals {
		if finite(v) {
			n++
		}
	}
	return n
}
