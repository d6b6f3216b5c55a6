package metrics

import "math"

// window is a fixed-size ring buffer over the trailing observations of a
// series. Statistics are recomputed from the buffered values on demand,
// so long series never accumulate drift.
type window struct {
	vals []float64
	size int
	next int
	n    int
}

func newWindow(size int) *window {
	return &window{vals: make([]float64, size), size: size}
}

func (w *window) push(v float64) {
	w.vals[w.next] = v
	w.next = (w.next + 1) % w.size
	if w.n < w.size {
		w.n++
	}
}

func (w *window) full() bool { return w.n == w.size }

func (w *window) mean() float64 {
	sum := 0.0
	for i := 0; i < w.n; i++ {
		sum += w.vals[i]
	}
	return sum / float64(w.n)
}

// sampleStd returns the sample standard deviation (n-1 denominator) of the
// buffered values. ok is false when fewer than two values are buffered.
func (w *window) sampleStd() (std float64, ok bool) {
	if w.n < 2 {
		return 0, false
	}
	m := w.mean()
	ss := 0.0
	for i := 0; i < w.n; i++ {
		d := w.vals[i] - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(w.n-1)), true
}
