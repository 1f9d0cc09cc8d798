package spectrum

import "fmt"

// Range is an inclusive energy interval in eV.
type Range struct {
	Lo float64
	Hi float64
}

// NewRange returns the interval spanned by a and b in either order.
func NewRange(a, b float64) Range {
	if a > b {
		a, b = b, a
	}

	return Range{Lo: a, Hi: b}
}

// Around returns [center-halfWidth, center+halfWidth].
func Around(center, halfWidth float64) Range {
	return NewRange(center-halfWidth, center+halfWidth)
}

// Contains reports whether e lies inside the interval.
func (r Range) Contains(e float64) bool {
	return e >= r.Lo && e <= r.Hi
}

// Width returns Hi - Lo.
func (r Range) Width() float64 { return r.Hi - r.Lo }

// IsZero reports whether the range is unset.
func (r Range) IsZero() bool { return r.Lo == 0 && r.Hi == 0 }

// Intersect returns the overlap of r and o. The result has zero width when
// they only touch and Lo > Hi when they are disjoint.
func (r Range) Intersect(o Range) Range {
	out := r
	if o.Lo > out.Lo {
		out.Lo = o.Lo
	}

	if o.Hi < out.Hi {
		out.Hi = o.Hi
	}

	return out
}

func (r Range) String() string {
	return fmt.Sprintf("%.3f-%.3f eV", r.Lo, r.Hi)
}
