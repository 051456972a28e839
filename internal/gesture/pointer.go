package gesture

import "github.com/ayusman/rasoi/internal/detector"

// Point is a screen position in pixels.
type Point struct {
	X, Y float64
}

// Interp linearly maps v from [inLo, inHi] to [outLo, outHi]. Values outside the
// input range clamp to the nearest output endpoint.
func Interp(v, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}
	if v <= inLo {
		return outLo
	}
	if v >= inHi {
		return outHi
	}
	return outLo + (v-inLo)*(outHi-outLo)/(inHi-inLo)
}

// ScreenMapper maps normalized landmark coordinates onto a screen.
type ScreenMapper struct {
	Width, Height float64
}

// Map returns the screen position of the normalized point (x, y).
func (m ScreenMapper) Map(x, y float64) Point {
	return Point{
		X: Interp(x, 0, 1, 0, m.Width),
		Y: Interp(y, 0, 1, 0, m.Height),
	}
}

// IndexTip returns the screen position of hand's index fingertip.
func (m ScreenMapper) IndexTip(hand *detector.HandLandmarks) Point {
	tip := hand.Points[detector.IndexTip]
	return m.Map(tip.X, tip.Y)
}

// Smoother applies first-order smoothing: next = prev + (target - prev) / Factor.
// The zero value starts from the screen origin with Factor 1 (no smoothing).
type Smoother struct {
	Factor float64
	prev   Point
}

// NewSmoother returns a Smoother with the given factor. Factors below 1 are raised to 1.
func NewSmoother(factor float64) *Smoother {
	if factor < 1 {
		factor = 1
	}
	return &Smoother{Factor: factor}
}

// Next moves toward target and returns the new smoothed position.
func (s *Smoother) Next(target Point) Point {
	f := s.Factor
	if f < 1 {
		f = 1
	}
	s.prev = Point{
		X: s.prev.X + (target.X-s.prev.X)/f,
		Y: s.prev.Y + (target.Y-s.prev.Y)/f,
	}
	return s.prev
}

// Current returns the last smoothed position.
func (s *Smoother) Current() Point {
	return s.prev
}

// Reset moves the smoothed position to p.
func (s *Smoother) Reset(p Point) {
	s.prev = p
}
