package detector

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	connectionColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	landmarkColor   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
)

// DrawLandmarks draws each hand's skeleton onto img. Landmark coordinates are
// normalized to the image size.
func DrawLandmarks(img *gocv.Mat, hands []HandLandmarks) {
	if img == nil || img.Empty() {
		return
	}
	w, h := img.Cols(), img.Rows()

	for i := range hands {
		pts := pixelPoints(&hands[i], w, h)
		for _, c := range HandConnections {
			gocv.Line(img, pts[c[0]], pts[c[1]], connectionColor, 2)
		}
		for _, p := range pts {
			gocv.Circle(img, p, 4, landmarkColor, -1)
		}
	}
}

// pixelPoints converts the normalized landmarks of hand into pixel positions in a
// w by h image, clamped to the image bounds.
func pixelPoints(hand *HandLandmarks, w, h int) [NumLandmarks]image.Point {
	var pts [NumLandmarks]image.Point
	for i, p := range hand.Points {
		pts[i] = image.Point{
			X: clamp(int(p.X*float64(w)), 0, w-1),
			Y: clamp(int(p.Y*float64(h)), 0, h-1),
		}
	}
	return pts
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
