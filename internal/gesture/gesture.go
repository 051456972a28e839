// Package gesture classifies a hand pose into pointer, click and scroll gestures
// and maps the index fingertip to screen coordinates.
package gesture

import "github.com/ayusman/rasoi/internal/detector"

// Gesture is the action a hand pose asks for.
type Gesture int

const (
	None Gesture = iota
	Pointer
	Click
	ScrollUp
	ScrollDown
)

// String returns the gesture name used in logs and metrics.
func (g Gesture) String() string {
	switch g {
	case Pointer:
		return "pointer"
	case Click:
		return "click"
	case ScrollUp:
		return "scroll_up"
	case ScrollDown:
		return "scroll_down"
	default:
		return "none"
	}
}

// FingerState records which fingers are extended and which are curled. Image y
// grows downward, so a finger is extended when its tip is above its PIP joint
// and curled when the tip is below it. A tip level with its joint is neither.
type FingerState struct {
	Thumb  bool // thumb tip above the wrist
	Index  bool
	Middle bool
	Ring   bool
	Pinky  bool

	IndexDown  bool
	MiddleDown bool
	RingDown   bool
	PinkyDown  bool
}

// Fingers reads the extension pattern of hand. Each finger is compared against
// its own PIP joint.
func Fingers(hand *detector.HandLandmarks) FingerState {
	p := &hand.Points
	return fingerState(p, detector.RingPIP, detector.PinkyPIP)
}

// legacyFingers compares ring and pinky against the middle PIP joint, as the
// first version of the controller did.
func legacyFingers(hand *detector.HandLandmarks) FingerState {
	p := &hand.Points
	return fingerState(p, detector.MiddlePIP, detector.MiddlePIP)
}

func fingerState(p *[detector.NumLandmarks]detector.Point3D, ringPIP, pinkyPIP int) FingerState {
	up := func(tip, pip int) bool { return p[tip].Y < p[pip].Y }
	down := func(tip, pip int) bool { return p[tip].Y > p[pip].Y }
	return FingerState{
		Thumb:      up(detector.ThumbTip, detector.Wrist),
		Index:      up(detector.IndexTip, detector.IndexPIP),
		Middle:     up(detector.MiddleTip, detector.MiddlePIP),
		Ring:       up(detector.RingTip, ringPIP),
		Pinky:      up(detector.PinkyTip, pinkyPIP),
		IndexDown:  down(detector.IndexTip, detector.IndexPIP),
		MiddleDown: down(detector.MiddleTip, detector.MiddlePIP),
		RingDown:   down(detector.RingTip, ringPIP),
		PinkyDown:  down(detector.PinkyTip, pinkyPIP),
	}
}

// Matches returns every gesture whose rule holds for f, in the order
// pointer, click, scroll-up, scroll-down. Click and scroll-down can both match.
func (f FingerState) Matches() []Gesture {
	var out []Gesture
	curled := f.RingDown && f.PinkyDown

	if f.Index && f.MiddleDown && curled {
		out = append(out, Pointer)
	}
	if f.Thumb && f.IndexDown && f.MiddleDown && curled {
		out = append(out, Click)
	}
	if f.Index && f.Middle && curled {
		out = append(out, ScrollUp)
	}
	if f.IndexDown && f.MiddleDown && curled {
		out = append(out, ScrollDown)
	}
	return out
}

// priority orders gestures for single-gesture classification.
var priority = []Gesture{Pointer, ScrollUp, Click, ScrollDown}

// Classify returns the single highest-priority gesture matching f:
// pointer, then scroll-up, then click, then scroll-down.
func (f FingerState) Classify() Gesture {
	matches := f.Matches()
	for _, g := range priority {
		for _, m := range matches {
			if m == g {
				return g
			}
		}
	}
	return None
}

// Classifier turns hands into the gestures to act on.
type Classifier struct {
	// Legacy fires every matching gesture in evaluation order and compares ring
	// and pinky against the middle PIP joint.
	Legacy bool
}

// Gestures returns the gestures to act on for hand.
func (c Classifier) Gestures(hand *detector.HandLandmarks) []Gesture {
	if c.Legacy {
		return legacyFingers(hand).Matches()
	}
	if g := Fingers(hand).Classify(); g != None {
		return []Gesture{g}
	}
	return nil
}
