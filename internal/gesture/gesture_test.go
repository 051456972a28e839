package gesture

import (
	"reflect"
	"testing"

	"github.com/ayusman/rasoi/internal/detector"
)

// makeHand builds a hand whose fingers are extended as given. Extended fingers
// have their tip above the PIP joint; the thumb is raised when its tip is above the wrist.
func makeHand(thumb, index, middle, ring, pinky bool) *detector.HandLandmarks {
	h := &detector.HandLandmarks{Handedness: "Right", Score: 0.9}
	h.Points[detector.Wrist] = detector.Point3D{X: 0.5, Y: 0.8}

	setFinger := func(pip, tip int, x float64, up bool) {
		h.Points[pip] = detector.Point3D{X: x, Y: 0.55}
		if up {
			h.Points[tip] = detector.Point3D{X: x, Y: 0.35}
		} else {
			h.Points[tip] = detector.Point3D{X: x, Y: 0.65}
		}
	}
	setFinger(detector.IndexPIP, detector.IndexTip, 0.55, index)
	setFinger(detector.MiddlePIP, detector.MiddleTip, 0.50, middle)
	setFinger(detector.RingPIP, detector.RingTip, 0.45, ring)
	setFinger(detector.PinkyPIP, detector.PinkyTip, 0.40, pinky)

	if thumb {
		h.Points[detector.ThumbTip] = detector.Point3D{X: 0.6, Y: 0.5}
	} else {
		h.Points[detector.ThumbTip] = detector.Point3D{X: 0.6, Y: 0.85}
	}
	return h
}

func TestFingers(t *testing.T) {
	got := Fingers(makeHand(true, true, false, true, false))
	want := FingerState{
		Thumb: true, Index: true, Ring: true,
		MiddleDown: true, PinkyDown: true,
	}
	if got != want {
		t.Errorf("Fingers() = %+v, want %+v", got, want)
	}
}

func TestFingers_TipLevelWithJoint(t *testing.T) {
	// A middle tip exactly at its PIP is neither raised nor curled, so no
	// rule that needs the middle finger down can match.
	h := makeHand(false, true, false, false, false)
	h.Points[detector.MiddleTip].Y = h.Points[detector.MiddlePIP].Y

	f := Fingers(h)
	if f.Middle || f.MiddleDown {
		t.Errorf("Fingers() middle = up %v, down %v; want neither", f.Middle, f.MiddleDown)
	}
	if got := f.Matches(); got != nil {
		t.Errorf("Matches() = %v, want none", got)
	}

	fist := makeHand(false, false, false, false, false)
	fist.Points[detector.IndexTip].Y = fist.Points[detector.IndexPIP].Y
	if got := Fingers(fist).Matches(); got != nil {
		t.Errorf("Matches() with index level = %v, want none", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		hand    *detector.HandLandmarks
		matches []Gesture
		want    Gesture
	}{
		{"index only is pointer", makeHand(false, true, false, false, false), []Gesture{Pointer}, Pointer},
		{"pointer with thumb raised", makeHand(true, true, false, false, false), []Gesture{Pointer}, Pointer},
		{"thumbs up is click", makeHand(true, false, false, false, false), []Gesture{Click, ScrollDown}, Click},
		{"index and middle is scroll up", makeHand(false, true, true, false, false), []Gesture{ScrollUp}, ScrollUp},
		{"fist is scroll down", makeHand(false, false, false, false, false), []Gesture{ScrollDown}, ScrollDown},
		{"open palm is nothing", makeHand(true, true, true, true, true), nil, None},
		{"ring extended is nothing", makeHand(false, true, false, true, false), nil, None},
		{"pinky extended blocks scroll down", makeHand(false, false, false, false, true), nil, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Fingers(tt.hand)
			if got := f.Matches(); !reflect.DeepEqual(got, tt.matches) {
				t.Errorf("Matches() = %v, want %v", got, tt.matches)
			}
			if got := f.Classify(); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify_PointerExample(t *testing.T) {
	// Index tip above its PIP, the other three tips below theirs.
	h := &detector.HandLandmarks{}
	h.Points[detector.Wrist] = detector.Point3D{Y: 0.9}
	h.Points[detector.ThumbTip] = detector.Point3D{Y: 0.95}
	h.Points[detector.IndexPIP] = detector.Point3D{Y: 0.5}
	h.Points[detector.IndexTip] = detector.Point3D{Y: 0.3}
	h.Points[detector.MiddlePIP] = detector.Point3D{Y: 0.5}
	h.Points[detector.MiddleTip] = detector.Point3D{Y: 0.6}
	h.Points[detector.RingPIP] = detector.Point3D{Y: 0.52}
	h.Points[detector.RingTip] = detector.Point3D{Y: 0.62}
	h.Points[detector.PinkyPIP] = detector.Point3D{Y: 0.55}
	h.Points[detector.PinkyTip] = detector.Point3D{Y: 0.64}

	got := Classifier{}.Gestures(h)
	if !reflect.DeepEqual(got, []Gesture{Pointer}) {
		t.Errorf("Gestures() = %v, want [pointer]", got)
	}
}

func TestClassifier_Legacy(t *testing.T) {
	thumbsUp := detector.ThumbsUpLandmarks()

	if got := (Classifier{}).Gestures(&thumbsUp); !reflect.DeepEqual(got, []Gesture{Click}) {
		t.Errorf("default Gestures() = %v, want [click]", got)
	}
	if got := (Classifier{Legacy: true}).Gestures(&thumbsUp); !reflect.DeepEqual(got, []Gesture{Click, ScrollDown}) {
		t.Errorf("legacy Gestures() = %v, want [click scroll_down]", got)
	}
}

func TestClassifier_LegacyUsesMiddlePIP(t *testing.T) {
	// Ring tip sits between its own PIP and the middle PIP.
	h := makeHand(false, true, false, false, false)
	h.Points[detector.MiddlePIP].Y = 0.40
	h.Points[detector.MiddleTip].Y = 0.45
	h.Points[detector.RingPIP].Y = 0.55
	h.Points[detector.RingTip].Y = 0.50

	if got := (Classifier{}).Gestures(h); got != nil {
		t.Errorf("default Gestures() = %v, want none (ring extended)", got)
	}
	if got := (Classifier{Legacy: true}).Gestures(h); !reflect.DeepEqual(got, []Gesture{Pointer}) {
		t.Errorf("legacy Gestures() = %v, want [pointer]", got)
	}
}

func TestClassifier_Fixtures(t *testing.T) {
	tests := []struct {
		name string
		hand detector.HandLandmarks
		want []Gesture
	}{
		{"open palm", detector.OpenPalmLandmarks(), nil},
		{"pointing", detector.PointingLandmarks(), []Gesture{Pointer}},
		{"two fingers", detector.TwoFingersLandmarks(), []Gesture{ScrollUp}},
		{"fist", detector.FistLandmarks(), []Gesture{ScrollDown}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Classifier{}).Gestures(&tt.hand); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Gestures() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGesture_String(t *testing.T) {
	names := map[Gesture]string{
		None:       "none",
		Pointer:    "pointer",
		Click:      "click",
		ScrollUp:   "scroll_up",
		ScrollDown: "scroll_down",
	}
	for g, want := range names {
		if g.String() != want {
			t.Errorf("%d.String() = %q, want %q", g, g.String(), want)
		}
	}
}
