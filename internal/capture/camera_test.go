package capture

import (
	"errors"
	"testing"
	"time"

	"gocv.io/x/gocv"
)

func TestNewCamera_Defaults(t *testing.T) {
	cam := NewCamera(0)
	if got := cam.FPS(); got != DefaultFPS {
		t.Errorf("FPS() = %d, want %d", got, DefaultFPS)
	}
	if cam.IsOpen() {
		t.Error("camera should not be open before Open()")
	}

	impl := NewCamera(1, WithMirror(true), WithSize(320, 240)).(*cameraImpl)
	if !impl.mirror {
		t.Error("WithMirror(true) not applied")
	}
	if impl.width != 320 || impl.height != 240 {
		t.Errorf("size = %dx%d, want 320x240", impl.width, impl.height)
	}

	impl = NewCamera(1, WithSize(0, 240)).(*cameraImpl)
	if impl.width != DefaultWidth || impl.height != DefaultHeight {
		t.Errorf("invalid size should keep defaults, got %dx%d", impl.width, impl.height)
	}
}

func TestCamera_SetFPS(t *testing.T) {
	cam := NewCamera(0)

	tests := []struct {
		fps  int
		want int
	}{
		{10, 10},
		{30, 30},
		{0, 30},
		{-5, 30},
	}
	for _, tt := range tests {
		cam.SetFPS(tt.fps)
		if got := cam.FPS(); got != tt.want {
			t.Errorf("SetFPS(%d): FPS() = %d, want %d", tt.fps, got, tt.want)
		}
	}
}

func TestCamera_NotOpened(t *testing.T) {
	cam := NewCamera(0)

	if _, err := cam.ReadFrame(); !errors.Is(err, ErrCameraNotOpen) {
		t.Errorf("ReadFrame() error = %v, want ErrCameraNotOpen", err)
	}
	if err := cam.Close(); err != nil {
		t.Errorf("Close() on unopened camera = %v", err)
	}
}

func TestCamera_OpenClose_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping camera test in short mode")
	}

	cam := NewCamera(0, WithMirror(true))
	if err := cam.Open(); err != nil {
		t.Skipf("camera not available: %v", err)
	}

	mat, err := cam.ReadFrame()
	if err != nil {
		t.Errorf("ReadFrame() error = %v", err)
	} else {
		if mat.Empty() {
			t.Error("ReadFrame() returned an empty frame")
		}
		mat.Close()
	}

	if err := cam.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if cam.IsOpen() {
		t.Error("IsOpen() after Close()")
	}
}

func TestMirror(t *testing.T) {
	img := gocv.NewMatWithSize(2, 4, gocv.MatTypeCV8UC1)
	defer img.Close()
	img.SetUCharAt(0, 0, 200)

	Mirror(&img)

	if got := img.GetUCharAt(0, 3); got != 200 {
		t.Errorf("pixel (0,3) = %d after flip, want 200", got)
	}
	if got := img.GetUCharAt(0, 0); got != 0 {
		t.Errorf("pixel (0,0) = %d after flip, want 0", got)
	}

	Mirror(nil)
}

func TestGate(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	g := NewGate(2, 15, time.Second)
	g.now = func() time.Time { return now }

	if got := g.Observe(false); got != 2 {
		t.Errorf("idle gate = %d, want 2", got)
	}
	if got := g.Observe(true); got != 15 {
		t.Errorf("after activity = %d, want 15", got)
	}

	now = now.Add(500 * time.Millisecond)
	if got := g.Observe(false); got != 15 {
		t.Errorf("within timeout = %d, want 15", got)
	}

	now = now.Add(time.Second)
	if got := g.Observe(false); got != 2 {
		t.Errorf("after timeout = %d, want 2", got)
	}
}

func TestNewGate_Normalizes(t *testing.T) {
	g := NewGate(0, 1, time.Second)
	if g.IdleFPS != DefaultFPS {
		t.Errorf("IdleFPS = %d, want %d", g.IdleFPS, DefaultFPS)
	}
	if g.ActiveFPS != DefaultFPS {
		t.Errorf("ActiveFPS = %d, want %d", g.ActiveFPS, DefaultFPS)
	}
}

func TestInterval(t *testing.T) {
	if got := Interval(10); got != 100*time.Millisecond {
		t.Errorf("Interval(10) = %v", got)
	}
	if got := Interval(0); got != time.Second/DefaultFPS {
		t.Errorf("Interval(0) = %v", got)
	}
}
