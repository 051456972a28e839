package preview

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/rasoi/internal/detector"
)

// Window is a local OpenCV window. On macOS it must be driven from the main
// thread.
type Window struct {
	win *gocv.Window
}

func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

// Show draws hands on a copy of frame and displays it. It returns true once
// the user presses q.
func (w *Window) Show(frame *gocv.Mat, hands []detector.HandLandmarks) bool {
	img := frame.Clone()
	defer img.Close()
	detector.DrawLandmarks(&img, hands)

	w.win.IMShow(img)
	return isQuitKey(w.win.WaitKey(1))
}

func (w *Window) Close() error {
	return w.win.Close()
}

func isQuitKey(key int) bool {
	return key&0xFF == 'q'
}
