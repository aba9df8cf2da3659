// Package display renders the preview window and polls the keyboard.
package display

import (
	"image"
	"image/color"
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// Title is the preview window title.
const Title = "Mudra Hand Control"

// NoKey is returned by WaitKey when nothing was pressed.
const NoKey = -1

var (
	landmarkColor   = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	connectionColor = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	textColor       = color.RGBA{R: 0, G: 0, B: 255, A: 0}
	pausedColor     = color.RGBA{R: 128, G: 128, B: 128, A: 0}
)

// Overlay is what gets drawn on top of a frame.
type Overlay struct {
	Hand    *detector.HandLandmarks
	Gesture string
	Paused  bool
}

// Display shows frames and reports key presses.
type Display interface {
	Show(frame *gocv.Mat, o Overlay) error
	// WaitKey waits up to delay ms and returns the pressed key or NoKey.
	WaitKey(delay int) int
	Close() error
}

// Draw renders o onto frame in place.
func Draw(frame *gocv.Mat, o Overlay) {
	if o.Hand != nil {
		w, h := frame.Cols(), frame.Rows()
		var pts [detector.NumLandmarks]image.Point
		for i, p := range o.Hand.Points {
			pts[i] = image.Pt(int(p.X*float64(w)), int(p.Y*float64(h)))
		}
		for _, c := range detector.Connections {
			gocv.Line(frame, pts[c[0]], pts[c[1]], connectionColor, 2)
		}
		for _, pt := range pts {
			gocv.Circle(frame, pt, 4, landmarkColor, -1)
		}
	}

	text, clr := "Gesture: "+o.Gesture, textColor
	if o.Paused {
		text, clr = "Paused", pausedColor
	}
	gocv.PutText(frame, text, image.Pt(10, 40), gocv.FontHersheySimplex, 1, clr, 2)
}

// Window is an OpenCV HighGUI window. It must be used from the thread
// that created it.
type Window struct {
	win *gocv.Window
}

// NewWindow opens the preview window.
func NewWindow(title string) *Window {
	return &Window{win: gocv.NewWindow(title)}
}

func (w *Window) Show(frame *gocv.Mat, o Overlay) error {
	Draw(frame, o)
	return w.win.IMShow(*frame)
}

func (w *Window) WaitKey(delay int) int {
	k := w.win.WaitKey(delay)
	if k < 0 {
		return NoKey
	}
	return k & 0xff
}

func (w *Window) Close() error {
	return w.win.Close()
}

// Headless draws nothing and replays scripted key presses. Keys are keyed
// by poll number, counting from 1.
type Headless struct {
	mu     sync.Mutex
	frames int
	polls  int
	keys   map[int]int
	last   Overlay
	closed bool
}

// NewHeadless returns a display without a window.
func NewHeadless() *Headless {
	return &Headless{keys: make(map[int]int)}
}

// PressAt schedules key to be returned by the nth call to WaitKey.
func (h *Headless) PressAt(n, key int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keys[n] = key
}

func (h *Headless) Show(_ *gocv.Mat, o Overlay) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames++
	h.last = o
	return nil
}

func (h *Headless) WaitKey(int) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.polls++
	if k, ok := h.keys[h.polls]; ok {
		return k
	}
	return NoKey
}

func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Frames returns the number of frames shown.
func (h *Headless) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Last returns the overlay of the most recent frame.
func (h *Headless) Last() Overlay {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Closed reports whether Close was called.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
