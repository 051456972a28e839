// Package preview shows what the gesture mouse sees: an MJPEG stream with the
// hand skeleton drawn on it, a websocket of landmarks, and an optional local
// OpenCV window.
package preview

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"gocv.io/x/gocv"

	"github.com/ayusman/rasoi/internal/detector"
	"github.com/ayusman/rasoi/internal/gesture"
	"github.com/ayusman/rasoi/internal/logging"
)

// Update is the websocket message sent for every processed frame.
type Update struct {
	Hands     []detector.HandLandmarks `json:"hands"`
	Gestures  []string                 `json:"gestures"`
	Timestamp int64                    `json:"timestamp"`
}

// Hub keeps the latest annotated frame and fans updates out to subscribers.
// It implements app.FrameSink.
type Hub struct {
	mu      sync.RWMutex
	jpeg    []byte
	seq     uint64
	changed chan struct{}
	subs    map[chan []byte]struct{}
	streams int
}

func NewHub() *Hub {
	return &Hub{
		changed: make(chan struct{}),
		subs:    make(map[chan []byte]struct{}),
	}
}

// Publish draws hands on a copy of frame, stores it as JPEG and notifies
// stream and websocket clients. Nothing is encoded while nobody watches.
func (h *Hub) Publish(frame *gocv.Mat, hands []detector.HandLandmarks, gestures []gesture.Gesture) {
	h.mu.RLock()
	idle := len(h.subs) == 0 && h.streams == 0
	h.mu.RUnlock()
	if idle {
		return
	}

	var jpeg []byte
	if frame != nil && !frame.Empty() {
		jpeg = encode(frame, hands)
	}

	names := make([]string, len(gestures))
	for i, g := range gestures {
		names[i] = g.String()
	}
	if hands == nil {
		hands = []detector.HandLandmarks{}
	}
	msg, err := json.Marshal(Update{Hands: hands, Gestures: names, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		logging.Warn().Err(err).Msg("encoding landmark update")
	}

	h.mu.Lock()
	if jpeg != nil {
		h.jpeg = jpeg
		h.seq++
		close(h.changed)
		h.changed = make(chan struct{})
	}
	if msg != nil {
		for ch := range h.subs {
			select {
			case ch <- msg:
			default: // slow client, drop the update
			}
		}
	}
	h.mu.Unlock()
}

func (h *Hub) addStream(delta int) {
	h.mu.Lock()
	h.streams += delta
	h.mu.Unlock()
}

// Latest returns the newest JPEG and its sequence number.
func (h *Hub) Latest() ([]byte, uint64) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.jpeg, h.seq
}

// Next blocks until a frame newer than seq is available or ctx ends.
func (h *Hub) Next(ctx context.Context, seq uint64) ([]byte, uint64, error) {
	for {
		h.mu.RLock()
		jpeg, cur, changed := h.jpeg, h.seq, h.changed
		h.mu.RUnlock()
		if cur > seq && jpeg != nil {
			return jpeg, cur, nil
		}

		select {
		case <-ctx.Done():
			return nil, seq, ctx.Err()
		case <-changed:
		}
	}
}

// Subscribe returns a channel of encoded Update messages and a cancel func.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
		})
	}
}

// Subscribers reports how many websocket clients are attached.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

func encode(frame *gocv.Mat, hands []detector.HandLandmarks) []byte {
	img := frame.Clone()
	defer img.Close()
	detector.DrawLandmarks(&img, hands)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		logging.Warn().Err(err).Msg("encoding preview frame")
		return nil
	}
	defer buf.Close()

	return append([]byte(nil), buf.GetBytes()...)
}
